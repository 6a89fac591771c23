package queue

import "context"

// MemoryDriver is an in-process channel-backed queue. It is the default
// driver and the right choice for tests and single-node deployments.
type MemoryDriver struct {
	ch chan []byte
}

// NewMemoryDriver creates a memory queue with a buffer of 1024 jobs.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{ch: make(chan []byte, 1024)}
}

func (d *MemoryDriver) Push(payload []byte) error {
	d.ch <- payload
	return nil
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case raw := <-d.ch:
		return raw, nil
	}
}
