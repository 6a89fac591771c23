package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenAndFire(t *testing.T) {
	t.Cleanup(Flush)

	var got []interface{}
	Listen("cart.changed", func(payload interface{}) {
		got = append(got, payload)
	})

	Fire("cart.changed", uint(7))
	Fire("cart.changed", uint(8))

	require.Len(t, got, 2)
	assert.Equal(t, uint(7), got[0])
}

func TestFireWithoutListeners(t *testing.T) {
	t.Cleanup(Flush)
	// Must not panic.
	Fire("nobody.cares", "payload")
}

func TestSubscribeReceivesPayloads(t *testing.T) {
	t.Cleanup(Flush)

	ch, cancel := Subscribe("order.status_changed")
	defer cancel()

	Fire("order.status_changed", "first")
	Fire("order.status_changed", "second")

	assert.Equal(t, "first", <-ch)
	assert.Equal(t, "second", <-ch)
}

func TestCancelDetachesSubscriber(t *testing.T) {
	t.Cleanup(Flush)

	ch, cancel := Subscribe("order.placed")
	cancel()

	// Channel is closed after cancel.
	_, ok := <-ch
	assert.False(t, ok)

	// Firing after cancel must not panic on the closed channel.
	Fire("order.placed", "late")
}

func TestSlowSubscriberDoesNotStallFire(t *testing.T) {
	t.Cleanup(Flush)

	ch, cancel := Subscribe("order.placed")
	defer cancel()

	// Overfill the buffer; extra sends are dropped, not blocked on.
	for i := 0; i < 50; i++ {
		Fire("order.placed", i)
	}

	n := 0
	buffered := len(ch)
	for i := 0; i < buffered; i++ {
		<-ch
		n++
	}
	assert.Equal(t, 16, n)
}

func TestConcurrentFire(t *testing.T) {
	t.Cleanup(Flush)

	var mu sync.Mutex
	count := 0
	Listen("order.placed", func(interface{}) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Fire("order.placed", nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, count)
}
