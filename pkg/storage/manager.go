package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/coldcutclub/storefront/config"
)

var (
	mu    sync.RWMutex
	disks = map[string]Disk{}
)

// RegisterDisk names a disk for later retrieval.
func RegisterDisk(name string, d Disk) {
	mu.Lock()
	defer mu.Unlock()
	disks[name] = d
}

// DiskByName returns a previously registered disk.
func DiskByName(name string) (Disk, error) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: unknown disk %q", name)
	}
	return d, nil
}

// Default returns the disk named by STORAGE_DISK.
func Default() (Disk, error) {
	return DiskByName(config.StorageDisk())
}

// Init registers the disks the storefront uses: "local" always, "s3" when
// a bucket is configured. Call once at boot.
func Init(ctx context.Context) error {
	RegisterDisk("local", NewLocalDisk(config.StorageLocalRoot(), config.StorageURL()))

	if bucket := config.StorageS3Bucket(); bucket != "" {
		s3disk, err := NewS3Disk(ctx, S3Options{
			Bucket:    bucket,
			Region:    config.StorageS3Region(),
			AccessKey: config.StorageS3Key(),
			SecretKey: config.StorageS3Secret(),
			Endpoint:  config.StorageS3Endpoint(),
		})
		if err != nil {
			return err
		}
		RegisterDisk("s3", s3disk)
	}

	if _, err := Default(); err != nil {
		return fmt.Errorf("storage: default driver not available: %w", err)
	}
	return nil
}
