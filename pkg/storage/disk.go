// Package storage is the file store for generated artifacts: payment QR
// codes and invoice PDFs.
//
// Two drivers exist:
//   - "local": a directory on the server, served under /storage
//   - "s3":    any S3-compatible object store (AWS S3, MinIO, R2)
//
// Boot once and pass the Manager to whatever writes files:
//
//	disks, err := storage.FromConfig(ctx)
//	err = disks.Default().Put(ctx, "qr/abc.png", png, "image/png")
//	url := disks.Default().URL("qr/abc.png")
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shashiranjanraj/groupcart/config"
)

// ErrNotExist is returned by Get when path has no file.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is the driver interface.
type Disk interface {
	// Put writes content to path, replacing any existing file.
	Put(ctx context.Context, path string, content []byte, contentType string) error
	// Get returns the content at path, or ErrNotExist.
	Get(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
	// Delete removes path. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error
	// URL returns the public URL for path.
	URL(path string) string
}

// Manager holds the configured disks.
type Manager struct {
	mu          sync.RWMutex
	disks       map[string]Disk
	defaultName string
}

// NewManager creates a Manager whose default disk is defaultName.
func NewManager(defaultName string) *Manager {
	return &Manager{disks: make(map[string]Disk), defaultName: defaultName}
}

// Register adds or replaces a disk.
func (m *Manager) Register(name string, d Disk) {
	m.mu.Lock()
	m.disks[name] = d
	m.mu.Unlock()
}

// Disk returns the named disk.
func (m *Manager) Disk(name string) (Disk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the default disk. It panics when the default was never
// registered, which FromConfig rules out.
func (m *Manager) Default() Disk {
	d, err := m.Disk(m.defaultName)
	if err != nil {
		panic(err)
	}
	return d
}

// Names lists registered disks.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.disks))
	for n := range m.disks {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// FromConfig always registers the local disk and adds s3 when S3_BUCKET is
// set. STORAGE_DISK picks the default.
func FromConfig(ctx context.Context) (*Manager, error) {
	m := NewManager(config.StorageDefault())
	m.Register("local", NewLocalDisk(config.StorageLocalRoot(), config.StorageURL()))

	if config.StorageS3Bucket() != "" {
		d, err := NewS3Disk(ctx, S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
		if err != nil {
			return nil, err
		}
		m.Register("s3", d)
	}

	if _, err := m.Disk(m.defaultName); err != nil {
		return nil, fmt.Errorf("storage: STORAGE_DISK=%q: %w", m.defaultName, err)
	}
	return m, nil
}
