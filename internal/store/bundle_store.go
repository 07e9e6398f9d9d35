package store

import (
	"path/filepath"
	"sync"

	"cipherpost/internal/domain"
)

const bundleFile = "bundle.json"

// BundleFileStore caches the last device bundle you published.
type BundleFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewBundleFileStore returns a BundleFileStore rooted at dir.
func NewBundleFileStore(dir string) *BundleFileStore {
	return &BundleFileStore{dir: dir}
}

// SaveDeviceBundle writes the bundle to disk.
func (s *BundleFileStore) SaveDeviceBundle(b domain.DeviceBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(filepath.Join(s.dir, bundleFile), b, 0o600)
}

// LoadDeviceBundle returns the cached bundle and whether it was present.
func (s *BundleFileStore) LoadDeviceBundle(address domain.Address) (domain.DeviceBundle, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b domain.DeviceBundle
	if err := readJSON(filepath.Join(s.dir, bundleFile), &b); err != nil {
		return domain.DeviceBundle{}, false, err
	}
	if b.Address != address {
		return domain.DeviceBundle{}, false, nil
	}
	return b, true, nil
}

// Compile-time assertion that BundleFileStore implements domain.BundleStore.
var _ domain.BundleStore = (*BundleFileStore)(nil)
