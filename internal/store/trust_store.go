package store

import (
	"path/filepath"
	"sort"
	"sync"

	"cipherpost/internal/domain"
)

const trustFilename = "trust.json"

// TrustFileStore persists trust decisions per peer device.
type TrustFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewTrustFileStore returns a TrustFileStore rooted at dir.
func NewTrustFileStore(dir string) *TrustFileStore {
	return &TrustFileStore{dir: dir}
}

// RecordTrust stores or replaces the decision for one peer device.
func (s *TrustFileStore) RecordTrust(record domain.TrustRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, trustFilename)
	m := map[domain.ConversationID]domain.TrustRecord{}
	_ = readJSON(path, &m)
	m[domain.ConversationKey(record.Peer, record.DeviceID)] = record
	return writeJSON(path, m, 0o600)
}

// LookupTrust returns the decision recorded for a peer device, if any.
func (s *TrustFileStore) LookupTrust(
	peer domain.Address,
	device domain.DeviceID,
) (domain.TrustRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, trustFilename)
	m := map[domain.ConversationID]domain.TrustRecord{}
	if err := readJSON(path, &m); err != nil {
		return domain.TrustRecord{}, false, err
	}
	rec, ok := m[domain.ConversationKey(peer, device)]
	return rec, ok, nil
}

// ListTrust returns all recorded decisions, ordered by peer then device.
func (s *TrustFileStore) ListTrust() ([]domain.TrustRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, trustFilename)
	m := map[domain.ConversationID]domain.TrustRecord{}
	if err := readJSON(path, &m); err != nil {
		return nil, err
	}
	out := make([]domain.TrustRecord, 0, len(m))
	for _, rec := range m {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Peer != out[j].Peer {
			return out[i].Peer < out[j].Peer
		}
		return out[i].DeviceID < out[j].DeviceID
	})
	return out, nil
}

// Compile-time assertion that TrustFileStore implements domain.TrustStore.
var _ domain.TrustStore = (*TrustFileStore)(nil)
