package store

import (
	"path/filepath"
	"sync"

	"cipherpost/internal/domain"
)

const convFilename = "conversations.json"

// RatchetFileStore persists per-device Double-Ratchet state to disk.
type RatchetFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewRatchetFileStore returns a RatchetFileStore rooted at dir.
func NewRatchetFileStore(dir string) *RatchetFileStore {
	return &RatchetFileStore{dir: dir}
}

// SaveConversation writes the Conversation for a peer device.
func (s *RatchetFileStore) SaveConversation(
	key domain.ConversationID,
	conv domain.Conversation,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, convFilename)
	m := map[domain.ConversationID]domain.Conversation{}
	_ = readJSON(path, &m)
	m[key] = conv
	return writeJSON(path, m, 0o600)
}

// LoadConversation retrieves the Conversation for a peer device.
func (s *RatchetFileStore) LoadConversation(
	key domain.ConversationID,
) (domain.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, convFilename)
	m := map[domain.ConversationID]domain.Conversation{}
	if err := readJSON(path, &m); err != nil {
		return domain.Conversation{}, false, err
	}
	c, ok := m[key]
	return c, ok, nil
}

// Compile-time assertion that RatchetFileStore implements domain.RatchetStore.
var _ domain.RatchetStore = (*RatchetFileStore)(nil)
