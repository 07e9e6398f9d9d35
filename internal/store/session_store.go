package store

import (
	"path/filepath"
	"sync"

	"cipherpost/internal/domain"
)

const sessionsFilename = "peer_sessions.json"

// SessionFileStore persists X3DH bootstrap records per peer device.
type SessionFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewSessionFileStore returns a SessionFileStore rooted at dir.
func NewSessionFileStore(dir string) *SessionFileStore {
	return &SessionFileStore{dir: dir}
}

// SavePeerSession writes a session record for one peer device.
func (s *SessionFileStore) SavePeerSession(
	key domain.ConversationID,
	session domain.PeerSession,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, sessionsFilename)
	sessions := map[domain.ConversationID]domain.PeerSession{}
	_ = readJSON(path, &sessions)
	sessions[key] = session
	return writeJSON(path, sessions, 0o600)
}

// LoadPeerSession retrieves a stored session record for one peer device.
func (s *SessionFileStore) LoadPeerSession(
	key domain.ConversationID,
) (domain.PeerSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, sessionsFilename)
	sessions := map[domain.ConversationID]domain.PeerSession{}
	if err := readJSON(path, &sessions); err != nil {
		return domain.PeerSession{}, false, err
	}
	session, ok := sessions[key]
	return session, ok, nil
}

// Compile-time assertion that SessionFileStore implements domain.SessionStore.
var _ domain.SessionStore = (*SessionFileStore)(nil)
