package wallet

import (
	"encoding/json"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/chainfund/donation-workers/entities"
)

// PersistedSession is the durable slice of a chain session: enough to
// attempt a silent reconnect after a restart.
type PersistedSession struct {
	Address   string `json:"address"`
	Connected bool   `json:"connected"`
}

// SessionStore persists per-chain connection state in leveldb under
// chain-scoped keys. Entries are cleared on explicit disconnect or when a
// silent reconnect is not authorized.
type SessionStore struct {
	db *leveldb.DB
}

func OpenSessionStore(path string) (*SessionStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &SessionStore{db: db}, nil
}

func (s *SessionStore) Close() error {
	return s.db.Close()
}

func sessionKey(chain entities.Chain) []byte {
	return []byte("session-" + string(chain))
}

func (s *SessionStore) Save(chain entities.Chain, session PersistedSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.db.Put(sessionKey(chain), raw, nil)
}

// Load returns the persisted session for the chain, reporting whether one
// exists.
func (s *SessionStore) Load(chain entities.Chain) (PersistedSession, bool, error) {
	raw, err := s.db.Get(sessionKey(chain), nil)
	if err == leveldb.ErrNotFound {
		return PersistedSession{}, false, nil
	}
	if err != nil {
		return PersistedSession{}, false, err
	}
	var session PersistedSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return PersistedSession{}, false, err
	}
	return session, true, nil
}

func (s *SessionStore) Clear(chain entities.Chain) error {
	return s.db.Delete(sessionKey(chain), nil)
}
