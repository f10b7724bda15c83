package net

import "slices"

// SessionStore indexes the game loop's live sessions. Game loop only.
type SessionStore struct {
	sessions map[uint64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uint64]*Session, 64)}
}

func (st *SessionStore) Add(s *Session)         { st.sessions[s.ID] = s }
func (st *SessionStore) Remove(id uint64)       { delete(st.sessions, id) }
func (st *SessionStore) Count() int             { return len(st.sessions) }
func (st *SessionStore) Get(id uint64) *Session { return st.sessions[id] }

// IDs returns session ids in ascending order so input is drained in a
// stable order every tick.
func (st *SessionStore) IDs() []uint64 {
	ids := make([]uint64, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
