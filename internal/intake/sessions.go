package intake

import "sync"

// Sessions holds in-progress conversations keyed by conversation id.
// Sessions never expire; they end on cancel or completion.
type Sessions struct {
	mu       sync.Mutex
	sessions map[int64]Session
	locks    map[int64]*conversationLock
}

// conversationLock is held while one input of a conversation is handled;
// refs counts the holders and waiters so the entry can be dropped when idle
type conversationLock struct {
	mu   sync.Mutex
	refs int
}

// NewSessions creates an empty session map
func NewSessions() *Sessions {
	return &Sessions{
		sessions: make(map[int64]Session),
		locks:    make(map[int64]*conversationLock),
	}
}

// Get returns the session of the conversation; the zero Session if none is active
func (s *Sessions) Get(id int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// Put stores the session of the conversation
func (s *Sessions) Put(id int64, session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = session
}

// Delete forgets the session of the conversation
func (s *Sessions) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of active sessions
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// lock serializes handling of one conversation; other conversations proceed in parallel
func (s *Sessions) lock(id int64) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &conversationLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		defer s.mu.Unlock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
	}
}

// lockCount returns the number of conversations currently being handled
func (s *Sessions) lockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
