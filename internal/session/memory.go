package session

import (
	"context"
	"sync"
)

// MemoryRepository keeps sessions in memory, for tests and embedded dev
// runs. Lookup walks every entry and compares with the constant-time
// Token.Equal, so the comparison cost does not depend on where a probe
// diverges from a stored token.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions []Session
}

// NewMemoryRepository creates an empty in-memory repo.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Save(_ context.Context, sess Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, sess)
	return nil
}

func (r *MemoryRepository) FindByToken(_ context.Context, token Token) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.sessions {
		if r.sessions[i].Token.Equal(token) {
			sess := r.sessions[i]
			return &sess, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) CountByCourse(_ context.Context, courseID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for i := range r.sessions {
		if r.sessions[i].CourseID == courseID {
			n++
		}
	}
	return n, nil
}
