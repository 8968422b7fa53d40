package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/upb/unified-ai-gateway/models"
)

// DefaultMaxSessions bounds the in-process store.
const DefaultMaxSessions = 10000

// DefaultListLimit caps List results when the caller passes a
// non-positive limit. Both store variants use the same cap.
const DefaultListLimit = 100

// SessionRepository is a capacity-bounded in-process session store.
// Data is lost on restart; production deployments use the Redis store.
//
// All map mutations run under a single mutex. The store does not serialize
// by session key: two concurrent requests against the same session can both
// read, both append, and the later Save wins. That last-write-wins behavior
// is part of the store contract.
type SessionRepository struct {
	mu          sync.RWMutex
	sessions    map[string]*models.Session
	maxSessions int
}

// NewSessionRepository creates an in-memory store bounded to maxSessions
// entries. A non-positive maxSessions uses DefaultMaxSessions.
func NewSessionRepository(maxSessions int) *SessionRepository {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &SessionRepository{
		sessions:    make(map[string]*models.Session),
		maxSessions: maxSessions,
	}
}

// Get retrieves a session, or nil when the key is absent.
func (r *SessionRepository) Get(ctx context.Context, id string, product models.Product) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[models.SessionKey(id, product)]
	if !ok {
		return nil, nil
	}
	return session.Clone(), nil
}

// Save persists a session, overwriting any existing entry at the same key.
// Saving a new key at capacity first evicts the single entry with the
// smallest UpdatedAt; the incoming entry is never the eviction candidate
// because it is inserted only after the scan.
func (r *SessionRepository) Save(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	key := session.Key()
	if _, exists := r.sessions[key]; !exists && len(r.sessions) >= r.maxSessions {
		r.evictOldest()
	}

	r.sessions[key] = session.Clone()
	return nil
}

// Delete removes a session, reporting whether an entry existed.
func (r *SessionRepository) Delete(ctx context.Context, id string, product models.Product) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.SessionKey(id, product)
	if _, ok := r.sessions[key]; !ok {
		return false, nil
	}
	delete(r.sessions, key)
	return true, nil
}

// List returns sessions ordered by UpdatedAt descending, truncated to
// limit (DefaultListLimit when non-positive). An empty product matches
// every product.
func (r *SessionRepository) List(ctx context.Context, product models.Product, limit int) ([]*models.Session, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	r.mu.RLock()
	out := make([]*models.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		if product != "" && session.Product != product {
			continue
		}
		out = append(out, session.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Size returns the current number of stored sessions.
func (r *SessionRepository) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// evictOldest removes the entry with the smallest UpdatedAt. Linear scan;
// acceptable at the store's bounded scale. Caller holds the lock.
func (r *SessionRepository) evictOldest() {
	var oldestKey string
	var oldest time.Time
	first := true

	for key, session := range r.sessions {
		if first || session.UpdatedAt.Before(oldest) {
			oldestKey = key
			oldest = session.UpdatedAt
			first = false
		}
	}

	if oldestKey != "" {
		delete(r.sessions, oldestKey)
	}
}
