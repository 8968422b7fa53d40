package repositories

import (
	"context"

	"github.com/upb/unified-ai-gateway/models"
)

// SessionRepository handles conversation-session persistence. Sessions are
// keyed uniquely by (product, id); implementations must tolerate concurrent
// callers touching the same or different keys. Concurrent saves of the same
// key resolve last-write-wins; the store does not serialize by session key.
type SessionRepository interface {
	// Get retrieves a session, or nil when the key is absent.
	Get(ctx context.Context, id string, product models.Product) (*models.Session, error)

	// Save persists a session, overwriting any existing entry at the same
	// key, and advances the session's UpdatedAt.
	Save(ctx context.Context, session *models.Session) error

	// Delete removes a session. It reports true iff an entry existed and
	// was removed.
	Delete(ctx context.Context, id string, product models.Product) (bool, error)

	// List returns sessions ordered by UpdatedAt descending, truncated to
	// limit; implementations apply a default cap of 100 when limit is
	// non-positive. An empty product returns sessions of every product.
	List(ctx context.Context, product models.Product, limit int) ([]*models.Session, error)
}
