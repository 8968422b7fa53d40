package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/upb/unified-ai-gateway/models"
)

// DefaultTTL is the session record lifetime; refreshed on every Save.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "session:"

// defaultListLimit caps List results when the caller passes a
// non-positive limit; matches the in-memory store's cap.
const defaultListLimit = 100

// SessionRepository is a durable Redis-backed session store. Each session
// is serialized to a JSON record with a TTL, so idle conversations expire
// on their own. Store failures are not retried here; they propagate to the
// caller as-is.
type SessionRepository struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewSessionRepository connects to Redis at the given URL
// (redis://[:password@]host:port/db) and verifies connectivity.
// A non-positive ttl uses DefaultTTL.
func NewSessionRepository(ctx context.Context, redisURL string, ttl time.Duration) (*SessionRepository, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SessionRepository{client: client, ttl: ttl}, nil
}

// Get retrieves a session, or nil when the key is absent or expired.
func (r *SessionRepository) Get(ctx context.Context, id string, product models.Product) (*models.Session, error) {
	data, err := r.client.Get(ctx, recordKey(id, product)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session record: %w", err)
	}
	return &session, nil
}

// Save serializes the session and writes it with a fresh TTL, overwriting
// any existing record at the same key.
func (r *SessionRepository) Save(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session record: %w", err)
	}

	if err := r.client.Set(ctx, recordKey(session.ID, session.Product), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session record, reporting whether one existed.
func (r *SessionRepository) Delete(ctx context.Context, id string, product models.Product) (bool, error) {
	removed, err := r.client.Del(ctx, recordKey(id, product)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	return removed > 0, nil
}

// List scans for matching record keys bounded by limit (defaultListLimit
// when non-positive), then resolves each key via Get. Results are ordered
// by UpdatedAt descending.
func (r *SessionRepository) List(ctx context.Context, product models.Product, limit int) ([]*models.Session, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	keys := make([]string, 0, limit)
	iter := r.client.Scan(ctx, 0, scanPattern(product), int64(limit)).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}

	sessions := make([]*models.Session, 0, len(keys))
	for _, key := range keys {
		data, err := r.client.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			continue // expired between scan and get
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}

		var session models.Session
		if err := json.Unmarshal(data, &session); err != nil {
			return nil, fmt.Errorf("failed to decode session record: %w", err)
		}
		sessions = append(sessions, &session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// Close releases the underlying Redis connection.
func (r *SessionRepository) Close() error {
	return r.client.Close()
}

func recordKey(id string, product models.Product) string {
	return keyPrefix + models.SessionKey(id, product)
}

func scanPattern(product models.Product) string {
	if product == "" {
		return keyPrefix + "*"
	}
	return keyPrefix + string(product) + ":*"
}

