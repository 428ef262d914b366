package session

import (
	"context"
	"sync"

	"github.com/stoktakip/catalog-view/pkg/logger"
)

const anonymousKey = "anonymous"

// Registry hands out one view session per user, created lazily on first
// access. Requests without a resolved identity share a single anonymous
// session whose favorite flags stay uniformly false.
type Registry struct {
	api InventoryAPI
	cfg Config

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a session registry
func NewRegistry(api InventoryAPI, cfg Config) *Registry {
	return &Registry{
		api:      api,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for the given user, creating and seeding it on
// first access
func (r *Registry) Get(ctx context.Context, userID string) *Session {
	key := userID
	if key == "" {
		key = anonymousKey
	}

	r.mu.Lock()
	sess, ok := r.sessions[key]
	if !ok {
		sess = NewSession(userID, r.api, r.cfg)
		r.sessions[key] = sess
		logger.Debug(ctx).Str("session", key).Msg("View session created")
	}
	r.mu.Unlock()

	sess.Start(ctx)
	return sess
}
