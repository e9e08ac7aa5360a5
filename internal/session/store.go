// Package session keeps one view controller per browser session.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"assetmix/internal/cache"
	"assetmix/internal/log"
	"assetmix/internal/view"
)

// CookieName is the session cookie set on every browser.
const CookieName = "assetmix_session"

// Factory builds the controller of a new session.
type Factory func(id string) *view.Controller

// Config bounds the store.
type Config struct {
	TTL             time.Duration
	MaxSessions     int
	CleanupInterval time.Duration
}

// Store maps session ids to controllers. Idle or overflowing sessions are
// evicted and their controllers closed.
type Store struct {
	sessions *cache.LRUCache[*view.Controller]
	manager  *cache.Manager
	factory  Factory
	cfg      Config
	logger   *log.Logger
}

// NewStore creates a store that builds controllers with factory.
func NewStore(cfg Config, factory Factory, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	s := &Store{
		factory: factory,
		cfg:     cfg,
		logger:  logger.WithComponent(log.ComponentSession),
	}
	s.sessions = cache.NewLRUCache[*view.Controller](cfg.MaxSessions, cfg.TTL,
		cache.WithEvict[*view.Controller](s.evict))
	s.manager = cache.NewManager(logger)
	s.manager.Register(s.sessions)
	return s
}

func (s *Store) evict(id string, c *view.Controller) {
	c.Close()
	s.logger.Debug("Session closed",
		log.FieldOperation, log.OpEvict,
		log.FieldSessionID, id)
}

// Get returns the controller of session id.
func (s *Store) Get(id string) (*view.Controller, bool) {
	if id == "" {
		return nil, false
	}
	return s.sessions.Get(id)
}

// Create starts a new session.
func (s *Store) Create() (string, *view.Controller) {
	id := uuid.NewString()
	c := s.factory(id)
	s.sessions.Set(id, c)
	s.logger.Debug("Session created", log.FieldSessionID, id)
	return id, c
}

// Ensure returns the controller for the request's session cookie, starting a
// new session and setting the cookie when there is none. created reports
// whether the session is new.
func (s *Store) Ensure(w http.ResponseWriter, r *http.Request) (id string, c *view.Controller, created bool) {
	if ck, err := r.Cookie(CookieName); err == nil {
		if c, ok := s.Get(ck.Value); ok {
			return ck.Value, c, false
		}
	}
	id, c = s.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	return id, c, true
}

// Lookup returns the controller for the request's session cookie without
// creating one.
func (s *Store) Lookup(r *http.Request) (*view.Controller, bool) {
	ck, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	return s.Get(ck.Value)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.sessions.Size()
}

// Run expires idle sessions until ctx is done.
func (s *Store) Run(ctx context.Context) error {
	interval := s.cfg.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	return s.manager.Run(ctx, interval)
}

// Close ends every session.
func (s *Store) Close() {
	if n := s.sessions.Purge(); n > 0 {
		s.logger.Info("Sessions closed", log.FieldOperation, log.OpShutdown, log.FieldCount, n)
	}
}
