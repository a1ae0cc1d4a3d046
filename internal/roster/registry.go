package roster

import (
	"context"
	"sync"
	"time"

	"github.com/TommyBurger4/ClubSportFrance/internal/catalog"
)

// Registry keeps one open session per club so the pending flag holds across
// requests for the same club.
type Registry struct {
	store   Store
	catalog *catalog.Catalog
	opts    []Option
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	lastUsed map[string]time.Time
}

func NewRegistry(store Store, cat *catalog.Catalog, opts ...Option) *Registry {
	return &Registry{
		store:    store,
		catalog:  cat,
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*Session),
		lastUsed: make(map[string]time.Time),
	}
}

// Session returns the open session for clubID, opening it on first use. If
// the club's sport changed since the session was opened, the session
// re-resolves its schema. The stored roster is loaded without holding the
// registry lock; when two requests race to open the same club the first
// session registered wins.
func (r *Registry) Session(ctx context.Context, clubID, sport string) (*Session, error) {
	if s := r.lookup(clubID); s != nil {
		s.ChangeSport(sport)
		return s, nil
	}

	opened, err := Open(ctx, r.store, r.catalog, clubID, sport, r.opts...)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	s, ok := r.sessions[clubID]
	if !ok {
		s = opened
		r.sessions[clubID] = s
	}
	r.lastUsed[clubID] = r.now()
	r.mu.Unlock()

	if ok {
		s.ChangeSport(sport)
	}
	return s, nil
}

func (r *Registry) lookup(clubID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[clubID]
	if !ok {
		return nil
	}
	r.lastUsed[clubID] = r.now()
	return s
}

// ChangeSport forwards a sport change to the club's session if one is open.
func (r *Registry) ChangeSport(clubID, sport string) bool {
	r.mu.Lock()
	s, ok := r.sessions[clubID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	s.ChangeSport(sport)
	return true
}

// Close drops the session of clubID. A session with a write pending is kept
// and Close reports false.
func (r *Registry) Close(clubID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[clubID]
	if !ok || s.Pending() {
		return false
	}
	delete(r.sessions, clubID)
	delete(r.lastUsed, clubID)
	return true
}

// Idle lists the clubs whose session was last requested at or before cutoff.
func (r *Registry) Idle(cutoff time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for clubID, at := range r.lastUsed {
		if !at.After(cutoff) {
			ids = append(ids, clubID)
		}
	}
	return ids
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
