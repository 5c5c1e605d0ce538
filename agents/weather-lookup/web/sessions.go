package web

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	weatherlookup "weather-app/agents/weather-lookup"
	"weather-app/internal/models"
)

// sessionEntry serializes requests that share one session
type sessionEntry struct {
	mu      sync.Mutex
	session *weatherlookup.Session
}

// SessionStore keeps per-browser lookup state in memory. Sessions expire after
// ttl without a request.
type SessionStore struct {
	cache *gocache.Cache
	ttl   time.Duration
	mu    sync.Mutex
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{
		cache: gocache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

// get returns the session with id, refreshing its expiry
func (s *SessionStore) get(id string) (*sessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, found := s.cache.Get(id)
	if !found {
		return nil, false
	}
	entry := v.(*sessionEntry)
	s.cache.Set(id, entry, s.ttl)
	return entry, true
}

// create starts a new session with a random id
func (s *SessionStore) create(units models.UnitSystem) *sessionEntry {
	entry := &sessionEntry{session: weatherlookup.NewSession(uuid.NewString(), units)}

	s.mu.Lock()
	s.cache.Set(entry.session.ID, entry, s.ttl)
	s.mu.Unlock()
	return entry
}

// Count returns the number of live sessions
func (s *SessionStore) Count() int {
	return s.cache.ItemCount()
}
