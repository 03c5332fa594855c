package service

import (
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vbonduro/stowaway/internal/loader"
	"github.com/vbonduro/stowaway/internal/search"
	"github.com/vbonduro/stowaway/internal/state"
)

const defaultMaxSessions = 256

// Session is one user's loaded inventory together with the engines reading
// it.
type Session struct {
	UserID string
	Store  *state.Store
	Search *search.Engine
	Loader *loader.Loader
}

// sessions keeps the most recently used sessions. An evicted session is
// rebuilt empty on next use and must be loaded again.
type sessions struct {
	mu      sync.Mutex
	cache   *lru.Cache[string, *Session]
	source  loader.Source
	options Options
	logger  *slog.Logger
}

func newSessions(source loader.Source, opts Options, logger *slog.Logger) (*sessions, error) {
	size := opts.MaxSessions
	if size <= 0 {
		size = defaultMaxSessions
	}
	cache, err := lru.New[string, *Session](size)
	if err != nil {
		return nil, err
	}
	return &sessions{cache: cache, source: source, options: opts, logger: logger}, nil
}

func (s *sessions) get(userID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.cache.Get(userID); ok {
		return sess
	}
	st := state.NewStore()
	sess := &Session{
		UserID: userID,
		Store:  st,
		Search: search.NewEngine(st, nil, s.options.SearchCacheSize, s.logger),
		Loader: loader.New(s.source, st, loader.Options{MaxConcurrency: s.options.LoaderMaxConcurrency}, s.logger),
	}
	s.cache.Add(userID, sess)
	return sess
}

// drop forgets userID's session so the next request loads it afresh.
func (s *sessions) drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(userID)
}
