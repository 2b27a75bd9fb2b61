// Package authstore holds the client-side authentication state and keeps it
// in sync with the backend session.
//
// A Store is an explicit object handed to the components that need auth state;
// there is no package-level instance. Every write is published to subscribers
// after the store's lock is released, in subscription order.
//
// Refreshes are ordered by a monotonic sequence token: only the most recently
// started FetchAuthenticatedUser may write its result, so a slow superseded
// refresh can never overwrite a newer one.
package authstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jsmfood/food-ordering/internal/core/domain"
	"github.com/jsmfood/food-ordering/internal/pkg/metrics"
)

const defaultFetchTimeout = 10 * time.Second

// UserFetcher resolves the user behind the active session.
type UserFetcher interface {
	GetCurrentUser(ctx context.Context) (*domain.User, error)
}

// Listener receives every state the store publishes.
type Listener func(domain.AuthState)

// Option configures a Store.
type Option func(*Store)

// WithFetchTimeout bounds each FetchAuthenticatedUser call. Non-positive
// values keep the default.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger refresh failures are reported to.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

type subscription struct {
	id uint64
	fn Listener
}

// Store is an observable AuthState cell.
type Store struct {
	fetcher UserFetcher
	timeout time.Duration
	log     zerolog.Logger

	mu        sync.Mutex
	seq       uint64 // latest issued refresh token
	state     domain.AuthState
	listeners []subscription
	nextID    uint64
}

// New returns a Store in the initial state {unauthenticated, no user, loading}.
func New(fetcher UserFetcher, opts ...Option) *Store {
	s := &Store{
		fetcher: fetcher,
		timeout: defaultFetchTimeout,
		log:     zerolog.Nop(),
		state:   domain.InitialAuthState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns a snapshot of the current state.
func (s *Store) Read() domain.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers l for every subsequent write. The returned function
// removes it and is safe to call more than once.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: l})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) SetIsAuthenticated(v bool) {
	s.update(func(st *domain.AuthState) { st.IsAuthenticated = v })
}

func (s *Store) SetUser(u *domain.User) {
	s.update(func(st *domain.AuthState) { st.User = u })
}

func (s *Store) SetIsLoading(v bool) {
	s.update(func(st *domain.AuthState) { st.IsLoading = v })
}

// Reset clears the session state after sign-out and invalidates any refresh
// still in flight.
func (s *Store) Reset() {
	s.update(func(st *domain.AuthState) {
		s.seq++
		*st = domain.AuthState{}
	})
}

// FetchAuthenticatedUser refreshes the state from the backend. It never
// returns a failure: any error leaves the store unauthenticated. IsLoading is
// true while the call runs and false once it settles, unless a newer refresh
// or a Reset has taken over.
func (s *Store) FetchAuthenticatedUser(ctx context.Context) {
	token := s.begin()
	defer s.updateIfCurrent(token, func(st *domain.AuthState) { st.IsLoading = false })

	user, err := s.fetch(ctx)

	outcome := "authenticated"
	switch {
	case err != nil && errors.Is(err, domain.ErrUnauthenticated):
		outcome = "unauthenticated"
		s.log.Debug().Err(err).Msg("no active session")
	case err != nil:
		outcome = "failed"
		s.log.Error().Err(err).Msg("fetch authenticated user failed")
	case user == nil:
		outcome = "unauthenticated"
	}

	applied := s.updateIfCurrent(token, func(st *domain.AuthState) {
		if outcome == "authenticated" {
			st.IsAuthenticated, st.User = true, user
			return
		}
		st.IsAuthenticated, st.User = false, nil
	})
	if !applied {
		outcome = "superseded"
		s.log.Debug().Uint64("token", token).Msg("discarding superseded auth refresh")
	}
	metrics.AuthRefreshTotal.WithLabelValues(outcome).Inc()
}

// fetch calls the fetcher under the store timeout, converting a panic into an
// error so the refresh still settles.
func (s *Store) fetch(ctx context.Context) (user *domain.User, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			user, err = nil, fmt.Errorf("fetch authenticated user panicked: %v", r)
		}
	}()
	return s.fetcher.GetCurrentUser(ctx)
}

// begin issues a refresh token and marks the store loading in one write, so
// no Reset or newer refresh can land between the two.
func (s *Store) begin() uint64 {
	var token uint64
	s.update(func(st *domain.AuthState) {
		s.seq++
		token = s.seq
		st.IsLoading = true
	})
	return token
}

func (s *Store) update(mutate func(*domain.AuthState)) {
	s.mu.Lock()
	mutate(&s.state)
	snapshot, listeners := s.state, s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, snapshot)
}

// updateIfCurrent applies mutate only when token is still the latest issued.
func (s *Store) updateIfCurrent(token uint64, mutate func(*domain.AuthState)) bool {
	s.mu.Lock()
	if s.seq != token {
		s.mu.Unlock()
		return false
	}
	mutate(&s.state)
	snapshot, listeners := s.state, s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, snapshot)
	return true
}

func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, len(s.listeners))
	for i, sub := range s.listeners {
		out[i] = sub.fn
	}
	return out
}

func notify(listeners []Listener, st domain.AuthState) {
	for _, l := range listeners {
		l(st)
	}
}
