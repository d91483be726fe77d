// Package session holds the process-wide authenticated session state and the
// route guard that drives navigation from it.
package session

import (
	"context"
	"sync"

	"github.com/vermimetrics/vermi-platform/pkg/localstore"
	"github.com/vermimetrics/vermi-platform/pkg/vermisdk"
)

// AccountDirectory resolves the application account behind an identity.
type AccountDirectory interface {
	GetAccountByAuthUID(ctx context.Context, token, authUID string) (vermisdk.Account, error)
}

// State is a point-in-time snapshot of the session store.
type State struct {
	User            *vermisdk.Account
	IsAuthenticated bool
	Loading         bool
}

// Store is the single source of truth for the authenticated session.
// RefreshUser is the sole mutator entry point; everything else only reads.
type Store struct {
	identity vermisdk.IdentityProvider
	accounts AccountDirectory
	local    *localstore.Store

	mu            sync.Mutex
	user          *vermisdk.Account
	authenticated bool
	loading       bool

	unsubscribe func()
}

// NewStore constructs a Store. The store starts in the loading state; call
// Start to resolve it.
func NewStore(identity vermisdk.IdentityProvider, accounts AccountDirectory, local *localstore.Store) *Store {
	if identity == nil {
		panic("identity provider is required")
	}
	if accounts == nil {
		panic("account directory is required")
	}
	if local == nil {
		panic("local store is required")
	}
	return &Store{
		identity: identity,
		accounts: accounts,
		local:    local,
		loading:  true,
	}
}

// Start subscribes to identity provider transitions and runs the initial
// resync. Sign-in events re-run RefreshUser; sign-out clears all local state.
func (s *Store) Start(ctx context.Context) error {
	s.unsubscribe = s.identity.Subscribe(
		func(vermisdk.AuthSession) {
			_ = s.RefreshUser(ctx)
		},
		func() {
			s.clearAll()
		},
	)

	return s.RefreshUser(ctx)
}

// Close removes the identity provider subscription.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{
		IsAuthenticated: s.authenticated,
		Loading:         s.loading,
	}
	if s.user != nil {
		user := *s.user
		state.User = &user
	}
	return state
}

// RefreshUser resyncs the store against the identity provider: no session
// clears the state and the cached profile; a session fetches the account
// profile and sets it, clearing instead if the lookup fails. It is idempotent,
// and loading ends on every path.
func (s *Store) RefreshUser(ctx context.Context) error {
	defer s.endLoading()

	session, ok, err := s.identity.CurrentSession(ctx)
	if err != nil {
		s.clearUser()
		return err
	}
	if !ok {
		s.clearUser()
		return nil
	}

	account, err := s.accounts.GetAccountByAuthUID(ctx, session.IDToken, session.AuthUID)
	if err != nil {
		s.clearUser()
		return err
	}

	s.mu.Lock()
	s.user = &account
	s.authenticated = true
	s.mu.Unlock()

	return s.local.Set(localstore.KeyUser, account)
}

// setUnauthenticated flips the flag without touching persisted state. The
// guard uses it so logout can show the exit transition before keys are
// cleared.
func (s *Store) setUnauthenticated() {
	s.mu.Lock()
	s.authenticated = false
	s.mu.Unlock()
}

func (s *Store) endLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

// clearUser resets the in-memory state and drops the cached profile.
func (s *Store) clearUser() {
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()

	_ = s.local.Delete(localstore.KeyUser)
}

// clearAll resets the in-memory state and wipes every persisted key.
func (s *Store) clearAll() {
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()

	_ = s.local.Clear()
}
