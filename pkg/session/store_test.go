package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vermimetrics/vermi-platform/pkg/localstore"
	"github.com/vermimetrics/vermi-platform/pkg/vermisdk"
)

type mockIdentity struct {
	mu       sync.Mutex
	current  *vermisdk.AuthSession
	onIn     func(vermisdk.AuthSession)
	onOut    func()
	signOuts int
}

func (m *mockIdentity) SignUp(ctx context.Context, email, password, displayName string) (vermisdk.AuthSession, error) {
	panic("not used")
}

func (m *mockIdentity) SignIn(ctx context.Context, email, password string) (vermisdk.AuthSession, error) {
	panic("not used")
}

func (m *mockIdentity) CurrentSession(ctx context.Context) (vermisdk.AuthSession, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return vermisdk.AuthSession{}, false, nil
	}
	return *m.current, true, nil
}

func (m *mockIdentity) SignOut() {
	m.mu.Lock()
	m.current = nil
	m.signOuts++
	onOut := m.onOut
	m.mu.Unlock()

	if onOut != nil {
		onOut()
	}
}

func (m *mockIdentity) Subscribe(onSignedIn func(vermisdk.AuthSession), onSignedOut func()) func() {
	m.mu.Lock()
	m.onIn = onSignedIn
	m.onOut = onSignedOut
	m.mu.Unlock()
	return func() {}
}

func (m *mockIdentity) setSession(session vermisdk.AuthSession) {
	m.mu.Lock()
	m.current = &session
	m.mu.Unlock()
}

func (m *mockIdentity) emitSignedIn(session vermisdk.AuthSession) {
	m.mu.Lock()
	onIn := m.onIn
	m.mu.Unlock()
	if onIn != nil {
		onIn(session)
	}
}

type mockDirectory struct {
	getFn func(ctx context.Context, token, authUID string) (vermisdk.Account, error)
}

func (m *mockDirectory) GetAccountByAuthUID(ctx context.Context, token, authUID string) (vermisdk.Account, error) {
	if m.getFn == nil {
		panic("getFn not configured")
	}
	return m.getFn(ctx, token, authUID)
}

func newLocalStore(t *testing.T) *localstore.Store {
	t.Helper()
	store, err := localstore.New(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	return store
}

func TestRefreshUserWithoutSessionClears(t *testing.T) {
	t.Parallel()

	local := newLocalStore(t)
	require.NoError(t, local.Set(localstore.KeyUser, map[string]string{"stale": "profile"}))

	store := NewStore(&mockIdentity{}, &mockDirectory{}, local)

	require.True(t, store.Snapshot().Loading)

	require.NoError(t, store.RefreshUser(context.Background()))

	snapshot := store.Snapshot()
	require.False(t, snapshot.Loading)
	require.False(t, snapshot.IsAuthenticated)
	require.Nil(t, snapshot.User)

	var cached map[string]string
	found, err := local.Get(localstore.KeyUser, &cached)
	require.NoError(t, err)
	require.False(t, found)
}

func TestRefreshUserSetsProfile(t *testing.T) {
	t.Parallel()

	identity := &mockIdentity{}
	identity.setSession(vermisdk.AuthSession{AuthUID: "uid-1", Email: "alice@example.com", IDToken: "tok"})

	userID := uuid.New()
	directory := &mockDirectory{
		getFn: func(ctx context.Context, token, authUID string) (vermisdk.Account, error) {
			require.Equal(t, "tok", token)
			require.Equal(t, "uid-1", authUID)
			return vermisdk.Account{UserID: userID, AuthUID: authUID, Email: "alice@example.com"}, nil
		},
	}

	local := newLocalStore(t)
	store := NewStore(identity, directory, local)

	require.NoError(t, store.RefreshUser(context.Background()))

	snapshot := store.Snapshot()
	require.True(t, snapshot.IsAuthenticated)
	require.NotNil(t, snapshot.User)
	require.Equal(t, userID, snapshot.User.UserID)

	var cached vermisdk.Account
	found, err := local.Get(localstore.KeyUser, &cached)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, userID, cached.UserID)
}

func TestRefreshUserIsIdempotent(t *testing.T) {
	t.Parallel()

	identity := &mockIdentity{}
	identity.setSession(vermisdk.AuthSession{AuthUID: "uid-1", IDToken: "tok"})

	userID := uuid.New()
	directory := &mockDirectory{
		getFn: func(ctx context.Context, token, authUID string) (vermisdk.Account, error) {
			return vermisdk.Account{UserID: userID, AuthUID: authUID}, nil
		},
	}

	store := NewStore(identity, directory, newLocalStore(t))

	require.NoError(t, store.RefreshUser(context.Background()))
	first := store.Snapshot()

	require.NoError(t, store.RefreshUser(context.Background()))
	second := store.Snapshot()

	require.Equal(t, first.IsAuthenticated, second.IsAuthenticated)
	require.Equal(t, first.User.UserID, second.User.UserID)
}

func TestRefreshUserClearsWhenProfileLookupFails(t *testing.T) {
	t.Parallel()

	identity := &mockIdentity{}
	identity.setSession(vermisdk.AuthSession{AuthUID: "uid-1", IDToken: "tok"})

	directory := &mockDirectory{
		getFn: func(ctx context.Context, token, authUID string) (vermisdk.Account, error) {
			return vermisdk.Account{}, errors.New("profile missing")
		},
	}

	store := NewStore(identity, directory, newLocalStore(t))

	err := store.RefreshUser(context.Background())
	require.Error(t, err)

	// Loading must still end deterministically.
	snapshot := store.Snapshot()
	require.False(t, snapshot.Loading)
	require.False(t, snapshot.IsAuthenticated)
	require.Nil(t, snapshot.User)
}

func TestStartReactsToProviderTransitions(t *testing.T) {
	t.Parallel()

	identity := &mockIdentity{}
	userID := uuid.New()
	directory := &mockDirectory{
		getFn: func(ctx context.Context, token, authUID string) (vermisdk.Account, error) {
			return vermisdk.Account{UserID: userID, AuthUID: authUID}, nil
		},
	}

	local := newLocalStore(t)
	require.NoError(t, local.Set(localstore.KeyAccessToken, "tok"))

	store := NewStore(identity, directory, local)
	require.NoError(t, store.Start(context.Background()))
	defer store.Close()

	require.False(t, store.Snapshot().IsAuthenticated)

	// Provider announces a sign-in; the store resyncs.
	session := vermisdk.AuthSession{AuthUID: "uid-1", IDToken: "tok"}
	identity.setSession(session)
	identity.emitSignedIn(session)
	require.True(t, store.Snapshot().IsAuthenticated)

	// Provider announces a sign-out; all local state goes.
	identity.SignOut()
	snapshot := store.Snapshot()
	require.False(t, snapshot.IsAuthenticated)
	require.Nil(t, snapshot.User)

	var token string
	found, err := local.Get(localstore.KeyAccessToken, &token)
	require.NoError(t, err)
	require.False(t, found)
}
