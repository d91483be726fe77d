package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vermimetrics/vermi-platform/pkg/localstore"
	"github.com/vermimetrics/vermi-platform/pkg/vermisdk"
)

func authenticatedStore(t *testing.T, local *localstore.Store) (*Store, *mockIdentity) {
	t.Helper()

	identity := &mockIdentity{}
	identity.setSession(vermisdk.AuthSession{AuthUID: "uid-1", IDToken: "tok"})
	directory := &mockDirectory{
		getFn: func(ctx context.Context, token, authUID string) (vermisdk.Account, error) {
			return vermisdk.Account{UserID: uuid.New(), AuthUID: authUID}, nil
		},
	}

	store := NewStore(identity, directory, local)
	require.NoError(t, store.RefreshUser(context.Background()))
	return store, identity
}

func TestResolveWhileLoadingDoesNotNavigate(t *testing.T) {
	t.Parallel()

	store := NewStore(&mockIdentity{}, &mockDirectory{}, newLocalStore(t))

	navigations := 0
	guard := NewGuard(store, func(Route) { navigations++ }, 0)

	require.Equal(t, StateLoading, guard.State())

	_, redirected := guard.Resolve(RouteHome)
	require.False(t, redirected)
	require.Zero(t, navigations)
}

func TestResolveRedirectsAuthenticatedFromEntry(t *testing.T) {
	t.Parallel()

	store, _ := authenticatedStore(t, newLocalStore(t))

	var target Route
	guard := NewGuard(store, func(route Route) { target = route }, 0)

	route, redirected := guard.Resolve(RouteEntry)
	require.True(t, redirected)
	require.Equal(t, RouteHome, route)
	require.Equal(t, RouteHome, target)

	// Other routes stay put.
	_, redirected = guard.Resolve(RouteHome)
	require.False(t, redirected)
}

func TestResolveRedirectsUnauthenticatedOutsideAllowList(t *testing.T) {
	t.Parallel()

	store := NewStore(&mockIdentity{}, &mockDirectory{}, newLocalStore(t))
	require.NoError(t, store.RefreshUser(context.Background()))

	var target Route
	guard := NewGuard(store, func(route Route) { target = route }, 0)

	route, redirected := guard.Resolve(RouteHome)
	require.True(t, redirected)
	require.Equal(t, RouteEntry, route)
	require.Equal(t, RouteEntry, target)

	for _, allowed := range []Route{RouteEntry, RouteSignIn, RouteSelectTank, RouteCheckEmail} {
		_, redirected := guard.Resolve(allowed)
		require.False(t, redirected, "route %s should be allowed", allowed)
	}
}

func TestLogoutSequence(t *testing.T) {
	t.Parallel()

	local := newLocalStore(t)
	require.NoError(t, local.Set(localstore.KeyAccessToken, "tok"))
	require.NoError(t, local.Set(localstore.KeyUserID, "user-1"))

	store, identity := authenticatedStore(t, local)

	var navigations []Route
	guard := NewGuard(store, func(route Route) { navigations = append(navigations, route) }, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		guard.Logout()
	}()

	// The flag drops before the exit transition finishes.
	require.Eventually(t, func() bool {
		return !store.Snapshot().IsAuthenticated
	}, time.Second, time.Millisecond)

	<-done

	require.Equal(t, []Route{RouteEntry}, navigations)
	require.Equal(t, 1, identity.signOuts)

	var token string
	found, err := local.Get(localstore.KeyAccessToken, &token)
	require.NoError(t, err)
	require.False(t, found)

	var userID string
	found, err = local.Get(localstore.KeyUserID, &userID)
	require.NoError(t, err)
	require.False(t, found)
}
