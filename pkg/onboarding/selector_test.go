package onboarding

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vermimetrics/vermi-platform/pkg/localstore"
	"github.com/vermimetrics/vermi-platform/pkg/vermisdk"
)

type selectorFixture struct {
	selector *Selector
	pending  *PendingStore
	sessions *localstore.Store
	identity *mockIdentity
	accounts *mockAccounts
	catalog  *mockCatalog
}

func newSelectorFixture(t *testing.T) *selectorFixture {
	t.Helper()

	store, err := localstore.New(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	pending := NewPendingStore(store)
	identity := &mockIdentity{}
	accounts := &mockAccounts{}
	catalog := &mockCatalog{}
	provisioner := NewProvisioner(identity, accounts)

	return &selectorFixture{
		selector: NewSelector(pending, catalog, accounts, provisioner, store),
		pending:  pending,
		sessions: store,
		identity: identity,
		accounts: accounts,
		catalog:  catalog,
	}
}

func (f *selectorFixture) putRegistration(t *testing.T) {
	t.Helper()
	require.NoError(t, f.pending.Put(PendingRegistration{
		Name:     "Jane Doe",
		Email:    "new@example.com",
		Password: "password1",
	}))
}

func TestActivateWithoutRegistrationAborts(t *testing.T) {
	t.Parallel()

	f := newSelectorFixture(t)

	_, err := f.selector.Activate()
	require.ErrorIs(t, err, ErrMissingRegistration)
}

func TestSelectLocationFansOutPerSite(t *testing.T) {
	t.Parallel()

	f := newSelectorFixture(t)
	f.catalog.listSitesFn = func(ctx context.Context, locationID int64) ([]vermisdk.Site, error) {
		require.Equal(t, int64(4), locationID)
		return []vermisdk.Site{
			{ID: 10, Name: "Greenhouse A", LocationID: 4},
			{ID: 11, Name: "Greenhouse B", LocationID: 4},
		}, nil
	}
	f.catalog.listTanksBySiteFn = func(ctx context.Context, siteID int64) ([]vermisdk.Tank, error) {
		return []vermisdk.Tank{{ID: siteID * 100, Name: "Tank", SiteID: siteID, LocationID: 4}}, nil
	}

	tanksBySite, err := f.selector.SelectLocation(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, tanksBySite, 2)
	require.Equal(t, int64(1000), tanksBySite[10][0].ID)
	require.Equal(t, int64(1100), tanksBySite[11][0].ID)
}

func TestSelectLocationWrapsCatalogFailure(t *testing.T) {
	t.Parallel()

	f := newSelectorFixture(t)
	f.catalog.listSitesFn = func(ctx context.Context, locationID int64) ([]vermisdk.Site, error) {
		return nil, errors.New("upstream down")
	}

	_, err := f.selector.SelectLocation(context.Background(), 4)

	var catalogErr *CatalogFetchError
	require.True(t, errors.As(err, &catalogErr))
	require.Equal(t, "sites", catalogErr.Section)
}

func TestToggleSemantics(t *testing.T) {
	t.Parallel()

	f := newSelectorFixture(t)

	f.selector.Toggle(7)
	require.Equal(t, []int64{7}, f.selector.Selected())

	f.selector.Toggle(7)
	require.Empty(t, f.selector.Selected())
}

func TestSubmitRequiresSelection(t *testing.T) {
	t.Parallel()

	f := newSelectorFixture(t)
	f.putRegistration(t)

	_, err := f.selector.Submit(context.Background())

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Equal(t, []string{"Please select at least one tank"}, validationErr.Fields["tanks"])
}

func TestSubmitShortCircuitsOnDuplicateEmail(t *testing.T) {
	t.Parallel()

	f := newSelectorFixture(t)
	f.putRegistration(t)
	f.selector.Toggle(7)

	f.accounts.accountExistsFn = func(ctx context.Context, email string) (bool, error) {
		require.Equal(t, "new@example.com", email)
		return true, nil
	}
	// signUpFn deliberately unset: identity creation must never run.

	result, err := f.selector.Submit(context.Background())
	require.NoError(t, err)
	require.True(t, result.EmailConflict)
	require.Equal(t, "new@example.com", result.Email)
	require.Nil(t, result.Provisioned)

	// The pending registration survives so sign-in can take over.
	_, found, err := f.pending.Get()
	require.NoError(t, err)
	require.True(t, found)
}

func TestSubmitProvisionsAndPersistsSession(t *testing.T) {
	t.Parallel()

	f := newSelectorFixture(t)
	f.putRegistration(t)
	f.selector.Toggle(7)
	f.selector.Toggle(9)

	userID := uuid.New()
	f.accounts.accountExistsFn = func(ctx context.Context, email string) (bool, error) {
		return false, nil
	}
	f.identity.signUpFn = func(ctx context.Context, email, password, displayName string) (vermisdk.AuthSession, error) {
		require.Equal(t, "new@example.com", email)
		require.Equal(t, "Jane Doe", displayName)
		return vermisdk.AuthSession{AuthUID: "uid-1", Email: email, IDToken: "tok"}, nil
	}
	f.identity.signInFn = func(ctx context.Context, email, password string) (vermisdk.AuthSession, error) {
		return vermisdk.AuthSession{AuthUID: "uid-1", Email: email, IDToken: "tok"}, nil
	}
	f.accounts.createAccountFn = func(ctx context.Context, token string, input vermisdk.CreateAccountInput) (vermisdk.Account, error) {
		require.Equal(t, "tok", token)
		require.Equal(t, "uid-1", input.AuthUID)
		return vermisdk.Account{UserID: userID, AuthUID: input.AuthUID, Email: input.Email}, nil
	}
	var assignedTo uuid.UUID
	f.accounts.assignTanksFn = func(ctx context.Context, token string, id uuid.UUID, tankIDs []int64) error {
		assignedTo = id
		require.Equal(t, []int64{7, 9}, tankIDs)
		return nil
	}

	result, err := f.selector.Submit(context.Background())
	require.NoError(t, err)
	require.False(t, result.EmailConflict)
	require.NotNil(t, result.Provisioned)

	// Round trip: the session's user id is the one every assignment used.
	require.Equal(t, result.Provisioned.UserID, assignedTo)

	var token string
	found, err := f.sessions.Get(localstore.KeyAccessToken, &token)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "tok", token)

	// Full success consumes the pending registration.
	_, found, err = f.pending.Get()
	require.NoError(t, err)
	require.False(t, found)
}

func TestSubmitAccountInsertFailureLeavesPending(t *testing.T) {
	t.Parallel()

	f := newSelectorFixture(t)
	f.putRegistration(t)
	f.selector.Toggle(7)

	f.accounts.accountExistsFn = func(ctx context.Context, email string) (bool, error) {
		return false, nil
	}
	f.identity.signUpFn = func(ctx context.Context, email, password, displayName string) (vermisdk.AuthSession, error) {
		return vermisdk.AuthSession{AuthUID: "uid-1", Email: email, IDToken: "tok"}, nil
	}
	f.identity.signInFn = func(ctx context.Context, email, password string) (vermisdk.AuthSession, error) {
		return vermisdk.AuthSession{AuthUID: "uid-1", Email: email, IDToken: "tok"}, nil
	}
	f.accounts.createAccountFn = func(ctx context.Context, token string, input vermisdk.CreateAccountInput) (vermisdk.Account, error) {
		return vermisdk.Account{}, errors.New("insert failed")
	}

	_, err := f.selector.Submit(context.Background())

	var persistErr *AssignmentPersistenceError
	require.True(t, errors.As(err, &persistErr))
	require.Equal(t, "account", persistErr.Step)

	// Clearing happens only on full success.
	_, found, getErr := f.pending.Get()
	require.NoError(t, getErr)
	require.True(t, found)
}
