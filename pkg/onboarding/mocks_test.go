package onboarding

import (
	"context"

	"github.com/google/uuid"

	"github.com/vermimetrics/vermi-platform/pkg/vermisdk"
)

type mockIdentity struct {
	signUpFn  func(ctx context.Context, email, password, displayName string) (vermisdk.AuthSession, error)
	signInFn  func(ctx context.Context, email, password string) (vermisdk.AuthSession, error)
	currentFn func(ctx context.Context) (vermisdk.AuthSession, bool, error)
	signOutFn func()
}

func (m *mockIdentity) SignUp(ctx context.Context, email, password, displayName string) (vermisdk.AuthSession, error) {
	if m.signUpFn == nil {
		panic("signUpFn not configured")
	}
	return m.signUpFn(ctx, email, password, displayName)
}

func (m *mockIdentity) SignIn(ctx context.Context, email, password string) (vermisdk.AuthSession, error) {
	if m.signInFn == nil {
		panic("signInFn not configured")
	}
	return m.signInFn(ctx, email, password)
}

func (m *mockIdentity) CurrentSession(ctx context.Context) (vermisdk.AuthSession, bool, error) {
	if m.currentFn == nil {
		panic("currentFn not configured")
	}
	return m.currentFn(ctx)
}

func (m *mockIdentity) SignOut() {
	if m.signOutFn != nil {
		m.signOutFn()
	}
}

func (m *mockIdentity) Subscribe(func(vermisdk.AuthSession), func()) func() {
	return func() {}
}

type mockAccounts struct {
	accountExistsFn func(ctx context.Context, email string) (bool, error)
	createAccountFn func(ctx context.Context, token string, input vermisdk.CreateAccountInput) (vermisdk.Account, error)
	assignTanksFn   func(ctx context.Context, token string, userID uuid.UUID, tankIDs []int64) error
}

func (m *mockAccounts) AccountExists(ctx context.Context, email string) (bool, error) {
	if m.accountExistsFn == nil {
		panic("accountExistsFn not configured")
	}
	return m.accountExistsFn(ctx, email)
}

func (m *mockAccounts) CreateAccount(ctx context.Context, token string, input vermisdk.CreateAccountInput) (vermisdk.Account, error) {
	if m.createAccountFn == nil {
		panic("createAccountFn not configured")
	}
	return m.createAccountFn(ctx, token, input)
}

func (m *mockAccounts) AssignTanks(ctx context.Context, token string, userID uuid.UUID, tankIDs []int64) error {
	if m.assignTanksFn == nil {
		panic("assignTanksFn not configured")
	}
	return m.assignTanksFn(ctx, token, userID, tankIDs)
}

type mockCatalog struct {
	listLocationsFn   func(ctx context.Context) ([]vermisdk.Location, error)
	listSitesFn       func(ctx context.Context, locationID int64) ([]vermisdk.Site, error)
	listTanksBySiteFn func(ctx context.Context, siteID int64) ([]vermisdk.Tank, error)
}

func (m *mockCatalog) ListLocations(ctx context.Context) ([]vermisdk.Location, error) {
	if m.listLocationsFn == nil {
		panic("listLocationsFn not configured")
	}
	return m.listLocationsFn(ctx)
}

func (m *mockCatalog) ListSites(ctx context.Context, locationID int64) ([]vermisdk.Site, error) {
	if m.listSitesFn == nil {
		panic("listSitesFn not configured")
	}
	return m.listSitesFn(ctx, locationID)
}

func (m *mockCatalog) ListTanksBySite(ctx context.Context, siteID int64) ([]vermisdk.Tank, error) {
	if m.listTanksBySiteFn == nil {
		panic("listTanksBySiteFn not configured")
	}
	return m.listTanksBySiteFn(ctx, siteID)
}
