package onboarding

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/vermimetrics/vermi-platform/pkg/vermisdk"
)

// AccountsAPI is the slice of the platform API the provisioner needs.
type AccountsAPI interface {
	AccountExists(ctx context.Context, email string) (bool, error)
	CreateAccount(ctx context.Context, token string, input vermisdk.CreateAccountInput) (vermisdk.Account, error)
	AssignTanks(ctx context.Context, token string, userID uuid.UUID, tankIDs []int64) error
}

// ProvisionResult is the outcome of a successful provisioning run.
type ProvisionResult struct {
	Session vermisdk.AuthSession
	UserID  uuid.UUID
}

// Provisioner orchestrates identity creation, account row insertion, and
// resource assignment.
type Provisioner struct {
	identity vermisdk.IdentityProvider
	accounts AccountsAPI
}

// NewProvisioner constructs a Provisioner.
func NewProvisioner(identity vermisdk.IdentityProvider, accounts AccountsAPI) *Provisioner {
	if identity == nil {
		panic("identity provider is required")
	}
	if accounts == nil {
		panic("accounts api is required")
	}
	return &Provisioner{identity: identity, accounts: accounts}
}

// CreateAccountAndAssign runs the four provisioning steps in strict order:
// identity creation, sign-in, account row insertion, batched tank assignment.
// Any failing step aborts the run; earlier steps are not rolled back, so an
// identity can be left behind without an account row.
func (p *Provisioner) CreateAccountAndAssign(ctx context.Context, name, email, password string, locationID int64, tankIDs []int64) (ProvisionResult, error) {
	email = normalizeEmail(email)

	if _, err := p.identity.SignUp(ctx, email, password, name); err != nil {
		return ProvisionResult{}, &IdentityCreationError{Err: err}
	}

	session, err := p.SignIn(ctx, email, password)
	if err != nil {
		return ProvisionResult{}, err
	}

	account, err := p.accounts.CreateAccount(ctx, session.IDToken, vermisdk.CreateAccountInput{
		AuthUID:    session.AuthUID,
		Username:   name,
		Email:      email,
		LocationID: locationID,
	})
	if err != nil {
		return ProvisionResult{}, &AssignmentPersistenceError{Step: "account", Err: err}
	}

	if err := p.accounts.AssignTanks(ctx, session.IDToken, account.UserID, tankIDs); err != nil {
		return ProvisionResult{}, &AssignmentPersistenceError{Step: "assignments", Err: err}
	}

	return ProvisionResult{Session: session, UserID: account.UserID}, nil
}

// SignIn authenticates against the identity provider. Credential rejections
// are collapsed into a single *InvalidCredentialsError.
func (p *Provisioner) SignIn(ctx context.Context, email, password string) (vermisdk.AuthSession, error) {
	session, err := p.identity.SignIn(ctx, normalizeEmail(email), password)
	if err != nil {
		var identityErr *vermisdk.IdentityError
		if errors.As(err, &identityErr) && identityErr.IsInvalidCredentials() {
			return vermisdk.AuthSession{}, &InvalidCredentialsError{Err: err}
		}
		return vermisdk.AuthSession{}, err
	}
	return session, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
