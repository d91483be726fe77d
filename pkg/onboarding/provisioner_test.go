package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vermimetrics/vermi-platform/pkg/vermisdk"
)

func TestCreateAccountAndAssignRunsStepsInOrder(t *testing.T) {
	t.Parallel()

	var steps []string
	userID := uuid.New()

	identity := &mockIdentity{
		signUpFn: func(ctx context.Context, email, password, displayName string) (vermisdk.AuthSession, error) {
			steps = append(steps, "signUp")
			require.Equal(t, "jane@example.com", email)
			require.Equal(t, "Jane Doe", displayName)
			return vermisdk.AuthSession{AuthUID: "uid-1", Email: email}, nil
		},
		signInFn: func(ctx context.Context, email, password string) (vermisdk.AuthSession, error) {
			steps = append(steps, "signIn")
			return vermisdk.AuthSession{AuthUID: "uid-1", Email: email, IDToken: "tok"}, nil
		},
	}
	accounts := &mockAccounts{
		createAccountFn: func(ctx context.Context, token string, input vermisdk.CreateAccountInput) (vermisdk.Account, error) {
			steps = append(steps, "account")
			require.Equal(t, int64(4), input.LocationID)
			return vermisdk.Account{UserID: userID}, nil
		},
		assignTanksFn: func(ctx context.Context, token string, id uuid.UUID, tankIDs []int64) error {
			steps = append(steps, "assignments")
			require.Equal(t, userID, id)
			return nil
		},
	}

	provisioner := NewProvisioner(identity, accounts)

	result, err := provisioner.CreateAccountAndAssign(context.Background(), "Jane Doe", " Jane@Example.com ", "password1", 4, []int64{7})
	require.NoError(t, err)
	require.Equal(t, userID, result.UserID)
	require.Equal(t, "tok", result.Session.IDToken)
	require.Equal(t, []string{"signUp", "signIn", "account", "assignments"}, steps)
}

func TestCreateAccountAndAssignWrapsIdentityFailure(t *testing.T) {
	t.Parallel()

	identity := &mockIdentity{
		signUpFn: func(ctx context.Context, email, password, displayName string) (vermisdk.AuthSession, error) {
			return vermisdk.AuthSession{}, &vermisdk.IdentityError{Code: vermisdk.IdentityCodeEmailExists}
		},
	}

	provisioner := NewProvisioner(identity, &mockAccounts{})

	_, err := provisioner.CreateAccountAndAssign(context.Background(), "Jane", "jane@example.com", "password1", 4, []int64{7})

	var creationErr *IdentityCreationError
	require.True(t, errors.As(err, &creationErr))

	var identityErr *vermisdk.IdentityError
	require.True(t, errors.As(err, &identityErr))
	require.True(t, identityErr.IsEmailExists())
}

func TestCreateAccountAndAssignWrapsAssignmentFailure(t *testing.T) {
	t.Parallel()

	identity := &mockIdentity{
		signUpFn: func(ctx context.Context, email, password, displayName string) (vermisdk.AuthSession, error) {
			return vermisdk.AuthSession{AuthUID: "uid-1"}, nil
		},
		signInFn: func(ctx context.Context, email, password string) (vermisdk.AuthSession, error) {
			return vermisdk.AuthSession{AuthUID: "uid-1", IDToken: "tok"}, nil
		},
	}
	accounts := &mockAccounts{
		createAccountFn: func(ctx context.Context, token string, input vermisdk.CreateAccountInput) (vermisdk.Account, error) {
			return vermisdk.Account{UserID: uuid.New()}, nil
		},
		assignTanksFn: func(ctx context.Context, token string, id uuid.UUID, tankIDs []int64) error {
			return errors.New("batch insert failed")
		},
	}

	provisioner := NewProvisioner(identity, accounts)

	_, err := provisioner.CreateAccountAndAssign(context.Background(), "Jane", "jane@example.com", "password1", 4, []int64{7})

	var persistErr *AssignmentPersistenceError
	require.True(t, errors.As(err, &persistErr))
	require.Equal(t, "assignments", persistErr.Step)
}

func TestSignInPassesThroughOtherProviderErrors(t *testing.T) {
	t.Parallel()

	providerErr := &vermisdk.IdentityError{Code: "USER_DISABLED"}
	identity := &mockIdentity{
		signInFn: func(ctx context.Context, email, password string) (vermisdk.AuthSession, error) {
			return vermisdk.AuthSession{}, providerErr
		},
	}

	provisioner := NewProvisioner(identity, &mockAccounts{})

	_, err := provisioner.SignIn(context.Background(), "jane@example.com", "password1")
	require.ErrorIs(t, err, providerErr)

	var credsErr *InvalidCredentialsError
	require.False(t, errors.As(err, &credsErr))
}
