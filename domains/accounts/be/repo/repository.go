package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/vermimetrics/vermi-platform/platform/go/persistence"
)

// Repository defines the persistence operations required by the accounts service.
type Repository interface {
	Create(ctx context.Context, params persistence.CreateAccountParams) (persistence.Account, error)
	GetByAuthUID(ctx context.Context, authUID string) (persistence.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (persistence.Account, error)
	CountByEmail(ctx context.Context, email string) (int, error)
	AssignTanks(ctx context.Context, userID uuid.UUID, tankIDs []int64) error
	ListAssignedTankIDs(ctx context.Context, userID uuid.UUID) ([]int64, error)
}

type postgresRepository struct {
	store *persistence.AccountStore
}

// NewPostgresRepository constructs a repository backed by the shared account store.
func NewPostgresRepository(store *persistence.AccountStore) Repository {
	if store == nil {
		panic("account store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) Create(ctx context.Context, params persistence.CreateAccountParams) (persistence.Account, error) {
	return r.store.CreateAccount(ctx, params)
}

func (r *postgresRepository) GetByAuthUID(ctx context.Context, authUID string) (persistence.Account, error) {
	return r.store.GetAccountByAuthUID(ctx, authUID)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (persistence.Account, error) {
	return r.store.GetAccountByID(ctx, id)
}

func (r *postgresRepository) CountByEmail(ctx context.Context, email string) (int, error) {
	return r.store.CountByEmail(ctx, email)
}

func (r *postgresRepository) AssignTanks(ctx context.Context, userID uuid.UUID, tankIDs []int64) error {
	return r.store.AssignTanks(ctx, userID, tankIDs)
}

func (r *postgresRepository) ListAssignedTankIDs(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	return r.store.ListAssignedTankIDs(ctx, userID)
}
