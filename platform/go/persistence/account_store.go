package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	AccountsTable    = "users"
	AssignmentsTable = "user_tanks"
)

// Account represents a row in the application users table. AuthUID links the row
// to the identity-provider account; UserID is the application primary key.
type Account struct {
	UserID     uuid.UUID `db:"user_id" json:"userId"`
	AuthUID    string    `db:"auth_uid" json:"authUid"`
	Username   string    `db:"username" json:"username"`
	Email      string    `db:"email" json:"email"`
	LocationID int64     `db:"location_id" json:"locationId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

var (
	// ErrAccountNotFound indicates a missing account record.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountConflict indicates a uniqueness violation (duplicated email or auth uid).
	ErrAccountConflict = errors.New("account conflict")
)

// AccountStore exposes persistence helpers for the users and user_tanks tables.
type AccountStore struct {
	pool *pgxpool.Pool
}

// NewAccountStore returns a store over the account tables.
func NewAccountStore(pool *pgxpool.Pool) (*AccountStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &AccountStore{pool: pool}, nil
}

// CreateAccountParams captures the fields required to insert a new account record.
type CreateAccountParams struct {
	UserID     uuid.UUID
	AuthUID    string
	Username   string
	Email      string
	LocationID int64
}

// CreateAccount inserts a new account and returns the persisted record.
func (s *AccountStore) CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error) {
	if params.UserID == uuid.Nil {
		return Account{}, errors.New("user id is required")
	}
	if strings.TrimSpace(params.AuthUID) == "" {
		return Account{}, errors.New("auth uid is required")
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
        INSERT INTO %s (user_id, auth_uid, username, email, location_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING user_id, auth_uid, username, email, location_id, created_at
    `, AccountsTable),
		params.UserID,
		strings.TrimSpace(params.AuthUID),
		strings.TrimSpace(params.Username),
		strings.ToLower(strings.TrimSpace(params.Email)),
		params.LocationID,
	)

	account, err := scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Account{}, ErrAccountConflict
		}
		return Account{}, err
	}

	return account, nil
}

// GetAccountByAuthUID returns the account linked to an identity-provider uid.
func (s *AccountStore) GetAccountByAuthUID(ctx context.Context, authUID string) (Account, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
        SELECT user_id, auth_uid, username, email, location_id, created_at
        FROM %s WHERE auth_uid = $1
    `, AccountsTable), authUID)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}

	return account, nil
}

// GetAccountByID returns the account with the given application user id.
func (s *AccountStore) GetAccountByID(ctx context.Context, id uuid.UUID) (Account, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
        SELECT user_id, auth_uid, username, email, location_id, created_at
        FROM %s WHERE user_id = $1
    `, AccountsTable), id)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}

	return account, nil
}

// CountByEmail returns how many accounts exist with the given email. Used by the
// advisory duplicate-email pre-check during registration.
func (s *AccountStore) CountByEmail(ctx context.Context, email string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`
        SELECT COUNT(*) FROM %s WHERE LOWER(email) = $1
    `, AccountsTable), strings.ToLower(strings.TrimSpace(email))).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count accounts by email: %w", err)
	}

	return count, nil
}

// AssignTanks inserts one assignment row per tank id as a single multi-row insert.
// Assignment rows are insert-only; duplicates surface as ErrAccountConflict.
func (s *AccountStore) AssignTanks(ctx context.Context, userID uuid.UUID, tankIDs []int64) error {
	if userID == uuid.Nil {
		return errors.New("user id is required")
	}
	if len(tankIDs) == 0 {
		return errors.New("at least one tank id is required")
	}

	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
        INSERT INTO %s (user_id, tank_id)
        SELECT $1, unnest($2::bigint[])
    `, AssignmentsTable), userID, tankIDs)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAccountConflict
		}
		return fmt.Errorf("assign tanks: %w", err)
	}

	return nil
}

// ListAssignedTankIDs returns the tank ids assigned to a user.
func (s *AccountStore) ListAssignedTankIDs(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
        SELECT tank_id FROM %s WHERE user_id = $1 ORDER BY tank_id ASC
    `, AssignmentsTable), userID)
	if err != nil {
		return nil, fmt.Errorf("list assigned tanks: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}

	return ids, nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var account Account

	if err := row.Scan(
		&account.UserID,
		&account.AuthUID,
		&account.Username,
		&account.Email,
		&account.LocationID,
		&account.CreatedAt,
	); err != nil {
		return Account{}, err
	}

	return account, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
