package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vermimetrics/vermi-platform/domains/accounts/be/repo"
	"github.com/vermimetrics/vermi-platform/platform/go/persistence"
)

// FieldErrors maps request fields to validation issues.
type FieldErrors map[string][]string

// ValidationError is returned when the input payload is invalid.
type ValidationError struct {
	Fields FieldErrors
}

func (v *ValidationError) Error() string {
	return "validation error"
}

// Domain sentinel errors.
var (
	ErrNotFound = errors.New("account not found")
	ErrConflict = errors.New("account conflict")
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Account represents the domain view of a provisioned account.
type Account struct {
	UserID     uuid.UUID
	AuthUID    string
	Username   string
	Email      string
	LocationID int64
	CreatedAt  time.Time
}

// CreateInput represents the payload required to provision a new account row.
type CreateInput struct {
	AuthUID    string
	Username   string
	Email      string
	LocationID int64
}

// Service defines the business operations for the accounts domain.
type Service interface {
	Create(ctx context.Context, input CreateInput) (Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetByAuthUID(ctx context.Context, authUID string) (Account, error)
	AssignTanks(ctx context.Context, userID uuid.UUID, tankIDs []int64) error
	ListAssignedTankIDs(ctx context.Context, userID uuid.UUID) ([]int64, error)
}

type service struct {
	repo repo.Repository
}

// New constructs an accounts Service instance backed by the provided repository.
func New(r repo.Repository) Service {
	if r == nil {
		panic("accounts repository is required")
	}
	return &service{repo: r}
}

func (s *service) Create(ctx context.Context, input CreateInput) (Account, error) {
	fieldErrors := FieldErrors{}

	authUID := strings.TrimSpace(input.AuthUID)
	if authUID == "" {
		fieldErrors.add("authUid", "authUid is required")
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		fieldErrors.add("username", "username is required")
	}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		fieldErrors.add("email", "email is required")
	} else if !emailPattern.MatchString(email) {
		fieldErrors.add("email", "email is not valid")
	}

	if input.LocationID <= 0 {
		fieldErrors.add("locationId", "locationId must be a positive integer")
	}

	if len(fieldErrors) > 0 {
		return Account{}, &ValidationError{Fields: fieldErrors}
	}

	record, err := s.repo.Create(ctx, persistence.CreateAccountParams{
		UserID:     uuid.New(),
		AuthUID:    authUID,
		Username:   username,
		Email:      strings.ToLower(email),
		LocationID: input.LocationID,
	})
	if err != nil {
		return Account{}, mapPersistenceError(err)
	}

	return mapAccount(record), nil
}

func (s *service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return false, newValidationError("email", "email is required")
	}

	count, err := s.repo.CountByEmail(ctx, trimmed)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *service) GetByAuthUID(ctx context.Context, authUID string) (Account, error) {
	trimmed := strings.TrimSpace(authUID)
	if trimmed == "" {
		return Account{}, ErrNotFound
	}

	record, err := s.repo.GetByAuthUID(ctx, trimmed)
	if err != nil {
		return Account{}, mapPersistenceError(err)
	}
	return mapAccount(record), nil
}

func (s *service) AssignTanks(ctx context.Context, userID uuid.UUID, tankIDs []int64) error {
	if userID == uuid.Nil {
		return ErrNotFound
	}
	if len(tankIDs) == 0 {
		return newValidationError("tankIds", "at least one tank id is required")
	}
	for _, id := range tankIDs {
		if id <= 0 {
			return newValidationError("tankIds", "tank ids must be positive integers")
		}
	}

	// The account must exist before rows are attached to it.
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return mapPersistenceError(err)
	}

	if err := s.repo.AssignTanks(ctx, userID, tankIDs); err != nil {
		return mapPersistenceError(err)
	}
	return nil
}

func (s *service) ListAssignedTankIDs(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	if userID == uuid.Nil {
		return nil, ErrNotFound
	}

	ids, err := s.repo.ListAssignedTankIDs(ctx, userID)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	return ids, nil
}

func mapAccount(record persistence.Account) Account {
	return Account{
		UserID:     record.UserID,
		AuthUID:    record.AuthUID,
		Username:   record.Username,
		Email:      record.Email,
		LocationID: record.LocationID,
		CreatedAt:  record.CreatedAt,
	}
}

func mapPersistenceError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrAccountNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrAccountConflict):
		return ErrConflict
	default:
		return err
	}
}

func newValidationError(field, message string) error {
	return &ValidationError{Fields: FieldErrors{field: {message}}}
}

func (f FieldErrors) add(field, message string) {
	if f == nil {
		return
	}
	f[field] = append(f[field], message)
}
