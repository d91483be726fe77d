package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vermimetrics/vermi-platform/domains/accounts/be/service"
	platformlogging "github.com/vermimetrics/vermi-platform/platform/go/logging"
	"github.com/vermimetrics/vermi-platform/platform/go/problemdetails"
)

const (
	problemTypeValidation = "https://vermimetrics.app/problems/validation-error"
	problemTypeNotFound   = "https://vermimetrics.app/problems/not-found"
	problemTypeConflict   = "https://vermimetrics.app/problems/conflict"
	problemTypeInternal   = "https://vermimetrics.app/problems/internal-error"
)

type operation string

const (
	createOperation      operation = "accountsCreate"
	existsOperation      operation = "accountsExistsByEmail"
	getByAuthOperation   operation = "accountsGetByAuthUID"
	assignOperation      operation = "accountsAssignTanks"
	listAssignsOperation operation = "accountsListAssignedTanks"
)

// CreateAccountRequest is the payload for provisioning a new account row.
type CreateAccountRequest struct {
	AuthUID    string `json:"authUid"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	LocationID int64  `json:"locationId"`
}

// Account is the wire form of a provisioned account.
type Account struct {
	UserID     uuid.UUID `json:"userId"`
	AuthUID    string    `json:"authUid"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	LocationID int64     `json:"locationId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ExistsResponse reports whether an account already uses an email address.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// AssignTanksRequest attaches tanks to an account.
type AssignTanksRequest struct {
	TankIDs []int64 `json:"tankIds"`
}

// AssignedTanksResponse lists the tank ids attached to an account.
type AssignedTanksResponse struct {
	TankIDs []int64 `json:"tankIds"`
}

// Handler serves the account provisioning endpoints.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("accounts service is required")
	}
	if logger == nil {
		panic("logger is required")
	}

	return &Handler{svc: svc, logger: logger}
}

// Routes returns the router for the account endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/exists", h.existsByEmail)
	r.Get("/by-auth/{authUid}", h.getByAuthUID)
	r.Post("/{userId}/tanks", h.assignTanks)
	r.Get("/{userId}/tanks", h.listAssignedTanks)
	return r
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var body CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem := problemdetails.New("Invalid request body", "request body must be valid JSON", problemTypeValidation, http.StatusBadRequest, nil)
		problemdetails.Write(w, problem)
		return
	}

	created, err := h.svc.Create(r.Context(), service.CreateInput{
		AuthUID:    body.AuthUID,
		Username:   body.Username,
		Email:      body.Email,
		LocationID: body.LocationID,
	})
	if err != nil {
		h.writeError(w, r.Context(), err, createOperation)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/users/%s", created.UserID))
	writeJSON(w, http.StatusCreated, toAPIAccount(created))
}

func (h *Handler) existsByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))

	exists, err := h.svc.ExistsByEmail(r.Context(), email)
	if err != nil {
		h.writeError(w, r.Context(), err, existsOperation)
		return
	}

	writeJSON(w, http.StatusOK, ExistsResponse{Exists: exists})
}

func (h *Handler) getByAuthUID(w http.ResponseWriter, r *http.Request) {
	authUID := chi.URLParam(r, "authUid")

	account, err := h.svc.GetByAuthUID(r.Context(), authUID)
	if err != nil {
		h.writeError(w, r.Context(), err, getByAuthOperation)
		return
	}

	writeJSON(w, http.StatusOK, toAPIAccount(account))
}

func (h *Handler) assignTanks(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		h.writeError(w, r.Context(), err, assignOperation)
		return
	}

	var body AssignTanksRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem := problemdetails.New("Invalid request body", "request body must be valid JSON", problemTypeValidation, http.StatusBadRequest, nil)
		problemdetails.Write(w, problem)
		return
	}

	if err := h.svc.AssignTanks(r.Context(), userID, body.TankIDs); err != nil {
		h.writeError(w, r.Context(), err, assignOperation)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listAssignedTanks(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		h.writeError(w, r.Context(), err, listAssignsOperation)
		return
	}

	ids, err := h.svc.ListAssignedTankIDs(r.Context(), userID)
	if err != nil {
		h.writeError(w, r.Context(), err, listAssignsOperation)
		return
	}

	writeJSON(w, http.StatusOK, AssignedTanksResponse{TankIDs: ids})
}

func parseUserID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "userId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &service.ValidationError{Fields: service.FieldErrors{"userId": {"userId must be a UUID"}}}
	}
	return id, nil
}

func toAPIAccount(account service.Account) Account {
	return Account{
		UserID:     account.UserID,
		AuthUID:    account.AuthUID,
		Username:   account.Username,
		Email:      account.Email,
		LocationID: account.LocationID,
		CreatedAt:  account.CreatedAt,
	}
}

func (h *Handler) writeError(w http.ResponseWriter, ctx context.Context, err error, op operation) {
	status, title, detail, problemType, fields := classifyError(err)

	logger := h.loggerFrom(ctx)
	fieldsForLog := []zap.Field{
		zap.String("operation", string(op)),
		zap.Int("status", status),
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("accounts operation failed", append(fieldsForLog, zap.Error(err))...)
	case status == http.StatusNotFound:
		logger.Info("accounts resource not found", append(fieldsForLog, zap.Error(err))...)
	default:
		logger.Warn("accounts request rejected", append(fieldsForLog, zap.Error(err))...)
	}

	problemdetails.Write(w, problemdetails.New(title, detail, problemType, status, fields))
}

func classifyError(err error) (status int, title, detail, problemType string, fieldErrors service.FieldErrors) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest,
			"Validation failed",
			"one or more fields are invalid",
			problemTypeValidation,
			validationErr.Fields
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound,
			"Resource not found",
			"account not found",
			problemTypeNotFound,
			nil
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict,
			"Conflict",
			"account conflict",
			problemTypeConflict,
			nil
	default:
		return http.StatusInternalServerError,
			"Internal server error",
			"an unexpected error occurred",
			problemTypeInternal,
			nil
	}
}

func (h *Handler) loggerFrom(ctx context.Context) *zap.Logger {
	if logger, ok := platformlogging.FromContext(ctx); ok {
		return logger
	}
	return h.logger
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
