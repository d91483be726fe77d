package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vermimetrics/vermi-platform/domains/tanks/be/service"
	platformlogging "github.com/vermimetrics/vermi-platform/platform/go/logging"
	"github.com/vermimetrics/vermi-platform/platform/go/problemdetails"
)

const (
	problemTypeValidation = "https://vermimetrics.app/problems/validation-error"
	problemTypeNotFound   = "https://vermimetrics.app/problems/not-found"
	problemTypeInternal   = "https://vermimetrics.app/problems/internal-error"
)

type operation string

const (
	locationsOperation operation = "tanksListLocations"
	sitesOperation     operation = "tanksListSites"
	namesOperation     operation = "tanksListNames"
	infoOperation      operation = "tanksGetInfo"
)

// Location is the wire form of a catalog location.
type Location struct {
	LocationID   int64  `json:"location_id"`
	LocationName string `json:"location_name"`
}

// Site is the wire form of a catalog site.
type Site struct {
	SiteID     int64  `json:"site_id"`
	SiteName   string `json:"site_name"`
	LocationID int64  `json:"location_id"`
}

// Tank is the wire form of a monitored tank.
type Tank struct {
	DeviceID          int64   `json:"device_id"`
	DeviceName        string  `json:"device_name"`
	DeviceDescription *string `json:"device_description,omitempty"`
	SiteID            int64   `json:"site_id"`
	LocationID        int64   `json:"location_id"`
}

// Handler serves the tank catalog read endpoints.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("tanks service is required")
	}
	if logger == nil {
		panic("logger is required")
	}

	return &Handler{svc: svc, logger: logger}
}

// Routes returns the router for the tank catalog endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/location", h.listLocations)
	r.Get("/sites", h.listSites)
	r.Get("/tanksname", h.listTankNames)
	r.Get("/sitetanks", h.listTanksBySite)
	r.Get("/tankinfo", h.getTankInfo)
	return r
}

func (h *Handler) listLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.svc.ListLocations(r.Context())
	if err != nil {
		h.writeError(w, r.Context(), err, locationsOperation)
		return
	}

	items := make([]Location, 0, len(locations))
	for _, location := range locations {
		items = append(items, Location{LocationID: location.ID, LocationName: location.Name})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) listSites(w http.ResponseWriter, r *http.Request) {
	locationID, err := requireInt64Param(r, "locationId")
	if err != nil {
		h.writeError(w, r.Context(), err, sitesOperation)
		return
	}

	sites, err := h.svc.ListSites(r.Context(), locationID)
	if err != nil {
		h.writeError(w, r.Context(), err, sitesOperation)
		return
	}

	items := make([]Site, 0, len(sites))
	for _, site := range sites {
		items = append(items, Site{SiteID: site.ID, SiteName: site.Name, LocationID: site.LocationID})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) listTankNames(w http.ResponseWriter, r *http.Request) {
	locationID, err := requireInt64Param(r, "locationId")
	if err != nil {
		h.writeError(w, r.Context(), err, namesOperation)
		return
	}

	tanks, err := h.svc.ListTanksByLocation(r.Context(), locationID)
	if err != nil {
		h.writeError(w, r.Context(), err, namesOperation)
		return
	}

	writeJSON(w, http.StatusOK, toAPITanks(tanks))
}

func (h *Handler) listTanksBySite(w http.ResponseWriter, r *http.Request) {
	siteID, err := requireInt64Param(r, "siteId")
	if err != nil {
		h.writeError(w, r.Context(), err, namesOperation)
		return
	}

	tanks, err := h.svc.ListTanksBySite(r.Context(), siteID)
	if err != nil {
		h.writeError(w, r.Context(), err, namesOperation)
		return
	}

	writeJSON(w, http.StatusOK, toAPITanks(tanks))
}

func (h *Handler) getTankInfo(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r.URL.Query().Get("ids"))
	if err != nil {
		h.writeError(w, r.Context(), err, infoOperation)
		return
	}

	tanks, err := h.svc.GetTanksByIDs(r.Context(), ids)
	if err != nil {
		h.writeError(w, r.Context(), err, infoOperation)
		return
	}

	writeJSON(w, http.StatusOK, toAPITanks(tanks))
}

func toAPITanks(tanks []service.Tank) []Tank {
	items := make([]Tank, 0, len(tanks))
	for _, tank := range tanks {
		items = append(items, Tank{
			DeviceID:          tank.ID,
			DeviceName:        tank.Name,
			DeviceDescription: tank.Description,
			SiteID:            tank.SiteID,
			LocationID:        tank.LocationID,
		})
	}
	return items
}

func requireInt64Param(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, &service.ValidationError{Fields: service.FieldErrors{name: {name + " is required"}}}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &service.ValidationError{Fields: service.FieldErrors{name: {name + " must be an integer"}}}
	}
	return value, nil
}

// parseIDList splits a comma separated ids query value into int64 ids.
func parseIDList(raw string) ([]int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &service.ValidationError{Fields: service.FieldErrors{"ids": {"ids is required"}}}
	}

	parts := strings.Split(trimmed, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, &service.ValidationError{Fields: service.FieldErrors{"ids": {"ids must be a comma separated list of integers"}}}
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, &service.ValidationError{Fields: service.FieldErrors{"ids": {"ids is required"}}}
	}
	return ids, nil
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
		logger.Error("tanks operation failed", append(fieldsForLog, zap.Error(err))...)
	case status == http.StatusNotFound:
		logger.Info("tanks resource not found", append(fieldsForLog, zap.Error(err))...)
	default:
		logger.Warn("tanks request rejected", append(fieldsForLog, zap.Error(err))...)
	}

	problemdetails.Write(w, problemdetails.New(title, detail, problemType, status, fields))
}

func classifyError(err error) (status int, title, detail, problemType string, fieldErrors service.FieldErrors) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest,
			"Validation failed",
			"one or more parameters are invalid",
			problemTypeValidation,
			validationErr.Fields
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound,
			"Resource not found",
			"tank not found",
			problemTypeNotFound,
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
