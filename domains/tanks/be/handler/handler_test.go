package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vermimetrics/vermi-platform/domains/tanks/be/service"
)

type mockService struct {
	listLocationsFn       func(ctx context.Context) ([]service.Location, error)
	listSitesFn           func(ctx context.Context, locationID int64) ([]service.Site, error)
	listTanksByLocationFn func(ctx context.Context, locationID int64) ([]service.Tank, error)
	listTanksBySiteFn     func(ctx context.Context, siteID int64) ([]service.Tank, error)
	getTanksByIDsFn       func(ctx context.Context, ids []int64) ([]service.Tank, error)
}

func (m *mockService) ListLocations(ctx context.Context) ([]service.Location, error) {
	if m.listLocationsFn == nil {
		panic("listLocationsFn not configured")
	}
	return m.listLocationsFn(ctx)
}

func (m *mockService) ListSites(ctx context.Context, locationID int64) ([]service.Site, error) {
	if m.listSitesFn == nil {
		panic("listSitesFn not configured")
	}
	return m.listSitesFn(ctx, locationID)
}

func (m *mockService) ListTanksByLocation(ctx context.Context, locationID int64) ([]service.Tank, error) {
	if m.listTanksByLocationFn == nil {
		panic("listTanksByLocationFn not configured")
	}
	return m.listTanksByLocationFn(ctx, locationID)
}

func (m *mockService) ListTanksBySite(ctx context.Context, siteID int64) ([]service.Tank, error) {
	if m.listTanksBySiteFn == nil {
		panic("listTanksBySiteFn not configured")
	}
	return m.listTanksBySiteFn(ctx, siteID)
}

func (m *mockService) GetTanksByIDs(ctx context.Context, ids []int64) ([]service.Tank, error) {
	if m.getTanksByIDsFn == nil {
		panic("getTanksByIDsFn not configured")
	}
	return m.getTanksByIDsFn(ctx, ids)
}

func TestListLocationsSuccess(t *testing.T) {
	t.Parallel()

	svc := &mockService{
		listLocationsFn: func(ctx context.Context) ([]service.Location, error) {
			return []service.Location{{ID: 1, Name: "North Farm"}}, nil
		},
	}

	h := New(svc, zaptest.NewLogger(t))
	recorder := httptest.NewRecorder()
	h.Routes().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/location", nil))

	require.Equal(t, http.StatusOK, recorder.Code)

	var items []Location
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &items))
	require.Len(t, items, 1)
	require.Equal(t, "North Farm", items[0].LocationName)
}

func TestListTankNamesRequiresLocationID(t *testing.T) {
	t.Parallel()

	h := New(&mockService{}, zaptest.NewLogger(t))
	recorder := httptest.NewRecorder()
	h.Routes().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/tanksname", nil))

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, "application/problem+json", recorder.Header().Get("Content-Type"))

	var problem struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &problem))
	require.Contains(t, problem.Errors, "locationId")
}

func TestGetTankInfoParsesIDList(t *testing.T) {
	t.Parallel()

	description := "red worms"
	svc := &mockService{
		getTanksByIDsFn: func(ctx context.Context, ids []int64) ([]service.Tank, error) {
			require.Equal(t, []int64{3, 9}, ids)
			return []service.Tank{
				{ID: 3, Name: "Tank 3", Description: &description, SiteID: 1, LocationID: 1},
				{ID: 9, Name: "Tank 9", SiteID: 2, LocationID: 1},
			}, nil
		},
	}

	h := New(svc, zaptest.NewLogger(t))
	recorder := httptest.NewRecorder()
	h.Routes().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/tankinfo?ids=3,%209", nil))

	require.Equal(t, http.StatusOK, recorder.Code)

	var items []Tank
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &items))
	require.Len(t, items, 2)
	require.Equal(t, "Tank 3", items[0].DeviceName)
	require.NotNil(t, items[0].DeviceDescription)
}

func TestGetTankInfoRejectsMalformedIDs(t *testing.T) {
	t.Parallel()

	h := New(&mockService{}, zaptest.NewLogger(t))
	recorder := httptest.NewRecorder()
	h.Routes().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/tankinfo?ids=3,abc", nil))

	require.Equal(t, http.StatusBadRequest, recorder.Code)
}
