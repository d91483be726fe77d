package vermisdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ListLocations fetches every location that has monitored tanks.
func (c *Client) ListLocations(ctx context.Context) ([]Location, error) {
	var locations []Location
	if err := c.doJSON(ctx, http.MethodGet, "/api/tanks/location", "", nil, http.StatusOK, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// ListSites fetches the sites within a location.
func (c *Client) ListSites(ctx context.Context, locationID int64) ([]Site, error) {
	path := "/api/tanks/sites?locationId=" + strconv.FormatInt(locationID, 10)

	var sites []Site
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, http.StatusOK, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

// ListTanksByLocation fetches every tank within a location.
func (c *Client) ListTanksByLocation(ctx context.Context, locationID int64) ([]Tank, error) {
	path := "/api/tanks/tanksname?locationId=" + strconv.FormatInt(locationID, 10)

	var tanks []Tank
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, http.StatusOK, &tanks); err != nil {
		return nil, err
	}
	return tanks, nil
}

// ListTanksBySite fetches every tank within a site.
func (c *Client) ListTanksBySite(ctx context.Context, siteID int64) ([]Tank, error) {
	path := "/api/tanks/sitetanks?siteId=" + strconv.FormatInt(siteID, 10)

	var tanks []Tank
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, http.StatusOK, &tanks); err != nil {
		return nil, err
	}
	return tanks, nil
}

// GetTanksByIDs fetches tank details for a list of tank ids.
func (c *Client) GetTanksByIDs(ctx context.Context, ids []int64) ([]Tank, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one tank id is required")
	}

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	path := "/api/tanks/tankinfo?ids=" + url.QueryEscape(strings.Join(parts, ","))

	var tanks []Tank
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, http.StatusOK, &tanks); err != nil {
		return nil, err
	}
	return tanks, nil
}
