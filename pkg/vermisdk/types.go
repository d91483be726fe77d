package vermisdk

import (
	"time"

	"github.com/google/uuid"
)

// Location is a deployment region exposed by the catalog API.
type Location struct {
	ID   int64  `json:"location_id"`
	Name string `json:"location_name"`
}

// Site is a physical installation within a location.
type Site struct {
	ID         int64  `json:"site_id"`
	Name       string `json:"site_name"`
	LocationID int64  `json:"location_id"`
}

// Tank is a monitored composting tank.
type Tank struct {
	ID          int64   `json:"device_id"`
	Name        string  `json:"device_name"`
	Description *string `json:"device_description,omitempty"`
	SiteID      int64   `json:"site_id"`
	LocationID  int64   `json:"location_id"`
}

// Account is a provisioned application account.
type Account struct {
	UserID     uuid.UUID `json:"userId"`
	AuthUID    string    `json:"authUid"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	LocationID int64     `json:"locationId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateAccountInput is the payload for provisioning an account row.
type CreateAccountInput struct {
	AuthUID    string `json:"authUid"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	LocationID int64  `json:"locationId"`
}
