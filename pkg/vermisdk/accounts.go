package vermisdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// AccountExists reports whether an account already uses the email address.
func (c *Client) AccountExists(ctx context.Context, email string) (bool, error) {
	path := "/api/users/exists?email=" + url.QueryEscape(email)

	var response struct {
		Exists bool `json:"exists"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, http.StatusOK, &response); err != nil {
		return false, err
	}
	return response.Exists, nil
}

// CreateAccount provisions the application account row for a verified identity.
func (c *Client) CreateAccount(ctx context.Context, token string, input CreateAccountInput) (Account, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return Account{}, fmt.Errorf("encode request: %w", err)
	}

	var account Account
	if err := c.doJSON(ctx, http.MethodPost, "/api/users", token, bytes.NewReader(body), http.StatusCreated, &account); err != nil {
		return Account{}, err
	}
	return account, nil
}

// GetAccountByAuthUID fetches the account row for an identity provider uid.
func (c *Client) GetAccountByAuthUID(ctx context.Context, token, authUID string) (Account, error) {
	path := "/api/users/by-auth/" + url.PathEscape(authUID)

	var account Account
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, http.StatusOK, &account); err != nil {
		return Account{}, err
	}
	return account, nil
}

// AssignTanks attaches tanks to a provisioned account.
func (c *Client) AssignTanks(ctx context.Context, token string, userID uuid.UUID, tankIDs []int64) error {
	body, err := json.Marshal(struct {
		TankIDs []int64 `json:"tankIds"`
	}{TankIDs: tankIDs})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	path := "/api/users/" + userID.String() + "/tanks"
	return c.doJSON(ctx, http.MethodPost, path, token, bytes.NewReader(body), http.StatusNoContent, nil)
}

// ListAssignedTanks fetches the tank ids attached to an account.
func (c *Client) ListAssignedTanks(ctx context.Context, token string, userID uuid.UUID) ([]int64, error) {
	path := "/api/users/" + userID.String() + "/tanks"

	var response struct {
		TankIDs []int64 `json:"tankIds"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, http.StatusOK, &response); err != nil {
		return nil, err
	}
	return response.TankIDs, nil
}
