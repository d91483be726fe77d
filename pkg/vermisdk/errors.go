package vermisdk

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError is a problem details payload returned by the platform API.
type APIError struct {
	Status int                 `json:"status"`
	Title  string              `json:"title"`
	Detail string              `json:"detail"`
	Fields map[string][]string `json:"errors"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s: %s", e.Status, e.Title, e.Detail)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Title)
}

// IsConflict reports whether the API rejected the request as a conflict.
func (e *APIError) IsConflict() bool {
	return e.Status == http.StatusConflict
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}
	// Best effort decode; the status code alone is enough to classify.
	_ = json.Unmarshal(body, apiErr)
	if apiErr.Status == 0 {
		apiErr.Status = resp.StatusCode
	}
	return apiErr
}

// Identity provider error codes surfaced by the REST endpoints.
const (
	IdentityCodeEmailExists        = "EMAIL_EXISTS"
	IdentityCodeInvalidCredentials = "INVALID_LOGIN_CREDENTIALS"
	IdentityCodeUserDisabled       = "USER_DISABLED"
	IdentityCodeWeakPassword       = "WEAK_PASSWORD"
)

// IdentityError is an error returned by the identity provider.
type IdentityError struct {
	Code    string
	Message string
}

func (e *IdentityError) Error() string {
	if e.Message != "" && e.Message != e.Code {
		return fmt.Sprintf("identity error %s: %s", e.Code, e.Message)
	}
	return "identity error " + e.Code
}

// IsEmailExists reports whether the provider rejected a sign up because the
// email is already registered.
func (e *IdentityError) IsEmailExists() bool {
	return e.Code == IdentityCodeEmailExists
}

// IsInvalidCredentials reports whether the provider rejected a sign in.
func (e *IdentityError) IsInvalidCredentials() bool {
	return e.Code == IdentityCodeInvalidCredentials ||
		e.Code == "EMAIL_NOT_FOUND" ||
		e.Code == "INVALID_PASSWORD"
}
