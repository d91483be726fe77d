package vermisdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultIdentityBaseURL = "https://identitytoolkit.googleapis.com"

// RESTIdentityProvider authenticates against the Firebase Identity Toolkit
// REST endpoints using a web API key. It remembers the last session issued so
// CurrentSession can answer without a network call.
type RESTIdentityProvider struct {
	identityBroadcaster

	apiKey     string
	baseURL    string
	httpClient *http.Client

	mu      sync.Mutex
	current *AuthSession
}

// NewRESTIdentityProvider constructs a provider for the given web API key.
// The base URL can be overridden for the auth emulator or tests; pass ""
// for the production endpoint.
func NewRESTIdentityProvider(apiKey, baseURL string) (*RESTIdentityProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("identity api key is required")
	}
	if baseURL == "" {
		baseURL = defaultIdentityBaseURL
	}

	return &RESTIdentityProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

type identitySessionResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// SignUp registers a new identity with the provider, attaching the display
// name as profile metadata.
func (p *RESTIdentityProvider) SignUp(ctx context.Context, email, password, displayName string) (AuthSession, error) {
	payload, err := json.Marshal(struct {
		Email             string `json:"email"`
		Password          string `json:"password"`
		DisplayName       string `json:"displayName,omitempty"`
		ReturnSecureToken bool   `json:"returnSecureToken"`
	}{Email: email, Password: password, DisplayName: displayName, ReturnSecureToken: true})
	if err != nil {
		return AuthSession{}, fmt.Errorf("encode request: %w", err)
	}

	session, err := p.exchange(ctx, "accounts:signUp", payload)
	if err != nil {
		return AuthSession{}, err
	}
	if session.DisplayName == "" {
		session.DisplayName = displayName
	}

	p.setCurrent(session)
	p.emitSignedIn(session)
	return session, nil
}

// SignIn exchanges credentials for a session.
func (p *RESTIdentityProvider) SignIn(ctx context.Context, email, password string) (AuthSession, error) {
	payload, err := json.Marshal(struct {
		Email             string `json:"email"`
		Password          string `json:"password"`
		ReturnSecureToken bool   `json:"returnSecureToken"`
	}{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return AuthSession{}, fmt.Errorf("encode request: %w", err)
	}

	session, err := p.exchange(ctx, "accounts:signInWithPassword", payload)
	if err != nil {
		return AuthSession{}, err
	}

	p.setCurrent(session)
	p.emitSignedIn(session)
	return session, nil
}

// CurrentSession returns the active session, if any.
func (p *RESTIdentityProvider) CurrentSession(_ context.Context) (AuthSession, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return AuthSession{}, false, nil
	}
	return *p.current, true, nil
}

// Restore recovers the session behind a persisted ID token via the lookup
// endpoint and makes it the current session. Subscribers are not notified;
// restoring is a resync, not a sign-in transition.
func (p *RESTIdentityProvider) Restore(ctx context.Context, idToken string) (AuthSession, error) {
	if strings.TrimSpace(idToken) == "" {
		return AuthSession{}, fmt.Errorf("id token is required")
	}

	payload, err := json.Marshal(struct {
		IDToken string `json:"idToken"`
	}{IDToken: idToken})
	if err != nil {
		return AuthSession{}, fmt.Errorf("encode request: %w", err)
	}

	var response struct {
		Users []struct {
			LocalID     string `json:"localId"`
			Email       string `json:"email"`
			DisplayName string `json:"displayName"`
		} `json:"users"`
	}
	if err := p.post(ctx, "accounts:lookup", payload, &response); err != nil {
		return AuthSession{}, err
	}
	if len(response.Users) == 0 {
		return AuthSession{}, &IdentityError{Code: "USER_NOT_FOUND", Message: "no identity behind token"}
	}

	session := AuthSession{
		AuthUID:     response.Users[0].LocalID,
		Email:       response.Users[0].Email,
		DisplayName: response.Users[0].DisplayName,
		IDToken:     idToken,
	}

	p.setCurrent(session)
	return session, nil
}

// SignOut discards the current session and notifies subscribers. The REST
// provider holds no server-side session state to revoke.
func (p *RESTIdentityProvider) SignOut() {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()

	p.emitSignedOut()
}

// Subscribe registers callbacks for sign-in transitions.
func (p *RESTIdentityProvider) Subscribe(onSignedIn func(AuthSession), onSignedOut func()) func() {
	return p.subscribe(onSignedIn, onSignedOut)
}

func (p *RESTIdentityProvider) setCurrent(session AuthSession) {
	p.mu.Lock()
	p.current = &session
	p.mu.Unlock()
}

func (p *RESTIdentityProvider) exchange(ctx context.Context, endpoint string, payload []byte) (AuthSession, error) {
	var response identitySessionResponse
	if err := p.post(ctx, endpoint, payload, &response); err != nil {
		return AuthSession{}, err
	}

	expiresIn, _ := strconv.ParseInt(response.ExpiresIn, 10, 64)

	return AuthSession{
		AuthUID:      response.LocalID,
		Email:        response.Email,
		DisplayName:  response.DisplayName,
		IDToken:      response.IDToken,
		RefreshToken: response.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

func (p *RESTIdentityProvider) post(ctx context.Context, endpoint string, payload []byte, out any) error {
	url := fmt.Sprintf("%s/v1/%s?key=%s", p.baseURL, endpoint, p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeIdentityError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeIdentityError parses the Identity Toolkit error envelope. Messages may
// carry a trailing explanation, e.g. "WEAK_PASSWORD : Password should be ...".
func decodeIdentityError(resp *http.Response) error {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error.Message == "" {
		return &IdentityError{
			Code:    "UNEXPECTED_RESPONSE",
			Message: fmt.Sprintf("identity endpoint returned status %d", resp.StatusCode),
		}
	}

	message := envelope.Error.Message
	code := message
	if idx := strings.IndexAny(message, " :"); idx > 0 {
		code = message[:idx]
	}

	return &IdentityError{Code: code, Message: message}
}
