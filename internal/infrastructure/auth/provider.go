package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/appsnxt/platform/internal/infrastructure/config"
)

// ProviderUser is the user record held by the hosted auth provider.
type ProviderUser struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	Phone            string         `json:"phone,omitempty"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time     `json:"last_sign_in_at,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
	AppMetadata      map[string]any `json:"app_metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Session is the token bundle returned by the provider on signup,
// signin and refresh.
type Session struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	User         ProviderUser `json:"user"`
}

// ProviderError is an error response from the hosted provider.
type ProviderError struct {
	StatusCode int
	Code       string `json:"error_code"`
	Message    string `json:"msg"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("auth provider error (%d): %s", e.StatusCode, e.Message)
}

// IsClientError reports whether the provider rejected the request as
// invalid rather than failing internally.
func (e *ProviderError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// ProviderClient talks to the hosted auth provider's REST API. The
// provider owns credentials and token issuance; this service keeps
// only a projection of its users.
type ProviderClient struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
}

// NewProviderClient creates a client for the configured provider.
func NewProviderClient(cfg config.AuthConfig) *ProviderClient {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ProviderClient{
		baseURL:    cfg.ProviderURL,
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceRoleKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SignupRequest carries signup input for the provider.
type SignupRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// Signup registers a new user with the provider.
func (c *ProviderClient) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignInWithPassword exchanges email and password for a session.
func (c *ProviderClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// RefreshSession exchanges a refresh token for a new session.
func (c *ProviderClient) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignOut revokes the session behind the access token.
func (c *ProviderClient) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

// SendPasswordReset asks the provider to email a recovery link.
func (c *ProviderClient) SendPasswordReset(ctx context.Context, email, redirectTo string) error {
	path := "/auth/v1/recover"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, path, "", body, nil)
}

// UpdatePassword sets a new password for the authenticated user.
func (c *ProviderClient) UpdatePassword(ctx context.Context, accessToken, newPassword string) (*ProviderUser, error) {
	body := map[string]string{"password": newPassword}
	var user ProviderUser
	if err := c.do(ctx, http.MethodPut, "/auth/v1/user", accessToken, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser fetches the provider user behind the access token.
func (c *ProviderClient) GetUser(ctx context.Context, accessToken string) (*ProviderUser, error) {
	var user ProviderUser
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *ProviderClient) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("auth provider: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("auth provider: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.anonKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("auth provider: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		provErr := &ProviderError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, provErr); err != nil || provErr.Message == "" {
			provErr.Message = http.StatusText(resp.StatusCode)
		}
		return provErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("auth provider: failed to parse response: %w", err)
		}
	}
	return nil
}
