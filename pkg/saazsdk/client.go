package saazsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client calls the SAAZ API. It holds no session state; protected calls
// take the session token explicitly. See Flow for stateful sign-in.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CheckUsername reports whether username is free and suggests alternatives.
func (c *Client) CheckUsername(ctx context.Context, username string) (*CheckUsernameResponse, error) {
	var out CheckUsernameResponse
	err := c.call(ctx, http.MethodPost, "/api/auth/check-username", "",
		CheckUsernameRequest{Username: username}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.call(ctx, http.MethodPost, "/api/auth/register", "", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", "", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GoogleLogin signs in with a federated credential. A new identity without
// a role fails with an *APIError whose Code is CodeRoleRequired and whose
// PendingID can be resubmitted with a role.
func (c *Client) GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.call(ctx, http.MethodPost, "/api/auth/google", "", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.call(ctx, http.MethodPost, "/api/auth/forgot-password", "",
		ForgotPasswordRequest{Email: email}, nil, http.StatusOK)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.call(ctx, http.MethodPost, "/api/auth/reset-password", "",
		ResetPasswordRequest{Token: token, Password: password}, nil, http.StatusOK)
}

// GetProfile returns the account the token belongs to.
func (c *Client) GetProfile(ctx context.Context, token string) (*Profile, error) {
	var out Profile
	if err := c.call(ctx, http.MethodGet, "/api/users/profile", token, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, req UpdateProfileRequest) error {
	return c.call(ctx, http.MethodPut, "/api/users/profile", token, req, nil, http.StatusOK)
}

func (c *Client) DeleteProfile(ctx context.Context, token string) error {
	return c.call(ctx, http.MethodDelete, "/api/users/profile", token, nil, nil, http.StatusOK)
}

// ListUsers lists accounts, filtered by role when role is non-empty.
func (c *Client) ListUsers(ctx context.Context, role string) ([]PublicUser, error) {
	path := "/api/users"
	if role != "" {
		path += "?role=" + url.QueryEscape(role)
	}

	var out []PublicUser
	if err := c.call(ctx, http.MethodGet, path, "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	var out []Event
	if err := c.call(ctx, http.MethodGet, "/api/events", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetEvent(ctx context.Context, id int64) (*Event, error) {
	var out Event
	if err := c.call(ctx, http.MethodGet, eventPath(id), "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEvent requires an ARTIST or VENUE session.
func (c *Client) CreateEvent(ctx context.Context, token string, req EventRequest) (*Event, error) {
	var out Event
	if err := c.call(ctx, http.MethodPost, "/api/events", token, req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEvent is allowed for the event's creator only.
func (c *Client) UpdateEvent(ctx context.Context, token string, id int64, req UpdateEventRequest) (*Event, error) {
	var out Event
	if err := c.call(ctx, http.MethodPut, eventPath(id), token, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEvent(ctx context.Context, token string, id int64) error {
	return c.call(ctx, http.MethodDelete, eventPath(id), token, nil, nil, http.StatusOK)
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, http.MethodGet, "/livez", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func eventPath(id int64) string {
	return "/api/events/" + strconv.FormatInt(id, 10)
}
