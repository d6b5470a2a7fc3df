package saazsdk

import (
	"context"
	"errors"
	"fmt"
)

// RoleChooser asks the person signing in which role their new account
// should have. It is called at most once per LoginWithGoogle.
type RoleChooser func(ctx context.Context) (string, error)

// Flow runs the sign-in flows against a Client and keeps the resulting
// session in a SessionStore.
type Flow struct {
	Client *Client
	Store  *SessionStore
}

// NewFlow creates a flow with an in-memory session store.
func NewFlow(client *Client) *Flow {
	return &Flow{Client: client, Store: NewSessionStore(nil)}
}

func (f *Flow) Login(ctx context.Context, identifier, password string) (*AuthResponse, error) {
	resp, err := f.Client.Login(ctx, LoginRequest{Identifier: identifier, Password: password})
	if err != nil {
		return nil, err
	}
	return f.signedIn(resp)
}

func (f *Flow) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	resp, err := f.Client.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return f.signedIn(resp)
}

// LoginWithGoogle signs in with a federated credential. When the server
// needs a role for a new account, choose is asked for one and the pending
// identity is resubmitted; the credential is not sent twice.
func (f *Flow) LoginWithGoogle(ctx context.Context, credential string, choose RoleChooser) (*AuthResponse, error) {
	resp, err := f.Client.GoogleLogin(ctx, GoogleLoginRequest{Credential: credential})
	if err == nil {
		return f.signedIn(resp)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != CodeRoleRequired || apiErr.PendingID == "" {
		return nil, err
	}
	if choose == nil {
		return nil, err
	}

	role, cerr := choose(ctx)
	if cerr != nil {
		return nil, fmt.Errorf("choose role: %w", cerr)
	}

	resp, err = f.Client.GoogleLogin(ctx, GoogleLoginRequest{PendingID: apiErr.PendingID, Role: role})
	if err != nil {
		return nil, err
	}
	return f.signedIn(resp)
}

// RefreshUser re-reads the signed-in account and updates the stored user.
func (f *Flow) RefreshUser(ctx context.Context) (*Profile, error) {
	st, ok := f.Store.Current()
	if !ok {
		return nil, ErrNoSession
	}

	p, err := f.Client.GetProfile(ctx, st.Token)
	if err != nil {
		return nil, err
	}

	if err := f.Store.Update(User{
		ID:       p.ID,
		Email:    p.Email,
		Name:     p.Name,
		Role:     p.Role,
		Username: p.Username,
		Image:    p.Image,
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// Logout forgets the session. Tokens are stateless so nothing is sent to
// the server.
func (f *Flow) Logout() error {
	return f.Store.Clear()
}

func (f *Flow) signedIn(resp *AuthResponse) (*AuthResponse, error) {
	if err := f.Store.Save(resp.Token, resp.User); err != nil {
		return nil, err
	}
	return resp, nil
}
