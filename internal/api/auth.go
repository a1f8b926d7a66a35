package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Login exchanges credentials for a token pair and the user profile.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.postJSON(ctx, c.authURL+"/login/", loginRequest{Email: email, Password: password}, false, &out); err != nil {
		return nil, err
	}
	if out.Access == "" || out.Refresh == "" {
		return nil, fmt.Errorf("login response missing tokens")
	}
	return &out, nil
}

// Register creates an account. It does not sign the user in: the account
// must be verified before Login succeeds.
func (c *Client) Register(ctx context.Context, email, password, name string) error {
	req := registrationRequest{Email: email, Password1: password, Password2: password, Name: name}
	return c.postJSON(ctx, c.authURL+"/registration/", req, false, nil)
}

// Logout tells the auth service to end the current session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, request{
		method:      http.MethodPost,
		url:         c.authURL + "/logout/",
		contentType: "application/json",
		withAuth:    true,
	}, nil)
}

// RefreshToken trades a refresh token for a new pair. Nothing in the client
// calls it automatically.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (*TokenPair, error) {
	var out TokenPair
	if err := c.postJSON(ctx, c.authURL+"/token/refresh/", refreshRequest{Refresh: refresh}, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser returns the profile the auth service associates with the
// current access token.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, request{method: http.MethodGet, url: c.authURL + "/user/", withAuth: true}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body any, withAuth bool, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		url:         endpoint,
		body:        bytes.NewReader(payload),
		contentType: "application/json",
		withAuth:    withAuth,
	}, out)
}
