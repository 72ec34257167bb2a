package api

import (
	"context"
	"fmt"
)

// loginRequest is the body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a session token and user profile.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" {
		return nil, fmt.Errorf("api: username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("api: password is required")
	}
	var result LoginResult
	if err := c.post(ctx, "/auth/login", loginRequest{Username: username, Password: password}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CurrentUser returns the profile for the authenticated session.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
