package client

import "context"

// LoginRequest are the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates a new customer account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and stores the resulting user and token pair in the
// session, so subsequent calls carry the bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/login", req, &resp); err != nil {
		return nil, err
	}
	if err := c.session.Save(&resp.User, &resp.Tokens); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and signs the new user in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/register", req, &resp); err != nil {
		return nil, err
	}
	if err := c.session.Save(&resp.User, &resp.Tokens); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout clears the local session. The server call is best effort: the
// session is dropped locally even when the network is down, matching the
// behavior users expect from a sign-out button.
func (c *Client) Logout(ctx context.Context) error {
	var body any
	if tokens, err := c.session.Tokens(); err == nil && tokens != nil {
		body = map[string]string{"refreshToken": tokens.RefreshToken}
	}
	_ = c.post(ctx, "/logout", body, nil)
	return c.session.Clear()
}

// CurrentUser returns the user saved in the session, if any.
func (c *Client) CurrentUser() (*User, error) {
	return c.session.User()
}
