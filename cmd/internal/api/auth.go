package api

import (
	"context"
	"fmt"
	"net/http"
)

// RegisterStart requests a verification code for a new account's email.
func (c *Client) RegisterStart(ctx context.Context, email string) error {
	env, err := c.postPublic(ctx, "/api/auth/register-start", registerStartRequest{Email: email})
	if err != nil {
		return err
	}
	return env.Err()
}

// VerifyEmail submits the emailed code and returns the short-lived exchange
// token that authorizes completing registration.
func (c *Client) VerifyEmail(ctx context.Context, email, code string) (string, error) {
	env, err := c.postPublic(ctx, "/api/auth/verify-email", verifyEmailRequest{Email: email, Code: code})
	if err != nil {
		return "", err
	}
	if err := env.Err(); err != nil {
		return "", err
	}

	var data verifyEmailResponse
	if err := env.Decode(&data); err != nil {
		return "", fmt.Errorf("decode verify response: %w", err)
	}
	if data.ExchangeToken == "" {
		return "", &APIError{Status: env.Status, Message: genericFailureMessage}
	}
	return data.ExchangeToken, nil
}

// CompleteRegistration spends the exchange token and creates the account
// with its phone number and PIN. On success the server establishes a
// session: the response carries the access token and user, and the refresh
// cookie lands in the jar.
func (c *Client) CompleteRegistration(ctx context.Context, exchangeToken, name, phone, pin string) (AuthData, error) {
	env, err := c.postPublic(ctx, "/api/auth/register-complete", registerCompleteRequest{
		ExchangeToken: exchangeToken,
		Name:          name,
		Phone:         phone,
		PIN:           pin,
	})
	if err != nil {
		return AuthData{}, err
	}
	return decodeAuthData(env)
}

// Login exchanges phone and PIN for a session.
func (c *Client) Login(ctx context.Context, phone, pin string) (AuthData, error) {
	env, err := c.postPublic(ctx, "/api/auth/login", loginRequest{Phone: phone, PIN: pin})
	if err != nil {
		return AuthData{}, err
	}
	return decodeAuthData(env)
}

// RefreshSession exchanges the refresh cookie for a fresh access token. The
// cookie rides in the client's jar; no bearer token is attached and the call
// is never itself retried.
func (c *Client) RefreshSession(ctx context.Context) (string, error) {
	env, err := c.postPublic(ctx, "/api/auth/refresh", nil)
	if err != nil {
		return "", err
	}
	data, err := decodeAuthData(env)
	if err != nil {
		return "", err
	}
	return data.BearerToken(), nil
}

// Logout revokes the session server-side. A failure here is reported but
// local state is cleared by the caller regardless.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/auth/logout", RequestOptions{},
		c.store.Current().AccessToken, false)
	if err != nil {
		return err
	}
	env, err := readEnvelope(resp)
	if err != nil {
		return err
	}
	return env.Err()
}

// ResetStart requests a PIN reset code for the given email.
func (c *Client) ResetStart(ctx context.Context, email string) error {
	env, err := c.postPublic(ctx, "/api/auth/reset-start", resetStartRequest{Email: email})
	if err != nil {
		return err
	}
	return env.Err()
}

// ResetComplete submits the reset code with the new PIN.
func (c *Client) ResetComplete(ctx context.Context, email, code, newPIN string) error {
	env, err := c.postPublic(ctx, "/api/auth/reset-complete", resetCompleteRequest{
		Email:  email,
		Code:   code,
		NewPIN: newPIN,
	})
	if err != nil {
		return err
	}
	return env.Err()
}

func decodeAuthData(env Envelope) (AuthData, error) {
	if err := env.Err(); err != nil {
		return AuthData{}, err
	}

	var data AuthData
	if err := env.Decode(&data); err != nil {
		return AuthData{}, fmt.Errorf("decode auth response: %w", err)
	}
	if data.BearerToken() == "" || data.User == nil || data.User.ID == "" {
		return AuthData{}, &APIError{Status: env.Status, Message: genericFailureMessage}
	}
	return data, nil
}
