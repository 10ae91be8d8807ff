package authflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fouron4/cmd/internal/api"
	"fouron4/cmd/internal/keyring"
	"fouron4/cmd/internal/session"
)

// Flow drives the credential flows against the API and keeps the session
// store and keyring consistent with their outcomes.
type Flow struct {
	log    *slog.Logger
	client *api.Client
	store  *session.Store
	kr     keyring.Keyring
}

// New constructs a Flow. All dependencies are required.
func New(log *slog.Logger, client *api.Client, store *session.Store, kr keyring.Keyring) *Flow {
	if log == nil {
		log = slog.Default()
	}
	return &Flow{log: log, client: client, store: store, kr: kr}
}

// StartRegistration asks the server to email a verification code.
func (f *Flow) StartRegistration(ctx context.Context, email string) error {
	if err := f.client.RegisterStart(ctx, email); err != nil {
		return err
	}
	f.log.Info("authflow.register.start", "email", email)
	return nil
}

// VerifyCode submits the emailed code. On success the returned exchange
// token and the verified email are stored so CompleteRegistration can run
// later, possibly in another process.
func (f *Flow) VerifyCode(ctx context.Context, email, code string) error {
	token, err := f.client.VerifyEmail(ctx, email, code)
	if err != nil {
		return err
	}

	if err := f.kr.Set(ctx, keyring.KeyVerifyEmail, email); err != nil {
		return fmt.Errorf("store verified email: %w", err)
	}
	if err := f.kr.Set(ctx, keyring.KeyExchangeToken, token); err != nil {
		return fmt.Errorf("store exchange token: %w", err)
	}

	f.log.Info("authflow.register.verified", "email", email)
	return nil
}

// CompleteRegistration spends the stored exchange token to create the
// account with its phone and PIN, then logs the new user in. The token is
// removed from the keyring before the network call, so a second attempt
// cannot reuse it.
func (f *Flow) CompleteRegistration(ctx context.Context, name, phone, pin string) (api.AuthData, error) {
	token, err := f.takeExchangeToken(ctx)
	if err != nil {
		return api.AuthData{}, err
	}

	data, err := f.client.CompleteRegistration(ctx, token, name, phone, pin)
	if err != nil {
		return api.AuthData{}, err
	}

	if err := f.kr.Delete(ctx, keyring.KeyVerifyEmail); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		f.log.Warn("authflow.register.cleanup.fail", "error", err)
	}
	if err := f.store.SetAuth(ctx, data.BearerToken(), data.User.ID); err != nil {
		return api.AuthData{}, err
	}

	f.log.Info("authflow.register.complete", "user_id", data.User.ID)
	return data, nil
}

// takeExchangeToken reads and deletes the stored exchange token in one step.
func (f *Flow) takeExchangeToken(ctx context.Context) (string, error) {
	token, err := f.kr.Get(ctx, keyring.KeyExchangeToken)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoPendingRegistration
	}
	if err != nil {
		return "", err
	}
	if err := f.kr.Delete(ctx, keyring.KeyExchangeToken); err != nil {
		return "", fmt.Errorf("consume exchange token: %w", err)
	}
	return token, nil
}

// Login authenticates with phone and PIN and establishes the session.
func (f *Flow) Login(ctx context.Context, phone, pin string) (api.AuthData, error) {
	data, err := f.client.Login(ctx, phone, pin)
	if err != nil {
		return api.AuthData{}, err
	}
	if err := f.store.SetAuth(ctx, data.BearerToken(), data.User.ID); err != nil {
		return api.AuthData{}, err
	}
	f.log.Info("authflow.login", "user_id", data.User.ID)
	return data, nil
}

// Logout revokes the session server-side and clears all local auth state.
// Local state is cleared even when the revoke call fails; a stale server
// session is preferable to a client that cannot log out.
func (f *Flow) Logout(ctx context.Context) error {
	if !f.store.Current().Valid() {
		return ErrNotLoggedIn
	}

	if err := f.client.Logout(ctx); err != nil {
		f.log.Warn("authflow.logout.remote.fail", "error", err)
	}
	if err := f.store.ClearAuth(ctx); err != nil {
		return err
	}
	f.log.Info("authflow.logout")
	return nil
}

// StartReset requests a PIN reset code for the given email.
func (f *Flow) StartReset(ctx context.Context, email string) error {
	if err := f.client.ResetStart(ctx, email); err != nil {
		return err
	}
	f.log.Info("authflow.reset.start", "email", email)
	return nil
}

// CompleteReset submits the reset code with the new PIN.
func (f *Flow) CompleteReset(ctx context.Context, email, code, newPIN string) error {
	if err := f.client.ResetComplete(ctx, email, code, newPIN); err != nil {
		return err
	}
	f.log.Info("authflow.reset.complete", "email", email)
	return nil
}
