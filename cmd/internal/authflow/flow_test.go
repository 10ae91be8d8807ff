package authflow

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"fouron4/cmd/internal/api"
	"fouron4/cmd/internal/keyring"
	"fouron4/cmd/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFlow(t *testing.T, srv *httptest.Server) (*Flow, *session.Store, keyring.Keyring) {
	t.Helper()

	kr := keyring.NewMemoryStore()
	store := session.NewStore(testLogger(), kr)
	client, err := api.New(api.Config{BaseURL: srv.URL}, testLogger(), store)
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	client.BindSession()
	return New(testLogger(), client, store, kr), store, kr
}

func writeOK(w http.ResponseWriter, data any) {
	raw, _ := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"ok": true, "data": json.RawMessage(raw)})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"ok": false, "message": message})
}

func TestRegistrationFlowEndToEnd(t *testing.T) {
	t.Parallel()

	var completeCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register-start", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, struct{}{})
	})
	mux.HandleFunc("/api/auth/verify-email", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
			Code  string `json:"code"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Code != "482910" {
			writeFail(w, http.StatusBadRequest, "Invalid verification code.")
			return
		}
		writeOK(w, map[string]string{"exchangeToken": "xt-1"})
	})
	mux.HandleFunc("/api/auth/register-complete", func(w http.ResponseWriter, r *http.Request) {
		completeCalls.Add(1)
		var req struct {
			ExchangeToken string `json:"exchangeToken"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.ExchangeToken != "xt-1" {
			writeFail(w, http.StatusBadRequest, "Invalid exchange token.")
			return
		}
		writeOK(w, map[string]any{
			"token": "t-new",
			"user":  map[string]string{"id": "u-new"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	flow, store, kr := newTestFlow(t, srv)
	ctx := context.Background()

	if err := flow.StartRegistration(ctx, "asha@example.com"); err != nil {
		t.Fatalf("StartRegistration: %v", err)
	}
	if err := flow.VerifyCode(ctx, "asha@example.com", "482910"); err != nil {
		t.Fatalf("VerifyCode: %v", err)
	}

	// The exchange token persists between steps.
	if tok, err := kr.Get(ctx, keyring.KeyExchangeToken); err != nil || tok != "xt-1" {
		t.Fatalf("stored exchange token = %q, %v", tok, err)
	}

	data, err := flow.CompleteRegistration(ctx, "Asha", "+254700000001", "4321")
	if err != nil {
		t.Fatalf("CompleteRegistration: %v", err)
	}
	if data.User.ID != "u-new" {
		t.Fatalf("user id = %q", data.User.ID)
	}

	cur := store.Current()
	if cur.AccessToken != "t-new" || cur.UserID != "u-new" {
		t.Fatalf("session = %+v", cur)
	}
	if _, err := kr.Get(ctx, keyring.KeyExchangeToken); !errors.Is(err, keyring.ErrNotFound) {
		t.Fatalf("exchange token not consumed: %v", err)
	}
	if completeCalls.Load() != 1 {
		t.Fatalf("complete calls = %d", completeCalls.Load())
	}
}

func TestExchangeTokenIsReadOnce(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The server is never reached on the second attempt; the token
		// is gone before any network call.
		writeFail(w, http.StatusInternalServerError, "boom")
	}))
	defer srv.Close()

	flow, _, kr := newTestFlow(t, srv)
	ctx := context.Background()

	if err := kr.Set(ctx, keyring.KeyExchangeToken, "xt-1"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// First attempt consumes the token even though the server errors.
	if _, err := flow.CompleteRegistration(ctx, "Asha", "+254700000001", "4321"); err == nil {
		t.Fatal("expected server failure")
	}
	if _, err := flow.CompleteRegistration(ctx, "Asha", "+254700000001", "4321"); !errors.Is(err, ErrNoPendingRegistration) {
		t.Fatalf("second attempt err = %v, want ErrNoPendingRegistration", err)
	}
}

func TestCompleteRegistrationWithoutVerification(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	flow, _, _ := newTestFlow(t, srv)

	_, err := flow.CompleteRegistration(context.Background(), "Asha", "+254700000001", "4321")
	if !errors.Is(err, ErrNoPendingRegistration) {
		t.Fatalf("err = %v, want ErrNoPendingRegistration", err)
	}
}

func TestLogoutClearsLocalStateEvenWhenRevokeFails(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, http.StatusInternalServerError, "revoke failed")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	flow, store, _ := newTestFlow(t, srv)
	ctx := context.Background()

	if err := store.SetAuth(ctx, "tok", "u-1"); err != nil {
		t.Fatalf("SetAuth: %v", err)
	}
	if err := flow.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if store.Current().Valid() {
		t.Fatal("session survived logout")
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	flow, _, _ := newTestFlow(t, srv)

	if err := flow.Logout(context.Background()); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("err = %v, want ErrNotLoggedIn", err)
	}
}

func TestLoginEstablishesSession(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, map[string]any{
			"accessToken": "t-login",
			"user":        map[string]string{"id": "u-7"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	flow, store, _ := newTestFlow(t, srv)

	data, err := flow.Login(context.Background(), "+254700000001", "4321")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if data.BearerToken() != "t-login" {
		t.Fatalf("token = %q", data.BearerToken())
	}
	if cur := store.Current(); cur.UserID != "u-7" {
		t.Fatalf("session = %+v", cur)
	}
}
