// Package app wires the 4ON4 client runtime: config, logging, the durable
// keyring, the session store, the API executor, and the CLI commands.
package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"fouron4/cmd/internal/api"
	"fouron4/cmd/internal/authflow"
	"fouron4/cmd/internal/keyring"
	"fouron4/cmd/internal/session"
	"fouron4/cmd/internal/tracker"
)

// App is the wired client runtime shared by all CLI commands.
type App struct {
	cfg Config
	log Logger

	kr       keyring.Keyring
	store    *session.Store
	client   *api.Client
	flow     *authflow.Flow
	registry *prometheus.Registry
}

// New constructs a fully wired App and restores any persisted session.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	kr, err := newKeyring(cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	store := session.NewStore(log, kr)

	client, err := api.New(api.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	}, log, store, api.WithMetrics(api.NewMetrics(registry)))
	if err != nil {
		kr.Close()
		return nil, err
	}
	client.BindSession()

	if err := store.Initialize(ctx); err != nil {
		kr.Close()
		return nil, err
	}

	return &App{
		cfg:      cfg,
		log:      log,
		kr:       kr,
		store:    store,
		client:   client,
		flow:     authflow.New(log, client, store, kr),
		registry: registry,
	}, nil
}

// Close releases the keyring. Safe to call once per App.
func (a *App) Close() error {
	return a.kr.Close()
}

// Watch opens a live trip update stream.
func (a *App) Watch(ctx context.Context, tripID string) (*tracker.Watcher, error) {
	return tracker.Watch(ctx, tracker.Config{BaseURL: a.wsBase()}, a.log, a.store, tripID)
}

func (a *App) wsBase() string {
	if a.cfg.WSBaseURL != "" {
		return a.cfg.WSBaseURL
	}
	return wsBaseURL(a.cfg.APIBaseURL)
}

// newKeyring opens the durable credential store, encrypted at rest when a
// passphrase is configured.
func newKeyring(cfg Config) (keyring.Keyring, error) {
	if dir := filepath.Dir(cfg.KeyringPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}

	kr, err := keyring.NewSQLiteStore(cfg.KeyringPath)
	if err != nil {
		return nil, err
	}
	if cfg.KeyringPassphrase != "" {
		sealed, err := keyring.NewSealed(kr, cfg.KeyringPassphrase)
		if err != nil {
			kr.Close()
			return nil, err
		}
		return sealed, nil
	}
	return kr, nil
}

// wsBaseURL maps an HTTP origin to its websocket counterpart.
func wsBaseURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return "ws://" + base
	}
}
