// Package client wires configuration, transport, state and stores
// into one high-level entry point.
package client

import (
	"context"
	"fmt"

	"flatplan/internal/api"
	"flatplan/internal/config"
	"flatplan/internal/events"
	"flatplan/internal/router"
	"flatplan/internal/session"
	"flatplan/internal/state"
	"flatplan/internal/store"
	"flatplan/internal/transport"
)

// Client provides the high-level API for flatplan operations.
type Client struct {
	Session *session.Manager
	Router  *router.Router

	Flats    *api.FlatsClient
	Layouts  *api.LayoutsClient
	Analysis *api.AnalysisClient

	FlatStore   *store.FlatStore
	LayoutStore *store.LayoutStore

	config    *config.Config
	logger    *events.Logger
	transport transport.Transport
	state     state.Store
}

// New creates a flatplan client from configuration.
func New(cfg *config.Config, logger *events.Logger) (*Client, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	transportClient := transport.New(&cfg.API, logger)

	stateStore, err := newStateStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	sessionManager := session.NewManager(transportClient, stateStore, cfg.RefreshURL(), logger)

	flatsClient := api.NewFlatsClient(transportClient, logger)
	layoutsClient := api.NewLayoutsClient(transportClient, logger)
	analysisClient := api.NewAnalysisClient(transportClient, logger)

	return &Client{
		Session:     sessionManager,
		Router:      router.New(sessionManager, stateStore, logger),
		Flats:       flatsClient,
		Layouts:     layoutsClient,
		Analysis:    analysisClient,
		FlatStore:   store.NewFlatStore(flatsClient, logger),
		LayoutStore: store.NewLayoutStore(layoutsClient, logger),
		config:      cfg,
		logger:      logger,
		transport:   transportClient,
		state:       stateStore,
	}, nil
}

// Initialize restores the session from durable state.
func (c *Client) Initialize(ctx context.Context) error {
	return c.Session.Initialize(ctx)
}

// Close releases the transport and the state store.
func (c *Client) Close() error {
	if err := c.state.Close(); err != nil {
		return fmt.Errorf("close state store: %w", err)
	}
	return c.transport.Close()
}

func newStateStore(cfg *config.Config, logger *events.Logger) (state.Store, error) {
	switch cfg.Storage.StateBackend {
	case "sqlite":
		return state.NewSQLiteStore(cfg.StatePath(), logger)
	default:
		return state.NewFileStore(cfg.StatePath(), logger)
	}
}
