package bootstrap

import (
	"context"

	"stockadvisor/internal/adapters/config"
	"stockadvisor/internal/adapters/marketdata"
	redisclient "stockadvisor/internal/adapters/redis"
	"stockadvisor/internal/adapters/websearch"
	"stockadvisor/internal/agents"
	"stockadvisor/internal/bridge"
	"stockadvisor/internal/domain/user"
	"stockadvisor/internal/domain/watchlist"
	"stockadvisor/internal/tools"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

// Container holds application dependencies. Each command initializes only
// the layers it needs, in order.
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Infrastructure Layer; Redis is nil when not configured
	Redis *redisclient.Client

	// Domain Layer - Repositories
	Repos *Repositories

	// External Adapters
	Adapters *Adapters

	// Tool server side
	Tools *tools.Registry

	// Advisor side
	Bridge  *bridge.Bridge
	Advisor *agents.Orchestrator

	Lifecycle *Lifecycle
}

// Repositories groups all domain repositories
type Repositories struct {
	User      user.Repository
	Watchlist watchlist.Repository
}

// Adapters groups external data sources
type Adapters struct {
	Market marketdata.Provider
	Search websearch.Searcher
}

// NewContainer creates an empty container
func NewContainer() *Container {
	return &Container{Lifecycle: NewLifecycle()}
}

// MustInitCore loads config, logging and error tracking.
func (c *Container) MustInitCore() {
	c.MustInitConfig()
	c.MustInitLogger()
	c.ErrorTracker = provideErrorTracker(c.Config, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)
}

// InitToolServer prepares everything the stdio tool server needs.
func (c *Container) InitToolServer(ctx context.Context) error {
	c.MustInitCore()
	c.InitInfrastructure(ctx)
	if err := c.InitAdapters(); err != nil {
		return err
	}
	c.InitToolCatalog()
	return nil
}

// InitAdvisorOnly prepares the bridge and advisor, as the chat command needs.
func (c *Container) InitAdvisorOnly(ctx context.Context) error {
	c.MustInitCore()
	return c.InitAdvisor(ctx)
}

// InitAPI prepares the advisor plus every HTTP dependency.
func (c *Container) InitAPI(ctx context.Context) error {
	c.MustInitCore()
	if err := c.Config.Auth.Validate(); err != nil {
		return errors.Wrap(err, "auth config")
	}
	c.InitInfrastructure(ctx)
	c.InitRepositories()
	if err := c.InitAdapters(); err != nil {
		return err
	}
	return c.InitAdvisor(ctx)
}

// Shutdown releases everything that was initialized.
func (c *Container) Shutdown() {
	c.Lifecycle.Shutdown(c.Advisor, c.Redis, c.ErrorTracker, c.log())
}

func (c *Container) log() *logger.Logger {
	if c.Log == nil {
		return logger.Get()
	}
	return c.Log
}
