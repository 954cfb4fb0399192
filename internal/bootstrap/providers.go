package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"stockadvisor/internal/adapters/adk"
	"stockadvisor/internal/adapters/config"
	errnoop "stockadvisor/internal/adapters/errors/noop"
	"stockadvisor/internal/adapters/errors/sentry"
	"stockadvisor/internal/adapters/marketdata"
	redisclient "stockadvisor/internal/adapters/redis"
	"stockadvisor/internal/adapters/websearch"
	"stockadvisor/internal/agents"
	"stockadvisor/internal/api"
	"stockadvisor/internal/api/health"
	"stockadvisor/internal/bridge"
	"stockadvisor/internal/metrics"
	"stockadvisor/internal/repository/memory"
	"stockadvisor/internal/repository/redis"
	"stockadvisor/internal/services/auth"
	"stockadvisor/internal/services/market"
	"stockadvisor/internal/services/watchlist"
	"stockadvisor/internal/tools"
	toolmw "stockadvisor/internal/tools/middleware"
	pkgauth "stockadvisor/pkg/auth"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

// MustInitConfig loads configuration or exits.
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	c.Config = cfg
}

// MustInitLogger initializes structured logging. Logs go to stderr so stdout
// stays free for the chat transcript and the tool protocol.
func (c *Container) MustInitLogger() {
	if err := logger.Init(c.Config.App.LogLevel, c.Config.App.Env); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	c.Log = logger.Get()
}

// InitInfrastructure connects Redis when configured. A failed connection
// falls back to in-memory stores.
func (c *Container) InitInfrastructure(ctx context.Context) {
	if !c.Config.Redis.Enabled() {
		c.Log.Debug("Redis not configured, using in-memory stores")
		return
	}

	client, err := redisclient.NewClient(ctx, c.Config.Redis)
	if err != nil {
		c.Log.Warnf("Redis unavailable, using in-memory stores: %v", err)
		return
	}
	c.Redis = client
	c.Log.Infof("✓ Redis connected at %s", c.Config.Redis.Addr())
}

// InitRepositories picks Redis-backed stores when Redis is connected.
func (c *Container) InitRepositories() {
	if c.Redis != nil {
		c.Repos = &Repositories{
			User:      redis.NewUserRepository(c.Redis.Client()),
			Watchlist: redis.NewWatchlistRepository(c.Redis.Client()),
		}
		return
	}
	c.Repos = &Repositories{
		User:      memory.NewUserRepository(),
		Watchlist: memory.NewWatchlistRepository(),
	}
}

// InitAdapters creates the market data and web search clients.
func (c *Container) InitAdapters() error {
	var cache marketdata.Cache
	if c.Redis != nil {
		cache = c.Redis
	}

	yahoo, err := marketdata.NewYahoo(c.Config.MarketData, cache, c.Log)
	if err != nil {
		return errors.Wrap(err, "market data client")
	}

	c.Adapters = &Adapters{
		Market: yahoo,
		Search: websearch.NewDuckDuckGo(c.Config.Search, c.Log),
	}
	return nil
}

// InitToolCatalog registers every data tool against the adapters.
func (c *Container) InitToolCatalog() {
	c.Tools = tools.NewRegistry()
	svc := tools.NewService(c.Adapters.Market, c.Adapters.Search, nil, c.Log)
	tools.RegisterAllTools(c.Tools, svc)

	timeout := toolmw.TimeoutMiddleware{Timeout: c.Config.ToolServer.CallTimeout}
	logging := toolmw.NewLoggingMiddleware(c.Log.With("component", "tool_server"))
	c.Tools.Map(func(t tools.Tool) tools.Tool {
		return logging.Wrap(timeout.Wrap(t))
	})
	c.Log.Debugf("Tool catalog ready: %v", c.Tools.List())
}

// InitAdvisor creates the model, the tool bridge and the orchestrator. The
// bridge launches this binary's tools command unless configured otherwise.
func (c *Container) InitAdvisor(ctx context.Context) error {
	llm, err := adk.NewModel(ctx, c.Config.LLM)
	if err != nil {
		return errors.Wrap(err, "language model")
	}

	command, err := c.Config.ToolServer.ResolveCommand()
	if err != nil {
		return err
	}

	c.Bridge = bridge.New(bridge.Config{
		Command:        command,
		Args:           c.Config.ToolServer.Args,
		StartupTimeout: c.Config.ToolServer.StartupTimeout,
		CallTimeout:    c.Config.ToolServer.CallTimeout,
		ClientName:     c.Config.App.Name,
		ClientVersion:  c.Config.App.Version,
	}, c.Log, bridge.WithTracker(c.ErrorTracker))

	c.Advisor, err = agents.New(ctx, agents.ConfigFrom(c.Config, llm), c.Bridge)
	if err != nil {
		return errors.Wrap(err, "advisor")
	}
	return nil
}

// NewHTTPServer wires the API over the initialized services.
func (c *Container) NewHTTPServer() *api.Server {
	jwt := pkgauth.NewJWTService(c.Config.Auth.JWTSecret, c.Config.Auth.Issuer, c.Config.Auth.TokenTTL)

	var pinger health.Pinger
	if c.Redis != nil {
		pinger = c.Redis
	}

	if err := prometheus.Register(metrics.NewStateCollector(c.Log, c.Bridge, c.Repos.User)); err != nil {
		c.Log.Warnf("State metrics not registered: %v", err)
	}

	return api.NewServer(api.ServerConfig{
		Port:         c.Config.HTTP.Port,
		CORSOrigins:  c.Config.HTTP.CORSOrigins,
		WriteTimeout: c.Config.HTTP.WriteTimeout,
	}, api.Dependencies{
		Advisor:    c.Advisor,
		Accounts:   auth.NewService(c.Repos.User, jwt, c.Log),
		Watchlists: watchlist.NewService(c.Repos.Watchlist, c.Log),
		Markets:    market.NewService(c.Adapters.Market, c.Log),
		Health:     health.New(c.Log, c.Bridge, pinger, c.Config.App.Name, c.Config.App.Version),
	}, c.Log)
}

// provideErrorTracker initializes error tracking (Sentry or no-op)
func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Debug("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment, cfg.App.Version)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}
