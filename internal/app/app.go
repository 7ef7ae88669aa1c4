package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/eventstock/internal/clients/alphavantage"
	"github.com/bobmcallan/eventstock/internal/clients/guardian"
	"github.com/bobmcallan/eventstock/internal/clients/profile"
	"github.com/bobmcallan/eventstock/internal/clients/wikipedia"
	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/interfaces"
	"github.com/bobmcallan/eventstock/internal/services/aggregate"
	"github.com/bobmcallan/eventstock/internal/services/chart"
	"github.com/bobmcallan/eventstock/internal/services/report"
	"github.com/bobmcallan/eventstock/internal/services/stats"
	"github.com/bobmcallan/eventstock/internal/storage"
)

// App holds all initialized services, clients, and the MCP server.
// It is the shared core used by cmd/eventstock-server and cmd/eventstock.
type App struct {
	Config             *common.Config
	Logger             *common.Logger
	Cache              interfaces.CacheStore
	ProfileClient      interfaces.ProfileClient
	EncyclopediaClient interfaces.EncyclopediaClient
	StockClient        interfaces.StockClient
	NewsClient         interfaces.NewsClient
	AggregateService   interfaces.AggregateService
	StatsService       interfaces.StatsService
	ReportService      interfaces.ReportService
	ChartRenderer      interfaces.ChartRenderer
	MCPServer          *server.MCPServer
	StartupTime        time.Time

	purgeCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the given path, EVENTSTOCK_CONFIG,
// eventstock.toml next to the binary, then config/eventstock.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("EVENTSTOCK_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "eventstock.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/eventstock.toml"
		}
	}
	return configPath
}

// NewApp loads configuration and initializes every client and service.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	binDir := getBinaryDir()
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	return NewAppWithConfig(config, common.NewLoggerFromConfig(config.Logging))
}

// NewAppWithConfig wires the app from an already loaded config.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	for _, key := range config.ValidateRequired() {
		logger.Warn().Str("key", key).Msg("Required config value not set - the matching source will fail")
	}

	cache, err := storage.NewCacheStore(logger, config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize source cache: %w", err)
	}

	clients := config.Clients
	profileClient := profile.NewClient(
		profile.WithBaseURL(clients.Profile.BaseURL),
		profile.WithLogger(logger),
		profile.WithRateLimit(clients.Profile.RateLimit),
		profile.WithTimeout(clients.Profile.GetTimeout()),
	)
	wikipediaClient := wikipedia.NewClient(
		wikipedia.WithBaseURL(clients.Wikipedia.BaseURL),
		wikipedia.WithLogger(logger),
		wikipedia.WithRateLimit(clients.Wikipedia.RateLimit),
		wikipedia.WithTimeout(clients.Wikipedia.GetTimeout()),
	)
	stockClient := alphavantage.NewClient(clients.AlphaVantage.APIKey,
		alphavantage.WithBaseURL(clients.AlphaVantage.BaseURL),
		alphavantage.WithLogger(logger),
		alphavantage.WithRateLimit(clients.AlphaVantage.RateLimit),
		alphavantage.WithTimeout(clients.AlphaVantage.GetTimeout()),
	)
	newsClient := guardian.NewClient(clients.Guardian.APIKey,
		guardian.WithBaseURL(clients.Guardian.BaseURL),
		guardian.WithLogger(logger),
		guardian.WithRateLimit(clients.Guardian.RateLimit),
		guardian.WithTimeout(clients.Guardian.GetTimeout()),
	)

	statsService := stats.NewService(logger)
	aggregateService := aggregate.NewService(profileClient, wikipediaClient, stockClient, newsClient, cache, logger)
	reportService := report.NewService(statsService, config.Report, logger)

	mcpServer := server.NewMCPServer(
		"eventstock",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:             config,
		Logger:             logger,
		Cache:              cache,
		ProfileClient:      profileClient,
		EncyclopediaClient: wikipediaClient,
		StockClient:        stockClient,
		NewsClient:         newsClient,
		AggregateService:   aggregateService,
		StatsService:       statsService,
		ReportService:      reportService,
		ChartRenderer:      chart.NewRenderer(logger),
		MCPServer:          mcpServer,
		StartupTime:        startupStart,
	}

	a.registerTools()

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: cancel the purge scheduler, close the cache.
func (a *App) Close() {
	if a.purgeCancel != nil {
		a.purgeCancel()
		a.purgeCancel = nil
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close source cache")
		}
		a.Cache = nil
	}
}

// StartCachePurge launches the background cache purge goroutine when a
// purge interval is configured.
func (a *App) StartCachePurge() {
	interval := a.Config.Storage.GetPurgeInterval()
	if interval <= 0 || a.Cache == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.purgeCancel = cancel
	go startCachePurge(ctx, a.Cache, a.Logger, interval)
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createEventStatsTool(), handleEventStats(a.AggregateService, a.StatsService, logger))
	s.AddTool(createPurgeCacheTool(), handlePurgeCache(a.Cache, logger))
}
