package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/gripvest/internal/clients/api"
	"github.com/bobmcallan/gripvest/internal/clients/gemini"
	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/interfaces"
	"github.com/bobmcallan/gripvest/internal/services/auth"
	"github.com/bobmcallan/gripvest/internal/services/catalog"
	"github.com/bobmcallan/gripvest/internal/services/insights"
	"github.com/bobmcallan/gripvest/internal/services/investment"
	"github.com/bobmcallan/gripvest/internal/services/ledger"
	"github.com/bobmcallan/gripvest/internal/services/lifecycle"
	"github.com/bobmcallan/gripvest/internal/storage"
)

// App holds all initialized services, clients and the state store.
// It is the shared core behind every gripvest command.
type App struct {
	Config               *common.Config
	Logger               *common.Logger
	Store                interfaces.StateStore
	APIClient            interfaces.MarketplaceClient
	GeminiClient         interfaces.GeminiClient
	CatalogService       interfaces.CatalogService
	InvestmentRepository interfaces.InvestmentRepository
	LedgerService        interfaces.LedgerService
	LifecycleService     interfaces.LifecycleService
	InsightsService      interfaces.InsightsService
	AuthService          interfaces.AuthService
	StartupTime          time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPaths lists the config files to load, lowest precedence first.
// An explicit path (flag or GRIPVEST_CONFIG) replaces the defaults.
func resolveConfigPaths(configPath string) []string {
	if configPath == "" {
		configPath = os.Getenv("GRIPVEST_CONFIG")
	}
	if configPath != "" {
		return []string{configPath}
	}
	paths := []string{filepath.Join(getBinaryDir(), "gripvest.toml")}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "gripvest", "gripvest.toml"))
	}
	return append(paths, "gripvest.toml")
}

// NewApp loads configuration, opens the state store and wires the services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	startupStart := time.Now()

	config, err := common.LoadConfig(resolveConfigPaths(configPath)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	store, err := storage.NewStateStore(ctx, logger, &config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	client := api.NewClientFromConfig(config.API, logger)

	var geminiClient interfaces.GeminiClient
	if key := config.Clients.Gemini.APIKey; key != "" {
		gc, err := gemini.NewClient(ctx, key,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithTimeout(config.Clients.Gemini.GetTimeout()),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			geminiClient = gc
		}
	} else {
		logger.Debug().Msg("Gemini API key not configured - insights use built-in rules")
	}

	a := NewAppWithDeps(config, logger, store, client, geminiClient)
	a.StartupTime = startupStart

	logger.Debug().Dur("startup", time.Since(startupStart)).Str("storage", config.Storage.Backend).Msg("App initialized")
	return a, nil
}

// NewAppWithDeps wires the services over already constructed dependencies.
// geminiClient may be nil.
func NewAppWithDeps(config *common.Config, logger *common.Logger, store interfaces.StateStore, client interfaces.MarketplaceClient, geminiClient interfaces.GeminiClient) *App {
	catalogService := catalog.NewService(client, store, logger)
	repo := investment.NewRepository(client, catalogService, logger, config.API.FanOut)
	ledgerService := ledger.NewService(config.Ledger, logger)

	return &App{
		Config:               config,
		Logger:               logger,
		Store:                store,
		APIClient:            client,
		GeminiClient:         geminiClient,
		CatalogService:       catalogService,
		InvestmentRepository: repo,
		LedgerService:        ledgerService,
		LifecycleService:     lifecycle.NewService(client, catalogService, repo, ledgerService, logger),
		InsightsService:      insights.NewService(client, geminiClient, logger),
		AuthService:          auth.NewService(client, store, config, logger),
		StartupTime:          time.Now(),
	}
}

// Dashboard opens a dashboard for the stored session.
// Returns models.ErrUnauthenticated when nobody is logged in.
func (a *App) Dashboard(ctx context.Context) (*Dashboard, error) {
	session, err := a.AuthService.Current(ctx)
	if err != nil {
		return nil, err
	}
	return NewDashboard(session, a), nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close state store")
		}
		a.Store = nil
	}
}
