package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	collyfetcher "github.com/cwygoda/jobtrack/internal/adapter/fetcher/colly"
	"github.com/cwygoda/jobtrack/internal/adapter/fetcher/headless"
	"github.com/cwygoda/jobtrack/internal/adapter/platform"
	"github.com/cwygoda/jobtrack/internal/adapter/sqlite"
	"github.com/cwygoda/jobtrack/internal/config"
	"github.com/cwygoda/jobtrack/internal/domain"
	"github.com/cwygoda/jobtrack/internal/extract"
	"github.com/cwygoda/jobtrack/internal/metrics"
	"github.com/cwygoda/jobtrack/internal/worker"
)

// App holds the wired services shared by every command.
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	Service  *domain.JobService
	Importer *worker.Importer
	Metrics  *metrics.Metrics

	repo         *sqlite.Repository
	closeFetcher func()
}

// NewApp opens the store and wires fetcher, pipeline and service from cfg.
func NewApp(cfg *config.Config, log *zap.Logger) (*App, error) {
	repo, err := sqlite.New(cfg.DBPath, log.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	platforms, err := platform.NewDefaultRegistry(cfg.Platforms)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("init platforms: %w", err)
	}

	fetcher, closeFetcher, err := newFetcher(cfg.Fetch, log.Named("fetch"))
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("init fetcher: %w", err)
	}

	m := metrics.New()
	pipeline := extract.NewPipeline(fetcher, platforms, m, log.Named("extract"))
	svc := domain.NewJobService(repo, pipeline)

	return &App{
		Config:       cfg,
		Log:          log,
		Service:      svc,
		Importer:     worker.New(svc, m, log.Named("import")),
		Metrics:      m,
		repo:         repo,
		closeFetcher: closeFetcher,
	}, nil
}

func newFetcher(cfg config.FetchConfig, log *zap.Logger) (domain.Fetcher, func(), error) {
	if cfg.Headless {
		f, err := headless.NewChromedp(headless.Config{
			UserAgent:         cfg.UserAgent,
			NavigationTimeout: cfg.HeadlessTimeout.Duration,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	}
	f := collyfetcher.New(collyfetcher.Config{
		UserAgent:     cfg.UserAgent,
		RespectRobots: cfg.RespectRobots,
		Timeout:       cfg.Timeout.Duration,
	}, log)
	return f, func() {}, nil
}

// Close writes the metrics textfile and releases the browser and database.
func (a *App) Close() error {
	var errs []error
	if err := a.Metrics.WriteTextfile(a.Config.MetricsFile); err != nil {
		errs = append(errs, err)
	}
	a.closeFetcher()
	if err := a.repo.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	_ = a.Log.Sync()
	return errors.Join(errs...)
}

type appKeyType string

const appKey appKeyType = "app"

func resolveApp(ctx context.Context) (*App, error) {
	app, ok := ctx.Value(appKey).(*App)
	if !ok || app == nil {
		return nil, errors.New("application services not initialized")
	}
	return app, nil
}
