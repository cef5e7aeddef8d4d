package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/fannax/external/jobqueue"
	"github.com/riskibarqy/fannax/external/push"
	"github.com/riskibarqy/fannax/external/sportmonks"
	"github.com/riskibarqy/fannax/internal/config"
	"github.com/riskibarqy/fannax/internal/domain/jobscheduler"
	"github.com/riskibarqy/fannax/internal/domain/match"
	"github.com/riskibarqy/fannax/internal/domain/notification"
	"github.com/riskibarqy/fannax/internal/domain/prediction"
	"github.com/riskibarqy/fannax/internal/domain/team"
	"github.com/riskibarqy/fannax/internal/domain/user"
	"github.com/riskibarqy/fannax/internal/infrastructure/account/anubis"
	cacherepo "github.com/riskibarqy/fannax/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/fannax/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fannax/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fannax/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/fannax/internal/platform/cache"
	"github.com/riskibarqy/fannax/internal/platform/id"
	"github.com/riskibarqy/fannax/internal/platform/logging"
	"github.com/riskibarqy/fannax/internal/usecase"
)

// App owns the HTTP server, the optional in-process scheduler and the
// resources both depend on.
type App struct {
	Server    *http.Server
	Scheduler *usecase.JobScheduler

	logger  *logging.Logger
	closers []func() error
}

type repositories struct {
	teams         team.Repository
	matches       match.Repository
	predictions   prediction.Repository
	settler       prediction.Settler
	users         user.Repository
	notifications notification.Repository
	dispatches    jobscheduler.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{logger: logger}
	repos, err := a.buildRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.teams = cacherepo.NewTeamRepository(repos.teams, store)
		repos.users = cacherepo.NewUserRepository(repos.users, store)
	}

	queue, err := buildJobQueue(cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	pushSender, err := buildPushSender(cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	ids := id.NewUUIDGenerator()
	notifications := usecase.NewNotificationService(repos.notifications, pushSender, ids, logger.Named("notification"))
	settlement := usecase.NewSettlementService(
		repos.matches,
		repos.predictions,
		repos.settler,
		notifications,
		usecase.SettlementConfig{Workers: cfg.SettlementWorkers, MaxMatchesPerRun: cfg.SettlementMaxMatchesPerRun},
		logger.Named("settlement"),
	)

	var (
		fixtureSync *usecase.FixtureSyncService
		teamSync    *usecase.TeamSyncService
	)
	if cfg.SportMonksEnabled {
		provider := sportmonks.NewClient(sportmonks.ClientConfig{
			BaseURL:        cfg.SportMonksBaseURL,
			Token:          cfg.SportMonksToken,
			Timeout:        cfg.SportMonksTimeout,
			MaxRetries:     cfg.SportMonksMaxRetries,
			MinInterval:    cfg.SportMonksMinInterval,
			MaxPages:       cfg.SportMonksMaxPages,
			Logger:         logger,
			CircuitBreaker: cfg.SportMonksCircuit,
		})
		registry := usecase.NewTeamRegistry(repos.teams, ids, logger.Named("team_registry"))
		fixtureSync = usecase.NewFixtureSyncService(provider, registry, repos.matches, ids, queue,
			usecase.FixtureSyncConfig{SettleDelay: cfg.QStashSettleDelay}, logger.Named("fixture_sync"))
		teamSync = usecase.NewTeamSyncService(provider, registry,
			usecase.TeamSyncConfig{PerPage: cfg.TeamSyncPerPage, MaxPages: cfg.TeamSyncMaxPages}, logger.Named("team_sync"))
	} else {
		logger.Info("sportmonks disabled", "reason", "SPORTMONKS_ENABLED=false")
	}

	runner := usecase.NewJobRunner(fixtureSync, teamSync, settlement, repos.dispatches, ids, logger.Named("jobs"))
	if cfg.SchedulerEnabled {
		a.Scheduler = usecase.NewJobScheduler(runner, usecase.JobSchedulerConfig{
			SyncInterval:     cfg.SchedulerSyncInterval,
			SyncDays:         cfg.SchedulerSyncDays,
			SettleInterval:   cfg.SchedulerSettleInterval,
			TeamSyncInterval: cfg.SchedulerTeamSyncInterval,
		}, logger.Named("scheduler"))
	}

	verifier := anubis.NewClient(anubis.ClientConfig{
		HTTPClient:     &http.Client{Timeout: cfg.AnubisTimeout},
		BaseURL:        cfg.AnubisBaseURL,
		IntrospectPath: cfg.AnubisIntrospectPath,
		AdminKey:       cfg.AnubisAdminKey,
		CircuitBreaker: cfg.AnubisCircuit,
		CacheTTL:       cfg.AnubisCacheTTL,
	}, logger)

	handler := httpapi.NewHandler(httpapi.Services{
		Matches:       usecase.NewMatchService(repos.matches, repos.teams),
		Teams:         usecase.NewTeamService(repos.teams),
		Predictions:   usecase.NewPredictionService(repos.matches, repos.predictions, repos.users, ids, logger.Named("prediction")),
		Leaderboard:   usecase.NewLeaderboardService(repos.users),
		Notifications: notifications,
		Jobs:          runner,
	}, logger)
	router := httpapi.NewRouter(handler, verifier, logger, httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return a, nil
}

func (a *App) buildRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		a.logger.Warn("using in-memory storage", "reason", "STORAGE_DRIVER=memory")
		store := memory.NewStore()
		return repositories{
			teams:         store.Teams(),
			matches:       store.Matches(),
			predictions:   store.Predictions(),
			settler:       store.Settler(),
			users:         store.Users(),
			notifications: store.Notifications(),
			dispatches:    store.JobDispatches(),
		}, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}
	a.closers = append(a.closers, db.Close)
	a.logger.Info("database connected", "db_name", dbNameFromURL(cfg.DBURL))

	return repositories{
		teams:         postgres.NewTeamRepository(db),
		matches:       postgres.NewMatchRepository(db),
		predictions:   postgres.NewPredictionRepository(db),
		settler:       postgres.NewSettlementRepository(db),
		users:         postgres.NewUserRepository(db),
		notifications: postgres.NewNotificationRepository(db),
		dispatches:    postgres.NewJobDispatchRepository(db),
	}, nil
}

func buildJobQueue(cfg config.Config, logger *logging.Logger) (usecase.JobQueue, error) {
	if !cfg.QStashEnabled {
		return usecase.NewNoopJobQueue(), nil
	}
	publisher, err := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		CircuitBreaker:   cfg.QStashCircuit,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build qstash publisher: %w", err)
	}
	return publisher, nil
}

func buildPushSender(cfg config.Config, logger *logging.Logger) (usecase.PushSender, error) {
	if !cfg.PushEnabled {
		return nil, nil
	}
	sender, err := push.NewWebhookSender(push.WebhookConfig{
		URL:     cfg.PushWebhookURL,
		Token:   cfg.PushToken,
		Timeout: cfg.PushTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build push sender: %w", err)
	}
	return sender, nil
}

// Close releases resources in reverse acquisition order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
