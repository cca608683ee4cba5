package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/charmcart-backend/api/controllers"
	"github.com/angelmondragon/charmcart-backend/api/routes"
	"github.com/angelmondragon/charmcart-backend/internal/cart"
	"github.com/angelmondragon/charmcart-backend/internal/cron"
	"github.com/angelmondragon/charmcart-backend/internal/design"
	"github.com/angelmondragon/charmcart-backend/internal/events"
	"github.com/angelmondragon/charmcart-backend/internal/inventory"
	"github.com/angelmondragon/charmcart-backend/internal/persistence"
	"github.com/angelmondragon/charmcart-backend/internal/session"
	"github.com/angelmondragon/charmcart-backend/pkg/config"
	"github.com/angelmondragon/charmcart-backend/pkg/db"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
	"github.com/angelmondragon/charmcart-backend/pkg/metrics"
	"github.com/angelmondragon/charmcart-backend/pkg/migrate"
	"github.com/angelmondragon/charmcart-backend/pkg/pubsub"
	"github.com/angelmondragon/charmcart-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = db.DriverSQLite
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cartMetrics := metrics.NewCartMetrics(reg)

	ready := map[string]controllers.Pinger{"db": dbClient}

	var guestStore cart.PersistenceGateway
	if cfg.FeatureFlags.UseMemoryStore {
		guestStore = persistence.NewMemoryStore()
	} else {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		guestStore, err = persistence.NewRedisStore(redisClient, cfg.Persistence.GuestTTL)
		requireResource(ctx, logg, "guest cart store", err)
		ready["redis"] = redisClient
	}

	gateway, err := persistence.NewRouter(guestStore, persistence.NewDurableStore(dbClient.DB()))
	requireResource(ctx, logg, "persistence router", err)

	oracle := inventory.NewCachedOracle(inventory.NewRepository(dbClient.DB()), cfg.Inventory.CacheTTL)

	var attach []session.AttachFunc
	if cfg.FeatureFlags.ForwardEvents {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		requireResource(ctx, logg, "pubsub", err)
		defer func() {
			if err := psClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		forwarder, err := events.NewForwarder(psClient.CartEventsPublisher(), logg)
		requireResource(ctx, logg, "event forwarder", err)
		attach = append(attach, forwarder.Attach)
		ready["pubsub"] = psClient
	}

	sessions, err := session.NewManager(session.Params{
		Cart:    cart.ConfigFrom(cfg.Cart, cfg.Persistence),
		History: design.HistoryConfig{MaxEntries: cfg.History.MaxEntries, PositionTolerance: cfg.History.PositionTolerance, RotationTolerance: cfg.History.RotationTolerance},
		Oracle:  oracle,
		Gateway: gateway,
		Logger:  logg,
		Metrics: cartMetrics,
		Attach:  attach,
		IdleTTL: cfg.Persistence.SessionIdleTTL,
	})
	requireResource(ctx, logg, "session manager", err)

	maintenance, err := newMaintenance(cfg, logg, sessions, reg)
	requireResource(ctx, logg, "maintenance service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:   cfg,
			Logger:   logg,
			Sessions: sessions,
			Gatherer: reg,
			Ready:    ready,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logg.Info(gctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		if err := maintenance.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		logg.Info(shutdownCtx, "api server shutting down")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "http shutdown failed", err)
		}
		if err := sessions.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "flushing sessions on shutdown failed", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func newMaintenance(cfg *config.Config, logg *logger.Logger, sessions *session.Manager, reg prometheus.Registerer) (*cron.Service, error) {
	flush, err := cron.NewCartFlushJob(logg, sessions)
	if err != nil {
		return nil, err
	}
	evict, err := cron.NewSessionEvictJob(logg, sessions)
	if err != nil {
		return nil, err
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(flush, evict),
		Metrics:  metrics.NewCronJobMetrics(reg),
		Interval: cfg.Persistence.FlushInterval,
	})
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to bootstrap "+resource, err)
	os.Exit(1)
}
