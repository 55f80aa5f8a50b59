package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/pos-register/internal/cfg"
	v1Http "github.com/DRSN-tech/pos-register/internal/delivery/v1/http"
	"github.com/DRSN-tech/pos-register/internal/infrastructure/kafka"
	"github.com/DRSN-tech/pos-register/internal/infrastructure/render"
	"github.com/DRSN-tech/pos-register/internal/repository/pgdb"
	"github.com/DRSN-tech/pos-register/internal/repository/redis"
	"github.com/DRSN-tech/pos-register/internal/usecase"
	"github.com/DRSN-tech/pos-register/pkg/clients"
	"github.com/DRSN-tech/pos-register/pkg/closer"
	"github.com/DRSN-tech/pos-register/pkg/e"
	"github.com/DRSN-tech/pos-register/pkg/logger"
	"github.com/DRSN-tech/pos-register/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"golang.org/x/sync/errgroup"
)

const (
	initTimeout    = 30 * time.Second
	redisPingTries = 5
)

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	httpSrv *v1Http.Server
	closer  *closer.Closer
}

// NewApp поднимает хранилище, витрины и HTTP-сервер. Уже открытые ресурсы
// закрываются, если инициализация прервалась.
func NewApp(cfg *config.Config, logger logger.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	cl := closer.New()

	app, err := build(ctx, cfg, logger, cl)
	if err != nil {
		if closeErr := cl.Close(ctx); closeErr != nil {
			logger.Warnf("failed to release resources after init error: %v", closeErr)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return app, nil
}

func build(ctx context.Context, cfg *config.Config, logger logger.Logger, cl *closer.Closer) (*App, error) {
	kv, err := initStorage(ctx, cfg, logger, cl)
	if err != nil {
		return nil, err
	}

	sinks := []usecase.RenderSink{render.NewLogSink(logger)}
	if cfg.Kafka != nil {
		publisher := kafka.NewViewPublisher(cfg.Kafka, cfg.Register.Session, logger)
		cl.Add("kafka", func(context.Context) error { return publisher.Close() })
		sinks = append(sinks, publisher)
		logger.Infof("customer display enabled, topic %s", cfg.Kafka.Topic)
	}

	registerUC := usecase.NewRegisterUC(kv, render.NewMultiSink(sinks...), cfg.Register.Seed, logger)
	if _, err := registerUC.Init(ctx); err != nil {
		logger.Errorf(err, "failed to initialize register state")
		return nil, err
	}

	r := chi.NewRouter()
	v1Http.NewRouter(r, logger, cfg.Http.RateLimit, cfg.Http.TrustProxy).Init(registerUC)

	return &App{
		cfg:     cfg,
		logger:  logger,
		httpSrv: v1Http.NewServer(r, cfg.Http),
		closer:  cl,
	}, nil
}

func initStorage(ctx context.Context, cfg *config.Config, logger logger.Logger, cl *closer.Closer) (usecase.KVStore, error) {
	switch cfg.Register.Storage {
	case config.StoragePostgres:
		db, err := initPGDB(ctx, logger, cfg)
		if err != nil {
			return nil, err
		}
		cl.AddFunc("postgres", db.Close)
		logger.Infof("register state stored in postgres, session %s", cfg.Register.Session)

		return pgdb.NewKVRepo(db.Pool, cfg.Register.Session), nil
	default:
		redisClient := clients.NewRedisClient(cfg.Redis)
		cl.Add("redis", func(context.Context) error { return redisClient.Close() })

		if err := redisClient.PingWithRetry(ctx, redisPingTries, logger); err != nil {
			logger.Errorf(err, "failed to connect to redis")
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		logger.Infof("register state stored in redis, session %s", cfg.Register.Session)

		return redis.NewKVRepo(redisClient, cfg.Register.Session, logger), nil
	}
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		db.Close()
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}

// Run обслуживает HTTP до сигнала остановки или ошибки сервера.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.closer.Add("http", a.httpSrv.Stop)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Infof("HTTP server listening on %s", a.httpSrv.Addr())
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed")
			return e.Wrap(whereami.WhereAmI(), err)
		}
		return nil
	})

	// === Graceful shutdown ===
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Infof("Stopping gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		if err := a.closer.Close(shutdownCtx); err != nil {
			a.logger.Errorf(err, "shutdown finished with errors")
			return e.Wrap(whereami.WhereAmI(), err)
		}
		return nil
	})

	err := g.Wait()
	a.logger.Infof("Application shutdown complete")
	return err
}
