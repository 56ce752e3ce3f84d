// Package app собирает зависимости сервиса рекомендаций и управляет их жизненным циклом.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	config "github.com/smart-procure/go-backend/internal/cfg"
	v1Http "github.com/smart-procure/go-backend/internal/delivery/v1/http"
	"github.com/smart-procure/go-backend/internal/infrastructure/embedding"
	"github.com/smart-procure/go-backend/internal/infrastructure/indexworker"
	"github.com/smart-procure/go-backend/internal/infrastructure/kafka"
	"github.com/smart-procure/go-backend/internal/repository/pgdb"
	pgdbConv "github.com/smart-procure/go-backend/internal/repository/pgdb/converter"
	qdrantRepo "github.com/smart-procure/go-backend/internal/repository/qdrant"
	"github.com/smart-procure/go-backend/internal/repository/redis"
	redisConv "github.com/smart-procure/go-backend/internal/repository/redis/converter"
	"github.com/smart-procure/go-backend/internal/usecase"
	"github.com/smart-procure/go-backend/pkg/clients"
	"github.com/smart-procure/go-backend/pkg/closer"
	"github.com/smart-procure/go-backend/pkg/e"
	"github.com/smart-procure/go-backend/pkg/logger"
	"github.com/smart-procure/go-backend/pkg/postgres"
)

type App struct {
	cfg    *config.Config
	logger logger.Logger

	worker  *indexworker.Worker
	httpSrv *v1Http.Server
	closer  *closer.Closer
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	cl := closer.NewCloser(2 * time.Second)

	db, err := initPGDB(log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(_ context.Context) error {
		db.Close()
		return nil
	})

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(_ context.Context) error {
		return redisClient.Client.Close()
	})

	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	qdrantCtx, qdrantCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer qdrantCancel()
	if err := clients.EnsureCollection(qdrantCtx, qdrantClient); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(_ context.Context) error {
		return qdrantClient.Client.Close()
	})

	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(_ context.Context) error {
		return producer.Close()
	})

	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.NewProductConverterImpl())
	supplierRepo := pgdb.NewSupplierRepo(db.Pool, pgdbConv.NewSupplierConverterImpl())
	reindexRepo := pgdb.NewReindexEventRepo(db.Pool, pgdbConv.NewReindexEventConverterImpl())
	embeddingRepo := qdrantRepo.NewEmbeddingRepo(qdrantClient.Client, cfg.Qdrant)
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.NewSupplierInfoConverterImpl(), cfg.Redis, log)

	provider := embedding.NewClient(cfg.Embedding, log)

	indexUC := usecase.NewIndexUC(productRepo, embeddingRepo, provider, producer,
		cfg.Embedding, cfg.Qdrant.QdrantCollectionName, log)
	searchUC := usecase.NewSearchUC(provider, embeddingRepo, cfg.Recommend, log)
	recommendUC := usecase.NewRecommendUC(searchUC, productRepo, supplierRepo, cacheRepo, cfg.Recommend, log)
	catalogUC := usecase.NewCatalogUC(productRepo, supplierRepo, db.Pool, indexUC, reindexRepo, cacheRepo, log)

	worker := indexworker.NewWorker(reindexRepo, productRepo, indexUC, cfg.Indexer, log)
	cl.Add(func(_ context.Context) error {
		worker.Stop()
		return nil
	})

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(recommendUC, catalogUC, indexUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)
	cl.Add(func(ctx context.Context) error {
		return httpSrv.Stop(ctx)
	})

	return &App{
		cfg:     cfg,
		logger:  log,
		worker:  worker,
		httpSrv: httpSrv,
		closer:  cl,
	}, nil
}

// Run блокируется до сигнала завершения или фатальной ошибки сервера.
func (a *App) Run() error {
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	a.worker.Start(workerCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("shutdown finished with errors: %v", err)
	} else {
		a.logger.Infof("Application shutdown complete")
	}

	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
