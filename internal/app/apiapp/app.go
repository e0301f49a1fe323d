package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivankudzin/storefront/internal/config"
	"github.com/ivankudzin/storefront/internal/infra/httpclient"
	s3infra "github.com/ivankudzin/storefront/internal/infra/s3"
	"github.com/ivankudzin/storefront/internal/jobs/refresh"
	"github.com/ivankudzin/storefront/internal/remote"
	redrepo "github.com/ivankudzin/storefront/internal/repo/redis"
	authsvc "github.com/ivankudzin/storefront/internal/services/auth"
	catalogsvc "github.com/ivankudzin/storefront/internal/services/catalog"
	lifecyclesvc "github.com/ivankudzin/storefront/internal/services/lifecycle"
	productsvc "github.com/ivankudzin/storefront/internal/services/products"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	redis      *goredis.Client
	s3         *minio.Client
	refreshJob *refresh.Job
	stopJob    context.CancelFunc
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	cacheRepo := redrepo.NewCacheRepo(redisClient)
	visibilityRepo := redrepo.NewVisibilityRepo(redisClient)

	storeClient := remote.NewClient(cfg.Store.BaseURL, httpclient.New(cfg.Store.Timeout.Std()))

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL.Std())
	authService := authsvc.NewService(jwtManager, sessionRepo, storeClient, authsvc.Config{
		RefreshTTL:   cfg.Auth.RefreshTTL.Std(),
		AllowedUsers: cfg.Shop.AllowedUsers,
	})

	catalogService := catalogsvc.NewService(storeClient, cacheRepo, visibilityRepo, catalogsvc.Config{
		TTL: cfg.Cache.TTL.Std(),
	}, log)

	lifecycleService := lifecyclesvc.NewService(lifecyclesvc.Dependencies{
		Store:      storeClient,
		Caches:     catalogService,
		Visibility: visibilityRepo,
		Logger:     log,
	}, lifecyclesvc.Config{
		SettleDelay: cfg.Cache.SettleDelay.Std(),
	})

	productService := productsvc.NewService(storeClient, catalogService, productsvc.Config{
		MaxImageBytes: cfg.Shop.MaxImageBytes,
	}, log)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing without image archive", zap.Error(err))
	} else {
		s3Client = c
		productService.AttachArchive(productsvc.NewS3Archive(s3Client, cfg.S3.Bucket))
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout.Std(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Std(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Std(),
	}

	RegisterRoutes(r, Dependencies{
		AuthService:      authService,
		CatalogService:   catalogService,
		LifecycleService: lifecycleService,
		ProductService:   productService,
		Logger:           log,
		Config:           cfg,
	})

	refreshJob := refresh.New(catalogService, cfg.Cache.RefreshInterval.Std(), log)

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		redis:      redisClient,
		s3:         s3Client,
		refreshJob: refreshJob,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	jobCtx, cancel := context.WithCancel(context.Background())
	a.stopJob = cancel
	go a.refreshJob.Run(jobCtx)

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if a.stopJob != nil {
		a.stopJob()
	}
	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
