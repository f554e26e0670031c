package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/blob"
	"github.com/Skotchmaster/storefront/internal/config"
	pkgdb "github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/ratelimit"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/oauth/google"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const maxBodyLimit = "10M"

func main() {
	if err := run(); err != nil {
		log.Fatalf("storefront: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err == nil {
		err = pkgdb.Migrate(ctx, db)
	}
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := pkgdb.Close(db); err != nil {
			logger.Warn("db_close_failed", "error", err)
		}
	}()

	store := repo.New(db)
	hasher := hash.New(cfg.BcryptCost)
	fx := service.SideEffects{Timeout: cfg.SideEffectTimeout}

	tokenSvc := tokens.NewService([]byte(cfg.JWTAccessSecret), []byte(cfg.JWTRefreshSecret), cfg.AccessTTL, cfg.RefreshTTL)
	if cfg.GoogleClientID != "" {
		tokenSvc.RegisterVerifier(google.Provider, google.NewVerifier(cfg.GoogleClientID))
	}

	users := &service.UserService{
		Users:        store,
		Hasher:       hasher,
		Tokens:       tokenSvc,
		Mailer:       notify.LogMailer{Log: logger},
		Events:       service.NoopPublisher,
		Effects:      fx,
		IsAdminEmail: cfg.IsAdminEmail,
	}
	products := &service.ProductService{Products: store, Categories: store, Events: service.NoopPublisher, Effects: fx}
	categories := &service.CategoryService{Categories: store}
	orders := &service.OrderService{Orders: store, Products: store, Events: service.NoopPublisher, Effects: fx, Currency: cfg.Currency}
	files := &service.FileService{MaxBytes: cfg.MaxUploadBytes}

	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()
		users.Events, products.Events, orders.Events = producer, producer, producer
		logger.Info("events_enabled", "brokers", cfg.KafkaBrokers)
	}

	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			return err
		}
		index := search.NewIndex(es, cfg.ESIndex)
		ensureCtx, ensureCancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = index.EnsureIndex(ensureCtx)
		ensureCancel()
		if err != nil {
			return err
		}
		products.Index = index
		logger.Info("search_enabled", "index", cfg.ESIndex)
	}

	if cfg.RabbitURL != "" {
		pub, err := notify.NewPublisher(cfg.RabbitURL, cfg.EmailExchange)
		if err != nil {
			return err
		}
		defer pub.Close()
		users.Mailer = notify.NewQueueMailer(pub, cfg.MailFromName, cfg.MailFromAddr)
		logger.Info("email_queue_enabled", "exchange", cfg.EmailExchange)
	}

	if cfg.StripeSecretKey != "" {
		orders.Payments = payment.NewStripeGateway(cfg.StripeSecretKey, nil)
	}

	if cfg.CloudinaryURL != "" {
		cld, err := blob.NewCloudinaryStore(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		if err != nil {
			return err
		}
		files.Store = cld
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(echomw.Secure())
	e.Use(echomw.BodyLimit(maxBodyLimit))

	httpserver.Register(e, &httpserver.Deps{
		Users:      &httpserver.UserHTTP{Svc: users},
		Products:   &httpserver.ProductHTTP{Svc: products},
		Categories: &httpserver.CategoryHTTP{Svc: categories},
		Orders:     &httpserver.OrderHTTP{Svc: orders},
		Files:      &httpserver.FileHTTP{Svc: files},
		Auth:       auth.New(tokenSvc),
		Redis:      rdb,
		RateLimit:  ratelimit.Config{Prefix: "rl", Max: cfg.RateLimitMax, Window: cfg.RateLimitRange},
		Ready:      readiness(db, rdb),
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutdown_started", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", "error", err)
	}

	logger.Info("server_stopped")
	return nil
}

func readiness(db *gorm.DB, rdb *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := pkgdb.Ping(ctx, db); err != nil {
			return err
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("ping redis: %w", err)
			}
		}
		return nil
	}
}
