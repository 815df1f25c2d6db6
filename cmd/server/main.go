// @title        Storefront API
// @version      1.0
// @description  Catalog, checkout, orders and session-based authentication for the storefront.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/rs/zerolog"

	"github.com/artistgrade/storefront/internal/api"
	"github.com/artistgrade/storefront/internal/api/handler"
	"github.com/artistgrade/storefront/internal/api/session"
	"github.com/artistgrade/storefront/internal/core/ports"
	"github.com/artistgrade/storefront/internal/core/service"
	"github.com/artistgrade/storefront/internal/infrastructure/blob"
	mongodb "github.com/artistgrade/storefront/internal/infrastructure/db/mongo"
	redisdb "github.com/artistgrade/storefront/internal/infrastructure/db/redis"
	"github.com/artistgrade/storefront/internal/infrastructure/events"
	"github.com/artistgrade/storefront/internal/infrastructure/mail"
	"github.com/artistgrade/storefront/internal/infrastructure/queue"
	"github.com/artistgrade/storefront/internal/pkg/config"
	"github.com/artistgrade/storefront/pkg/logger"
)

const (
	serviceName     = "storefront"
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.Init(logger.Options{Service: serviceName})
		l.Fatal().Err(err).Msg("load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: serviceName,
		Env:     cfg.Env,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	// --- Data store ---
	mongoClient, db, err := mongodb.Connect(startCtx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
		Timeout:  cfg.RequestTimeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	products := mongodb.NewProductRepository(db)
	users := mongodb.NewUserRepository(db)
	identities := mongodb.NewIdentityRepository(db)
	orders := mongodb.NewOrderRepository(db)
	requests := mongodb.NewCustomRequestRepository(db)
	if err := mongodb.EnsureIndexes(startCtx, products, users, identities, orders); err != nil {
		return err
	}

	// --- Session store ---
	rdb, err := redisdb.Connect(startCtx, redisdb.Config{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		Timeout:    cfg.RequestTimeout,
		PoolSize:   cfg.Redis.PoolSize,
		ClientName: serviceName,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Blob store ---
	blobs, err := blob.NewMinioStore(startCtx, blob.Config{
		Endpoint:  cfg.Blob.Endpoint,
		AccessKey: cfg.Blob.AccessKey,
		SecretKey: cfg.Blob.SecretKey,
		Bucket:    cfg.Blob.Bucket,
		UseSSL:    cfg.Blob.UseSSL,
		PublicURL: cfg.Blob.PublicURL,
		Timeout:   cfg.RequestTimeout,
	}, logger.Component("blob"))
	if err != nil {
		return err
	}

	// --- Notifications ---
	notifier := mail.NewNotifier(mail.Config{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		From:      cfg.SMTP.From,
		TLS:       cfg.SMTP.TLS,
		StoreName: cfg.SMTP.StoreName,
		Timeout:   cfg.Notify.Timeout,
	}, logger.Component("mail"))
	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, notifier, cfg.Notify.Timeout, logger.Component("notifications"))
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()

	// --- Order events ---
	var publisher ports.OrderEventPublisher = events.NopPublisher{}
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger.Component("events"))
		if err != nil {
			return err
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	// --- Services ---
	authService := service.NewAuthService(users, identities, cfg.Password.BcryptCost, cfg.Session.TTL, log)
	if err := authService.EnsureAdmin(startCtx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}
	catalogService := service.NewCatalogService(products, blobs, log)
	orderService := service.NewOrderService(orders, dispatcher, publisher, log)
	userService := service.NewUserService(users, log)
	dashboardService := service.NewDashboardService(products, orders, users)
	requestService := service.NewRequestService(requests, blobs, dispatcher, log)

	// --- Sessions and identity providers ---
	cookies := session.NewCookieStore(cfg.Session.Secret, cfg.Session.Secure, cfg.Session.TTL)
	gothic.Store = cookies
	if cfg.Google.ClientID != "" {
		goth.UseProviders(google.New(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.CallbackURL, "email", "profile"))
	}
	sessions := session.NewManager(redisdb.NewSessionStore(rdb), cookies, cfg.Session.TTL, logger.Component("sessions"))

	e := api.NewRouter(api.Dependencies{
		Auth:      authService,
		Catalog:   catalogService,
		Orders:    orderService,
		Users:     userService,
		Dashboard: dashboardService,
		Requests:  requestService,
		Sessions:  sessions,
		Provider:  handler.NewGothGateway(),
		HealthChecks: map[string]handler.HealthCheck{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   redisdb.HealthCheck(rdb),
			"minio":   blobs.Ping,
		},
	}, api.Options{
		ViewsDir:       cfg.ViewsDir,
		AllowOrigins:   cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	}, log)

	// --- Serve ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	return e.Shutdown(shutdownCtx)
}
