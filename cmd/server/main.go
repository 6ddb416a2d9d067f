package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vedran77/habyx/internal/blob"
	"github.com/vedran77/habyx/internal/cache"
	"github.com/vedran77/habyx/internal/config"
	"github.com/vedran77/habyx/internal/database"
	"github.com/vedran77/habyx/internal/events"
	postgresrepo "github.com/vedran77/habyx/internal/repository/postgres"
	"github.com/vedran77/habyx/internal/service"
	"github.com/vedran77/habyx/internal/telemetry"
	"github.com/vedran77/habyx/internal/transport/http/handlers"
	"github.com/vedran77/habyx/internal/transport/http/middleware"
	"github.com/vedran77/habyx/internal/transport/ws"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telemetry.InitMetrics()
	if cfg.Tracing {
		shutdown, err := telemetry.InitTracer(ctx, "habyx")
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer shutdown(context.Background())
	}

	// Database
	pool, err := database.Connect(ctx, cfg.DatabaseURL())
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}
	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	friendRepo := postgresrepo.NewFriendRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)
	housingRepo := postgresrepo.NewHousingRepo(pool)
	applicationRepo := postgresrepo.NewApplicationRepo(pool)

	// Blob storage
	var blobs service.BlobStore = blob.Disabled{}
	if cfg.AzureConnectionString != "" {
		store, err := blob.NewAzureStore(cfg.AzureConnectionString, cfg.AzureContainer)
		if err != nil {
			return err
		}
		if err := store.EnsureContainer(ctx); err != nil {
			return err
		}
		blobs = store
	} else {
		slog.Warn("AZURE_STORAGE_CONNECTION_STRING not set, profile image uploads disabled")
	}

	// Services
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL)
	authService := service.NewAuthService(userRepo, tokens, cfg.BcryptCost, cfg.RefreshTTL)
	friendService := service.NewFriendService(friendRepo, userRepo)
	imageService := service.NewProfileImageService(userRepo, blobs, cfg.MaxUploadBytes)
	housingService := service.NewHousingService(housingRepo, applicationRepo)
	messageService := service.NewMessageService(messageRepo, userRepo)

	// Cache
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		housingService.SetCache(cache.NewListingCache(rdb, cfg.CacheTTL))
		slog.Info("listing cache enabled", "addr", cfg.RedisAddr)
	}

	// Events
	if cfg.RabbitMQURL != "" {
		publisher := events.NewPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		defer publisher.Close()
		go publisher.Run(ctx)
		friendService.SetPublisher(publisher)
		housingService.SetPublisher(publisher)
		messageService.SetPublisher(publisher)
		slog.Info("event publishing enabled", "exchange", cfg.EventsExchange)
	}

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run(ctx)
	notifier := ws.NewHubNotifier(hub)
	friendService.SetNotifier(notifier)
	housingService.SetNotifier(notifier)
	messageService.SetNotifier(notifier)

	handlers.SetDebug(cfg.Debug)

	// Routes
	api := http.NewServeMux()
	api.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unavailable"}`))
			return
		}
		w.Write([]byte(`{"status": "ok"}`))
	})
	api.Handle("GET /metrics", promhttp.Handler())
	handlers.Routes{
		Auth:         handlers.NewAuthHandler(authService),
		Friends:      handlers.NewFriendHandler(friendService),
		ProfileImage: handlers.NewProfileImageHandler(imageService, cfg.MaxUploadBytes),
		Housing:      handlers.NewHousingHandler(housingService),
		Messages:     handlers.NewMessageHandler(messageService),
	}.Register(api, middleware.Auth(tokens))

	// The socket is long-lived and stays outside the request timeout.
	root := http.NewServeMux()
	root.Handle("GET /ws", ws.ServeWS(hub, tokens))
	root.Handle("/", chimw.Timeout(cfg.RequestTimeout)(
		otelhttp.NewHandler(middleware.Metrics(api), "habyx-api"),
	))

	var handler http.Handler = root
	handler = middleware.CORS(handler)
	handler = middleware.Logger(handler)
	handler = chimw.Recoverer(handler)
	handler = chimw.RealIP(handler)
	handler = chimw.RequestID(handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
