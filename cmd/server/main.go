package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/momentumgaming/backend/internal/changefeed"
	"github.com/momentumgaming/backend/internal/config"
	"github.com/momentumgaming/backend/internal/content"
	"github.com/momentumgaming/backend/internal/handler"
	"github.com/momentumgaming/backend/internal/inbox"
	"github.com/momentumgaming/backend/internal/logging"
	"github.com/momentumgaming/backend/internal/metrics"
	"github.com/momentumgaming/backend/internal/remotestore"
	"github.com/momentumgaming/backend/internal/repository"
	"github.com/momentumgaming/backend/internal/service"
	"github.com/momentumgaming/backend/internal/storage"
)

const (
	shutdownTimeout     = 5 * time.Second
	sessionPurgeEvery   = time.Hour
	httpReadTimeout     = 10 * time.Second
	httpWriteTimeout    = 10 * time.Second
	httpIdleConnTimeout = 60 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "server"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	feed, closeFeed, err := openFeed(ctx, cfg, pool)
	if err != nil {
		logging.Fatal("failed to open change feed", "feed", cfg.ChangeFeed, "error", err)
	}
	defer closeFeed()

	store, err := remotestore.Open(ctx, remotestore.DriverPostgres, cfg.DatabaseURL, remotestore.WithFeed(feed))
	if err != nil {
		logging.Fatal("failed to open remote store", "error", err)
	}
	defer store.Close()

	catalog, err := content.Load(cfg.ContentPath)
	if err != nil {
		logging.Fatal("failed to load content catalog", "path", cfg.ContentPath, "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	inboxMetrics := metrics.NewInbox(reg)
	siteMetrics := metrics.NewSite(reg)

	adminRepo := repository.NewPgAdminRepository(pool)
	projectRepo := repository.NewPgProjectRepository(pool)
	sessionRepo := repository.NewPgSessionRepository(pool)
	submissions := repository.NewStoreSubmissionRepository(store)

	sessionService := service.NewSessionService(sessionRepo)
	authService := service.NewAuthService(adminRepo, sessionService)
	projectService := service.NewProjectService(projectRepo)
	contactService := service.NewContactService(submissions, siteMetrics)
	dashboardService := service.NewDashboardService(pool, projectRepo, submissions)

	inboxes := inbox.NewManager(submissions, submissions, sessionService,
		inbox.WithLogger(slog.Default()),
		inbox.WithMetrics(inboxMetrics),
		inbox.WithGracePeriod(cfg.Inbox.GracePeriod),
		inbox.WithConfirmationTTL(cfg.Inbox.ConfirmationTTL),
		inbox.WithIdleTimeout(cfg.Inbox.IdleTimeout),
		inbox.WithSweepInterval(cfg.Inbox.SweepInterval),
	)

	limiter := handler.NewRateLimiter(cfg.ContactRateLimit, handler.WithTrustedProxies(1))
	defer limiter.Close()

	banners := storage.NewLocalStorage(cfg.UploadDir, "/uploads")

	secureCookie := strings.HasPrefix(cfg.FrontendURL, "https://")
	routes := handler.Routes{
		Base:           handler.New(pool, cfg.FrontendURL),
		Auth:           handler.NewAuthHandler(authService, sessionService, secureCookie),
		Contact:        handler.NewContactHandler(contactService),
		Content:        handler.NewContentHandler(content.NewService(catalog)),
		Projects:       handler.NewProjectHandler(projectService, handler.WithBannerStorage(banners)),
		Dashboard:      handler.NewDashboardHandler(dashboardService),
		Inbox:          handler.NewInboxHandler(inboxes),
		Me:             handler.NewMeHandler(adminRepo),
		Banners:        handler.NewBannerHandler(banners, projectService, projectRepo),
		Uploads:        http.FileServer(http.Dir(banners.BaseDir())),
		Sessions:       sessionService,
		AuthRequired:   cfg.AuthRequired,
		ContactLimiter: limiter,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}
	if !cfg.AuthRequired {
		slog.Warn("AUTH_REQUIRED=false: admin routes are open")
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      routes.Router(),
		ReadTimeout:  httpReadTimeout,
		WriteTimeout: httpWriteTimeout,
		IdleTimeout:  httpIdleConnTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", server.Addr, "change_feed", cfg.ChangeFeed)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return inboxes.Run(gctx)
	})
	g.Go(func() error {
		purgeSessions(gctx, sessionService)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		// 保留中の削除はここで確定する
		inboxes.Shutdown(shutdownCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		logging.Fatal("server stopped", "error", err)
	}
}

// openFeed selects the change feed backend named by CHANGE_FEED.
func openFeed(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (changefeed.Feed, func(), error) {
	switch cfg.ChangeFeed {
	case config.FeedMemory:
		hub := changefeed.NewHub()
		return hub, hub.Close, nil
	case config.FeedRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return changefeed.NewRedis(client), func() { _ = client.Close() }, nil
	case config.FeedPostgres:
		return changefeed.NewPostgres(pool), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown change feed %q", cfg.ChangeFeed)
}

func purgeSessions(ctx context.Context, sessions *service.SessionService) {
	ticker := time.NewTicker(sessionPurgeEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sessions.PurgeExpired(ctx); err != nil {
				slog.Warn("session purge failed", "error", err)
			}
		}
	}
}
