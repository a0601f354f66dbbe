package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"marquee/api"
	"marquee/config"
	"marquee/handlers"
	"marquee/internal/logging"
	"marquee/services/details"
	"marquee/services/homepage"
	"marquee/services/metadata"
	"marquee/services/player"
	"marquee/services/rows"
	"marquee/services/scheduler"
	"marquee/utils"
)

const (
	refreshTaskName   = "homepage-refresh"
	initialBuildLimit = 2 * time.Minute
	shutdownTimeout   = 15 * time.Second
)

func main() {
	var settingsPath string
	flag.StringVar(&settingsPath, "config", "", "path to settings.json (default $MARQUEE_SETTINGS or data/settings.json)")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Printf("[main] failed to load .env: %v", err)
	}
	if settingsPath == "" {
		settingsPath = config.SettingsPath()
	}

	manager := config.NewManager(settingsPath)
	if created, err := manager.EnsureDefaults(); err != nil {
		log.Printf("[main] could not write default settings: %v", err)
	} else if created {
		log.Printf("[main] wrote default settings to %s", manager.Path())
	}
	settings, err := manager.Load()
	if err != nil {
		log.Fatalf("[main] failed to load settings: %v", err)
	}

	logCloser := logging.Setup(settings.Logging)
	defer logCloser.Close()

	log.Printf("[main] marquee %s starting (settings=%s)", handlers.GetVersion(), manager.Path())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog := metadata.NewClient(settings.TMDB, nil)
	if !catalog.IsConfigured() {
		log.Printf("[main] WARNING: no TMDB API key configured; set TMDB_API_KEY or tmdb.apiKey")
	}

	builder := homepage.NewBuilder(catalog, settings.Homepage, nil)
	detailsSvc := details.NewService(catalog)
	players := player.NewRegistry(settings.Sessions.MaxVisitors, settings.Sessions.IdleTimeout())

	rowStore := rows.NewStore(settings.Homepage.VisibleCount, settings.Sessions.IdleTimeout(), settings.Sessions.MaxVisitors)
	go rowStore.Run(ctx)

	limiter := api.NewIPRateLimiter(rate.Limit(settings.RateLimit.PerSecond), settings.RateLimit.Burst)
	go limiter.Run(ctx)

	tasks := scheduler.NewService()
	refresh := scheduler.TaskFunc{
		TaskName: refreshTaskName,
		Fn: func(ctx context.Context) error {
			_, err := builder.Build(ctx)
			return err
		},
	}
	if err := tasks.Register(settings.Homepage.RefreshSchedule, refresh); err != nil {
		log.Fatalf("[main] failed to register homepage refresh: %v", err)
	}
	tasks.Start(ctx)

	buildCtx, cancelBuild := context.WithTimeout(ctx, initialBuildLimit)
	if _, err := builder.Build(buildCtx); err != nil {
		log.Printf("[main] initial homepage build failed, will retry on demand: %v", err)
	}
	cancelBuild()

	home, err := handlers.NewHomeHandler(builder, rowStore, players, detailsSvc, catalog.ImageURL)
	if err != nil {
		log.Fatalf("[main] failed to parse templates: %v", err)
	}

	r := utils.NewRouter(utils.NewOriginPolicy(settings.Server.AllowedOrigins...))
	handlers.Routes{
		Home:        home,
		Rows:        handlers.NewRowsHandler(builder, rowStore),
		Details:     handlers.NewDetailsBundleHandler(detailsSvc),
		Trailers:    handlers.NewTrailersHandler(builder.Prober()),
		Hero:        handlers.NewHeroHandler(builder, players),
		Admin:       handlers.NewAdminHandler(tasks, builder, refreshTaskName),
		Version:     handlers.NewVersionHandler(),
		Static:      handlers.NewStaticHandler(),
		RateLimiter: limiter,
		AdminToken:  settings.Server.AdminToken,
	}.Register(r)

	readTimeout, writeTimeout, idleTimeout := settings.Server.Timeouts()
	srv := &http.Server{
		Addr:              settings.Server.Addr(),
		Handler:           r,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	go func() {
		log.Printf("[main] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[main] listen: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("[main] shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] graceful shutdown failed: %v", err)
		_ = srv.Close()
	}
	tasks.Stop(shutdownCtx)
	log.Println("[main] server stopped")
}
