package main

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/appointment-scheduler/internal/config"
	"github.com/jwalitptl/appointment-scheduler/internal/handler"
	"github.com/jwalitptl/appointment-scheduler/internal/handler/appointment"
	"github.com/jwalitptl/appointment-scheduler/internal/handler/health"
	webHandler "github.com/jwalitptl/appointment-scheduler/internal/handler/web"
	"github.com/jwalitptl/appointment-scheduler/internal/middleware"
	"github.com/jwalitptl/appointment-scheduler/internal/router"
	appointmentService "github.com/jwalitptl/appointment-scheduler/internal/service/appointment"
	"github.com/jwalitptl/appointment-scheduler/pkg/logger"
	"github.com/jwalitptl/appointment-scheduler/pkg/metrics"
	"github.com/jwalitptl/appointment-scheduler/web"
)

const appTitle = "Appointment Scheduler"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(logger.Config{
		Level: cfg.Log.Level,
		JSON:  cfg.IsProduction(),
	})

	m := metrics.NewMetrics("appointment_scheduler")

	// Initialize the store
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	repo, err := openRepository(connectCtx, cfg, m)
	cancelConnect()
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to connect to database")
	}

	// Initialize handlers
	templates, err := web.Templates()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse templates")
	}

	appointmentSvc := appointmentService.NewService(repo)
	handlers := router.Handlers{
		Appointments: appointment.NewHandler(appointmentSvc),
		Health:       health.NewHandler(repo),
		Web:          webHandler.NewHandler(appTitle, web.Static()),
	}
	if cfg.Monitoring.Enabled {
		handlers.Ops = handler.NewHandler(m.Registry)
	}

	r := router.NewRouter(routerConfig(cfg, templates), m, handlers)
	r.Setup()

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("env", cfg.Env).
			Str("driver", cfg.Database.Driver).
			Str("cache", cfg.Cache.Driver).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := repo.Close(ctx); err != nil {
		log.Error().Err(err).Msg("failed to close store")
	}

	log.Info().Msg("server exited properly")
}

func routerConfig(cfg *config.Config, templates *template.Template) router.RouterConfig {
	security := middleware.DefaultSecurityConfig()
	security.HSTS = cfg.Security.HSTS

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.Security.AllowedOrigins
	}

	rc := router.RouterConfig{
		Production: cfg.IsProduction(),
		CORSConfig: cors,
		Security:   security,
		SizeLimit:  middleware.SizeLimitConfig{MaxBodySize: cfg.Server.MaxBodyBytes},
		Templates:  templates,
	}
	if cfg.Monitoring.Enabled {
		rc.MetricsPath = cfg.Monitoring.MetricsPath
	}
	if cfg.RateLimit.Enabled {
		rc.RateLimit = &middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		}
	}
	return rc
}
