package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/emsops/dispatch-api/internal/config"
	"github.com/emsops/dispatch-api/internal/handler"
	authHandler "github.com/emsops/dispatch-api/internal/handler/auth"
	callHandler "github.com/emsops/dispatch-api/internal/handler/call"
	dashboardHandler "github.com/emsops/dispatch-api/internal/handler/dashboard"
	pcrHandler "github.com/emsops/dispatch-api/internal/handler/pcr"
	sessionHandler "github.com/emsops/dispatch-api/internal/handler/session"
	"github.com/emsops/dispatch-api/internal/middleware"
	"github.com/emsops/dispatch-api/internal/repository/memory"
	"github.com/emsops/dispatch-api/internal/router"
	authService "github.com/emsops/dispatch-api/internal/service/auth"
	callService "github.com/emsops/dispatch-api/internal/service/call"
	pcrService "github.com/emsops/dispatch-api/internal/service/pcr"
	sessionService "github.com/emsops/dispatch-api/internal/service/session"
	"github.com/emsops/dispatch-api/pkg/auth"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize the in-memory store with the reference dataset
	store := memory.NewSeededStore()
	userRepo := memory.NewUserRepository(store)
	callRepo := memory.NewCallRepository(store)
	pcrRepo := memory.NewPCRRepository(store)

	// Initialize services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authSvc := authService.NewService(userRepo, jwtSvc)
	callSvc := callService.NewService(callRepo, userRepo)
	pcrSvc := pcrService.NewService(pcrRepo, callRepo)
	sessionSvc := sessionService.NewService(cfg.Session.TTL(), cfg.Session.CleanupInterval())

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	// Initialize handlers
	h := handler.NewHandler()
	authH := authHandler.NewHandler(authSvc, sessionSvc)
	sessionH := sessionHandler.NewHandler(sessionSvc, callSvc)
	callH := callHandler.NewHandler(callSvc, sessionSvc, authMiddleware)
	pcrH := pcrHandler.NewHandler(pcrSvc, sessionSvc, authMiddleware)
	dashboardH := dashboardHandler.NewHandler(callSvc, userRepo)

	// Setup router
	r := router.NewRouter(
		authMiddleware,
		authH,
		sessionH,
		callH,
		pcrH,
		dashboardH,
		h,
		router.Config{
			RateLimit:     rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:     cfg.RateLimit.Burst,
			Timeout:       cfg.Server.Timeout(),
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "dispatch_api",
		},
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
