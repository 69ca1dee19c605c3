package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"exquisitos/internal/api/handlers/http/auth"
	"exquisitos/internal/api/handlers/http/public"
	"exquisitos/internal/api/handlers/http/system"
	"exquisitos/internal/config"
	"exquisitos/internal/middleware"
	"exquisitos/internal/service"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

func NewServer(cfg *config.Config, logger *slog.Logger, svc *service.Service) *Server {
	authHandler := auth.NewHandler(logger, svc.AuthService)
	publicHandler := public.NewHandler(logger, svc.PlaceService, svc.ReviewService)
	systemHandler := system.NewHandler(logger)

	r := InitRouter(cfg, authHandler, publicHandler, systemHandler, logger)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func InitRouter(cfg *config.Config, authHandler *auth.Handler, publicHandler *public.Handler, systemHandler *system.Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewMux()

	// RequestID first so it lands in the chi.Logger line.
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	r.Route("/api/v1", func(api chi.Router) {
		// AUTH
		api.Route("/auth", func(ar chi.Router) {
			ar.Use(middleware.Limit(5, 10, 10*time.Minute, logger))

			ar.Post("/register", authHandler.Register)
			ar.Post("/login", authHandler.Login)
			ar.Post("/google", authHandler.GoogleLogin)
			ar.Post("/forgot-password", authHandler.ForgotPassword)
			ar.Post("/reset-password", authHandler.ResetPassword)
		})

		// USERS
		api.Route("/users", func(ur chi.Router) {
			ur.Use(middleware.Limit(10, 20, 5*time.Minute, logger))
			ur.Use(middleware.RequireAuth(cfg.Auth.JWTSecret, logger))

			ur.Put("/me", authHandler.UpdateProfile)
		})

		// PLACES
		api.Route("/places", func(pr chi.Router) {
			pr.Use(middleware.Limit(10, 20, 5*time.Minute, logger))

			pr.Get("/", publicHandler.PlaceList)

			pr.Group(func(gr chi.Router) {
				gr.Use(middleware.RequireAuth(cfg.Auth.JWTSecret, logger))
				gr.Post("/", publicHandler.PlaceCreate)
			})

			pr.Route("/{id}", func(rr chi.Router) {
				rr.Get("/", publicHandler.PlaceGet)

				rr.Group(func(gr chi.Router) {
					gr.Use(middleware.RequireAuth(cfg.Auth.JWTSecret, logger))
					gr.Post("/visits", publicHandler.VisitRegister)
				})
			})
		})

		// REVIEWS
		api.Route("/reviews", func(rr chi.Router) {
			rr.Use(middleware.Limit(10, 20, 5*time.Minute, logger))
			rr.Use(middleware.RequireAuth(cfg.Auth.JWTSecret, logger))

			rr.Post("/", publicHandler.ReviewCreate)
			rr.Post("/{id}/like", publicHandler.ReviewLike)
		})

		// SYSTEM
		api.Get("/health", systemHandler.SystemHealth)
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Http.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Http.ReadTimeout,
		WriteTimeout: s.cfg.Http.WriteTimeout,
		IdleTimeout:  30 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("Starting HTTP server",
			slog.String("addr", srv.Addr),
			slog.Duration("read_timeout", s.cfg.Http.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.Http.WriteTimeout),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ListenAndServe error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server shutdown failed", slog.Any("error", err))
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}
