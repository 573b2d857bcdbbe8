package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"crisis-quiz-service/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Games       *app.GameService
	Leaderboard *app.LeaderboardService
	Auth        *Authenticator
	Checks      map[string]Checker
	Gatherer    prometheus.Gatherer
	Logger      *slog.Logger
}

// NewRouter builds the chi router with every route mounted.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth(logger, d.Checks))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Crisis Quiz API", "/openapi.json", "/docs"))
	r.Get("/ws/leaderboard", NewWSHandler(d.Leaderboard, logger).ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/scenarios", handleListScenarios(d.Games, logger))
		r.Get("/scenarios/{id}", handleGetScenario(d.Games, logger))

		r.Get("/leaderboard", handleLeaderboard(d.Leaderboard, logger))
		r.Get("/leaderboard/{gameMode}", handleLeaderboard(d.Leaderboard, logger))

		// Every mutating route requires a bearer token.
		r.Group(func(r chi.Router) {
			r.Use(requirePlayer(d.Auth, d.Games, logger))
			r.Post("/games/start", handleStartGame(d.Games, logger))
			r.Get("/games/{id}", handleGetGame(d.Games, logger))
			r.Post("/games/{id}/decision", handleDecision(d.Games, logger))
			r.Post("/games/{id}/end", handleEndGame(d.Games, logger))
			r.Post("/games/{id}/evaluate-policy", handleEvaluatePolicy(d.Games, logger, "id", true))
			r.Post("/ai/evaluate-policy/{gameId}", handleEvaluatePolicy(d.Games, logger, "gameId", false))
			r.Post("/leaderboard", handleLeaderboardSubmit(d.Leaderboard, logger))
		})
	})
	return r
}

type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

func NewServer(addr string, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// Run blocks until the server stops; a graceful Shutdown yields nil.
func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	s.logger.Info("http server listening", "addr", ln.Addr().String())

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func newStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
