package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"crisis-quiz-service/internal/ai"
	"crisis-quiz-service/internal/app"
	"crisis-quiz-service/internal/catalog"
	"crisis-quiz-service/internal/config"
	"crisis-quiz-service/internal/infra/memory"
	"crisis-quiz-service/internal/infra/postgres"
	redisstore "crisis-quiz-service/internal/infra/redis"
	"crisis-quiz-service/internal/logging"
	"crisis-quiz-service/internal/metrics"
	transport "crisis-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret (JWT_SECRET) must be set")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	checks := map[string]transport.Checker{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		checks["redis"] = transport.CheckFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		checks["postgres"] = transport.CheckFunc(pool.Ping)
	}

	st := buildStores(cfg, redisClient, pool)
	logger.Info("storage selected",
		"scenarios", st.scenarioBackend,
		"sessions", st.sessionBackend,
		"leaderboard", st.leaderboardBackend,
	)

	board := app.NewLeaderboardService(st.leaderboard, logger)
	aiService := ai.NewService(cfg.AI, logger)
	games := app.NewGameService(
		st.scenarios,
		st.sessions,
		st.users,
		board,
		aiService,
		aiService,
		app.WithLogger(logger),
		app.WithMetrics(m),
		app.WithQuestionCount(cfg.AI.QuestionCount),
	)

	handler := transport.NewRouter(transport.Deps{
		Games:       games,
		Leaderboard: board,
		Auth:        transport.NewAuthenticator(cfg.Auth.JWTSecret),
		Checks:      checks,
		Gatherer:    reg,
		Logger:      logger,
	})

	addr := ":" + listenPort(portFlag, cfg.Server.Port)
	server := transport.NewServer(addr, handler, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		return server.Shutdown(context.Background())
	})
	return g.Wait()
}

type stores struct {
	scenarios   app.ScenarioRepository
	sessions    app.SessionRepository
	users       app.UserRepository
	leaderboard app.LeaderboardRepository

	scenarioBackend    string
	sessionBackend     string
	leaderboardBackend string
}

// buildStores prefers Postgres for durable records and Redis for caches and
// sessions, falling back to in-process stores when neither is configured.
func buildStores(cfg config.Config, redisClient *redis.Client, pool *pgxpool.Pool) stores {
	var s stores

	var loader app.ScenarioLoader = memory.NewStaticScenarioLoader(catalog.Scenarios())
	if pool != nil {
		loader = postgres.NewScenarioLoader(pool)
	}
	scenarioTTL := config.TTLDuration(cfg.Scenarios.TTL, 10*time.Minute)
	if redisClient != nil {
		s.scenarios, s.scenarioBackend = redisstore.NewScenarioRepository(redisClient, loader, scenarioTTL), "redis"
	} else {
		s.scenarios, s.scenarioBackend = memory.NewScenarioRepository(loader, scenarioTTL), "memory"
	}

	switch {
	case pool != nil:
		s.sessions, s.sessionBackend = postgres.NewSessionStore(pool), "postgres"
	case redisClient != nil:
		sessionTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)
		s.sessions, s.sessionBackend = redisstore.NewSessionStore(redisClient, sessionTTL), "redis"
	default:
		s.sessions, s.sessionBackend = memory.NewSessionStore(), "memory"
	}

	if pool != nil {
		s.users = postgres.NewUserStore(pool)
	} else {
		s.users = memory.NewUserStore()
	}

	switch {
	case pool != nil:
		s.leaderboard, s.leaderboardBackend = postgres.NewLeaderboardStore(pool), "postgres"
	case redisClient != nil:
		s.leaderboard, s.leaderboardBackend = redisstore.NewLeaderboardStore(redisClient), "redis"
	default:
		s.leaderboard, s.leaderboardBackend = memory.NewLeaderboardStore(), "memory"
	}
	return s
}

func listenPort(flag, configured string) string {
	if flag != "" {
		return flag
	}
	if configured != "" {
		return configured
	}
	return "8080"
}
