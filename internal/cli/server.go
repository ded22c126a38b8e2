package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kifuliiru-quiz-service/internal/app"
	"kifuliiru-quiz-service/internal/auth"
	"kifuliiru-quiz-service/internal/config"
	"kifuliiru-quiz-service/internal/domain"
	"kifuliiru-quiz-service/internal/infra/memory"
	pgstore "kifuliiru-quiz-service/internal/infra/postgres"
	redisstore "kifuliiru-quiz-service/internal/infra/redis"
	"kifuliiru-quiz-service/internal/logger"
	transport "kifuliiru-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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

	log, err := logger.New(cfg.Server.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	rules := cfg.Quiz.Rules()
	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestionSets(rules.QuizType))
	var profiles app.ProfileStore = memory.NewProfileStore(sampleProfiles())
	var attempts app.AttemptStore = memory.NewAttemptStore()
	if pool != nil {
		loader = pgstore.NewQuestionLoader(pool)
		profiles = pgstore.NewProfileStore(pool)
		attempts = pgstore.NewAttemptStore(pool)
	}

	var questions app.QuestionRepository
	if redisClient != nil {
		questions = redisstore.NewQuestionRepository(redisClient, loader, cacheTTL)
	} else {
		questions = memory.NewQuestionRepository(loader, cacheTTL)
	}

	sessions := memory.NewSessionStore()
	schedulers := app.SchedulerFactory(func() app.Scheduler { return app.NewTickerScheduler() })
	service := app.NewQuizService(rules, questions, profiles, attempts, sessions, schedulers, log)
	verifier := auth.NewVerifier(cfg.Auth.Secret)
	wsHandler := transport.NewWSHandler(service, verifier, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz service", "port", finalPort, "quizType", rules.QuizType)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestionSets provides minimal quiz content for redis/postgres-less
// runs; production loads from the quiz_questions table.
func sampleQuestionSets(quizType string) map[string][]domain.Question {
	return map[string][]domain.Question{
		quizType: {
			{
				ID:          "q1",
				Prompt:      "What does the Kifuliiru word \"magambo\" mean?",
				Options:     []string{"Numbers", "Words", "Greetings"},
				Correct:     1,
				Explanation: "\"Magambo\" is the Kifuliiru word for words or sayings; the dictionary's main table carries its name.",
				QuizType:    quizType,
				OrderNumber: 1,
			},
			{
				ID:          "q2",
				Prompt:      "Which language is Kifuliiru most closely related to?",
				Options:     []string{"Swahili", "French", "English"},
				Correct:     0,
				Explanation: "Kifuliiru is a Bantu language of the Kivu region, in the same family as Swahili.",
				QuizType:    quizType,
				OrderNumber: 2,
			},
		},
	}
}

// sampleProfiles seeds one viewer for local demos.
func sampleProfiles() map[string]domain.Profile {
	return map[string]domain.Profile{
		"demo-user": {UserID: "demo-user", Role: domain.RoleViewer},
	}
}
