package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
	pgloader "trivia-quiz-service/internal/infra/postgres"
	redisinfra "trivia-quiz-service/internal/infra/redis"
	transport "trivia-quiz-service/internal/transport/http"
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

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
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
	}

	var loader memory.SetLoader = memory.NewStaticSetLoader(sampleSets())
	if pool != nil {
		loader = pgloader.NewSetLoader(pool)
	}

	cacheTTL := config.Duration(cfg.Quiz.CacheTTL, 10*time.Minute)
	var setRepo app.QuizSetRepository
	if redisClient != nil {
		setRepo = redisinfra.NewSetRepository(redisClient, loader, cacheTTL)
	} else {
		setRepo = memory.NewSetRepository(loader, cacheTTL)
	}

	var results app.ResultRepository
	var settings app.SettingsRepository
	if redisClient != nil {
		results = redisinfra.NewResultStore(redisClient)
		settings = redisinfra.NewSettingsStore(redisClient)
	} else {
		results = memory.NewResultStore()
		settings = memory.NewSettingsStore()
	}

	questionTime := config.Duration(cfg.Quiz.QuestionTime, 30*time.Second)
	bank := app.NewBank()
	service := app.NewQuizService(bank, setRepo, results, settings, questionTime)

	setName := cfg.Quiz.Set
	if setName == "" {
		setName = "general"
	}
	if err := service.LoadSet(ctx, setName); err != nil {
		log.Printf("quiz set %q unavailable, starting with an empty bank: %v", setName, err)
	}

	wsHandler := transport.NewWSHandler(service)

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
		log.Printf("starting trivia quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleSets seeds a minimal bank when no Postgres is configured.
func sampleSets() map[string]domain.QuizSet {
	return map[string]domain.QuizSet{
		"general": {
			Name: "general",
			Questions: []domain.Question{
				{
					Text:       "What does HTML stand for?",
					Category:   "web",
					Difficulty: domain.DifficultyEasy,
					Answers: []domain.Answer{
						{Text: "Hyper Text Markup Language", Correct: true},
						{Text: "HighText Machine Language"},
						{Text: "Home Tool Markup Language"},
					},
				},
				{
					Text:       "In which year was JavaScript introduced?",
					Category:   "web",
					Difficulty: domain.DifficultyMedium,
					Answers: []domain.Answer{
						{Text: "1993"},
						{Text: "1995", Correct: true},
						{Text: "1997"},
					},
				},
				{
					Text:       "Which planet is known as the Red Planet?",
					Category:   "science",
					Difficulty: domain.DifficultyEasy,
					Answers: []domain.Answer{
						{Text: "Venus"},
						{Text: "Mars", Correct: true},
						{Text: "Jupiter"},
					},
				},
			},
		},
	}
}
