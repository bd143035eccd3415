package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	pgloader "trivia-quiz-service/internal/infra/postgres"
	pgmigrations "trivia-quiz-service/internal/infra/postgres/migrations"
	infraredis "trivia-quiz-service/internal/infra/redis"
)

func TestCompletedRunEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedQuizSet(t, ctx, pgURL, sampleSet())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewSetLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	setRepo := infraredis.NewSetRepository(redisClient, loader, 5*time.Minute)
	results := infraredis.NewResultStore(redisClient)
	settings := infraredis.NewSettingsStore(redisClient)

	bank := app.NewBank()
	service := app.NewQuizService(bank, setRepo, results, settings, time.Minute)

	if err := service.SetPlayerName(ctx, "Alice"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if err := service.LoadSet(ctx, "general"); err != nil {
		t.Fatalf("load set: %v", err)
	}

	session, err := service.NewSession("math", "easy")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer session.Close()

	if got := session.View().Total; got != 1 {
		t.Fatalf("expected 1 question from the seeded set, got %d", got)
	}
	if err := session.SelectAnswer(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if !session.View().Finished {
		t.Fatalf("expected finished run")
	}

	// The completed run must land in the redis-backed stores.
	waitFor(t, func() bool {
		history, err := service.RecentHistory(ctx)
		return err == nil && len(history) == 1
	})
	history, err := service.RecentHistory(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if history[0].Player != "Alice" || history[0].Total != 1 {
		t.Fatalf("unexpected history entry %+v", history[0])
	}

	scores, err := service.TopScores(ctx, "math", domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("top scores: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected one highscore entry, got %d", len(scores))
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedQuizSet(t *testing.T, ctx context.Context, dsn string, set domain.QuizSet) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal quiz set: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO quiz_sets (name, data) VALUES (?, ?::jsonb) ON CONFLICT (name) DO UPDATE SET data=EXCLUDED.data`, set.Name, string(data)); err != nil {
		t.Fatalf("insert quiz set: %v", err)
	}
}

func sampleSet() domain.QuizSet {
	return domain.QuizSet{
		Name: "general",
		Questions: []domain.Question{
			{
				Text: "What is 2 + 2?", Category: "math", Difficulty: domain.DifficultyEasy,
				Answers: []domain.Answer{
					{Text: "3"},
					{Text: "4", Correct: true},
					{Text: "5"},
				},
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
