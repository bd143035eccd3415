package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

func testService(t *testing.T) *app.QuizService {
	t.Helper()
	bank := app.NewBank()
	sets := memory.NewSetRepository(memory.NewStaticSetLoader(map[string]domain.QuizSet{
		"general": {
			Name: "general",
			Questions: []domain.Question{
				{
					Text: "q1", Category: "math", Difficulty: domain.DifficultyEasy,
					Answers: []domain.Answer{{Text: "a", Correct: true}, {Text: "b"}},
				},
				{
					Text: "q2", Category: "science", Difficulty: domain.DifficultyHard,
					Answers: []domain.Answer{{Text: "a"}, {Text: "b", Correct: true}},
				},
			},
		},
	}), 5*time.Minute)
	service := app.NewQuizService(bank, sets, memory.NewResultStore(), memory.NewSettingsStore(), time.Minute)
	if err := service.LoadSet(context.Background(), "general"); err != nil {
		t.Fatalf("load set: %v", err)
	}
	return service
}

func TestSessionRunRecordsOneEntry(t *testing.T) {
	ctx := context.Background()
	service := testService(t)
	if err := service.SetPlayerName(ctx, "Alice"); err != nil {
		t.Fatalf("set name: %v", err)
	}

	session, err := service.NewSession("math", "easy")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer session.Close()

	view := session.View()
	if view.Total != 1 {
		t.Fatalf("expected a 1-question play set, got %d", view.Total)
	}

	if err := session.SelectAnswer(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if !session.View().Finished {
		t.Fatalf("expected run finished")
	}

	history, err := service.RecentHistory(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected exactly one recorded run, got %d", len(history))
	}
	entry := history[0]
	if entry.Player != "Alice" || entry.Total != 1 || entry.Category != "math" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.Percent != domain.Percent(entry.Score, entry.Total) {
		t.Fatalf("percent %d inconsistent with %d/%d", entry.Percent, entry.Score, entry.Total)
	}

	scores, err := service.TopScores(ctx, "math", domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("top scores: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected entry in the math/easy table, got %d", len(scores))
	}
}

func TestChangeFilterDiscardsRun(t *testing.T) {
	service := testService(t)

	session, err := service.NewSession("any", "any")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer session.Close()

	if err := session.SelectAnswer(0); err != nil {
		t.Fatalf("select: %v", err)
	}

	if err := session.ChangeFilter("science", "hard"); err != nil {
		t.Fatalf("change filter: %v", err)
	}
	view := session.View()
	if view.Index != 0 || view.Score != 0 || view.Answered {
		t.Fatalf("filter change kept old run state: %+v", view)
	}
	if len(session.Summary()) != 0 {
		t.Fatalf("filter change kept old summary")
	}
	if cat, diff := session.Filters(); cat != "science" || diff != domain.DifficultyHard {
		t.Fatalf("filters not applied: %s/%s", cat, diff)
	}
}

func TestChangeFilterRejectsUnknownDifficulty(t *testing.T) {
	service := testService(t)
	session, err := service.NewSession("any", "any")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer session.Close()

	if err := session.ChangeFilter("math", "nightmare"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if cat, _ := session.Filters(); cat != "any" {
		t.Fatalf("rejected filter change still applied")
	}
}

func TestRestartRebuildsSameFilters(t *testing.T) {
	service := testService(t)
	session, err := service.NewSession("math", "easy")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer session.Close()

	if err := session.SelectAnswer(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	session.Restart()

	view := session.View()
	if view.Index != 0 || view.Score != 0 || view.Total != 1 {
		t.Fatalf("restart did not rebuild: %+v", view)
	}
}

func TestEmptyFilterYieldsIdleSession(t *testing.T) {
	service := testService(t)
	session, err := service.NewSession("geography", "easy")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer session.Close()

	view := session.View()
	if view.State != "idle" || view.Total != 0 {
		t.Fatalf("expected idle session for empty filter result, got %+v", view)
	}

	// Nothing to play means nothing is ever recorded.
	history, _ := service.RecentHistory(context.Background())
	if len(history) != 0 {
		t.Fatalf("idle session recorded a run")
	}
}

func TestSubscribeReceivesTransitions(t *testing.T) {
	service := testService(t)
	session, err := service.NewSession("math", "easy")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer session.Close()

	ch, cancel := session.Subscribe()
	defer cancel()

	<-ch // initial snapshot

	if err := session.SelectAnswer(0); err != nil {
		t.Fatalf("select: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case view := <-ch:
			if view.Finished {
				return
			}
		case <-deadline:
			t.Fatalf("never observed the finished view")
		}
	}
}

func TestSetThemeValidates(t *testing.T) {
	ctx := context.Background()
	service := testService(t)

	if err := service.SetTheme(ctx, "dark"); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	theme, err := service.Theme(ctx)
	if err != nil || theme != "dark" {
		t.Fatalf("expected dark theme, got %q (%v)", theme, err)
	}
	if err := service.SetTheme(ctx, "sepia"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown theme, got %v", err)
	}
}
