package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
)

func TestSetRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		SetLoader: NewStaticSetLoader(map[string]domain.QuizSet{
			"general": sampleSet(),
		}),
	}
	repo := NewSetRepository(loader, time.Minute)

	if _, err := repo.GetSet(context.Background(), "general"); err != nil {
		t.Fatalf("get set: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetSet(context.Background(), "general"); err != nil {
		t.Fatalf("get set 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestSetRepositoryUnknownSet(t *testing.T) {
	repo := NewSetRepository(NewStaticSetLoader(nil), time.Minute)
	_, err := repo.GetSet(context.Background(), "missing")
	if !errors.Is(err, domain.ErrQuizSetNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

type countingLoader struct {
	SetLoader
	calls int
}

func (l *countingLoader) LoadSet(ctx context.Context, name string) (domain.QuizSet, error) {
	l.calls++
	return l.SetLoader.LoadSet(ctx, name)
}

func sampleSet() domain.QuizSet {
	return domain.QuizSet{
		Name: "general",
		Questions: []domain.Question{
			{
				Text: "What is 2 + 2?", Category: "math", Difficulty: domain.DifficultyEasy,
				Answers: []domain.Answer{{Text: "3"}, {Text: "4", Correct: true}},
			},
		},
	}
}
