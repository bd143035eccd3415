package memory

import (
	"context"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// ResultStore is an in-memory implementation of app.ResultRepository.
// One mutex covers every read-modify-write, so no two runs interleave
// their cap-and-sort step.
type ResultStore struct {
	mu         sync.RWMutex
	highscores map[string][]domain.ScoreEntry
	history    []domain.ScoreEntry
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		highscores: make(map[string][]domain.ScoreEntry),
	}
}

func (s *ResultStore) RecordRun(_ context.Context, entry domain.ScoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tableKey(entry.Category, entry.Difficulty)
	s.highscores[key] = domain.InsertHighscore(s.highscores[key], entry, domain.HighscoreCap)
	s.history = domain.PushHistory(s.history, entry, domain.HistoryCap)
	return nil
}

func (s *ResultStore) TopScores(_ context.Context, category string, difficulty domain.Difficulty) ([]domain.ScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table := s.highscores[tableKey(category, difficulty)]
	out := make([]domain.ScoreEntry, len(table))
	copy(out, table)
	return out, nil
}

func (s *ResultStore) RecentHistory(_ context.Context) ([]domain.ScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ScoreEntry, len(s.history))
	copy(out, s.history)
	return out, nil
}

func (s *ResultStore) ClearHighscores(_ context.Context, category string, difficulty domain.Difficulty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.highscores, tableKey(category, difficulty))
	return nil
}

func (s *ResultStore) ClearHistory(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	return nil
}

func tableKey(category string, difficulty domain.Difficulty) string {
	return category + "|" + string(difficulty)
}
