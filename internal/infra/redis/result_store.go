package redis

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"trivia-quiz-service/internal/domain"
)

// ResultStore keeps highscore tables and the run history as JSON values in
// Redis. Keys:
//
//	quiz:scores:{category}:{difficulty} -> []ScoreEntry (ranked, capped)
//	quiz:history                        -> []ScoreEntry (newest first, capped)
//
// The cap-and-sort reduction runs in-process under one mutex so two runs
// never interleave a read-modify-write on the same table. Corrupt stored
// JSON is discarded and the table treated as empty.
type ResultStore struct {
	client *redis.Client
	mu     sync.Mutex
}

func NewResultStore(client *redis.Client) *ResultStore {
	return &ResultStore{client: client}
}

func (s *ResultStore) RecordRun(ctx context.Context, entry domain.ScoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.scoresKey(entry.Category, entry.Difficulty)
	table := s.readEntries(ctx, key)
	table = domain.InsertHighscore(table, entry, domain.HighscoreCap)
	if err := s.writeEntries(ctx, key, table); err != nil {
		return err
	}

	history := s.readEntries(ctx, historyKey)
	history = domain.PushHistory(history, entry, domain.HistoryCap)
	return s.writeEntries(ctx, historyKey, history)
}

func (s *ResultStore) TopScores(ctx context.Context, category string, difficulty domain.Difficulty) ([]domain.ScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readEntries(ctx, s.scoresKey(category, difficulty)), nil
}

func (s *ResultStore) RecentHistory(ctx context.Context) ([]domain.ScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readEntries(ctx, historyKey), nil
}

func (s *ResultStore) ClearHighscores(ctx context.Context, category string, difficulty domain.Difficulty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client.Del(ctx, s.scoresKey(category, difficulty)).Err()
}

func (s *ResultStore) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client.Del(ctx, historyKey).Err()
}

const historyKey = "quiz:history"

func (s *ResultStore) scoresKey(category string, difficulty domain.Difficulty) string {
	return "quiz:scores:" + category + ":" + string(difficulty)
}

// readEntries treats missing or unreadable data as an empty table.
func (s *ResultStore) readEntries(ctx context.Context, key string) []domain.ScoreEntry {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var entries []domain.ScoreEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	return entries
}

func (s *ResultStore) writeEntries(ctx context.Context, key string, entries []domain.ScoreEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, raw, 0).Err()
}
