package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"trivia-quiz-service/internal/domain"
)

// SetLoader loads quiz-set JSONB from Postgres.
type SetLoader struct {
	pool *pgxpool.Pool
}

func NewSetLoader(pool *pgxpool.Pool) *SetLoader {
	return &SetLoader{pool: pool}
}

func (l *SetLoader) LoadSet(ctx context.Context, name string) (domain.QuizSet, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM quiz_sets WHERE name=$1`, name).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizSet{}, domain.ErrQuizSetNotFound
	}
	if err != nil {
		return domain.QuizSet{}, fmt.Errorf("load quiz set: %w", err)
	}
	var set domain.QuizSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return domain.QuizSet{}, fmt.Errorf("unmarshal quiz set: %w", err)
	}
	if set.Name == "" {
		set.Name = name
	}
	return set, nil
}
