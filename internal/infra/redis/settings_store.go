package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// SettingsStore persists player preferences as plain Redis strings.
type SettingsStore struct {
	client *redis.Client
}

func NewSettingsStore(client *redis.Client) *SettingsStore {
	return &SettingsStore{client: client}
}

const (
	themeKey  = "quiz:settings:theme"
	playerKey = "quiz:settings:player"
)

func (s *SettingsStore) Theme(ctx context.Context) (string, error) {
	theme, err := s.client.Get(ctx, themeKey).Result()
	if errors.Is(err, redis.Nil) || theme == "" {
		return "light", nil
	}
	if err != nil {
		return "light", err
	}
	return theme, nil
}

func (s *SettingsStore) SetTheme(ctx context.Context, theme string) error {
	return s.client.Set(ctx, themeKey, theme, 0).Err()
}

func (s *SettingsStore) PlayerName(ctx context.Context) (string, error) {
	name, err := s.client.Get(ctx, playerKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

func (s *SettingsStore) SetPlayerName(ctx context.Context, name string) error {
	return s.client.Set(ctx, playerKey, name, 0).Err()
}
