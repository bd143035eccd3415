package memory

import (
	"context"
	"sync"
)

// SettingsStore is an in-memory implementation of app.SettingsRepository.
type SettingsStore struct {
	mu     sync.RWMutex
	theme  string
	player string
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{}
}

func (s *SettingsStore) Theme(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.theme == "" {
		return "light", nil
	}
	return s.theme, nil
}

func (s *SettingsStore) SetTheme(_ context.Context, theme string) error {
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	return nil
}

func (s *SettingsStore) PlayerName(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.player, nil
}

func (s *SettingsStore) SetPlayerName(_ context.Context, name string) error {
	s.mu.Lock()
	s.player = name
	s.mu.Unlock()
	return nil
}
