package app

import (
	"bytes"
	"encoding/json"
	"os"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// Bank is the mutable catalog of questions, grouped into named quiz sets.
// Everything downstream works on copies; the bank is mutated only through
// its own methods.
type Bank struct {
	mu   sync.RWMutex
	sets []domain.QuizSet
}

func NewBank() *Bank {
	return &Bank{}
}

// AddQuestion validates q and appends it to the named set, creating the set
// if it does not exist yet. On validation failure the bank is unchanged.
func (b *Bank) AddQuestion(set string, q domain.Question) error {
	if err := q.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.sets {
		if b.sets[i].Name == set {
			b.sets[i].Questions = append(b.sets[i].Questions, q.Clone())
			return nil
		}
	}
	b.sets = append(b.sets, domain.QuizSet{Name: set, Questions: []domain.Question{q.Clone()}})
	return nil
}

// Categories returns the distinct category labels present across all sets.
// Order is not significant; callers sort as needed.
func (b *Bank) Categories() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, set := range b.sets {
		for _, q := range set.Questions {
			if _, ok := seen[q.Category]; ok {
				continue
			}
			seen[q.Category] = struct{}{}
			out = append(out, q.Category)
		}
	}
	return out
}

// Questions returns a deep-copied snapshot of every question in the bank.
func (b *Bank) Questions() []domain.Question {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []domain.Question
	for _, set := range b.sets {
		for _, q := range set.Questions {
			out = append(out, q.Clone())
		}
	}
	return out
}

// Sets returns a deep-copied snapshot of the named quiz sets.
func (b *Bank) Sets() []domain.QuizSet {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.QuizSet, len(b.sets))
	for i, s := range b.sets {
		out[i] = s.Clone()
	}
	return out
}

// Replace swaps the bank contents wholesale. Seeded data is trusted as
// pre-validated, so no per-question validation happens here.
func (b *Bank) Replace(sets []domain.QuizSet) {
	copied := make([]domain.QuizSet, len(sets))
	for i, s := range sets {
		copied[i] = s.Clone()
	}

	b.mu.Lock()
	b.sets = copied
	b.mu.Unlock()
}

// DeleteSet removes one named quiz set.
func (b *Bank) DeleteSet(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.sets {
		if b.sets[i].Name == name {
			b.sets = append(b.sets[:i], b.sets[i+1:]...)
			return nil
		}
	}
	return domain.ErrQuizSetNotFound
}

// ImportJSON replaces the bank from a serialized quiz-set array. A payload
// that is not an array fails with ErrImportFormat and leaves the bank
// untouched.
func (b *Bank) ImportJSON(data []byte) error {
	// json.Unmarshal accepts "null" into a slice, so require array syntax
	// explicitly.
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return domain.ErrImportFormat
	}
	var sets []domain.QuizSet
	if err := json.Unmarshal(data, &sets); err != nil {
		return domain.ErrImportFormat
	}
	b.Replace(sets)
	return nil
}

// ExportJSON serializes the bank as a quiz-set array.
func (b *Bank) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(b.Sets(), "", "  ")
}

// ImportFile replaces the bank from a JSON file.
func (b *Bank) ImportFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return b.ImportJSON(data)
}

// ExportFile writes the bank to a JSON file.
func (b *Bank) ExportFile(path string) error {
	data, err := b.ExportJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
