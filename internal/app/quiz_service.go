package app

import (
	"context"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// ResultRepository persists ranked highscore tables and the global run
// history (in-memory, Redis, etc). Each record is a read-modify-write of a
// capped table and must not interleave with another record.
type ResultRepository interface {
	RecordRun(ctx context.Context, entry domain.ScoreEntry) error
	TopScores(ctx context.Context, category string, difficulty domain.Difficulty) ([]domain.ScoreEntry, error)
	RecentHistory(ctx context.Context) ([]domain.ScoreEntry, error)
	ClearHighscores(ctx context.Context, category string, difficulty domain.Difficulty) error
	ClearHistory(ctx context.Context) error
}

// SettingsRepository persists the player's preferences. Absent values read
// back as their defaults.
type SettingsRepository interface {
	Theme(ctx context.Context) (string, error)
	SetTheme(ctx context.Context, theme string) error
	PlayerName(ctx context.Context) (string, error)
	SetPlayerName(ctx context.Context, name string) error
}

// QuizSetRepository loads named quiz sets from a backing store.
type QuizSetRepository interface {
	GetSet(ctx context.Context, name string) (domain.QuizSet, error)
}

// QuizService wires the question bank, session builder, engine and stores
// together behind the API the presentation layer drives.
type QuizService struct {
	bank     *Bank
	sets     QuizSetRepository
	results  ResultRepository
	settings SettingsRepository

	questionTime time.Duration
	clock        func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizService(bank *Bank, sets QuizSetRepository, results ResultRepository, settings SettingsRepository, questionTime time.Duration) *QuizService {
	return &QuizService{
		bank:         bank,
		sets:         sets,
		results:      results,
		settings:     settings,
		questionTime: questionTime,
		clock:        time.Now,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// LoadSet fetches a named quiz set and merges it into the bank, replacing a
// same-named set if present.
func (s *QuizService) LoadSet(ctx context.Context, name string) error {
	set, err := s.sets.GetSet(ctx, name)
	if err != nil {
		return err
	}
	merged := []domain.QuizSet{set}
	for _, existing := range s.bank.Sets() {
		if existing.Name != set.Name {
			merged = append(merged, existing)
		}
	}
	s.bank.Replace(merged)
	return nil
}

// Categories returns the bank's category labels sorted for display.
func (s *QuizService) Categories() []string {
	cats := s.bank.Categories()
	sort.Strings(cats)
	return cats
}

// CreateQuestion authors a question into the named set.
func (s *QuizService) CreateQuestion(set string, q domain.Question) error {
	return s.bank.AddQuestion(set, q)
}

// DeleteQuizSet removes one named set from the bank.
func (s *QuizService) DeleteQuizSet(name string) error {
	return s.bank.DeleteSet(name)
}

// ImportBank replaces the bank wholesale from a serialized quiz-set array.
func (s *QuizService) ImportBank(data []byte) error {
	return s.bank.ImportJSON(data)
}

// ExportBank serializes the bank as a quiz-set array.
func (s *QuizService) ExportBank() ([]byte, error) {
	return s.bank.ExportJSON()
}

// TopScores reads the ranked highscore table for one filter pair.
func (s *QuizService) TopScores(ctx context.Context, category string, difficulty domain.Difficulty) ([]domain.ScoreEntry, error) {
	return s.results.TopScores(ctx, category, difficulty)
}

// RecentHistory reads the global newest-first run history.
func (s *QuizService) RecentHistory(ctx context.Context) ([]domain.ScoreEntry, error) {
	return s.results.RecentHistory(ctx)
}

// ClearHighscores empties one filter pair's highscore table.
func (s *QuizService) ClearHighscores(ctx context.Context, category string, difficulty domain.Difficulty) error {
	return s.results.ClearHighscores(ctx, category, difficulty)
}

// ClearHistory empties the global run history.
func (s *QuizService) ClearHistory(ctx context.Context) error {
	return s.results.ClearHistory(ctx)
}

// SetPlayerName persists the display name used on new score entries.
func (s *QuizService) SetPlayerName(ctx context.Context, name string) error {
	return s.settings.SetPlayerName(ctx, name)
}

// PlayerName reads the persisted display name.
func (s *QuizService) PlayerName(ctx context.Context) (string, error) {
	return s.settings.PlayerName(ctx)
}

// SetTheme persists the theme preference ("light" or "dark").
func (s *QuizService) SetTheme(ctx context.Context, theme string) error {
	if theme != "light" && theme != "dark" {
		return domain.ErrInvalidInput
	}
	return s.settings.SetTheme(ctx, theme)
}

// Theme reads the persisted theme preference.
func (s *QuizService) Theme(ctx context.Context) (string, error) {
	return s.settings.Theme(ctx)
}

// NewSession opens a player session scoped to the given filters and starts
// the first run. The difficulty string must parse; anything unknown fails
// with ErrInvalidInput.
func (s *QuizService) NewSession(category, difficulty string) (*Session, error) {
	diff, ok := domain.ParseDifficulty(difficulty)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	if category == "" {
		category = domain.FilterAny
	}

	sess := &Session{
		svc:         s,
		engine:      NewEngine(s.questionTime),
		category:    category,
		difficulty:  diff,
		subscribers: make(map[chan domain.SessionView]struct{}),
	}
	sess.engine.OnChange(sess.broadcast)
	sess.engine.OnTick(sess.broadcast)
	sess.engine.OnFinished(sess.recordRun)
	sess.rebuild()
	return sess, nil
}

func (s *QuizService) buildPlaySet(category string, difficulty domain.Difficulty) domain.PlaySet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildPlaySet(s.bank.Questions(), category, difficulty, s.rnd)
}

// Session is one player's traversal of play sets. All transitions funnel
// into the engine, which serializes them.
type Session struct {
	svc        *QuizService
	engine     *Engine
	mu         sync.Mutex
	category   string
	difficulty domain.Difficulty

	subMu       sync.Mutex
	subscribers map[chan domain.SessionView]struct{}
}

// SelectAnswer locks in an answer for the current question.
func (sess *Session) SelectAnswer(i int) error {
	return sess.engine.SelectAnswer(i)
}

// Advance moves to the next question.
func (sess *Session) Advance() {
	sess.engine.Advance()
}

// Restart rebuilds a fresh play set from the same filters.
func (sess *Session) Restart() {
	sess.rebuild()
}

// ChangeFilter discards the current run and rebuilds under new filters.
// An unknown difficulty fails with ErrInvalidInput and changes nothing.
func (sess *Session) ChangeFilter(category, difficulty string) error {
	diff, ok := domain.ParseDifficulty(difficulty)
	if !ok {
		return domain.ErrInvalidInput
	}
	if category == "" {
		category = domain.FilterAny
	}

	sess.mu.Lock()
	sess.category = category
	sess.difficulty = diff
	sess.mu.Unlock()
	sess.rebuild()
	return nil
}

// View returns the current read-only snapshot.
func (sess *Session) View() domain.SessionView {
	return sess.engine.View()
}

// Summary returns the audit trail of the current run.
func (sess *Session) Summary() []domain.SummaryRow {
	return sess.engine.Summary()
}

// Filters reports the session's current category and difficulty.
func (sess *Session) Filters() (string, domain.Difficulty) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.category, sess.difficulty
}

// Subscribe returns a channel receiving view snapshots on every transition
// and countdown tick. The caller must invoke cancel to avoid leaks.
func (sess *Session) Subscribe() (<-chan domain.SessionView, func()) {
	ch := make(chan domain.SessionView, 8)

	sess.subMu.Lock()
	sess.subscribers[ch] = struct{}{}
	sess.subMu.Unlock()

	ch <- sess.engine.View()

	cancel := func() {
		sess.subMu.Lock()
		if _, ok := sess.subscribers[ch]; ok {
			delete(sess.subscribers, ch)
			close(ch)
		}
		sess.subMu.Unlock()
	}
	return ch, cancel
}

// Close stops the session's countdown.
func (sess *Session) Close() {
	sess.engine.Close()
}

func (sess *Session) rebuild() {
	sess.mu.Lock()
	category, difficulty := sess.category, sess.difficulty
	sess.mu.Unlock()
	sess.engine.Load(sess.svc.buildPlaySet(category, difficulty))
}

func (sess *Session) broadcast(view domain.SessionView) {
	sess.subMu.Lock()
	defer sess.subMu.Unlock()
	for ch := range sess.subscribers {
		select {
		case ch <- view:
		default:
			// Drop the oldest snapshot so a slow reader never blocks the
			// engine; only the latest view matters.
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}

// recordRun reduces a completed run to a ScoreEntry and persists it.
// Persistence is best-effort; a failed write never disturbs the session.
func (sess *Session) recordRun(score, total int, _ []domain.SummaryRow) {
	ctx := context.Background()
	player, err := sess.svc.settings.PlayerName(ctx)
	if err != nil || player == "" {
		player = "anonymous"
	}
	category, difficulty := sess.Filters()
	entry := domain.ScoreEntry{
		Player:     player,
		Category:   category,
		Difficulty: difficulty,
		Score:      score,
		Total:      total,
		Percent:    domain.Percent(score, total),
		PlayedAt:   sess.svc.clock(),
	}
	if err := sess.svc.results.RecordRun(ctx, entry); err != nil {
		log.Printf("record run failed: %v", err)
	}
}
