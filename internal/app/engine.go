package app

import (
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// State enumerates the engine's lifecycle for one play set.
type State int

const (
	// StateIdle means no play set is loaded (or the loaded set was empty).
	StateIdle State = iota
	// StateAwaitingAnswer means a question is shown and the countdown runs.
	StateAwaitingAnswer
	// StateAnswered means the current question is resolved, advance pending.
	StateAnswered
	// StateFinished is terminal: the last question resolved, score final.
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateAwaitingAnswer:
		return "awaitingAnswer"
	case StateAnswered:
		return "answered"
	case StateFinished:
		return "finished"
	default:
		return "idle"
	}
}

// Engine is the quiz state machine. It consumes one event at a time (user
// input or countdown expiry) under a single mutex, so no two transitions
// interleave. Each question carries a generation number; an expiry tagged
// with a stale generation is dropped before it can touch state.
type Engine struct {
	timer    *Countdown
	duration time.Duration

	onChange   func(domain.SessionView)
	onTick     func(domain.SessionView)
	onFinished func(score, total int, summary []domain.SummaryRow)

	mu       sync.Mutex
	playSet  domain.PlaySet
	state    State
	index    int
	selected int
	answered bool
	score    int
	summary  []domain.SummaryRow
	gen      uint64
}

// NewEngine builds an idle engine with the given per-question duration.
func NewEngine(duration time.Duration) *Engine {
	return &Engine{
		timer:    NewCountdown(),
		duration: duration,
		selected: domain.NoSelection,
	}
}

// OnChange registers the hook invoked after every state transition.
// Register hooks before the first Load; they run without the engine lock.
func (e *Engine) OnChange(fn func(domain.SessionView)) { e.onChange = fn }

// OnTick registers the hook invoked on every countdown poll.
func (e *Engine) OnTick(fn func(domain.SessionView)) { e.onTick = fn }

// OnFinished registers the hook invoked exactly once per completed run.
func (e *Engine) OnFinished(fn func(score, total int, summary []domain.SummaryRow)) {
	e.onFinished = fn
}

// Load replaces the current run with a fresh play set: index, score and
// summary reset, countdown started for question zero. An empty set parks
// the engine in StateIdle.
func (e *Engine) Load(ps domain.PlaySet) {
	e.mu.Lock()
	e.timer.Cancel()
	e.playSet = ps
	e.index = 0
	e.selected = domain.NoSelection
	e.answered = false
	e.score = 0
	e.summary = nil
	if len(ps) == 0 {
		e.state = StateIdle
	} else {
		e.state = StateAwaitingAnswer
		e.startQuestionLocked()
	}
	view := e.viewLocked()
	e.mu.Unlock()

	e.notifyChange(view)
}

// SelectAnswer locks in answer i for the current question. Valid only while
// awaiting an answer; once the question is resolved further calls are
// silent no-ops. An out-of-range index fails with ErrInvalidInput and
// leaves all state untouched.
func (e *Engine) SelectAnswer(i int) error {
	e.mu.Lock()
	if e.state != StateAwaitingAnswer {
		e.mu.Unlock()
		return nil
	}
	q := e.playSet[e.index]
	if i < 0 || i >= len(q.Answers) {
		e.mu.Unlock()
		return domain.ErrInvalidInput
	}

	used := e.timer.Elapsed()
	e.timer.Cancel()
	e.selected = i
	correct := i == q.CorrectIndex
	e.resolveLocked(q, i, correct, used)
	view, done := e.viewLocked(), e.state == StateFinished
	score, total, summary := e.score, len(e.playSet), e.summaryLocked()
	e.mu.Unlock()

	e.notifyChange(view)
	if done {
		e.notifyFinished(score, total, summary)
	}
	return nil
}

// Timeout resolves the current question as unanswered. Only the expiry for
// the current generation is honored; a user selection that arrived first
// already moved the state on, making the expiry a no-op.
func (e *Engine) Timeout(gen uint64) {
	e.mu.Lock()
	if e.state != StateAwaitingAnswer || gen != e.gen {
		e.mu.Unlock()
		return
	}
	q := e.playSet[e.index]
	e.selected = domain.NoSelection
	e.resolveLocked(q, domain.NoSelection, false, e.duration)
	view, done := e.viewLocked(), e.state == StateFinished
	score, total, summary := e.score, len(e.playSet), e.summaryLocked()
	e.mu.Unlock()

	e.notifyChange(view)
	if done {
		e.notifyFinished(score, total, summary)
	}
}

// Advance moves to the next question. Valid only in StateAnswered; the
// last question never reaches StateAnswered (it resolves straight to
// StateFinished), so there is no next-past-the-end case.
func (e *Engine) Advance() {
	e.mu.Lock()
	if e.state != StateAnswered {
		e.mu.Unlock()
		return
	}
	e.index++
	e.selected = domain.NoSelection
	e.answered = false
	e.state = StateAwaitingAnswer
	e.startQuestionLocked()
	view := e.viewLocked()
	e.mu.Unlock()

	e.notifyChange(view)
}

// View returns the current read-only snapshot.
func (e *Engine) View() domain.SessionView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

// Summary returns the per-question audit trail in play order.
func (e *Engine) Summary() []domain.SummaryRow {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summaryLocked()
}

// Finished reports whether the run reached its terminal state.
func (e *Engine) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateFinished
}

// Close stops the countdown. The engine stays readable.
func (e *Engine) Close() {
	e.timer.Cancel()
}

func (e *Engine) startQuestionLocked() {
	e.gen++
	gen := e.gen
	e.timer.Start(e.duration, func(time.Duration) {
		e.tick()
	}, func() {
		e.Timeout(gen)
	})
}

// resolveLocked appends the summary row and transitions to Answered or
// Finished. Exactly one row is appended per question; used is how long the
// question was open (the full duration on timeout).
func (e *Engine) resolveLocked(q domain.PlayQuestion, selected int, correct bool, used time.Duration) {
	e.answered = true
	if correct {
		e.score++
	}
	answers := make([]string, len(q.Answers))
	for i, a := range q.Answers {
		answers[i] = a.Text
	}
	e.summary = append(e.summary, domain.SummaryRow{
		Question:      q.Text,
		Answers:       answers,
		CorrectIndex:  q.CorrectIndex,
		SelectedIndex: selected,
		WasCorrect:    correct,
		TimeUsedMs:    used.Milliseconds(),
	})
	if e.index == len(e.playSet)-1 {
		e.state = StateFinished
	} else {
		e.state = StateAnswered
	}
}

func (e *Engine) tick() {
	e.mu.Lock()
	if e.state != StateAwaitingAnswer {
		e.mu.Unlock()
		return
	}
	view := e.viewLocked()
	e.mu.Unlock()

	if e.onTick != nil {
		e.onTick(view)
	}
}

func (e *Engine) viewLocked() domain.SessionView {
	view := domain.SessionView{
		State:         e.state.String(),
		Index:         e.index,
		Total:         len(e.playSet),
		Score:         e.score,
		Answered:      e.answered,
		SelectedIndex: e.selected,
		CorrectIndex:  domain.NoSelection,
		Finished:      e.state == StateFinished,
	}
	if len(e.playSet) > 0 {
		view.Progress = float64(len(e.summary)) / float64(len(e.playSet))
	}
	if e.state == StateAwaitingAnswer && e.duration > 0 {
		fraction := float64(e.timer.Remaining()) / float64(e.duration)
		if fraction > 1 {
			fraction = 1
		}
		view.TimeFraction = fraction
	}
	if e.state == StateAwaitingAnswer || e.state == StateAnswered {
		q := e.playSet[e.index]
		view.Question = questionView(q)
		if e.answered {
			view.CorrectIndex = q.CorrectIndex
		}
	}
	if e.state == StateFinished && len(e.playSet) > 0 {
		q := e.playSet[e.index]
		view.Question = questionView(q)
		view.CorrectIndex = q.CorrectIndex
	}
	return view
}

func (e *Engine) summaryLocked() []domain.SummaryRow {
	out := make([]domain.SummaryRow, len(e.summary))
	copy(out, e.summary)
	return out
}

func (e *Engine) notifyChange(view domain.SessionView) {
	if e.onChange != nil {
		e.onChange(view)
	}
}

func (e *Engine) notifyFinished(score, total int, summary []domain.SummaryRow) {
	if e.onFinished != nil {
		e.onFinished(score, total, summary)
	}
}

func questionView(q domain.PlayQuestion) *domain.QuestionView {
	answers := make([]domain.AnswerView, len(q.Answers))
	for i, a := range q.Answers {
		answers[i] = domain.AnswerView{Text: a.Text, Image: a.Image}
	}
	return &domain.QuestionView{Text: q.Text, Image: q.Image, Answers: answers}
}
