package domain

import "time"

// Difficulty buckets questions and keys highscore tables.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// FilterAny matches every category or difficulty when used as a filter value.
const FilterAny = "any"

// ParseDifficulty maps a raw string onto a known difficulty. The second
// return value is false for anything that is neither a difficulty nor "any".
func ParseDifficulty(raw string) (Difficulty, bool) {
	switch Difficulty(raw) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(raw), true
	case FilterAny, "":
		return FilterAny, true
	default:
		return "", false
	}
}

// Answer is one selectable option of a question. Answers are owned by their
// question and never shared.
type Answer struct {
	Text    string `json:"text"`
	Image   string `json:"image,omitempty"`
	Correct bool   `json:"correct"`
}

// Question models an MCQ question with exactly one correct answer.
type Question struct {
	Text       string     `json:"text"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	Image      string     `json:"image,omitempty"`
	Answers    []Answer   `json:"answers"`
}

// Clone returns a deep copy; mutating the copy never touches the original.
func (q Question) Clone() Question {
	out := q
	out.Answers = make([]Answer, len(q.Answers))
	copy(out.Answers, q.Answers)
	return out
}

// QuizSet is a named collection of questions, the unit of import/export.
type QuizSet struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Clone deep-copies the set including every question's answers.
func (s QuizSet) Clone() QuizSet {
	out := QuizSet{Name: s.Name, Questions: make([]Question, len(s.Questions))}
	for i, q := range s.Questions {
		out.Questions[i] = q.Clone()
	}
	return out
}

// PlayQuestion is a question frozen into a play set: answers already
// shuffled, CorrectIndex recomputed for the shuffled order.
type PlayQuestion struct {
	Text         string     `json:"text"`
	Category     string     `json:"category"`
	Difficulty   Difficulty `json:"difficulty"`
	Image        string     `json:"image,omitempty"`
	Answers      []Answer   `json:"answers"`
	CorrectIndex int        `json:"correctIndex"`
}

// PlaySet is the immutable, shuffled question sequence for one run.
type PlaySet []PlayQuestion

// NoSelection marks a question that was never answered (timed out).
const NoSelection = -1

// SummaryRow records how one question of a run was resolved. Rows are
// appended in play order and never edited afterward.
type SummaryRow struct {
	Question      string   `json:"question"`
	Answers       []string `json:"answers"`
	CorrectIndex  int      `json:"correctIndex"`
	SelectedIndex int      `json:"selectedIndex"`
	WasCorrect    bool     `json:"wasCorrect"`
	// TimeUsedMs is how long the question was on screen before it was
	// answered or timed out, in milliseconds.
	TimeUsedMs int64 `json:"timeUsedMs"`
}

// ScoreEntry is the persisted outcome of one completed run. Category and
// Difficulty hold the filter the run was played under, so "any" is a valid
// value for both.
type ScoreEntry struct {
	Player     string     `json:"player"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	Score      int        `json:"score"`
	Total      int        `json:"total"`
	Percent    int        `json:"percent"`
	PlayedAt   time.Time  `json:"playedAt"`
}

// Percent rounds score/total to an integer percentage in [0,100].
func Percent(score, total int) int {
	if total <= 0 {
		return 0
	}
	return (score*100 + total/2) / total
}

// AnswerView is the client-facing shape of an answer, without the
// correctness flag.
type AnswerView struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// QuestionView is the client-facing shape of the current question.
type QuestionView struct {
	Text    string       `json:"text"`
	Image   string       `json:"image,omitempty"`
	Answers []AnswerView `json:"answers"`
}

// SessionView is the read-only snapshot the presentation layer renders from.
// CorrectIndex is NoSelection until the current question is resolved.
type SessionView struct {
	State         string        `json:"state"`
	Question      *QuestionView `json:"question,omitempty"`
	Index         int           `json:"index"`
	Total         int           `json:"total"`
	Score         int           `json:"score"`
	Progress      float64       `json:"progress"`
	TimeFraction  float64       `json:"timeFraction"`
	Answered      bool          `json:"answered"`
	SelectedIndex int           `json:"selectedIndex"`
	CorrectIndex  int           `json:"correctIndex"`
	Finished      bool          `json:"finished"`
}
