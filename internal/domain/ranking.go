package domain

import "sort"

// Caps for the persisted stores. The highscore cap applies per
// (category, difficulty) table, the history cap globally.
const (
	HighscoreCap = 10
	HistoryCap   = 25
)

// InsertHighscore appends entry to a highscore table and returns the table
// re-sorted and trimmed to limit. Ordering: percent desc, then score desc,
// then most recent first. The input slice is not modified.
func InsertHighscore(table []ScoreEntry, entry ScoreEntry, limit int) []ScoreEntry {
	out := make([]ScoreEntry, 0, len(table)+1)
	out = append(out, table...)
	out = append(out, entry)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Percent != out[j].Percent {
			return out[i].Percent > out[j].Percent
		}
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PlayedAt.After(out[j].PlayedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// PushHistory prepends entry to a newest-first history log, evicting the
// oldest entries beyond limit. The input slice is not modified.
func PushHistory(log []ScoreEntry, entry ScoreEntry, limit int) []ScoreEntry {
	out := make([]ScoreEntry, 0, len(log)+1)
	out = append(out, entry)
	out = append(out, log...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
