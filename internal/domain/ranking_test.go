package domain

import (
	"testing"
	"time"
)

func entry(percent, score int, playedAt time.Time) ScoreEntry {
	return ScoreEntry{
		Player:     "p",
		Category:   "any",
		Difficulty: FilterAny,
		Score:      score,
		Total:      10,
		Percent:    percent,
		PlayedAt:   playedAt,
	}
}

func TestInsertHighscoreOrdering(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	var table []ScoreEntry
	table = InsertHighscore(table, entry(50, 5, base), HighscoreCap)
	table = InsertHighscore(table, entry(80, 8, base.Add(time.Minute)), HighscoreCap)
	table = InsertHighscore(table, entry(80, 8, base.Add(2*time.Minute)), HighscoreCap)
	table = InsertHighscore(table, entry(80, 7, base.Add(3*time.Minute)), HighscoreCap)

	if table[0].Percent != 80 || !table[0].PlayedAt.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("expected most recent 80%% entry first, got %+v", table[0])
	}
	if table[1].PlayedAt != base.Add(time.Minute) {
		t.Fatalf("expected older 80%%/8 entry second, got %+v", table[1])
	}
	if table[2].Score != 7 {
		t.Fatalf("expected lower score to rank below equal percent, got %+v", table[2])
	}
	if table[3].Percent != 50 {
		t.Fatalf("expected 50%% entry last, got %+v", table[3])
	}
}

func TestInsertHighscoreCap(t *testing.T) {
	base := time.Now()
	var table []ScoreEntry
	for i := 0; i < HighscoreCap+5; i++ {
		table = InsertHighscore(table, entry(i, i, base.Add(time.Duration(i)*time.Second)), HighscoreCap)
	}
	if len(table) != HighscoreCap {
		t.Fatalf("expected table capped at %d, got %d", HighscoreCap, len(table))
	}
	// The lowest percentages must have been evicted.
	for _, e := range table {
		if e.Percent < 5 {
			t.Fatalf("expected low entries evicted, found %+v", e)
		}
	}
}

func TestPushHistoryNewestFirstAndCap(t *testing.T) {
	base := time.Now()
	var log []ScoreEntry
	for i := 0; i < HistoryCap+3; i++ {
		log = PushHistory(log, entry(i, i, base.Add(time.Duration(i)*time.Second)), HistoryCap)
	}
	if len(log) != HistoryCap {
		t.Fatalf("expected history capped at %d, got %d", HistoryCap, len(log))
	}
	if log[0].Percent != HistoryCap+2 {
		t.Fatalf("expected newest entry first, got %+v", log[0])
	}
	for i := 1; i < len(log); i++ {
		if log[i].PlayedAt.After(log[i-1].PlayedAt) {
			t.Fatalf("history not newest-first at %d", i)
		}
	}
}

func TestPercentRounds(t *testing.T) {
	cases := []struct {
		score, total, want int
	}{
		{1, 2, 50},
		{2, 3, 67},
		{1, 3, 33},
		{0, 5, 0},
		{5, 5, 100},
		{0, 0, 0},
	}
	for _, c := range cases {
		if got := Percent(c.score, c.total); got != c.want {
			t.Fatalf("Percent(%d,%d)=%d, want %d", c.score, c.total, got, c.want)
		}
	}
}
