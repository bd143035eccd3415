package app

import (
	"math/rand"

	"trivia-quiz-service/internal/domain"
)

// BuildPlaySet derives the immutable question sequence for one run:
// filter the bank snapshot by category and difficulty, deep-copy every
// match, shuffle each question's answers and recompute the correct index,
// then shuffle the question order as a whole. An empty filter result yields
// an empty play set, which the engine treats as nothing to play.
func BuildPlaySet(questions []domain.Question, category string, difficulty domain.Difficulty, rnd *rand.Rand) domain.PlaySet {
	var picked []domain.PlayQuestion
	for _, q := range questions {
		if category != domain.FilterAny && category != "" && q.Category != category {
			continue
		}
		if difficulty != domain.FilterAny && difficulty != "" && q.Difficulty != difficulty {
			continue
		}

		copied := q.Clone()
		answers := shuffled(copied.Answers, rnd)
		picked = append(picked, domain.PlayQuestion{
			Text:         copied.Text,
			Category:     copied.Category,
			Difficulty:   copied.Difficulty,
			Image:        copied.Image,
			Answers:      answers,
			CorrectIndex: correctIndex(answers),
		})
	}
	return domain.PlaySet(shuffled(picked, rnd))
}

func correctIndex(answers []domain.Answer) int {
	for i, a := range answers {
		if a.Correct {
			return i
		}
	}
	return domain.NoSelection
}
