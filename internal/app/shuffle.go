package app

import "math/rand"

// shuffled returns a copy of items in a uniformly random permutation using
// Fisher-Yates: walk from the last index down, swapping with a uniformly
// chosen earlier-or-equal index. The input is never mutated.
func shuffled[T any](items []T, rnd *rand.Rand) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
