package app

import (
	"fmt"
	"math/rand"
	"testing"
)

func TestShuffledIsPermutation(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}

	out := shuffled(in, rnd)
	if len(out) != len(in) {
		t.Fatalf("expected %d elements, got %d", len(in), len(out))
	}
	counts := make(map[int]int)
	for _, v := range out {
		counts[v]++
	}
	for _, v := range in {
		if counts[v] != 1 {
			t.Fatalf("element %d appears %d times", v, counts[v])
		}
	}
}

func TestShuffledDoesNotMutateInput(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	in := []int{1, 2, 3, 4, 5}
	for i := 0; i < 50; i++ {
		_ = shuffled(in, rnd)
	}
	for i, v := range in {
		if v != i+1 {
			t.Fatalf("input mutated at %d: %v", i, in)
		}
	}
}

func TestShuffledReachesAllPermutations(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	seen := make(map[string]int)
	for i := 0; i < 6000; i++ {
		out := shuffled([]int{0, 1, 2}, rnd)
		seen[fmt.Sprint(out)]++
	}
	if len(seen) != 6 {
		t.Fatalf("expected all 6 permutations of 3 elements, saw %d: %v", len(seen), seen)
	}
	// Unbiased Fisher-Yates should land near 1000 per permutation.
	for perm, n := range seen {
		if n < 700 || n > 1300 {
			t.Fatalf("permutation %s frequency %d far from uniform", perm, n)
		}
	}
}
