package questiongen

import (
	"math"
	"math/rand/v2"
	"slices"
)

// reserveShare is the fraction of a request held for each of the
// expensive types (match, sequence).
const reserveShare = 0.10

// Allocate returns the ordered question types for count questions.
//
// match and sequence each get max(1, round(0.1*count)) slots; the rest is
// split between mcq and input with mcq taking the odd one. The order is
// shuffled with rng and then stably sorted so mcq/input come before
// match/sequence. The result is truncated to count, which drops expensive
// types first for tiny counts.
func Allocate(count int, rng *rand.Rand) []QuestionType {
	if count <= 0 {
		return nil
	}

	reserve := max(1, int(math.RoundToEven(reserveShare*float64(count))))
	rem := max(0, count-2*reserve)
	mcq := (rem + 1) / 2
	input := rem - mcq

	pool := make([]QuestionType, 0, mcq+input+2*reserve)
	pool = appendN(pool, TypeMCQ, mcq)
	pool = appendN(pool, TypeInput, input)
	pool = appendN(pool, TypeMatch, reserve)
	pool = appendN(pool, TypeSequence, reserve)

	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	slices.SortStableFunc(pool, func(a, b QuestionType) int {
		return costRank(a) - costRank(b)
	})

	if len(pool) > count {
		pool = pool[:count]
	}
	return pool
}

// Partition splits types into consecutive batches of at most size entries.
func Partition(types []QuestionType, size int) [][]QuestionType {
	if size <= 0 {
		size = 1
	}
	var out [][]QuestionType
	for start := 0; start < len(types); start += size {
		end := min(start+size, len(types))
		out = append(out, types[start:end])
	}
	return out
}

// CountTypes tallies a type sequence.
func CountTypes(types []QuestionType) map[QuestionType]int {
	out := make(map[QuestionType]int, len(AllTypes))
	for _, t := range types {
		out[t]++
	}
	return out
}

func costRank(t QuestionType) int {
	if t.expensive() {
		return 1
	}
	return 0
}

func appendN(pool []QuestionType, t QuestionType, n int) []QuestionType {
	for range n {
		pool = append(pool, t)
	}
	return pool
}
