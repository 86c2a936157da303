package questiongen

import "math/rand/v2"

// ShuffleMatches permutes the right-hand options of every match question
// and rewrites its answers so each term still points at its partner:
// options'[j] = options[p[j]] and answers[i] = [i, j] where p[j] = i.
// Other question types are copied unchanged. qs is not modified.
func ShuffleMatches(qs []Question, rng *rand.Rand) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.clone()
		if q.QuestionType != TypeMatch {
			continue
		}

		right := matchPartners(q)
		n := len(right)
		perm := rng.Perm(n)

		options := make([]string, n)
		pos := make([]int, n)
		for j, src := range perm {
			options[j] = right[src]
			pos[src] = j
		}
		pairs := make([][2]int, n)
		for l := range n {
			pairs[l] = [2]int{l, pos[l]}
		}

		out[i].Options = options
		out[i].Pairs = pairs
	}
	return out
}

// ShuffleSequences returns a copy of qs in which every sequence question
// lists its steps in a random order, for presenting to a test taker.
// Answers are rewritten to point into the new order, so CheckAnswer and
// AnswerKey keep working on the copy. A nil seed draws a fresh order.
// qs is not modified.
func ShuffleSequences(qs []Question, seed *uint64) []Question {
	rng := newRand(seed)
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.clone()
		if q.QuestionType != TypeSequence {
			continue
		}

		n := len(q.Options)
		perm := rng.Perm(n)
		options := make([]string, n)
		pos := make([]int, n)
		for j, src := range perm {
			options[j] = q.Options[src]
			pos[src] = j
		}
		answers := make([]int, 0, len(q.Answers))
		for _, a := range q.Answers {
			if a >= 0 && a < n {
				answers = append(answers, pos[a])
			}
		}

		out[i].Options = options
		out[i].Answers = answers
	}
	return out
}

// matchPartners returns the right-hand option paired with each term, in
// term order.
func matchPartners(q Question) []string {
	n := len(q.QuestionOptions)
	partners := make([]string, n)
	for _, p := range q.Pairs {
		if p[0] >= 0 && p[0] < n && p[1] >= 0 && p[1] < len(q.Options) {
			partners[p[0]] = q.Options[p[1]]
		}
	}
	return partners
}
