package questiongen

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	stubFactSentences = 5
	stubSampleWords   = 20
)

// StubGenerator produces synthetic questions from the words of the input
// without a model. It sleeps Delay per call to mimic inference latency.
// Safe for concurrent use.
type StubGenerator struct {
	Delay time.Duration
	Seed  *uint64
}

// NewStubGenerator creates a StubGenerator.
func NewStubGenerator(delay time.Duration, seed *uint64) *StubGenerator {
	return &StubGenerator{Delay: delay, Seed: seed}
}

// ExtractFacts returns the first five sentences of text as "- " bullets.
func (g *StubGenerator) ExtractFacts(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptySource
	}
	if err := sleep(ctx, g.Delay/2); err != nil {
		return "", err
	}

	var lines []string
	for _, s := range strings.Split(text, ".") {
		s = strings.Join(strings.Fields(s), " ")
		if s == "" {
			continue
		}
		lines = append(lines, "- "+s)
		if len(lines) == stubFactSentences {
			break
		}
	}
	return strings.Join(lines, "\n"), nil
}

// GenerateQuestions builds count questions from templates filled with
// words sampled from facts.
func (g *StubGenerator) GenerateQuestions(ctx context.Context, facts, testSet string, count int) ([]Question, error) {
	if count < 1 || count > MaxCount {
		return nil, fmt.Errorf("invalid request: count must be between 1 and %d, got %d", MaxCount, count)
	}
	if strings.TrimSpace(testSet) == "" {
		testSet = DefaultTestSet
	}
	if err := sleep(ctx, g.Delay); err != nil {
		return nil, err
	}

	rng := newRand(g.Seed)
	words := sampleWords(facts)

	var qs []Question
	for i, t := range Allocate(count, rng) {
		q := stubQuestion(t, i+1, words)
		q.TestSet = testSet
		qs = append(qs, q)
	}
	return finalize(ShuffleMatches(qs, rng), count, testSet), nil
}

func stubQuestion(t QuestionType, num int, words []string) Question {
	word := func(k int) string { return words[(num+k)%len(words)] }
	q := Question{QuestionNumber: num, QuestionType: t}

	switch t {
	case TypeMCQ:
		q.QuestionText = fmt.Sprintf("What is the main property of %s?", word(0))
		q.Options = []string{
			"It shows the properties of " + word(0),
			"It contradicts the theory of " + word(0),
			"It offers an alternative interpretation",
		}
		q.Answers = []int{0}
	case TypeInput:
		q.QuestionText = "Which term describes this concept? (one word)"
		q.Answer = truncateRunes(word(0), 15)
	case TypeMatch:
		left := []string{word(0), word(1), word(2)}
		if left[0] == left[1] || left[1] == left[2] || left[0] == left[2] {
			left = []string{"Term A", "Term B", "Term C"}
		}
		q.QuestionText = "Match each term with its definition."
		q.QuestionOptions = left
		q.Options = make([]string, len(left))
		for i, l := range left {
			q.Options[i] = "Definition of " + l
		}
		q.Pairs = identityPairs(len(left))
	case TypeSequence:
		q.QuestionText = "Put these steps in the correct order."
		q.Options = []string{
			"First step of the process",
			"Second step of the process",
			"Third step of the process",
			"Final step of the process",
		}
		q.Answers = identity(len(q.Options))
	}
	return q
}

// sampleWords returns up to 20 words longer than three characters, with
// surrounding punctuation removed.
func sampleWords(facts string) []string {
	var out []string
	for _, w := range strings.Fields(facts) {
		if utf8.RuneCountInString(w) <= 3 {
			continue
		}
		w = strings.Trim(w, ".,;:!?-")
		if w == "" {
			continue
		}
		out = append(out, w)
		if len(out) == stubSampleWords {
			break
		}
	}
	if len(out) == 0 {
		out = []string{"concept"}
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
