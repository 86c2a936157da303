package questiongen

import (
	"strings"
)

// StructuralValidator checks the per-type invariants of a normalized
// question: option counts, answer indices and pairings.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question) *ValidationError {
	if strings.TrimSpace(q.QuestionText) == "" {
		return v.fail("question_text is empty")
	}
	if len(q.QuestionText) > 1000 {
		return v.fail("question_text exceeds 1000 characters")
	}

	switch q.QuestionType {
	case TypeMCQ:
		if len(q.Options) != mcqOptions {
			return v.fail("mcq must have exactly 3 options")
		}
		seen := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			key := strings.ToLower(o)
			if o == "" || seen[key] {
				return v.fail("mcq options must be non-empty and distinct")
			}
			seen[key] = true
		}
		if len(q.Answers) != 1 || q.Answers[0] < 0 || q.Answers[0] >= len(q.Options) {
			return v.fail("mcq must have exactly one valid answer index")
		}

	case TypeInput:
		n := len(strings.Fields(q.Answer))
		if n < 1 || n > maxAnswerTokens {
			return v.fail("input answer must be 1 to 3 words")
		}

	case TypeMatch:
		n := len(q.QuestionOptions)
		if n == 0 || len(q.Options) != n || len(q.Pairs) != n {
			return v.fail("match sides and answers must have equal non-zero length")
		}
		left := make([]bool, n)
		right := make([]bool, n)
		for _, p := range q.Pairs {
			l, r := p[0], p[1]
			if l < 0 || l >= n || r < 0 || r >= n || left[l] || right[r] {
				return v.fail("match answers must pair every term exactly once")
			}
			left[l], right[r] = true, true
		}

	case TypeSequence:
		if len(q.Options) < minSequenceSteps {
			return v.fail("sequence needs at least 2 steps")
		}
		if len(q.Answers) != len(q.Options) {
			return v.fail("sequence answers must cover every step")
		}

	default:
		return v.fail("unknown question_type " + string(q.QuestionType))
	}
	return nil
}

func (v *StructuralValidator) fail(msg string) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: msg}
}
