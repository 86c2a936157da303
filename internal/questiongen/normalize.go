package questiongen

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const (
	mcqOptions       = 3
	maxOptionWords   = 10
	maxAnswerTokens  = 3
	minSequenceSteps = 2
)

func normalizeMCQ(q *Question, item map[string]any) *ValidationError {
	opts := stringList(item["options"])
	if len(opts) != mcqOptions {
		return reject(TypeMCQ, "need %d options, got %d", mcqOptions, len(opts))
	}

	seen := make(map[string]bool, len(opts))
	for i, o := range opts {
		o = truncateWords(o, maxOptionWords)
		if o == "" {
			return reject(TypeMCQ, "option %d is empty", i)
		}
		key := strings.ToLower(o)
		if seen[key] {
			return reject(TypeMCQ, "duplicate option %q", o)
		}
		seen[key] = true
		opts[i] = o
	}
	q.Options = opts

	for _, idx := range intList(item["answers"]) {
		if idx >= 0 && idx < len(opts) {
			q.Answers = []int{idx}
			return nil
		}
	}

	// Some replies name the correct option instead of indexing it.
	if ans := strings.ToLower(stringField(item, "answer")); ans != "" {
		for i, o := range opts {
			if strings.ToLower(o) == ans {
				q.Answers = []int{i}
				return nil
			}
		}
	}
	return reject(TypeMCQ, "no valid answer index")
}

func normalizeInput(q *Question, item map[string]any) *ValidationError {
	raw := stringField(item, "answer")
	if raw == "" {
		if list := stringList(item["answers"]); len(list) > 0 {
			raw = list[0]
		}
	}

	var tokens []string
	for _, tok := range strings.Fields(raw) {
		tok = strings.TrimFunc(tok, unicode.IsPunct)
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
		if len(tokens) == maxAnswerTokens {
			break
		}
	}
	if len(tokens) == 0 {
		return reject(TypeInput, "answer is empty")
	}
	q.Answer = strings.Join(tokens, " ")
	return nil
}

func normalizeMatch(q *Question, item map[string]any) *ValidationError {
	left := stringList(item["question_options"])
	right := stringList(item["options"])
	n := min(len(left), len(right))
	if n == 0 {
		return reject(TypeMatch, "no overlap between question_options (%d) and options (%d)", len(left), len(right))
	}
	left, right = left[:n], right[:n]
	for i := range n {
		if left[i] == "" || right[i] == "" {
			return reject(TypeMatch, "pair %d has an empty side", i)
		}
	}

	// Honour the model's pairing when it is a clean bijection; otherwise
	// pairs are taken positionally.
	if perm, ok := pairPermutation(item["answers"], n); ok {
		aligned := make([]string, n)
		for l, r := range perm {
			aligned[l] = right[r]
		}
		right = aligned
	}

	q.QuestionOptions = left
	q.Options = right
	q.Pairs = identityPairs(n)
	return nil
}

func normalizeSequence(q *Question, item map[string]any) *ValidationError {
	var steps []string
	for _, s := range stringList(item["options"]) {
		if s != "" {
			steps = append(steps, s)
		}
	}
	if len(steps) < minSequenceSteps {
		return reject(TypeSequence, "need at least %d steps, got %d", minSequenceSteps, len(steps))
	}
	q.Options = steps
	// The listed order is taken as the correct one; whatever ordering the
	// model put in "answers" is discarded.
	q.Answers = identity(len(steps))
	return nil
}

// pairPermutation reads [[l, r], ...] and returns perm with perm[l] = r when
// the pairs cover every left and right index below n exactly once.
func pairPermutation(v any, n int) ([]int, bool) {
	list, ok := v.([]any)
	if !ok || len(list) != n {
		return nil, false
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = -1
	}
	usedRight := make([]bool, n)
	for _, p := range list {
		pair, ok := p.([]any)
		if !ok || len(pair) != 2 {
			return nil, false
		}
		l, okL := toInt(pair[0])
		r, okR := toInt(pair[1])
		if !okL || !okR || l < 0 || l >= n || r < 0 || r >= n {
			return nil, false
		}
		if perm[l] != -1 || usedRight[r] {
			return nil, false
		}
		perm[l] = r
		usedRight[r] = true
	}
	return perm, true
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func identityPairs(n int) [][2]int {
	out := make([][2]int, n)
	for i := range out {
		out[i] = [2]int{i, i}
	}
	return out
}

func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// stringField returns item[key] as trimmed text. Numbers are formatted.
func stringField(item map[string]any, key string) string {
	s, _ := toString(item[key])
	return s
}

func toString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

// stringList reads a JSON array of scalars as trimmed strings.
func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		s, _ := toString(e)
		out = append(out, s)
	}
	return out
}

// intList reads answers given as a number, a numeric string or an array of
// those.
func intList(v any) []int {
	if list, ok := v.([]any); ok {
		var out []int
		for _, e := range list {
			if n, ok := toInt(e); ok {
				out = append(out, n)
			}
		}
		return out
	}
	if n, ok := toInt(v); ok {
		return []int{n}
	}
	return nil
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int(x), true
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n), true
		}
		if f, err := x.Float64(); err == nil && f == math.Trunc(f) {
			return int(f), true
		}
		return 0, false
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		return n, err == nil
	default:
		return 0, false
	}
}
