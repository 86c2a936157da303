package questiongen

import (
	"strconv"
	"strings"
	"unicode"
)

// CheckAnswer compares a test taker's typed answer with q.
//
// Accepted forms:
//   - mcq: option letter ("b"), 1-based number ("2") or the option text
//   - input: the answer words, ignoring case and punctuation
//   - match: pairs "1-b, 2-a" (term number, option letter)
//   - sequence: option letters in order, "c a b" or "cab"
func CheckAnswer(answer string, q *Question) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}

	switch q.QuestionType {
	case TypeMCQ:
		idx, ok := parseChoice(answer, q.Options)
		if !ok {
			return false
		}
		for _, a := range q.Answers {
			if a == idx {
				return true
			}
		}
		return false

	case TypeInput:
		return normalizeWords(answer) == normalizeWords(q.Answer)

	case TypeMatch:
		got, ok := parsePairs(answer, len(q.QuestionOptions))
		if !ok || len(got) != len(q.Pairs) {
			return false
		}
		for _, p := range q.Pairs {
			if r, found := got[p[0]]; !found || r != p[1] {
				return false
			}
		}
		return true

	case TypeSequence:
		order, ok := parseLetters(answer, len(q.Options))
		if !ok || len(order) != len(q.Answers) {
			return false
		}
		for i := range order {
			if order[i] != q.Answers[i] {
				return false
			}
		}
		return true

	default:
		return false
	}
}

// AnswerKey formats the correct answer of q in the form CheckAnswer
// accepts.
func AnswerKey(q *Question) string {
	switch q.QuestionType {
	case TypeMCQ:
		keys := make([]string, 0, len(q.Answers))
		for _, a := range q.Answers {
			keys = append(keys, string(rune('a'+a)))
		}
		return strings.Join(keys, ", ")
	case TypeInput:
		return q.Answer
	case TypeMatch:
		pairs := make([]string, 0, len(q.Pairs))
		for _, p := range q.Pairs {
			pairs = append(pairs, strconv.Itoa(p[0]+1)+"-"+string(rune('a'+p[1])))
		}
		return strings.Join(pairs, ", ")
	case TypeSequence:
		keys := make([]string, 0, len(q.Answers))
		for _, a := range q.Answers {
			keys = append(keys, string(rune('a'+a)))
		}
		return strings.Join(keys, " ")
	default:
		return ""
	}
}

func parseChoice(s string, options []string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n - 1, n >= 1 && n <= len(options)
	}
	if len(s) == 1 {
		if i := letterIndex(rune(s[0])); i >= 0 && i < len(options) {
			return i, true
		}
	}
	for i, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), s) {
			return i, true
		}
	}
	return 0, false
}

// parsePairs reads "1-b, 2-a" into term index -> option index.
func parsePairs(s string, n int) (map[int]int, bool) {
	out := make(map[int]int)
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || unicode.IsSpace(r) }) {
		left, right, ok := strings.Cut(part, "-")
		if !ok {
			return nil, false
		}
		l, err := strconv.Atoi(left)
		if err != nil || l < 1 || l > n || len(right) != 1 {
			return nil, false
		}
		r := letterIndex(rune(right[0]))
		if r < 0 || r >= n {
			return nil, false
		}
		out[l-1] = r
	}
	return out, true
}

func parseLetters(s string, n int) ([]int, bool) {
	var out []int
	for _, r := range s {
		if unicode.IsSpace(r) || r == ',' {
			continue
		}
		i := letterIndex(r)
		if i < 0 || i >= n {
			return nil, false
		}
		out = append(out, i)
	}
	return out, true
}

func letterIndex(r rune) int {
	r = unicode.ToLower(r)
	if r < 'a' || r > 'z' {
		return -1
	}
	return int(r - 'a')
}

func normalizeWords(s string) string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if w = strings.TrimFunc(w, unicode.IsPunct); w != "" {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}
