package questiongen

import (
	"regexp"
	"strings"
)

// bulletRe matches list markers a model puts in front of fact lines:
// "-", "*", "•", "1." and "1)".
var bulletRe = regexp.MustCompile(`^\s*(?:[-*•]+|\d+[.)])(?:\s+|$)`)

// normalizeFacts strips list markers, drops blank lines and removes
// repeated facts, keeping the first occurrence. Comparison ignores case.
func normalizeFacts(raw string) string {
	var (
		out  []string
		seen = make(map[string]bool)
	)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
