package questiongen

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceRe         = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
)

// RecoverArray pulls a JSON array of objects out of free-form model output.
// Code fences are stripped and the text between the first '[' and the last
// ']' is parsed. If that fails, trailing commas before a closing bracket or
// brace are removed and the parse is tried once more. Returns nil when no
// array of objects can be recovered; that is an expected outcome.
func RecoverArray(raw string) []map[string]any {
	text := fenceRe.ReplaceAllString(raw, "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end <= start {
		return nil
	}
	body := text[start : end+1]

	if items, ok := decodeArray(body); ok {
		return items
	}
	if items, ok := decodeArray(trailingCommaRe.ReplaceAllString(body, "$1")); ok {
		return items
	}
	return nil
}

func decodeArray(s string) ([]map[string]any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, false
	}
	if dec.More() {
		return nil, false // "[...] and [...]"
	}

	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			return nil, false
		}
		out = append(out, obj)
	}
	return out, true
}

// toJSONValue converts decoded items back to plain JSON values for schema
// validation (json.Number becomes float64).
func toJSONValue(items []map[string]any) (any, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
