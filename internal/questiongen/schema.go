package questiongen

import "github.com/mareeczka/test-generator-mvp/internal/llm"

// BatchSchema is the envelope every recovered batch must match before the
// per-type checks run. It is checked locally and never sent to a provider,
// since strict structured-output modes require an object at the root.
var BatchSchema = &llm.Schema{
	Name:        "question-batch",
	Description: "A batch of exam questions",
	Definition: map[string]any{
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"test_set": map[string]any{
					"type": []any{"string", "null"},
				},
				"question_number": map[string]any{
					"type": []any{"integer", "string", "null"},
				},
				"question_type": map[string]any{
					"type": "string",
					"enum": []any{"mcq", "input", "match", "sequence"},
				},
				"question_text": map[string]any{
					"type":      "string",
					"minLength": 1,
				},
				"question_options": map[string]any{
					"type": "array",
				},
				"options": map[string]any{
					"type": "array",
				},
			},
			"required": []any{"question_type", "question_text"},
		},
	},
}
