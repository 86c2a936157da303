package questiongen

import (
	"fmt"
	"strings"

	"github.com/mareeczka/test-generator-mvp/internal/llm"
)

// Validator checks a normalized question.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in error messages and logs.
	Name() string

	// Validate returns nil if q passes.
	Validate(q *Question) *ValidationError
}

// ValidateBatch turns a recovered batch into questions. The envelope is
// checked against BatchSchema, every element is normalized by its type and
// then run through validators. A single bad element rejects the batch.
// Empty test_set values are filled with testSet.
func ValidateBatch(items []map[string]any, testSet string, validators []Validator) ([]Question, *ValidationError) {
	if len(items) == 0 {
		return nil, &ValidationError{Validator: "schema", Message: "batch is empty", Index: -1}
	}

	doc, err := toJSONValue(items)
	if err != nil {
		return nil, &ValidationError{Validator: "schema", Message: err.Error(), Index: -1}
	}
	if err := llm.ValidateJSON(BatchSchema, doc); err != nil {
		return nil, &ValidationError{Validator: "schema", Message: err.Error(), Index: -1}
	}

	out := make([]Question, 0, len(items))
	for i, item := range items {
		q, verr := normalizeItem(item, testSet)
		if verr != nil {
			verr.Index = i
			return nil, verr
		}
		for _, v := range validators {
			if verr := v.Validate(&q); verr != nil {
				verr.Index = i
				return nil, verr
			}
		}
		out = append(out, q)
	}
	return out, nil
}

// checkSlots rejects a batch whose questions do not have the types the
// template asked for, slot by slot. start is the first slot's number.
func checkSlots(qs []Question, types []QuestionType, start int) *ValidationError {
	for i, q := range qs {
		if i < len(types) && q.QuestionType != types[i] {
			return &ValidationError{
				Validator: "slot",
				Message:   fmt.Sprintf("slot %d asks for %s, got %s", start+i, types[i], q.QuestionType),
				Index:     i,
			}
		}
	}
	return nil
}

func normalizeItem(item map[string]any, testSet string) (Question, *ValidationError) {
	qt := QuestionType(strings.ToLower(strings.TrimSpace(stringField(item, "question_type"))))
	q := Question{
		TestSet:      stringField(item, "test_set"),
		QuestionType: qt,
		QuestionText: stringField(item, "question_text"),
	}
	if q.TestSet == "" {
		q.TestSet = testSet
	}
	if n, ok := toInt(item["question_number"]); ok {
		q.QuestionNumber = n
	}
	if q.QuestionText == "" {
		return q, reject(qt, "question_text is empty")
	}

	var verr *ValidationError
	switch qt {
	case TypeMCQ:
		verr = normalizeMCQ(&q, item)
	case TypeInput:
		verr = normalizeInput(&q, item)
	case TypeMatch:
		verr = normalizeMatch(&q, item)
	case TypeSequence:
		verr = normalizeSequence(&q, item)
	default:
		verr = &ValidationError{Validator: "type", Message: fmt.Sprintf("unknown question_type %q", qt)}
	}
	return q, verr
}

func reject(qt QuestionType, format string, args ...any) *ValidationError {
	return &ValidationError{Validator: string(qt), Message: fmt.Sprintf(format, args...)}
}
