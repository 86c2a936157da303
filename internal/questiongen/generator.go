package questiongen

import "context"

// Generator turns material text into facts and facts into questions.
type Generator interface {
	// ExtractFacts reduces text to short factual statements, one per line.
	ExtractFacts(ctx context.Context, text string) (string, error)

	// GenerateQuestions produces up to count questions from facts. A
	// shorter list is not an error; an error means the backend failed.
	GenerateQuestions(ctx context.Context, facts, testSet string, count int) ([]Question, error)
}
