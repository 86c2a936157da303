package questiongen

import (
	"encoding/json"
	"fmt"
	"strings"
)

const systemPrompt = `You are an experienced teacher writing exam questions from study material.

Rules:
- Use only facts stated in the material. Never add outside knowledge.
- Reply with a single JSON array and nothing else. No prose, no markdown.
- Keep every field listed in the template. Do not change test_set, question_number or question_type.`

const factsInstructions = `Extract the facts from the text below.

Rules:
- Output only facts that are stated explicitly in the text.
- One short factual statement per line.
- No numbering, no headings, no commentary.`

// exampleFacts and exampleOutput form the worked example shown with every
// batch. The topic is deliberately unrelated to any real material.
const exampleFacts = `Photosynthesis takes place in the chloroplasts of plant cells.
Chlorophyll absorbs light energy.
Plants take in carbon dioxide through the stomata.
Light energy splits water molecules and releases oxygen.
Glucose is produced in the Calvin cycle.`

const exampleOutput = `[
  {"test_set": "Example", "question_number": 1, "question_type": "mcq",
   "question_text": "Where does photosynthesis take place?",
   "options": ["In the chloroplasts", "In the mitochondria", "In the cell nucleus"],
   "answers": [0]},
  {"test_set": "Example", "question_number": 2, "question_type": "input",
   "question_text": "Which pigment absorbs light energy?",
   "answer": "chlorophyll"},
  {"test_set": "Example", "question_number": 3, "question_type": "match",
   "question_text": "Match each term with its role in photosynthesis.",
   "question_options": ["Chlorophyll", "Stomata", "Calvin cycle"],
   "options": ["Absorbs light energy.", "Let carbon dioxide into the leaf.", "Produces glucose."],
   "answers": [[0, 0], [1, 1], [2, 2]]},
  {"test_set": "Example", "question_number": 4, "question_type": "sequence",
   "question_text": "Put the stages in the order they happen.",
   "options": ["Chlorophyll absorbs light", "Water molecules are split", "Oxygen is released", "Glucose is produced"],
   "answers": [0, 1, 2, 3]}
]`

// typeRules is the formatting rule for each question type.
var typeRules = map[QuestionType]string{
	TypeMCQ:      `"mcq": exactly 3 options, all different from each other, each at most 10 words; "answers" holds the index of the single correct option.`,
	TypeInput:    `"input": the answer is 1 to 3 words taken from the facts, without punctuation.`,
	TypeMatch:    `"match": "question_options" are terms, "options" are full-sentence descriptions in the same order as the terms; both lists have the same length.`,
	TypeSequence: `"sequence": "options" are steps listed in strict chronological order, at least 2 of them.`,
}

// BuildFactsPrompt renders the fact extraction prompt for text.
func BuildFactsPrompt(text string) string {
	var b strings.Builder
	b.WriteString(factsInstructions)
	b.WriteString("\n\nText:\n")
	b.WriteString(strings.TrimSpace(text))
	return b.String()
}

// BuildBatchPrompt renders the prompt for one batch. Slots are numbered
// from start regardless of how earlier batches went.
func BuildBatchPrompt(facts string, types []QuestionType, start int, testSet string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write %d exam questions based on the facts below.\n", len(types))

	b.WriteString("\nFormatting rules:\n")
	for _, t := range distinctTypes(types) {
		fmt.Fprintf(&b, "- %s\n", typeRules[t])
	}

	b.WriteString("\nExample facts:\n")
	b.WriteString(exampleFacts)
	b.WriteString("\n\nExample output:\n")
	b.WriteString(exampleOutput)

	b.WriteString("\n\nFacts:\n")
	b.WriteString(strings.TrimSpace(facts))

	b.WriteString("\n\nFill in this template and return it:\n")
	b.WriteString(batchTemplate(types, start, testSet))
	return b.String()
}

// templateSlot is one pre-filled entry of the output template.
type templateSlot struct {
	TestSet         string       `json:"test_set"`
	QuestionNumber  int          `json:"question_number"`
	QuestionType    QuestionType `json:"question_type"`
	QuestionText    string       `json:"question_text"`
	QuestionOptions []string     `json:"question_options,omitempty"`
	Options         []string     `json:"options,omitempty"`
	Answers         any          `json:"answers,omitempty"`
	Answer          *string      `json:"answer,omitempty"`
}

func batchTemplate(types []QuestionType, start int, testSet string) string {
	slots := make([]templateSlot, len(types))
	for i, t := range types {
		s := templateSlot{
			TestSet:        testSet,
			QuestionNumber: start + i,
			QuestionType:   t,
			QuestionText:   "",
		}
		switch t {
		case TypeMCQ:
			s.Options = []string{"", "", ""}
			s.Answers = []int{0}
		case TypeInput:
			empty := ""
			s.Answer = &empty
		case TypeMatch:
			s.QuestionOptions = []string{"", "", ""}
			s.Options = []string{"", "", ""}
			s.Answers = [][2]int{{0, 0}, {1, 1}, {2, 2}}
		case TypeSequence:
			s.Options = []string{"", "", "", ""}
			s.Answers = []int{0, 1, 2, 3}
		}
		slots[i] = s
	}

	// Strings and ints only; marshalling cannot fail.
	out, _ := json.MarshalIndent(slots, "", "  ")
	return string(out)
}

// distinctTypes returns the types present in ts in AllTypes order.
func distinctTypes(ts []QuestionType) []QuestionType {
	seen := CountTypes(ts)
	var out []QuestionType
	for _, t := range AllTypes {
		if seen[t] > 0 {
			out = append(out, t)
		}
	}
	return out
}
