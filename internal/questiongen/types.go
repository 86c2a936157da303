package questiongen

import (
	"encoding/json"
	"fmt"
)

// QuestionType tags the variant of a Question.
type QuestionType string

const (
	TypeMCQ      QuestionType = "mcq"      // one correct option out of three
	TypeInput    QuestionType = "input"    // short free-text answer
	TypeMatch    QuestionType = "match"    // pair left terms with right descriptions
	TypeSequence QuestionType = "sequence" // order steps chronologically
)

// AllTypes lists every question type in prompt order.
var AllTypes = []QuestionType{TypeMCQ, TypeInput, TypeMatch, TypeSequence}

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case TypeMCQ, TypeInput, TypeMatch, TypeSequence:
		return true
	default:
		return false
	}
}

// expensive reports whether t is a multi-part type that the model gets
// wrong more often (match, sequence).
func (t QuestionType) expensive() bool {
	return t == TypeMatch || t == TypeSequence
}

// Question is a single generated exam question. Which fields are set
// depends on QuestionType:
//
//	mcq:      QuestionText, Options (3), Answers (one index)
//	input:    QuestionText, Answer
//	match:    QuestionText, QuestionOptions (left), Options (right), Pairs
//	sequence: QuestionText, Options (steps in order), Answers (0..n-1)
//
// On the wire both Answers and Pairs are carried by the "answers" field.
type Question struct {
	TestSet         string
	QuestionNumber  int
	QuestionType    QuestionType
	QuestionText    string
	QuestionOptions []string
	Options         []string
	Answers         []int
	Pairs           [][2]int
	Answer          string
}

// questionJSON is the wire form of Question.
type questionJSON struct {
	TestSet         string          `json:"test_set"`
	QuestionNumber  int             `json:"question_number"`
	QuestionType    QuestionType    `json:"question_type"`
	QuestionText    string          `json:"question_text"`
	QuestionOptions []string        `json:"question_options,omitempty"`
	Options         []string        `json:"options,omitempty"`
	Answers         json.RawMessage `json:"answers,omitempty"`
	Answer          string          `json:"answer,omitempty"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	w := questionJSON{
		TestSet:         q.TestSet,
		QuestionNumber:  q.QuestionNumber,
		QuestionType:    q.QuestionType,
		QuestionText:    q.QuestionText,
		QuestionOptions: q.QuestionOptions,
		Options:         q.Options,
		Answer:          q.Answer,
	}

	var answers any
	switch {
	case q.QuestionType == TypeMatch:
		answers = q.Pairs
	case q.Answers != nil:
		answers = q.Answers
	}
	if answers != nil {
		raw, err := json.Marshal(answers)
		if err != nil {
			return nil, err
		}
		w.Answers = raw
	}
	return json.Marshal(w)
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var w questionJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*q = Question{
		TestSet:         w.TestSet,
		QuestionNumber:  w.QuestionNumber,
		QuestionType:    w.QuestionType,
		QuestionText:    w.QuestionText,
		QuestionOptions: w.QuestionOptions,
		Options:         w.Options,
		Answer:          w.Answer,
	}
	if len(w.Answers) == 0 {
		return nil
	}
	if w.QuestionType == TypeMatch {
		if err := json.Unmarshal(w.Answers, &q.Pairs); err != nil {
			return fmt.Errorf("match answers: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(w.Answers, &q.Answers); err != nil {
		return fmt.Errorf("%s answers: %w", w.QuestionType, err)
	}
	return nil
}

// clone returns a deep copy of q.
func (q Question) clone() Question {
	c := q
	c.QuestionOptions = append([]string(nil), q.QuestionOptions...)
	c.Options = append([]string(nil), q.Options...)
	c.Answers = append([]int(nil), q.Answers...)
	c.Pairs = append([][2]int(nil), q.Pairs...)
	return c
}

// Result is the outcome of one generation request.
type Result struct {
	// Questions is the final list, numbered 1..len(Questions).
	Questions []Question `json:"questions"`

	// Batches reports what happened to every batch, dropped ones included.
	Batches []BatchReport `json:"batches"`

	// Requested is the count the caller asked for. len(Questions) may be
	// smaller when batches were exhausted.
	Requested int `json:"requested"`
}

// Dropped returns the number of batches that were exhausted.
func (r *Result) Dropped() int {
	n := 0
	for _, b := range r.Batches {
		if b.State == BatchExhausted {
			n++
		}
	}
	return n
}
