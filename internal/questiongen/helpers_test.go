package questiongen

import (
	"context"
	"strings"
	"sync"

	"github.com/mareeczka/test-generator-mvp/internal/llm"
	"github.com/mareeczka/test-generator-mvp/internal/store"
)

const sampleFacts = `Photosynthesis takes place in the chloroplasts.
Chlorophyll absorbs light energy.
Plants release oxygen as a by-product.`

// validBatch is a well-formed reply with one mcq, one input and one match
// question. It only fills a batch whose slots ask for those types in that
// order; pipeline tests use slotReplies instead.
const validBatch = "```json\n" + `[
  {"test_set": "Bio", "question_number": 1, "question_type": "mcq",
   "question_text": "Where does photosynthesis take place?",
   "options": ["Chloroplasts", "Mitochondria", "Nucleus"], "answers": [0]},
  {"test_set": "Bio", "question_number": 2, "question_type": "input",
   "question_text": "Which pigment absorbs light?", "answer": "Chlorophyll."},
  {"test_set": "Bio", "question_number": 3, "question_type": "match",
   "question_text": "Match the term with its role.",
   "question_options": ["Chlorophyll", "Chloroplast", "Oxygen"],
   "options": ["Absorbs light energy.", "Hosts photosynthesis.", "Released as a by-product."],
   "answers": [[0, 0], [1, 1], [2, 2]]}
]` + "\n```"

// sampleItems holds one well-formed reply item per question type.
var sampleItems = map[QuestionType]string{
	TypeMCQ: `{"test_set": "Bio", "question_type": "mcq",
	  "question_text": "Where does photosynthesis take place?",
	  "options": ["Chloroplasts", "Mitochondria", "Nucleus"], "answers": [0]}`,
	TypeInput: `{"test_set": "Bio", "question_type": "input",
	  "question_text": "Which pigment absorbs light?", "answer": "Chlorophyll."}`,
	TypeMatch: `{"test_set": "Bio", "question_type": "match",
	  "question_text": "Match the term with its role.",
	  "question_options": ["Chlorophyll", "Chloroplast", "Oxygen"],
	  "options": ["Absorbs light energy.", "Hosts photosynthesis.", "Released as a by-product."],
	  "answers": [[0, 0], [1, 1], [2, 2]]}`,
	TypeSequence: `{"test_set": "Bio", "question_type": "sequence",
	  "question_text": "Order the stages of photosynthesis.",
	  "options": ["Light is absorbed.", "Water is split.", "Oxygen is released."]}`,
}

// batchReply is a well-formed reply filling types in order.
func batchReply(types []QuestionType) string {
	items := make([]string, len(types))
	for i, t := range types {
		items[i] = sampleItems[t]
	}
	return "```json\n[" + strings.Join(items, ",\n") + "]\n```"
}

// slotBatches returns the slot types of each batch a request for count
// questions is split into under testConfig's seed.
func slotBatches(count, batchSize int) [][]QuestionType {
	return Partition(Allocate(count, newRand(testConfig().Seed)), batchSize)
}

// slotReplies returns one accepted reply per batch of testRequest(count).
func slotReplies(count int) []string {
	var out []string
	for _, types := range slotBatches(count, testRequest(count).BatchSize) {
		out = append(out, batchReply(types))
	}
	return out
}

func seed(v uint64) *uint64 { return &v }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CallTimeout = 0
	cfg.Seed = seed(7)
	return cfg
}

func testRequest(count int) GenerationRequest {
	req := NewRequest(testConfig(), sampleFacts, "Bio", count)
	return req
}

func replies(texts ...string) []llm.MockResponse {
	out := make([]llm.MockResponse, len(texts))
	for i, s := range texts {
		out[i] = llm.TextResponse(s)
	}
	return out
}

// recordingEvents captures batch events; other EventRepo methods are not
// used by the pipeline.
type recordingEvents struct {
	store.EventRepo

	mu      sync.Mutex
	batches []store.BatchEventData
}

func (r *recordingEvents) AppendBatch(ctx context.Context, data store.BatchEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	r.batches = append(r.batches, data)
	return nil
}
