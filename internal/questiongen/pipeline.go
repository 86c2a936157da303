package questiongen

import (
	"context"

	"github.com/mareeczka/test-generator-mvp/internal/llm"
	"github.com/mareeczka/test-generator-mvp/internal/logger"
	"github.com/mareeczka/test-generator-mvp/internal/store"
)

// Pipeline turns facts into a numbered question list: allocate types,
// split into batches, run each batch through the retry controller in
// order, then trim and renumber.
type Pipeline struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
	events   store.EventRepo
}

// NewPipeline creates a Pipeline. events may be nil.
func NewPipeline(provider llm.Provider, cfg Config, log *logger.Logger, events store.EventRepo) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		provider: provider,
		config:   cfg.withDefaults(),
		log:      log,
		events:   events,
	}
}

// Run executes req. Exhausted batches shorten the result instead of
// failing it; an error means the backend itself failed.
func (p *Pipeline) Run(ctx context.Context, req GenerationRequest) (*Result, error) {
	if p.provider == nil {
		return nil, ErrModelUnavailable
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rng := newRand(req.Seed)
	types := Allocate(req.Count, rng)
	batches := Partition(types, req.BatchSize)

	log := p.log.With("test_set", req.TestSet, "count", req.Count)
	log.Info("generating questions", "batches", len(batches), "types", CountTypes(types))

	runner := &batchRunner{
		provider: p.provider,
		cfg:      p.config,
		req:      req,
		rng:      rng,
		log:      log,
		events:   p.events,
	}

	res := &Result{Requested: req.Count}
	start := 1
	for i, batch := range batches {
		report, qs, err := runner.run(ctx, i, batch, start)
		res.Batches = append(res.Batches, report)
		if err != nil {
			return res, err
		}
		res.Questions = append(res.Questions, qs...)
		start += len(batch)
	}

	res.Questions = finalize(res.Questions, req.Count, req.TestSet)
	log.Info("questions generated",
		"delivered", len(res.Questions), "dropped_batches", res.Dropped())
	return res, nil
}

// finalize truncates qs to count, renumbers it 1..n and stamps the
// request's test set on every question.
func finalize(qs []Question, count int, testSet string) []Question {
	if len(qs) > count {
		qs = qs[:count]
	}
	for i := range qs {
		qs[i].QuestionNumber = i + 1
		qs[i].TestSet = testSet
	}
	return qs
}
