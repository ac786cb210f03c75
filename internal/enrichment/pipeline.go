package enrichment

import (
	"context"
	"iter"

	"go.uber.org/zap"
)

// Pipeline deduplicates input and hands the unique set to a Runner.
type Pipeline struct {
	runner *Runner
	log    *zap.Logger
}

// NewPipeline creates a Pipeline over runner.
func NewPipeline(runner *Runner, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.L()
	}
	return &Pipeline{runner: runner, log: log}
}

// EnrichBulk enriches each distinct person once and returns the results that
// carry data and no error.
func (p *Pipeline) EnrichBulk(ctx context.Context, persons []Person) ([]Result, error) {
	unique := p.dedupe(persons)
	results, err := p.runner.Run(ctx, unique)

	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Data != nil && r.Err == nil {
			out = append(out, r)
		}
	}
	return out, err
}

// StreamBulk deduplicates persons and streams every outcome, including
// failures and misses.
func (p *Pipeline) StreamBulk(ctx context.Context, persons []Person) iter.Seq[Outcome] {
	return p.runner.Stream(ctx, p.dedupe(persons))
}

func (p *Pipeline) dedupe(persons []Person) []Person {
	unique := Dedupe(persons)
	p.log.Info("enrichment: starting bulk run",
		zap.Int("input", len(persons)),
		zap.Int("unique", len(unique)),
	)
	return unique
}
