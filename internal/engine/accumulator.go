package engine

import (
	"sync"

	"github.com/blackwell-systems/repolens/internal/metrics"
	"github.com/blackwell-systems/repolens/internal/quality"
	"github.com/blackwell-systems/repolens/internal/security"
)

// accumulator owns the three aggregators of a run. A single mutex guards all
// of them so each per-file merge is observed as one step.
type accumulator struct {
	mu       sync.Mutex
	metrics  *metrics.Aggregator
	quality  *quality.Aggregator
	security *security.Aggregator
	analyzed int
	scanned  int
}

func newAccumulator() *accumulator {
	return &accumulator{
		metrics:  metrics.NewAggregator(),
		quality:  quality.NewAggregator(),
		security: security.NewAggregator(),
	}
}

// mergeAnalysis folds the line metrics and, when present, the quality record
// of one file. It returns how many files have been analyzed so far.
func (a *accumulator) mergeAnalysis(m metrics.Record, q *quality.Record) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.metrics.Merge(m)
	if q != nil {
		a.quality.Merge(*q)
	}
	a.analyzed++
	return a.analyzed
}

// mergeSecurity folds one scan result and returns how many files have been
// scanned so far.
func (a *accumulator) mergeSecurity(r security.Result) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.security.Merge(r)
	a.scanned++
	return a.scanned
}

// finalize computes every summary. Call it only after all workers returned.
func (a *accumulator) finalize() (metrics.Summary, quality.Summary, security.Summary) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.metrics.Summary(), a.quality.Summary(), a.security.Summary()
}
