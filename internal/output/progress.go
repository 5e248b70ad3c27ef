package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Progress folds the per-stage counters of a concurrent run into one bar.
// Update may be called from several goroutines.
type Progress struct {
	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	totals map[string]int
	done   map[string]int
}

// NewProgress returns a bar writing to w. The maximum grows as stages
// report their totals.
func NewProgress(w io.Writer, description string) *Progress {
	if w == nil {
		w = io.Discard
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
	return &Progress{
		bar:    bar,
		totals: make(map[string]int),
		done:   make(map[string]int),
	}
}

// Update records that stage has finished done of total items.
func (p *Progress) Update(stage string, done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.totals[stage] != total {
		p.totals[stage] = total
		p.bar.ChangeMax(sum(p.totals))
	}
	// Completions can arrive out of order across workers.
	if done > p.done[stage] {
		p.done[stage] = done
	}
	_ = p.bar.Set(sum(p.done))
}

// Finish completes the bar.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Finish()
}

// Completed returns the number of items finished across all stages.
func (p *Progress) Completed() (done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return sum(p.done), sum(p.totals)
}

func sum(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}
