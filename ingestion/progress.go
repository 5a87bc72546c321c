package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports how many facets of a run have been processed.
type ProgressTracker struct {
	writer    io.Writer
	total     int
	current   int
	accepted  int
	startTime time.Time
	started   bool
	mu        sync.Mutex
}

// NewProgressTracker creates a new progress tracker.
// writer: where to write progress output (typically os.Stderr)
// total: number of facets in the run
func NewProgressTracker(writer io.Writer, total int) *ProgressTracker {
	return &ProgressTracker{
		writer: writer,
		total:  total,
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.current = 0
	p.accepted = 0
}

// Advance records one more processed facet and the running accepted count, then reports.
func (p *ProgressTracker) Advance(accepted int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current++
	if p.current > p.total {
		p.current = p.total
	}
	p.accepted = accepted
	p.report()
}

// Finish marks the run as complete and prints final progress.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current = p.total
	p.report()
	fmt.Fprintln(p.writer) // Print newline after final progress
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}

	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rFacets: %d/%d (%.1f%%) - %d books accepted - %s",
		p.current, p.total, percentage, p.accepted, time.Since(p.startTime).Round(time.Millisecond))
}
