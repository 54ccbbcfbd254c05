package enrichment

import (
	"fmt"
	"io"
	"time"
)

// ProgressTracker reports backfill progress to a writer.
type ProgressTracker struct {
	pass      Pass
	total     int
	processed int
	committed int
	startTime time.Time
	output    io.Writer
}

// NewProgressTracker creates a tracker for total records of pass.
// A nil output silences reporting.
func NewProgressTracker(pass Pass, total int, output io.Writer) *ProgressTracker {
	return &ProgressTracker{
		pass:   pass,
		total:  total,
		output: output,
	}
}

// Start begins tracking.
func (p *ProgressTracker) Start() {
	p.startTime = time.Now()
	p.report()
}

// Add records a finished pass.
func (p *ProgressTracker) Add(result *PassResult) {
	p.processed += result.Eligible
	p.committed += result.Committed
	p.report()
}

// Finish marks tracking as complete and prints a summary.
func (p *ProgressTracker) Finish() {
	if p.output == nil {
		return
	}
	fmt.Fprintf(p.output, "\n%s backfill complete: %d committed of %d in %s\n",
		p.pass, p.committed, p.total, p.Elapsed().Round(time.Millisecond))
}

// Committed returns the number of committed records so far.
func (p *ProgressTracker) Committed() int {
	return p.committed
}

// Elapsed returns the time since Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

func (p *ProgressTracker) report() {
	if p.output == nil {
		return
	}
	percentage := 0.0
	if p.total > 0 {
		percentage = min(float64(p.committed)/float64(p.total)*100, 100)
	}
	fmt.Fprintf(p.output, "\r%s: %d/%d committed (%.1f%%), %d processed",
		p.pass, p.committed, p.total, percentage, p.processed)
}
