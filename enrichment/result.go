package enrichment

import (
	"fmt"
	"time"

	"github.com/poiesic/larder/core"
)

// Pass names one enrichment stage.
type Pass string

const (
	PassEmbed      Pass = "embed"
	PassCategorize Pass = "categorize"
	PassPrice      Pass = "price"
)

// Passes lists every pass in pipeline order.
var Passes = []Pass{PassEmbed, PassCategorize, PassPrice}

// ParsePass converts a name into a Pass.
func ParsePass(name string) (Pass, error) {
	for _, p := range Passes {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPass, name)
}

// outcome is what happened to one record during a pass.
type outcome int

const (
	// committed: the enrichment was written.
	outcomeCommitted outcome = iota
	// rejected: the model answered but the answer was discarded.
	outcomeRejected
	// failed: a provider, schema or store error; the record stays missing.
	outcomeFailed
	// skipped: the record was not processed this pass.
	outcomeSkipped
)

func (o outcome) String() string {
	switch o {
	case outcomeCommitted:
		return "committed"
	case outcomeRejected:
		return "rejected"
	case outcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// RecordError pairs a record with the reason it was not committed.
type RecordError struct {
	Id  core.ID
	Err error
}

// PassResult summarises one pass.
type PassResult struct {
	Pass Pass
	// Selected is how many records the store returned as missing the enrichment.
	Selected int
	// Eligible is how many selected records were processed.
	Eligible  int
	Committed int
	Rejected  int
	Failed    int
	Skipped   int
	// Ignored counts model answers that matched no selected record.
	Ignored  int
	Errors   []RecordError
	Duration time.Duration
}

func newPassResult(pass Pass) *PassResult {
	return &PassResult{Pass: pass}
}

// record tallies one per-record outcome. err is kept for rejected and failed records.
func (r *PassResult) record(id core.ID, o outcome, err error) {
	switch o {
	case outcomeCommitted:
		r.Committed++
	case outcomeRejected:
		r.Rejected++
	case outcomeFailed:
		r.Failed++
	case outcomeSkipped:
		r.Skipped++
	}
	if err != nil && (o == outcomeRejected || o == outcomeFailed) {
		r.Errors = append(r.Errors, RecordError{Id: id, Err: err})
	}
}

// merge adds other's counts into r.
func (r *PassResult) merge(other *PassResult) {
	r.Selected += other.Selected
	r.Eligible += other.Eligible
	r.Committed += other.Committed
	r.Rejected += other.Rejected
	r.Failed += other.Failed
	r.Skipped += other.Skipped
	r.Ignored += other.Ignored
	r.Errors = append(r.Errors, other.Errors...)
	r.Duration += other.Duration
}

// LogAttrs returns the summary as slog key/value pairs.
func (r *PassResult) LogAttrs() []any {
	return []any{
		"selected", r.Selected,
		"eligible", r.Eligible,
		"committed", r.Committed,
		"rejected", r.Rejected,
		"failed", r.Failed,
		"skipped", r.Skipped,
		"ignored", r.Ignored,
		"duration", r.Duration,
	}
}
