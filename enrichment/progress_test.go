package enrichment

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Basic(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(PassEmbed, 40, &buf)

	tracker.Start()
	tracker.Add(&PassResult{Eligible: 20, Committed: 20})
	tracker.Add(&PassResult{Eligible: 20, Committed: 19, Failed: 1})

	assert.Equal(t, 39, tracker.Committed())
	assert.Greater(t, tracker.Elapsed(), time.Duration(0))

	output := buf.String()
	assert.Contains(t, output, "embed: 39/40 committed (97.5%), 40 processed")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(PassPrice, 3, &buf)

	tracker.Start()
	tracker.Add(&PassResult{Eligible: 3, Committed: 3})
	tracker.Finish()

	assert.Contains(t, buf.String(), "\nprice backfill complete: 3 committed of 3 in ")
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(PassCategorize, 0, &buf)

	tracker.Start()
	tracker.Finish()

	assert.Contains(t, buf.String(), "0/0 committed (0.0%)")
}

func TestProgressTracker_BeyondTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(PassEmbed, 10, &buf)

	tracker.Start()
	tracker.Add(&PassResult{Eligible: 15, Committed: 15})

	assert.Contains(t, buf.String(), "15/10 committed (100.0%)")
}

func TestProgressTracker_NilOutput(t *testing.T) {
	tracker := NewProgressTracker(PassEmbed, 5, nil)
	tracker.Start()
	tracker.Add(&PassResult{Eligible: 5, Committed: 5})
	tracker.Finish()
	assert.Equal(t, 5, tracker.Committed())
}
