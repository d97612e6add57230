package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(deltas ...string) (rule, followUp string) {
	sp := &splitter{}
	for _, d := range deltas {
		r, f := sp.feed(d)
		rule += r
		followUp += f
	}
	r, f := sp.flush()
	return rule + r, followUp + f
}

func TestSplitterMarkerInOneDelta(t *testing.T) {
	t.Parallel()

	rule, followUp := collect("# Rule\nbody\n<<<FOLLOW_UP>>>\nAll done.")
	assert.Equal(t, "# Rule\nbody", rule)
	assert.Equal(t, "All done.", followUp)
}

func TestSplitterMarkerAcrossDeltas(t *testing.T) {
	t.Parallel()

	rule, followUp := collect("# Rule\n<<<FOL", "LOW_", "UP>>>\nSaved.")
	assert.Equal(t, "# Rule\n", rule)
	assert.Equal(t, "Saved.", followUp)
}

func TestSplitterTrimsNewlineArrivingAfterMarker(t *testing.T) {
	t.Parallel()

	rule, followUp := collect("# Rule\nbody\n<<<FOLLOW_UP>>>", "\nAll done.")
	assert.Equal(t, "# Rule\nbody", rule)
	assert.Equal(t, "All done.", followUp)
}

func TestSplitterTrimsOnlyOneNewlineAfterMarker(t *testing.T) {
	t.Parallel()

	rule, followUp := collect("r\n<<<FOLLOW_UP>>>", "\n\nspaced out")
	assert.Equal(t, "r", rule)
	assert.Equal(t, "\nspaced out", followUp)
}

func TestSplitterNoMarker(t *testing.T) {
	t.Parallel()

	rule, followUp := collect("just ", "a rule")
	assert.Equal(t, "just a rule", rule)
	assert.Empty(t, followUp)
}

func TestSplitterHoldsOnlyPossibleMarkerPrefixes(t *testing.T) {
	t.Parallel()

	sp := &splitter{}
	rule, _ := sp.feed("plain text with no angle brackets")
	assert.Equal(t, "plain text with no angle brackets", rule)

	rule, _ = sp.feed(" trailing <<<")
	assert.Equal(t, " trailing ", rule)
	rule, _ = sp.flush()
	assert.Equal(t, "<<<", rule)
}

func TestSplitterFollowUpPassesThrough(t *testing.T) {
	t.Parallel()

	sp := &splitter{}
	sp.feed("r\n<<<FOLLOW_UP>>>\n")
	rule, followUp := sp.feed("tail with <<< inside")
	assert.Empty(t, rule)
	assert.Equal(t, "tail with <<< inside", followUp)
}
