package session

// tracker records which inbound messages have been fully applied so a
// message is never re-applied on repeated evaluations. It grows
// monotonically within a session and is owned by exactly one Session, so
// no locking discipline is required.
type tracker struct {
	seen map[string]struct{}
}

func newTracker() *tracker {
	return &tracker{seen: make(map[string]struct{})}
}

// shouldProcess returns true exactly once per id, recording it as
// processed on the first call.
func (t *tracker) shouldProcess(id string) bool {
	if _, ok := t.seen[id]; ok {
		return false
	}
	t.seen[id] = struct{}{}
	return true
}

// reset clears the recorded set.
func (t *tracker) reset() {
	t.seen = make(map[string]struct{})
}
