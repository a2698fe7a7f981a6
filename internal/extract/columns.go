package extract

// Tracker carries the running postal heading while records are read in
// column-major order (each column top to bottom, columns left to right,
// pages in sequence). A postal group can be split by a page or column
// break, so the running value survives both: rows after a mid-column
// heading take the new heading until the next one appears in that
// column, and a new column or page starts with the value the previous
// one ended on.
type Tracker struct {
	current Heading
}

// NewTracker creates a tracker with no heading seen yet.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe records a postal heading encountered in the token stream.
func (t *Tracker) Observe(h Heading) {
	if h.IsZero() {
		return
	}
	t.current = h
}

// Current returns the heading in effect for the next record. Records
// seen before any heading get a zero heading and are dropped upstream.
func (t *Tracker) Current() Heading {
	return t.current
}

// Snapshot returns a copy of the tracker for a trial parsing pass.
func (t *Tracker) Snapshot() *Tracker {
	c := *t
	return &c
}

// Restore resets the tracker to a previously taken snapshot.
func (t *Tracker) Restore(s *Tracker) {
	*t = *s
}
