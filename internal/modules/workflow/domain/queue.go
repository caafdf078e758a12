package domain

// Queue holds the ordered segments of one fetch generation. It is replaced
// wholesale on every fetch; positions are 1-based.
type Queue struct {
	segments   []Segment
	generation uint64
}

// Replace swaps in a freshly fetched segment list and bumps the generation.
func (q *Queue) Replace(segments []Segment) {
	cp := make([]Segment, len(segments))
	copy(cp, segments)
	q.segments = cp
	q.generation++
}

func (q *Queue) Reset() {
	q.segments = nil
	q.generation++
}

func (q *Queue) Len() int { return len(q.segments) }

func (q *Queue) Generation() uint64 { return q.generation }

// At returns the segment at a 1-based position.
func (q *Queue) At(pos int) (Segment, bool) {
	if pos < 1 || pos > len(q.segments) {
		return Segment{}, false
	}
	return q.segments[pos-1], true
}

// PositionOf resolves a segment id to its 1-based position, or 0.
func (q *Queue) PositionOf(id int64) int {
	for i, s := range q.segments {
		if s.ID == id {
			return i + 1
		}
	}
	return 0
}

// SetStatus mirrors a server-side transition on the local copy.
func (q *Queue) SetStatus(id int64, status Status) bool {
	pos := q.PositionOf(id)
	if pos == 0 {
		return false
	}
	q.segments[pos-1].Status = status
	return true
}

// Segments returns a copy safe to hand to renderers.
func (q *Queue) Segments() []Segment {
	cp := make([]Segment, len(q.segments))
	copy(cp, q.segments)
	return cp
}

// Counts tallies segments by status.
func (q *Queue) Counts() map[Status]int {
	out := make(map[Status]int, 4)
	for _, s := range q.segments {
		out[s.Status]++
	}
	return out
}
