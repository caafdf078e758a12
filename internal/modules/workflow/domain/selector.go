package domain

// Selection is the cursor position and window start chosen for a queue.
type Selection struct {
	Position    int
	WindowStart int
	FromAnchor  bool
}

// AutoSelect picks where a reviewer resumes. A non-zero anchor that names a
// member of segments wins; otherwise the first ready segment, else the last
// segment when everything is processed, else the first one.
func AutoSelect(segments []Segment, windowSize int, anchor int64) Selection {
	if len(segments) == 0 {
		return Selection{}
	}
	if anchor != 0 {
		for i, s := range segments {
			if s.ID == anchor {
				pos := i + 1
				return Selection{Position: pos, WindowStart: WindowStartFor(pos, len(segments), windowSize), FromAnchor: true}
			}
		}
	}

	pos := 0
	allProcessed := true
	for i, s := range segments {
		if s.Status == StatusReady {
			pos = i + 1
			break
		}
		if !s.Status.Terminal() {
			allProcessed = false
		}
	}
	switch {
	case pos > 0:
	case allProcessed:
		pos = len(segments)
	default:
		pos = 1
	}
	return Selection{Position: pos, WindowStart: WindowStartFor(pos, len(segments), windowSize)}
}

// WindowStartFor aligns the window to a page boundary containing pos and
// pulls it back so it never runs past the end of the queue.
func WindowStartFor(pos, total, windowSize int) int {
	if total == 0 || pos < 1 {
		return 0
	}
	if windowSize < 1 {
		windowSize = DefaultWindowSize
	}
	start := ((pos - 1) / windowSize) * windowSize
	return clampStart(start, total, windowLength(total, windowSize))
}

func windowLength(total, windowSize int) int {
	if total < windowSize {
		return total
	}
	return windowSize
}

func clampStart(start, total, length int) int {
	if limit := total - length; start > limit {
		start = limit
	}
	if start < 0 {
		start = 0
	}
	return start
}
