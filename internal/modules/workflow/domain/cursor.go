package domain

// Window is the half-open, 0-based index range [Start, End) of the queue
// rendered as selectable entries.
type Window struct {
	Start int
	End   int
}

func (w Window) Len() int { return w.End - w.Start }

// Contains reports whether a 1-based position is visible.
func (w Window) Contains(pos int) bool {
	return pos-1 >= w.Start && pos-1 < w.End
}

// Cursor tracks the open position over a queue of total entries and the
// window that keeps it visible. The window shifts instead of recentering.
type Cursor struct {
	pos      int
	start    int
	size     int
	total    int
	finished bool
}

func NewCursor(windowSize int) Cursor {
	if windowSize < 1 {
		windowSize = DefaultWindowSize
	}
	return Cursor{size: windowSize}
}

// Place positions the cursor from an AutoSelect result on a fresh queue.
func (c *Cursor) Place(total int, sel Selection) {
	c.total = total
	c.finished = false
	if total == 0 {
		c.pos, c.start = 0, 0
		return
	}
	c.pos = clampPos(sel.Position, total)
	c.start = clampStart(sel.WindowStart, total, c.length())
	c.follow()
}

// Rebase keeps the cursor on pos after the queue was refetched, shifting
// the existing window only as far as needed.
func (c *Cursor) Rebase(total, pos int) {
	c.total = total
	if total == 0 {
		c.pos, c.start, c.finished = 0, 0, false
		return
	}
	c.pos = clampPos(pos, total)
	c.start = clampStart(c.start, total, c.length())
	c.follow()
}

// MoveTo jumps to a 1-based position clamped to the queue bounds and reports
// whether the position changed.
func (c *Cursor) MoveTo(pos int) bool {
	if c.total == 0 {
		return false
	}
	pos = clampPos(pos, c.total)
	if pos == c.pos {
		return false
	}
	c.pos = pos
	c.finished = false
	c.follow()
	return true
}

// Advance moves forward one entry; on the last entry it raises the finished
// signal instead of moving.
func (c *Cursor) Advance() bool {
	if c.total == 0 {
		return false
	}
	if c.pos == c.total {
		c.finished = true
		return false
	}
	return c.MoveTo(c.pos + 1)
}

func (c *Cursor) Retreat() bool {
	return c.MoveTo(c.pos - 1)
}

func (c Cursor) Position() int { return c.pos }

func (c Cursor) Total() int { return c.total }

func (c Cursor) Finished() bool { return c.finished }

func (c Cursor) AtEnd() bool { return c.total > 0 && c.pos == c.total }

func (c Cursor) WindowSize() int { return c.size }

func (c Cursor) Window() Window {
	return Window{Start: c.start, End: c.start + c.length()}
}

func (c Cursor) length() int {
	return windowLength(c.total, c.size)
}

func (c *Cursor) follow() {
	idx := c.pos - 1
	length := c.length()
	if idx >= c.start+length {
		c.start = idx - length + 1
	}
	if idx < c.start {
		c.start = idx
	}
	c.start = clampStart(c.start, c.total, length)
}

func clampPos(pos, total int) int {
	if pos < 1 {
		return 1
	}
	if pos > total {
		return total
	}
	return pos
}
