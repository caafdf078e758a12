package domain_test

import (
	"testing"

	"segdesk/internal/modules/workflow/domain"
)

func TestMoveToClampsAndIsIdempotent(t *testing.T) {
	t.Parallel()
	c := domain.NewCursor(3)
	c.Place(10, domain.Selection{Position: 1})

	c.MoveTo(8)
	once := c
	c.MoveTo(8)
	if c != once {
		t.Fatalf("second MoveTo changed state: %+v vs %+v", c, once)
	}
	if c.Position() != 8 || !c.Window().Contains(8) {
		t.Fatalf("expected cursor 8 inside window, got %d %+v", c.Position(), c.Window())
	}

	c.MoveTo(42)
	if c.Position() != 10 {
		t.Fatalf("expected clamp to 10, got %d", c.Position())
	}
	c.MoveTo(-3)
	if c.Position() != 1 {
		t.Fatalf("expected clamp to 1, got %d", c.Position())
	}
}

func TestWindowShiftsByOne(t *testing.T) {
	t.Parallel()
	c := domain.NewCursor(3)
	c.Place(6, domain.Selection{Position: 3, WindowStart: 0})

	c.Advance()
	if w := c.Window(); w.Start != 1 || w.End != 4 {
		t.Fatalf("expected window to shift forward by one, got %+v", w)
	}
	c.Advance()
	if w := c.Window(); w.Start != 2 {
		t.Fatalf("expected window start 2, got %+v", w)
	}
	c.Retreat()
	c.Retreat()
	if w := c.Window(); w.Start != 2 || c.Position() != 3 {
		t.Fatalf("window must not move while cursor stays inside, got %+v pos=%d", w, c.Position())
	}
	c.Retreat()
	if w := c.Window(); w.Start != 1 || c.Position() != 2 {
		t.Fatalf("expected window to shift back by one, got %+v pos=%d", w, c.Position())
	}
}

func TestWindowLengthIsBoundedByQueue(t *testing.T) {
	t.Parallel()
	c := domain.NewCursor(5)
	c.Place(2, domain.Selection{Position: 2})
	if w := c.Window(); w.Len() != 2 || w.Start != 0 {
		t.Fatalf("expected window [0,2), got %+v", w)
	}
}

func TestAdvanceAtEndRaisesFinished(t *testing.T) {
	t.Parallel()
	c := domain.NewCursor(5)
	c.Place(5, domain.Selection{Position: 2})
	for i := 0; i < 3; i++ {
		if !c.Advance() {
			t.Fatalf("advance %d should move", i)
		}
	}
	if c.Position() != 5 || c.Finished() {
		t.Fatalf("expected cursor 5 not finished, got %d finished=%v", c.Position(), c.Finished())
	}
	if c.Advance() {
		t.Fatalf("advance at end must not move")
	}
	if c.Position() != 5 || !c.Finished() {
		t.Fatalf("expected cursor 5 finished, got %d finished=%v", c.Position(), c.Finished())
	}
	c.Retreat()
	if c.Finished() {
		t.Fatalf("moving away from the end clears finished")
	}
}

func TestEmptyCursorIgnoresMoves(t *testing.T) {
	t.Parallel()
	c := domain.NewCursor(5)
	c.Place(0, domain.Selection{})
	if c.MoveTo(3) || c.Advance() || c.Retreat() {
		t.Fatalf("moves on an empty queue must be no-ops")
	}
	if c.Position() != 0 || c.Finished() || c.Window().Len() != 0 {
		t.Fatalf("unexpected empty cursor state: %+v", c)
	}
}

func TestRebaseKeepsWindowStable(t *testing.T) {
	t.Parallel()
	c := domain.NewCursor(3)
	c.Place(9, domain.Selection{Position: 5, WindowStart: 3})
	c.Rebase(9, 5)
	if w := c.Window(); w.Start != 3 || c.Position() != 5 {
		t.Fatalf("rebase on same length must keep window, got %+v pos=%d", w, c.Position())
	}
	c.Rebase(4, 5)
	if c.Position() != 4 || !c.Window().Contains(4) {
		t.Fatalf("rebase on a shorter queue must clamp, got pos=%d %+v", c.Position(), c.Window())
	}
}
