package view

import "testing"

func TestWindowEmpty(t *testing.T) {
	w := NewWindow(50)
	r, changed := w.Recompute()
	if !changed {
		t.Error("first recompute should report a change")
	}
	if r.Start != 0 || r.End != 0 {
		t.Errorf("range = %+v, want empty", r)
	}
	if w.SkippedAbove() != 0 || w.SkippedBelow() != 0 {
		t.Errorf("skipped = %d/%d, want 0/0", w.SkippedAbove(), w.SkippedBelow())
	}
}

func TestWindowSmallerThanCapacity(t *testing.T) {
	w := NewWindow(50)
	w.SetTotal(5)
	r, _ := w.Recompute()
	if r.Start != 0 || r.End != 5 {
		t.Errorf("range = %+v, want [0, 5)", r)
	}
	if got := w.PercentScrolled(); got != 100 {
		t.Errorf("percent = %v, want 100", got)
	}
}

func TestWindowTopAndBottom(t *testing.T) {
	w := NewWindow(50)
	w.SetTotal(1000)

	r, _ := w.Recompute()
	if r.Start != 0 {
		t.Errorf("top start = %d, want 0", r.Start)
	}
	if r.End != 50+2*DefaultBuffer {
		t.Errorf("top end = %d, want %d", r.End, 50+2*DefaultBuffer)
	}

	w.GotoBottom()
	r, _ = w.Recompute()
	if r.End != 1000 {
		t.Errorf("bottom end = %d, want 1000", r.End)
	}
	if r.Start != 950-DefaultBuffer {
		t.Errorf("bottom start = %d, want %d", r.Start, 950-DefaultBuffer)
	}
	if w.SkippedBelow() != 0 {
		t.Errorf("skipped below = %d, want 0", w.SkippedBelow())
	}
}

func TestWindowMidFraction(t *testing.T) {
	w := NewWindow(50)
	w.SetTotal(1000)
	w.SetFraction(0.5)

	r, _ := w.Recompute()
	// maxStart 950, anchor 475, buffered by DefaultBuffer on both sides
	if r.Start != 465 {
		t.Errorf("start = %d, want 465", r.Start)
	}
	if r.End != 535 {
		t.Errorf("end = %d, want 535", r.End)
	}
	if w.SkippedAbove() != 465 {
		t.Errorf("skipped above = %d, want 465", w.SkippedAbove())
	}
	if w.SkippedBelow() != 465 {
		t.Errorf("skipped below = %d, want 465", w.SkippedBelow())
	}
}

func TestWindowRecomputeIdempotent(t *testing.T) {
	w := NewWindow(50)
	w.SetTotal(1000)
	w.SetFraction(0.5)

	first, changed := w.Recompute()
	if !changed {
		t.Fatal("first recompute should report a change")
	}
	second, changed := w.Recompute()
	if changed {
		t.Error("unchanged position should not report a change")
	}
	if first != second {
		t.Errorf("range drifted: %+v then %+v", first, second)
	}

	// A movement too small to shift the anchor must not invalidate rows.
	w.SetFraction(0.5005)
	if _, changed := w.Recompute(); changed {
		t.Error("sub-item fraction change should not report a change")
	}

	w.SetFraction(0.9)
	if _, changed := w.Recompute(); !changed {
		t.Error("large movement should report a change")
	}
}

func TestWindowSetFractionClamps(t *testing.T) {
	w := NewWindow(50)
	w.SetFraction(-0.4)
	if w.Fraction() != 0 {
		t.Errorf("fraction = %v, want 0", w.Fraction())
	}
	w.SetFraction(1.8)
	if w.Fraction() != 1 {
		t.Errorf("fraction = %v, want 1", w.Fraction())
	}
}

func TestWindowResize(t *testing.T) {
	tests := []struct {
		name    string
		extent  int
		perItem int
		want    int
	}{
		{"normal", 800, 20, 40},
		{"tiny extent", 50, 20, MinCapacity},
		{"zero per item", 400, 0, MinCapacity},
		{"zero extent", 0, 20, MinCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(50)
			w.Resize(tt.extent, tt.perItem)
			if w.Capacity() != tt.want {
				t.Errorf("capacity = %d, want %d", w.Capacity(), tt.want)
			}
		})
	}
}

func TestWindowScrollLines(t *testing.T) {
	w := NewWindow(50)
	w.SetTotal(1000)

	w.ScrollLines(5)
	r, _ := w.Recompute()
	if r.Start != 0 {
		t.Errorf("start = %d, buffered start should still clamp to 0", r.Start)
	}

	w.ScrollLines(100)
	r, _ = w.Recompute()
	if r.Start != 105-DefaultBuffer {
		t.Errorf("start = %d, want %d", r.Start, 105-DefaultBuffer)
	}

	w.ScrollLines(-10000)
	if w.Fraction() != 0 {
		t.Errorf("fraction = %v, want 0 after clamping", w.Fraction())
	}

	w.ScrollLines(10000)
	if w.Fraction() != 1 {
		t.Errorf("fraction = %v, want 1 after clamping", w.Fraction())
	}
}

func TestWindowScrollPages(t *testing.T) {
	w := NewWindow(50)
	w.SetTotal(1000)

	w.ScrollPages(1)
	r, _ := w.Recompute()
	// One page is capacity-1 items, minus the leading buffer.
	if r.Start != 49-DefaultBuffer {
		t.Errorf("start = %d, want %d", r.Start, 49-DefaultBuffer)
	}
}

func TestWindowScrollOnShortCollection(t *testing.T) {
	w := NewWindow(50)
	w.SetTotal(5)
	w.ScrollLines(3)
	if w.Fraction() != 0 {
		t.Errorf("fraction = %v, scrolling cannot move when everything fits", w.Fraction())
	}
}
