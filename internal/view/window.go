// Package view computes which slice of a large item collection should be
// materialized on screen. The window knows nothing about log formats or
// widgets; it maps a scroll fraction to a buffered index range.
package view

import "math"

// DefaultBuffer is the number of extra items materialized on each side of
// the visible range so small scrolls reuse already-rendered rows
const DefaultBuffer = 10

// MinCapacity is the smallest visible-item capacity a resize can produce
const MinCapacity = 10

// Range is a half-open item interval [Start, End)
type Range struct {
	Start int
	End   int
}

// Len returns the number of items in the range
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether the item index falls inside the range
func (r Range) Contains(index int) bool {
	return index >= r.Start && index < r.End
}

// Window tracks scroll position over a virtual item collection. Position
// is a fraction in [0, 1] so it survives total-count changes, the way a
// scrollbar thumb does.
type Window struct {
	total    int
	capacity int
	buffer   int
	fraction float64

	last     Range
	haveLast bool
}

// NewWindow creates a window with the given visible capacity
func NewWindow(capacity int) *Window {
	if capacity < MinCapacity {
		capacity = MinCapacity
	}
	return &Window{capacity: capacity, buffer: DefaultBuffer}
}

// SetTotal updates the item count the window ranges over
func (w *Window) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	w.total = total
}

// Total returns the current item count
func (w *Window) Total() int {
	return w.total
}

// Capacity returns the visible-item capacity
func (w *Window) Capacity() int {
	return w.capacity
}

// Fraction returns the current scroll fraction
func (w *Window) Fraction() float64 {
	return w.fraction
}

// SetBuffer adjusts how many extra items are materialized on each side
// of the visible range
func (w *Window) SetBuffer(n int) {
	if n < 0 {
		n = 0
	}
	w.buffer = n
}

// SetFraction moves the scroll position, clamped to [0, 1]
func (w *Window) SetFraction(f float64) {
	if f < 0 || math.IsNaN(f) {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	w.fraction = f
}

// Resize derives the visible capacity from a pixel-like extent and a
// per-item extent. Degenerate sizes fall back to MinCapacity.
func (w *Window) Resize(extent, perItem int) {
	capacity := MinCapacity
	if perItem > 0 && extent > 0 {
		capacity = extent / perItem
		if capacity < MinCapacity {
			capacity = MinCapacity
		}
	}
	w.capacity = capacity
}

// ScrollLines moves the anchor by delta items, positive toward the end
func (w *Window) ScrollLines(delta int) {
	maxStart := w.maxStart()
	if maxStart == 0 {
		w.fraction = 0
		return
	}
	anchor := w.anchor() + delta
	if anchor < 0 {
		anchor = 0
	}
	if anchor > maxStart {
		anchor = maxStart
	}
	w.fraction = float64(anchor) / float64(maxStart)
}

// ScrollPages moves by whole pages, positive toward the end
func (w *Window) ScrollPages(pages int) {
	step := w.capacity - 1
	if step < 1 {
		step = 1
	}
	w.ScrollLines(pages * step)
}

// GotoTop jumps to the first item
func (w *Window) GotoTop() {
	w.fraction = 0
}

// GotoBottom jumps so the last item is visible
func (w *Window) GotoBottom() {
	w.fraction = 1
}

// Recompute maps the current fraction to a buffered range. The changed
// flag is false when the range equals the previous computation, letting
// the caller skip a re-render after movements too small to matter.
func (w *Window) Recompute() (Range, bool) {
	start := w.anchor() - w.buffer
	if start < 0 {
		start = 0
	}
	end := start + w.capacity + 2*w.buffer
	if end > w.total {
		end = w.total
	}

	r := Range{Start: start, End: end}
	if w.haveLast && r == w.last {
		return r, false
	}
	w.last = r
	w.haveLast = true
	return r, true
}

// Visible returns the unbuffered on-screen range for the current fraction
func (w *Window) Visible() Range {
	start := w.anchor()
	end := start + w.capacity
	if end > w.total {
		end = w.total
	}
	return Range{Start: start, End: end}
}

// SkippedAbove returns how many items precede the materialized range
func (w *Window) SkippedAbove() int {
	if !w.haveLast {
		return 0
	}
	return w.last.Start
}

// SkippedBelow returns how many items follow the materialized range
func (w *Window) SkippedBelow() int {
	if !w.haveLast {
		return 0
	}
	return w.total - w.last.End
}

// anchor is the unbuffered first visible index for the current fraction
func (w *Window) anchor() int {
	return int(math.Floor(w.fraction * float64(w.maxStart())))
}

func (w *Window) maxStart() int {
	maxStart := w.total - w.capacity
	if maxStart < 0 {
		return 0
	}
	return maxStart
}

// PercentScrolled reports reading progress for the status line
func (w *Window) PercentScrolled() float64 {
	if w.total == 0 {
		return 0
	}
	if w.total <= w.capacity {
		return 100
	}
	return w.fraction * 100
}
