package source

import "github.com/user/vrclog/pkg/logformat"

// Provider is the core abstraction for accessing classified lines.
// The collapser and the window only interact with this interface.
type Provider interface {
	// LineCount returns the total number of lines
	LineCount() int

	// Line returns the line at index (0-based) and whether it exists
	Line(index int) (logformat.LogLine, bool)

	// Lines returns up to count lines starting at start
	Lines(start, count int) []logformat.LogLine
}

// MemoryProvider serves the classified lines of one completed load. The
// loader builds it off the foreground loop and hands it over whole; after
// that only the foreground touches it, so there is no locking here.
type MemoryProvider struct {
	lines []logformat.LogLine
}

// NewMemoryProvider wraps a classified line slice
func NewMemoryProvider(lines []logformat.LogLine) *MemoryProvider {
	return &MemoryProvider{lines: lines}
}

// LineCount returns the total number of lines
func (p *MemoryProvider) LineCount() int {
	return len(p.lines)
}

// Line returns the line at index
func (p *MemoryProvider) Line(index int) (logformat.LogLine, bool) {
	if index < 0 || index >= len(p.lines) {
		return logformat.LogLine{}, false
	}
	return p.lines[index], true
}

// Lines returns up to count lines starting at start
func (p *MemoryProvider) Lines(start, count int) []logformat.LogLine {
	if start < 0 {
		start = 0
	}
	if start >= len(p.lines) || count <= 0 {
		return nil
	}
	end := start + count
	if end > len(p.lines) {
		end = len(p.lines)
	}
	return p.lines[start:end]
}

// Append adds lines from an incremental tail reload
func (p *MemoryProvider) Append(lines []logformat.LogLine) {
	p.lines = append(p.lines, lines...)
}

// ReplaceLast overwrites the final line. Tail reloads use this when an
// append extends a line that previously ended without a newline.
func (p *MemoryProvider) ReplaceLast(line logformat.LogLine) {
	if len(p.lines) == 0 {
		return
	}
	p.lines[len(p.lines)-1] = line
}

// ExpandLine clears the collapsed state of the line at the original index,
// promoting its full content for display
func (p *MemoryProvider) ExpandLine(index int) bool {
	if index < 0 || index >= len(p.lines) {
		return false
	}
	l := &p.lines[index]
	if !l.Collapsed {
		return false
	}
	l.DisplayContent = l.FullContent
	l.FullContent = ""
	l.Collapsed = false
	return true
}
