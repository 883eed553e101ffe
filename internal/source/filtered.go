package source

import "github.com/user/vrclog/pkg/logformat"

// FilteredProvider wraps a Provider and hides lines per the level
// visibility flags and free-text query. The filtered index is rebuilt
// lazily on first access after a change.
type FilteredProvider struct {
	source Provider
	filter logformat.Filter

	// Cached original indices of lines that pass the filter
	filteredIndices []int
	dirty           bool
}

// NewFilteredProvider creates a filtered view with everything visible
func NewFilteredProvider(source Provider) *FilteredProvider {
	return &FilteredProvider{
		source: source,
		filter: logformat.Filter{Visibility: logformat.AllVisible()},
		dirty:  true,
	}
}

// SetVisibility replaces the level visibility flags
func (f *FilteredProvider) SetVisibility(vis logformat.Visibility) {
	f.filter.Visibility = vis
	f.dirty = true
}

// Visibility returns the current level visibility flags
func (f *FilteredProvider) Visibility() logformat.Visibility {
	return f.filter.Visibility
}

// SetQuery sets the free-text query; empty clears it
func (f *FilteredProvider) SetQuery(query string) {
	f.filter.Query = query
	f.dirty = true
}

// Query returns the current free-text query
func (f *FilteredProvider) Query() string {
	return f.filter.Query
}

// IsFiltered reports whether any filter is active
func (f *FilteredProvider) IsFiltered() bool {
	return f.filter.IsActive()
}

// MarkDirty forces an index rebuild on next access, e.g. after the
// underlying provider grew from a tail reload
func (f *FilteredProvider) MarkDirty() {
	f.dirty = true
}

// rebuildIndex rebuilds the filtered index if dirty
func (f *FilteredProvider) rebuildIndex() {
	if !f.dirty {
		return
	}

	f.filteredIndices = nil

	// No active filter: serve the source directly, no index needed
	if !f.filter.IsActive() {
		f.dirty = false
		return
	}

	total := f.source.LineCount()
	for i := 0; i < total; i++ {
		line, ok := f.source.Line(i)
		if !ok {
			continue
		}
		if f.filter.Show(line.Raw) {
			f.filteredIndices = append(f.filteredIndices, i)
		}
	}

	f.dirty = false
}

// LineCount returns the number of visible lines
func (f *FilteredProvider) LineCount() int {
	f.rebuildIndex()

	if !f.filter.IsActive() {
		return f.source.LineCount()
	}
	return len(f.filteredIndices)
}

// Line returns the visible line at filtered index
func (f *FilteredProvider) Line(index int) (logformat.LogLine, bool) {
	f.rebuildIndex()

	if !f.filter.IsActive() {
		return f.source.Line(index)
	}

	if index < 0 || index >= len(f.filteredIndices) {
		return logformat.LogLine{}, false
	}
	return f.source.Line(f.filteredIndices[index])
}

// Lines returns up to count visible lines starting at start
func (f *FilteredProvider) Lines(start, count int) []logformat.LogLine {
	f.rebuildIndex()

	if !f.filter.IsActive() {
		return f.source.Lines(start, count)
	}

	if start < 0 {
		start = 0
	}
	var lines []logformat.LogLine
	for i := start; i < start+count && i < len(f.filteredIndices); i++ {
		if line, ok := f.source.Line(f.filteredIndices[i]); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// All returns every visible line in order
func (f *FilteredProvider) All() []logformat.LogLine {
	return f.Lines(0, f.LineCount())
}

// OriginalIndex maps a filtered index back to the source line index,
// or -1 when out of range
func (f *FilteredProvider) OriginalIndex(filteredIndex int) int {
	f.rebuildIndex()

	if !f.filter.IsActive() {
		if filteredIndex < 0 || filteredIndex >= f.source.LineCount() {
			return -1
		}
		return filteredIndex
	}

	if filteredIndex < 0 || filteredIndex >= len(f.filteredIndices) {
		return -1
	}
	return f.filteredIndices[filteredIndex]
}
