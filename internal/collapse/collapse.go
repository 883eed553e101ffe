// Package collapse folds consecutive similar log lines into collapsible
// group headers with a single forward pass.
package collapse

import (
	"regexp"

	"github.com/user/vrclog/pkg/logformat"
)

// DefaultThreshold is the minimum run length that collapses into a header
const DefaultThreshold = 3

var (
	tagPattern = regexp.MustCompile(`\[([\w\s]+)\]`)
	digitRuns  = regexp.MustCompile(`\d+`)
)

// Item is one entry of the collapsed sequence: either a standalone line
// or a group header wrapping a run of similar lines.
type Item interface {
	isItem()
}

// LineItem is a line emitted on its own
type LineItem struct {
	Line logformat.LogLine
}

func (LineItem) isItem() {}

// GroupHeader is a collapsed run. Members keep original order; Expanded
// starts false and is toggled by the consumer.
type GroupHeader struct {
	Key      Key
	Members  []logformat.LogLine
	Expanded bool
}

func (*GroupHeader) isItem() {}

// Title returns the header label: the bracketed tag for tag runs, or the
// generic repeated-message label for content runs
func (h *GroupHeader) Title() string {
	if h.Key.Tagged {
		return h.Key.Text
	}
	return "同じメッセージ"
}

// Key identifies a run. Tag keys come from a bracketed token in the raw
// line; content keys are a digit-normalized prefix of the content. The two
// kinds never compare equal, so a tagged line cannot extend a content run.
type Key struct {
	Tagged bool
	Text   string
}

// KeyFor derives the run key for a line. Digit runs collapse to a single
// placeholder so counters and timestamps do not break up a run.
func KeyFor(line logformat.LogLine) Key {
	if m := tagPattern.FindStringSubmatch(line.Raw); m != nil {
		return Key{Tagged: true, Text: m[1]}
	}

	content := line.DisplayContent
	if runes := []rune(content); len(runes) > 100 {
		content = string(runes[:100])
	}
	return Key{Text: digitRuns.ReplaceAllString(content, "N")}
}

// Collapse folds an already-filtered, already-classified line sequence.
// Runs of at least threshold lines with equal keys become one GroupHeader;
// shorter runs emit their members individually. Concatenating the output
// in order reproduces the input exactly.
func Collapse(lines []logformat.LogLine, threshold int) []Item {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	var items []Item
	var run []logformat.LogLine
	var key Key

	flush := func() {
		if len(run) == 0 {
			return
		}
		if len(run) >= threshold {
			items = append(items, &GroupHeader{Key: key, Members: run})
		} else {
			for _, l := range run {
				items = append(items, LineItem{Line: l})
			}
		}
		run = nil
	}

	for _, line := range lines {
		k := KeyFor(line)
		if len(run) > 0 && k == key {
			run = append(run, line)
			continue
		}
		flush()
		key = k
		run = append(run, line)
	}
	flush()

	return items
}

// Flatten restores the original line order from a collapsed sequence
func Flatten(items []Item) []logformat.LogLine {
	var lines []logformat.LogLine
	for _, item := range items {
		switch it := item.(type) {
		case LineItem:
			lines = append(lines, it.Line)
		case *GroupHeader:
			lines = append(lines, it.Members...)
		}
	}
	return lines
}
