package collapse

import (
	"fmt"
	"strings"
	"testing"

	"github.com/user/vrclog/pkg/logformat"
)

func line(raw, content string) logformat.LogLine {
	return logformat.LogLine{Raw: raw, DisplayContent: content, FullContent: content}
}

func taggedLine(tag, content string) logformat.LogLine {
	raw := fmt.Sprintf("2023.01.15 10:30:45 Debug - [%s] %s", tag, content)
	return logformat.LogLine{Raw: raw, DisplayContent: content, FullContent: content}
}

func TestCollapseTaggedRun(t *testing.T) {
	var lines []logformat.LogLine
	for i := 0; i < 10; i++ {
		lines = append(lines, taggedLine("Foo", fmt.Sprintf("message %d", i)))
	}

	items := Collapse(lines, 3)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	header, ok := items[0].(*GroupHeader)
	if !ok {
		t.Fatalf("items[0] = %T, want *GroupHeader", items[0])
	}
	if len(header.Members) != 10 {
		t.Errorf("members = %d, want 10", len(header.Members))
	}
	if header.Title() != "Foo" {
		t.Errorf("title = %q, want %q", header.Title(), "Foo")
	}
	if header.Expanded {
		t.Error("new header should start collapsed")
	}
}

func TestCollapseShortRunStaysIndividual(t *testing.T) {
	lines := []logformat.LogLine{
		taggedLine("Foo", "first"),
		taggedLine("Foo", "second"),
	}

	items := Collapse(lines, 3)
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	for i, item := range items {
		if _, ok := item.(LineItem); !ok {
			t.Errorf("items[%d] = %T, want LineItem", i, item)
		}
	}
}

func TestCollapseThresholdBoundary(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		threshold int
		collapsed bool
	}{
		{"below threshold", 2, 3, false},
		{"at threshold", 3, 3, true},
		{"above threshold", 4, 3, true},
		{"threshold one collapses single", 1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lines []logformat.LogLine
			for i := 0; i < tt.count; i++ {
				lines = append(lines, taggedLine("Net", "ping"))
			}
			items := Collapse(lines, tt.threshold)
			_, isHeader := items[0].(*GroupHeader)
			if isHeader != tt.collapsed {
				t.Errorf("collapsed = %v, want %v", isHeader, tt.collapsed)
			}
		})
	}
}

func TestCollapseKindSeparation(t *testing.T) {
	// A bracketed tag and an identical content key must not join one run.
	lines := []logformat.LogLine{
		taggedLine("Behaviour", "update"),
		taggedLine("Behaviour", "update"),
		line("2023.01.15 10:30:45 Debug - Behaviour", "Behaviour"),
		line("2023.01.15 10:30:46 Debug - Behaviour", "Behaviour"),
	}

	items := Collapse(lines, 2)
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2 separate headers", len(items))
	}
	first := items[0].(*GroupHeader)
	second := items[1].(*GroupHeader)
	if !first.Key.Tagged || second.Key.Tagged {
		t.Errorf("key kinds = %v/%v, want tagged then content", first.Key.Tagged, second.Key.Tagged)
	}
}

func TestCollapseDigitNormalization(t *testing.T) {
	lines := []logformat.LogLine{
		line("plain", "Frame 1 dropped after 12ms"),
		line("plain", "Frame 23 dropped after 7ms"),
		line("plain", "Frame 904 dropped after 118ms"),
	}

	items := Collapse(lines, 3)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	header := items[0].(*GroupHeader)
	if header.Key.Text != "Frame N dropped after Nms" {
		t.Errorf("key = %q", header.Key.Text)
	}
	if header.Title() != "同じメッセージ" {
		t.Errorf("title = %q, want generic label", header.Title())
	}
}

func TestCollapseLossless(t *testing.T) {
	var lines []logformat.LogLine
	for i := 0; i < 5; i++ {
		lines = append(lines, taggedLine("Foo", fmt.Sprintf("a%d", i)))
	}
	lines = append(lines, line("one", "solo message"))
	for i := 0; i < 2; i++ {
		lines = append(lines, taggedLine("Bar", "b"))
	}
	for i := 0; i < 4; i++ {
		lines = append(lines, line("plain", "tick 42"))
	}

	items := Collapse(lines, 3)
	flat := Flatten(items)
	if len(flat) != len(lines) {
		t.Fatalf("flattened = %d lines, want %d", len(flat), len(lines))
	}
	for i := range lines {
		if flat[i].Raw != lines[i].Raw || flat[i].DisplayContent != lines[i].DisplayContent {
			t.Errorf("line %d changed by collapse round trip", i)
		}
	}
}

func TestKeyForLongContentPrefix(t *testing.T) {
	base := strings.Repeat("x", 100)
	a := line("plain", base+"left")
	b := line("plain", base+"right")

	if KeyFor(a) != KeyFor(b) {
		t.Error("lines differing only past the key prefix should share a run")
	}
}

func TestKeyForPrefersTag(t *testing.T) {
	l := taggedLine("Video Playback", "resolving URL 123")
	key := KeyFor(l)
	if !key.Tagged {
		t.Fatal("bracketed line should produce a tag key")
	}
	if key.Text != "Video Playback" {
		t.Errorf("key = %q, want %q", key.Text, "Video Playback")
	}
}
