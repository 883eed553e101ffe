package logformat

import (
	"strings"
	"testing"
)

func TestClassifyStructuredLine(t *testing.T) {
	c := NewClassifier(nil, 0)

	line := c.Classify("2024.01.15 10:30:45 Log - OnPlayerJoined Munou", 7, false)

	if line.Timestamp != "2024.01.15 10:30:45" {
		t.Fatalf("Timestamp = %q, want %q", line.Timestamp, "2024.01.15 10:30:45")
	}
	if line.Level != "Log" {
		t.Fatalf("Level = %q, want %q", line.Level, "Log")
	}
	if line.DisplayContent != "OnPlayerJoined Munou" {
		t.Fatalf("DisplayContent = %q, want %q", line.DisplayContent, "OnPlayerJoined Munou")
	}
	if line.Index != 7 {
		t.Fatalf("Index = %d, want 7", line.Index)
	}
	if line.Collapsed {
		t.Fatal("Collapsed = true, want false")
	}
}

func TestClassifyUnstructuredLine(t *testing.T) {
	c := NewClassifier(nil, 0)

	line := c.Classify("  stack trace at Foo.Bar()  ", 0, false)

	if line.Timestamp != "" || line.Level != "" {
		t.Fatalf("unstructured line got timestamp %q level %q", line.Timestamp, line.Level)
	}
	if line.DisplayContent != "stack trace at Foo.Bar()" {
		t.Fatalf("DisplayContent = %q, want trimmed raw line", line.DisplayContent)
	}
}

func TestDetectTagPriority(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Tag
	}{
		{"notification beats error", "2024.01.01 10:00:00 Error - Received Notification: <...>", TagNotification},
		{"notification marker is case sensitive", "something received notification here", TagNone},
		{"error", "2024.01.01 10:00:00 Log - Error in pipeline", TagError},
		{"exception counts as error", "NullReferenceException: oops", TagError},
		{"error beats warning", "Warning: error while loading", TagError},
		{"warning", "2024.01.01 10:00:00 Warning - low memory", TagWarning},
		{"debug", "[DEBUG] handshake", TagDebug},
		{"info", "info: connected", TagInfo},
		{"none", "plain line", TagNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectTag(tt.raw); got != tt.want {
				t.Fatalf("DetectTag(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestClassifyLongLineCollapse(t *testing.T) {
	c := NewClassifier(nil, 0)
	content := strings.Repeat("x", LongLineThreshold+50)
	raw := "2024.01.15 10:30:45 Log - " + content

	line := c.Classify(raw, 0, true)

	if !line.Collapsed {
		t.Fatal("Collapsed = false, want true")
	}
	want := strings.Repeat("x", LongLineThreshold) + ExpandMarker
	if line.DisplayContent != want {
		t.Fatalf("DisplayContent = %q, want truncated prefix with marker", line.DisplayContent)
	}
	if line.FullContent != content {
		t.Fatal("FullContent does not hold the original content")
	}
	if line.Content() != content {
		t.Fatal("Content() should return the full content for collapsed lines")
	}

	// Disabled collapsing leaves the line intact
	plain := c.Classify(raw, 0, false)
	if plain.Collapsed || plain.FullContent != "" {
		t.Fatal("collapsing applied with collapseLong=false")
	}
	if plain.DisplayContent != content {
		t.Fatal("DisplayContent should be the full content when not collapsing")
	}
}

func TestClassifyLongLineExactThreshold(t *testing.T) {
	c := NewClassifier(nil, 0)
	content := strings.Repeat("y", LongLineThreshold)

	line := c.Classify("2024.01.15 10:30:45 Log - "+content, 0, true)

	if line.Collapsed {
		t.Fatal("content of exactly the threshold length must not collapse")
	}
}

func TestClassifyAllPreservesOrder(t *testing.T) {
	c := NewClassifier(nil, 0)
	raws := []string{
		"2024.01.15 10:30:45 Log - first",
		"2024.01.15 10:30:46 Log - second",
		"2024.01.15 10:30:47 Log - third",
	}

	lines := c.ClassifyAll(raws, 10, false)

	if len(lines) != 3 {
		t.Fatalf("len = %d, want 3", len(lines))
	}
	for i, l := range lines {
		if l.Index != 10+i {
			t.Fatalf("lines[%d].Index = %d, want %d", i, l.Index, 10+i)
		}
	}
	if lines[0].DisplayContent != "first" || lines[2].DisplayContent != "third" {
		t.Fatal("order not preserved")
	}
}

func TestNewLineMatcherValidation(t *testing.T) {
	if _, err := NewLineMatcher("only (one) group"); err == nil {
		t.Fatal("expected error for pattern with wrong group count")
	}
	if _, err := NewLineMatcher("(bad"); err == nil {
		t.Fatal("expected error for invalid regex")
	}
	if _, err := NewLineMatcher(DefaultLinePattern); err != nil {
		t.Fatalf("default pattern rejected: %v", err)
	}
}
