package render

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// DetailRenderer renders expanded payloads: full notification messages and
// unfolded long lines. VRChat embeds JSON-ish fragments in both, so the
// first balanced {...} span gets syntax highlighting.
type DetailRenderer struct {
	syntaxTheme string
}

// NewDetailRenderer creates a detail renderer
func NewDetailRenderer() *DetailRenderer {
	return &DetailRenderer{syntaxTheme: "monokai"}
}

// Render returns text with any embedded payload highlighted. Text without
// a payload, and text chroma cannot process, comes back unchanged.
func (r *DetailRenderer) Render(text string) string {
	text = strings.ReplaceAll(text, "\r", "")

	start, end := payloadSpan(text)
	if start < 0 {
		return text
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, text[start:end], "json", "terminal16m", r.syntaxTheme); err != nil {
		return text
	}

	highlighted := strings.TrimRight(buf.String(), "\n")
	return text[:start] + highlighted + text[end:]
}

// payloadSpan finds the first balanced top-level brace span, or -1
func payloadSpan(text string) (int, int) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return -1, -1
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return start, i + 1
			}
		}
	}
	return -1, -1
}
