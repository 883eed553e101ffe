// Package render styles parsed log lines and notification details for the
// terminal.
package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/vrclog/internal/config"
	"github.com/user/vrclog/pkg/logformat"
)

// Renderer styles one log line for display
type Renderer interface {
	Render(line logformat.LogLine) string
}

// TagRenderer colors lines by their classified tag. Truncated long lines
// use the dimmed collapsed color regardless of tag so the expand marker
// stands out as interactive.
type TagRenderer struct {
	styles    map[logformat.Tag]lipgloss.Style
	collapsed lipgloss.Style
}

// NewTagRenderer creates a renderer from the theme colors
func NewTagRenderer(theme *config.ThemeConfig) *TagRenderer {
	fg := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}

	return &TagRenderer{
		styles: map[logformat.Tag]lipgloss.Style{
			logformat.TagNone:         fg(theme.Foreground),
			logformat.TagDebug:        fg(theme.Levels.Debug),
			logformat.TagInfo:         fg(theme.Levels.Info),
			logformat.TagWarning:      fg(theme.Levels.Warning),
			logformat.TagError:        fg(theme.Levels.Error),
			logformat.TagNotification: fg(theme.Levels.Notification),
		},
		collapsed: fg(theme.Levels.Collapsed),
	}
}

// Render styles a line as "timestamp level - content" for structured lines
// or the display content alone for unstructured ones
func (r *TagRenderer) Render(line logformat.LogLine) string {
	style, ok := r.styles[line.Tag]
	if !ok {
		style = r.styles[logformat.TagNone]
	}
	if line.Collapsed {
		style = r.collapsed
	}
	return style.Render(lineText(line))
}

// PlainRenderer renders without styling
type PlainRenderer struct{}

// NewPlainRenderer creates a plain renderer
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// Render returns the line text as-is
func (r *PlainRenderer) Render(line logformat.LogLine) string {
	return lineText(line)
}

func lineText(line logformat.LogLine) string {
	if line.Timestamp == "" {
		return line.DisplayContent
	}
	return fmt.Sprintf("%s %s - %s", line.Timestamp, line.Level, line.DisplayContent)
}
