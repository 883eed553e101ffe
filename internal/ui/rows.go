package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/user/vrclog/internal/collapse"
	"github.com/user/vrclog/pkg/logformat"
	"github.com/user/vrclog/pkg/notify"
)

// previewRunes is how much of a notification message the list row shows
const previewRunes = 50

// rowKind discriminates what a display row stands for
type rowKind int

const (
	rowLine rowKind = iota
	rowRunHeader
	rowGroupHeader
	rowRecord
)

// row is one display row of either view. Line rows carry the classified
// line; run headers point at their fold so toggling survives the row
// slice being rebuilt. Group headers and record rows belong to the
// notification view.
type row struct {
	kind   rowKind
	line   logformat.LogLine
	header *collapse.GroupHeader
	group  *notify.Group
	record notify.Record
	member bool // line row shown under an expanded run header
}

// buildLogRows lays out the fold items of the log view as display rows.
// Expanded run headers contribute their members as indented line rows.
func buildLogRows(items []collapse.Item) []row {
	var rows []row
	for _, item := range items {
		switch it := item.(type) {
		case collapse.LineItem:
			rows = append(rows, row{kind: rowLine, line: it.Line})
		case *collapse.GroupHeader:
			rows = append(rows, row{kind: rowRunHeader, header: it})
			if it.Expanded {
				for _, member := range it.Members {
					rows = append(rows, row{kind: rowLine, line: member, member: true})
				}
			}
		}
	}
	return rows
}

// buildNotifRows lays out the notification view: group headers ordered by
// member count, record rows newest first under expanded headers. A query
// narrows record rows by message text, case-insensitively, and hides
// groups with no matches at all.
func buildNotifRows(groups []*notify.Group, expanded map[string]bool, query string) []row {
	ordered := make([]*notify.Group, len(groups))
	copy(ordered, groups)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Members) > len(ordered[j].Members)
	})

	q := strings.ToLower(query)
	var rows []row
	for _, g := range ordered {
		members := g.Members
		if q != "" {
			members = nil
			for _, rec := range g.Members {
				if strings.Contains(strings.ToLower(rec.Message), q) {
					members = append(members, rec)
				}
			}
			if len(members) == 0 {
				continue
			}
		}

		rows = append(rows, row{kind: rowGroupHeader, group: g})
		if !expanded[g.ID] {
			continue
		}

		recent := make([]notify.Record, len(members))
		copy(recent, members)
		sort.SliceStable(recent, func(i, j int) bool {
			return recent[i].ReceivedAt > recent[j].ReceivedAt
		})
		for _, rec := range recent {
			rows = append(rows, row{kind: rowRecord, group: g, record: rec})
		}
	}
	return rows
}

// recordPreview flattens a message to one list row: the first 50 runes,
// newlines replaced by spaces, with an ellipsis when truncated
func recordPreview(message string) string {
	runes := []rune(message)
	preview := message
	if len(runes) > previewRunes {
		preview = string(runes[:previewRunes]) + "..."
	}
	return strings.ReplaceAll(preview, "\n", " ")
}

// expandMark returns the fold indicator for a header row
func expandMark(expanded bool) string {
	if expanded {
		return "▼"
	}
	return "▶"
}

// rowText renders a row without color, used for the selected row so the
// selection background covers the whole line
func (m *Model) rowText(r row) string {
	switch r.kind {
	case rowRunHeader:
		return m.numberPad() + fmt.Sprintf("%s [%s] 📁 %d 件のログ（クリックで展開）",
			expandMark(r.header.Expanded), r.header.Title(), len(r.header.Members))

	case rowGroupHeader:
		return fmt.Sprintf("%s %s (%d)",
			expandMark(m.expandedGroups[r.group.ID]), r.group.DisplayName, len(r.group.Members))

	case rowRecord:
		return "  " + r.record.ReceivedAt + "  " + recordPreview(r.record.Message)

	default:
		return m.lineNumber(r) + m.lineIndent(r) + m.plain.Render(r.line)
	}
}

// rowView renders a row with its tag and header colors
func (m *Model) rowView(r row) string {
	switch r.kind {
	case rowRunHeader:
		return m.styles.lineNumber.Render(m.numberPad()) +
			m.styles.runHeader.Render(fmt.Sprintf("%s [%s] 📁 %d 件のログ（クリックで展開）",
				expandMark(r.header.Expanded), r.header.Title(), len(r.header.Members)))

	case rowGroupHeader:
		return m.styles.groupHeader.Render(fmt.Sprintf("%s %s (%d)",
			expandMark(m.expandedGroups[r.group.ID]), r.group.DisplayName, len(r.group.Members)))

	case rowRecord:
		return "  " + m.styles.date.Render(r.record.ReceivedAt) + "  " +
			m.styles.preview.Render(recordPreview(r.record.Message))

	default:
		return m.styles.lineNumber.Render(m.lineNumber(r)) + m.lineIndent(r) + m.renderer.Render(r.line)
	}
}

// lineNumber returns the numbering prefix for a line row, or nothing when
// numbering is off
func (m *Model) lineNumber(r row) string {
	if !m.cfg.Display.ShowLineNumbers {
		return ""
	}
	return fmt.Sprintf("%6d ", r.line.Index+1)
}

// numberPad aligns header rows with numbered line rows
func (m *Model) numberPad() string {
	if !m.cfg.Display.ShowLineNumbers {
		return ""
	}
	return strings.Repeat(" ", 7)
}

func (m *Model) lineIndent(r row) string {
	if r.member {
		return "  "
	}
	return ""
}

// materialize refreshes the styled-row cache over the buffered window
// range. Scrolls that stay inside the buffer reuse the previous render.
func (m *Model) materialize() {
	w := m.activeWindow()
	rows := m.activeRows()
	w.SetTotal(len(rows))

	rng, changed := w.Recompute()
	if !changed && !m.rowsDirty {
		return
	}

	cache := make([]string, rng.Len())
	for i := rng.Start; i < rng.End; i++ {
		cache[i-rng.Start] = m.rowView(rows[i])
	}
	m.rowCache = cache
	m.cacheRange = rng
	m.rowsDirty = false
}
