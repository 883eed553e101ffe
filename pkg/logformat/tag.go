package logformat

import "strings"

// Tag classifies a line by its most significant marker
type Tag int

const (
	TagNone Tag = iota
	TagInfo
	TagDebug
	TagWarning
	TagError
	TagNotification
)

// String returns the display name for a tag
func (t Tag) String() string {
	switch t {
	case TagInfo:
		return "info"
	case TagDebug:
		return "debug"
	case TagWarning:
		return "warning"
	case TagError:
		return "error"
	case TagNotification:
		return "notification"
	default:
		return ""
	}
}

// NotificationMarker is the literal that identifies notification lines.
// Unlike the level markers it is matched case-sensitively.
const NotificationMarker = "Received Notification"

// DetectTag assigns at most one tag to a raw line, first match wins.
// The notification marker outranks everything; the level markers are
// checked as case-insensitive substrings in severity order.
func DetectTag(raw string) Tag {
	if strings.Contains(raw, NotificationMarker) {
		return TagNotification
	}

	lower := strings.ToLower(raw)

	if strings.Contains(lower, "error") || strings.Contains(lower, "exception") {
		return TagError
	}
	if strings.Contains(lower, "warning") {
		return TagWarning
	}
	if strings.Contains(lower, "debug") {
		return TagDebug
	}
	if strings.Contains(lower, "info") {
		return TagInfo
	}

	return TagNone
}
