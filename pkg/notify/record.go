// Package notify extracts structured notification records embedded in
// VRChat output logs and classifies them into topic groups.
package notify

// Record is one notification extracted from the log text
type Record struct {
	ID         string // unique per source match, e.g. "not_2f9c..."
	ReceivedAt string // log timestamp of the surrounding line
	CreatedAt  string // free-form source timestamp, never reparsed
	Message    string // unescaped, may contain newlines
	GroupID    string // computed topic id, never empty
}

// Group is a topic bucket of records. Members keep extraction order and
// are never re-sorted.
type Group struct {
	ID          string
	DisplayName string
	Members     []Record
}
