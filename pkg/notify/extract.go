package notify

import "strings"

// Extractor pulls notification records out of whole-file log text.
// Individual malformed matches are skipped and tallied; the whole-text
// call itself never fails.
type Extractor struct {
	matcher    RecordMatcher
	classifier *Classifier
	failures   int
}

// NewExtractor creates an extractor. A nil matcher uses the default
// pattern; a nil classifier uses the default rule table.
func NewExtractor(matcher RecordMatcher, classifier *Classifier) *Extractor {
	if matcher == nil {
		matcher = DefaultRecordMatcher()
	}
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	return &Extractor{matcher: matcher, classifier: classifier}
}

// Extract scans text and returns every well-formed record in match order.
// Records with an empty message after unescaping are dropped silently;
// matches with missing fields increment the failure tally and extraction
// continues.
func (e *Extractor) Extract(text string) []Record {
	matches := e.matcher.FindAll(text)
	if len(matches) == 0 {
		return nil
	}

	records := make([]Record, 0, len(matches))
	for _, m := range matches {
		if m.ID == "" || m.ReceivedAt == "" || m.CreatedAt == "" {
			e.failures++
			continue
		}

		message := Unescape(m.Message)
		if strings.TrimSpace(message) == "" {
			continue
		}

		records = append(records, Record{
			ID:         m.ID,
			ReceivedAt: m.ReceivedAt,
			CreatedAt:  m.CreatedAt,
			Message:    message,
			GroupID:    e.classifier.GroupID(message),
		})
	}
	return records
}

// Failures returns how many matches were skipped as malformed since the
// extractor was created
func (e *Extractor) Failures() int {
	return e.failures
}

// Unescape resolves the literal escape sequences the log writer embeds in
// message fields
func Unescape(message string) string {
	message = strings.ReplaceAll(message, `\n`, "\n")
	message = strings.ReplaceAll(message, `\t`, "\t")
	message = strings.ReplaceAll(message, `\r`, "")
	message = strings.ReplaceAll(message, `\"`, `"`)
	return message
}
