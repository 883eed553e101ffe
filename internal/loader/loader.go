// Package loader turns a log file into classified lines, notification
// records and groups on a worker goroutine, publishing progress as typed
// events. It also serves incremental tail appends from a byte checkpoint
// so a growing file never forces a full re-read.
package loader

import (
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/user/vrclog/internal/encoding"
	"github.com/user/vrclog/pkg/logformat"
	"github.com/user/vrclog/pkg/notify"
)

// tailOverlap is how much already-consumed text is rescanned on an append
// so a record straddling the checkpoint is still found
const tailOverlap = 8 * 1024

// ErrTruncated reports a file now smaller than its checkpoint. The caller
// should fall back to a full load.
var ErrTruncated = errors.New("log file shrank below checkpoint")

// Checkpoint marks how far a file has been consumed. Offset is a raw byte
// position; Tail and OpenRaw carry decoded text needed to stitch the next
// append onto what was already produced.
type Checkpoint struct {
	Offset  int64
	Lines   int
	Tail    string
	OpenRaw string
}

// Delta is what one append produced. Replace, when non-nil, is the new
// form of the previously final line that the append extended; its Index
// names the line to overwrite.
type Delta struct {
	Replace  *logformat.LogLine
	Lines    []logformat.LogLine
	Records  []notify.Record
	Failures int
}

// Empty reports whether the append changed nothing visible
func (d *Delta) Empty() bool {
	return d.Replace == nil && len(d.Lines) == 0 && len(d.Records) == 0
}

// pipeline bundles the parsing dependencies shared by sessions and appends
type pipeline struct {
	reader     *encoding.Reader
	classifier *logformat.Classifier
	matcher    notify.RecordMatcher
	groups     *notify.Classifier
}

// newExtractor builds a fresh extractor so failure tallies stay scoped to
// one load or one append
func (p pipeline) newExtractor() *notify.Extractor {
	return notify.NewExtractor(p.matcher, p.groups)
}

// Options configures a Loader. Nil fields fall back to the defaults used
// for plain VRChat logs.
type Options struct {
	Reader     *encoding.Reader
	Classifier *logformat.Classifier
	Matcher    notify.RecordMatcher
	Groups     *notify.Classifier
}

// Loader owns at most one live session. Starting a load for a new file
// cancels whatever is still running, so the consumer only ever sees events
// from the newest session.
type Loader struct {
	pipe pipeline
	log  zerolog.Logger

	mu      sync.Mutex
	current *Session
}

// New creates a loader
func New(opts Options, log zerolog.Logger) *Loader {
	pipe := pipeline{
		reader:     opts.Reader,
		classifier: opts.Classifier,
		matcher:    opts.Matcher,
		groups:     opts.Groups,
	}
	if pipe.reader == nil {
		pipe.reader, _ = encoding.NewReader(nil, 0, 0)
	}
	if pipe.classifier == nil {
		pipe.classifier = logformat.NewClassifier(nil, 0)
	}
	if pipe.groups == nil {
		pipe.groups = notify.NewClassifier(nil)
	}
	return &Loader{pipe: pipe, log: log}
}

// Load cancels the current session, if any, and starts a fresh one for
// path. The returned session is already running.
func (l *Loader) Load(path string) *Session {
	l.mu.Lock()
	if l.current != nil {
		l.current.Cancel()
	}
	session := newSession(path, l.pipe, l.log)
	l.current = session
	l.mu.Unlock()

	session.Start()
	return session
}

// Cancel stops the current session, if one is running
func (l *Loader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current != nil {
		l.current.Cancel()
	}
}

// Current returns the most recently started session, or nil
func (l *Loader) Current() *Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Append reads whatever the file gained since the checkpoint and parses
// just that. Lines continue the previous numbering; records found in the
// rescanned overlap are dropped when their ID is already known. A file
// smaller than the checkpoint returns ErrTruncated.
func (l *Loader) Append(path string, cp Checkpoint, known map[string]struct{}) (*Delta, Checkpoint, error) {
	text, size, err := l.pipe.reader.ReadFrom(path, cp.Offset)
	if err != nil {
		return nil, cp, err
	}
	if size < cp.Offset {
		return nil, cp, ErrTruncated
	}
	if text == "" {
		return &Delta{}, cp, nil
	}

	endsNL := strings.HasSuffix(text, "\n")
	open := ""
	if !endsNL {
		open = openRaw(text)
	}

	parts := encoding.SplitLines(text)
	base := cp.Lines

	var replace *logformat.LogLine
	if cp.OpenRaw != "" && len(parts) > 0 {
		full := cp.OpenRaw + parts[0]
		line := l.pipe.classifier.Classify(full, base-1, true)
		replace = &line
		parts = parts[1:]
		if !endsNL && !strings.Contains(text, "\n") {
			open = cp.OpenRaw + text
		}
	}

	lines := l.pipe.classifier.ClassifyAll(parts, base, true)

	extractor := l.pipe.newExtractor()
	var fresh []notify.Record
	for _, record := range extractor.Extract(cp.Tail + text) {
		if _, seen := known[record.ID]; seen {
			continue
		}
		fresh = append(fresh, record)
	}

	next := Checkpoint{
		Offset:  size,
		Lines:   base + len(lines),
		Tail:    tailText(cp.Tail+text, tailOverlap),
		OpenRaw: open,
	}
	delta := &Delta{
		Replace:  replace,
		Lines:    lines,
		Records:  fresh,
		Failures: extractor.Failures(),
	}

	if !delta.Empty() {
		l.log.Debug().
			Str("path", path).
			Int("lines", len(lines)).
			Int("records", len(fresh)).
			Int64("offset", size).
			Msg("tail appended")
	}
	return delta, next, nil
}

// KnownIDs builds the dedupe set Append expects from records already held
func KnownIDs(records []notify.Record) map[string]struct{} {
	ids := make(map[string]struct{}, len(records))
	for _, r := range records {
		ids[r.ID] = struct{}{}
	}
	return ids
}

// tailText returns the last at most n bytes of text, starting on a rune
// boundary
func tailText(text string, n int) string {
	if len(text) <= n {
		return text
	}
	cut := len(text) - n
	for cut < len(text) && !utf8.RuneStart(text[cut]) {
		cut++
	}
	return text[cut:]
}
