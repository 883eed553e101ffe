package loader

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/user/vrclog/internal/encoding"
)

// countPrinter renders line counts with thousands separators for the
// progress messages
var countPrinter = message.NewPrinter(language.Japanese)

// Session runs one load of one file on a worker goroutine and publishes
// typed events. It is single-shot: Start after the first call is a no-op,
// and a new load means a new session.
type Session struct {
	ID string

	path   string
	pipe   pipeline
	events chan Event

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	state State

	lastPercent int
	log         zerolog.Logger
}

func newSession(path string, pipe pipeline, log zerolog.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	return &Session{
		ID:     id,
		path:   path,
		pipe:   pipe,
		events: make(chan Event, 8),
		ctx:    ctx,
		cancel: cancel,
		log:    log.With().Str("session", id).Logger(),
	}
}

// Events is the channel the session publishes on. It closes once the
// session reaches a terminal state.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Path returns the file this session loads
func (s *Session) Path() string {
	return s.path
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start launches the worker. Only the first call does anything.
func (s *Session) Start() {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return
	}
	s.state = StateRunning
	s.mu.Unlock()

	s.log.Debug().Str("path", s.path).Msg("load started")
	go s.run()
}

// Cancel requests a cooperative stop. The worker notices at its next
// checkpoint and finishes silently, without a Failed or Completed event.
func (s *Session) Cancel() {
	s.cancel()
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) run() {
	defer close(s.events)
	defer s.cancel()
	// A fault inside splitting or extraction surfaces as Failed; it must
	// never take the process down with the worker.
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if s.ctx.Err() != nil {
			s.setState(StateCancelled)
			return
		}
		s.setState(StateFailed)
		s.log.Error().Interface("panic", r).Str("path", s.path).Msg("load panicked")
		s.send(Failed{SessionID: s.ID, Err: fmt.Errorf("load %s: %v", s.path, r)})
	}()

	result, err := s.load()
	if s.ctx.Err() != nil {
		s.setState(StateCancelled)
		s.log.Debug().Msg("load cancelled")
		return
	}
	if err != nil {
		s.setState(StateFailed)
		s.log.Error().Err(err).Str("path", s.path).Msg("load failed")
		s.send(Failed{SessionID: s.ID, Err: err})
		return
	}

	s.setState(StateCompleted)
	s.log.Info().
		Int("lines", len(result.Lines)).
		Int("records", len(result.Records)).
		Int64("bytes", result.Size).
		Msg("load completed")
	s.send(Completed{SessionID: s.ID, Result: result})
}

// load walks the pipeline: open, read, split, classify, extract, group.
// It returns the context error when cancelled at a checkpoint.
func (s *Session) load() (*Result, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, &encoding.ReadError{Path: s.path, Err: err}
	}
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}

	sizeMB := float64(info.Size()) / (1 << 20)
	s.progress(5, fmt.Sprintf("📂 ファイルを開いています... (%.1fMB)", sizeMB))
	s.progress(10, fmt.Sprintf("📖 ファイルを読み込み中... (%.1fMB)", sizeMB))

	percent := 10
	text, size, err := s.pipe.reader.Read(s.path, func(read, total int64) {
		if s.ctx.Err() != nil {
			return
		}
		percent += 2
		if percent <= 25 {
			s.progress(percent, fmt.Sprintf("📖 読み込み中... %d%%", percent))
		}
	})
	if err != nil {
		return nil, err
	}
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}

	s.progress(30, "📝 読み込み完了")
	s.progress(40, "🔄 行を解析中...")

	raws := encoding.SplitLines(text)
	lines := s.pipe.classifier.ClassifyAll(raws, 0, true)
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}

	s.progress(60, countPrinter.Sprintf("✅ %d 行を検出", len(lines)))
	s.progress(70, "📨 グループメッセージを抽出中...")

	extractor := s.pipe.newExtractor()
	records := extractor.Extract(text)
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}

	s.progress(90, fmt.Sprintf("🎉 %d 件のメッセージを検出", len(records)))
	s.progress(100, "✅ 読み込み完了")

	return &Result{
		Path:     s.path,
		Lines:    lines,
		Records:  records,
		Groups:   s.pipe.groups.OrganizeByGroup(records, nil),
		Size:     size,
		Failures: extractor.Failures(),
		Checkpoint: Checkpoint{
			Offset:  size,
			Lines:   len(lines),
			Tail:    tailText(text, tailOverlap),
			OpenRaw: openRaw(text),
		},
	}, nil
}

// progress publishes a band update, keeping the reported percent
// non-decreasing within the session
func (s *Session) progress(percent int, msg string) {
	if percent < s.lastPercent {
		return
	}
	s.lastPercent = percent
	s.send(Progress{SessionID: s.ID, Percent: percent, Message: msg})
}

// send never blocks a cancelled session on an abandoned channel
func (s *Session) send(ev Event) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

// openRaw returns the raw text of an unterminated final line, which a
// later append may extend
func openRaw(text string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return ""
	}
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		return text[i+1:]
	}
	return text
}
