package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultPoll is the fallback poll interval for filesystems that deliver
// no change events
const DefaultPoll = 3 * time.Second

// Change classifies what happened to the followed file
type Change int

const (
	// Appended means the file grew; read the tail from the checkpoint
	Appended Change = iota
	// Replaced means the file shrank or was recreated; reload from scratch
	Replaced
	// NewerFile means a more recent log appeared in the same directory
	NewerFile
)

func (c Change) String() string {
	switch c {
	case Appended:
		return "appended"
	case Replaced:
		return "replaced"
	case NewerFile:
		return "newer file"
	default:
		return "unknown"
	}
}

// Event is one observed change. Path is the affected file, which for
// NewerFile differs from the followed one.
type Event struct {
	Change Change
	Path   string
}

// Follower watches one log file for growth, combining directory change
// events with a ticker poll. Run blocks and should be started on its own
// goroutine; events arrive on Events until Close.
type Follower struct {
	path string
	dir  string
	poll time.Duration
	log  zerolog.Logger

	events  chan Event
	watcher *fsnotify.Watcher

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once

	lastSize int64
}

// NewFollower prepares a follower for path. A zero poll uses DefaultPoll.
func NewFollower(path string, poll time.Duration, log zerolog.Logger) (*Follower, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if poll <= 0 {
		poll = DefaultPoll
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(abs)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	var size int64
	if info, err := os.Stat(abs); err == nil {
		size = info.Size()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Follower{
		path:     abs,
		dir:      dir,
		poll:     poll,
		log:      log,
		events:   make(chan Event, 4),
		watcher:  watcher,
		ctx:      ctx,
		cancel:   cancel,
		lastSize: size,
	}, nil
}

// Events delivers observed changes
func (f *Follower) Events() <-chan Event {
	return f.events
}

// Path returns the followed file
func (f *Follower) Path() string {
	return f.path
}

// Run watches until Close. Call it on a goroutine.
func (f *Follower) Run() {
	f.wg.Add(1)
	defer f.wg.Done()

	ticker := time.NewTicker(f.poll)
	defer ticker.Stop()

	for {
		select {
		case <-f.ctx.Done():
			return

		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			f.handle(ev)

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.log.Warn().Err(err).Msg("watch error")

		case <-ticker.C:
			f.checkSize()
		}
	}
}

// Close stops the follower and releases the watcher. It is safe to call
// more than once.
func (f *Follower) Close() error {
	var err error
	f.closeOnce.Do(func() {
		f.cancel()
		err = f.watcher.Close()
		f.wg.Wait()
		close(f.events)
	})
	return err
}

func (f *Follower) handle(ev fsnotify.Event) {
	name := filepath.Clean(ev.Name)

	if name == f.path {
		// Some Windows writers surface appends as Chmod.
		write := ev.Has(fsnotify.Write) ||
			(runtime.GOOS == "windows" && ev.Has(fsnotify.Chmod))
		switch {
		case ev.Has(fsnotify.Create):
			f.lastSize = 0
			f.emit(Event{Change: Replaced, Path: f.path})
		case write:
			f.checkSize()
		case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
			f.lastSize = 0
		}
		return
	}

	if ev.Has(fsnotify.Create) {
		if ok, _ := filepath.Match(FilePattern, filepath.Base(name)); ok {
			f.log.Info().Str("path", name).Msg("newer log file appeared")
			f.emit(Event{Change: NewerFile, Path: name})
		}
	}
}

// checkSize compares the current size against the last observation and
// emits the matching change
func (f *Follower) checkSize() {
	info, err := os.Stat(f.path)
	if err != nil {
		return
	}

	size := info.Size()
	switch {
	case size > f.lastSize:
		f.lastSize = size
		f.emit(Event{Change: Appended, Path: f.path})
	case size < f.lastSize:
		f.lastSize = size
		f.emit(Event{Change: Replaced, Path: f.path})
	}
}

// emit delivers an event without ever wedging the watch loop: appends
// coalesce when the consumer is behind, the other changes wait.
func (f *Follower) emit(ev Event) {
	if ev.Change == Appended {
		select {
		case f.events <- ev:
		default:
		}
		return
	}

	select {
	case f.events <- ev:
	case <-f.ctx.Done():
	}
}
