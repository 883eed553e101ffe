package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vrclog/internal/encoding"
	"github.com/user/vrclog/pkg/notify"
)

const inviteLine = `2023.01.15 10:30:45 Debug - [API] Received Notification: <Notification from username:PlayerOne, sender user id:usr_aaa of type:invite, id: not_abc123, created at: 01/15/2023 10:29:00 UTC, details:{{}}, type:invite, m seen:False, message: "地震速報です">`

const barLine = `2023.01.15 11:00:00 Debug - [API] Received Notification: <Notification from username:PlayerTwo, sender user id:usr_bbb of type:invite, id: not_def456, created at: 01/15/2023 10:59:00 UTC, details:{{}}, type:invite, m seen:False, message: "開店しました">`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "output_log_test.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString(content)
	require.NoError(t, err)
}

func drain(s *Session) (progress []Progress, completed *Completed, failed *Failed) {
	for ev := range s.Events() {
		switch e := ev.(type) {
		case Progress:
			progress = append(progress, e)
		case Completed:
			completed = &e
		case Failed:
			failed = &e
		}
	}
	return progress, completed, failed
}

func TestSessionCompletes(t *testing.T) {
	content := "2023.01.15 10:30:44 Log - joining world\n" +
		inviteLine + "\n" +
		"2023.01.15 10:30:46 Warning - slow frame\n"
	path := writeLog(t, content)

	l := New(Options{}, zerolog.Nop())
	s := l.Load(path)
	progress, completed, failed := drain(s)

	require.Nil(t, failed)
	require.NotNil(t, completed)
	assert.Equal(t, s.ID, completed.SessionID)
	assert.Equal(t, StateCompleted, s.State())

	res := completed.Result
	require.Len(t, res.Lines, 3)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "not_abc123", res.Records[0].ID)
	assert.Equal(t, "group_earthquake", res.Records[0].GroupID)
	require.Len(t, res.Groups, 1)

	assert.Equal(t, int64(len(content)), res.Checkpoint.Offset)
	assert.Equal(t, 3, res.Checkpoint.Lines)
	assert.Empty(t, res.Checkpoint.OpenRaw)

	require.NotEmpty(t, progress)
	assert.Equal(t, 5, progress[0].Percent)
	assert.Equal(t, 100, progress[len(progress)-1].Percent)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i].Percent, progress[i-1].Percent,
			"progress must never move backwards")
	}
}

func TestSessionChunkedReadProgress(t *testing.T) {
	content := strings.Repeat("2023.01.15 10:30:45 Log - filler line\n", 60)
	path := writeLog(t, content)

	reader, err := encoding.NewReader(nil, 512, 256)
	require.NoError(t, err)

	l := New(Options{Reader: reader}, zerolog.Nop())
	progress, completed, _ := drain(l.Load(path))

	require.NotNil(t, completed)
	var chunked int
	for _, p := range progress {
		if p.Percent > 10 && p.Percent <= 25 {
			chunked++
		}
	}
	assert.Greater(t, chunked, 0, "chunked read should report between 10 and 25 percent")
	assert.Len(t, completed.Result.Lines, 60)
}

func TestSessionFailsOnMissingFile(t *testing.T) {
	l := New(Options{}, zerolog.Nop())
	s := l.Load(filepath.Join(t.TempDir(), "no_such_log.txt"))
	_, completed, failed := drain(s)

	require.Nil(t, completed)
	require.NotNil(t, failed)
	assert.Equal(t, StateFailed, s.State())

	var readErr *encoding.ReadError
	require.ErrorAs(t, failed.Err, &readErr)
}

type panicMatcher struct{}

func (panicMatcher) FindAll(string) []notify.Match {
	panic("matcher blew up")
}

func TestSessionFaultBecomesFailed(t *testing.T) {
	path := writeLog(t, inviteLine+"\n")
	l := New(Options{Matcher: panicMatcher{}}, zerolog.Nop())
	s := l.Load(path)
	_, completed, failed := drain(s)

	require.Nil(t, completed)
	require.NotNil(t, failed, "a fault in the pipeline must surface as Failed")
	assert.Equal(t, StateFailed, s.State())
	assert.Contains(t, failed.Err.Error(), path)
}

func TestSessionCancelledBeforeStartEmitsNothing(t *testing.T) {
	path := writeLog(t, "2023.01.15 10:30:45 Log - line\n")
	l := New(Options{}, zerolog.Nop())

	s := newSession(path, l.pipe, zerolog.Nop())
	s.Cancel()
	s.Start()

	var events int
	for range s.Events() {
		events++
	}
	assert.Zero(t, events, "cancelled session must stay silent")
	assert.Equal(t, StateCancelled, s.State())
}

func TestSessionStartTwice(t *testing.T) {
	path := writeLog(t, "2023.01.15 10:30:45 Log - line\n")
	l := New(Options{}, zerolog.Nop())

	s := newSession(path, l.pipe, zerolog.Nop())
	s.Start()
	s.Start()

	var completions int
	for ev := range s.Events() {
		if _, ok := ev.(Completed); ok {
			completions++
		}
	}
	assert.Equal(t, 1, completions)
}

func TestLoadCancelsPreviousSession(t *testing.T) {
	pathA := writeLog(t, "2023.01.15 10:30:45 Log - a\n")
	pathB := writeLog(t, "2023.01.15 10:30:45 Log - b\n")

	l := New(Options{}, zerolog.Nop())
	idle := newSession(pathA, l.pipe, zerolog.Nop())
	l.current = idle

	s := l.Load(pathB)
	require.Error(t, idle.ctx.Err(), "previous session must be cancelled")
	assert.Same(t, s, l.Current())

	_, completed, _ := drain(s)
	require.NotNil(t, completed)
	assert.NotEqual(t, idle.ID, s.ID)
}

func TestAppendNewLines(t *testing.T) {
	path := writeLog(t, "2023.01.15 10:30:45 Log - a\n2023.01.15 10:30:46 Log - b\n")
	l := New(Options{}, zerolog.Nop())
	_, completed, _ := drain(l.Load(path))
	require.NotNil(t, completed)
	cp := completed.Result.Checkpoint

	appendLog(t, path, "2023.01.15 10:30:47 Log - c\n"+inviteLine+"\n")

	delta, next, err := l.Append(path, cp, KnownIDs(completed.Result.Records))
	require.NoError(t, err)
	require.Nil(t, delta.Replace)
	require.Len(t, delta.Lines, 2)
	assert.Equal(t, 2, delta.Lines[0].Index)
	assert.Equal(t, 3, delta.Lines[1].Index)
	require.Len(t, delta.Records, 1)
	assert.Equal(t, "not_abc123", delta.Records[0].ID)
	assert.Equal(t, 4, next.Lines)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), next.Offset)
}

func TestAppendExtendsOpenLine(t *testing.T) {
	path := writeLog(t, "2023.01.15 10:30:45 Log - a\n2023.01.15 10:30:46 Log - part")
	l := New(Options{}, zerolog.Nop())
	_, completed, _ := drain(l.Load(path))
	require.NotNil(t, completed)

	cp := completed.Result.Checkpoint
	assert.Equal(t, "2023.01.15 10:30:46 Log - part", cp.OpenRaw)
	assert.Equal(t, 2, cp.Lines)

	appendLog(t, path, "ial\n2023.01.15 10:30:47 Log - next\n")

	delta, next, err := l.Append(path, cp, nil)
	require.NoError(t, err)
	require.NotNil(t, delta.Replace)
	assert.Equal(t, 1, delta.Replace.Index)
	assert.Equal(t, "partial", delta.Replace.DisplayContent)
	require.Len(t, delta.Lines, 1)
	assert.Equal(t, 2, delta.Lines[0].Index)
	assert.Equal(t, "next", delta.Lines[0].DisplayContent)
	assert.Equal(t, 3, next.Lines)
	assert.Empty(t, next.OpenRaw)
}

func TestAppendKeepsGrowingOpenLine(t *testing.T) {
	path := writeLog(t, "2023.01.15 10:30:45 Log - beg")
	l := New(Options{}, zerolog.Nop())
	_, completed, _ := drain(l.Load(path))
	require.NotNil(t, completed)

	appendLog(t, path, "in")
	delta, next, err := l.Append(path, completed.Result.Checkpoint, nil)
	require.NoError(t, err)
	require.NotNil(t, delta.Replace)
	assert.Equal(t, "begin", delta.Replace.DisplayContent)
	assert.Empty(t, delta.Lines)
	assert.Equal(t, 1, next.Lines)
	assert.Equal(t, "2023.01.15 10:30:45 Log - begin", next.OpenRaw)
}

func TestAppendDedupesOverlapRecords(t *testing.T) {
	path := writeLog(t, inviteLine+"\n")
	l := New(Options{}, zerolog.Nop())
	_, completed, _ := drain(l.Load(path))
	require.NotNil(t, completed)
	require.Len(t, completed.Result.Records, 1)

	appendLog(t, path, barLine+"\n")

	delta, _, err := l.Append(path, completed.Result.Checkpoint, KnownIDs(completed.Result.Records))
	require.NoError(t, err)
	require.Len(t, delta.Records, 1, "overlap rescan must not duplicate known records")
	assert.Equal(t, "not_def456", delta.Records[0].ID)
	assert.Equal(t, "group_bar", delta.Records[0].GroupID)
}

func TestAppendNoGrowth(t *testing.T) {
	path := writeLog(t, "2023.01.15 10:30:45 Log - a\n")
	l := New(Options{}, zerolog.Nop())
	_, completed, _ := drain(l.Load(path))
	require.NotNil(t, completed)

	delta, next, err := l.Append(path, completed.Result.Checkpoint, nil)
	require.NoError(t, err)
	assert.True(t, delta.Empty())
	assert.Equal(t, completed.Result.Checkpoint, next)
}

func TestAppendTruncatedFile(t *testing.T) {
	path := writeLog(t, "short\n")
	l := New(Options{}, zerolog.Nop())

	cp := Checkpoint{Offset: 1 << 20, Lines: 100}
	_, _, err := l.Append(path, cp, nil)
	require.ErrorIs(t, err, ErrTruncated)
}
