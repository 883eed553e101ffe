package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/vrclog/internal/loader"
	"github.com/user/vrclog/internal/watch"
)

// sessionEventMsg wraps one loader event. The id lets Update drop events
// from a session that has been superseded.
type sessionEventMsg struct {
	id string
	ev loader.Event
}

// sessionDoneMsg reports that a session's event channel closed
type sessionDoneMsg struct {
	id string
}

// watchEventMsg wraps one change notice from a follower
type watchEventMsg struct {
	f  *watch.Follower
	ev watch.Event
}

// watchDoneMsg reports that a follower's event channel closed
type watchDoneMsg struct {
	f *watch.Follower
}

// appendResultMsg carries the outcome of one tail reload. gen ties the
// result to the load generation that scheduled it, so a full reload that
// started in the meantime invalidates it.
type appendResultMsg struct {
	gen   int
	delta *loader.Delta
	cp    loader.Checkpoint
	err   error
}

// listenSession receives the next event from a load session. Update
// re-issues it after each message so the channel drains one event per
// program tick.
func listenSession(s *loader.Session) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-s.Events()
		if !ok {
			return sessionDoneMsg{id: s.ID}
		}
		return sessionEventMsg{id: s.ID, ev: ev}
	}
}

// listenWatch receives the next change notice from a follower
func listenWatch(f *watch.Follower) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-f.Events()
		if !ok {
			return watchDoneMsg{f: f}
		}
		return watchEventMsg{f: f, ev: ev}
	}
}

// runFollower drives the follower's blocking loop on the program's
// command pool. It returns once the follower is closed.
func runFollower(f *watch.Follower) tea.Cmd {
	return func() tea.Msg {
		f.Run()
		return nil
	}
}
