// Package ui implements the terminal front end: a log view with run
// folding and level filters, a notification view grouped by topic, and
// live tailing that folds file growth into both.
package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/user/vrclog/internal/collapse"
	"github.com/user/vrclog/internal/config"
	"github.com/user/vrclog/internal/loader"
	"github.com/user/vrclog/internal/prefs"
	"github.com/user/vrclog/internal/render"
	"github.com/user/vrclog/internal/source"
	"github.com/user/vrclog/internal/view"
	"github.com/user/vrclog/internal/watch"
	"github.com/user/vrclog/pkg/logformat"
	"github.com/user/vrclog/pkg/notify"
)

// Mode is the input mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeRename
)

// ViewKind selects which list fills the screen
type ViewKind int

const (
	ViewLogs ViewKind = iota
	ViewNotifications
)

// Deps are the long-lived collaborators the model drives
type Deps struct {
	Loader *loader.Loader
	Prefs  *prefs.Store
	Groups *notify.Classifier
	Log    zerolog.Logger
}

// Options control startup behavior
type Options struct {
	// Path is the log file to open. Empty starts with no file; a reopen
	// can pick one up later.
	Path string
	// Follow starts live tailing immediately
	Follow bool
}

// Model is the bubbletea application model
type Model struct {
	cfg  *config.Config
	deps Deps

	// Load state
	path        string
	filename    string
	session     *loader.Session
	loading     bool
	progressPct int
	progressMsg string
	checkpoint  loader.Checkpoint
	known       map[string]struct{}
	failures    int

	// Line state
	provider *source.MemoryProvider
	filtered *source.FilteredProvider
	items    []collapse.Item

	// Notification state
	records        []notify.Record
	groups         []*notify.Group
	expandedGroups map[string]bool
	notifQuery     string
	renameGroup    *notify.Group

	// Display state
	activeView  ViewKind
	mode        Mode
	logRows     []row
	notifRows   []row
	logWindow   *view.Window
	notifWindow *view.Window
	logCursor   int
	notifCursor int
	rowCache    []string
	cacheRange  view.Range
	rowsDirty   bool
	detailTitle string
	detailText  string
	status      string
	width       int
	height      int

	// Follow state
	follower     *watch.Follower
	following    bool
	autoFollow   bool
	appending    bool
	appendQueued bool
	appendGen    int

	renderer *render.TagRenderer
	plain    *render.PlainRenderer
	detail   *render.DetailRenderer
	styles   styles
	input    textinput.Model
	spin     spinner.Model
}

type styles struct {
	selected    lipgloss.Style
	runHeader   lipgloss.Style
	groupHeader lipgloss.Style
	lineNumber  lipgloss.Style
	date        lipgloss.Style
	preview     lipgloss.Style
	statusBar   lipgloss.Style
	search      lipgloss.Style
	help        lipgloss.Style
}

func newStyles(theme *config.ThemeConfig) styles {
	return styles{
		selected:    lipgloss.NewStyle().Background(lipgloss.Color(theme.Selected)).Foreground(lipgloss.Color(theme.Foreground)),
		runHeader:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.GroupHeader)),
		groupHeader: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.GroupHeader)).Bold(true),
		lineNumber:  lipgloss.NewStyle().Foreground(lipgloss.Color(theme.LineNumbers)),
		date:        lipgloss.NewStyle().Foreground(lipgloss.Color(theme.LineNumbers)),
		preview:     lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Levels.Notification)),
		statusBar:   lipgloss.NewStyle().Background(lipgloss.Color(theme.StatusBar)).Foreground(lipgloss.Color(theme.StatusBarText)),
		search:      lipgloss.NewStyle().Background(lipgloss.Color(theme.StatusBar)).Foreground(lipgloss.Color(theme.SearchMatch)),
		help:        lipgloss.NewStyle().Foreground(lipgloss.Color(theme.LineNumbers)),
	}
}

// NewModel creates the application model
func NewModel(cfg *config.Config, deps Deps, opts Options) *Model {
	ti := textinput.New()
	ti.Placeholder = "検索..."
	ti.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Info))

	logWindow := view.NewWindow(cfg.Display.MinVisible)
	logWindow.SetBuffer(cfg.Display.BufferLines)
	notifWindow := view.NewWindow(cfg.Display.MinVisible)
	notifWindow.SetBuffer(cfg.Display.BufferLines)

	m := &Model{
		cfg:            cfg,
		deps:           deps,
		path:           opts.Path,
		autoFollow:     opts.Follow,
		known:          make(map[string]struct{}),
		expandedGroups: make(map[string]bool),
		logWindow:      logWindow,
		notifWindow:    notifWindow,
		renderer:       render.NewTagRenderer(&cfg.Theme),
		plain:          render.NewPlainRenderer(),
		detail:         render.NewDetailRenderer(),
		styles:         newStyles(&cfg.Theme),
		input:          ti,
		spin:           sp,
		status:         "準備完了",
	}
	if opts.Path != "" {
		m.filename = filepath.Base(opts.Path)
	}
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick}
	if m.path != "" {
		cmds = append(cmds, m.startLoad(m.path))
		if m.autoFollow {
			if cmd := m.startFollow(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Two rows reserved for the status bar and help line
		m.logWindow.Resize(msg.Height-2, 1)
		m.notifWindow.Resize(msg.Height-2, 1)
		m.rowsDirty = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case sessionEventMsg:
		return m.handleSessionEvent(msg)

	case sessionDoneMsg:
		return m.handleSessionDone(msg)

	case watchEventMsg:
		return m.handleWatchEvent(msg)

	case watchDoneMsg:
		// A closed follower has nothing left to re-arm
		return m, nil

	case appendResultMsg:
		return m.handleAppendResult(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeSearch {
		return m.handleSearchKey(msg)
	}
	if m.mode == ModeRename {
		return m.handleRenameKey(msg)
	}

	key := msg.String()
	kb := &m.cfg.Keybindings

	switch {
	case hasKey(kb.Quit, key):
		m.stopFollow()
		m.deps.Loader.Cancel()
		return m, tea.Quit

	case key == "esc":
		m.handleEscape()

	case hasKey(kb.ScrollDown, key):
		m.moveCursor(1)
	case hasKey(kb.ScrollUp, key):
		m.moveCursor(-1)
	case hasKey(kb.PageDown, key):
		m.movePage(1)
	case hasKey(kb.PageUp, key):
		m.movePage(-1)
	case hasKey(kb.Top, key):
		m.setCursor(0)
		m.activeWindow().GotoTop()
	case hasKey(kb.Bottom, key):
		m.setCursor(len(m.activeRows()) - 1)
		m.activeWindow().GotoBottom()

	case hasKey(kb.Search, key):
		m.mode = ModeSearch
		m.input.Placeholder = "検索..."
		m.input.SetValue(m.activeQuery())
		m.input.Focus()
		return m, textinput.Blink

	case hasKey(kb.ToggleView, key):
		m.toggleView()

	case hasKey(kb.Expand, key):
		return m.activateRow()

	case hasKey(kb.Rename, key):
		return m.beginRename()

	case hasKey(kb.Follow, key):
		return m.toggleFollow()

	case hasKey(kb.Reopen, key):
		return m.reopenNewest()

	case hasKey(kb.ToggleError, key):
		m.toggleLevel(func(v *logformat.Visibility) { v.Error = !v.Error })
	case hasKey(kb.ToggleWarning, key):
		m.toggleLevel(func(v *logformat.Visibility) { v.Warning = !v.Warning })
	case hasKey(kb.ToggleDebug, key):
		m.toggleLevel(func(v *logformat.Visibility) { v.Debug = !v.Debug })
	case hasKey(kb.ToggleInfo, key):
		m.toggleLevel(func(v *logformat.Visibility) { v.Info = !v.Info })
	}

	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		query := m.input.Value()
		if m.activeView == ViewLogs {
			if m.filtered != nil {
				m.filtered.SetQuery(query)
				m.rebuildLogRows()
			}
		} else {
			m.notifQuery = query
			m.rebuildNotifRows()
		}
		m.setCursor(0)
		m.activeWindow().GotoTop()
		m.closeInput()
		return m, nil

	case "esc":
		m.closeInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(m.input.Value())
		if m.renameGroup != nil {
			if err := m.deps.Prefs.SetName(m.renameGroup.ID, name); err != nil {
				m.status = fmt.Sprintf("❌ エラー: %s", truncateRunes(err.Error(), 50))
			} else {
				m.reorganizeGroups()
				m.rebuildNotifRows()
				m.status = "グループ名を更新しました"
			}
		}
		m.closeInput()
		return m, nil

	case "esc":
		m.closeInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = ModeNormal
	m.renameGroup = nil
	m.input.Blur()
	m.input.SetValue("")
}

// handleEscape unwinds one layer: detail overlay, then the active query,
// then a running load
func (m *Model) handleEscape() {
	switch {
	case m.detailText != "":
		m.detailText = ""

	case m.activeView == ViewLogs && m.filtered != nil && m.filtered.Query() != "":
		m.filtered.SetQuery("")
		m.rebuildLogRows()

	case m.activeView == ViewNotifications && m.notifQuery != "":
		m.notifQuery = ""
		m.rebuildNotifRows()

	case m.loading:
		m.deps.Loader.Cancel()
	}
}

func (m *Model) handleSessionEvent(msg sessionEventMsg) (tea.Model, tea.Cmd) {
	if m.session == nil || msg.id != m.session.ID {
		return m, nil
	}

	switch ev := msg.ev.(type) {
	case loader.Progress:
		m.progressPct = ev.Percent
		m.progressMsg = ev.Message

	case loader.Completed:
		m.applyResult(ev.Result)

	case loader.Failed:
		m.loading = false
		m.status = fmt.Sprintf("❌ エラー: %s", truncateRunes(ev.Err.Error(), 50))
	}

	return m, listenSession(m.session)
}

func (m *Model) handleSessionDone(msg sessionDoneMsg) (tea.Model, tea.Cmd) {
	if m.session == nil || msg.id != m.session.ID {
		return m, nil
	}
	if m.session.State() == loader.StateCancelled {
		m.loading = false
		m.status = "読み込みをキャンセルしました"
	}
	m.session = nil
	return m, nil
}

func (m *Model) handleWatchEvent(msg watchEventMsg) (tea.Model, tea.Cmd) {
	if msg.f != m.follower {
		return m, nil
	}

	cmds := []tea.Cmd{listenWatch(m.follower)}
	switch msg.ev.Change {
	case watch.Appended:
		if cmd := m.startAppend(); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case watch.Replaced:
		cmds = append(cmds, m.startLoad(m.path))

	case watch.NewerFile:
		m.status = fmt.Sprintf("📄 新しいログファイル: %s", filepath.Base(msg.ev.Path))
		cmds = append(cmds, m.switchFile(msg.ev.Path)...)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleAppendResult(msg appendResultMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.appendGen {
		return m, nil
	}
	m.appending = false

	if msg.err != nil {
		if errors.Is(msg.err, loader.ErrTruncated) {
			return m, m.startLoad(m.path)
		}
		m.deps.Log.Warn().Err(msg.err).Msg("tail reload failed")
		m.status = fmt.Sprintf("❌ エラー: %s", truncateRunes(msg.err.Error(), 50))
		return m, nil
	}

	m.applyDelta(msg.delta, msg.cp)

	if m.appendQueued {
		m.appendQueued = false
		return m, m.startAppend()
	}
	return m, nil
}

// startLoad kicks off a full async parse of path, superseding any load
// still running and invalidating any tail read still in flight
func (m *Model) startLoad(path string) tea.Cmd {
	m.session = m.deps.Loader.Load(path)
	m.loading = true
	m.progressPct = 0
	m.progressMsg = fmt.Sprintf("📂 読み込み中... %s", filepath.Base(path))
	m.path = path
	m.filename = filepath.Base(path)
	m.detailText = ""
	m.status = ""
	m.appendGen++
	m.appending = false
	m.appendQueued = false

	if info, err := os.Stat(path); err == nil && m.cfg.Read.WarnFileMB > 0 {
		sizeMB := float64(info.Size()) / (1 << 20)
		if sizeMB >= float64(m.cfg.Read.WarnFileMB) {
			m.status = fmt.Sprintf("⚠️ ファイルサイズが %.1fMB です。読み込みに時間がかかる可能性があります", sizeMB)
		}
	}
	return listenSession(m.session)
}

// applyResult installs a completed parse, preserving the active filter
// across reloads
func (m *Model) applyResult(res *loader.Result) {
	vis := logformat.AllVisible()
	query := ""
	if m.filtered != nil {
		vis = m.filtered.Visibility()
		query = m.filtered.Query()
	}

	m.provider = source.NewMemoryProvider(res.Lines)
	m.filtered = source.NewFilteredProvider(m.provider)
	m.filtered.SetVisibility(vis)
	m.filtered.SetQuery(query)

	m.path = res.Path
	m.filename = filepath.Base(res.Path)
	m.records = res.Records
	m.failures = res.Failures
	m.checkpoint = res.Checkpoint
	m.known = loader.KnownIDs(res.Records)
	m.reorganizeGroups()

	m.loading = false
	m.logCursor = 0
	m.notifCursor = 0
	m.logWindow.GotoTop()
	m.notifWindow.GotoTop()
	m.rebuildLogRows()
	m.rebuildNotifRows()

	m.status = fmt.Sprintf("✅ 読み込み完了: %s (%d 行, %d メッセージ)",
		filepath.Base(res.Path), len(res.Lines), len(res.Records))
}

// applyDelta folds a tail reload into the live views
func (m *Model) applyDelta(delta *loader.Delta, cp loader.Checkpoint) {
	m.checkpoint = cp
	if delta == nil || delta.Empty() {
		return
	}

	if delta.Replace != nil {
		m.provider.ReplaceLast(*delta.Replace)
	}
	m.provider.Append(delta.Lines)
	m.filtered.MarkDirty()
	m.failures += delta.Failures

	if len(delta.Records) > 0 {
		m.records = append(m.records, delta.Records...)
		for _, rec := range delta.Records {
			m.known[rec.ID] = struct{}{}
		}
		m.reorganizeGroups()
		m.rebuildNotifRows()
	}

	m.rebuildLogRows()
	m.status = fmt.Sprintf("更新完了 (%s)", time.Now().Format("15:04:05"))

	if m.following && len(m.logRows) > 0 {
		m.logCursor = len(m.logRows) - 1
		m.logWindow.GotoBottom()
	}
}

// startAppend schedules a tail reload. Only one runs at a time; a change
// arriving mid-reload queues exactly one more pass.
func (m *Model) startAppend() tea.Cmd {
	if m.loading || m.provider == nil {
		return nil
	}
	if m.appending {
		m.appendQueued = true
		return nil
	}

	m.appending = true
	gen := m.appendGen
	// Passes are serialized by the appending flag and full reloads swap the
	// map out wholesale, so the worker never reads known mid-write.
	ld, path, cp, known := m.deps.Loader, m.path, m.checkpoint, m.known
	return func() tea.Msg {
		delta, next, err := ld.Append(path, cp, known)
		return appendResultMsg{gen: gen, delta: delta, cp: next, err: err}
	}
}

// reorganizeGroups rebuckets records applying the user's saved names
func (m *Model) reorganizeGroups() {
	m.groups = m.deps.Groups.OrganizeByGroup(m.records, m.deps.Prefs.All())
}

// rebuildLogRows refolds the filtered lines and lays out display rows
func (m *Model) rebuildLogRows() {
	if m.filtered == nil {
		m.logRows = nil
		return
	}
	m.items = collapse.Collapse(m.filtered.All(), m.cfg.Collapse.Threshold)
	m.logRows = buildLogRows(m.items)
	m.clampCursors()
	m.rowsDirty = true
}

func (m *Model) rebuildNotifRows() {
	m.notifRows = buildNotifRows(m.groups, m.expandedGroups, m.notifQuery)
	m.clampCursors()
	m.rowsDirty = true
}

func (m *Model) clampCursors() {
	if n := len(m.logRows); m.logCursor >= n {
		m.logCursor = n - 1
	}
	if m.logCursor < 0 {
		m.logCursor = 0
	}
	if n := len(m.notifRows); m.notifCursor >= n {
		m.notifCursor = n - 1
	}
	if m.notifCursor < 0 {
		m.notifCursor = 0
	}
}

// activateRow handles enter on the selected row: fold headers toggle,
// truncated lines expand in place, anything else opens the detail
// overlay
func (m *Model) activateRow() (tea.Model, tea.Cmd) {
	rows := m.activeRows()
	if len(rows) == 0 {
		return m, nil
	}
	r := rows[m.cursor()]

	switch r.kind {
	case rowRunHeader:
		r.header.Expanded = !r.header.Expanded
		m.logRows = buildLogRows(m.items)
		m.clampCursors()
		m.rowsDirty = true

	case rowGroupHeader:
		m.expandedGroups[r.group.ID] = !m.expandedGroups[r.group.ID]
		m.rebuildNotifRows()

	case rowRecord:
		m.detailTitle = "メッセージ詳細"
		m.detailText = fmt.Sprintf("時刻: %s\n作成: %s\n\n%s",
			r.record.ReceivedAt, r.record.CreatedAt, r.record.Message)

	case rowLine:
		if r.line.Collapsed {
			if m.provider.ExpandLine(r.line.Index) {
				m.filtered.MarkDirty()
				m.rebuildLogRows()
			}
			break
		}
		m.detailTitle = "ログ詳細"
		m.detailText = m.detail.Render(fmt.Sprintf("時刻: %s\nレベル: %s\n内容: %s",
			r.line.Timestamp, r.line.Level, r.line.Content()))
	}

	return m, nil
}

// beginRename opens the rename prompt for the selected topic group
func (m *Model) beginRename() (tea.Model, tea.Cmd) {
	if m.activeView != ViewNotifications {
		return m, nil
	}
	rows := m.activeRows()
	if len(rows) == 0 {
		return m, nil
	}
	r := rows[m.cursor()]
	if r.kind != rowGroupHeader {
		return m, nil
	}

	m.renameGroup = r.group
	m.mode = ModeRename
	m.input.Placeholder = "グループ名..."
	m.input.SetValue(r.group.DisplayName)
	m.input.Focus()
	return m, textinput.Blink
}

// toggleFollow starts or stops live tailing of the current file
func (m *Model) toggleFollow() (tea.Model, tea.Cmd) {
	if m.following {
		m.stopFollow()
		m.status = "自動更新を停止しました"
		return m, nil
	}
	if m.path == "" {
		m.status = "⚠️ ログファイルが見つかりません"
		return m, nil
	}
	cmd := m.startFollow()
	if cmd != nil {
		m.status = "自動更新を開始しました"
	}
	return m, cmd
}

func (m *Model) startFollow() tea.Cmd {
	f, err := watch.NewFollower(m.path, m.pollInterval(), m.deps.Log)
	if err != nil {
		m.status = fmt.Sprintf("❌ エラー: %s", truncateRunes(err.Error(), 50))
		return nil
	}
	m.follower = f
	m.following = true
	return tea.Batch(runFollower(f), listenWatch(f))
}

func (m *Model) stopFollow() {
	if m.follower == nil {
		return
	}
	m.follower.Close()
	m.follower = nil
	m.following = false
}

func (m *Model) pollInterval() time.Duration {
	if m.cfg.Watch.PollSeconds > 0 {
		return time.Duration(m.cfg.Watch.PollSeconds) * time.Second
	}
	return watch.DefaultPoll
}

// reopenNewest switches to the most recent log file next to the current
// one, or reloads the current file when it is still the newest
func (m *Model) reopenNewest() (tea.Model, tea.Cmd) {
	var newest string
	var err error
	if m.path != "" {
		newest, err = watch.Newest(filepath.Dir(m.path))
	} else {
		newest, err = watch.Discover()
	}
	if err != nil {
		m.status = "⚠️ ログファイルが見つかりません"
		return m, nil
	}

	if newest == m.path {
		return m, m.startLoad(newest)
	}
	return m, tea.Batch(m.switchFile(newest)...)
}

// switchFile retargets the viewer, moving the follower to the new path
func (m *Model) switchFile(path string) []tea.Cmd {
	cmds := []tea.Cmd{m.startLoad(path)}
	if m.following {
		m.stopFollow()
		if cmd := m.startFollow(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// toggleLevel flips one visibility flag and refilters
func (m *Model) toggleLevel(flip func(*logformat.Visibility)) {
	if m.filtered == nil {
		return
	}
	vis := m.filtered.Visibility()
	flip(&vis)
	m.filtered.SetVisibility(vis)
	m.rebuildLogRows()
	m.snapCursorToWindow()
}

func (m *Model) toggleView() {
	if m.activeView == ViewLogs {
		m.activeView = ViewNotifications
	} else {
		m.activeView = ViewLogs
	}
	m.detailText = ""
	m.rowsDirty = true
}

// moveCursor moves the selection and drags the window with it
func (m *Model) moveCursor(delta int) {
	m.setCursor(m.cursor() + delta)
	m.syncWindow()
}

// movePage moves the window a page at a time and snaps the selection
// back inside it
func (m *Model) movePage(dir int) {
	w := m.activeWindow()
	w.SetTotal(len(m.activeRows()))
	w.ScrollPages(dir)
	m.snapCursorToWindow()
}

func (m *Model) setCursor(c int) {
	rows := m.activeRows()
	if c >= len(rows) {
		c = len(rows) - 1
	}
	if c < 0 {
		c = 0
	}
	if m.activeView == ViewLogs {
		m.logCursor = c
	} else {
		m.notifCursor = c
	}
}

// syncWindow keeps the selection inside the visible range
func (m *Model) syncWindow() {
	w := m.activeWindow()
	n := len(m.activeRows())
	w.SetTotal(n)
	if n <= 1 {
		w.SetFraction(0)
		return
	}
	w.SetFraction(float64(m.cursor()) / float64(n-1))
}

func (m *Model) snapCursorToWindow() {
	w := m.activeWindow()
	w.SetTotal(len(m.activeRows()))
	vis := w.Visible()
	c := m.cursor()
	if c < vis.Start {
		m.setCursor(vis.Start)
	} else if c >= vis.End && vis.End > vis.Start {
		m.setCursor(vis.End - 1)
	}
}

func (m *Model) cursor() int {
	if m.activeView == ViewLogs {
		return m.logCursor
	}
	return m.notifCursor
}

func (m *Model) activeRows() []row {
	if m.activeView == ViewLogs {
		return m.logRows
	}
	return m.notifRows
}

func (m *Model) activeWindow() *view.Window {
	if m.activeView == ViewLogs {
		return m.logWindow
	}
	return m.notifWindow
}

func (m *Model) activeQuery() string {
	if m.activeView == ViewNotifications {
		return m.notifQuery
	}
	if m.filtered == nil {
		return ""
	}
	return m.filtered.Query()
}

func (m *Model) visibility() logformat.Visibility {
	if m.filtered == nil {
		return logformat.AllVisible()
	}
	return m.filtered.Visibility()
}

// View implements tea.Model
func (m *Model) View() string {
	if m.height == 0 {
		return ""
	}

	contentHeight := m.height - 2
	if contentHeight < 1 {
		contentHeight = 1
	}

	var b strings.Builder
	switch {
	case m.loading:
		b.WriteString(m.loadingView(contentHeight))
	case m.detailText != "":
		b.WriteString(m.detailView(contentHeight))
	default:
		b.WriteString(m.listView(contentHeight))
	}

	b.WriteString(m.statusBar())
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

func (m *Model) loadingView(height int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s (%d%%)\n", m.spin.View(), m.progressMsg, m.progressPct))
	for i := 1; i < height; i++ {
		b.WriteString("~\n")
	}
	return b.String()
}

func (m *Model) detailView(height int) string {
	var b strings.Builder
	b.WriteString(m.styles.groupHeader.Render(m.detailTitle))
	b.WriteString("\n")

	used := 1
	for _, line := range strings.Split(m.detailText, "\n") {
		if used >= height {
			break
		}
		b.WriteString(m.clipRow(line))
		b.WriteString("\n")
		used++
	}
	for ; used < height; used++ {
		b.WriteString("~\n")
	}
	return b.String()
}

func (m *Model) listView(height int) string {
	rows := m.activeRows()
	w := m.activeWindow()
	w.SetTotal(len(rows))
	m.materialize()

	vis := w.Visible()
	cursor := m.cursor()

	var b strings.Builder
	used := 0
	for i := vis.Start; i < vis.End && used < height; i++ {
		var text string
		if i == cursor {
			text = m.styles.selected.Render(m.rowText(rows[i]))
		} else if j := i - m.cacheRange.Start; j >= 0 && j < len(m.rowCache) {
			text = m.rowCache[j]
		} else {
			text = m.rowView(rows[i])
		}
		b.WriteString(m.clipRow(text))
		b.WriteString("\n")
		used++
	}
	for ; used < height; used++ {
		b.WriteString("~\n")
	}
	return b.String()
}

// clipRow truncates a rendered row to the terminal width
func (m *Model) clipRow(text string) string {
	if m.width <= 0 {
		return text
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(text)
}

func (m *Model) statusBar() string {
	style := m.styles.statusBar.Width(m.width)

	if m.mode == ModeSearch {
		return m.styles.search.Width(m.width).Render("/" + m.input.View())
	}
	if m.mode == ModeRename {
		return style.Render("名前: " + m.input.View())
	}

	name := m.filename
	if name == "" {
		name = "(ファイルなし)"
	}

	parts := []string{name, m.viewLabel(), m.positionInfo()}
	if vis := m.visibility(); vis != logformat.AllVisible() {
		parts = append(parts, "["+levelIndicator(vis)+"]")
	}
	if q := m.activeQuery(); q != "" {
		parts = append(parts, "/"+q)
	}
	if m.following {
		parts = append(parts, "自動更新")
	}
	if m.failures > 0 {
		parts = append(parts, fmt.Sprintf("⚠️ %d 件解析失敗", m.failures))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}

	return style.Render(" " + strings.Join(parts, "  "))
}

func (m *Model) viewLabel() string {
	if m.activeView == ViewNotifications {
		return "グループメッセージ"
	}
	return "ログ"
}

func (m *Model) positionInfo() string {
	rows := m.activeRows()
	if m.activeView == ViewNotifications {
		return fmt.Sprintf("メッセージ: %d 件  L%d/%d  %.0f%%",
			len(m.records), m.cursor()+1, len(rows), m.notifWindow.PercentScrolled())
	}

	total, shown := 0, 0
	if m.provider != nil {
		total = m.provider.LineCount()
	}
	if m.filtered != nil {
		shown = m.filtered.LineCount()
	}
	return fmt.Sprintf("表示: %d / %d 行  L%d/%d  %.0f%%",
		shown, total, m.cursor()+1, len(rows), m.logWindow.PercentScrolled())
}

func (m *Model) helpLine() string {
	help := "j/k:移動  f/b:ページ  g/G:先頭/末尾  enter:展開  /:検索  e/w/d/i:フィルタ  tab:メッセージ  F:自動更新  o:最新  q:終了"
	if m.activeView == ViewNotifications {
		help = "j/k:移動  enter:展開  r:名前変更  /:検索  tab:ログ  F:自動更新  q:終了"
	}
	return m.styles.help.Render(help)
}

// Close releases background resources. The program owner calls it after
// the event loop exits.
func (m *Model) Close() {
	m.stopFollow()
	m.deps.Loader.Cancel()
}

// levelIndicator shows which levels are visible, e.g. "ew-i" when debug
// lines are hidden
func levelIndicator(vis logformat.Visibility) string {
	letter := func(on bool, c string) string {
		if on {
			return c
		}
		return "-"
	}
	return letter(vis.Error, "e") + letter(vis.Warning, "w") + letter(vis.Debug, "d") + letter(vis.Info, "i")
}

func hasKey(bindings []string, key string) bool {
	for _, b := range bindings {
		if b == key {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
