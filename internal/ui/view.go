package ui

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/harmonica"
	clog "github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
)

type applyMsg struct {
	fn func(*Root)
}

type animateMsg time.Time

type statusExpireMsg struct {
	seq int
}

type trackerKeyMap struct {
	Move    key.Binding
	Toggle  key.Binding
	Section key.Binding
	Version key.Binding
	Info    key.Binding
	Search  key.Binding
	Mute    key.Binding
	Reset   key.Binding
	Quit    key.Binding
}

func (k trackerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Toggle, k.Version, k.Search, k.Mute, k.Reset, k.Quit}
}

func (k trackerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Move, k.Toggle, k.Section, k.Version}, {k.Info, k.Search, k.Mute, k.Reset, k.Quit}}
}

type Root struct {
	theme       Theme
	ascii       bool
	debug       bool
	motionLevel string
	ctrl        Controller

	mu      sync.Mutex
	program *tea.Program
	running bool

	layout LayoutMode
	cols   int
	rows   int

	versions      []VersionTab
	activeVersion string
	list          []Row
	cursor        int
	scroll        int

	caught    int
	total     int
	objective string
	muted     bool
	loading   bool
	errMsg    string

	statusFlash string
	statusSeq   int

	resetOpen    bool
	resetEntries []ResetEntry
	resetIndex   int

	infoOpen  bool
	infoTitle string
	infoText  string

	searchOpen  bool
	searchQuery string

	celebOpen bool
	celebText string

	help     help.Model
	keymap   trackerKeyMap
	bar      progress.Model
	loadSpin spinner.Model
	markdown *glamour.TermRenderer
	logger   *clog.Logger

	celebPos float64
	celebVel float64
	spring   harmonica.Spring
}

type Options struct {
	ASCIIOnly   bool
	Debug       bool
	MotionLevel string
	ThemeKey    string
}

func New(opts Options) *Root {
	logger := clog.NewWithOptions(os.Stderr, clog.Options{Prefix: "oakdex-ui", Level: clog.WarnLevel})
	if opts.Debug {
		logger.SetLevel(clog.DebugLevel)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(56),
	)
	if err != nil {
		renderer = nil
	}

	h := help.New()
	h.Styles = help.DefaultDarkStyles()
	motionLevel := normalizeMotionLevel(opts.MotionLevel)
	theme := ThemeForVersion(opts.ThemeKey)
	spring := harmonica.NewSpring(harmonica.FPS(60), 8.0, 0.7)
	switch motionLevel {
	case "reduced":
		spring = harmonica.NewSpring(harmonica.FPS(30), 9.0, 0.92)
	case "off":
		spring = harmonica.NewSpring(harmonica.FPS(60), 1000.0, 1.0)
	}
	bar := progress.New(
		progress.WithWidth(28),
		progress.WithColors(lipgloss.Color("#E3350D"), lipgloss.Color("#F2C94C"), lipgloss.Color("#6FE6A5")),
		progress.WithScaled(true),
	)
	if motionLevel == "off" {
		bar.SetSpringOptions(1000.0, 1.0)
	}
	loadSpin := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(theme.Accent),
	)

	r := &Root{
		theme:       theme,
		ascii:       opts.ASCIIOnly,
		debug:       opts.Debug,
		motionLevel: motionLevel,
		layout:      LayoutWide,
		cols:        100,
		rows:        30,
		help:        h,
		bar:         bar,
		loadSpin:    loadSpin,
		markdown:    renderer,
		logger:      logger,
		spring:      spring,
	}
	r.keymap = trackerKeyMap{
		Move:    key.NewBinding(key.WithKeys("up", "down", "j", "k"), key.WithHelp("↑/↓", "move")),
		Toggle:  key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("Enter", "toggle")),
		Section: key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "fold section")),
		Version: key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "version")),
		Info:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "info")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "find")),
		Mute:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	return r
}

func normalizeMotionLevel(level string) string {
	switch level {
	case "reduced", "off":
		return level
	default:
		return "full"
	}
}

func (r *Root) Init() tea.Cmd {
	return tea.Batch(animateTickCmd(), spinnerTickCmd(r.loadSpin))
}

func (r *Root) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("update", rec, msg)
			model = r
			cmd = nil
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.cols = msg.Width
		r.rows = msg.Height
		r.layout = DetermineLayoutMode(r.cols, r.rows)
		r.ensureCursorVisible()
		return r, nil
	case applyMsg:
		if msg.fn != nil {
			msg.fn(r)
		}
		return r, r.animateIfNeeded()
	case animateMsg:
		target := 0.0
		if r.celebOpen {
			target = 1.0
		}
		r.celebPos, r.celebVel = r.spring.Update(r.celebPos, r.celebVel, target)
		if r.shouldAnimate(target) {
			return r, animateTickCmd()
		}
		r.celebPos = target
		r.celebVel = 0
		return r, nil
	case statusExpireMsg:
		if msg.seq == r.statusSeq {
			r.statusFlash = ""
		}
		return r, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		r.loadSpin, cmd = r.loadSpin.Update(msg)
		return r, cmd
	case tea.MouseWheelMsg:
		return r.handleMouseWheel(msg)
	case tea.KeyPressMsg:
		return r.handleKey(msg)
	}
	return r, nil
}

func (r *Root) View() (view tea.View) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("view", rec, nil)
			width := max(1, r.cols)
			view = tea.NewView(r.theme.Error.Width(width).Render(trimForWidth("UI recovered from a rendering panic. Check logs.", max(1, width-1))))
		}
	}()

	if r.cols < 1 {
		r.cols = 100
	}
	if r.rows < 1 {
		r.rows = 30
	}

	var base string
	if r.layout == LayoutTooSmall {
		base = r.renderTooSmall()
	} else {
		base = r.renderTracker()
	}

	if overlay := r.renderOverlay(); overlay != "" {
		base = composeOverlay(base, overlay, r.cols, r.rows)
	}
	v := tea.NewView(base)
	v.AltScreen = true
	return v
}

func (r *Root) Run() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	p := tea.NewProgram(r)
	r.program = p
	r.running = true
	r.mu.Unlock()

	_, err := p.Run()

	r.mu.Lock()
	r.program = nil
	r.running = false
	r.mu.Unlock()
	return err
}

func (r *Root) Stop() {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Quit()
	}
}

func (r *Root) SetController(c Controller) {
	r.ctrl = c
}

func (r *Root) SetVersions(tabs []VersionTab, active string) {
	r.apply(func(m *Root) {
		m.versions = append([]VersionTab(nil), tabs...)
		m.activeVersion = active
		m.theme = ThemeForVersion(active)
		m.loadSpin = spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(m.theme.Accent),
		)
	})
}

func (r *Root) SetRows(rows []Row) {
	r.apply(func(m *Root) {
		anchor := m.cursorAnchor()
		m.list = append([]Row(nil), rows...)
		m.restoreCursor(anchor)
		m.ensureCursorVisible()
	})
}

func (r *Root) SetProgress(caught, total int) {
	r.apply(func(m *Root) {
		m.caught = caught
		m.total = total
	})
}

func (r *Root) SetObjective(text string) {
	r.apply(func(m *Root) {
		m.objective = text
	})
}

func (r *Root) SetResetMenu(entries []ResetEntry) {
	r.apply(func(m *Root) {
		m.resetEntries = append([]ResetEntry(nil), entries...)
		if m.resetIndex >= len(m.resetEntries) {
			m.resetIndex = max(0, len(m.resetEntries)-1)
		}
	})
}

func (r *Root) SetMuted(muted bool) {
	r.apply(func(m *Root) {
		m.muted = muted
	})
}

func (r *Root) SetLoading(loading bool) {
	r.apply(func(m *Root) {
		m.loading = loading
	})
}

// Celebrate shows one achievement banner. The orchestrator queues messages and
// hands over the next one only after the current banner is dismissed.
func (r *Root) Celebrate(message string) {
	r.apply(func(m *Root) {
		m.celebText = message
		m.celebOpen = true
		if m.motionLevel == "off" {
			m.celebPos = 1
			m.celebVel = 0
		}
	})
}

func (r *Root) FlashStatus(msg string) {
	r.apply(func(m *Root) {
		m.statusFlash = msg
		m.statusSeq++
		seq := m.statusSeq
		m.sendLater(4*time.Second, statusExpireMsg{seq: seq})
	})
}

func (r *Root) ShowError(msg string) {
	r.apply(func(m *Root) {
		m.errMsg = msg
	})
}

func (r *Root) apply(fn func(*Root)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	p := r.program
	running := r.running
	if !running || p == nil {
		fn(r)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	p.Send(applyMsg{fn: fn})
}

func (r *Root) sendLater(d time.Duration, msg tea.Msg) {
	time.AfterFunc(d, func() {
		r.mu.Lock()
		p := r.program
		running := r.running
		r.mu.Unlock()
		if running && p != nil {
			p.Send(msg)
		}
	})
}

func (r *Root) dispatchController(fn func(Controller)) {
	if fn == nil || r.ctrl == nil {
		return
	}
	ctrl := r.ctrl
	go fn(ctrl)
}

func (r *Root) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q"))) {
		r.dispatchController(func(c Controller) { c.OnQuit() })
		return r, nil
	}

	if r.overlayActive() {
		return r.handleOverlayKey(msg)
	}

	return r.handleTrackerKey(msg)
}

func (r *Root) overlayActive() bool {
	return r.celebOpen || r.resetOpen || r.searchOpen || r.infoOpen
}

func (r *Root) topOverlay() string {
	switch {
	case r.celebOpen:
		return "celebration"
	case r.resetOpen:
		return "reset"
	case r.searchOpen:
		return "search"
	case r.infoOpen:
		return "info"
	default:
		return ""
	}
}

func (r *Root) handleOverlayKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch r.topOverlay() {
	case "celebration":
		// Any key acknowledges; the next queued banner follows on the next
		// reconcile.
		r.celebOpen = false
		return r, r.animateIfNeeded()
	case "reset":
		return r.handleResetKey(msg)
	case "search":
		return r.handleSearchKey(msg)
	case "info":
		switch msg.Code {
		case tea.KeyEsc, tea.KeyEnter, 'i', 'q':
			r.infoOpen = false
		}
		return r, nil
	}
	return r, nil
}

func (r *Root) handleResetKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.Code {
	case tea.KeyEsc, 'q':
		r.resetOpen = false
		r.resetIndex = 0
		return r, nil
	case tea.KeyUp, 'k':
		r.resetIndex = wrapIndex(r.resetIndex-1, len(r.resetEntries))
	case tea.KeyDown, tea.KeyTab, 'j':
		r.resetIndex = wrapIndex(r.resetIndex+1, len(r.resetEntries))
	case tea.KeyEnter:
		if len(r.resetEntries) == 0 {
			r.resetOpen = false
			return r, nil
		}
		entry := r.resetEntries[r.resetIndex]
		r.resetOpen = false
		r.resetIndex = 0
		if entry.SectionKey == "" {
			r.dispatchController(func(c Controller) { c.OnResetAll() })
		} else {
			r.dispatchController(func(c Controller) { c.OnResetSection(entry.SectionKey) })
		}
	}
	return r, nil
}

func (r *Root) handleSearchKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.Code {
	case tea.KeyEsc:
		r.searchOpen = false
		r.searchQuery = ""
		return r, nil
	case tea.KeyEnter:
		r.searchOpen = false
		if idx, ok := r.closestRow(r.searchQuery); ok {
			r.cursor = idx
			r.ensureCursorVisible()
		} else if strings.TrimSpace(r.searchQuery) != "" {
			r.statusFlash = "No match for " + strings.TrimSpace(r.searchQuery)
		}
		r.searchQuery = ""
		return r, nil
	case tea.KeyBackspace:
		if n := len([]rune(r.searchQuery)); n > 0 {
			r.searchQuery = string([]rune(r.searchQuery)[:n-1])
		}
		return r, nil
	}
	if msg.Text != "" && !strings.ContainsRune(msg.Text, '\n') {
		r.searchQuery += msg.Text
	}
	return r, nil
}

// closestRow finds the visible item row whose name best matches the query:
// exact substring first, then smallest edit distance within a tolerance.
func (r *Root) closestRow(query string) (int, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0, false
	}
	bestIdx := -1
	bestDist := len(q)/2 + 2
	for i, row := range r.list {
		if row.Kind != RowItem {
			continue
		}
		name := strings.ToLower(row.Name)
		if strings.Contains(name, q) {
			return i, true
		}
		if d := levenshtein.ComputeDistance(q, name); d < bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return 0, false
	}
	return bestIdx, true
}

func (r *Root) handleTrackerKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, r.keymap.Quit):
		r.dispatchController(func(c Controller) { c.OnQuit() })
		return r, nil
	case key.Matches(msg, r.keymap.Search):
		r.searchOpen = true
		r.searchQuery = ""
		return r, nil
	case key.Matches(msg, r.keymap.Mute):
		r.dispatchController(func(c Controller) { c.OnToggleMute() })
		return r, nil
	case key.Matches(msg, r.keymap.Reset):
		if len(r.resetEntries) > 0 {
			r.resetOpen = true
			r.resetIndex = 0
		}
		return r, nil
	case key.Matches(msg, r.keymap.Info):
		r.openInfoForCursor()
		return r, nil
	}

	switch msg.Code {
	case tea.KeyUp, 'k':
		r.moveCursor(-1)
	case tea.KeyDown, 'j':
		r.moveCursor(1)
	case tea.KeyPgUp:
		r.moveCursor(-r.listHeight())
	case tea.KeyPgDown:
		r.moveCursor(r.listHeight())
	case tea.KeyHome, 'g':
		r.cursor = 0
		r.ensureCursorVisible()
	case tea.KeyEnd, 'G':
		r.cursor = max(0, len(r.list)-1)
		r.ensureCursorVisible()
	case tea.KeyLeft:
		r.cycleVersion(-1)
	case tea.KeyRight:
		r.cycleVersion(1)
	case tea.KeyTab:
		r.toggleSectionAtCursor()
	case tea.KeyEnter, tea.KeySpace:
		r.toggleAtCursor()
	case '?':
		r.help.ShowAll = !r.help.ShowAll
	}
	return r, nil
}

func (r *Root) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	mouse := msg.Mouse()
	delta := 0
	if mouse.Button == tea.MouseWheelUp {
		delta = -3
	} else if mouse.Button == tea.MouseWheelDown {
		delta = 3
	}
	if delta == 0 || r.overlayActive() {
		return r, nil
	}
	r.moveCursor(delta)
	return r, nil
}

func (r *Root) moveCursor(delta int) {
	if len(r.list) == 0 {
		r.cursor = 0
		return
	}
	r.cursor += delta
	if r.cursor < 0 {
		r.cursor = 0
	}
	if r.cursor >= len(r.list) {
		r.cursor = len(r.list) - 1
	}
	r.ensureCursorVisible()
}

func (r *Root) toggleAtCursor() {
	if r.cursor < 0 || r.cursor >= len(r.list) {
		return
	}
	row := r.list[r.cursor]
	if row.Kind == RowSection {
		sectionKey := row.SectionKey
		r.dispatchController(func(c Controller) { c.OnToggleSection(sectionKey) })
		return
	}
	id, next := row.ID, !row.Checked
	r.dispatchController(func(c Controller) { c.OnToggleItem(id, next) })
}

// toggleSectionAtCursor folds the section the cursor is in, whether the
// cursor sits on the header or one of its items.
func (r *Root) toggleSectionAtCursor() {
	if r.cursor < 0 || r.cursor >= len(r.list) {
		return
	}
	sectionKey := r.list[r.cursor].SectionKey
	if sectionKey == "" {
		return
	}
	r.dispatchController(func(c Controller) { c.OnToggleSection(sectionKey) })
}

func (r *Root) cycleVersion(delta int) {
	if len(r.versions) == 0 {
		return
	}
	idx := 0
	for i, v := range r.versions {
		if v.Key == r.activeVersion {
			idx = i
			break
		}
	}
	next := r.versions[wrapIndex(idx+delta, len(r.versions))]
	if next.Key == r.activeVersion {
		return
	}
	key := next.Key
	r.dispatchController(func(c Controller) { c.OnSelectVersion(key) })
}

func (r *Root) openInfoForCursor() {
	if r.cursor < 0 || r.cursor >= len(r.list) {
		return
	}
	row := r.list[r.cursor]
	if row.Kind != RowItem {
		return
	}
	var b strings.Builder
	if row.Dex > 0 {
		fmt.Fprintf(&b, "# %s  `#%03d`\n\n", row.Name, row.Dex)
	} else {
		fmt.Fprintf(&b, "# %s\n\n", row.Name)
	}
	if row.Info != "" {
		b.WriteString(row.Info + "\n\n")
	}
	if row.Notes != "" {
		b.WriteString("> " + row.Notes + "\n")
	}
	text := b.String()
	if r.markdown != nil {
		if rendered, err := r.markdown.Render(text); err == nil {
			text = rendered
		}
	}
	r.infoTitle = row.Name
	r.infoText = text
	r.infoOpen = true
}

// cursorAnchor remembers what the cursor points at so a row refresh keeps the
// selection stable even when rows above it appear or disappear.
type cursorAnchor struct {
	id         string
	sectionKey string
}

func (r *Root) cursorAnchor() cursorAnchor {
	if r.cursor < 0 || r.cursor >= len(r.list) {
		return cursorAnchor{}
	}
	row := r.list[r.cursor]
	if row.Kind == RowItem {
		return cursorAnchor{id: row.ID}
	}
	return cursorAnchor{sectionKey: row.SectionKey}
}

func (r *Root) restoreCursor(anchor cursorAnchor) {
	if anchor.id != "" {
		for i, row := range r.list {
			if row.Kind == RowItem && row.ID == anchor.id {
				r.cursor = i
				return
			}
		}
	}
	if anchor.sectionKey != "" {
		for i, row := range r.list {
			if row.Kind == RowSection && row.SectionKey == anchor.sectionKey {
				r.cursor = i
				return
			}
		}
	}
	if r.cursor >= len(r.list) {
		r.cursor = max(0, len(r.list)-1)
	}
}

func (r *Root) listHeight() int {
	// Header, tabs, progress line, status bar.
	return max(1, r.rows-6)
}

func (r *Root) ensureCursorVisible() {
	h := r.listHeight()
	if r.cursor < r.scroll {
		r.scroll = r.cursor
	}
	if r.cursor >= r.scroll+h {
		r.scroll = r.cursor - h + 1
	}
	if r.scroll < 0 {
		r.scroll = 0
	}
}

func (r *Root) renderTooSmall() string {
	msg := []string{
		"Terminal too small",
		fmt.Sprintf("Current: %dx%d", r.cols, r.rows),
		"Minimum: 60x18",
		"Resize the terminal to continue.",
	}
	panel := r.drawPanel("Resize Required", msg, min(50, r.cols), min(10, r.rows))
	return lipgloss.Place(r.cols, r.rows, lipgloss.Center, lipgloss.Center, panel)
}

func (r *Root) renderTracker() string {
	header := r.headerText()
	tabs := r.tabsText()
	progressLine := r.progressText()
	list := r.renderList()
	status := r.statusText()
	return header + "\n" + tabs + "\n" + progressLine + "\n" + list + "\n" + status
}

func (r *Root) headerText() string {
	title := "Professor Oak Challenge"
	right := ""
	if r.muted {
		right = "cries muted"
	}
	if r.errMsg != "" {
		right = trimForWidth(r.errMsg, max(1, r.cols/2))
	}
	line := title
	if right != "" {
		gap := r.cols - lipgloss.Width(title) - lipgloss.Width(right) - 2
		if gap > 0 {
			line = title + strings.Repeat(" ", gap) + right
		} else {
			line = title + " " + right
		}
	}
	return r.theme.Header.Width(max(1, r.cols)).Render(trimForWidth(line, max(1, r.cols-2)))
}

func (r *Root) tabsText() string {
	if len(r.versions) == 0 {
		return r.theme.Muted.Render("no versions loaded")
	}
	parts := make([]string, 0, len(r.versions))
	for _, v := range r.versions {
		label := v.Label
		if label == "" {
			label = v.Key
		}
		if v.Key == r.activeVersion {
			parts = append(parts, r.theme.TabActive.Render(label))
		} else {
			parts = append(parts, r.theme.Tab.Render(label))
		}
	}
	return trimLineForWidth(strings.Join(parts, " "), max(1, r.cols))
}

func (r *Root) progressText() string {
	pct := 0.0
	if r.total > 0 {
		pct = float64(r.caught) / float64(r.total)
	}
	bar := r.bar
	bar.SetWidth(min(28, max(10, r.cols/4)))
	counts := fmt.Sprintf(" %d/%d ", r.caught, r.total)
	objective := r.objective
	if r.loading {
		objective = strings.TrimSpace(r.loadSpin.View()) + " loading..."
	}
	line := bar.ViewAs(pct) + counts + r.theme.Accent.Render(objective)
	return trimLineForWidth(line, max(1, r.cols))
}

func (r *Root) renderList() string {
	h := r.listHeight()
	lines := make([]string, 0, h)
	for i := r.scroll; i < len(r.list) && len(lines) < h; i++ {
		lines = append(lines, r.renderRow(i))
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (r *Root) renderRow(i int) string {
	row := r.list[i]
	selected := i == r.cursor

	var line string
	switch row.Kind {
	case RowSection:
		marker := "-"
		if row.Collapsed {
			marker = "+"
		} else if !r.ascii {
			marker = "▾"
		}
		if row.Collapsed && !r.ascii {
			marker = "▸"
		}
		counts := fmt.Sprintf("%d/%d", row.Caught, row.Required)
		line = fmt.Sprintf("%s %s  (%s)", marker, row.Title, counts)
		style := r.theme.Section
		if row.Complete {
			style = r.theme.SectionDone
			if r.ascii {
				line += "  [DONE]"
			} else {
				line += "  ✦"
			}
		}
		if selected {
			return r.theme.Cursor.Width(max(1, r.cols)).Render(trimForWidth("> "+line, max(1, r.cols-1)))
		}
		return style.Render(trimForWidth("  "+line, max(1, r.cols-1)))
	default:
		box := "[ ]"
		if row.Checked {
			if r.ascii {
				box = "[x]"
			} else {
				box = "[✓]"
			}
		}
		dex := ""
		if row.Dex > 0 {
			dex = fmt.Sprintf("#%03d ", row.Dex)
		}
		info := ""
		if row.Info != "" && r.layout == LayoutWide {
			info = "  " + row.Info
		}
		line = fmt.Sprintf("  %s %s%s%s", box, dex, row.Name, info)
		if selected {
			return r.theme.Cursor.Width(max(1, r.cols)).Render(trimForWidth(">"+line[1:], max(1, r.cols-1)))
		}
		if row.Checked {
			return r.theme.Checked.Render(trimForWidth(line, max(1, r.cols-1)))
		}
		return r.theme.PanelBody.Render(trimForWidth(line, max(1, r.cols-1)))
	}
}

func (r *Root) statusText() string {
	keys := r.help.View(r.keymap)
	if keys == "" {
		keys = "↑/↓ move  Enter toggle  ←/→ version  / find  m mute  r reset  q quit"
	}
	if r.statusFlash != "" {
		keys += " | " + r.statusFlash
	}
	keys = trimForWidth(keys, max(1, r.cols-1))
	return r.theme.Status.Width(max(1, r.cols)).Render(keys)
}

func (r *Root) renderOverlay() string {
	spec, ok := r.overlaySpec(r.topOverlay())
	if !ok {
		return ""
	}
	return r.drawPanel(spec.title, spec.lines, spec.width, spec.height)
}

type overlaySpec struct {
	title  string
	lines  []string
	width  int
	height int
}

func (r *Root) overlaySpec(top string) (overlaySpec, bool) {
	if top == "" {
		return overlaySpec{}, false
	}
	w := min(max(44, r.cols/2), r.cols)
	var title string
	var lines []string
	switch top {
	case "celebration":
		if r.celebPos < 0.05 {
			return overlaySpec{}, false
		}
		title = "Achievement"
		lines = []string{
			"",
			r.theme.Celebration.Render(r.celebText),
			"",
			"Press any key to continue",
		}
		w = int(float64(w) * maxFloat(r.celebPos, 0.2))
		if w < 24 {
			return overlaySpec{}, false
		}
	case "reset":
		title = "Reset Progress"
		lines = append(lines, "Resetting removes caught marks permanently.", "")
		for i, entry := range r.resetEntries {
			prefix := "  "
			if i == r.resetIndex {
				prefix = "> "
			}
			lines = append(lines, prefix+entry.Label)
		}
		lines = append(lines, "", "Enter: Reset  Esc: Cancel")
	case "search":
		title = "Find Pokemon"
		lines = []string{"", "> " + r.searchQuery + "_", "", "Enter: Jump  Esc: Cancel"}
	case "info":
		title = firstNonEmptyStr(r.infoTitle, "Info")
		lines = strings.Split(strings.TrimSuffix(r.infoText, "\n"), "\n")
		lines = append(lines, "", "Esc: Close")
	default:
		return overlaySpec{}, false
	}
	if len(lines) == 0 {
		lines = []string{"(empty)"}
	}
	h := min(len(lines)+2, max(8, r.rows-4))
	return overlaySpec{title: title, lines: lines, width: w, height: h}, true
}

func (r *Root) drawPanel(title string, lines []string, width, height int) string {
	width = max(4, width)
	height = max(3, height)
	innerW := width - 2
	innerH := height - 2

	h := "─"
	v := "│"
	tl := "┌"
	tr := "┐"
	bl := "└"
	br := "┘"
	if r.ascii {
		h = "-"
		v = "|"
		tl, tr, bl, br = "+", "+", "+", "+"
	}

	top := tl + strings.Repeat(h, innerW) + tr
	if title != "" && innerW > 2 {
		t := " " + title + " "
		runes := []rune(top)
		start := 1
		for i, ch := range []rune(t) {
			pos := start + i
			if pos >= len(runes)-1 {
				break
			}
			runes[pos] = ch
		}
		top = string(runes)
	}

	out := make([]string, 0, height)
	out = append(out, r.theme.PanelBorder.Render(top))
	for row := 0; row < innerH; row++ {
		line := ""
		if row < len(lines) {
			line = lines[row]
		}
		line = padRune(line, innerW)
		out = append(out, r.theme.PanelBorder.Render(v)+r.theme.PanelBody.Render(line)+r.theme.PanelBorder.Render(v))
	}
	out = append(out, r.theme.PanelBorder.Render(bl+strings.Repeat(h, innerW)+br))
	return strings.Join(out, "\n")
}

func (r *Root) animateIfNeeded() tea.Cmd {
	target := 0.0
	if r.celebOpen {
		target = 1.0
	}
	if r.shouldAnimate(target) {
		return animateTickCmd()
	}
	return nil
}

func (r *Root) shouldAnimate(target float64) bool {
	if r.motionLevel == "off" {
		return false
	}
	if target > 0 {
		return r.celebPos < 0.999 || abs(r.celebVel) > 0.001
	}
	return r.celebPos > 0.001 || abs(r.celebVel) > 0.001
}

func (r *Root) onModelPanic(where string, rec any, msg tea.Msg) {
	if r.logger != nil {
		r.logger.Error("ui panic", "where", where, "panic", rec, "msg", fmt.Sprintf("%T", msg), "stack", string(debug.Stack()))
	}
}

func animateTickCmd() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return animateMsg(t) })
}

func spinnerTickCmd(model spinner.Model) tea.Cmd {
	return func() tea.Msg {
		return model.Tick()
	}
}

func firstNonEmptyStr(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		i = n - 1
	}
	if i >= n {
		i = 0
	}
	return i
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func padRune(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(s, "\t", "    "))
	if len(r) > width {
		r = r[:width]
	}
	if len(r) < width {
		r = append(r, []rune(strings.Repeat(" ", width-len(r)))...)
	}
	return string(r)
}

func trimForWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(ansi.Strip(s), "\n", " "))
	if len(r) <= width {
		return string(r)
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

// trimLineForWidth truncates styled text without stripping its colors.
func trimLineForWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

func composeOverlay(base, overlay string, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return base
	}
	base = ansi.Strip(base)
	overlay = ansi.Strip(overlay)
	baseLines := strings.Split(base, "\n")
	if len(baseLines) < rows {
		pad := make([]string, rows-len(baseLines))
		baseLines = append(baseLines, pad...)
	}
	for i := 0; i < rows; i++ {
		baseLines[i] = padRune(baseLines[i], cols)
	}

	overlayLines := strings.Split(strings.TrimRight(overlay, "\n"), "\n")
	if len(overlayLines) == 0 {
		return strings.Join(baseLines[:rows], "\n")
	}
	ow := 1
	for _, line := range overlayLines {
		lw := len([]rune(line))
		if lw > ow {
			ow = lw
		}
	}
	if ow > cols {
		ow = cols
	}
	oh := len(overlayLines)
	if oh > rows {
		oh = rows
	}
	startRow := (rows - oh) / 2
	startCol := (cols - ow) / 2
	if startCol < 0 {
		startCol = 0
	}

	for i := 0; i < oh; i++ {
		row := startRow + i
		if row < 0 || row >= rows {
			continue
		}
		dst := []rune(baseLines[row])
		src := []rune(overlayLines[i])
		if len(src) > ow {
			src = src[:ow]
		}
		for j := 0; j < ow && startCol+j < len(dst); j++ {
			dst[startCol+j] = ' '
		}
		for j := 0; j < len(src) && startCol+j < len(dst); j++ {
			dst[startCol+j] = src[j]
		}
		baseLines[row] = string(dst)
	}
	return strings.Join(baseLines[:rows], "\n")
}
