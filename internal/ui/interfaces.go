package ui

// Controller receives user intent from the view. Implementations run the
// reconcile loop on their own goroutine; the view never blocks on them.
type Controller interface {
	OnToggleItem(id string, caught bool)
	OnToggleSection(sectionKey string)
	OnSelectVersion(key string)
	OnResetSection(sectionKey string)
	OnResetAll()
	OnToggleMute()
	OnQuit()
}

// View is the rendering surface the orchestrator drives. All Set* methods are
// safe to call from any goroutine, before or after Run.
type View interface {
	Run() error
	Stop()
	SetController(Controller)
	SetVersions(tabs []VersionTab, active string)
	SetRows(rows []Row)
	SetProgress(caught, total int)
	SetObjective(text string)
	SetResetMenu(entries []ResetEntry)
	SetMuted(muted bool)
	SetLoading(loading bool)
	Celebrate(message string)
	FlashStatus(msg string)
	ShowError(msg string)
}

type RowKind int

const (
	RowSection RowKind = iota
	RowItem
)

// Row is one visible line of the checklist. Section rows carry the header
// fields; item rows carry the entry fields. Hidden and collapsed entries never
// reach the view.
type Row struct {
	Kind       RowKind
	SectionKey string

	Title     string
	Collapsed bool
	Complete  bool
	Caught    int
	Required  int

	ID      string
	Name    string
	Dex     int
	Info    string
	Notes   string
	Checked bool
}

type VersionTab struct {
	Key   string
	Label string
}

// ResetEntry is one choice in the reset menu. An empty SectionKey means the
// whole version.
type ResetEntry struct {
	SectionKey string
	Label      string
}

type LayoutMode int

const (
	LayoutWide LayoutMode = iota
	LayoutCompact
	LayoutTooSmall
)
