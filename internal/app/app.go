package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"sync"

	"oakdex/internal/catalog"
	"oakdex/internal/cries"
	"oakdex/internal/i18n"
	"oakdex/internal/rules"
	"oakdex/internal/state"
	"oakdex/internal/telemetry"
	"oakdex/internal/ui"

	"github.com/google/uuid"
)

// App wires the catalog, the rules engine, persistence and the view together.
// Every user interaction funnels into one reconcile pass so the screen always
// reflects a single consistent evaluation.
type App struct {
	cfg Config

	logger *telemetry.JSONLogger
	store  Store
	loader *catalog.FSLoader
	engine rules.Engine
	cries  CryPlayer
	view   ui.View

	sessionID string
	manifest  catalog.Manifest

	mu            sync.Mutex
	generation    uint64
	version       loadedVersion
	progress      map[string]bool
	credited      map[string]bool
	userExpanded  map[string]bool
	userCollapsed map[string]bool
	lastDirective rules.Directive
	celebrations  []string
}

func New(cfg Config) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}

	logger, err := telemetry.NewJSONLogger(cfg.LogPath)
	if err != nil {
		return nil, err
	}

	store, err := state.NewSQLite(filepath.Join(cfg.DataDir, "state.db"))
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	if err := store.EnsureSchema(context.Background()); err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}

	loader := catalog.NewLoader(cfg.CatalogDir)
	manifest, err := loader.LoadManifest()
	if err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}
	if err := manifest.Validate(); err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, fmt.Errorf("manifest: %w", err)
	}

	binary, derr := cries.Detect(cfg.CryPlayer)
	if derr != nil {
		logger.Info("cries.disabled", map[string]any{"reason": derr.Error()})
	}
	player := cries.New(cries.Options{
		BaseURL:  cfg.CryBaseURL,
		CacheDir: filepath.Join(cfg.DataDir, "cries"),
		Binary:   binary,
		Muted:    cfg.Mute,
	})

	view := ui.New(ui.Options{
		ASCIIOnly:   cfg.ASCIIOnly,
		Debug:       cfg.Debug,
		MotionLevel: cfg.UI.MotionLevel,
		ThemeKey:    cfg.Version,
	})

	a := &App{
		cfg:           cfg,
		logger:        logger,
		store:         store,
		loader:        loader,
		engine:        rules.NewEngine(),
		cries:         player,
		view:          view,
		sessionID:     uuid.NewString(),
		manifest:      manifest,
		progress:      map[string]bool{},
		credited:      map[string]bool{},
		userExpanded:  map[string]bool{},
		userCollapsed: map[string]bool{},
	}
	view.SetController(a)
	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("app.start", map[string]any{"versions": len(a.manifest.Versions)})

	settings, err := a.store.LoadSettings(ctx)
	if err != nil {
		a.logger.Error("settings.load_failed", map[string]any{"error": err.Error()})
		settings = map[string]string{}
	}
	muted := a.cfg.Mute
	if !muted {
		muted = settings[state.SettingMuted] == "true"
	}
	a.cries.SetMuted(muted)
	a.view.SetMuted(muted)

	versionKey := a.cfg.Version
	if versionKey == "" {
		versionKey = settings[state.SettingLastVersion]
	}
	info, _ := a.manifest.Find(versionKey)
	a.view.SetVersions(a.versionTabs(), info.Key)

	go a.switchVersion(context.Background(), info.Key)

	return a.view.Run()
}

func (a *App) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("store.close_failed", map[string]any{"error": err.Error()})
	}
	a.logger.Info("app.stop", nil)
	_ = a.logger.Close()
}

func (a *App) versionTabs() []ui.VersionTab {
	tabs := make([]ui.VersionTab, 0, len(a.manifest.Versions))
	for _, v := range a.manifest.Versions {
		tabs = append(tabs, ui.VersionTab{Key: v.Key, Label: v.Title})
	}
	return tabs
}

// beginLoad bumps the generation counter. finishLoad refuses results carrying
// a stale generation, so a slow load can never clobber a newer one.
func (a *App) beginLoad() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	return a.generation
}

func (a *App) finishLoad(gen uint64, lv loadedVersion, progress, credited map[string]bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		return false
	}
	a.version = lv
	a.progress = progress
	a.credited = credited
	a.userExpanded = map[string]bool{}
	a.userCollapsed = map[string]bool{}
	a.lastDirective = rules.Directive{}
	a.celebrations = nil
	return true
}

func (a *App) switchVersion(ctx context.Context, key string) {
	gen := a.beginLoad()
	a.view.SetLoading(true)
	defer a.view.SetLoading(false)

	info, _ := a.manifest.Find(key)
	cat, err := a.loader.LoadCatalog(ctx, info)
	if err != nil {
		a.logger.Error("catalog.load_failed", map[string]any{"version": info.Key, "error": err.Error()})
		a.view.ShowError("Could not load catalog for " + info.Title)
		return
	}

	lang := i18n.Empty()
	if info.Lang != "" {
		table, lerr := i18n.Load(filepath.Join(a.cfg.CatalogDir, info.Lang))
		if lerr != nil {
			a.logger.Info("lang.unavailable", map[string]any{"version": info.Key, "error": lerr.Error()})
		} else {
			lang = table
		}
	}

	// Unreadable saved state degrades to "no progress"; the catalog is still
	// worth showing.
	progress, err := a.store.LoadProgress(ctx, info.Key)
	if err != nil {
		a.logger.Error("progress.load_failed", map[string]any{"version": info.Key, "error": err.Error()})
		progress = map[string]bool{}
	}
	credited, err := a.store.LoadCredited(ctx, info.Key)
	if err != nil {
		a.logger.Error("credited.load_failed", map[string]any{"version": info.Key, "error": err.Error()})
		credited = map[string]bool{}
	}

	entries := catalog.Flatten(cat)
	items := make(map[string]catalog.ItemEntry, len(entries))
	for _, e := range entries {
		if item, ok := e.(catalog.ItemEntry); ok {
			items[item.ID] = item
		}
	}
	lv := loadedVersion{Info: info, Catalog: cat, Entries: entries, Items: items, Lang: lang}

	if !a.finishLoad(gen, lv, progress, credited) {
		a.logger.Debug("version.load_stale", map[string]any{"version": info.Key, "generation": gen})
		return
	}

	if err := a.store.SaveSettings(ctx, map[string]string{state.SettingLastVersion: info.Key}); err != nil {
		a.logger.Error("settings.save_failed", map[string]any{"error": err.Error()})
	}

	a.view.SetVersions(a.versionTabs(), info.Key)
	a.view.SetResetMenu(a.resetMenu())
	a.logger.Info("version.loaded", map[string]any{"version": info.Key, "entries": len(entries)})
	a.reconcile()
}

func (a *App) resetMenu() []ui.ResetEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	entries := []ui.ResetEntry{{SectionKey: "", Label: "Everything (" + a.version.Info.Title + ")"}}
	for _, s := range a.version.Catalog.Sections {
		entries = append(entries, ui.ResetEntry{SectionKey: s.Key, Label: s.ResetLabel})
	}
	return entries
}

// reconcile runs one full evaluation pass and pushes the result to the view.
// It is the only place directives are derived, so every mutation path ends
// here. A panicking pass is logged and dropped; the screen stays stale until
// the next mutation triggers a fresh one.
func (a *App) reconcile() {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("reconcile.panic", map[string]any{"panic": fmt.Sprint(rec), "stack": string(debug.Stack())})
		}
	}()

	f, ok := a.evaluate()
	if !ok {
		return
	}

	ctx := context.Background()
	for _, key := range f.persist {
		if err := a.store.AddCredited(ctx, f.versionKey, key); err != nil {
			a.logger.Error("credited.save_failed", map[string]any{"section": key, "error": err.Error()})
		}
	}

	a.view.SetRows(f.rows)
	a.view.SetProgress(f.caught, f.total)
	a.view.SetObjective(f.objective)
	if f.celebration != "" {
		a.view.Celebrate(f.celebration)
	}
}

// viewFrame is one evaluation's output, captured under the lock so the view
// and store calls afterwards need no locking.
type viewFrame struct {
	versionKey  string
	rows        []ui.Row
	objective   string
	caught      int
	total       int
	persist     []string
	celebration string
}

// evaluate derives one frame. The deferred unlock keeps the mutex released
// even when the engine or row building panics mid-pass.
func (a *App) evaluate() (viewFrame, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.version.Entries) == 0 {
		return viewFrame{}, false
	}
	in := rules.Input{
		Entries:       a.version.Entries,
		Progress:      a.progress,
		Exclusive:     a.version.Catalog.AllExclusiveGroups(),
		DedupeNames:   a.version.Catalog.DedupeFinalEvos,
		UserExpanded:  a.userExpanded,
		UserCollapsed: a.userCollapsed,
		Credited:      a.credited,
		Total:         a.version.Catalog.Total,
	}
	d := a.engine.Evaluate(in)
	a.lastDirective = d

	versionKey := a.version.Info.Key
	var persist []string
	for _, key := range d.NewlyCompleted {
		a.credited[key] = true
		persist = append(persist, key)
		a.celebrations = append(a.celebrations, a.celebrationMessageLocked(key, d))
	}
	if d.Objective == rules.AllObjectivesComplete && !a.credited[allCompleteKey] {
		a.credited[allCompleteKey] = true
		persist = append(persist, allCompleteKey)
		a.celebrations = append(a.celebrations, a.version.Lang.T("celebration.all",
			"ALL OBJECTIVES COMPLETE! Professor Oak is proud of you!"))
	}

	f := viewFrame{
		versionKey: versionKey,
		rows:       a.buildRowsLocked(d),
		objective:  a.objectiveLocked(d),
		caught:     d.Caught,
		total:      d.Total,
		persist:    persist,
	}
	if len(a.celebrations) > 0 {
		f.celebration = a.celebrations[0]
		a.celebrations = a.celebrations[1:]
	}
	return f, true
}

func (a *App) buildRowsLocked(d rules.Directive) []ui.Row {
	rows := make([]ui.Row, 0, len(a.version.Entries))
	for _, e := range a.version.Entries {
		switch entry := e.(type) {
		case catalog.SectionHeader:
			rows = append(rows, ui.Row{
				Kind:       ui.RowSection,
				SectionKey: entry.Key,
				Title:      a.version.Lang.T("section."+entry.Key, entry.Title),
				Collapsed:  d.Collapsed[entry.Key],
				Complete:   d.SectionComplete[entry.Key],
				Caught:     d.SectionCaught[entry.Key],
				Required:   entry.Required,
			})
		case catalog.ItemEntry:
			if d.HiddenItems[entry.ID] || d.Collapsed[entry.SectionKey] {
				continue
			}
			rows = append(rows, ui.Row{
				Kind:       ui.RowItem,
				SectionKey: entry.SectionKey,
				ID:         entry.ID,
				Name:       entry.Name,
				Dex:        entry.Dex,
				Info:       entry.Info,
				Notes:      entry.Notes,
				Checked:    a.progress[entry.ID],
			})
		}
	}
	return rows
}

func (a *App) objectiveLocked(d rules.Directive) string {
	for _, e := range a.version.Entries {
		header, ok := e.(catalog.SectionHeader)
		if !ok || header.Required <= 0 || d.SectionComplete[header.Key] {
			continue
		}
		return a.version.Lang.T("objective."+header.Key, header.ObjectiveLabel)
	}
	return a.version.Lang.T("objective.all", rules.AllObjectivesComplete)
}

func (a *App) celebrationMessageLocked(key string, d rules.Directive) string {
	for _, s := range a.version.Catalog.Sections {
		if s.Key == key {
			title := a.version.Lang.T("section."+key, s.Title)
			return a.version.Lang.T("celebration.section",
				fmt.Sprintf("%s objective complete! %d/%d caught.", title, d.SectionCaught[key], s.Required))
		}
	}
	return key + " complete!"
}

func (a *App) OnToggleItem(id string, caught bool) {
	ctx := context.Background()

	a.mu.Lock()
	item, ok := a.version.Items[id]
	if !ok {
		a.mu.Unlock()
		return
	}
	if caught {
		a.progress[id] = true
	} else {
		delete(a.progress, id)
	}
	versionKey := a.version.Info.Key
	a.mu.Unlock()

	if err := a.store.SetCaught(ctx, versionKey, id, caught); err != nil {
		a.logger.Error("progress.save_failed", map[string]any{"item": id, "error": err.Error()})
		a.view.FlashStatus("Could not save progress")
	}
	if caught {
		go func() {
			if err := a.cries.Play(ctx, item.Dex); err != nil {
				a.logger.Debug("cry.play_failed", map[string]any{"dex": item.Dex, "error": err.Error()})
			}
		}()
	}
	a.reconcile()
}

// OnToggleSection flips fold state relative to what is on screen right now.
// Expanding a complete section records a user override that survives further
// reconciles; collapsing records the opposite override.
func (a *App) OnToggleSection(sectionKey string) {
	a.mu.Lock()
	if a.lastDirective.Collapsed[sectionKey] {
		a.userExpanded[sectionKey] = true
		delete(a.userCollapsed, sectionKey)
	} else {
		a.userCollapsed[sectionKey] = true
		delete(a.userExpanded, sectionKey)
	}
	a.mu.Unlock()
	a.reconcile()
}

func (a *App) OnSelectVersion(key string) {
	a.switchVersion(context.Background(), key)
}

// OnResetSection wipes one section's caught marks and forgets its fold
// overrides, so the section comes back fresh instead of remembering a stale
// collapse.
func (a *App) OnResetSection(sectionKey string) {
	ctx := context.Background()

	a.mu.Lock()
	var ids []string
	label := sectionKey
	for _, s := range a.version.Catalog.Sections {
		if s.Key == sectionKey {
			ids = s.ItemIDs()
			label = s.ResetLabel
			break
		}
	}
	for _, id := range ids {
		delete(a.progress, id)
	}
	delete(a.userExpanded, sectionKey)
	delete(a.userCollapsed, sectionKey)
	versionKey := a.version.Info.Key
	a.mu.Unlock()

	if len(ids) == 0 {
		return
	}
	if err := a.store.RemoveItems(ctx, versionKey, ids); err != nil {
		a.logger.Error("reset.section_failed", map[string]any{"section": sectionKey, "error": err.Error()})
		a.view.FlashStatus("Could not reset " + label)
		return
	}
	a.logger.Info("reset.section", map[string]any{"version": versionKey, "section": sectionKey, "items": len(ids)})
	a.reconcile()
	a.view.FlashStatus(label + " reset")
}

func (a *App) OnResetAll() {
	ctx := context.Background()

	a.mu.Lock()
	versionKey := a.version.Info.Key
	title := a.version.Info.Title
	a.progress = map[string]bool{}
	a.credited = map[string]bool{}
	a.userExpanded = map[string]bool{}
	a.userCollapsed = map[string]bool{}
	a.celebrations = nil
	a.mu.Unlock()

	if err := a.store.ClearVersion(ctx, versionKey); err != nil {
		a.logger.Error("reset.all_failed", map[string]any{"version": versionKey, "error": err.Error()})
		a.view.FlashStatus("Could not reset progress")
		return
	}
	a.logger.Info("reset.all", map[string]any{"version": versionKey})
	a.reconcile()
	a.view.FlashStatus("All progress reset for " + title)
}

func (a *App) OnToggleMute() {
	muted := !a.cries.Muted()
	a.cries.SetMuted(muted)
	a.view.SetMuted(muted)
	if err := a.store.SaveSettings(context.Background(), map[string]string{
		state.SettingMuted: strconv.FormatBool(muted),
	}); err != nil {
		a.logger.Error("settings.save_failed", map[string]any{"error": err.Error()})
	}
	if muted {
		a.view.FlashStatus("Cries muted")
	} else {
		a.view.FlashStatus("Cries on")
	}
}

func (a *App) OnQuit() {
	a.logger.Info("app.quit", nil)
	a.view.Stop()
}
