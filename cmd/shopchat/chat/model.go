// Package chat implements the interactive chat interface using bubbletea.
package chat

import (
	"fmt"
	"os"
	"time"

	"shopchat/cmd/shopchat/ui"
	"shopchat/internal/attachment"
	"shopchat/internal/chatsession"
	"shopchat/internal/composer"
	"shopchat/internal/history"
	"shopchat/internal/logging"
	"shopchat/internal/ux"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// ViewMode determines which component is focused/active
type ViewMode int

const (
	ChatView ViewMode = iota
	HistoryView
	SettingsView
	LightboxView
	FilePickerView
)

// Settings modal rows
const (
	settingsRowAppearance = iota
	settingsRowSound
	settingsRowClear
	settingsRowCount
)

// Config holds configuration for initializing the chat interface.
type Config struct {
	Workspace   string
	Settings    *ux.SettingsManager // loaded from Workspace when nil
	Placeholder string
	ReplyDelay  time.Duration
	Responder   chatsession.Responder
	Scheduler   chatsession.Scheduler

	// Bell rings the terminal bell. Defaults to writing BEL to stderr.
	Bell func()
}

// historyItem adapts history.Item to the list delegate.
type historyItem struct{ item history.Item }

func (i historyItem) Title() string       { return i.item.Title }
func (i historyItem) Description() string { return i.item.LastMessage + " · " + i.item.Time }
func (i historyItem) FilterValue() string { return i.item.Title }

// Model is the main model for the interactive chat interface
type Model struct {
	// UI components
	textinput  textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	list       list.Model
	filepicker filepicker.Model
	help       help.Model
	keys       keyMap
	styles     ui.Styles
	renderer   *glamour.TermRenderer

	// State
	viewMode       ViewMode
	state          chatsession.State
	focused        int // staged attachment under focus, -1 for none
	settingsCursor int
	settings       ux.Settings
	status         string
	err            error
	width          int
	height         int
	ready          bool

	// Backend
	session     *chatsession.Session
	composer    *composer.Composer
	settingsMgr *ux.SettingsManager
	bridge      *renderBridge
	workspace   string
	bell        func()
}

// New builds the chat model and its session.
func New(cfg Config) Model {
	sm := cfg.Settings
	if sm == nil {
		sm = ux.NewSettingsManager(cfg.Workspace)
		if err := sm.Load(); err != nil {
			logging.UI("Preferences unavailable, using defaults: %v", err)
		}
	}
	bell := cfg.Bell
	if bell == nil {
		bell = func() { fmt.Fprint(os.Stderr, "\a") }
	}

	bridge := newRenderBridge()
	session := chatsession.New(chatsession.Options{
		Delay:     cfg.ReplyDelay,
		Scheduler: cfg.Scheduler,
		Responder: cfg.Responder,
		Render:    bridge.render,
	})

	ti := textinput.New()
	ti.Placeholder = cfg.Placeholder
	if ti.Placeholder == "" {
		ti.Placeholder = "Type your message…"
	}
	ti.Prompt = "› "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	items := history.Items()
	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = historyItem{item: it}
	}
	l := list.New(listItems, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Chat History"
	l.SetShowHelp(false)

	fp := filepicker.New()
	fp.CurrentDirectory = cfg.Workspace
	if fp.CurrentDirectory == "" {
		fp.CurrentDirectory = "."
	}

	settings := sm.Get()
	m := Model{
		textinput:   ti,
		viewport:    viewport.New(0, 0),
		spinner:     sp,
		list:        l,
		filepicker:  fp,
		help:        help.New(),
		keys:        defaultKeyMap(),
		styles:      ui.StylesFor(settings.Appearance),
		focused:     -1,
		settings:    settings,
		session:     session,
		composer:    composer.New(session, attachment.NewStaging(nil)),
		settingsMgr: sm,
		bridge:      bridge,
		workspace:   cfg.Workspace,
		bell:        bell,
	}
	m.state = session.Snapshot()

	logging.UI("Chat UI created (appearance=%s, reply delay=%v)", settings.Appearance, session.Delay())
	return m
}

// Init starts the render bridge and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.bridge.wait())
}

// Shutdown tears down the composer and the session. Safe to call repeatedly.
func (m Model) Shutdown() {
	m.composer.Teardown()
	m.session.Teardown()
	m.bridge.close()
	logging.UI("Chat UI shut down")
}

// Session exposes the underlying chat session.
func (m Model) Session() *chatsession.Session {
	return m.session
}

// Staging exposes the attachment staging area.
func (m Model) Staging() *attachment.Staging {
	return m.composer.Staging
}

// applySettings rebuilds everything that depends on the appearance.
func (m *Model) applySettings(s ux.Settings) {
	m.settings = s
	m.styles = ui.StylesFor(s.Appearance)
	m.rebuildRenderer()
	m.refreshViewport()
}

func (m *Model) rebuildRenderer() {
	wrap := m.viewport.Width - 4
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.styles.Theme.GlamourStyle()),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		logging.UIDebug("glamour renderer unavailable: %v", err)
		m.renderer = nil
		return
	}
	m.renderer = r
}
