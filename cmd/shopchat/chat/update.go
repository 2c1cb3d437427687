package chat

import (
	"errors"
	"fmt"

	"shopchat/internal/attachment"
	"shopchat/internal/chatsession"
	"shopchat/internal/logging"
	"shopchat/internal/ux"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Header and footer heights around the viewport
const (
	headerHeight = 2
	footerHeight = 6
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case renderMsg:
		m.onRender()
		return m, m.bridge.wait()

	case SettingsChangedMsg:
		if err := m.settingsMgr.Load(); err != nil {
			m.err = err
			return m, nil
		}
		// Our own saves echo back through the file watcher.
		s := m.settingsMgr.Get()
		if s == m.settings {
			return m, nil
		}
		m.applySettings(s)
		m.status = "Settings reloaded"
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state.IsBotTyping {
			m.refreshViewport()
		}
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.Shutdown()
			return m, tea.Quit
		}
		switch m.viewMode {
		case HistoryView:
			return m.updateHistory(msg)
		case SettingsView:
			return m.updateSettings(msg)
		case LightboxView:
			return m.updateLightbox(msg)
		case FilePickerView:
			return m.updateFilePicker(msg)
		default:
			return m.updateChat(msg)
		}
	}

	// Everything else (filepicker directory reads, cursor blink) goes to the
	// component that owns it.
	var cmd tea.Cmd
	if m.viewMode == FilePickerView {
		m.filepicker, cmd = m.filepicker.Update(msg)
		return m, cmd
	}
	m.textinput, cmd = m.textinput.Update(msg)
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - headerHeight - footerHeight
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.textinput.Width = width - 6
	m.list.SetSize(width, height-headerHeight)
	m.filepicker.Height = vpHeight
	m.help.Width = width
	m.ready = true

	m.rebuildRenderer()
	m.refreshViewport()
}

// onRender pulls the latest session state. A new bot reply rings the bell when
// notification sound is on.
func (m *Model) onRender() {
	prev := m.state.BotReplies()
	m.state = m.session.Snapshot()
	if m.state.BotReplies() > prev && m.settings.NotificationSound {
		m.bell()
	}
	m.refreshViewport()
	m.viewport.GotoBottom()
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderMessages())
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	staging := m.composer.Staging

	switch {
	case key.Matches(msg, m.keys.Send):
		m.composer.Text = m.textinput.Value()
		err := m.composer.Submit()
		switch {
		case err == nil:
			m.textinput.Reset()
			m.focused = -1
			m.err = nil
		case errors.Is(err, chatsession.ErrEmptySubmission):
		default:
			m.err = err
		}
		return m, nil

	case key.Matches(msg, m.keys.Attach):
		m.viewMode = FilePickerView
		m.status = ""
		return m, m.filepicker.Init()

	case key.Matches(msg, m.keys.Settings):
		m.viewMode = SettingsView
		m.settingsCursor = 0
		return m, nil

	case key.Matches(msg, m.keys.History):
		m.viewMode = HistoryView
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.session.Clear()
		return m, nil

	case key.Matches(msg, m.keys.NextChip):
		if n := staging.Len(); n > 0 {
			m.focused = (m.focused + 1) % n
		}
		return m, nil

	case key.Matches(msg, m.keys.Preview):
		i := m.focused
		if i < 0 {
			i = 0
		}
		if err := staging.OpenLightbox(i); err == nil {
			m.viewMode = LightboxView
		}
		return m, nil

	case key.Matches(msg, m.keys.Remove):
		m.removeFocused()
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDn):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Back):
		if m.focused >= 0 {
			m.focused = -1
			return m, nil
		}
		m.Shutdown()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.textinput, cmd = m.textinput.Update(msg)
	m.composer.Text = m.textinput.Value()
	return m, cmd
}

func (m *Model) removeFocused() {
	staging := m.composer.Staging
	if m.focused < 0 {
		return
	}
	if err := staging.RemoveAt(m.focused); err != nil {
		m.focused = -1
		return
	}
	if n := staging.Len(); n == 0 {
		m.focused = -1
	} else if m.focused >= n {
		m.focused = n - 1
	}
}

func (m Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.viewMode = ChatView
		return m, nil
	case msg.Type == tea.KeyEnter:
		if it, ok := m.list.SelectedItem().(historyItem); ok {
			m.status = "Opened " + it.item.Title
			logging.UIDebug("History item %d selected", it.item.ID)
		}
		m.viewMode = ChatView
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.viewMode = ChatView
	case key.Matches(msg, m.keys.MenuUp):
		m.settingsCursor = (m.settingsCursor + settingsRowCount - 1) % settingsRowCount
	case key.Matches(msg, m.keys.MenuDown), key.Matches(msg, m.keys.NextChip):
		m.settingsCursor = (m.settingsCursor + 1) % settingsRowCount
	case key.Matches(msg, m.keys.MenuPick):
		m.activateSetting()
	}
	return m, nil
}

func (m *Model) activateSetting() {
	var update func(*ux.Settings)
	switch m.settingsCursor {
	case settingsRowAppearance:
		update = func(s *ux.Settings) { s.Appearance = s.Appearance.Toggle() }
	case settingsRowSound:
		update = func(s *ux.Settings) { s.NotificationSound = !s.NotificationSound }
	case settingsRowClear:
		m.session.Clear()
		m.viewMode = ChatView
		return
	}

	s, err := m.settingsMgr.Update(update)
	if err != nil {
		m.err = fmt.Errorf("save settings: %w", err)
		return
	}
	m.applySettings(s)
}

func (m Model) updateLightbox(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	staging := m.composer.Staging
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Preview):
		staging.CloseLightbox()
		m.viewMode = ChatView
	case key.Matches(msg, m.keys.Remove):
		if _, i, ok := staging.Lightbox(); ok {
			m.focused = i
			m.removeFocused()
		}
		m.viewMode = ChatView
	case key.Matches(msg, m.keys.NextChip):
		if _, i, ok := staging.Lightbox(); ok && staging.Len() > 0 {
			next := (i + 1) % staging.Len()
			_ = staging.OpenLightbox(next)
			m.focused = next
		}
	}
	return m, nil
}

func (m Model) updateFilePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.viewMode = ChatView
		return m, nil
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if ok, path := m.filepicker.DidSelectFile(msg); ok {
		m.attach(path)
		m.viewMode = ChatView
	}
	return m, cmd
}

// attach stages the file at path. Unsupported entries are reported and skipped.
func (m *Model) attach(path string) {
	f, err := attachment.LoadFile(path)
	if err != nil {
		m.err = err
		return
	}
	if _, err := m.composer.Staging.Add(f); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.status = "Attached " + f.Name
}
