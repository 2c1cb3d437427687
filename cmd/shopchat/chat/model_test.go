package chat

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shopchat/internal/chatsession"
	"shopchat/internal/ux"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testDelay = 500 * time.Millisecond

type harness struct {
	model    Model
	sched    *chatsession.ManualScheduler
	settings *ux.SettingsManager
	dir      string
	bells    *int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	sm := ux.NewSettingsManager(dir)
	require.NoError(t, sm.Load())

	sched := chatsession.NewManualScheduler()
	bells := new(int)
	m := New(Config{
		Workspace:  dir,
		Settings:   sm,
		ReplyDelay: testDelay,
		Scheduler:  sched,
		Responder: chatsession.ResponderFunc(func(text string, _ []chatsession.AttachmentMeta) string {
			return "**got** " + text
		}),
		Bell: func() { *bells++ },
	})
	h := &harness{model: m, sched: sched, settings: sm, dir: dir, bells: bells}
	h.send(t, tea.WindowSizeMsg{Width: 100, Height: 40})
	return h
}

func (h *harness) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := h.model.Update(msg)
	m, ok := next.(Model)
	require.True(t, ok, "Model type assertion failed")
	h.model = m
	return cmd
}

func (h *harness) key(t *testing.T, k tea.KeyType) tea.Cmd {
	t.Helper()
	return h.send(t, tea.KeyMsg{Type: k})
}

func (h *harness) typeText(t *testing.T, s string) {
	t.Helper()
	h.send(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// drain delivers the pending render notification, as the bubbletea runtime
// would after the session rendered.
func (h *harness) drain(t *testing.T) {
	t.Helper()
	msg := h.model.bridge.wait()()
	require.IsType(t, renderMsg{}, msg)
	h.send(t, msg)
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestResizeAndHeader(t *testing.T) {
	h := newHarness(t)
	assert.True(t, h.model.ready)
	assert.Equal(t, 100, h.model.width)

	view := h.model.View()
	assert.Contains(t, view, "Chat History | Chatbot ● Online")
	assert.Contains(t, view, "Type your message…")
}

func TestSubmitAndReply(t *testing.T) {
	h := newHarness(t)

	h.typeText(t, "hello")
	assert.Equal(t, "hello", h.model.composer.Text)

	h.key(t, tea.KeyEnter)
	h.drain(t)

	require.Len(t, h.model.state.Messages, 1)
	assert.Equal(t, "hello", h.model.state.Messages[0].Content)
	assert.True(t, h.model.state.IsBotTyping)
	assert.Empty(t, h.model.textinput.Value(), "input cleared after send")
	assert.Contains(t, h.model.View(), "Bot is typing…")

	h.sched.Advance(testDelay)
	h.drain(t)

	require.Len(t, h.model.state.Messages, 2)
	assert.Equal(t, chatsession.RoleBot, h.model.state.Messages[1].Role)
	assert.False(t, h.model.state.IsBotTyping)
	assert.Equal(t, 1, *h.bells, "bot reply rings the bell when sound is on")

	view := h.model.View()
	assert.NotContains(t, view, "Bot is typing…")
	assert.Contains(t, view, "got")
}

func TestEmptyEnterDoesNothing(t *testing.T) {
	h := newHarness(t)
	h.typeText(t, "   ")
	h.key(t, tea.KeyEnter)

	assert.Empty(t, h.model.Session().Snapshot().Messages)
	assert.Equal(t, 0, h.sched.Pending())
	assert.NoError(t, h.model.err)
}

func TestRapidSubmitsReplyOnce(t *testing.T) {
	h := newHarness(t)

	h.typeText(t, "one")
	h.key(t, tea.KeyEnter)
	h.sched.Advance(testDelay / 2)
	h.typeText(t, "two")
	h.key(t, tea.KeyEnter)

	h.sched.Advance(testDelay / 2)
	assert.Equal(t, 2, len(h.model.Session().Snapshot().Messages), "first reply was superseded")

	h.sched.Advance(testDelay / 2)
	h.drain(t)
	assert.Equal(t, 1, h.model.state.BotReplies())
	assert.Equal(t, 1, *h.bells)
}

func TestClearChat(t *testing.T) {
	h := newHarness(t)
	h.typeText(t, "hi")
	h.key(t, tea.KeyEnter)
	h.drain(t)

	h.key(t, tea.KeyCtrlL)
	h.drain(t)
	assert.Empty(t, h.model.state.Messages)
	assert.False(t, h.model.state.IsBotTyping)

	h.sched.Advance(time.Minute)
	assert.Empty(t, h.model.Session().Snapshot().Messages, "cleared reply never lands")
}

func TestSettingsModal(t *testing.T) {
	h := newHarness(t)

	h.key(t, tea.KeyCtrlO)
	require.Equal(t, SettingsView, h.model.viewMode)
	assert.Contains(t, h.model.View(), "Appearance")

	// Appearance row
	h.key(t, tea.KeyEnter)
	assert.Equal(t, ux.AppearanceDark, h.model.settings.Appearance)
	assert.True(t, h.model.styles.Theme.IsDark)
	assert.Equal(t, ux.AppearanceDark, h.settings.Get().Appearance)

	// Sound row
	h.key(t, tea.KeyDown)
	h.key(t, tea.KeyEnter)
	assert.False(t, h.model.settings.NotificationSound)

	reloaded := ux.NewSettingsManager(h.dir)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, ux.AppearanceDark, reloaded.Get().Appearance)
	assert.False(t, reloaded.Get().NotificationSound)

	h.key(t, tea.KeyEsc)
	assert.Equal(t, ChatView, h.model.viewMode)
}

func TestSettingsClearClosesModal(t *testing.T) {
	h := newHarness(t)
	h.typeText(t, "hi")
	h.key(t, tea.KeyEnter)
	h.drain(t)

	h.key(t, tea.KeyCtrlO)
	h.key(t, tea.KeyUp) // wraps to the last row
	require.Equal(t, settingsRowClear, h.model.settingsCursor)
	h.key(t, tea.KeyEnter)

	assert.Equal(t, ChatView, h.model.viewMode)
	h.drain(t)
	assert.Empty(t, h.model.state.Messages)
}

func TestSoundOffSkipsBell(t *testing.T) {
	h := newHarness(t)
	_, err := h.settings.Update(func(s *ux.Settings) { s.NotificationSound = false })
	require.NoError(t, err)
	h.send(t, SettingsChangedMsg{})

	h.typeText(t, "quiet")
	h.key(t, tea.KeyEnter)
	h.sched.Advance(testDelay)
	h.drain(t)

	assert.Equal(t, 1, h.model.state.BotReplies())
	assert.Equal(t, 0, *h.bells)
}

func TestSettingsChangedOnDisk(t *testing.T) {
	h := newHarness(t)

	other := ux.NewSettingsManager(h.dir)
	require.NoError(t, other.Load())
	_, err := other.Update(func(s *ux.Settings) { s.Appearance = ux.AppearanceDark })
	require.NoError(t, err)

	h.send(t, SettingsChangedMsg{})
	assert.Equal(t, ux.AppearanceDark, h.model.settings.Appearance)
	assert.True(t, h.model.styles.Theme.IsDark)
	assert.Equal(t, "Settings reloaded", h.model.status)
}

func TestOwnSettingsChangeIsNotReportedAsReload(t *testing.T) {
	h := newHarness(t)

	h.key(t, tea.KeyCtrlO)
	h.key(t, tea.KeyEnter)
	require.Equal(t, ux.AppearanceDark, h.model.settings.Appearance)
	h.key(t, tea.KeyEsc)

	// The watcher fires for the file the modal just saved.
	h.send(t, SettingsChangedMsg{})
	assert.Equal(t, ux.AppearanceDark, h.model.settings.Appearance)
	assert.NotEqual(t, "Settings reloaded", h.model.status)
}

func TestBackspaceControlCodeEditsInput(t *testing.T) {
	h := newHarness(t)

	h.typeText(t, "ab")
	// Terminals that send ^H for backspace deliver ctrl+h.
	h.key(t, tea.KeyCtrlH)
	assert.Equal(t, ChatView, h.model.viewMode)
	assert.Equal(t, "a", h.model.textinput.Value())
}

func TestHistoryView(t *testing.T) {
	h := newHarness(t)

	h.key(t, tea.KeyCtrlY)
	require.Equal(t, HistoryView, h.model.viewMode)
	assert.Contains(t, h.model.View(), "Chat with AI")

	h.key(t, tea.KeyEnter)
	assert.Equal(t, ChatView, h.model.viewMode)
	assert.True(t, strings.HasPrefix(h.model.status, "Opened Chat with AI"), h.model.status)

	h.key(t, tea.KeyCtrlY)
	h.key(t, tea.KeyEsc)
	assert.Equal(t, ChatView, h.model.viewMode)
}

func TestAttachmentsAndLightbox(t *testing.T) {
	h := newHarness(t)
	pool := h.model.Staging().Pool()

	h.model.attach(writePNG(t, h.dir, "a.png"))
	h.model.attach(writePNG(t, h.dir, "b.png"))
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "notes.txt"), []byte("hi"), 0644))
	h.model.attach(filepath.Join(h.dir, "notes.txt"))

	require.Equal(t, 3, h.model.Staging().Len())
	assert.Equal(t, 2, pool.Live())
	assert.Contains(t, h.model.View(), "a.png")

	h.key(t, tea.KeyTab)
	h.key(t, tea.KeyTab)
	assert.Equal(t, 1, h.model.focused)

	h.key(t, tea.KeyCtrlP)
	require.Equal(t, LightboxView, h.model.viewMode)
	view := h.model.View()
	assert.Contains(t, view, "b.png (2/3)")
	assert.Contains(t, view, "png 3×2")

	h.key(t, tea.KeyEsc)
	assert.Equal(t, ChatView, h.model.viewMode)
	_, _, open := h.model.Staging().Lightbox()
	assert.False(t, open)

	h.key(t, tea.KeyCtrlD)
	assert.Equal(t, 2, h.model.Staging().Len())
	assert.Equal(t, 1, pool.Live())

	// Sending releases the remaining previews and carries the metadata.
	h.key(t, tea.KeyEnter)
	h.drain(t)
	require.Len(t, h.model.state.Messages, 1)
	assert.Equal(t, " ", h.model.state.Messages[0].Content)
	assert.Equal(t, []chatsession.AttachmentMeta{
		{Name: "a.png", MimeType: "image/png"},
		{Name: "notes.txt", MimeType: "text/plain"},
	}, h.model.state.Messages[0].Attachments)
	assert.Equal(t, 0, pool.Live())
	assert.Equal(t, -1, h.model.focused)
}

func TestRemoveFromLightbox(t *testing.T) {
	h := newHarness(t)
	h.model.attach(writePNG(t, h.dir, "a.png"))

	h.key(t, tea.KeyCtrlP)
	require.Equal(t, LightboxView, h.model.viewMode)
	h.key(t, tea.KeyCtrlD)

	assert.Equal(t, ChatView, h.model.viewMode)
	assert.Equal(t, 0, h.model.Staging().Len())
	assert.Equal(t, 0, h.model.Staging().Pool().Live())
}

func TestFilePickerEscape(t *testing.T) {
	h := newHarness(t)
	cmd := h.key(t, tea.KeyCtrlA)
	assert.NotNil(t, cmd, "picker reads the directory")
	assert.Equal(t, FilePickerView, h.model.viewMode)
	assert.Contains(t, h.model.View(), "Attach a file")

	h.key(t, tea.KeyEsc)
	assert.Equal(t, ChatView, h.model.viewMode)
}

func TestQuitTearsDown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := newHarness(t)
	h.model.attach(writePNG(t, h.dir, "a.png"))
	h.typeText(t, "pending")
	h.key(t, tea.KeyEnter)
	h.drain(t)
	h.model.attach(writePNG(t, h.dir, "b.png"))

	cmd := h.key(t, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	assert.True(t, h.model.Session().Closed())
	assert.False(t, h.model.Session().Pending())
	assert.Equal(t, 0, h.model.Staging().Pool().Live())
	assert.Nil(t, h.model.bridge.wait()(), "bridge closed after teardown")

	h.sched.Advance(time.Minute)
	assert.Len(t, h.model.Session().Snapshot().Messages, 1)

	h.model.Shutdown()
}

func TestEscUnfocusesBeforeQuitting(t *testing.T) {
	h := newHarness(t)
	h.model.attach(writePNG(t, h.dir, "a.png"))
	h.key(t, tea.KeyTab)
	require.Equal(t, 0, h.model.focused)

	cmd := h.key(t, tea.KeyEsc)
	assert.Nil(t, cmd)
	assert.Equal(t, -1, h.model.focused)
	assert.False(t, h.model.Session().Closed())

	cmd = h.key(t, tea.KeyEsc)
	require.NotNil(t, cmd)
	assert.True(t, h.model.Session().Closed())
}
