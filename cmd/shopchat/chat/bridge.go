package chat

import (
	"sync"

	"shopchat/internal/chatsession"

	tea "github.com/charmbracelet/bubbletea"
)

// renderMsg tells Update the session changed. The payload is read with
// Session.Snapshot, so bursts of renders coalesce into one message.
type renderMsg struct{}

// SettingsChangedMsg is sent by the preferences watcher when the file was
// edited outside the UI.
type SettingsChangedMsg struct{}

// renderBridge turns session render callbacks (called under the session lock)
// into bubbletea messages without blocking the session.
type renderBridge struct {
	ch   chan struct{}
	once sync.Once
}

func newRenderBridge() *renderBridge {
	return &renderBridge{ch: make(chan struct{}, 1)}
}

func (b *renderBridge) render(chatsession.State) {
	select {
	case b.ch <- struct{}{}:
	default:
	}
}

// close must only run once the session is torn down.
func (b *renderBridge) close() {
	b.once.Do(func() { close(b.ch) })
}

func (b *renderBridge) wait() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-b.ch; !ok {
			return nil
		}
		return renderMsg{}
	}
}
