package chat

import (
	"fmt"
	"strings"

	"shopchat/internal/attachment"
	"shopchat/internal/chatsession"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	switch m.viewMode {
	case HistoryView:
		return m.list.View()
	case SettingsView:
		return m.overlay(m.renderSettings())
	case LightboxView:
		return m.overlay(m.renderLightbox())
	case FilePickerView:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			m.styles.ModalTitle.Render("Attach a file"),
			m.filepicker.View(),
			m.styles.Muted.Render("enter select · esc cancel"),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	s := m.styles
	title := fmt.Sprintf("%s | Chatbot %s Online",
		s.HeaderLink.Render("Chat History"),
		s.OnlineDot.Render("●"),
	)
	return s.Header.Width(max(m.width, 1)).Render(title)
}

func (m Model) renderFooter() string {
	s := m.styles
	var b strings.Builder

	if chips := m.renderChips(); chips != "" {
		b.WriteString(chips)
		b.WriteString("\n")
	}
	b.WriteString(s.Input.Width(max(m.width-2, 10)).Render(m.textinput.View()))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(s.Error.Render("Error: " + m.err.Error()))
	case m.status != "":
		b.WriteString(s.Muted.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(s.Footer.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderChips() string {
	items := m.composer.Staging.Items()
	if len(items) == 0 {
		return ""
	}
	chips := make([]string, len(items))
	for i, it := range items {
		label := it.Name
		if it.Kind == attachment.KindImage {
			label = "🖼 " + label
		} else {
			label = "📎 " + label
		}
		style := m.styles.Chip
		if i == m.focused {
			style = m.styles.ChipFocused
		}
		chips[i] = style.Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

// renderMessages lays out the log: user bubbles on the right, bot bubbles on
// the left with markdown rendering, then the typing indicator.
func (m Model) renderMessages() string {
	s := m.styles
	width := max(m.viewport.Width, 20)
	bubbleWidth := width * 3 / 4

	if len(m.state.Messages) == 0 && !m.state.IsBotTyping {
		return s.Muted.Render("Say hello to start the conversation.")
	}

	var b strings.Builder
	for _, msg := range m.state.Messages {
		stamp := s.Timestamp.Render(msg.CreatedAt.Format("15:04"))
		var block string
		if msg.Role == chatsession.RoleUser {
			body := msg.Content
			for _, a := range msg.Attachments {
				body += "\n📎 " + a.Name
			}
			bubble := s.UserBubble.MaxWidth(bubbleWidth).Render(strings.TrimSpace(body))
			block = lipgloss.PlaceHorizontal(width, lipgloss.Right,
				lipgloss.JoinVertical(lipgloss.Right, bubble, stamp))
		} else {
			bubble := s.BotBubble.MaxWidth(bubbleWidth).Render(m.renderMarkdown(msg.Content))
			block = lipgloss.JoinVertical(lipgloss.Left, bubble, stamp)
		}
		b.WriteString(block)
		b.WriteString("\n\n")
	}

	if m.state.IsBotTyping {
		b.WriteString(m.spinner.View() + s.Typing.Render(" Bot is typing…"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

func (m Model) renderSettings() string {
	s := m.styles
	rows := []string{
		fmt.Sprintf("Appearance          %s", m.settings.Appearance),
		fmt.Sprintf("Notification sound  %s", onOff(m.settings.NotificationSound)),
		"Clear chat",
	}
	for i, r := range rows {
		if i == m.settingsCursor {
			rows[i] = s.Selected.Render("› " + r)
		} else {
			rows[i] = "  " + r
		}
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		s.ModalTitle.Render("Settings"),
		strings.Join(rows, "\n"),
		"",
		s.Muted.Render("↑/↓ move · enter toggle · esc close"),
	)
	return s.Modal.Render(body)
}

func (m Model) renderLightbox() string {
	s := m.styles
	it, i, ok := m.composer.Staging.Lightbox()
	if !ok {
		return s.Modal.Render("Nothing to preview")
	}

	lines := []string{
		s.ModalTitle.Render(fmt.Sprintf("%s (%d/%d)", it.Name, i+1, m.composer.Staging.Len())),
		"Type: " + it.MimeType,
	}
	if pv := it.Preview; pv != nil {
		if pv.Format != "" {
			lines = append(lines, fmt.Sprintf("Image: %s %d×%d", pv.Format, pv.Width, pv.Height))
		} else {
			lines = append(lines, "Image: preview unavailable")
		}
		lines = append(lines, fmt.Sprintf("Size: %d bytes", len(pv.Bytes)))
	}
	lines = append(lines, "", s.Muted.Render("tab next · ctrl+d remove · esc close"))
	return s.Modal.Render(strings.Join(lines, "\n"))
}

func (m Model) overlay(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
