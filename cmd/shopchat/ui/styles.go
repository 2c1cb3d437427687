// Package ui provides the visual styling for the shopchat terminal UI.
// Themes follow the user's appearance setting; there is no terminal
// auto-detection.
package ui

import (
	"shopchat/internal/ux"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Light mode
	LightBackground = lipgloss.Color("#ffffff")
	LightForeground = lipgloss.Color("#0f172a")
	LightPrimary    = lipgloss.Color("#2563eb") // user bubble
	LightSecondary  = lipgloss.Color("#f1f5f9") // bot bubble
	LightMuted      = lipgloss.Color("#64748b")
	LightBorder     = lipgloss.Color("#e2e8f0")
	LightCard       = lipgloss.Color("#f8fafc")

	// Dark mode
	DarkBackground = lipgloss.Color("#0b1120")
	DarkForeground = lipgloss.Color("#e2e8f0")
	DarkPrimary    = lipgloss.Color("#3b82f6")
	DarkSecondary  = lipgloss.Color("#1e293b")
	DarkMuted      = lipgloss.Color("#94a3b8")
	DarkBorder     = lipgloss.Color("#334155")
	DarkCard       = lipgloss.Color("#111827")

	// Same in both modes
	Online      = lipgloss.Color("#22c55e")
	Destructive = lipgloss.Color("#ef4444")
)

// Theme holds one color scheme.
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// ThemeFor maps an appearance setting to its theme. Unknown values get light.
func ThemeFor(a ux.Appearance) Theme {
	if a == ux.AppearanceDark {
		return DarkTheme()
	}
	return LightTheme()
}

// GlamourStyle names the glamour standard style matching the theme.
func (t Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	App    lipgloss.Style
	Header lipgloss.Style
	Footer lipgloss.Style

	// Header parts
	HeaderLink lipgloss.Style
	OnlineDot  lipgloss.Style

	// Messages
	UserBubble lipgloss.Style
	BotBubble  lipgloss.Style
	Timestamp  lipgloss.Style
	Typing     lipgloss.Style

	// Composer
	Input       lipgloss.Style
	Chip        lipgloss.Style
	ChipFocused lipgloss.Style

	// Overlays
	Modal      lipgloss.Style
	ModalTitle lipgloss.Style
	Selected   lipgloss.Style

	// Text
	Muted lipgloss.Style
	Bold  lipgloss.Style
	Error lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		App: lipgloss.NewStyle().
			Background(theme.Background).
			Foreground(theme.Foreground),

		Header: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(theme.Border).
			Padding(0, 1).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		HeaderLink: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Underline(true),

		OnlineDot: lipgloss.NewStyle().
			Foreground(Online),

		UserBubble: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1),

		BotBubble: lipgloss.NewStyle().
			Background(theme.Secondary).
			Foreground(theme.Foreground).
			Padding(0, 1),

		Timestamp: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Typing: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Input: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Chip: lipgloss.NewStyle().
			Background(theme.Card).
			Foreground(theme.Foreground).
			Padding(0, 1).
			MarginRight(1),

		ChipFocused: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			MarginRight(1),

		Modal: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Background(theme.Card).
			Foreground(theme.Foreground).
			Padding(1, 2),

		ModalTitle: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true).
			MarginBottom(1),

		Selected: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),
	}
}

// StylesFor is NewStyles(ThemeFor(a)).
func StylesFor(a ux.Appearance) Styles {
	return NewStyles(ThemeFor(a))
}
