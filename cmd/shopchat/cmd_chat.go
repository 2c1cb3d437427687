package main

import (
	"context"

	"shopchat/cmd/shopchat/chat"
	"shopchat/internal/chatsession"
	"shopchat/internal/config"
	"shopchat/internal/logging"
	"shopchat/internal/ux"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// chatCmd launches the interactive chat interface
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat interface",
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	settings := ux.NewSettingsManager(e.workspace)
	if err := settings.Load(); err != nil {
		logging.UI("Preferences unavailable, using defaults: %v", err)
	}

	model := chat.New(chat.Config{
		Workspace:   e.workspace,
		Settings:    settings,
		Placeholder: e.cfg.Chat.Placeholder,
		ReplyDelay:  e.cfg.GetReplyDelay(),
		Responder:   chatsession.NewRandomResponder(e.cfg.Chat.Responses, nil),
	})
	// Idempotent; the quit keys already call it.
	defer model.Shutdown()

	p := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	watcher, err := config.NewWatcher(settings.Path(), func(string) {
		p.Send(chat.SettingsChangedMsg{})
	})
	if err != nil {
		logging.UI("Preferences watcher disabled: %v", err)
	} else if err := watcher.Start(ctx); err != nil {
		logging.UI("Preferences watcher disabled: %v", err)
	} else {
		defer watcher.Stop()
	}

	_, err = p.Run()
	return err
}
