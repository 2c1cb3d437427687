package main

import (
	"fmt"

	"shopchat/internal/ux"

	"github.com/spf13/cobra"
)

// settingsCmd manages user preferences
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change appearance and notification settings",
	Long: `Show or change the preferences stored in .shopchat/preferences.json.

Keys:
  appearance          light | dark
  notification_sound  on | off`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}

func loadSettings() (*ux.SettingsManager, error) {
	e, err := loadEnv()
	if err != nil {
		return nil, err
	}
	sm := ux.NewSettingsManager(e.workspace)
	if err := sm.Load(); err != nil {
		return nil, err
	}
	return sm, nil
}

func printSettings(cmd *cobra.Command, s ux.Settings) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "appearance:          %s\n", s.Appearance)
	fmt.Fprintf(out, "notification_sound:  %s\n", onOff(s.NotificationSound))
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	sm, err := loadSettings()
	if err != nil {
		return err
	}
	printSettings(cmd, sm.Get())
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	sm, err := loadSettings()
	if err != nil {
		return err
	}
	s, err := sm.Set(args[0], args[1])
	if err != nil {
		return err
	}
	printSettings(cmd, s)
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
