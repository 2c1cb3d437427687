package main

import (
	"fmt"
	"strings"

	"shopchat/internal/history"

	"github.com/spf13/cobra"
)

// historyCmd lists past conversations
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past conversations",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	items := history.Items()

	fmt.Fprintln(out, "Chat History")
	fmt.Fprintln(out, strings.Repeat("─", 50))
	for _, it := range items {
		fmt.Fprintf(out, "  %d. %s  (%s)\n", it.ID, it.Title, it.Time)
		fmt.Fprintf(out, "     %s\n", it.LastMessage)
	}
	fmt.Fprintln(out, strings.Repeat("─", 50))
	fmt.Fprintf(out, "Total: %d conversations\n", len(items))
	return nil
}
