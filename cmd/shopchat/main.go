// Package main provides the shopchat CLI entry point.
package main

import (
	"fmt"
	"os"

	"shopchat/internal/config"
	"shopchat/internal/logging"
	"shopchat/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose   bool
	workspace string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shopchat",
	Short: "shopchat - storefront catalog with a simulated support chatbot",
	Long: `shopchat pairs a small storefront (users, categories, products, orders)
with a simulated chatbot.

Run without arguments to start the interactive chat interface, or use
"shopchat serve" to expose the chat over WebSocket and the catalog over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stderr"}
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: runChat,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is the per-command runtime: resolved workspace plus loaded config.
type env struct {
	workspace string
	cfg       *config.Config
}

// loadEnv resolves the workspace, loads and validates config, and starts the
// file logger.
func loadEnv() (*env, error) {
	ws := workspace
	if ws == "" {
		var err error
		ws, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve workspace: %w", err)
		}
	}

	cfg, err := config.Load(config.Path(ws))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := logging.Initialize(ws, cfg.Logging.ToOptions()); err != nil {
		return nil, err
	}
	logging.Boot("shopchat starting in %s", ws)

	if logger != nil {
		logger.Debug("environment loaded",
			zap.String("workspace", ws),
			zap.String("driver", cfg.Store.Driver),
			zap.String("reply_delay", cfg.Chat.ReplyDelay),
		)
	}
	return &env{workspace: ws, cfg: cfg}, nil
}

func (e *env) openStore() (*store.LocalStore, error) {
	path := e.cfg.DatabasePath(e.workspace)
	st, err := store.Open(e.cfg.Store.Driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if logger != nil {
		logger.Debug("store opened", zap.String("path", path))
	}
	return st, nil
}
