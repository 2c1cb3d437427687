package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"shopchat/internal/chatsession"
	"shopchat/internal/config"
	"shopchat/internal/logging"
	"shopchat/internal/server"
	"shopchat/internal/ux"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// serveCmd runs the HTTP + WebSocket bridge
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat over WebSocket and the catalog over HTTP",
	Long: `Starts the HTTP server.

Routes:
  GET  /health
  GET  /chat/ws                              WebSocket chat session
  GET  /chat/history, /chat/history/:id
  GET  /settings, PUT /settings
  GET  /catalog/categories[/:slug[/products]]
  GET  /catalog/products
  GET  /users/:id/orders`,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
}

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	settings := ux.NewSettingsManager(e.workspace)
	if err := settings.Load(); err != nil {
		return err
	}

	zlog := logger
	if zlog == nil {
		zlog = zap.NewNop()
	}

	cfg := e.cfg
	responses := cfg.Chat.Responses
	delay := cfg.GetReplyDelay()
	srv := server.New(st, settings, server.Options{
		ReadTimeout:    cfg.GetReadTimeout(),
		WriteTimeout:   cfg.GetWriteTimeout(),
		PingInterval:   cfg.GetPingInterval(),
		MaxMessageSize: cfg.Server.MaxMessageSize,
		NewSession: func(render chatsession.RenderFunc) *chatsession.Session {
			return chatsession.New(chatsession.Options{
				Delay:     delay,
				Responder: chatsession.NewRandomResponder(responses, nil),
				Render:    render,
			})
		},
		Logger: zlog,
	})

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := config.NewWatcher(settings.Path(), func(string) {
		srv.SettingsChanged()
	})
	if err != nil {
		return fmt.Errorf("failed to create preferences watcher: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start(addr)
	})

	g.Go(func() error {
		if err := watcher.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		watcher.Stop()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logging.Server("Shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	zlog.Info("serving", zap.String("addr", addr))
	fmt.Fprintf(cmd.OutOrStdout(), "shopchat listening on %s (ctrl+c to stop)\n", addr)

	return g.Wait()
}
