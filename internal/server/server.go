// Package server exposes the chat session over WebSocket and the catalog,
// settings and history over JSON HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"shopchat/internal/catalog"
	"shopchat/internal/chatsession"
	"shopchat/internal/logging"
	"shopchat/internal/ux"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Catalog is the read side of the store used by the HTTP handlers.
type Catalog interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]catalog.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (catalog.Category, error)
	ProductsInCategory(ctx context.Context, slug string) ([]catalog.Product, error)
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	OrdersForUser(ctx context.Context, userID int64) ([]catalog.Order, error)
	Stats(ctx context.Context) (catalog.Stats, error)
}

// Options configures the server. Zero durations select the defaults.
type Options struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64

	// NewSession builds the per-connection chat session. Defaults to a
	// wall-clock session with the default reply delay and responses.
	NewSession func(render chatsession.RenderFunc) *chatsession.Session

	Logger *zap.Logger
}

func (o *Options) setDefaults() {
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 60 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 64 * 1024
	}
	if o.NewSession == nil {
		o.NewSession = func(render chatsession.RenderFunc) *chatsession.Session {
			return chatsession.New(chatsession.Options{Render: render})
		}
	}
	if o.Logger == nil {
		o.Logger = logging.Get(logging.CategoryServer).Zap()
	}
}

// Server is the HTTP + WebSocket bridge.
type Server struct {
	echo     *echo.Echo
	opts     Options
	catalog  Catalog
	settings *ux.SettingsManager
	upgrader websocket.Upgrader

	mu      sync.Mutex
	conns   map[string]*Connection
	closing bool
	wg      sync.WaitGroup
}

// New creates a server. catalog and settings may be nil; their routes then
// answer 503.
func New(cat Catalog, settings *ux.SettingsManager, opts Options) *Server {
	opts.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	log := opts.Logger
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				log.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Debug("request", fields...)
			return nil
		},
	}))

	s := &Server{
		echo:     e,
		opts:     opts,
		catalog:  cat,
		settings: settings,
		conns:    make(map[string]*Connection),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	e.GET("/health", s.handleHealth)
	e.GET("/chat/history", s.handleHistory)
	e.GET("/chat/history/:id", s.handleHistoryItem)
	e.GET("/chat/ws", s.HandleWebSocket)
	e.GET("/settings", s.handleGetSettings)
	e.PUT("/settings", s.handlePutSettings)
	e.GET("/catalog/categories", s.handleCategories)
	e.GET("/catalog/categories/:slug", s.handleCategory)
	e.GET("/catalog/categories/:slug/products", s.handleCategoryProducts)
	e.GET("/catalog/products", s.handleProducts)
	e.GET("/users/:id/orders", s.handleUserOrders)

	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr. It returns nil after a clean Shutdown.
func (s *Server) Start(addr string) error {
	logging.Server("Listening on %s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, closes every WebSocket, and waits for
// their sessions to be torn down.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)

	// Upgraded sockets are hijacked, so echo does not wait for them. Once
	// closing is set no handler can start pumps, and wg only shrinks.
	s.mu.Lock()
	s.closing = true
	for _, c := range s.conns {
		c.closeSocket()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	logging.Server("Server stopped")
	return err
}

// ConnectionCount returns the number of open WebSocket connections.
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// SettingsChanged reloads settings from disk, e.g. after the preferences
// file watcher fires.
func (s *Server) SettingsChanged() {
	if s.settings == nil {
		return
	}
	if err := s.settings.Load(); err != nil {
		logging.ServerWarn("Reload settings failed: %v", err)
		return
	}
	logging.Server("Settings reloaded: %+v", s.settings.Get())
}

// track registers c and reserves its two pumps. It reports false once
// Shutdown has begun.
func (s *Server) track(c *Connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[c.ID] = c
	s.wg.Add(2)
	return true
}

func (s *Server) untrack(c *Connection) {
	s.mu.Lock()
	delete(s.conns, c.ID)
	s.mu.Unlock()
}
