package server

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"shopchat/internal/chatsession"
	"shopchat/internal/logging"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// sendBuffer is the per-connection outbound frame queue length.
const sendBuffer = 64

// Connection is one WebSocket client and the chat session it owns.
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	session *chatsession.Session

	closeOnce sync.Once
}

func (c *Connection) closeSocket() {
	c.closeOnce.Do(func() { c.Conn.Close() })
}

// enqueue never blocks. A full queue means the client stopped reading; the
// socket is closed and the read pump tears the session down.
func (c *Connection) enqueue(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.ServerWarn("Marshal frame for %s failed: %v", c.ID, err)
		return
	}
	select {
	case c.Send <- data:
	default:
		logging.ServerWarn("Connection %s buffer full, closing", c.ID)
		c.closeSocket()
	}
}

// HandleWebSocket upgrades the request and starts the pumps. The connection
// gets a fresh session and its current (empty) state right away.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logging.ServerWarn("Failed to upgrade WebSocket: %v", err)
		return err
	}
	ws.SetReadLimit(s.opts.MaxMessageSize)

	conn := &Connection{
		ID:   uuid.NewString(),
		Conn: ws,
		Send: make(chan []byte, sendBuffer),
	}
	conn.session = s.opts.NewSession(func(st chatsession.State) {
		conn.enqueue(newStateMessage(conn.ID, st))
	})
	conn.enqueue(newStateMessage(conn.ID, conn.session.Snapshot()))

	if !s.track(conn) {
		conn.session.Teardown()
		conn.closeSocket()
		logging.ServerDebug("Connection %s refused: shutting down", conn.ID)
		return nil
	}
	go s.writePump(conn)
	go s.readPump(conn)

	logging.Server("Connection opened: %s", conn.ID)
	return nil
}

func (s *Server) readPump(conn *Connection) {
	defer func() {
		// Teardown first: no render can enqueue after it returns, so Send
		// is safe to close.
		conn.session.Teardown()
		close(conn.Send)
		s.untrack(conn)
		s.wg.Done()
		logging.Server("Connection closed: %s", conn.ID)
	}()

	conn.Conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
		return nil
	})

	for {
		_, data, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.ServerWarn("WebSocket error on %s: %v", conn.ID, err)
			}
			return
		}
		s.handleMessage(conn, data)
	}
}

func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(s.opts.PingInterval)
	defer func() {
		ticker.Stop()
		conn.closeSocket()
		s.wg.Done()
	}()

	for {
		select {
		case msg, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logging.ServerDebug("Write to %s failed: %v", conn.ID, err)
				return
			}

		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleMessage(conn *Connection, data []byte) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		s.sendError(conn, ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	switch base.Type {
	case TypeSubmit:
		var msg SubmitMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(conn, ErrorCodeInvalidMessage, "invalid submit message")
			return
		}
		if err := conn.session.Submit(msg.Text, msg.Attachments); err != nil {
			switch {
			case errors.Is(err, chatsession.ErrEmptySubmission):
				s.sendError(conn, ErrorCodeEmptySubmission, "message text or an attachment is required")
			case errors.Is(err, chatsession.ErrSessionClosed):
				s.sendError(conn, ErrorCodeSessionClosed, err.Error())
			default:
				s.sendError(conn, ErrorCodeInternal, err.Error())
			}
		}
	case TypeClear:
		conn.session.Clear()
	default:
		s.sendError(conn, ErrorCodeInvalidMessage, "unknown message type: "+base.Type)
	}
}

func (s *Server) sendError(conn *Connection, code, message string) {
	logging.ServerDebug("Error frame to %s: %s (%s)", conn.ID, code, message)
	conn.enqueue(newErrorMessage(conn.ID, code, message))
}
