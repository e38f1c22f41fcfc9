package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/provision/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ControlMessage is the only thing clients send: {"action": "snapshot"}
// asks for the current snapshot again.
type ControlMessage struct {
	Action string `json:"action"`
}

type client struct {
	conn   *websocket.Conn
	remote string
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

// enqueue reports false when the client's buffer is full.
func (c *client) enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Authenticate(r); err != nil {
		s.logger.Warn("Rejected inspector client",
			log.String("remote_addr", r.RemoteAddr),
			log.Error(err))
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("Websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{
		conn:   conn,
		remote: conn.RemoteAddr().String(),
		send:   make(chan []byte, s.config.SendBuffer),
		done:   make(chan struct{}),
	}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	c.enqueue(s.Current())
	s.logger.Info("Inspector client connected", log.String("remote_addr", c.remote))

	go s.writeLoop(c)
	s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	defer s.removeClient(c)

	for {
		_, p, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("Inspector client read failed", log.String("remote_addr", c.remote), log.Error(err))
			}
			return
		}

		var msg ControlMessage
		if err := json.Unmarshal(p, &msg); err != nil {
			s.logger.Debug("Invalid control message", log.String("remote_addr", c.remote), log.Error(err))
			continue
		}
		switch msg.Action {
		case "snapshot":
			if !c.enqueue(s.Current()) {
				return
			}
		default:
			s.logger.Debug("Unknown control action", log.String("action", msg.Action))
		}
	}
}

func (s *Server) writeLoop(c *client) {
	ping := time.NewTicker(s.config.PingInterval)
	defer ping.Stop()
	defer c.close()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.Debug("Inspector client write failed", log.String("remote_addr", c.remote), log.Error(err))
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()

	c.close()
	if ok {
		s.logger.Info("Inspector client disconnected", log.String("remote_addr", c.remote))
	}
}

func (s *Server) disconnectAll() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		s.removeClient(c)
	}
}
