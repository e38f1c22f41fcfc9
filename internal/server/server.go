// Package server exposes the registry snapshot to external inspectors over
// HTTP and a websocket feed.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/provision/internal/core/events/bus"
	"github.com/zeusync/provision/internal/core/observability/log"
	"github.com/zeusync/provision/internal/core/registry"
)

// SnapshotSource is read on the goroutine that publishes registry events,
// never from the server's own goroutines.
type SnapshotSource interface {
	Snapshot() []registry.SpawnedEntry
}

// Config holds inspector configuration
type Config struct {
	ListenAddr string
	// Token, when set, is required from every client.
	Token string

	WriteTimeout time.Duration
	PingInterval time.Duration
	// SendBuffer is the number of queued messages per client before the
	// client is dropped as too slow.
	SendBuffer int
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:   "127.0.0.1:8088",
		WriteTimeout: 5 * time.Second,
		PingInterval: 30 * time.Second,
		SendBuffer:   16,
	}
}

// Message is what clients receive, both over /ws and from /snapshot.
type Message struct {
	Type     string                  `json:"type"`
	Reason   string                  `json:"reason,omitempty"`
	Total    int                     `json:"total"`
	Entities []registry.SpawnedEntry `json:"entities"`
	At       time.Time               `json:"at"`
}

const MessageTypeSnapshot = "snapshot"

// followed are the bus events that change the snapshot.
var followed = []string{
	bus.TypeEntitySpawned,
	bus.TypeEntityReleased,
	bus.TypeRegistryReset,
	bus.TypeCatalogLoaded,
}

type Server struct {
	config Config
	logger log.Log
	source SnapshotSource
	auth   Authenticator

	mu      sync.RWMutex
	current []byte
	clients map[*client]struct{}
	subs    []bus.Subscription

	httpServer *http.Server
	listener   net.Listener

	running int32 // atomic bool
	closed  int32 // atomic bool
}

// NewServer follows the snapshot-changing events of events, if any.
func NewServer(config Config, source SnapshotSource, events bus.EventBus, logger log.Log) *Server {
	def := DefaultConfig()
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = def.WriteTimeout
	}
	if config.PingInterval <= 0 {
		config.PingInterval = def.PingInterval
	}
	if config.SendBuffer <= 0 {
		config.SendBuffer = def.SendBuffer
	}

	s := &Server{
		config:  config,
		logger:  logger.With(log.Component("inspector")),
		source:  source,
		auth:    TokenAuth{Token: config.Token},
		clients: make(map[*client]struct{}),
	}

	if events != nil {
		subs, err := bus.SubscribeMany(events, func(e bus.Event) error {
			s.Refresh(e.Type())
			return nil
		}, followed...)
		if err != nil {
			s.logger.Error("Failed to follow registry events", log.Error(err))
		}
		s.subs = subs
	}
	s.Refresh("init")
	return s
}

// Handler serves /ws and /snapshot.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	return mux
}

// Refresh takes a new snapshot and pushes it to every client. It must run
// on the goroutine that owns the registry.
func (s *Server) Refresh(reason string) {
	entries := s.source.Snapshot()
	total := 0
	for _, e := range entries {
		total += e.Instances
	}
	payload, err := json.Marshal(Message{
		Type:     MessageTypeSnapshot,
		Reason:   reason,
		Total:    total,
		Entities: entries,
		At:       time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("Failed to encode snapshot", log.Error(err))
		return
	}

	s.mu.Lock()
	s.current = payload
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if !c.enqueue(payload) {
			s.logger.Warn("Dropping slow inspector client", log.String("remote_addr", c.remote))
			s.removeClient(c)
		}
	}
}

// Current returns the last encoded snapshot.
func (s *Server) Current() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Start listens on config.ListenAddr and serves in the background.
func (s *Server) Start(_ context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if s.config.ListenAddr == "" {
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return err
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Inspector server failed", log.Error(err))
		}
	}()

	s.logger.Info("Inspector listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Addr is the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the HTTP server down and disconnects every client.
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}
	s.logger.Info("Stopping inspector")

	err := s.httpServer.Shutdown(ctx)
	s.disconnectAll()
	return err
}

// Close stops the server if needed and stops following events.
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	for _, sub := range s.subs {
		_ = sub.Cancel()
	}
	if atomic.LoadInt32(&s.running) == 1 {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.WriteTimeout)
		defer cancel()
		return s.Stop(ctx)
	}
	s.disconnectAll()
	return nil
}

// Clients is the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
