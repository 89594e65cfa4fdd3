// Package web serves a websocket feed of engine events so a browser page can
// watch a running game (frames, combat, scene transitions) live. It is a
// debugging surface, not a game transport.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/questforge/questforge/internal/core/character"
	"github.com/questforge/questforge/internal/core/engine"
	"github.com/questforge/questforge/internal/core/events/bus"
	"github.com/questforge/questforge/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// DefaultTopics is the event feed mirrored to browsers. engine:render is left
// out; it carries no payload and would only flood the socket.
var DefaultTopics = []string{
	engine.TopicInit,
	engine.TopicStart,
	engine.TopicStop,
	engine.TopicPause,
	engine.TopicResume,
	engine.TopicUpdate,
	engine.TopicSceneLoaded,
	engine.TopicEntityAdded,
	engine.TopicEntityRemoved,
	character.TopicDied,
	character.TopicLevelUp,
	character.TopicStatusEffectApplied,
}

// frame is the JSON envelope pushed to clients.
type frame struct {
	Topic string          `json:"topic"`
	Time  time.Time       `json:"time"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Server fans bus events out to websocket clients.
type Server struct {
	addr   string
	events bus.Bus
	logger log.Log
	topics []string

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	subs    []bus.Subscription

	httpSrv *http.Server
}

// NewServer builds a viewer on addr mirroring the given topics (nil means
// DefaultTopics).
func NewServer(addr string, events bus.Bus, logger log.Log, topics []string) *Server {
	if logger == nil {
		logger = log.Provide()
	}
	if topics == nil {
		topics = DefaultTopics
	}
	return &Server{
		addr:    addr,
		events:  events,
		logger:  logger,
		topics:  topics,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Run subscribes to the event feed and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	for _, topic := range s.topics {
		topic := topic
		s.subs = append(s.subs, s.events.Subscribe(topic, func(e bus.Event) error {
			s.broadcast(e)
			return nil
		}))
	}
	defer func() {
		for _, sub := range s.subs {
			sub.Cancel()
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	s.httpSrv = &http.Server{Addr: s.addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web viewer listening", log.String("addr", s.addr))
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("web: %w", err)
		}
		return nil
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	s.mu.Lock()
	s.clients[conn] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	s.logger.Info("viewer connected",
		log.String("remote", conn.RemoteAddr().String()),
		log.Int("clients", n))

	// drain reads so pings and close frames are processed
	go func() {
		defer s.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	_ = conn.Close()
}

// broadcast serializes one event and pushes it to every client. A payload
// that cannot be serialized, or a client that cannot be written to, degrades
// to a logged warning.
func (s *Server) broadcast(e bus.Event) {
	f := frame{Topic: e.Topic, Time: e.Time}
	if e.Data != nil {
		raw, err := json.Marshal(e.Data)
		if err != nil {
			raw, _ = json.Marshal(fmt.Sprintf("%v", e.Data))
		}
		f.Data = raw
	}
	buf, err := json.Marshal(f)
	if err != nil {
		s.logger.Warn("event frame encode failed", log.String("topic", e.Topic), log.Error(err))
		return
	}

	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(time.Second))
		if err := c.WriteMessage(websocket.TextMessage, buf); err != nil {
			s.logger.Warn("viewer write failed", log.Error(err))
			s.drop(c)
		}
	}
}

// ClientCount reports connected viewers.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
