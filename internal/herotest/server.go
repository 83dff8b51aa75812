// Package herotest runs an in-process Hero server for tests.
//
// It follows the real server's behavior: an init snapshot on connect,
// a per-connection rate limit for each kind of report, and broadcasts of
// every accepted item to all open connections.
package herotest

import (
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"heroprobe/heroproto"
	"heroprobe/internal/clientmanager"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	DefaultWindow = 10 * time.Second

	chatHistoryLimit = 100
)

// Rate limited kinds.
const (
	kindChat     = "chat"
	kindObstacle = "obstacle"
	kindRide     = "ride"
	kindFirstAid = "firstAid"
)

type Options struct {
	// Rate limit window per kind. Defaults to DefaultWindow.
	Window time.Duration
	Logger *zap.Logger
	// InitFrame replaces the init snapshot sent on connect.
	InitFrame []byte
}

type Server struct {
	srv      *httptest.Server
	logger   *zap.Logger
	clients  clientmanager.ClientManager
	upgrader websocket.Upgrader
	initRaw  []byte

	mu               sync.Mutex
	obstacles        []heroproto.Obstacle
	rideRequests     []heroproto.RideRequest
	firstAidRequests []heroproto.FirstAidRequest
	chatMessages     []heroproto.ChatMessage
}

func NewServer(opts Options) *Server {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Server{
		logger:  opts.Logger,
		clients: clientmanager.NewClientManager(opts.Window),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		initRaw: opts.InitFrame,
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	return s
}

// URL returns the ws:// address of the server.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

// Close stops the listener and drops every connection.
func (s *Server) Close() {
	s.CloseAll()
	s.srv.Close()
}

// CloseAll closes every open connection from the server side with a normal closure.
func (s *Server) CloseAll() {
	for _, c := range s.clients.ListClients() {
		if err := c.Shutdown(); err != nil {
			s.logger.Debug("shutdown client", zap.Stringer("client", c.GetID()), zap.Error(err))
		}
	}
}

// WaitForClients polls until n connections are open or the timeout elapses.
func (s *Server) WaitForClients(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.clients.Count() >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return s.clients.Count() >= n
}

// Broadcast pushes a frame to every open connection.
func (s *Server) Broadcast(v any) error {
	return s.broadcast(v)
}

func (s *Server) ChatMessages() []heroproto.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]heroproto.ChatMessage(nil), s.chatMessages...)
}

func (s *Server) Obstacles() []heroproto.Obstacle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]heroproto.Obstacle(nil), s.obstacles...)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	client, err := s.clients.NewClient(conn)
	if err != nil {
		s.logger.Error("failed to register client", zap.Error(err))
		conn.Close()
		return
	}
	defer client.Close()
	s.logger.Debug("client connected", zap.Stringer("client", client.GetID()))

	if err := s.sendInit(client); err != nil {
		s.logger.Warn("failed to send init", zap.Stringer("client", client.GetID()), zap.Error(err))
		return
	}

	for {
		data, err := client.ReadMessage()
		if err != nil {
			s.logger.Debug("client disconnected", zap.Stringer("client", client.GetID()), zap.Error(err))
			return
		}
		if err := s.handleMessage(client, data); err != nil {
			s.logger.Warn("error processing message", zap.Stringer("client", client.GetID()), zap.Error(err))
		}
	}
}

func (s *Server) sendInit(client clientmanager.Client) error {
	if s.initRaw != nil {
		return client.WriteRaw(s.initRaw)
	}
	s.mu.Lock()
	msg := &heroproto.InitMessage{
		Type: heroproto.MSG_INIT,
		Data: heroproto.InitData{
			Obstacles:        append([]heroproto.Obstacle{}, s.obstacles...),
			RideRequests:     append([]heroproto.RideRequest{}, s.rideRequests...),
			FirstAidRequests: append([]heroproto.FirstAidRequest{}, s.firstAidRequests...),
			ChatMessages:     append([]heroproto.ChatMessage{}, s.chatMessages...),
		},
	}
	s.mu.Unlock()
	return client.WriteJSON(msg)
}

// limited checks the rate limit and answers with an error frame when it fires.
func (s *Server) limited(client clientmanager.Client, kind, what string) (bool, error) {
	left, ok := client.Allow(kind, time.Now())
	if ok {
		return false, nil
	}
	wait := int(math.Ceil(left.Seconds()))
	s.logger.Debug("rate limit exceeded", zap.String("kind", kind), zap.Int("wait_seconds", wait))
	return true, client.WriteJSON(&heroproto.ErrorMessage{
		Type:    heroproto.MSG_ERROR,
		Message: fmt.Sprintf("Please wait %d seconds before %s", wait, what),
	})
}

func (s *Server) broadcastRaw(data []byte) {
	for _, c := range s.clients.ListClients() {
		if err := c.WriteRaw(data); err != nil {
			s.logger.Debug("broadcast write failed", zap.Stringer("client", c.GetID()), zap.Error(err))
		}
	}
}

func (s *Server) broadcast(v any) error {
	data, err := heroproto.NewMessage(v)
	if err != nil {
		return fmt.Errorf("failed to encode broadcast: %w", err)
	}
	s.broadcastRaw(data)
	return nil
}
