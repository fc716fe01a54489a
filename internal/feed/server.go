package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"dinoevo/internal/config"
	"dinoevo/internal/model"
	"dinoevo/internal/scape"
)

const (
	TypeConfig = "config"
	TypeFrame  = "frame"
	TypeAction = "action"
	TypeError  = "error"

	clientBuffer = 64
)

// Message is the envelope for every websocket payload in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ActionEvent is the inbound payload of an "action" message.
type ActionEvent struct {
	Action string `json:"action"`
}

// ActionSink receives actions sent by connected renderers.
type ActionSink interface {
	Push(action model.Action)
}

type client struct {
	send chan []byte
}

// Server exposes game frames on /ws and accepts action events from the same
// connection. Slow clients drop frames rather than stall the game loop.
type Server struct {
	app    *fiber.App
	cfg    config.Config
	sink   ActionSink
	logOut io.Writer

	mu      sync.Mutex
	clients map[*client]struct{}
	dropped int
}

// NewServer builds the feed. sink may be nil when the game is driven by a
// brain; inbound actions are then rejected.
func NewServer(cfg config.Config, sink ActionSink, logOut io.Writer) *Server {
	if logOut == nil {
		logOut = io.Discard
	}
	s := &Server{
		app:     fiber.New(fiber.Config{DisableStartupMessage: true}),
		cfg:     cfg.Clone(),
		sink:    sink,
		logOut:  logOut,
		clients: make(map[*client]struct{}),
	}
	s.routes()
	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		s.mu.Lock()
		clients, dropped := len(s.clients), s.dropped
		s.mu.Unlock()
		return c.JSON(fiber.Map{"status": "ok", "clients": clients, "dropped_frames": dropped})
	})
	s.app.Get("/config", func(c *fiber.Ctx) error {
		return c.JSON(s.cfg)
	})

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws", websocket.New(s.serveConn))
}

func (s *Server) serveConn(conn *websocket.Conn) {
	cl := s.register()
	var done chan struct{}
	defer func() {
		conn.Close()
		// The connection is reused once the handler returns.
		if done != nil {
			<-done
		}
		s.unregister(cl)
	}()

	hello, err := encode(TypeConfig, s.cfg)
	if err != nil {
		fmt.Fprintf(s.logOut, "feed: encode config: %v\n", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		return
	}

	done = make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := s.handleMessage(raw); err != nil {
				fmt.Fprintf(s.logOut, "feed: %v\n", err)
				if reply, encErr := encode(TypeError, err.Error()); encErr == nil {
					s.enqueue(cl, reply)
				}
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case msg := <-cl.send:
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

// handleMessage decodes one inbound message and forwards actions to the sink.
func (s *Server) handleMessage(raw []byte) error {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	switch msg.Type {
	case TypeAction:
		var ev ActionEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return fmt.Errorf("invalid action payload: %w", err)
		}
		action, err := model.ParseAction(ev.Action)
		if err != nil {
			return err
		}
		if !s.cfg.ActionEnabled(action) {
			return fmt.Errorf("action %s is not enabled", action)
		}
		if s.sink == nil {
			return fmt.Errorf("game does not accept manual actions")
		}
		s.sink.Push(action)
		return nil
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// Broadcast queues frame for every connected client.
func (s *Server) Broadcast(frame scape.Frame) error {
	data, err := encode(TypeFrame, frame)
	if err != nil {
		return err
	}
	s.mu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for cl := range s.clients {
		targets = append(targets, cl)
	}
	s.mu.Unlock()
	for _, cl := range targets {
		s.enqueue(cl, data)
	}
	return nil
}

func (s *Server) enqueue(cl *client, data []byte) {
	select {
	case cl.send <- data:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}

func (s *Server) register() *client {
	cl := &client{send: make(chan []byte, clientBuffer)}
	s.mu.Lock()
	s.clients[cl] = struct{}{}
	s.mu.Unlock()
	return cl
}

func (s *Server) unregister(cl *client) {
	s.mu.Lock()
	delete(s.clients, cl)
	s.mu.Unlock()
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func encode(kind string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: kind, Data: data})
}
