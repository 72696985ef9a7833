package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/interact"
	"github.com/TFMV/forcegraph/logger"
	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/render"
	"github.com/TFMV/forcegraph/view"
)

// WebSocket timeouts, following the gorilla chat example
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 16
)

// clientMessage is a pointer or control event sent by the page
type clientMessage struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"deltaY"`
	Factor float64 `json:"factor"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
}

// event converts the message into a view event
func (m clientMessage) event() (view.Event, error) {
	switch m.Type {
	case "pointermove":
		return view.PointerMove{X: m.X, Y: m.Y}, nil
	case "pointerdown":
		return view.PointerDown{X: m.X, Y: m.Y}, nil
	case "pointerup":
		return view.PointerUp{X: m.X, Y: m.Y}, nil
	case "pointerleave":
		return view.PointerLeave{}, nil
	case "wheel":
		return view.Wheel{X: m.X, Y: m.Y, DeltaY: m.DeltaY}, nil
	case "pinch":
		return view.Pinch{Factor: m.Factor, X: m.X, Y: m.Y}, nil
	case "resize":
		return view.Resize{Width: m.Width, Height: m.Height}, nil
	case "select":
		return view.Select{ID: m.ID}, nil
	case "reheat":
		return view.Reheat{Amount: m.Amount}, nil
	}
	return nil, errors.Newf("unknown message type %q", m.Type)
}

// serverMessage is pushed to the page
type serverMessage struct {
	Type        string               `json:"type"`
	Scene       *render.Scene        `json:"scene,omitempty"`
	Activation  *interact.Activation `json:"activation,omitempty"`
	Message     string               `json:"message,omitempty"`
	Diagnostics []*diagnostic        `json:"diagnostics,omitempty"`
	Session     string               `json:"session,omitempty"`
}

type diagnostic struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// session is one websocket connection with its own view. The frame
// goroutine owns the view; readPump only posts events to it.
type session struct {
	id      string
	graphID string
	server  *Server
	conn    *websocket.Conn
	view    *view.View
	logger  *zap.SugaredLogger

	mu     sync.Mutex
	send   chan []byte
	closed bool
	cancel context.CancelFunc
}

// handleWebSocket upgrades the connection and starts a session for ?id=
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	graphID := r.URL.Query().Get("id")
	g, ok := s.lookup(graphID)
	if !ok {
		http.Error(w, "Graph not found", http.StatusNotFound)
		return
	}
	if graphID == s.Graph().ID {
		graphID = ""
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		s.logger.Warnw("WebSocket upgrade failed", logger.FieldError, err)
		return
	}

	id := uuid.New().String()
	log := s.logger.With(logger.FieldSession, id)
	v, err := view.New(s.cfg.View, log)
	if err != nil {
		s.logger.Errorw("Session view failed", logger.FieldError, err)
		conn.Close()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:      id,
		graphID: graphID,
		server:  s,
		conn:    conn,
		view:    v,
		logger:  log,
		send:    make(chan []byte, sendBuffer),
		cancel:  cancel,
	}

	diags, err := v.Load(g.Clone())
	if err != nil {
		cancel()
		v.Dispose()
		conn.Close()
		s.logger.Errorw("Session load failed", logger.FieldError, err)
		return
	}
	v.OnActivate(func(a interact.Activation) {
		sess.enqueue(serverMessage{Type: "activated", Activation: &a})
	})
	v.OnError(func(err error) {
		sess.enqueue(serverMessage{Type: "error", Message: err.Error()})
	})

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	log.Infow("Session started", logger.FieldGraph, g.ID, "remote", r.RemoteAddr)

	sess.enqueue(serverMessage{Type: "hello", Session: id, Diagnostics: toDiagnostics(diags)})

	go sess.writePump()
	go sess.readPump()
	go sess.frameLoop(ctx)
}

func toDiagnostics(diags []*models.GraphDataError) []*diagnostic {
	out := make([]*diagnostic, len(diags))
	for i, d := range diags {
		out[i] = &diagnostic{Kind: string(d.Kind), Message: d.Error()}
	}
	return out
}

// enqueue hands a message to the write pump. Scenes are dropped when the
// peer is slow; the next frame supersedes them.
func (c *session) enqueue(msg serverMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Warnw("Marshal message failed", logger.FieldError, err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Debugw("Send buffer full, message dropped", "type", msg.Type)
	}
}

// stop ends the frame loop; the write pump then closes the connection
func (c *session) stop() {
	c.cancel()
}

// frameLoop drives the view until the session ends, then tears it down
func (c *session) frameLoop(ctx context.Context) {
	err := c.view.Run(ctx, c.server.cfg.FPS, func(scene *render.Scene) error {
		c.enqueue(serverMessage{Type: "scene", Scene: scene})
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warnw("Frame loop stopped", logger.FieldError, err)
	}
	c.view.Dispose()

	c.server.mu.Lock()
	delete(c.server.sessions, c.id)
	c.server.mu.Unlock()

	c.mu.Lock()
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	c.logger.Infow("Session ended")
}

// readPump posts page events to the view
func (c *session) readPump() {
	defer c.cancel()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived,
			) {
				c.logger.Warnw("WebSocket read error", logger.FieldError, err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.enqueue(serverMessage{Type: "error", Message: "malformed message"})
			continue
		}
		ev, err := msg.event()
		if err != nil {
			c.enqueue(serverMessage{Type: "error", Message: err.Error()})
			continue
		}
		if err := c.view.Post(ev); err != nil {
			if errors.Is(err, errors.ErrDisposed) {
				return
			}
			c.logger.Debugw("Event dropped", "type", msg.Type, logger.FieldError, err)
		}
	}
}

// writePump sends queued messages and keeps the connection alive
func (c *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.cancel()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}
		}
	}
}
