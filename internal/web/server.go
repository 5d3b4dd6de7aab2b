package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/guidoenr/beatviz/internal/gvm"
)

//go:embed static
var staticFiles embed.FS

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	statusInterval = 250 * time.Millisecond
)

// Controller is the running visualizer as seen from the web panel. Methods
// may be called from any goroutine.
type Controller interface {
	Snapshot() Status
	Tap()
	SetMode(channel, mode int) error
	SetBPM(bpm float64) error
	SetDivision(d gvm.Division)
}

// Status is the panel's view of the engine.
type Status struct {
	BPM       float64   `json:"bpm"`
	Division  string    `json:"division"`
	Count     float64   `json:"count"`
	Values    []float64 `json:"values"`
	Modes     []string  `json:"modes"`
	Pending   []bool    `json:"pending"`
	ModeNames []string  `json:"modeNames"`
	Scene     string    `json:"scene"`
	Palette   []string  `json:"palette"`
	Taps      int       `json:"taps"`
	FPS       float64   `json:"fps"`
}

// ModeRequest selects a mode on one channel, or on every channel when
// Channel is negative.
type ModeRequest struct {
	Channel int `json:"channel"`
	Mode    int `json:"mode"`
}

// BPMRequest sets the fallback tempo.
type BPMRequest struct {
	BPM float64 `json:"bpm"`
}

// DivisionRequest selects the beat division by name.
type DivisionRequest struct {
	Division string `json:"division"`
}

// socketCommand is a command sent by a websocket client.
type socketCommand struct {
	Type     string  `json:"type"`
	Channel  int     `json:"channel"`
	Mode     int     `json:"mode"`
	BPM      float64 `json:"bpm"`
	Division string  `json:"division"`
}

// Server serves the status panel and relays commands to the controller.
type Server struct {
	mu        sync.RWMutex
	ctl       Controller
	log       *log.Logger
	clients   map[*websocketClient]bool
	broadcast chan []byte
	upgrader  websocket.Upgrader
}

type websocketClient struct {
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

// NewServer builds a Server. A nil logger writes to the standard logger's
// output with a [web] prefix.
func NewServer(ctl Controller, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[web] ", log.LstdFlags)
	}
	return &Server{
		ctl:       ctl,
		log:       logger,
		clients:   make(map[*websocketClient]bool),
		broadcast: make(chan []byte, 256),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	static, _ := fs.Sub(staticFiles, "static")
	mux.Handle("/", http.FileServer(http.FS(static)))
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/tap", s.handleTap)
	mux.HandleFunc("/api/mode", s.handleMode)
	mux.HandleFunc("/api/bpm", s.handleBPM)
	mux.HandleFunc("/api/division", s.handleDivision)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start serves on port until ctx is cancelled.
func (s *Server) Start(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	s.log.Printf("server starting on http://0.0.0.0%s", addr)

	go s.broadcastLoop(ctx)
	go s.statusUpdateLoop(ctx, statusInterval)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.Snapshot())
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.ctl.Tap()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if !decodePost(w, r, &req) {
		return
	}
	if err := s.ctl.SetMode(req.Channel, req.Mode); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBPM(w http.ResponseWriter, r *http.Request) {
	var req BPMRequest
	if !decodePost(w, r, &req) {
		return
	}
	if err := s.ctl.SetBPM(req.BPM); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDivision(w http.ResponseWriter, r *http.Request) {
	var req DivisionRequest
	if !decodePost(w, r, &req) {
		return
	}
	div, err := gvm.ParseDivision(req.Division)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.ctl.SetDivision(div)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodePost(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// dispatch applies a websocket command.
func (s *Server) dispatch(data []byte) error {
	var cmd socketCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return fmt.Errorf("decode command: %w", err)
	}
	switch cmd.Type {
	case "tap":
		s.ctl.Tap()
	case "mode":
		return s.ctl.SetMode(cmd.Channel, cmd.Mode)
	case "bpm":
		return s.ctl.SetBPM(cmd.BPM)
	case "division":
		div, err := gvm.ParseDivision(cmd.Division)
		if err != nil {
			return err
		}
		s.ctl.SetDivision(div)
	default:
		return fmt.Errorf("unknown command %q", cmd.Type)
	}
	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("websocket upgrade error: %v", err)
		return
	}

	client := &websocketClient{
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	s.mu.Lock()
	s.clients[client] = true
	s.mu.Unlock()

	go client.writePump()
	go client.readPump()
}

func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-s.broadcast:
			s.mu.Lock()
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(s.clients, client)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *Server) statusUpdateLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		data, err := json.Marshal(s.ctl.Snapshot())
		if err != nil {
			s.log.Printf("encode status: %v", err)
			continue
		}
		select {
		case s.broadcast <- data:
		default:
			// drop if channel full
		}
	}
}

func (c *websocketClient) readPump() {
	defer func() {
		c.server.mu.Lock()
		if c.server.clients[c] {
			delete(c.server.clients, c)
			close(c.send)
		}
		c.server.mu.Unlock()
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		if err := c.server.dispatch(data); err != nil {
			c.server.log.Printf("websocket command: %v", err)
		}
	}
}

func (c *websocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := writeBatch(c.conn, message, c.send); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// writeBatch sends message followed by anything already queued, newline
// separated, in one frame.
func writeBatch(conn *websocket.Conn, message []byte, queued chan []byte) error {
	w, err := conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	w.Write(message)
	n := len(queued)
	for i := 0; i < n; i++ {
		next, ok := <-queued
		if !ok {
			break
		}
		w.Write([]byte{'\n'})
		w.Write(next)
	}
	return w.Close()
}
