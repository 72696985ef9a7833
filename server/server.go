// Package server hosts live views in the browser.
//
// Every websocket connection gets its own view.View: pointer events from
// the page are posted to the view, and each changed frame is sent back as
// a JSON scene that the page draws on a canvas.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/ingest"
	"github.com/TFMV/forcegraph/logger"
	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/render"
	"github.com/TFMV/forcegraph/view"
)

// Config for the server
type Config struct {
	Address        string
	FPS            int
	AllowedOrigins []string
	WatchDebounce  time.Duration
	MaxUploadBytes int64
	View           view.Options
	Output         *render.OutputOptions // Static export defaults for /render
}

// DefaultConfig returns a server config for localhost:8080 at 30 fps
func DefaultConfig() Config {
	return Config{
		Address:        "localhost:8080",
		FPS:            30,
		AllowedOrigins: []string{"http://localhost", "http://127.0.0.1"},
		WatchDebounce:  250 * time.Millisecond,
		MaxUploadBytes: 16 << 20,
		View:           view.DefaultOptions(),
		Output:         render.NewDefaultOptions("html"),
	}
}

// Server serves one current graph plus any uploaded graphs. Sessions
// showing the current graph follow SetGraph.
type Server struct {
	cfg      Config
	logger   *zap.SugaredLogger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	current  *models.Graph
	graphs   map[string]*models.Graph
	sessions map[string]*session
}

// New creates a server for g. g may be nil; an empty graph is served then.
func New(cfg Config, g *models.Graph, log *zap.SugaredLogger) (*Server, error) {
	if cfg.FPS <= 0 {
		return nil, errors.NewInvalidConfigError("fps must be positive, got %d", cfg.FPS)
	}
	if cfg.Output == nil {
		cfg.Output = render.NewDefaultOptions("html")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}
	if g == nil {
		g = models.NewGraph("")
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger.OrNop(log),
		current:  g,
		graphs:   map[string]*models.Graph{g.ID: g},
		sessions: map[string]*session{},
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  2048,
		WriteBufferSize: 8192,
		CheckOrigin:     s.checkOrigin,
	}
	return s, nil
}

// checkOrigin allows same-origin pages, clients without an Origin header
// and the configured origins (compared without port)
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Host == r.Host {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, u.Scheme+"://"+u.Hostname())
}

// Graph returns the current graph
func (s *Server) Graph() *models.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetGraph replaces the current graph and reloads every session showing it
func (s *Server) SetGraph(g *models.Graph) {
	s.mu.Lock()
	prev := s.current
	delete(s.graphs, prev.ID)
	s.current = g
	s.graphs[g.ID] = g
	var followers []*session
	for _, sess := range s.sessions {
		if sess.graphID == "" || sess.graphID == prev.ID {
			followers = append(followers, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range followers {
		if err := sess.view.Post(view.Load{Graph: g.Clone()}); err != nil {
			s.logger.Warnw("Session reload failed", logger.FieldSession, sess.id, logger.FieldError, err)
		}
	}
	s.logger.Infow("Graph replaced",
		logger.FieldGraph, g.ID,
		logger.FieldNodes, len(g.Nodes),
		logger.FieldEdges, len(g.Edges),
		"sessions", len(followers),
	)
}

// AddGraph stores an additional graph and returns its id
func (s *Server) AddGraph(g *models.Graph) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[g.ID] = g
	return g.ID
}

// lookup resolves a graph id; empty means the current graph
func (s *Server) lookup(id string) (*models.Graph, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id == "" {
		return s.current, true
	}
	g, ok := s.graphs[id]
	return g, ok
}

// Sessions returns the number of live sessions
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /api/graph", s.handleAPIGraph)
	mux.HandleFunc("GET /render", s.handleRender)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

// ListenAndServe serves until ctx is done, then shuts down gracefully and
// closes every session
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("Starting server", logger.FieldAddress, s.cfg.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrapf(err, "listen on %s", s.cfg.Address)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server shutdown")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Infow("Server stopped")
	return nil
}

// Close ends every live session
func (s *Server) Close() {
	s.mu.RLock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()
	for _, sess := range sessions {
		sess.stop()
	}
}

// firstFrame renders the initial placement of g for the page shell
func (s *Server) firstFrame(g *models.Graph) (*render.Scene, error) {
	v, err := view.New(s.cfg.View, nil)
	if err != nil {
		return nil, err
	}
	defer v.Dispose()
	if _, err := v.Load(g.Clone()); err != nil {
		return nil, err
	}
	return v.Frame()
}

// handleIndex serves the live page for ?id= or the current graph
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(r.URL.Query().Get("id"))
	if !ok {
		http.Error(w, "Graph not found", http.StatusNotFound)
		return
	}
	scene, err := s.firstFrame(g)
	if err != nil {
		s.httpError(w, err, http.StatusInternalServerError)
		return
	}

	opts := *s.cfg.Output
	opts.Format = "html"
	opts.WebSocketPath = "/ws"
	page, err := (&render.HTMLRenderer{}).Render(scene, &opts)
	if err != nil {
		s.httpError(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// handleUpload stores an uploaded graph file and redirects to its live page
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.httpError(w, errors.Wrap(err, "error parsing form"), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("dataFile")
	if err != nil {
		s.httpError(w, errors.Wrap(err, "error retrieving file"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	format := r.FormValue("format")
	if format == "" {
		if format, err = ingest.FormatFromPath(header.Filename); err != nil {
			s.httpError(w, err, http.StatusBadRequest)
			return
		}
	}
	processor, err := ingest.GetProcessor(format)
	if err != nil {
		s.httpError(w, err, http.StatusBadRequest)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		s.httpError(w, errors.Wrap(err, "error reading upload"), http.StatusBadRequest)
		return
	}
	g, err := processor.ProcessData(data)
	if err != nil {
		s.httpError(w, err, http.StatusUnprocessableEntity)
		return
	}
	if g.Name == "" {
		g.Name = header.Filename[:len(header.Filename)-len(filepath.Ext(header.Filename))]
	}

	id := s.AddGraph(g)
	s.logger.Infow("Graph uploaded",
		logger.FieldGraph, id,
		logger.FieldFile, header.Filename,
		logger.FieldNodes, len(g.Nodes),
		logger.FieldEdges, len(g.Edges),
	)
	http.Redirect(w, r, "/?id="+url.QueryEscape(id), http.StatusSeeOther)
}

// handleAPIGraph returns the graph as JSON, optionally one ?cluster= only
func (s *Server) handleAPIGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(r.URL.Query().Get("id"))
	if !ok {
		http.Error(w, "Graph not found", http.StatusNotFound)
		return
	}
	if cluster := r.URL.Query().Get("cluster"); cluster != "" {
		g = clusterSubgraph(g, cluster)
	}
	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(g); err != nil {
		s.logger.Warnw("Encode graph failed", logger.FieldGraph, g.ID, logger.FieldError, err)
	}
}

// clusterSubgraph keeps the nodes of one cluster and the edges between them
func clusterSubgraph(g *models.Graph, cluster string) *models.Graph {
	sub := g.Clone()
	sub.Nodes = g.FindNodesByCluster(cluster)
	keep := make(map[string]bool, len(sub.Nodes))
	for _, n := range sub.Nodes {
		keep[n.ID] = true
	}
	sub.Edges = g.FilterEdges(func(e *models.Edge) bool { return keep[e.Source] && keep[e.Target] })
	return sub
}

// handleRender lays the graph out headlessly and returns a static export
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	g, ok := s.lookup(q.Get("id"))
	if !ok {
		http.Error(w, "Graph not found", http.StatusNotFound)
		return
	}

	opts := *s.cfg.Output
	opts.Format = q.Get("format")
	if opts.Format == "" {
		opts.Format = "svg"
	}
	opts.WebSocketPath = ""
	if v, err := strconv.ParseFloat(q.Get("width"), 64); err == nil && v > 0 {
		opts.Width = v
	}
	if v, err := strconv.ParseFloat(q.Get("height"), 64); err == nil && v > 0 {
		opts.Height = v
	}
	if p := q.Get("palette"); p != "" {
		opts.Palette = p
	}

	renderer, err := render.GetRenderer(opts.Format)
	if err != nil {
		s.httpError(w, err, http.StatusBadRequest)
		return
	}
	out, _, err := render.Generate(r.Context(), g.Clone(), &opts, s.cfg.View.Physics, s.logger)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.IsInvalidConfigError(err) {
			status = http.StatusBadRequest
		}
		s.httpError(w, err, status)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Write(out)
}

func (s *Server) httpError(w http.ResponseWriter, err error, status int) {
	if status >= http.StatusInternalServerError {
		s.logger.Errorw("Request failed", logger.FieldError, err)
	}
	msg := err.Error()
	if hints := errors.FlattenHints(err); hints != "" {
		msg += "\n" + hints
	}
	http.Error(w, msg, status)
}

// WatchFile reloads the current graph whenever path changes, until ctx is
// done. Bursts of events are collapsed by the configured debounce.
func (s *Server) WatchFile(ctx context.Context, path, format string) error {
	w, err := newFileWatcher(path, s.cfg.WatchDebounce, s.logger.Named("watch"))
	if err != nil {
		return err
	}
	return w.run(ctx, func() {
		g, err := ingest.LoadFile(path, format)
		if err != nil {
			s.logger.Warnw("Reload failed, keeping previous graph", logger.FieldFile, path, logger.FieldError, err)
			return
		}
		s.SetGraph(g)
	})
}

