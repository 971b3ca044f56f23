package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"astarviz/internal/config"
	"astarviz/internal/controller"
	"astarviz/internal/grid"
	"astarviz/internal/metrics"
	"astarviz/internal/network"
	"astarviz/internal/obstacles"
	"astarviz/internal/render/png"
	"astarviz/internal/scenario"
	"astarviz/internal/search"
)

// Server exposes one search engine over HTTP.
type Server struct {
	cfg       *config.Config
	engine    *search.Engine
	ctrl      *controller.Controller
	hub       *network.Hub
	store     scenario.Store
	generator *obstacles.Generator
	metrics   *search.Metrics
	registry  *prometheus.Registry
	httpSrv   *http.Server
	logger    *log.Logger
}

func New(cfg *config.Config) (*Server, error) {
	store, err := scenario.Open(cfg.Scenarios.Dir)
	if err != nil {
		return nil, err
	}
	logger := log.New(log.Writer(), "astar-server ", log.LstdFlags|log.Lmicroseconds)

	s := &Server{
		cfg:       cfg,
		hub:       network.NewHub(logger),
		store:     store,
		generator: obstacles.NewGenerator(cfg.Obstacles),
		metrics:   &search.Metrics{},
		logger:    logger,
	}
	timer := metrics.NewRunTimer(s.metrics.Profiler())
	s.engine = search.New(cfg.Bounds(),
		search.WithRenderer(s.hub),
		search.WithProfiler(timer),
		search.WithStepDelay(cfg.Search.StepDelay.Duration()),
		search.WithCommandBatch(cfg.Search.CommandBatch),
		search.WithStart(cfg.Search.Start),
		search.WithTarget(cfg.Search.Target),
	)
	s.ctrl = controller.New(s.engine, logger)
	s.registry = metrics.NewRegistry(metrics.NewCollector(s.metrics.Snapshot, s.engine.State), timer)
	return s, nil
}

// Engine returns the engine the server drives.
func (s *Server) Engine() *search.Engine {
	return s.engine
}

// Handler builds the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("POST /run", s.handleRun)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("POST /blocked", s.handleCell(s.ctrl.PlaceObstacle))
	mux.HandleFunc("POST /start", s.handleCell(s.ctrl.MoveStart))
	mux.HandleFunc("POST /target", s.handleCell(s.ctrl.MoveTarget))
	mux.HandleFunc("POST /obstacles/generate", s.handleGenerate)
	mux.HandleFunc("GET /scenarios", s.handleScenarioList)
	mux.HandleFunc("POST /scenarios/save", s.handleScenarioSave)
	mux.HandleFunc("POST /scenarios/load", s.handleScenarioLoad)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /snapshot.png", s.handleSnapshotPNG)
	mux.Handle("GET /metrics", metrics.Handler(s.registry))
	return mux
}

// Run serves until ctx is cancelled, then shuts the listener down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.store.Close()

	engineCtx, stopEngine := context.WithCancel(ctx)
	defer stopEngine()
	engineDone := make(chan error, 1)
	go func() { engineDone <- s.engine.Serve(engineCtx) }()

	s.httpSrv = &http.Server{
		Addr:    s.cfg.Server.ListenAddress,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP server listening on %s", s.cfg.Server.ListenAddress)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout.Duration())
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Printf("shutdown: %v", err)
		}
		<-engineDone
		return nil
	case err := <-errCh:
		return err
	case err := <-engineDone:
		return fmt.Errorf("search engine stopped: %w", err)
	}
}

type stateResponse struct {
	State    string          `json:"state"`
	Start    grid.Position   `json:"start"`
	Target   grid.Position   `json:"target"`
	Frontier []grid.Position `json:"frontier"`
	Explored []grid.Position `json:"explored"`
	Blocked  []grid.Position `json:"blocked"`
	Path     []grid.Position `json:"path"`
	Steps    int             `json:"steps"`
	Cost     int             `json:"cost"`
}

func newStateResponse(snap search.Snapshot) stateResponse {
	steps := 0
	if len(snap.Path) > 0 {
		steps = len(snap.Path) - 1
	}
	return stateResponse{
		State:    snap.State.String(),
		Start:    snap.Start,
		Target:   snap.Target,
		Frontier: nonNil(snap.Frontier),
		Explored: nonNil(snap.Explored),
		Blocked:  nonNil(snap.Blocked),
		Path:     nonNil(snap.Path),
		Steps:    steps,
		Cost:     snap.Cost,
	}
}

func nonNil(p []grid.Position) []grid.Position {
	if p == nil {
		return []grid.Position{}
	}
	return p
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, newStateResponse(s.engine.Snapshot()))
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Run()
	s.respondAfterFlush(w, r)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Reset()
	s.respondAfterFlush(w, r)
}

func (s *Server) respondAfterFlush(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Flush(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, newStateResponse(s.engine.Snapshot()))
}

func (s *Server) handleCell(apply func(context.Context, grid.Position) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pos, err := parsePosition(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := apply(r.Context(), pos); err != nil {
			writeError(w, err)
			return
		}
		s.respondAfterFlush(w, r)
	}
}

func parsePosition(r *http.Request) (grid.Position, error) {
	q := r.URL.Query()
	xStr := q.Get("x")
	yStr := q.Get("y")
	if xStr == "" || yStr == "" {
		return grid.Position{}, errors.New("x and y query parameters required")
	}
	x, err := strconv.Atoi(xStr)
	if err != nil {
		return grid.Position{}, errors.New("invalid x parameter")
	}
	y, err := strconv.Atoi(yStr)
	if err != nil {
		return grid.Position{}, errors.New("invalid y parameter")
	}
	return grid.Snap(x, y), nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	gen := s.generator
	if seedStr := r.URL.Query().Get("seed"); seedStr != "" {
		seed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			http.Error(w, "invalid seed parameter", http.StatusBadRequest)
			return
		}
		gen = gen.WithSeed(seed)
	}
	added, err := s.ctrl.GenerateObstacles(r.Context(), gen)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]int{"added": added})
}

func (s *Server) handleScenarioList(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string][]string{"scenarios": names})
}

func (s *Server) handleScenarioSave(w http.ResponseWriter, r *http.Request) {
	sc, err := s.ctrl.CaptureScenario(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Save(sc); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Printf("saved scenario %s", sc.Name)
	writeJSON(w, sc)
}

func (s *Server) handleScenarioLoad(w http.ResponseWriter, r *http.Request) {
	sc, err := s.store.Load(r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ctrl.ApplyScenario(r.Context(), sc); err != nil {
		writeError(w, err)
		return
	}
	s.respondAfterFlush(w, r)
}

// handleEvents streams engine notifications as newline-delimited envelopes.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	sub := s.hub.Subscribe(s.cfg.Server.EventBuffer)
	defer sub.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	enc := json.NewEncoder(w)
	for {
		select {
		case <-r.Context().Done():
			if dropped := sub.Dropped(); dropped > 0 {
				s.logger.Printf("event subscriber dropped %d envelopes", dropped)
			}
			return
		case env, ok := <-sub.C():
			if !ok {
				return
			}
			if err := enc.Encode(env); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) handleSnapshotPNG(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	opts := png.Options{
		CellPixels: s.cfg.Render.CellPixels,
		ShowGrid:   s.cfg.Render.ShowGrid,
		Caption:    true,
	}
	if err := png.Encode(w, s.engine.Snapshot(), s.cfg.Grid.Width, s.cfg.Grid.Height, opts); err != nil {
		s.logger.Printf("snapshot: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, controller.ErrOutOfBounds), errors.Is(err, scenario.ErrInvalidName):
		status = http.StatusBadRequest
	case errors.Is(err, scenario.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, controller.ErrCellBlocked), errors.Is(err, controller.ErrCellOccupied):
		status = http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
