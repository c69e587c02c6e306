package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"choreo-planner/internal/config"
	"choreo-planner/internal/export"
	"choreo-planner/internal/formation"
	"choreo-planner/internal/geometry"
	"choreo-planner/internal/log"
	"choreo-planner/internal/pipeline"
)

// ContourRequest carries contours in pixel space together with the canvas
// size they were drawn on.
type ContourRequest struct {
	Width    int                `json:"width"`
	Height   int                `json:"height"`
	Contours []geometry.Contour `json:"contours"`
	// Vehicles overrides the configured vehicle count for /formation.
	Vehicles int `json:"vehicles,omitempty"`
}

type WaypointsResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message,omitempty"`
	Result  *pipeline.LightPainting `json:"result,omitempty"`
}

type FormationResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	ID      string          `json:"id,omitempty"`
	Created *time.Time      `json:"created,omitempty"`
	Plan    *formation.Plan `json:"plan,omitempty"`
}

type storedPlan struct {
	plan    *formation.Plan
	created time.Time
}

type server struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	logger   *log.Logger
	// storeDir persists complete plans when set.
	storeDir string

	mu    sync.RWMutex
	plans map[string]storedPlan
}

func newServer(cfg *config.Config, p *pipeline.Pipeline, storeDir string, logger *log.Logger) *server {
	return &server{
		cfg:      cfg,
		pipeline: p,
		logger:   logger,
		storeDir: storeDir,
		plans:    make(map[string]storedPlan),
	}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/waypoints", corsMiddleware(s.waypointsHandler))
	mux.HandleFunc("/formation", corsMiddleware(s.formationHandler))
	mux.HandleFunc("/health", corsMiddleware(s.healthHandler))
	return mux
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requestPipeline returns a pipeline with its own copy of the configuration.
func (s *server) requestPipeline(req ContourRequest) *pipeline.Pipeline {
	cfg := *s.cfg
	if req.Vehicles > 0 {
		cfg.Vehicles = req.Vehicles
	}
	p := *s.pipeline
	p.Config = &cfg
	return &p
}

// Request limits.
const (
	maxBodyBytes = 8 << 20
	maxVehicles  = 1024
)

func decodeContours(w http.ResponseWriter, r *http.Request) (ContourRequest, geometry.ContourSet, error) {
	var req ContourRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, geometry.ContourSet{}, err
	}
	if req.Width <= 0 || req.Height <= 0 {
		return req, geometry.ContourSet{}, errors.New("width and height must be positive")
	}
	if req.Vehicles < 0 || req.Vehicles > maxVehicles {
		return req, geometry.ContourSet{}, fmt.Errorf("vehicles must be between 0 and %d", maxVehicles)
	}
	return req, geometry.ContourSet{Width: req.Width, Height: req.Height, Contours: req.Contours}, nil
}

// POST /waypoints - light painting path for one vehicle.
// With ?format=csv the path is returned as CSV rows.
func (s *server) waypointsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, set, err := decodeContours(w, r)
	if err != nil {
		s.logger.Warn("invalid waypoints request", "error", err)
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Info("waypoints request", "contours", len(set.Contours), "points", set.NumPoints())

	res, err := s.requestPipeline(req).LightPainting(set)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, WaypointsResponse{Message: err.Error()})
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		var buf bytes.Buffer
		if err := export.WritePathCSV(&buf, res.Path); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write(buf.Bytes())
		return
	}

	writeJSON(w, http.StatusOK, WaypointsResponse{Success: true, Result: res})
}

// POST /formation - plan a formation and store it.
// GET /formation?id=<id>[&format=grid|goals] - fetch a stored plan.
func (s *server) formationHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createFormation(w, r)
	case http.MethodGet:
		s.getFormation(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) createFormation(w http.ResponseWriter, r *http.Request) {
	req, set, err := decodeContours(w, r)
	if err != nil {
		s.logger.Warn("invalid formation request", "error", err)
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	plan, err := s.requestPipeline(req).Formation(set)
	var infeasible *formation.InfeasibleError
	switch {
	case errors.As(err, &infeasible):
		s.logger.Warn("formation infeasible", "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, FormationResponse{Message: err.Error(), Plan: plan})
		return
	case err != nil:
		writeJSON(w, http.StatusUnprocessableEntity, FormationResponse{Message: err.Error()})
		return
	}

	id := uuid.NewString()
	created := time.Now()
	s.mu.Lock()
	s.plans[id] = storedPlan{plan: plan, created: created}
	s.mu.Unlock()

	logger := s.logger.With("id", id)
	if s.storeDir != "" {
		if err := export.SavePlan(plan, filepath.Join(s.storeDir, id+".json"), logger); err != nil {
			logger.Warn("failed to persist plan", "error", err)
		}
	}

	logger.Info("formation stored", "vehicles", len(plan.Assigned), "iterations", plan.Iterations)
	writeJSON(w, http.StatusOK, FormationResponse{Success: true, ID: id, Created: &created, Plan: plan})
}

func (s *server) getFormation(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	s.mu.RLock()
	stored, ok := s.plans[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "Plan not found", http.StatusNotFound)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		writeJSON(w, http.StatusOK, FormationResponse{Success: true, ID: id, Created: &stored.created, Plan: stored.plan})
		return
	}

	var grid, goals bytes.Buffer
	if err := export.WritePlanCSV(&grid, &goals, stored.plan); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	switch format {
	case "grid":
		w.Write(grid.Bytes())
	case "goals":
		w.Write(goals.Bytes())
	default:
		http.Error(w, "format must be grid or goals", http.StatusBadRequest)
	}
}

// GET /health - Health check endpoint
func (s *server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	numPlans := len(s.plans)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"numPlans": numPlans,
		"uptime":   s.logger.Elapsed().Round(time.Second).String(),
	})
}

// loadPlans restores plans persisted in storeDir, keyed by file name.
func (s *server) loadPlans() (int, error) {
	if s.storeDir == "" {
		return 0, nil
	}
	files, err := filepath.Glob(filepath.Join(s.storeDir, "*.json"))
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, f := range files {
		id := strings.TrimSuffix(filepath.Base(f), ".json")
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		plan, err := export.LoadPlan(f, s.logger)
		if err != nil {
			s.logger.Warn("skipping stored plan", "file", f, "error", err)
			continue
		}
		info, err := os.Stat(f)
		created := time.Now()
		if err == nil {
			created = info.ModTime()
		}
		s.mu.Lock()
		s.plans[id] = storedPlan{plan: plan, created: created}
		s.mu.Unlock()
		loaded++
	}
	return loaded, nil
}
