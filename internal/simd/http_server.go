package simd

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/mec-simulation-core/internal/metrics"
	"github.com/GoSim-25-26J-441/mec-simulation-core/internal/topology"
	"github.com/GoSim-25-26J-441/mec-simulation-core/pkg/config"
	"github.com/GoSim-25-26J-441/mec-simulation-core/pkg/logger"
)

const maxScenarioBytes = 1 << 20

type HTTPServer struct {
	mux    *http.ServeMux
	store  *RunStore
	health *Health
}

// NewHTTPServer wires the scenario API. health may be nil.
func NewHTTPServer(store *RunStore, health *Health) *HTTPServer {
	s := &HTTPServer{
		mux:    http.NewServeMux(),
		store:  store,
		health: health,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.Handle("/metrics", metrics.Handler())
	s.mux.HandleFunc("/v1/scenarios", s.handleScenarios)
	s.mux.HandleFunc("/v1/scenarios/", s.handleScenarioByID)

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"runs":      s.store.Len(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleScenarios handles /v1/scenarios
func (s *HTTPServer) handleScenarios(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateScenario(w, r)
	case http.MethodGet:
		s.handleListScenarios(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleScenarioByID handles /v1/scenarios/{id} and its descriptor endpoints
func (s *HTTPServer) handleScenarioByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/scenarios/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	runID, view, _ := strings.Cut(path, "/")
	switch view {
	case "":
		switch r.Method {
		case http.MethodGet:
			s.handleGetScenario(w, runID)
		case http.MethodDelete:
			s.handleDeleteScenario(w, runID)
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case "topology", "application", "deployments":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleGetView(w, runID, view)
	case "range":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleGetRange(w, r, runID)
	default:
		s.writeError(w, http.StatusNotFound, "unknown endpoint: "+view)
	}
}

// handleCreateScenario handles POST /v1/scenarios with a YAML scenario body
func (s *HTTPServer) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxScenarioBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body: "+err.Error())
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		s.writeError(w, http.StatusBadRequest, "scenario yaml is required")
		return
	}

	sc, err := config.ParseScenarioYAML(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.store.Create(r.URL.Query().Get("run_id"), sc)
	if err != nil {
		if errors.Is(err, ErrRunExists) {
			s.writeError(w, http.StatusConflict, err.Error())
		} else {
			s.writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	result, buildErr := Build(sc)
	if buildErr != nil {
		if err := s.store.SetFailed(rec.ID, buildErr); err != nil {
			logger.Error("failed to record build failure", "run_id", rec.ID, "error", err)
		} else if failed, ok := s.store.Get(rec.ID); ok {
			rec = failed
		}
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"run":   convertRunToJSON(rec),
			"error": buildErr.Error(),
		})
		return
	}
	if err := s.store.SetResult(rec.ID, result); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.health != nil {
		s.health.ScenarioBuilt()
	}
	if built, ok := s.store.Get(rec.ID); ok {
		rec = built
	}

	logger.Info("scenario run created (HTTP)", "run_id", rec.ID, "app", result.Summary.App)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"run": convertRunToJSON(rec),
	})
}

// handleListScenarios handles GET /v1/scenarios
func (s *HTTPServer) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
			if limit > 1000 {
				limit = 1000
			}
		}
	}

	runs := s.store.List(limit)
	out := make([]map[string]any, 0, len(runs))
	for _, rec := range runs {
		out = append(out, convertRunToJSON(rec))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"runs":  out,
		"total": s.store.Len(),
	})
}

func (s *HTTPServer) handleGetScenario(w http.ResponseWriter, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": convertRunToJSON(rec),
	})
}

func (s *HTTPServer) handleDeleteScenario(w http.ResponseWriter, runID string) {
	if err := s.store.Delete(runID); err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleGetView(w http.ResponseWriter, runID, view string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if rec.Status != RunStatusBuilt || rec.Result == nil {
		s.writeError(w, http.StatusConflict, "run "+runID+" has no result: "+string(rec.Status))
		return
	}

	switch view {
	case "topology":
		s.writeJSON(w, http.StatusOK, rec.Result.Topology)
	case "application":
		s.writeJSON(w, http.StatusOK, rec.Result.Application)
	case "deployments":
		s.writeJSON(w, http.StatusOK, map[string]any{
			"placement":   rec.Result.Summary.Placement,
			"deployments": rec.Result.Deployments,
		})
	}
}

// handleGetRange handles GET /v1/scenarios/{id}/range?mdc=M1&hops=1[&to=M3]
// over the placed topology of a built run
func (s *HTTPServer) handleGetRange(w http.ResponseWriter, r *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if rec.Status != RunStatusBuilt || rec.Result == nil || rec.Result.Placed() == nil {
		s.writeError(w, http.StatusConflict, "run "+runID+" has no result: "+string(rec.Status))
		return
	}

	q := r.URL.Query()
	mdcID := q.Get("mdc")
	if mdcID == "" {
		s.writeError(w, http.StatusBadRequest, "mdc is required")
		return
	}
	hops := 0
	if hopsStr := q.Get("hops"); hopsStr != "" {
		parsed, err := strconv.Atoi(hopsStr)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "hops must be a non-negative integer")
			return
		}
		hops = parsed
	}

	topo := rec.Result.Placed()
	servers, err := topo.ServersInRange(mdcID, hops)
	if err != nil {
		s.writeTopologyError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(servers))
	for _, srv := range servers {
		out = append(out, map[string]any{
			"id":     srv.ID,
			"mdc":    srv.MDCID,
			"memory": srv.Memory,
		})
	}
	resp := map[string]any{
		"mdc":     mdcID,
		"hops":    hops,
		"servers": out,
	}

	if to := q.Get("to"); to != "" {
		distance, err := topo.HopDistance(mdcID, to)
		if err != nil {
			s.writeTopologyError(w, err)
			return
		}
		resp["to"] = to
		resp["hop_distance"] = distance
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) writeTopologyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, topology.ErrMDCNotFound), errors.Is(err, topology.ErrNoPath):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.writeError(w, http.StatusBadRequest, err.Error())
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}

func convertRunToJSON(rec *RunRecord) map[string]any {
	out := map[string]any{
		"id":         rec.ID,
		"status":     string(rec.Status),
		"created_at": rec.CreatedAt.Format(time.RFC3339Nano),
	}
	if rec.Error != "" {
		out["error"] = rec.Error
	}
	if !rec.BuiltAt.IsZero() {
		out["built_at"] = rec.BuiltAt.Format(time.RFC3339Nano)
	}
	if rec.Result != nil {
		out["summary"] = rec.Result.Summary
	}
	return out
}
