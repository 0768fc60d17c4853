package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/elys-network/hedgevault/internal/logger"
	"github.com/elys-network/hedgevault/internal/metrics"
	"github.com/elys-network/hedgevault/internal/state"
	"github.com/elys-network/hedgevault/internal/types"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// DefaultConfigName is the strategy parameter config served by /api/strategy-parameters.
const DefaultConfigName = state.DefaultConfigName

// RunArchive is the read side of the run archive.
type RunArchive interface {
	GetRecentRuns(limit int) ([]types.RunRecord, error)
	GetRunByID(runID string) (*types.RunRecord, error)
	GetRunSteps(runID string) ([]types.StepRecord, error)
	GetArchiveSummary() (*state.ArchiveSummary, error)
	LoadActiveStrategyParameters(configName string) (*types.StrategyParameters, error)
	Ping() error
}

// stateArchive serves the archive from the global state database.
type stateArchive struct{}

func (stateArchive) GetRecentRuns(limit int) ([]types.RunRecord, error) {
	return state.GetRecentRuns(limit)
}
func (stateArchive) GetRunByID(runID string) (*types.RunRecord, error) { return state.GetRunByID(runID) }
func (stateArchive) GetRunSteps(runID string) ([]types.StepRecord, error) {
	return state.GetRunSteps(runID)
}
func (stateArchive) GetArchiveSummary() (*state.ArchiveSummary, error) {
	return state.GetArchiveSummary()
}
func (stateArchive) LoadActiveStrategyParameters(configName string) (*types.StrategyParameters, error) {
	return state.LoadActiveStrategyParameters(configName)
}
func (stateArchive) Ping() error { return state.TestDBConnection() }

// WebServer serves archived simulation runs over HTTP
type WebServer struct {
	router  *mux.Router
	port    string
	archive RunArchive
	metrics *metrics.Metrics
	started time.Time
}

// NewWebServer creates a web server backed by the state database
func NewWebServer(port string, m *metrics.Metrics) *WebServer {
	return NewWebServerWithArchive(port, stateArchive{}, m)
}

// NewWebServerWithArchive creates a web server backed by archive
func NewWebServerWithArchive(port string, archive RunArchive, m *metrics.Metrics) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:  mux.NewRouter(),
		port:    port,
		archive: archive,
		metrics: m,
		started: time.Now(),
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")
	if ws.metrics != nil {
		ws.router.Handle("/metrics", ws.metrics.Handler()).Methods("GET")
	}

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/runs", ws.handleGetRuns).Methods("GET")
	api.HandleFunc("/runs/latest", ws.handleGetLatestRun).Methods("GET")
	api.HandleFunc("/runs/{id}", ws.handleGetRun).Methods("GET")
	api.HandleFunc("/runs/{id}/steps", ws.handleGetRunSteps).Methods("GET")
	api.HandleFunc("/strategy-parameters", ws.handleGetStrategyParameters).Methods("GET")
	api.HandleFunc("/archive/summary", ws.handleGetArchiveSummary).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Handler returns the server's router
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// Start serves until ctx is cancelled, then shuts the server down
func (ws *WebServer) Start(ctx context.Context) error {
	webLogger := logger.GetForComponent("web_server")
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		webLogger.Info().Msg("Stopping web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := ws.archive.Ping() == nil

	var lastRun map[string]interface{}
	if dbHealthy {
		if runs, err := ws.archive.GetRecentRuns(1); err == nil && len(runs) > 0 {
			lastRun = map[string]interface{}{
				"run_id":     runs[0].RunID,
				"name":       runs[0].Name,
				"status":     runs[0].Status,
				"created_at": runs[0].CreatedAt,
			}
		}
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if !dbHealthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
			"uptime_seconds":   int64(time.Since(ws.started).Seconds()),
		},
		"component": map[string]interface{}{
			"name":    "hedgevault-run-archive",
			"version": "1.0.0",
		},
		"archive_status": map[string]interface{}{
			"database_healthy": dbHealthy,
			"last_run":         lastRun,
		},
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetRuns returns the most recent runs
func (ws *WebServer) handleGetRuns(w http.ResponseWriter, r *http.Request) {
	limit := state.DefaultRecentRunsLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	runs, err := ws.archive.GetRecentRuns(limit)
	if err != nil {
		ws.logError(err, "Failed to get recent runs")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve runs")
		return
	}

	response := map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
		"limit": limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetLatestRun returns the most recent run
func (ws *WebServer) handleGetLatestRun(w http.ResponseWriter, r *http.Request) {
	runs, err := ws.archive.GetRecentRuns(1)
	if err != nil {
		ws.logError(err, "Failed to get latest run")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve runs")
		return
	}
	if len(runs) == 0 {
		ws.writeErrorResponse(w, http.StatusNotFound, "No runs found")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, runs[0])
}

// runIDFromRequest extracts and validates the {id} path variable
func (ws *WebServer) runIDFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid run ID")
		return "", false
	}
	return id, true
}

// handleGetRun returns a specific run by ID
func (ws *WebServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := ws.runIDFromRequest(w, r)
	if !ok {
		return
	}

	run, err := ws.archive.GetRunByID(id)
	if err != nil {
		ws.writeLookupError(w, err, id)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, run)
}

// handleGetRunSteps returns the recorded rows of a run
func (ws *WebServer) handleGetRunSteps(w http.ResponseWriter, r *http.Request) {
	id, ok := ws.runIDFromRequest(w, r)
	if !ok {
		return
	}

	if _, err := ws.archive.GetRunByID(id); err != nil {
		ws.writeLookupError(w, err, id)
		return
	}

	steps, err := ws.archive.GetRunSteps(id)
	if err != nil {
		ws.logError(err, "Failed to get run steps")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve run steps")
		return
	}

	response := map[string]interface{}{
		"run_id": id,
		"steps":  steps,
		"count":  len(steps),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetStrategyParameters returns the active strategy parameters
func (ws *WebServer) handleGetStrategyParameters(w http.ResponseWriter, r *http.Request) {
	configName := r.URL.Query().Get("config")
	if configName == "" {
		configName = DefaultConfigName
	}

	params, err := ws.archive.LoadActiveStrategyParameters(configName)
	if err != nil {
		if errors.Is(err, state.ErrNoStrategyParameters) {
			ws.writeErrorResponse(w, http.StatusNotFound, "No active strategy parameters")
			return
		}
		ws.logError(err, "Failed to get strategy parameters")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve strategy parameters")
		return
	}

	response := map[string]interface{}{
		"config":     configName,
		"parameters": params,
		"timestamp":  time.Now().UTC(),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetArchiveSummary returns statistics over all archived runs
func (ws *WebServer) handleGetArchiveSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := ws.archive.GetArchiveSummary()
	if err != nil {
		ws.logError(err, "Failed to get archive summary")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve archive summary")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, summary)
}

func (ws *WebServer) writeLookupError(w http.ResponseWriter, err error, id string) {
	if errors.Is(err, state.ErrRunNotFound) {
		ws.writeErrorResponse(w, http.StatusNotFound, "Run not found")
		return
	}
	webLogger := logger.GetForComponent("web_server")
	webLogger.Error().Err(err).Str("runId", id).Msg("Failed to get run")
	ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve run")
}

func (ws *WebServer) logError(err error, msg string) {
	webLogger := logger.GetForComponent("web_server")
	webLogger.Error().Err(err).Msg(msg)
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		ws.logError(err, "Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		webLogger := logger.GetForComponent("web_server")
		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
