package server

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-material-eval/pkg/config"
	"github.com/df07/go-material-eval/pkg/log"
	"github.com/df07/go-material-eval/pkg/scene"
	"github.com/df07/go-material-eval/pkg/shading"
)

var logger = log.New("server")

// maxConfigBytes bounds the body of a shade request
const maxConfigBytes = 1 << 20

// Server answers material inspection and shading requests over HTTP
type Server struct {
	port    int
	workers int
	mux     *http.ServeMux
}

// NewServer creates a new web server. workers bounds the shading pool of each request.
func NewServer(port, workers int) *Server {
	s := &Server{port: port, workers: workers, mux: http.NewServeMux()}
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	s.mux.HandleFunc("/api/shade", s.handleShade)
	return s
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	logger.Noticef("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// SceneList is the response of /api/scenes
type SceneList struct {
	Scenes  []string           `json:"scenes"`
	Presets []scene.PresetInfo `json:"presets"`
}

// ShadeResult is one shaded probe point of a /api/shade request
type ShadeResult struct {
	Material string    `json:"material"`
	Variant  string    `json:"variant,omitempty"`
	Flags    string    `json:"flags,omitempty"`
	Lambda   []float64 `json:"lambda,omitempty"`
	F        []float64 `json:"f,omitempty"`
	PDF      float64   `json:"pdf"`
	BSSRDF   bool      `json:"bssrdf"`
	Fallback bool      `json:"fallback"`
	Error    string    `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warningf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SceneList{Scenes: scene.ListScenes(), Presets: scene.ListPresets()})
}

// handleShade builds the materials of a JSON config posted as the request body
// and shades each at the configured probe point
func (s *Server) handleShade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST a probe config")
		return
	}
	cfg, err := config.Decode(io.LimitReader(r.Body, maxConfigBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	built, err := cfg.BuildTable()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	eval, err := cfg.TextureEvaluator()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	random := rand.New(rand.NewSource(42))
	var (
		points []shading.Point
		names  []string
	)
	for _, name := range built.Order {
		for _, p := range cfg.ProbePoints(built.IDs[name], random) {
			points = append(points, p)
			names = append(names, name)
		}
	}

	records, err := shading.EvaluateBatch(shading.NewScene(built.Table, eval), points, s.workers)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	results := make([]ShadeResult, len(records))
	for i, rec := range records {
		results[i] = ShadeResult{Material: names[i]}
		if rec.Err != nil {
			results[i].Error = rec.Err.Error()
			continue
		}
		results[i].Variant = rec.Name
		results[i].Flags = rec.Flags.String()
		results[i].Lambda = wavelengths(rec)
		results[i].F = rec.F[:]
		results[i].PDF = rec.PDF
		results[i].BSSRDF = rec.HasBSSRDF
		results[i].Fallback = rec.Fallback
	}
	logger.Infof("Shaded %d points for %d materials", len(records), len(built.Order))
	writeJSON(w, http.StatusOK, results)
}

func wavelengths(rec shading.Record) []float64 {
	lambda := make([]float64, len(rec.F))
	for i := range lambda {
		lambda[i] = rec.Lambda.Lambda(i)
	}
	return lambda
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
