package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Adahandles/ledgertrace/internal/entity"
	"github.com/Adahandles/ledgertrace/internal/export"
	"github.com/Adahandles/ledgertrace/internal/monitoring"
	"github.com/Adahandles/ledgertrace/internal/report"
)

// Server wires the HTTP handlers to the analysis services.
type Server struct {
	analyzer *report.Analyzer
	exporter *export.Service
	monitor  *monitoring.Monitor
	limiter  *RateLimiter
	logger   *zap.Logger
	version  string
}

// NewServer creates the API server. exporter may be nil when exports
// are disabled in config.
func NewServer(analyzer *report.Analyzer, exporter *export.Service, monitor *monitoring.Monitor, limiter *RateLimiter, logger *zap.Logger, version string) *Server {
	return &Server{
		analyzer: analyzer,
		exporter: exporter,
		monitor:  monitor,
		limiter:  limiter,
		logger:   logger,
		version:  version,
	}
}

// Routes registers all API routes on a new chi router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.limiter.Middleware("analyze", s.limiter.config.AnalyzePerMinute)).
			Post("/analyze", s.handleAnalyze)

		r.With(s.limiter.Middleware("export", s.limiter.config.ExportPerMinute)).
			Post("/export", s.handleExport)

		r.With(s.limiter.Middleware("download", s.limiter.config.DownloadPerMinute)).
			Get("/exports/{filename}", s.handleDownload)

		r.Get("/monitor/{name}", s.handleMonitorReport)
	})
}

// analyzeRequest is the POST /analyze and /export body. Format is only
// honored by the export endpoint.
type analyzeRequest struct {
	Name     string   `json:"name"`
	Address  string   `json:"address,omitempty"`
	EIN      string   `json:"ein,omitempty"`
	Officers []string `json:"officers,omitempty"`
	County   string   `json:"county,omitempty"`
	Format   string   `json:"format,omitempty"`
}

func (req *analyzeRequest) input() *entity.Input {
	return &entity.Input{
		Name:     req.Name,
		Address:  req.Address,
		EIN:      req.EIN,
		Officers: req.Officers,
		County:   req.County,
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	_, in, ok := s.decodeInput(w, r)
	if !ok {
		return
	}

	rep := s.analyzer.Analyze(r.Context(), in)

	if s.monitor != nil {
		if alerts := s.monitor.Record(r.Context(), rep); len(alerts) > 0 {
			s.logger.Info("change alerts raised",
				zap.String("entity", rep.Name),
				zap.Int("alerts", len(alerts)))
		}
	}

	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export is disabled")
		return
	}

	req, in, ok := s.decodeInput(w, r)
	if !ok {
		return
	}

	format := export.Format(req.Format)
	if format == "" {
		format = export.FormatJSON
	}
	if format != export.FormatJSON && format != export.FormatHTML {
		writeError(w, http.StatusBadRequest, "format must be json or html")
		return
	}

	rep := s.analyzer.Analyze(r.Context(), in)
	result, err := s.exporter.Export(rep, format)
	if err != nil {
		s.logger.Error("export failed", zap.String("entity", rep.Name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"export":       result,
		"download_url": "/api/v1/exports/" + result.Filename,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export is disabled")
		return
	}

	filename := chi.URLParam(r, "filename")
	f, err := s.exporter.Open(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "export not found")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid filename")
		return
	}
	defer f.Close()

	if strings.HasSuffix(filename, ".html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := io.Copy(w, f); err != nil {
		s.logger.Warn("download interrupted", zap.String("filename", filename), zap.Error(err))
	}
}

func (s *Server) handleMonitorReport(w http.ResponseWriter, r *http.Request) {
	if s.monitor == nil {
		writeError(w, http.StatusServiceUnavailable, "monitoring is disabled")
		return
	}

	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		writeError(w, http.StatusBadRequest, "entity name is required")
		return
	}

	rep, err := s.monitor.Report(r.Context(), name)
	if err != nil {
		s.logger.Error("monitoring report failed", zap.String("entity", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "monitoring report failed")
		return
	}
	if rep.SnapshotCount == 0 {
		writeError(w, http.StatusNotFound, "no analysis history for entity")
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"version":   s.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// decodeInput parses and validates the request body, writing the error
// response itself when the input is rejected.
func (s *Server) decodeInput(w http.ResponseWriter, r *http.Request) (*analyzeRequest, *entity.Input, bool) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, nil, false
	}

	in := req.input()
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}
	return &req, in, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
