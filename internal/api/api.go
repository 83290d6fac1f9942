// Package api exposes the analysis pipeline over HTTP. All endpoints
// speak JSON except /api/render, which returns the diagram bytes
// directly. Errors carry the structured codes from pkg/errors.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Glycocalex/glycowork-ab/pkg/errors"
	"github.com/Glycocalex/glycowork-ab/pkg/glycan"
	"github.com/Glycocalex/glycowork-ab/pkg/pipeline"
	"github.com/Glycocalex/glycowork-ab/pkg/store"
)

// Server wires the pipeline runner and dataset store into HTTP handlers.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
}

// NewServer creates a server. The store may be nil, in which case only
// the embedded reference datasets are served.
func NewServer(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, store: st, logger: logger}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Post("/motifs", s.handleMotifs)
		r.Post("/diff", s.handleDiff)
		r.Post("/render", s.handleRender)
		r.Get("/datasets", s.handleDatasetList)
		r.Get("/datasets/{name}", s.handleDatasetGet)
	})
	return r
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{
		Error: err.Error(),
		Code:  string(errors.GetCode(err)),
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type parseRequest struct {
	Glycans []string `json:"glycans"`
}

type parseResult struct {
	Sequence    string         `json:"sequence"`
	Canonical   string         `json:"canonical"`
	Residues    int            `json:"residues"`
	Depth       int            `json:"depth"`
	Composition map[string]int `json:"composition"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	results := make([]parseResult, len(req.Glycans))
	for i, seq := range req.Glycans {
		g, err := glycan.Parse(seq)
		if err != nil {
			s.writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		results[i] = parseResult{
			Sequence:    seq,
			Canonical:   g.Canonical(),
			Residues:    g.NodeCount(),
			Depth:       g.Depth(),
			Composition: g.Composition(),
		}
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleMotifs(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Glycans) == 0 {
		s.writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "glycans are required"))
		return
	}
	m, err := s.runner.Quantify(r.Context(), pipeline.Options{Glycans: req.Glycans})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

type diffResponse struct {
	Alpha   float64               `json:"alpha"`
	Results []pipeline.DiffResult `json:"results"`
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if opts.Abundance == nil {
		s.writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "abundance table is required"))
		return
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	m, err := s.runner.Quantify(r.Context(), opts)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	results, alpha, err := s.runner.Analyze(m, opts)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, diffResponse{Alpha: alpha, Results: results})
}

type renderRequest struct {
	Glycan string `json:"glycan"`
	Format string `json:"format"`
	Labels bool   `json:"labels"`
}

var renderContentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Format == "" {
		req.Format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(req.Format); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	g, err := glycan.Parse(req.Glycan)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	artifacts, err := s.runner.Render(r.Context(), []*glycan.Glycan{g}, pipeline.Options{
		Glycans: []string{req.Glycan},
		Formats: []string{req.Format},
		Labels:  req.Labels,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", renderContentTypes[req.Format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[g.Canonical()][req.Format])
}

func (s *Server) handleDatasetList(w http.ResponseWriter, r *http.Request) {
	names := store.EmbeddedNames()
	if s.store != nil {
		stored, err := s.store.List(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			seen[n] = true
		}
		for _, n := range stored {
			if !seen[n] {
				names = append(names, n)
			}
		}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"datasets": names})
}

func (s *Server) handleDatasetGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	d, err := store.Resolve(r.Context(), s.store, name)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

// statusFor maps structured error codes to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrCodeDatasetNotFound),
		errors.Is(err, errors.ErrCodeCompoundNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeInvalidGlycan),
		errors.Is(err, errors.ErrCodeInvalidInput),
		errors.Is(err, errors.ErrCodeInvalidDataset):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
