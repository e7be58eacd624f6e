package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/matzehuels/conceptmap/pkg/analysis"
	"github.com/matzehuels/conceptmap/pkg/buildinfo"
	"github.com/matzehuels/conceptmap/pkg/concept"
	apperr "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/generate"
	"github.com/matzehuels/conceptmap/pkg/layout"
	"github.com/matzehuels/conceptmap/pkg/pipeline"
	"github.com/matzehuels/conceptmap/pkg/render"
	"github.com/matzehuels/conceptmap/pkg/store"
)

// =============================================================================
// Health
// =============================================================================

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Current()})
}

// =============================================================================
// Ad-hoc layout
// =============================================================================

type layoutRequest struct {
	Graph      json.RawMessage `json:"graph"`
	MaxLevels  int             `json:"max_levels,omitempty"`
	LabelWords int             `json:"label_words,omitempty"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if _, err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if len(req.Graph) == 0 || string(req.Graph) == "null" {
		s.fail(w, r, apperr.New(apperr.ErrCodeInvalidGraph, "graph is required"))
		return
	}
	doc, err := concept.DecodeDocument(req.Graph)
	if err != nil && !errors.Is(err, concept.ErrEmptyGraph) {
		s.fail(w, r, apperr.Wrap(apperr.ErrCodeInvalidGraph, err, "graph is not a concept map"))
		return
	}

	opts := pipeline.Options{MaxLevels: req.MaxLevels, LabelWords: req.LabelWords}
	if opts.MaxLevels == 0 && doc.Depth == 0 {
		opts.MaxLevels = s.cfg.DefaultDepth
	}
	res, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), doc, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, res)
}

// =============================================================================
// Stored maps
// =============================================================================

type createMapRequest struct {
	Class string `json:"class"`
}

func (s *Server) handleCreateMap(w http.ResponseWriter, r *http.Request) {
	var req createMapRequest
	body, err := decodeJSON(w, r, &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	doc, err := concept.DecodeDocument(body)
	if err != nil {
		s.fail(w, r, apperr.Wrap(apperr.ErrCodeInvalidGraph, err, "body is not a concept map"))
		return
	}
	if doc.Depth != 0 {
		if err := apperr.ValidateDepth(doc.Depth); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	s.saveAndRespond(w, r, store.NewRecord(doc, req.Class, s.now()))
}

func (s *Server) saveAndRespond(w http.ResponseWriter, r *http.Request, rec store.Record) {
	if err := s.store.Save(r.Context(), rec); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("stored map", "id", rec.ID, "topic", rec.Map.Topic, "concepts", len(rec.Map.Nodes))
	w.Header().Set("Location", "/v1/maps/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, store.SummarizeAll(recs, s.cfg.DefaultDepth))
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	rec, err := s.record(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteMap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := apperr.ValidateMapID(id); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMapLayout(w http.ResponseWriter, r *http.Request) {
	_, res, hit, err := s.recordLayout(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMapRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormats([]string{format}); err != nil {
		s.fail(w, r, err)
		return
	}
	width, err := floatQuery(r, "width")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	height, err := floatQuery(r, "height")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	_, res, _, err := s.recordLayout(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), res, pipeline.Options{
		Formats:     []string{format},
		Width:       width,
		Height:      height,
		Interactive: r.URL.Query().Get("interactive") == "true",
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	setCacheHeader(w, hit)
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) handleMapStats(w http.ResponseWriter, r *http.Request) {
	rec, res, _, err := s.recordLayout(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis.Analyze(rec.Map, res))
}

// record loads the map named by the {id} URL parameter.
func (s *Server) record(r *http.Request) (store.Record, error) {
	id := chi.URLParam(r, "id")
	if err := apperr.ValidateMapID(id); err != nil {
		return store.Record{}, err
	}
	return s.store.Get(r.Context(), id)
}

// recordLayout loads the map named by {id} and lays it out at ?depth=, the
// stored depth or the server default, in that order.
func (s *Server) recordLayout(r *http.Request) (store.Record, layout.Result, bool, error) {
	rec, err := s.record(r)
	if err != nil {
		return store.Record{}, layout.Result{}, false, err
	}
	depth := rec.MaxLevels(s.cfg.DefaultDepth)
	if q := r.URL.Query().Get("depth"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return store.Record{}, layout.Result{}, false, apperr.New(apperr.ErrCodeInvalidDepth, "depth must be an integer, got %q", q)
		}
		depth = n
	}
	res, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), rec.Document, pipeline.Options{MaxLevels: depth})
	return rec, res, hit, err
}

// =============================================================================
// Generation
// =============================================================================

type generateRequest struct {
	generate.Request
	Class string `json:"class,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		s.fail(w, r, apperr.New(apperr.ErrCodeUnsupported, "generation is not configured (set OPENAI_API_KEY)"))
		return
	}
	if !s.limiter.Allow() {
		retry := int(math.Ceil(1 / float64(s.limiter.Limit())))
		s.fail(w, r, &apperr.RateLimitedError{RetryAfter: retry, Message: "too many generate requests"})
		return
	}

	var req generateRequest
	if _, err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	doc, err := s.generator.Generate(r.Context(), req.Request)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.saveAndRespond(w, r, store.NewRecord(doc, req.Class, s.now()))
}

// =============================================================================
// Helpers
// =============================================================================

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
}

func floatQuery(r *http.Request, name string) (float64, error) {
	q := r.URL.Query().Get(name)
	if q == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(q, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, apperr.New(apperr.ErrCodeInvalidInput, "%s must be a positive number, got %q", name, q)
	}
	return v, nil
}

func contentType(format string) string {
	switch format {
	case render.FormatSVG, render.FormatGraphviz:
		return "image/svg+xml"
	case render.FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	default:
		return "application/json; charset=utf-8"
	}
}
