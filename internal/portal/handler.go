// Package portal exposes the knowledge-base over HTTP: search, document
// CRUD, re-indexing, and index statistics.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/intranet-tools/hr-knowledge-base/internal/analytics"
	"github.com/intranet-tools/hr-knowledge-base/internal/document"
	"github.com/intranet-tools/hr-knowledge-base/internal/ingest"
	"github.com/intranet-tools/hr-knowledge-base/internal/store"
	apperrors "github.com/intranet-tools/hr-knowledge-base/pkg/errors"
	"github.com/intranet-tools/hr-knowledge-base/pkg/logger"
)

// Searcher resolves free-text queries, reporting the resolution outcome
// (intersection, union, title fallback, ...). Satisfied by both the plain
// and the cached resolver.
type Searcher interface {
	Search(ctx context.Context, query string) ([]*document.Record, string, error)
}

// SearchHit is the trimmed record shape returned by the search endpoint.
// Scores are an internal ranking detail and never serialised.
type SearchHit struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	Icon         string         `json:"icon,omitempty"`
	Color        document.Color `json:"color"`
	ExternalLink string         `json:"externalLink,omitempty"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Query   string      `json:"query"`
	Count   int         `json:"count"`
	Results []SearchHit `json:"results"`
}

type ingestRequest struct {
	SourceLocator string   `json:"sourceLocator,omitempty"`
	Markup        string   `json:"markup,omitempty"`
	Filename      string   `json:"filename,omitempty"`
	Title         string   `json:"title,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	ExternalLink  string   `json:"externalLink,omitempty"`
}

type statsResponse struct {
	Documents  int64 `json:"documents"`
	Vocabulary int   `json:"vocabulary"`
}

// Handler carries the portal's HTTP endpoints.
type Handler struct {
	searcher  Searcher
	pipeline  *ingest.Pipeline
	store     *store.Store
	collector *analytics.Collector
}

func NewHandler(searcher Searcher, pipeline *ingest.Pipeline, s *store.Store, collector *analytics.Collector) *Handler {
	return &Handler{
		searcher:  searcher,
		pipeline:  pipeline,
		store:     s,
		collector: collector,
	}
}

// Search resolves a query from either the q parameter or a JSON body.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" && r.Method == http.MethodPost {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			writeError(w, r, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid request body"))
			return
		}
		query = req.Query
	}
	if query == "" {
		writeError(w, r, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "missing query"))
		return
	}

	records, outcome, err := h.searcher.Search(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.collector.RecordSearch(query, len(records), outcome)

	hits := make([]SearchHit, 0, len(records))
	for _, rec := range records {
		hits = append(hits, SearchHit{
			ID:           rec.ID,
			Title:        rec.Title,
			Description:  rec.Description,
			Icon:         rec.Icon,
			Color:        rec.Color,
			ExternalLink: rec.ExternalLink,
		})
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: query, Count: len(hits), Results: hits})
}

// Ingest accepts a document for indexing.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid request body"))
		return
	}
	rec, err := h.pipeline.Ingest(r.Context(), ingest.Request{
		SourceLocator: req.SourceLocator,
		Markup:        req.Markup,
		Filename:      req.Filename,
		Title:         req.Title,
		Tags:          req.Tags,
		ExternalLink:  req.ExternalLink,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// List returns every stored document id.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.ListDocuments(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": ids, "count": len(ids)})
}

// Get returns one full document record.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.GetRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Delete removes a document and its postings.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.pipeline.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reindex re-runs the ingest pipeline for a stored document.
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	rec, err := h.pipeline.Reindex(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Stats reports document and vocabulary counts.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.CountDocuments(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	terms, err := h.store.CountTerms(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Documents: docs, Vocabulary: terms})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{
		"error":     message,
		"requestId": logger.RequestIDFromContext(r.Context()),
	})
}
