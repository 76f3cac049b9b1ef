// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/openbi/rankindex/internal/domain/types"
	"github.com/openbi/rankindex/pkg/metrics"
)

// CompanyDependencies defines the interface for company lookup operations.
type CompanyDependencies interface {
	Company(ctx context.Context, name string, year, month int) (types.CompanyLookup, error)
	CompaniesBatch(ctx context.Context, names []string, industry string, year, month int) (types.BatchResult, error)
	SearchCompanies(ctx context.Context, query string, limit, year, month int) (types.SearchResult, error)
}

// CompanyHandler handles single, batch and free-text company lookups.
type CompanyHandler struct {
	deps CompanyDependencies
}

// NewCompanyHandler creates a new company handler.
func NewCompanyHandler(deps CompanyDependencies) *CompanyHandler {
	return &CompanyHandler{deps: deps}
}

// HandleLookup handles GET /company?name=&year=&month= requests.
func (h *CompanyHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	const op = "company"
	metrics.RecordQuery(op)
	name := r.URL.Query().Get("name")
	year, month, err := queryPeriod(r)
	if err != nil {
		metrics.RecordQueryError(op, "invalid_parameter")
		writeError(w, http.StatusBadRequest, "invalid_parameter", err)
		return
	}
	lookup, err := h.deps.Company(r.Context(), name, year, month)
	if err != nil {
		_, code := statusForError(err)
		metrics.RecordQueryError(op, code)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lookup)
}

// batchRequest mirrors the request schema for POST /companies.
type batchRequest struct {
	Companies []string `json:"companies"`
	Industry  string   `json:"industry,omitempty"`
	Year      int      `json:"year,omitempty"`
	Month     int      `json:"month,omitempty"`
}

func (b batchRequest) validate() error {
	if len(b.Companies) == 0 {
		return errors.New("missing companies")
	}
	for _, name := range b.Companies {
		if strings.TrimSpace(name) == "" {
			return errors.New("blank company name")
		}
	}
	if b.Year < 0 || b.Month < 0 || b.Month > 12 {
		return errors.New("invalid year or month")
	}
	return nil
}

// HandleBatch handles POST /companies requests. Each requested name resolves
// independently; the batch only fails when the scoping industry is unknown.
func (h *CompanyHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "companies_batch"
	metrics.RecordQuery(op)
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecordQueryError(op, "invalid_parameter")
		writeError(w, http.StatusBadRequest, "invalid_parameter", errors.New("invalid JSON body"))
		return
	}
	if err := req.validate(); err != nil {
		metrics.RecordQueryError(op, "invalid_parameter")
		writeError(w, http.StatusBadRequest, "invalid_parameter", err)
		return
	}
	result, err := h.deps.CompaniesBatch(r.Context(), req.Companies, req.Industry, req.Year, req.Month)
	if err != nil {
		_, code := statusForError(err)
		metrics.RecordQueryError(op, code)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleSearch handles GET /search/companies?company=&limit= requests.
func (h *CompanyHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "search_companies"
	metrics.RecordQuery(op)
	query := r.URL.Query().Get("company")
	limit, err := queryInt(r, "limit")
	if err != nil {
		metrics.RecordQueryError(op, "invalid_parameter")
		writeError(w, http.StatusBadRequest, "invalid_parameter", err)
		return
	}
	year, month, err := queryPeriod(r)
	if err != nil {
		metrics.RecordQueryError(op, "invalid_parameter")
		writeError(w, http.StatusBadRequest, "invalid_parameter", err)
		return
	}
	result, err := h.deps.SearchCompanies(r.Context(), query, limit, year, month)
	if err != nil {
		_, code := statusForError(err)
		metrics.RecordQueryError(op, code)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
