// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openbi/rankindex/internal/domain/types"
	"github.com/openbi/rankindex/pkg/metrics"
)

// RankingDependencies defines the interface for ranking read operations.
type RankingDependencies interface {
	RankedCompany(ctx context.Context, industry string, rank, year, month int) (types.CompanyEntry, error)
	Rankings(ctx context.Context, industry string, limit, offset, year, month int) (types.RankingsPage, error)
	Overview(ctx context.Context, industry string) (types.Overview, error)
	TopCompanies(ctx context.Context, industry string) (types.TopCompanies, error)
}

// RankingsHandler handles ranking, overview and top-companies requests.
type RankingsHandler struct {
	deps RankingDependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingDependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

// HandleRank handles GET /industry/{industry}/rank/{rank} requests.
func (h *RankingsHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	const op = "rank"
	metrics.RecordQuery(op)
	rank, err := strconv.Atoi(chi.URLParam(r, "rank"))
	if err != nil {
		metrics.RecordQueryError(op, "invalid_parameter")
		writeError(w, http.StatusBadRequest, "invalid_parameter", ErrBadRequest)
		return
	}
	year, month, err := queryPeriod(r)
	if err != nil {
		metrics.RecordQueryError(op, "invalid_parameter")
		writeError(w, http.StatusBadRequest, "invalid_parameter", err)
		return
	}
	entry, err := h.deps.RankedCompany(r.Context(), chi.URLParam(r, "industry"), rank, year, month)
	if err != nil {
		_, code := statusForError(err)
		metrics.RecordQueryError(op, code)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleRankings handles GET /industry/{industry}/rankings?limit=&offset= requests.
func (h *RankingsHandler) HandleRankings(w http.ResponseWriter, r *http.Request) {
	const op = "rankings"
	metrics.RecordQuery(op)
	limit, err := queryInt(r, "limit")
	if err != nil {
		metrics.RecordQueryError(op, "invalid_parameter")
		writeError(w, http.StatusBadRequest, "invalid_parameter", err)
		return
	}
	offset, err := queryInt(r, "offset")
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
	page, err := h.deps.Rankings(r.Context(), chi.URLParam(r, "industry"), limit, offset, year, month)
	if err != nil {
		_, code := statusForError(err)
		metrics.RecordQueryError(op, code)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleOverview handles GET /industry/{industry}/overview requests.
func (h *RankingsHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	const op = "overview"
	metrics.RecordQuery(op)
	overview, err := h.deps.Overview(r.Context(), chi.URLParam(r, "industry"))
	if err != nil {
		_, code := statusForError(err)
		metrics.RecordQueryError(op, code)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// HandleTopCompanies handles GET /industry/{industry}/top-companies requests.
func (h *RankingsHandler) HandleTopCompanies(w http.ResponseWriter, r *http.Request) {
	const op = "top_companies"
	metrics.RecordQuery(op)
	top, err := h.deps.TopCompanies(r.Context(), chi.URLParam(r, "industry"))
	if err != nil {
		_, code := statusForError(err)
		metrics.RecordQueryError(op, code)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}
