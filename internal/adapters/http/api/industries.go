// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openbi/rankindex/internal/domain/types"
	"github.com/openbi/rankindex/pkg/metrics"
)

// IndustryDependencies defines the interface for industry listing operations.
type IndustryDependencies interface {
	Industries(ctx context.Context) []string
	IndustryCompanies(ctx context.Context, industry string, year, month int) (types.CompanyList, error)
}

// IndustriesHandler handles industry listing requests.
type IndustriesHandler struct {
	deps IndustryDependencies
}

// NewIndustriesHandler creates a new industries handler.
func NewIndustriesHandler(deps IndustryDependencies) *IndustriesHandler {
	return &IndustriesHandler{deps: deps}
}

type industriesResponse struct {
	Industries []string `json:"industries"`
	Count      int      `json:"count"`
}

// HandleList handles GET /industries requests.
func (h *IndustriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "industries"
	metrics.RecordQuery(op)
	industries := h.deps.Industries(r.Context())
	writeJSON(w, http.StatusOK, industriesResponse{Industries: industries, Count: len(industries)})
}

// HandleCompanies handles GET /industry/{industry}/companies requests.
func (h *IndustriesHandler) HandleCompanies(w http.ResponseWriter, r *http.Request) {
	const op = "industry_companies"
	metrics.RecordQuery(op)
	year, month, err := queryPeriod(r)
	if err != nil {
		metrics.RecordQueryError(op, "invalid_parameter")
		writeError(w, http.StatusBadRequest, "invalid_parameter", err)
		return
	}
	list, err := h.deps.IndustryCompanies(r.Context(), chi.URLParam(r, "industry"), year, month)
	if err != nil {
		_, code := statusForError(err)
		metrics.RecordQueryError(op, code)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
