// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/openbi/rankindex/internal/domain/types"
	"github.com/openbi/rankindex/pkg/metrics"
)

// PeriodDependencies defines the interface for period and discovery reads.
type PeriodDependencies interface {
	Periods(ctx context.Context, industry string) (types.PeriodList, error)
	Discovery(ctx context.Context) (types.Discovery, error)
}

// PeriodsHandler handles period listing and API discovery requests.
type PeriodsHandler struct {
	deps PeriodDependencies
}

// NewPeriodsHandler creates a new periods handler.
func NewPeriodsHandler(deps PeriodDependencies) *PeriodsHandler {
	return &PeriodsHandler{deps: deps}
}

// HandlePeriods handles GET /periods?industry= requests.
func (h *PeriodsHandler) HandlePeriods(w http.ResponseWriter, r *http.Request) {
	const op = "periods"
	metrics.RecordQuery(op)
	list, err := h.deps.Periods(r.Context(), r.URL.Query().Get("industry"))
	if err != nil {
		_, code := statusForError(err)
		metrics.RecordQueryError(op, code)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleDiscover handles GET /discover requests.
func (h *PeriodsHandler) HandleDiscover(w http.ResponseWriter, r *http.Request) {
	const op = "discover"
	metrics.RecordQuery(op)
	d, err := h.deps.Discovery(r.Context())
	if err != nil {
		_, code := statusForError(err)
		metrics.RecordQueryError(op, code)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
