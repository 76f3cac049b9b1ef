// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	json "github.com/goccy/go-json"

	service "github.com/openbi/rankindex/internal/app"
	"github.com/openbi/rankindex/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Industries(ctx context.Context) []string
	IndustryCompanies(ctx context.Context, industry string, year, month int) (types.CompanyList, error)
	Company(ctx context.Context, name string, year, month int) (types.CompanyLookup, error)
	CompaniesBatch(ctx context.Context, names []string, industry string, year, month int) (types.BatchResult, error)
	RankedCompany(ctx context.Context, industry string, rank, year, month int) (types.CompanyEntry, error)
	Rankings(ctx context.Context, industry string, limit, offset, year, month int) (types.RankingsPage, error)
	Overview(ctx context.Context, industry string) (types.Overview, error)
	TopCompanies(ctx context.Context, industry string) (types.TopCompanies, error)
	SearchCompanies(ctx context.Context, query string, limit, year, month int) (types.SearchResult, error)
	Periods(ctx context.Context, industry string) (types.PeriodList, error)
	Discovery(ctx context.Context) (types.Discovery, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	industriesHandler *IndustriesHandler
	companyHandler    *CompanyHandler
	rankingsHandler   *RankingsHandler
	periodsHandler    *PeriodsHandler

	apiKey       string
	rateRequests int
	rateWindow   time.Duration
}

// Option configures the server.
type Option func(*Server)

// WithAPIKey sets the bearer token protected routes require. An empty key
// leaves the protected routes unreachable (requests get 401).
func WithAPIKey(key string) Option {
	return func(s *Server) {
		s.apiKey = key
	}
}

// WithRateLimit sets the per-IP request budget. A non-positive request count
// disables rate limiting.
func WithRateLimit(requests int, window time.Duration) Option {
	return func(s *Server) {
		s.rateRequests = requests
		s.rateWindow = window
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		industriesHandler: NewIndustriesHandler(deps),
		companyHandler:    NewCompanyHandler(deps),
		rankingsHandler:   NewRankingsHandler(deps),
		periodsHandler:    NewPeriodsHandler(deps),
		rateWindow:        time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the router: open endpoints first (health, metrics), then the
// bearer-protected query surface. Documentation routes can be mounted on the
// returned router afterwards.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestID)
	if s.rateRequests > 0 {
		r.Use(httprate.LimitByIP(s.rateRequests, s.rateWindow))
	}

	r.Get("/", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)

	r.Group(func(pr chi.Router) {
		pr.Use(BearerAuth(s.apiKey))

		pr.Get("/industries", MetricsMiddleware(s.industriesHandler.HandleList, "industries"))
		pr.Get("/industry/{industry}/companies", MetricsMiddleware(s.industriesHandler.HandleCompanies, "industry_companies"))
		pr.Get("/company", MetricsMiddleware(s.companyHandler.HandleLookup, "company"))
		pr.Post("/companies", MetricsMiddleware(s.companyHandler.HandleBatch, "companies_batch"))
		pr.Get("/search/companies", MetricsMiddleware(s.companyHandler.HandleSearch, "search_companies"))
		pr.Get("/industry/{industry}/rank/{rank}", MetricsMiddleware(s.rankingsHandler.HandleRank, "rank"))
		pr.Get("/industry/{industry}/rankings", MetricsMiddleware(s.rankingsHandler.HandleRankings, "rankings"))
		pr.Get("/industry/{industry}/overview", MetricsMiddleware(s.rankingsHandler.HandleOverview, "overview"))
		pr.Get("/industry/{industry}/top-companies", MetricsMiddleware(s.rankingsHandler.HandleTopCompanies, "top_companies"))
		pr.Get("/periods", MetricsMiddleware(s.periodsHandler.HandlePeriods, "periods"))
		pr.Get("/discover", MetricsMiddleware(s.periodsHandler.HandleDiscover, "discover"))
		pr.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	})

	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusForError translates typed query failures into an HTTP status and a
// machine-readable code. Unknown errors stay opaque 500s.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidParameter):
		return http.StatusBadRequest, "invalid_parameter"
	case errors.Is(err, service.ErrIndustryNotFound):
		return http.StatusNotFound, "industry_not_found"
	case errors.Is(err, service.ErrCompanyNotFound):
		return http.StatusNotFound, "company_not_found"
	case errors.Is(err, service.ErrPeriodNotFound):
		return http.StatusNotFound, "period_not_found"
	case errors.Is(err, service.ErrRankOutOfRange):
		return http.StatusNotFound, "rank_out_of_range"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// respondError writes the mapped failure. Internal errors do not leak their
// message to the client.
func respondError(w http.ResponseWriter, err error) {
	status, code := statusForError(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, err)
}

// queryInt reads an optional integer query parameter. Absent means zero;
// anything non-numeric is a bad request.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ErrBadRequest
	}
	return n, nil
}

// queryPeriod reads the optional year and month parameters shared by most
// query endpoints.
func queryPeriod(r *http.Request) (int, int, error) {
	year, err := queryInt(r, "year")
	if err != nil {
		return 0, 0, err
	}
	month, err := queryInt(r, "month")
	if err != nil {
		return 0, 0, err
	}
	if month > 12 {
		return 0, 0, ErrBadRequest
	}
	return year, month, nil
}
