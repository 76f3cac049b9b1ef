// Package service implements the query operations the HTTP API exposes:
// period resolution, ranking lookups, pagination, batch and free-text company
// resolution over the read-only data source.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/openbi/rankindex/internal/adapters/repository"
	"github.com/openbi/rankindex/internal/domain/model"
	"github.com/openbi/rankindex/internal/domain/period"
	"github.com/openbi/rankindex/internal/domain/types"
	"github.com/openbi/rankindex/pkg/logger"
)

// Pagination policy constants.
const (
	DefaultPageLimit  = 25
	MaxPageLimit      = 100
	TopCompaniesLimit = 10
)

// Service answers read-only queries over the active dataset. It is stateless
// per request: the only shared state is the store reference, and the store
// swaps whole datasets atomically.
type Service struct {
	store        repository.Store
	log          logger.Logger
	defaultLimit int
	maxLimit     int
	topLimit     int
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the data source. Required.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithDefaultLimit sets the page size used when the caller omits a limit.
func WithDefaultLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.defaultLimit = limit
		}
	}
}

// WithMaxLimit caps the page size any caller can request.
func WithMaxLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxLimit = limit
		}
	}
}

// WithTopLimit sets the size of the top-companies head.
func WithTopLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.topLimit = limit
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		defaultLimit: DefaultPageLimit,
		maxLimit:     MaxPageLimit,
		topLimit:     TopCompaniesLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	return s
}

// Industries returns all industry identifiers in dataset order.
func (s *Service) Industries(ctx context.Context) []string {
	return s.store.ListIndustries(ctx)
}

// resolveIndustryPeriod resolves (year, month) against one industry's
// available snapshots. Zero year/month mean "not given".
func (s *Service) resolveIndustryPeriod(ctx context.Context, industry string, year, month int) (model.Period, error) {
	periods, ok := s.store.ListPeriods(ctx, industry)
	if !ok {
		return model.Period{}, fmt.Errorf("%q: %w", industry, ErrIndustryNotFound)
	}
	p, err := period.Resolve(periods, year, month)
	if err != nil {
		return model.Period{}, fmt.Errorf("industry %q year=%d month=%d: %w", industry, year, month, ErrPeriodNotFound)
	}
	return p, nil
}

// IndustryCompanies returns the ranked company names of one snapshot. The
// period falls back to the industry's latest when not given.
func (s *Service) IndustryCompanies(ctx context.Context, industry string, year, month int) (types.CompanyList, error) {
	p, err := s.resolveIndustryPeriod(ctx, industry, year, month)
	if err != nil {
		return types.CompanyList{}, err
	}
	snap, ok := s.store.GetSnapshot(ctx, industry, p)
	if !ok {
		return types.CompanyList{}, fmt.Errorf("industry %q: %w", industry, ErrPeriodNotFound)
	}
	names := make([]string, len(snap.Entries))
	for i, e := range snap.Entries {
		names[i] = e.Company
	}
	return types.CompanyList{
		Industry:  snap.Industry,
		Period:    types.PeriodOf(p),
		Companies: names,
	}, nil
}

// Company resolves a company name case-insensitively across all industries.
// Every industry match is returned with its own resolved period; the service
// never picks one of several same-named companies.
func (s *Service) Company(ctx context.Context, name string, year, month int) (types.CompanyLookup, error) {
	if strings.TrimSpace(name) == "" {
		return types.CompanyLookup{}, fmt.Errorf("company name must not be empty: %w", ErrInvalidParameter)
	}
	matches, err := s.lookupCompany(ctx, name, "", year, month)
	if err != nil {
		return types.CompanyLookup{}, err
	}
	return types.CompanyLookup{
		Company:   strings.TrimSpace(name),
		Ambiguous: len(matches) > 1,
		Matches:   matches,
	}, nil
}

// lookupCompany is the shared resolution behind Company and CompaniesBatch.
// An empty industry means "search everywhere". The result is sorted by
// industry for determinism.
func (s *Service) lookupCompany(ctx context.Context, name, industry string, year, month int) ([]types.CompanyEntry, error) {
	records := s.store.FindCompany(ctx, name)
	if industry != "" {
		canonical := strings.ToUpper(strings.TrimSpace(industry))
		filtered := records[:0]
		for _, r := range records {
			if r.Industry == canonical {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%q: %w", name, ErrCompanyNotFound)
	}

	// Group observations by industry, then resolve the period per group.
	byIndustry := make(map[string][]model.CompanyRecord)
	industries := make([]string, 0)
	for _, r := range records {
		if _, seen := byIndustry[r.Industry]; !seen {
			industries = append(industries, r.Industry)
		}
		byIndustry[r.Industry] = append(byIndustry[r.Industry], r)
	}
	sort.Strings(industries)

	matches := make([]types.CompanyEntry, 0, len(industries))
	for _, ind := range industries {
		group := byIndustry[ind]
		available := make([]model.Period, len(group))
		for i, r := range group {
			available[i] = r.Period
		}
		p, err := period.Resolve(available, year, month)
		if err != nil {
			continue
		}
		for _, r := range group {
			if r.Period == p {
				matches = append(matches, types.NewCompanyEntry(r.Industry, r.Period, r.Entry))
				break
			}
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("company %q year=%d month=%d: %w", name, year, month, ErrPeriodNotFound)
	}
	return matches, nil
}

// CompaniesBatch resolves each name independently. A name that cannot be
// found occupies its result slot with Found=false; the batch itself only
// fails when the scoping industry is unknown.
func (s *Service) CompaniesBatch(ctx context.Context, names []string, industry string, year, month int) (types.BatchResult, error) {
	result := types.BatchResult{Results: make([]types.BatchEntry, 0, len(names))}
	if industry != "" {
		if !s.store.HasIndustry(ctx, industry) {
			return types.BatchResult{}, fmt.Errorf("%q: %w", industry, ErrIndustryNotFound)
		}
		result.Industry = strings.ToUpper(strings.TrimSpace(industry))
	}

	for _, name := range names {
		matches, err := s.lookupCompany(ctx, name, industry, year, month)
		if err != nil {
			result.Results = append(result.Results, types.BatchEntry{Name: name, Found: false})
			continue
		}
		result.Results = append(result.Results, types.BatchEntry{Name: name, Found: true, Matches: matches})
	}
	return result, nil
}

// RankedCompany returns the company holding one rank position in a snapshot.
func (s *Service) RankedCompany(ctx context.Context, industry string, rank, year, month int) (types.CompanyEntry, error) {
	if rank < 1 {
		return types.CompanyEntry{}, fmt.Errorf("rank %d: %w", rank, ErrRankOutOfRange)
	}
	p, err := s.resolveIndustryPeriod(ctx, industry, year, month)
	if err != nil {
		return types.CompanyEntry{}, err
	}
	snap, ok := s.store.GetSnapshot(ctx, industry, p)
	if !ok {
		return types.CompanyEntry{}, fmt.Errorf("industry %q: %w", industry, ErrPeriodNotFound)
	}
	if rank > len(snap.Entries) {
		return types.CompanyEntry{}, fmt.Errorf("rank %d of %d: %w", rank, len(snap.Entries), ErrRankOutOfRange)
	}
	return types.NewCompanyEntry(snap.Industry, p, snap.Entries[rank-1]), nil
}

// Rankings returns a contiguous page of a snapshot's ordered ranking. The
// offset is clamped to the snapshot size; the limit defaults and caps per the
// platform pagination policy.
func (s *Service) Rankings(ctx context.Context, industry string, limit, offset, year, month int) (types.RankingsPage, error) {
	limit = s.clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	p, err := s.resolveIndustryPeriod(ctx, industry, year, month)
	if err != nil {
		return types.RankingsPage{}, err
	}
	snap, ok := s.store.GetSnapshot(ctx, industry, p)
	if !ok {
		return types.RankingsPage{}, fmt.Errorf("industry %q: %w", industry, ErrPeriodNotFound)
	}

	total := len(snap.Entries)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	results := make([]types.CompanyEntry, 0, end-offset)
	for _, e := range snap.Entries[offset:end] {
		results = append(results, types.NewCompanyEntry(snap.Industry, p, e))
	}
	return types.RankingsPage{
		Industry: snap.Industry,
		Period:   types.PeriodOf(p),
		Total:    total,
		Limit:    limit,
		Offset:   offset,
		Results:  results,
	}, nil
}

// Overview returns the industry summary: the dataset's pre-computed one when
// present, otherwise aggregates derived from the latest snapshot.
func (s *Service) Overview(ctx context.Context, industry string) (types.Overview, error) {
	if !s.store.HasIndustry(ctx, industry) {
		return types.Overview{}, fmt.Errorf("%q: %w", industry, ErrIndustryNotFound)
	}
	if ov, ok := s.store.Overview(ctx, industry); ok {
		return types.NewOverview(ov), nil
	}

	p, err := s.resolveIndustryPeriod(ctx, industry, 0, 0)
	if err != nil {
		return types.Overview{}, err
	}
	snap, _ := s.store.GetSnapshot(ctx, industry, p)
	return types.NewOverview(deriveOverview(snap, s.topLimit)), nil
}

// deriveOverview computes aggregate stats over one snapshot.
func deriveOverview(snap model.Snapshot, topLimit int) model.Overview {
	ov := model.Overview{
		Industry:     snap.Industry,
		Period:       snap.Period,
		CompanyCount: len(snap.Entries),
	}
	if len(snap.Entries) == 0 {
		return ov
	}
	sum := 0.0
	ov.MinScore = snap.Entries[0].Score
	ov.MaxScore = snap.Entries[0].Score
	for _, e := range snap.Entries {
		sum += e.Score
		if e.Score < ov.MinScore {
			ov.MinScore = e.Score
		}
		if e.Score > ov.MaxScore {
			ov.MaxScore = e.Score
		}
	}
	ov.AverageScore = sum / float64(len(snap.Entries))
	head := topLimit
	if head > len(snap.Entries) {
		head = len(snap.Entries)
	}
	ov.TopCompanies = snap.Entries[:head]
	return ov
}

// TopCompanies returns the fixed-size head of the latest ranking snapshot.
func (s *Service) TopCompanies(ctx context.Context, industry string) (types.TopCompanies, error) {
	p, err := s.resolveIndustryPeriod(ctx, industry, 0, 0)
	if err != nil {
		return types.TopCompanies{}, err
	}
	snap, ok := s.store.GetSnapshot(ctx, industry, p)
	if !ok {
		return types.TopCompanies{}, fmt.Errorf("industry %q: %w", industry, ErrPeriodNotFound)
	}
	head := s.topLimit
	if head > len(snap.Entries) {
		head = len(snap.Entries)
	}
	results := make([]types.CompanyEntry, 0, head)
	for _, e := range snap.Entries[:head] {
		results = append(results, types.NewCompanyEntry(snap.Industry, p, e))
	}
	return types.TopCompanies{
		Industry: snap.Industry,
		Period:   types.PeriodOf(p),
		Results:  results,
	}, nil
}

// searchHit pairs a match with its quality: exact beats prefix beats
// substring, then names sort alphabetically.
type searchHit struct {
	quality int
	entry   types.CompanyEntry
}

// SearchCompanies matches company names case-insensitively across all
// industries, scoped per industry to the resolved period (the latest when
// none is given).
func (s *Service) SearchCompanies(ctx context.Context, query string, limit, year, month int) (types.SearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return types.SearchResult{}, fmt.Errorf("search query must not be empty: %w", ErrInvalidParameter)
	}
	limit = s.clampLimit(limit)

	hits := make([]searchHit, 0)
	for _, industry := range s.store.ListIndustries(ctx) {
		periods, ok := s.store.ListPeriods(ctx, industry)
		if !ok || len(periods) == 0 {
			continue
		}
		p, err := period.Resolve(periods, year, month)
		if err != nil {
			continue
		}
		snap, ok := s.store.GetSnapshot(ctx, industry, p)
		if !ok {
			continue
		}
		for _, e := range snap.Entries {
			name := strings.ToLower(e.Company)
			var quality int
			switch {
			case name == needle:
				quality = 0
			case strings.HasPrefix(name, needle):
				quality = 1
			case strings.Contains(name, needle):
				quality = 2
			default:
				continue
			}
			hits = append(hits, searchHit{
				quality: quality,
				entry:   types.NewCompanyEntry(industry, p, e),
			})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].quality != hits[j].quality {
			return hits[i].quality < hits[j].quality
		}
		a, b := strings.ToLower(hits[i].entry.Company), strings.ToLower(hits[j].entry.Company)
		if a != b {
			return a < b
		}
		return hits[i].entry.Industry < hits[j].entry.Industry
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]types.CompanyEntry, len(hits))
	for i, h := range hits {
		results[i] = h.entry
	}
	return types.SearchResult{Query: strings.TrimSpace(query), Limit: limit, Results: results}, nil
}

// Periods returns the distinct available periods, newest first, optionally
// scoped to one industry.
func (s *Service) Periods(ctx context.Context, industry string) (types.PeriodList, error) {
	if industry == "" {
		return types.PeriodList{Periods: types.PeriodsOf(s.store.ListAllPeriods(ctx))}, nil
	}
	periods, ok := s.store.ListPeriods(ctx, industry)
	if !ok {
		return types.PeriodList{}, fmt.Errorf("%q: %w", industry, ErrIndustryNotFound)
	}
	return types.PeriodList{
		Industry: strings.ToUpper(strings.TrimSpace(industry)),
		Periods:  types.PeriodsOf(periods),
	}, nil
}

// Discovery assembles live examples from the current dataset so clients can
// introspect the API shapes.
func (s *Service) Discovery(ctx context.Context) (types.Discovery, error) {
	industries := s.Industries(ctx)
	d := types.Discovery{
		Industries: industries,
		Examples: types.DiscoveryExamples{
			PeriodsByIndustry: make(map[string][]types.Period, len(industries)),
		},
	}

	all, err := s.Periods(ctx, "")
	if err == nil {
		d.Examples.Periods = all.Periods
	}
	for _, industry := range industries {
		if pl, err := s.Periods(ctx, industry); err == nil {
			d.Examples.PeriodsByIndustry[industry] = pl.Periods
		}
	}

	if len(industries) == 0 {
		return d, nil
	}
	representative := industries[0]
	if ov, err := s.Overview(ctx, representative); err == nil {
		d.Examples.Overview = &ov
	}
	if top, err := s.TopCompanies(ctx, representative); err == nil {
		d.Examples.TopCompanies = top.Results
		if len(top.Results) > 0 {
			example := top.Results[0]
			d.Examples.CompanyRanking = &example
		}
	}
	return d, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	industries, snapshots, entries := s.store.Counts(context.Background())
	return map[string]interface{}{
		"industries":    industries,
		"snapshots":     snapshots,
		"entries":       entries,
		"default_limit": s.defaultLimit,
		"max_limit":     s.maxLimit,
		"top_limit":     s.topLimit,
	}
}

// clampLimit applies the default-and-cap pagination policy.
func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}
