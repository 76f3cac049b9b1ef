// Package repository implements the read-only data source backing the query
// service: the dataset wire format, an indexed in-memory store, and a loader
// that refreshes the whole dataset with an atomic swap.
package repository

import (
	"context"
	"sync/atomic"

	"github.com/openbi/rankindex/internal/domain/model"
)

// Store provides read access to the active ranking dataset. Implementations
// must be safe for concurrent readers; the Loader publishes whole datasets
// atomically, so a request always observes one consistent view.
type Store interface {
	// ListIndustries returns industry identifiers in dataset order.
	ListIndustries(ctx context.Context) []string

	// HasIndustry reports whether the industry exists. Matching is
	// case-insensitive; identifiers are canonicalized to upper case.
	HasIndustry(ctx context.Context, industry string) bool

	// ListPeriods returns the distinct periods with data for the industry,
	// newest first. The bool is false when the industry is unknown.
	ListPeriods(ctx context.Context, industry string) ([]model.Period, bool)

	// ListAllPeriods returns the distinct periods across the whole dataset,
	// newest first.
	ListAllPeriods(ctx context.Context) []model.Period

	// GetSnapshot returns the ranking snapshot for (industry, period).
	GetSnapshot(ctx context.Context, industry string, p model.Period) (model.Snapshot, bool)

	// FindCompany returns every observation of a company across industries
	// and periods. Matching is case-insensitive on the trimmed name.
	FindCompany(ctx context.Context, name string) []model.CompanyRecord

	// Overview returns the dataset's pre-computed overview for the industry,
	// when the dataset carries one.
	Overview(ctx context.Context, industry string) (model.Overview, bool)

	// Counts returns dataset cardinalities: industries, snapshots, entries.
	Counts(ctx context.Context) (industries, snapshots, entries int)
}

// Provider is a Store whose backing dataset can be swapped atomically.
// Readers keep whatever dataset they started with; writers (the Loader)
// publish a fully built replacement in one pointer store.
type Provider struct {
	current atomic.Pointer[memStore]
}

// NewProvider creates a Provider with an empty dataset.
func NewProvider() *Provider {
	p := &Provider{}
	p.current.Store(newMemStore(&document{}))
	return p
}

// Swap publishes a new dataset. Safe to call concurrently with readers.
func (p *Provider) Swap(s *memStore) {
	p.current.Store(s)
}

func (p *Provider) ListIndustries(ctx context.Context) []string {
	return p.current.Load().ListIndustries(ctx)
}

func (p *Provider) HasIndustry(ctx context.Context, industry string) bool {
	return p.current.Load().HasIndustry(ctx, industry)
}

func (p *Provider) ListPeriods(ctx context.Context, industry string) ([]model.Period, bool) {
	return p.current.Load().ListPeriods(ctx, industry)
}

func (p *Provider) ListAllPeriods(ctx context.Context) []model.Period {
	return p.current.Load().ListAllPeriods(ctx)
}

func (p *Provider) GetSnapshot(ctx context.Context, industry string, per model.Period) (model.Snapshot, bool) {
	return p.current.Load().GetSnapshot(ctx, industry, per)
}

func (p *Provider) FindCompany(ctx context.Context, name string) []model.CompanyRecord {
	return p.current.Load().FindCompany(ctx, name)
}

func (p *Provider) Overview(ctx context.Context, industry string) (model.Overview, bool) {
	return p.current.Load().Overview(ctx, industry)
}

func (p *Provider) Counts(ctx context.Context) (int, int, int) {
	return p.current.Load().Counts(ctx)
}
