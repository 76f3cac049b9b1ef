// Package model contains domain models passed between layers.
package model

import "sort"

// Period identifies a ranking snapshot by (year, month). Month 0 means the
// snapshot carries no month (annual data); it sorts before any real month of
// the same year.
type Period struct {
	Year  int
	Month int
}

// IsZero reports whether the period is entirely unset.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Compare orders periods chronologically: negative when p is older than o,
// zero when equal, positive when newer.
func (p Period) Compare(o Period) int {
	if p.Year != o.Year {
		return p.Year - o.Year
	}
	return p.Month - o.Month
}

// Before reports whether p is chronologically older than o.
func (p Period) Before(o Period) bool {
	return p.Compare(o) < 0
}

// RankedEntry is one row of a ranking snapshot.
type RankedEntry struct {
	Rank    int
	Company string
	Score   float64
}

// Snapshot is the ordered ranking of one industry for one period.
// Entries are sorted by rank ascending; ranks are unique and 1-based.
type Snapshot struct {
	Industry string
	Period   Period
	Entries  []RankedEntry
}

// CompanyRecord is a single company observation carrying enough context to
// stand alone in cross-industry lookups.
type CompanyRecord struct {
	Industry string
	Period   Period
	Entry    RankedEntry
}

// Overview aggregates an industry's ranking snapshot. Either pre-computed by
// the data source or derived from the latest snapshot.
type Overview struct {
	Industry     string
	Period       Period
	CompanyCount int
	AverageScore float64
	MinScore     float64
	MaxScore     float64
	TopCompanies []RankedEntry
}

// SortPeriodsDesc sorts periods in place, newest first.
func SortPeriodsDesc(ps []Period) {
	sort.Slice(ps, func(i, j int) bool {
		return ps[j].Before(ps[i])
	})
}
