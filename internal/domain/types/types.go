// Package types contains the documented response shapes returned by the API
// and the rules that normalize internal records into them.
package types

import (
	"math"

	"github.com/openbi/rankindex/internal/domain/model"
)

// Period echoes the snapshot a query actually used, not merely the one the
// caller requested, so clients can detect a latest-period fallback.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"`
}

// PeriodOf converts the internal period representation.
func PeriodOf(p model.Period) Period {
	return Period{Year: p.Year, Month: p.Month}
}

// PeriodsOf converts a period slice, preserving order.
func PeriodsOf(ps []model.Period) []Period {
	out := make([]Period, len(ps))
	for i, p := range ps {
		out[i] = PeriodOf(p)
	}
	return out
}

// RoundScore renders scores with two decimal places. Ranks stay integers and
// scores stay floats regardless of what the dataset provided.
func RoundScore(s float64) float64 {
	return math.Round(s*100) / 100
}

// CompanyEntry is one ranked company observation.
type CompanyEntry struct {
	Company  string  `json:"company"`
	Industry string  `json:"industry"`
	Rank     int     `json:"rank"`
	Score    float64 `json:"score"`
	Period   Period  `json:"period"`
}

// NewCompanyEntry shapes a raw ranking row into the response form.
func NewCompanyEntry(industry string, p model.Period, e model.RankedEntry) CompanyEntry {
	return CompanyEntry{
		Company:  e.Company,
		Industry: industry,
		Rank:     e.Rank,
		Score:    RoundScore(e.Score),
		Period:   PeriodOf(p),
	}
}

// CompanyList is the ranked company names of one industry snapshot.
type CompanyList struct {
	Industry  string   `json:"industry"`
	Period    Period   `json:"period"`
	Companies []string `json:"companies"`
}

// CompanyLookup is the result of a single-company query. When the same name
// exists in several industries every match is returned and Ambiguous is set;
// the service never guesses.
type CompanyLookup struct {
	Company   string         `json:"company"`
	Ambiguous bool           `json:"ambiguous"`
	Matches   []CompanyEntry `json:"matches"`
}

// BatchEntry is the per-name slot of a batch lookup. A name that cannot be
// resolved still occupies its slot with Found=false.
type BatchEntry struct {
	Name    string         `json:"name"`
	Found   bool           `json:"found"`
	Matches []CompanyEntry `json:"matches,omitempty"`
}

// BatchResult is the outcome of a batch lookup; one entry per requested name.
type BatchResult struct {
	Industry string       `json:"industry,omitempty"`
	Results  []BatchEntry `json:"results"`
}

// RankingsPage is a contiguous slice of one industry's ranking, with enough
// bookkeeping for callers to page further.
type RankingsPage struct {
	Industry string         `json:"industry"`
	Period   Period         `json:"period"`
	Total    int            `json:"total"`
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
	Results  []CompanyEntry `json:"results"`
}

// Overview summarizes one industry.
type Overview struct {
	Industry     string         `json:"industry"`
	Period       Period         `json:"period"`
	CompanyCount int            `json:"company_count"`
	AverageScore float64        `json:"average_score"`
	MinScore     float64        `json:"min_score"`
	MaxScore     float64        `json:"max_score"`
	TopCompanies []CompanyEntry `json:"top_companies"`
}

// NewOverview shapes an internal overview into the response form.
func NewOverview(ov model.Overview) Overview {
	top := make([]CompanyEntry, len(ov.TopCompanies))
	for i, e := range ov.TopCompanies {
		top[i] = NewCompanyEntry(ov.Industry, ov.Period, e)
	}
	return Overview{
		Industry:     ov.Industry,
		Period:       PeriodOf(ov.Period),
		CompanyCount: ov.CompanyCount,
		AverageScore: RoundScore(ov.AverageScore),
		MinScore:     RoundScore(ov.MinScore),
		MaxScore:     RoundScore(ov.MaxScore),
		TopCompanies: top,
	}
}

// TopCompanies is the fixed-size head of an industry's latest ranking.
type TopCompanies struct {
	Industry string         `json:"industry"`
	Period   Period         `json:"period"`
	Results  []CompanyEntry `json:"top_companies"`
}

// SearchResult is the outcome of a free-text company search.
type SearchResult struct {
	Query   string         `json:"query"`
	Limit   int            `json:"limit"`
	Results []CompanyEntry `json:"results"`
}

// PeriodList is the distinct set of available periods, newest first.
type PeriodList struct {
	Industry string   `json:"industry,omitempty"`
	Periods  []Period `json:"periods"`
}

// Discovery describes the live dataset for clients that introspect the API.
type Discovery struct {
	Industries []string          `json:"industries"`
	Examples   DiscoveryExamples `json:"examples"`
}

// DiscoveryExamples carries live example payloads built from current data.
type DiscoveryExamples struct {
	Overview          *Overview           `json:"overview,omitempty"`
	CompanyRanking    *CompanyEntry       `json:"company_ranking,omitempty"`
	TopCompanies      []CompanyEntry      `json:"top_companies"`
	Periods           []Period            `json:"periods"`
	PeriodsByIndustry map[string][]Period `json:"periods_by_industry"`
}
