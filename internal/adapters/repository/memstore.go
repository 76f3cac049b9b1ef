package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/openbi/rankindex/internal/domain/model"
)

// memStore is one immutable, fully indexed dataset. It is built once by the
// Loader and never mutated afterwards, so all reads are lock-free.
type memStore struct {
	industries        []string
	industrySet       map[string]struct{}
	snapshots         map[string]map[model.Period]*model.Snapshot
	periodsByIndustry map[string][]model.Period
	allPeriods        []model.Period
	byCompany         map[string][]model.CompanyRecord
	overviews         map[string]model.Overview

	snapshotCount int
	entryCount    int
}

// canonicalIndustry normalizes industry identifiers the way the upstream
// index keys them.
func canonicalIndustry(industry string) string {
	return strings.ToUpper(strings.TrimSpace(industry))
}

// companyKey normalizes company names for case-insensitive lookups.
func companyKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// newMemStore indexes a decoded dataset document. Rows missing a parseable
// year or ranking are skipped; ranking rows are sorted by rank ascending with
// the company name as a deterministic tie-break.
func newMemStore(doc *document) *memStore {
	s := &memStore{
		industrySet:       make(map[string]struct{}),
		snapshots:         make(map[string]map[model.Period]*model.Snapshot),
		periodsByIndustry: make(map[string][]model.Period),
		byCompany:         make(map[string][]model.CompanyRecord),
		overviews:         make(map[string]model.Overview),
	}

	addIndustry := func(name string) {
		if name == "" {
			return
		}
		if _, seen := s.industrySet[name]; seen {
			return
		}
		s.industrySet[name] = struct{}{}
		s.industries = append(s.industries, name)
	}

	for _, raw := range doc.Industries {
		addIndustry(canonicalIndustry(raw))
	}

	// Score rows grouped into per-period snapshots.
	scoreKeys := make([]string, 0, len(doc.Scores))
	for k := range doc.Scores {
		scoreKeys = append(scoreKeys, k)
	}
	sort.Strings(scoreKeys)

	allPeriods := make(map[model.Period]struct{})
	for _, rawKey := range scoreKeys {
		industry := canonicalIndustry(rawKey)
		addIndustry(industry)

		byPeriod := s.snapshots[industry]
		if byPeriod == nil {
			byPeriod = make(map[model.Period]*model.Snapshot)
			s.snapshots[industry] = byPeriod
		}

		for _, row := range doc.Scores[rawKey] {
			if !row.Year.ok || row.Company == "" || !row.Ranking.ok {
				continue
			}
			p := model.Period{Year: row.Year.value, Month: row.Period.value}
			snap := byPeriod[p]
			if snap == nil {
				snap = &model.Snapshot{Industry: industry, Period: p}
				byPeriod[p] = snap
			}
			snap.Entries = append(snap.Entries, model.RankedEntry{
				Rank:    row.Ranking.value,
				Company: strings.TrimSpace(row.Company),
				Score:   row.Score,
			})
		}

		periods := make([]model.Period, 0, len(byPeriod))
		for p, snap := range byPeriod {
			sort.Slice(snap.Entries, func(i, j int) bool {
				if snap.Entries[i].Rank != snap.Entries[j].Rank {
					return snap.Entries[i].Rank < snap.Entries[j].Rank
				}
				return snap.Entries[i].Company < snap.Entries[j].Company
			})
			periods = append(periods, p)
			allPeriods[p] = struct{}{}

			s.snapshotCount++
			s.entryCount += len(snap.Entries)
			for _, e := range snap.Entries {
				key := companyKey(e.Company)
				s.byCompany[key] = append(s.byCompany[key], model.CompanyRecord{
					Industry: industry,
					Period:   p,
					Entry:    e,
				})
			}
		}
		model.SortPeriodsDesc(periods)
		s.periodsByIndustry[industry] = periods
	}

	s.allPeriods = make([]model.Period, 0, len(allPeriods))
	for p := range allPeriods {
		s.allPeriods = append(s.allPeriods, p)
	}
	model.SortPeriodsDesc(s.allPeriods)

	for _, ov := range doc.Overviews {
		industry := canonicalIndustry(ov.Name)
		if industry == "" {
			continue
		}
		addIndustry(industry)
		top := make([]model.RankedEntry, 0, len(ov.TopCompanies))
		for _, tc := range ov.TopCompanies {
			top = append(top, model.RankedEntry{
				Rank:    tc.Ranking.value,
				Company: strings.TrimSpace(tc.Company),
				Score:   tc.Score,
			})
		}
		latest := model.Period{}
		if ps := s.periodsByIndustry[industry]; len(ps) > 0 {
			latest = ps[0]
		}
		s.overviews[industry] = model.Overview{
			Industry:     industry,
			Period:       latest,
			CompanyCount: ov.CompanyCount,
			AverageScore: ov.AverageScore,
			MinScore:     ov.MinScore,
			MaxScore:     ov.MaxScore,
			TopCompanies: top,
		}
	}

	return s
}

func (s *memStore) ListIndustries(_ context.Context) []string {
	out := make([]string, len(s.industries))
	copy(out, s.industries)
	return out
}

func (s *memStore) HasIndustry(_ context.Context, industry string) bool {
	_, ok := s.industrySet[canonicalIndustry(industry)]
	return ok
}

func (s *memStore) ListPeriods(_ context.Context, industry string) ([]model.Period, bool) {
	key := canonicalIndustry(industry)
	if _, ok := s.industrySet[key]; !ok {
		return nil, false
	}
	periods := s.periodsByIndustry[key]
	out := make([]model.Period, len(periods))
	copy(out, periods)
	return out, true
}

func (s *memStore) ListAllPeriods(_ context.Context) []model.Period {
	out := make([]model.Period, len(s.allPeriods))
	copy(out, s.allPeriods)
	return out
}

func (s *memStore) GetSnapshot(_ context.Context, industry string, p model.Period) (model.Snapshot, bool) {
	byPeriod := s.snapshots[canonicalIndustry(industry)]
	if byPeriod == nil {
		return model.Snapshot{}, false
	}
	snap := byPeriod[p]
	if snap == nil {
		return model.Snapshot{}, false
	}
	return *snap, true
}

func (s *memStore) FindCompany(_ context.Context, name string) []model.CompanyRecord {
	records := s.byCompany[companyKey(name)]
	out := make([]model.CompanyRecord, len(records))
	copy(out, records)
	return out
}

func (s *memStore) Overview(_ context.Context, industry string) (model.Overview, bool) {
	ov, ok := s.overviews[canonicalIndustry(industry)]
	return ov, ok
}

func (s *memStore) Counts(_ context.Context) (int, int, int) {
	return len(s.industries), s.snapshotCount, s.entryCount
}
