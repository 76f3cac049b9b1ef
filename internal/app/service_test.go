package service_test

import (
	"context"
	"os"
	"reflect"
	"strings"
	"testing"

	service "github.com/openbi/rankindex/internal/app"
	"github.com/openbi/rankindex/internal/domain/model"
	"github.com/openbi/rankindex/internal/domain/types"
	"github.com/openbi/rankindex/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// fakeStore is an in-memory repository.Store stand-in for service tests.
type fakeStore struct {
	industries []string
	snapshots  map[string]map[model.Period][]model.RankedEntry
	overviews  map[string]model.Overview
}

func (f *fakeStore) ListIndustries(context.Context) []string {
	return append([]string(nil), f.industries...)
}

func (f *fakeStore) HasIndustry(_ context.Context, industry string) bool {
	_, ok := f.snapshots[strings.ToUpper(strings.TrimSpace(industry))]
	return ok
}

func (f *fakeStore) ListPeriods(_ context.Context, industry string) ([]model.Period, bool) {
	byPeriod, ok := f.snapshots[strings.ToUpper(strings.TrimSpace(industry))]
	if !ok {
		return nil, false
	}
	periods := make([]model.Period, 0, len(byPeriod))
	for p := range byPeriod {
		periods = append(periods, p)
	}
	model.SortPeriodsDesc(periods)
	return periods, true
}

func (f *fakeStore) ListAllPeriods(ctx context.Context) []model.Period {
	seen := map[model.Period]struct{}{}
	var out []model.Period
	for industry := range f.snapshots {
		ps, _ := f.ListPeriods(ctx, industry)
		for _, p := range ps {
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				out = append(out, p)
			}
		}
	}
	model.SortPeriodsDesc(out)
	return out
}

func (f *fakeStore) GetSnapshot(_ context.Context, industry string, p model.Period) (model.Snapshot, bool) {
	key := strings.ToUpper(strings.TrimSpace(industry))
	entries, ok := f.snapshots[key][p]
	if !ok {
		return model.Snapshot{}, false
	}
	return model.Snapshot{Industry: key, Period: p, Entries: entries}, true
}

func (f *fakeStore) FindCompany(_ context.Context, name string) []model.CompanyRecord {
	needle := strings.ToLower(strings.TrimSpace(name))
	var out []model.CompanyRecord
	for industry, byPeriod := range f.snapshots {
		for p, entries := range byPeriod {
			for _, e := range entries {
				if strings.ToLower(e.Company) == needle {
					out = append(out, model.CompanyRecord{Industry: industry, Period: p, Entry: e})
				}
			}
		}
	}
	return out
}

func (f *fakeStore) Overview(_ context.Context, industry string) (model.Overview, bool) {
	ov, ok := f.overviews[strings.ToUpper(strings.TrimSpace(industry))]
	return ov, ok
}

func (f *fakeStore) Counts(context.Context) (int, int, int) {
	snapshots, entries := 0, 0
	for _, byPeriod := range f.snapshots {
		snapshots += len(byPeriod)
		for _, es := range byPeriod {
			entries += len(es)
		}
	}
	return len(f.industries), snapshots, entries
}

func newFixtureStore() *fakeStore {
	june := model.Period{Year: 2024, Month: 6}
	march := model.Period{Year: 2024, Month: 3}
	dec := model.Period{Year: 2023, Month: 12}

	return &fakeStore{
		industries: []string{"TECH", "BANKING"},
		snapshots: map[string]map[model.Period][]model.RankedEntry{
			"TECH": {
				june: {
					{Rank: 1, Company: "Acme", Score: 91.234},
					{Rank: 2, Company: "Borealis", Score: 85.5},
					{Rank: 3, Company: "Cobalt", Score: 80.25},
					{Rank: 4, Company: "Dyno", Score: 74.0},
					{Rank: 5, Company: "Ember", Score: 70.75},
				},
				dec: {
					{Rank: 1, Company: "Borealis", Score: 88.0},
					{Rank: 2, Company: "Acme", Score: 84.5},
				},
			},
			"BANKING": {
				march: {
					{Rank: 1, Company: "Acme", Score: 79.0},
					{Rank: 2, Company: "Vault", Score: 72.5},
				},
			},
		},
		overviews: map[string]model.Overview{},
	}
}

func newTestService() *service.Service {
	return service.New(service.WithStore(newFixtureStore()), service.WithTopLimit(3))
}

func TestIndustries(t *testing.T) {
	Convey("Given the fixture dataset", t, func() {
		svc := newTestService()
		So(svc.Industries(context.Background()), ShouldResemble, []string{"TECH", "BANKING"})
	})
}

func TestIndustryCompanies(t *testing.T) {
	Convey("Given the fixture dataset", t, func() {
		svc := newTestService()
		ctx := context.Background()

		Convey("When no period is given", func() {
			list, err := svc.IndustryCompanies(ctx, "tech", 0, 0)

			Convey("Then the latest period is resolved and echoed", func() {
				So(err, ShouldBeNil)
				So(list.Period, ShouldResemble, types.Period{Year: 2024, Month: 6})
				So(list.Companies, ShouldResemble, []string{"Acme", "Borealis", "Cobalt", "Dyno", "Ember"})
			})
		})

		Convey("When a specific period is given", func() {
			list, err := svc.IndustryCompanies(ctx, "TECH", 2023, 12)
			So(err, ShouldBeNil)
			So(list.Companies, ShouldResemble, []string{"Borealis", "Acme"})
		})

		Convey("When the industry is unknown", func() {
			_, err := svc.IndustryCompanies(ctx, "AIRLINES", 0, 0)
			So(err, ShouldWrap, service.ErrIndustryNotFound)
		})

		Convey("When the requested period does not exist", func() {
			_, err := svc.IndustryCompanies(ctx, "TECH", 2020, 1)
			So(err, ShouldWrap, service.ErrPeriodNotFound)
		})
	})
}

func TestCompanyLookup(t *testing.T) {
	Convey("Given the fixture dataset", t, func() {
		svc := newTestService()
		ctx := context.Background()

		Convey("When a name exists in several industries", func() {
			lookup, err := svc.Company(ctx, "acme", 0, 0)

			Convey("Then all matches return with industry tags, never a guess", func() {
				So(err, ShouldBeNil)
				So(lookup.Ambiguous, ShouldBeTrue)
				So(lookup.Matches, ShouldHaveLength, 2)
				So(lookup.Matches[0].Industry, ShouldEqual, "BANKING")
				So(lookup.Matches[0].Period, ShouldResemble, types.Period{Year: 2024, Month: 3})
				So(lookup.Matches[1].Industry, ShouldEqual, "TECH")
				So(lookup.Matches[1].Period, ShouldResemble, types.Period{Year: 2024, Month: 6})
			})
		})

		Convey("When a name exists in one industry", func() {
			lookup, err := svc.Company(ctx, "VAULT", 0, 0)
			So(err, ShouldBeNil)
			So(lookup.Ambiguous, ShouldBeFalse)
			So(lookup.Matches, ShouldHaveLength, 1)
			So(lookup.Matches[0].Score, ShouldEqual, 72.5)
		})

		Convey("When a year is given, per-match period resolution applies", func() {
			lookup, err := svc.Company(ctx, "acme", 2023, 0)
			So(err, ShouldBeNil)
			So(lookup.Matches, ShouldHaveLength, 1)
			So(lookup.Matches[0].Industry, ShouldEqual, "TECH")
			So(lookup.Matches[0].Period, ShouldResemble, types.Period{Year: 2023, Month: 12})
		})

		Convey("When the name is unknown anywhere", func() {
			_, err := svc.Company(ctx, "UnknownXYZ", 0, 0)
			So(err, ShouldWrap, service.ErrCompanyNotFound)
		})

		Convey("When the name exists but not in the requested period", func() {
			_, err := svc.Company(ctx, "Vault", 2020, 1)
			So(err, ShouldWrap, service.ErrPeriodNotFound)
		})

		Convey("When the name is empty", func() {
			_, err := svc.Company(ctx, "  ", 0, 0)
			So(err, ShouldWrap, service.ErrInvalidParameter)
		})
	})
}

func TestCompaniesBatch(t *testing.T) {
	Convey("Given the fixture dataset", t, func() {
		svc := newTestService()
		ctx := context.Background()

		Convey("When the batch mixes known and unknown names", func() {
			result, err := svc.CompaniesBatch(ctx, []string{"Acme", "UnknownXYZ"}, "", 0, 0)

			Convey("Then every requested name has a slot and the call succeeds", func() {
				So(err, ShouldBeNil)
				So(result.Results, ShouldHaveLength, 2)
				So(result.Results[0].Name, ShouldEqual, "Acme")
				So(result.Results[0].Found, ShouldBeTrue)
				So(result.Results[1].Name, ShouldEqual, "UnknownXYZ")
				So(result.Results[1].Found, ShouldBeFalse)
				So(result.Results[1].Matches, ShouldBeEmpty)
			})
		})

		Convey("When scoped to an industry", func() {
			result, err := svc.CompaniesBatch(ctx, []string{"Acme", "Vault"}, "banking", 0, 0)
			So(err, ShouldBeNil)
			So(result.Industry, ShouldEqual, "BANKING")
			So(result.Results[0].Matches, ShouldHaveLength, 1)
			So(result.Results[0].Matches[0].Industry, ShouldEqual, "BANKING")
		})

		Convey("When the scoping industry is unknown, the batch fails wholesale", func() {
			_, err := svc.CompaniesBatch(ctx, []string{"Acme"}, "AIRLINES", 0, 0)
			So(err, ShouldWrap, service.ErrIndustryNotFound)
		})

		Convey("When the batch is empty", func() {
			result, err := svc.CompaniesBatch(ctx, nil, "", 0, 0)
			So(err, ShouldBeNil)
			So(result.Results, ShouldBeEmpty)
		})
	})
}

func TestRankedCompany(t *testing.T) {
	Convey("Given the fixture dataset", t, func() {
		svc := newTestService()
		ctx := context.Background()

		Convey("Then rank 0 and rank N+1 are both out of range", func() {
			_, err := svc.RankedCompany(ctx, "TECH", 0, 0, 0)
			So(err, ShouldWrap, service.ErrRankOutOfRange)

			_, err = svc.RankedCompany(ctx, "TECH", 6, 0, 0)
			So(err, ShouldWrap, service.ErrRankOutOfRange)
		})

		Convey("Then every in-range rank matches the rankings page position", func() {
			page, err := svc.Rankings(ctx, "TECH", 100, 0, 0, 0)
			So(err, ShouldBeNil)
			for k := 1; k <= page.Total; k++ {
				entry, err := svc.RankedCompany(ctx, "TECH", k, 0, 0)
				So(err, ShouldBeNil)
				So(entry, ShouldResemble, page.Results[k-1])
			}
		})
	})
}

func TestRankingsPagination(t *testing.T) {
	Convey("Given the fixture dataset", t, func() {
		svc := newTestService()
		ctx := context.Background()

		Convey("When paging with limit 2", func() {
			var all []types.CompanyEntry
			offset := 0
			for {
				page, err := svc.Rankings(ctx, "TECH", 2, offset, 0, 0)
				So(err, ShouldBeNil)
				So(len(page.Results), ShouldBeLessThanOrEqualTo, 2)
				So(page.Total, ShouldEqual, 5)
				if len(page.Results) == 0 {
					break
				}
				all = append(all, page.Results...)
				offset += len(page.Results)
			}

			Convey("Then concatenated pages reconstruct the full ranking without duplicates", func() {
				So(all, ShouldHaveLength, 5)
				seen := map[int]bool{}
				for i, e := range all {
					So(e.Rank, ShouldEqual, i+1)
					So(seen[e.Rank], ShouldBeFalse)
					seen[e.Rank] = true
				}
			})
		})

		Convey("When the offset exceeds the snapshot size", func() {
			page, err := svc.Rankings(ctx, "TECH", 2, 99, 0, 0)
			So(err, ShouldBeNil)
			So(page.Results, ShouldBeEmpty)
			So(page.Offset, ShouldEqual, 5)
		})

		Convey("When the limit is omitted or oversized, the policy applies", func() {
			page, err := svc.Rankings(ctx, "TECH", 0, 0, 0, 0)
			So(err, ShouldBeNil)
			So(page.Limit, ShouldEqual, service.DefaultPageLimit)

			page, err = svc.Rankings(ctx, "TECH", 10_000, 0, 0, 0)
			So(err, ShouldBeNil)
			So(page.Limit, ShouldEqual, service.MaxPageLimit)
		})
	})
}

func TestOverview(t *testing.T) {
	Convey("Given the fixture dataset", t, func() {
		store := newFixtureStore()
		svc := service.New(service.WithStore(store), service.WithTopLimit(3))
		ctx := context.Background()

		Convey("When the dataset has no pre-computed overview", func() {
			ov, err := svc.Overview(ctx, "TECH")

			Convey("Then aggregates derive from the latest snapshot", func() {
				So(err, ShouldBeNil)
				So(ov.Period, ShouldResemble, types.Period{Year: 2024, Month: 6})
				So(ov.CompanyCount, ShouldEqual, 5)
				So(ov.MinScore, ShouldEqual, 70.75)
				So(ov.MaxScore, ShouldEqual, 91.23)
				So(ov.TopCompanies, ShouldHaveLength, 3)
			})
		})

		Convey("When the dataset pre-computes the overview", func() {
			store.overviews["TECH"] = model.Overview{
				Industry:     "TECH",
				Period:       model.Period{Year: 2024, Month: 6},
				CompanyCount: 42,
				AverageScore: 80,
				MinScore:     60,
				MaxScore:     95,
			}
			ov, err := svc.Overview(ctx, "TECH")
			So(err, ShouldBeNil)
			So(ov.CompanyCount, ShouldEqual, 42)
		})

		Convey("When the industry is unknown", func() {
			_, err := svc.Overview(ctx, "AIRLINES")
			So(err, ShouldWrap, service.ErrIndustryNotFound)
		})
	})
}

func TestTopCompanies(t *testing.T) {
	Convey("Given the fixture dataset", t, func() {
		svc := newTestService()
		top, err := svc.TopCompanies(context.Background(), "TECH")

		Convey("Then the head of the latest snapshot is returned", func() {
			So(err, ShouldBeNil)
			So(top.Results, ShouldHaveLength, 3)
			So(top.Results[0].Company, ShouldEqual, "Acme")
			So(top.Period, ShouldResemble, types.Period{Year: 2024, Month: 6})
		})
	})
}

func TestSearchCompanies(t *testing.T) {
	Convey("Given the fixture dataset", t, func() {
		svc := newTestService()
		ctx := context.Background()

		Convey("When the query is empty", func() {
			_, err := svc.SearchCompanies(ctx, "   ", 0, 0, 0)
			So(err, ShouldWrap, service.ErrInvalidParameter)
		})

		Convey("When the query matches by prefix", func() {
			result, err := svc.SearchCompanies(ctx, "acm", 0, 0, 0)

			Convey("Then matching names rank above non-matches and span industries", func() {
				So(err, ShouldBeNil)
				So(result.Results, ShouldHaveLength, 2)
				So(result.Results[0].Company, ShouldEqual, "Acme")
				So(result.Results[1].Company, ShouldEqual, "Acme")
			})
		})

		Convey("When exact and substring matches compete", func() {
			result, err := svc.SearchCompanies(ctx, "vault", 0, 0, 0)
			So(err, ShouldBeNil)
			So(result.Results, ShouldHaveLength, 1)
			So(result.Results[0].Company, ShouldEqual, "Vault")
		})

		Convey("When a limit is given", func() {
			result, err := svc.SearchCompanies(ctx, "a", 1, 0, 0)
			So(err, ShouldBeNil)
			So(result.Results, ShouldHaveLength, 1)
			So(result.Limit, ShouldEqual, 1)
		})

		Convey("When a period is given, only that period is searched", func() {
			result, err := svc.SearchCompanies(ctx, "vault", 0, 2023, 12)
			So(err, ShouldBeNil)
			So(result.Results, ShouldBeEmpty)
		})
	})
}

func TestPeriods(t *testing.T) {
	Convey("Given the fixture dataset", t, func() {
		svc := newTestService()
		ctx := context.Background()

		Convey("When unscoped", func() {
			pl, err := svc.Periods(ctx, "")

			Convey("Then periods are distinct and strictly descending", func() {
				So(err, ShouldBeNil)
				So(pl.Periods, ShouldResemble, []types.Period{
					{Year: 2024, Month: 6},
					{Year: 2024, Month: 3},
					{Year: 2023, Month: 12},
				})
			})
		})

		Convey("When scoped to an industry", func() {
			pl, err := svc.Periods(ctx, "tech")
			So(err, ShouldBeNil)
			So(pl.Industry, ShouldEqual, "TECH")
			So(pl.Periods, ShouldHaveLength, 2)
		})

		Convey("When scoped to an unknown industry", func() {
			_, err := svc.Periods(ctx, "AIRLINES")
			So(err, ShouldWrap, service.ErrIndustryNotFound)
		})
	})
}

func TestDiscovery(t *testing.T) {
	Convey("Given the fixture dataset", t, func() {
		svc := newTestService()
		d, err := svc.Discovery(context.Background())

		Convey("Then live examples are assembled from current data", func() {
			So(err, ShouldBeNil)
			So(d.Industries, ShouldResemble, []string{"TECH", "BANKING"})
			So(d.Examples.Overview, ShouldNotBeNil)
			So(d.Examples.CompanyRanking, ShouldNotBeNil)
			So(d.Examples.TopCompanies, ShouldNotBeEmpty)
			So(d.Examples.PeriodsByIndustry, ShouldContainKey, "BANKING")
		})
	})
}

func TestReadIdempotence(t *testing.T) {
	Convey("Given an unmodified dataset", t, func() {
		svc := newTestService()
		ctx := context.Background()

		Convey("Then repeating a read yields identical results", func() {
			first, err1 := svc.Rankings(ctx, "TECH", 3, 1, 0, 0)
			second, err2 := svc.Rankings(ctx, "TECH", 3, 1, 0, 0)
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(reflect.DeepEqual(first, second), ShouldBeTrue)

			s1, _ := svc.SearchCompanies(ctx, "a", 0, 0, 0)
			s2, _ := svc.SearchCompanies(ctx, "a", 0, 0, 0)
			So(reflect.DeepEqual(s1, s2), ShouldBeTrue)
		})
	})
}

func TestGetStats(t *testing.T) {
	Convey("Given the fixture dataset", t, func() {
		svc := newTestService()
		stats := svc.GetStats()
		So(stats["industries"], ShouldEqual, 2)
		So(stats["snapshots"], ShouldEqual, 3)
		So(stats["entries"], ShouldEqual, 9)
	})
}
