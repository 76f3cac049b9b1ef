package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/openbi/rankindex/internal/adapters/http/api"
	service "github.com/openbi/rankindex/internal/app"
	"github.com/openbi/rankindex/internal/domain/types"
)

const testKey = "secret-key"

// mockQuerier satisfies api.Dependencies with canned responses.
type mockQuerier struct {
	industries []string
	list       types.CompanyList
	lookup     types.CompanyLookup
	batch      types.BatchResult
	entry      types.CompanyEntry
	page       types.RankingsPage
	overview   types.Overview
	top        types.TopCompanies
	search     types.SearchResult
	periods    types.PeriodList
	discovery  types.Discovery
	err        error
}

func (m *mockQuerier) Industries(context.Context) []string { return m.industries }

func (m *mockQuerier) IndustryCompanies(context.Context, string, int, int) (types.CompanyList, error) {
	return m.list, m.err
}

func (m *mockQuerier) Company(context.Context, string, int, int) (types.CompanyLookup, error) {
	return m.lookup, m.err
}

func (m *mockQuerier) CompaniesBatch(context.Context, []string, string, int, int) (types.BatchResult, error) {
	return m.batch, m.err
}

func (m *mockQuerier) RankedCompany(context.Context, string, int, int, int) (types.CompanyEntry, error) {
	return m.entry, m.err
}

func (m *mockQuerier) Rankings(context.Context, string, int, int, int, int) (types.RankingsPage, error) {
	return m.page, m.err
}

func (m *mockQuerier) Overview(context.Context, string) (types.Overview, error) {
	return m.overview, m.err
}

func (m *mockQuerier) TopCompanies(context.Context, string) (types.TopCompanies, error) {
	return m.top, m.err
}

func (m *mockQuerier) SearchCompanies(context.Context, string, int, int, int) (types.SearchResult, error) {
	return m.search, m.err
}

func (m *mockQuerier) Periods(context.Context, string) (types.PeriodList, error) {
	return m.periods, m.err
}

func (m *mockQuerier) Discovery(context.Context) (types.Discovery, error) {
	return m.discovery, m.err
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} { return m.stats }

func newTestServer(deps *mockQuerier, opts ...api.Option) *httptest.Server {
	opts = append([]api.Option{api.WithAPIKey(testKey)}, opts...)
	srv := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"industries": 2}}, opts...)
	return httptest.NewServer(srv.Routes())
}

func get(t *testing.T, url, key string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	So(err, ShouldBeNil)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	resp, err := http.DefaultClient.Do(req)
	So(err, ShouldBeNil)
	return resp
}

func decodeBody(resp *http.Response, v any) {
	defer resp.Body.Close()
	So(json.NewDecoder(resp.Body).Decode(v), ShouldBeNil)
}

func TestBearerAuth(t *testing.T) {
	Convey("Given a server with an API key", t, func() {
		ts := newTestServer(&mockQuerier{industries: []string{"TECH"}})
		defer ts.Close()

		Convey("Then the health endpoint is open", func() {
			resp := get(t, ts.URL+"/", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var body map[string]string
			decodeBody(resp, &body)
			So(body["status"], ShouldEqual, "Healthy.")
		})

		Convey("Then /metrics is open", func() {
			resp := get(t, ts.URL+"/metrics", "")
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("Then a missing token is 401", func() {
			resp := get(t, ts.URL+"/industries", "")
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Then a malformed Authorization header is 401", func() {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/industries", nil)
			req.Header.Set("Authorization", "Basic abc")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Then a wrong token is 403", func() {
			resp := get(t, ts.URL+"/industries", "wrong-key")
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusForbidden)
		})

		Convey("Then the right token is 200", func() {
			resp := get(t, ts.URL+"/industries", testKey)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var body map[string]any
			decodeBody(resp, &body)
			So(body["count"], ShouldEqual, 1)
		})
	})

	Convey("Given a server with no API key configured", t, func() {
		srv := api.NewServer(&mockQuerier{}, &mockStatsProvider{})
		ts := httptest.NewServer(srv.Routes())
		defer ts.Close()

		Convey("Then protected routes stay closed", func() {
			resp := get(t, ts.URL+"/industries", "anything")
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given a running server", t, func() {
		ts := newTestServer(&mockQuerier{})
		defer ts.Close()

		Convey("Then a caller-supplied request ID is echoed", func() {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
			req.Header.Set("X-Request-ID", "trace-42")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.Header.Get("X-Request-ID"), ShouldEqual, "trace-42")
		})

		Convey("Then a missing request ID is generated", func() {
			resp := get(t, ts.URL+"/", "")
			defer resp.Body.Close()
			So(resp.Header.Get("X-Request-ID"), ShouldNotBeEmpty)
		})
	})
}

func TestErrorMapping(t *testing.T) {
	Convey("Given handlers backed by a failing service", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{service.ErrIndustryNotFound, http.StatusNotFound, "industry_not_found"},
			{service.ErrCompanyNotFound, http.StatusNotFound, "company_not_found"},
			{service.ErrPeriodNotFound, http.StatusNotFound, "period_not_found"},
			{service.ErrRankOutOfRange, http.StatusNotFound, "rank_out_of_range"},
			{service.ErrInvalidParameter, http.StatusBadRequest, "invalid_parameter"},
		}

		for _, tc := range cases {
			Convey("When the service fails with "+tc.err.Error(), func() {
				ts := newTestServer(&mockQuerier{err: tc.err})
				defer ts.Close()

				resp := get(t, ts.URL+"/industry/TECH/rankings", testKey)
				So(resp.StatusCode, ShouldEqual, tc.status)
				var body map[string]string
				decodeBody(resp, &body)
				So(body["code"], ShouldEqual, tc.code)
			})
		}

		Convey("When the service fails with an unexpected error", func() {
			ts := newTestServer(&mockQuerier{err: context.DeadlineExceeded})
			defer ts.Close()

			resp := get(t, ts.URL+"/industry/TECH/overview", testKey)
			So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
			var body map[string]string
			decodeBody(resp, &body)
			So(body["code"], ShouldEqual, "internal_error")

			Convey("Then the internal message does not leak", func() {
				So(body["message"], ShouldNotContainSubstring, "deadline")
			})
		})
	})
}

func TestQueryEndpoints(t *testing.T) {
	Convey("Given a server with canned data", t, func() {
		deps := &mockQuerier{
			industries: []string{"TECH", "BANKING"},
			page: types.RankingsPage{
				Industry: "TECH",
				Period:   types.Period{Year: 2024, Month: 6},
				Total:    1,
				Limit:    25,
				Results: []types.CompanyEntry{
					{Company: "Acme", Industry: "TECH", Rank: 1, Score: 91.23, Period: types.Period{Year: 2024, Month: 6}},
				},
			},
			entry:   types.CompanyEntry{Company: "Acme", Industry: "TECH", Rank: 1, Score: 91.23},
			periods: types.PeriodList{Periods: []types.Period{{Year: 2024, Month: 6}}},
			lookup:  types.CompanyLookup{Company: "Acme", Matches: []types.CompanyEntry{{Company: "Acme"}}},
			batch:   types.BatchResult{Results: []types.BatchEntry{{Name: "Acme", Found: true}}},
		}
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When fetching the rankings page", func() {
			resp := get(t, ts.URL+"/industry/TECH/rankings?limit=25", testKey)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var page types.RankingsPage
			decodeBody(resp, &page)
			So(page.Total, ShouldEqual, 1)
			So(page.Results[0].Company, ShouldEqual, "Acme")
			So(page.Period.Year, ShouldEqual, 2024)
		})

		Convey("When fetching a rank position", func() {
			resp := get(t, ts.URL+"/industry/TECH/rank/1", testKey)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var entry types.CompanyEntry
			decodeBody(resp, &entry)
			So(entry.Rank, ShouldEqual, 1)
		})

		Convey("When the rank path parameter is not a number", func() {
			resp := get(t, ts.URL+"/industry/TECH/rank/first", testKey)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a year parameter is not numeric", func() {
			resp := get(t, ts.URL+"/industry/TECH/rankings?year=twenty", testKey)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a month parameter is out of range", func() {
			resp := get(t, ts.URL+"/company?name=Acme&month=13", testKey)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting a company batch", func() {
			body := strings.NewReader(`{"companies":["Acme"]}`)
			req, _ := http.NewRequest(http.MethodPost, ts.URL+"/companies", body)
			req.Header.Set("Authorization", "Bearer "+testKey)
			req.Header.Set("Content-Type", "application/json")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var result types.BatchResult
			decodeBody(resp, &result)
			So(result.Results, ShouldHaveLength, 1)
			So(result.Results[0].Found, ShouldBeTrue)
		})

		Convey("When posting an empty batch", func() {
			req, _ := http.NewRequest(http.MethodPost, ts.URL+"/companies", strings.NewReader(`{"companies":[]}`))
			req.Header.Set("Authorization", "Bearer "+testKey)
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting a malformed batch body", func() {
			req, _ := http.NewRequest(http.MethodPost, ts.URL+"/companies", strings.NewReader(`{"companies":`))
			req.Header.Set("Authorization", "Bearer "+testKey)
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When listing periods", func() {
			resp := get(t, ts.URL+"/periods", testKey)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var pl types.PeriodList
			decodeBody(resp, &pl)
			So(pl.Periods, ShouldHaveLength, 1)
		})

		Convey("When fetching stats", func() {
			resp := get(t, ts.URL+"/stats", testKey)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var stats map[string]any
			decodeBody(resp, &stats)
			So(stats["industries"], ShouldEqual, 2)
		})

		Convey("When an unknown route is requested", func() {
			resp := get(t, ts.URL+"/nope", testKey)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a server with a one-request budget", t, func() {
		ts := newTestServer(&mockQuerier{}, api.WithRateLimit(1, time.Minute))
		defer ts.Close()

		Convey("Then the second request inside the window is rejected", func() {
			first := get(t, ts.URL+"/", "")
			first.Body.Close()
			So(first.StatusCode, ShouldEqual, http.StatusOK)

			second := get(t, ts.URL+"/", "")
			second.Body.Close()
			So(second.StatusCode, ShouldEqual, http.StatusTooManyRequests)
		})
	})
}
