package smoke

import (
	"context"
	"fmt"
	"net/url"

	"github.com/openbi/rankindex/internal/domain/types"
)

// checkIndustries verifies the industry list is non-empty and returns it.
func checkIndustries(ctx context.Context, c *client) ([]string, error) {
	var resp struct {
		Industries []string `json:"industries"`
		Count      int      `json:"count"`
	}
	if err := c.getJSON(ctx, "/industries", &resp); err != nil {
		return nil, err
	}
	if len(resp.Industries) == 0 {
		return nil, fmt.Errorf("no industries in dataset")
	}
	if resp.Count != len(resp.Industries) {
		return nil, fmt.Errorf("count %d does not match %d industries", resp.Count, len(resp.Industries))
	}
	return resp.Industries, nil
}

// checkPagination walks the rankings of one industry page by page and
// verifies the concatenation is the complete, duplicate-free ranking.
func checkPagination(ctx context.Context, c *client, industry string, pageSize int) ([]types.CompanyEntry, error) {
	var all []types.CompanyEntry
	offset := 0
	total := -1
	for {
		var page types.RankingsPage
		path := fmt.Sprintf("/industry/%s/rankings?limit=%d&offset=%d", url.PathEscape(industry), pageSize, offset)
		if err := c.getJSON(ctx, path, &page); err != nil {
			return nil, err
		}
		if total == -1 {
			total = page.Total
		} else if page.Total != total {
			return nil, fmt.Errorf("total changed mid-walk: %d then %d", total, page.Total)
		}
		if len(page.Results) == 0 {
			break
		}
		all = append(all, page.Results...)
		offset += len(page.Results)
	}

	if len(all) != total {
		return nil, fmt.Errorf("reconstructed %d entries, expected %d", len(all), total)
	}
	seen := make(map[int]string, len(all))
	for i, e := range all {
		if e.Rank != i+1 {
			return nil, fmt.Errorf("rank %d at position %d", e.Rank, i+1)
		}
		if prev, dup := seen[e.Rank]; dup {
			return nil, fmt.Errorf("rank %d held by both %q and %q", e.Rank, prev, e.Company)
		}
		seen[e.Rank] = e.Company
	}
	return all, nil
}

// checkRankConsistency verifies the nth-rank endpoint agrees with the
// reconstructed ranking at a few probe positions.
func checkRankConsistency(ctx context.Context, c *client, industry string, ranking []types.CompanyEntry) error {
	if len(ranking) == 0 {
		return fmt.Errorf("empty ranking")
	}
	probes := []int{1, (len(ranking) + 1) / 2, len(ranking)}
	for _, rank := range probes {
		var entry types.CompanyEntry
		path := fmt.Sprintf("/industry/%s/rank/%d", url.PathEscape(industry), rank)
		if err := c.getJSON(ctx, path, &entry); err != nil {
			return err
		}
		if entry.Company != ranking[rank-1].Company {
			return fmt.Errorf("rank %d: %q from rank endpoint, %q from rankings", rank, entry.Company, ranking[rank-1].Company)
		}
	}
	return nil
}

// checkPeriods verifies periods come back newest first without duplicates.
func checkPeriods(ctx context.Context, c *client) error {
	var pl types.PeriodList
	if err := c.getJSON(ctx, "/periods", &pl); err != nil {
		return err
	}
	if len(pl.Periods) == 0 {
		return fmt.Errorf("no periods in dataset")
	}
	for i := 1; i < len(pl.Periods); i++ {
		prev, cur := pl.Periods[i-1], pl.Periods[i]
		if cur.Year > prev.Year || (cur.Year == prev.Year && cur.Month >= prev.Month) {
			return fmt.Errorf("periods not strictly descending at position %d", i)
		}
	}
	return nil
}

// checkSearch verifies a prefix search finds the top-ranked company.
func checkSearch(ctx context.Context, c *client, ranking []types.CompanyEntry) error {
	if len(ranking) == 0 {
		return fmt.Errorf("empty ranking")
	}
	name := ranking[0].Company
	var result types.SearchResult
	if err := c.getJSON(ctx, "/search/companies?company="+url.QueryEscape(name), &result); err != nil {
		return err
	}
	for _, e := range result.Results {
		if e.Company == name {
			return nil
		}
	}
	return fmt.Errorf("search for %q returned %d results, none matching", name, len(result.Results))
}

// checkBatch verifies a batch mixing a known and an unknown name resolves
// per entry without failing the request.
func checkBatch(ctx context.Context, c *client, ranking []types.CompanyEntry) error {
	if len(ranking) == 0 {
		return fmt.Errorf("empty ranking")
	}
	known := ranking[0].Company
	req := map[string]any{"companies": []string{known, "no-such-company-xyz"}}
	var result types.BatchResult
	if err := c.postJSON(ctx, "/companies", req, &result); err != nil {
		return err
	}
	if len(result.Results) != 2 {
		return fmt.Errorf("expected 2 batch slots, got %d", len(result.Results))
	}
	if !result.Results[0].Found {
		return fmt.Errorf("known company %q not found in batch", known)
	}
	if result.Results[1].Found {
		return fmt.Errorf("unknown company reported as found")
	}
	return nil
}

// checkOverview verifies the overview aggregates are coherent.
func checkOverview(ctx context.Context, c *client, industry string) error {
	var ov types.Overview
	if err := c.getJSON(ctx, "/industry/"+url.PathEscape(industry)+"/overview", &ov); err != nil {
		return err
	}
	if ov.CompanyCount <= 0 {
		return fmt.Errorf("overview reports %d companies", ov.CompanyCount)
	}
	if ov.MinScore > ov.MaxScore {
		return fmt.Errorf("min score %.2f above max %.2f", ov.MinScore, ov.MaxScore)
	}
	if ov.AverageScore < ov.MinScore || ov.AverageScore > ov.MaxScore {
		return fmt.Errorf("average %.2f outside [%.2f, %.2f]", ov.AverageScore, ov.MinScore, ov.MaxScore)
	}
	return nil
}
