package smoke

import (
	"context"
	"fmt"
	"time"

	"github.com/openbi/rankindex/internal/domain/types"
	"github.com/openbi/rankindex/pkg/logger"
)

// Run executes the complete smoke suite against a running instance.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("industry", cfg.Industry),
		logger.Int("pageSize", cfg.PageSize),
		logger.String("timeout", cfg.Timeout.String()))

	c := newClient(cfg)

	if err := c.waitHealthy(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	industries, err := checkIndustries(ctx, c)
	record(ctx, stats, "industries", err)
	if err != nil {
		return fmt.Errorf("industry listing failed: %w", err)
	}

	industry := cfg.Industry
	if industry == "" {
		industry = industries[0]
	}

	var ranking []types.CompanyEntry
	ranking, err = checkPagination(ctx, c, industry, cfg.PageSize)
	record(ctx, stats, "pagination", err)

	if err == nil {
		record(ctx, stats, "rank-consistency", checkRankConsistency(ctx, c, industry, ranking))
		record(ctx, stats, "search", checkSearch(ctx, c, ranking))
		record(ctx, stats, "batch", checkBatch(ctx, c, ranking))
	}
	record(ctx, stats, "periods", checkPeriods(ctx, c))
	record(ctx, stats, "overview", checkOverview(ctx, c, industry))

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	stats.RequestsMade = int(c.requests.Load())

	log.Info(ctx, "smoke run finished",
		logger.Int("checks", stats.ChecksRun),
		logger.Int("passed", stats.ChecksPassed),
		logger.Int("failed", stats.ChecksFailed),
		logger.Int("requests", stats.RequestsMade),
		logger.String("duration", stats.Duration.String()))

	if stats.ChecksFailed > 0 {
		return fmt.Errorf("%d of %d checks failed: %v", stats.ChecksFailed, stats.ChecksRun, stats.FailedChecks)
	}
	return nil
}

func record(ctx context.Context, stats *Stats, name string, err error) {
	stats.ChecksRun++
	if err != nil {
		stats.ChecksFailed++
		stats.FailedChecks = append(stats.FailedChecks, name)
		logger.Get().Error(ctx, "check failed", logger.String("check", name), logger.Error(err))
		return
	}
	stats.ChecksPassed++
	logger.Get().Info(ctx, "check passed", logger.String("check", name))
}
