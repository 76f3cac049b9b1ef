package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/openbi/rankindex/pkg/logger"
	"github.com/openbi/rankindex/pkg/metrics"
)

// Default loader configuration.
const (
	defaultRefreshInterval = 10 * time.Minute
	defaultFetchTimeout    = 15 * time.Second

	// maxDocumentBytes bounds how much of a response body is read. The
	// upstream index is a few hundred kilobytes; anything near this limit
	// indicates a misconfigured source.
	maxDocumentBytes = 64 << 20
)

// Loader fetches the dataset from its source, indexes it, and publishes it to
// a Provider. After a successful initial load it keeps refreshing in the
// background; refresh failures leave the previous dataset live.
type Loader struct {
	provider *Provider
	url      string
	filePath string
	client   *http.Client
	interval time.Duration
	log      logger.Logger

	lastRefresh atomic.Int64 // unix seconds of last successful load
}

// NewLoader creates a Loader publishing into provider.
func NewLoader(provider *Provider, opts ...LoaderOption) *Loader {
	l := &Loader{
		provider: provider,
		client:   &http.Client{Timeout: defaultFetchTimeout},
		interval: defaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logger.Get()
	}
	return l
}

// Start performs the initial load, then spawns the refresh loop. The loop
// stops when ctx is cancelled. Initial load failure is fatal: the service
// must not come up empty.
func (l *Loader) Start(ctx context.Context) error {
	if l.url == "" && l.filePath == "" {
		return ErrNoSource
	}
	if err := l.refresh(ctx); err != nil {
		return err
	}
	go l.run(ctx)
	return nil
}

// LastRefresh returns the time of the last successful load.
func (l *Loader) LastRefresh() time.Time {
	return time.Unix(l.lastRefresh.Load(), 0)
}

func (l *Loader) run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.refresh(ctx); err != nil {
				metrics.RecordDatasetRefreshError()
				l.log.Warn(ctx, "dataset refresh failed; keeping previous dataset", logger.Error(err))
			}
		}
	}
}

// refresh fetches, decodes, indexes, and atomically publishes the dataset.
func (l *Loader) refresh(ctx context.Context) error {
	start := time.Now()

	raw, err := l.fetch(ctx)
	if err != nil {
		return err
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return err
	}
	store := newMemStore(doc)
	industries, snapshots, entries := store.Counts(ctx)
	if industries == 0 {
		return ErrEmptyDataset
	}

	l.provider.Swap(store)
	l.lastRefresh.Store(time.Now().Unix())

	elapsed := time.Since(start)
	metrics.RecordDatasetRefresh(elapsed)
	metrics.UpdateDatasetStats(industries, snapshots, entries)
	l.log.Info(ctx, "dataset published",
		logger.Int("industries", industries),
		logger.Int("snapshots", snapshots),
		logger.Int("entries", entries),
		logger.Int64("elapsed_ms", elapsed.Milliseconds()),
	)
	return nil
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	if l.filePath != "" {
		data, err := os.ReadFile(l.filePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ErrFetch, resp.StatusCode, l.url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return data, nil
}
