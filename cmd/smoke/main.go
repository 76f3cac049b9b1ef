package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/openbi/rankindex/internal/smoke"
	"github.com/openbi/rankindex/pkg/logger"
)

// Default configuration constants.
const (
	defaultPageSize  = 10
	defaultTimeout   = 15 * time.Second
	defaultRunBudget = 5 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "Base URL of the service")
		apiKey   = flag.String("key", os.Getenv("RANKINDEX_API_KEY"), "Bearer token for protected routes")
		industry = flag.String("industry", "", "Industry to exercise (default: first listed)")
		pageSize = flag.Int("page-size", defaultPageSize, "Rankings page size for the pagination walk")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunBudget)
	defer cancel()

	cfg := &smoke.Config{
		BaseURL:  *baseURL,
		APIKey:   *apiKey,
		Industry: *industry,
		PageSize: *pageSize,
		Timeout:  *timeout,
		Verbose:  *verbose,
	}

	if err := smoke.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Smoke run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
