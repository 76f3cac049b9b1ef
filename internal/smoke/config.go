package smoke

import "time"

// Config holds configuration for the smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	APIKey   string        // Bearer token for protected routes
	Industry string        // Industry to exercise; empty picks the first listed
	PageSize int           // Rankings page size used for the pagination walk
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Enable verbose logging
}

// Stats holds smoke run statistics.
type Stats struct {
	ChecksRun     int
	ChecksPassed  int
	ChecksFailed  int
	RequestsMade  int
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	FailedChecks  []string
}
