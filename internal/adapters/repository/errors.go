package repository

import "errors"

// Sentinel kinds for data source errors.
var (
	ErrNoSource     = errors.New("no dataset source configured")
	ErrFetch        = errors.New("dataset fetch failed")
	ErrDecode       = errors.New("dataset decode failed")
	ErrEmptyDataset = errors.New("dataset contains no industries")
)
