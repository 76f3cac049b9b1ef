package service

import "errors"

// Typed failure kinds surfaced by query operations. The transport layer maps
// each to a response status with errors.Is; none of them is an unexpected
// condition.
var (
	ErrIndustryNotFound = errors.New("industry not found")
	ErrCompanyNotFound  = errors.New("company not found")
	ErrPeriodNotFound   = errors.New("period not found")
	ErrRankOutOfRange   = errors.New("rank out of range")
	ErrInvalidParameter = errors.New("invalid parameter")
)
