package externalApi

import "errors"

var (
	ErrNotFound     = errors.New("error not found")
	ErrRateLimited  = errors.New("error rate limited by provider")
	ErrUnexpectedRs = errors.New("error unexpected response")
)
