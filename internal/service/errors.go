package service

import "errors"

var (
	// ErrAggregationFailed means no plan was produced and nothing was cached.
	ErrAggregationFailed = errors.New("release plan aggregation failed")
	// ErrSnapshotWrite means the plan was built but could not be cached.
	ErrSnapshotWrite = errors.New("writing release plan snapshot")
	// ErrSnapshotEmpty means no plan has been cached yet.
	ErrSnapshotEmpty = errors.New("no cached release plan")
	// ErrCacheUnavailable means the cache could not be read.
	ErrCacheUnavailable = errors.New("cache unavailable")
)
