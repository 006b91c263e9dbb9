// Package source contains the data source adapters. Each adapter yields the
// full record set for a dataset and a freshness tag; schema validation
// happens here so malformed rows never reach the aggregation engine.
package source

import (
	"context"
	"errors"

	"supplychain-analytics/internal/model"
)

// ErrSourceUnavailable marks a backend that cannot be reached. It propagates
// to the caller untouched; a dashboard refresh is cheap enough that retrying
// is left to the user.
var ErrSourceUnavailable = errors.New("data source unavailable")

// Source yields raw records for a dataset regardless of storage backend.
// The int result is the number of malformed rows dropped during validation;
// callers surface it so users know how many rows were skipped.
type Source interface {
	Logistics(ctx context.Context) ([]model.LogisticsRecord, int, error)
	Inventory(ctx context.Context) ([]model.InventoryRecord, int, error)

	// Version returns a tag that changes whenever the underlying data
	// changes (file mtime, object LastModified, row counts). It is folded
	// into cache keys so a refreshed source invalidates stale results.
	Version(ctx context.Context) (string, error)
}
