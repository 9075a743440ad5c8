package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

// reportCachePattern matches every cached report payload.
const reportCachePattern = "reports:*"

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// Clock returns the current instant. Services take one so shift windows can be pinned in tests.
type Clock func() time.Time

// reportInvalidator drops cached reports after writes that change their inputs.
type reportInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

func invalidateReports(ctx context.Context, cache reportInvalidator) {
	if cache == nil {
		return
	}
	// Failures are logged by the cache service; stale reports expire with the TTL.
	_ = cache.Invalidate(ctx, reportCachePattern)
}
