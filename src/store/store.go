// Package store persists conformance run results so past runs can be
// browsed after the fact. Backends share one interface; the run itself never
// depends on a store being configured or healthy.
package store

import (
	"context"
	"fmt"
	"strings"

	probe "github.com/Protocol-Lattice/go-probe"
)

// Store is a sink for per-tool result records, written once per record in
// run order.
type Store interface {
	Save(ctx context.Context, runID string, rec probe.Record) error
	Close(ctx context.Context) error
}

// Open selects a backend by DSN scheme: postgres(ql):// or mongodb(+srv)://.
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return NewPostgresStore(ctx, dsn)
	case strings.HasPrefix(dsn, "mongodb://"), strings.HasPrefix(dsn, "mongodb+srv://"):
		return NewMongoStore(ctx, dsn, "probe", "results")
	default:
		return nil, fmt.Errorf("unsupported store DSN: %s", dsn)
	}
}
