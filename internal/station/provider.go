package station

import (
	"context"
	"fmt"
	"time"

	"github.com/petrolnearme/petrolnearme/internal/baserow"
)

// Provider fetches a complete directory snapshot from an upstream source.
type Provider interface {
	FetchSnapshot(ctx context.Context) (*Snapshot, error)
}

// RowSource abstracts the remote table client.
type RowSource interface {
	FetchAllRows(ctx context.Context, tableID string, pageSize int) ([]baserow.Row, error)
}

// TableProviderConfig holds configuration for the table-backed provider.
type TableProviderConfig struct {
	// Source is the remote table client.
	Source RowSource

	// Normalizer converts raw rows into stations. Required.
	Normalizer *Normalizer

	// TableID identifies the stations table.
	TableID string

	// PageSize is the rows-per-page hint passed to the source (default 50).
	PageSize int
}

// TableProvider builds snapshots from the remote table. A fetch is
// all-or-nothing: any page failure discards everything accumulated.
type TableProvider struct {
	source     RowSource
	normalizer *Normalizer
	tableID    string
	pageSize   int
}

// NewTableProvider creates a new table-backed provider.
func NewTableProvider(cfg TableProviderConfig) *TableProvider {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	return &TableProvider{
		source:     cfg.Source,
		normalizer: cfg.Normalizer,
		tableID:    cfg.TableID,
		pageSize:   pageSize,
	}
}

// FetchSnapshot retrieves all rows and normalizes them into a live snapshot.
func (p *TableProvider) FetchSnapshot(ctx context.Context) (*Snapshot, error) {
	rows, err := p.source.FetchAllRows(ctx, p.tableID, p.pageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch station rows: %w", err)
	}

	stations := make([]*Station, 0, len(rows))
	for i, row := range rows {
		stations = append(stations, p.normalizer.Normalize(row, i, PriceSourceLive))
	}

	return &Snapshot{
		Stations:  stations,
		FetchedAt: time.Now(),
		Source:    SnapshotSourceLive,
	}, nil
}

// Ensure TableProvider implements Provider interface.
var _ Provider = (*TableProvider)(nil)
