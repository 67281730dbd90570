package station

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// Snapshots are stored whole as JSONB; they are replaced wholesale on
// refresh, so row-per-station storage would buy nothing here.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL snapshot repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// snapshotsToKeep bounds table growth; older snapshots have no consumers.
const snapshotsToKeep = 5

// SaveSnapshot stores a snapshot and prunes old ones.
func (r *PostgresRepository) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	stations, err := json.Marshal(snapshot.Stations)
	if err != nil {
		return fmt.Errorf("marshal stations: %w", err)
	}

	query := `
		INSERT INTO directory_snapshots (id, fetched_at, source, stations)
		VALUES ($1, $2, $3, $4)
	`

	_, err = r.pool.Exec(ctx, query,
		uuid.NewString(),
		snapshot.FetchedAt,
		string(snapshot.Source),
		stations,
	)
	if err != nil {
		return err
	}

	prune := `
		DELETE FROM directory_snapshots
		WHERE id NOT IN (
			SELECT id FROM directory_snapshots
			ORDER BY fetched_at DESC
			LIMIT $1
		)
	`
	_, err = r.pool.Exec(ctx, prune, snapshotsToKeep)
	return err
}

// LatestSnapshot retrieves the most recently saved snapshot.
func (r *PostgresRepository) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	query := `
		SELECT fetched_at, source, stations
		FROM directory_snapshots
		ORDER BY fetched_at DESC
		LIMIT 1
	`

	var snapshot Snapshot
	var source string
	var stations []byte

	err := r.pool.QueryRow(ctx, query).Scan(&snapshot.FetchedAt, &source, &stations)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}

	if err := json.Unmarshal(stations, &snapshot.Stations); err != nil {
		return nil, fmt.Errorf("unmarshal stations: %w", err)
	}
	snapshot.Source = SnapshotSource(source)

	return &snapshot, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
