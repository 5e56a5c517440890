package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lms-client/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Archive stores aggregation snapshots in Postgres for offline viewing and
// history. Each snapshot is the full enriched result list as JSONB.
type Archive struct {
	pool *pgxpool.Pool
}

func NewArchive(pool *pgxpool.Pool) *Archive {
	return &Archive{pool: pool}
}

// SnapshotRecord describes one stored snapshot without its rows.
type SnapshotRecord struct {
	ID          int64
	ViewerID    string
	Role        domain.Role
	TakenAt     time.Time
	ResultCount int
}

// Save stores a snapshot and returns its ID.
func (a *Archive) Save(ctx context.Context, viewer domain.Viewer, takenAt time.Time, results []domain.EnrichedResult) (int64, error) {
	data, err := json.Marshal(results)
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot: %w", err)
	}
	var id int64
	err = a.pool.QueryRow(ctx,
		`INSERT INTO result_snapshots (viewer_id, role, taken_at, data) VALUES ($1, $2, $3, $4) RETURNING id`,
		viewer.UserID, string(viewer.Role), takenAt, data,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}
	return id, nil
}

// List returns the viewer's snapshots, newest first.
func (a *Archive) List(ctx context.Context, viewerID string) ([]SnapshotRecord, error) {
	rows, err := a.pool.Query(ctx,
		`SELECT id, viewer_id, role, taken_at, jsonb_array_length(data)
		   FROM result_snapshots WHERE viewer_id=$1 ORDER BY taken_at DESC`,
		viewerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var records []SnapshotRecord
	for rows.Next() {
		var rec SnapshotRecord
		var role string
		if err := rows.Scan(&rec.ID, &rec.ViewerID, &role, &rec.TakenAt, &rec.ResultCount); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		rec.Role = domain.ParseRole(role)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Load returns the enriched rows of one stored snapshot.
func (a *Archive) Load(ctx context.Context, id int64) ([]domain.EnrichedResult, error) {
	var raw []byte
	err := a.pool.QueryRow(ctx, `SELECT data FROM result_snapshots WHERE id=$1`, id).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	var results []domain.EnrichedResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return results, nil
}
