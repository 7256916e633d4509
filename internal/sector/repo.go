package sector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"integritywatch/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Seed inserts any sector names not already present.
func (r *Repo) Seed(ctx context.Context, names []string) error {
	stmt, err := r.DB.PrepareContext(ctx, `
		INSERT INTO sectors (name) VALUES (?)
		ON CONFLICT(name) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("prepare seed sectors: %w", err)
	}
	defer stmt.Close()

	for _, n := range names {
		if _, err := stmt.ExecContext(ctx, n); err != nil {
			return fmt.Errorf("seed sector %s: %w", n, err)
		}
	}
	return nil
}

// IDs returns sector id by name.
func (r *Repo) IDs(ctx context.Context) (map[string]int64, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name FROM sectors`)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan sector: %w", err)
		}
		out[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// ListMappings returns persisted keyword mappings in insertion order.
func (r *Repo) ListMappings(ctx context.Context) ([]models.AssetSectorMapping, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT m.id, m.keyword, m.sector_id, s.name
		FROM asset_sector_mappings m
		JOIN sectors s ON s.id = m.sector_id
		ORDER BY m.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	defer rows.Close()

	var out []models.AssetSectorMapping
	for rows.Next() {
		var m models.AssetSectorMapping
		if err := rows.Scan(&m.ID, &m.Keyword, &m.SectorID, &m.Sector); err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// UpsertMapping stores keyword -> sector, creating the sector row if needed.
func (r *Repo) UpsertMapping(ctx context.Context, keyword, sectorName string) error {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	sectorName = strings.TrimSpace(sectorName)
	if keyword == "" || sectorName == "" {
		return fmt.Errorf("upsert mapping: keyword and sector required")
	}

	if err := r.Seed(ctx, []string{sectorName}); err != nil {
		return err
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO asset_sector_mappings (keyword, sector_id)
		VALUES (?, (SELECT id FROM sectors WHERE name = ?))
		ON CONFLICT(keyword) DO UPDATE SET sector_id = excluded.sector_id
	`, keyword, sectorName)
	if err != nil {
		return fmt.Errorf("upsert mapping %s: %w", keyword, err)
	}
	return nil
}
