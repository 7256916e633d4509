package committee

import (
	"context"
	"database/sql"
	"fmt"

	"integritywatch/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Ensure upserts every committee in table together with its sector links
// and returns committee id by name. Sectors missing from sectorIDs are
// skipped.
func (r *Repo) Ensure(ctx context.Context, table []Oversight, sectorIDs map[string]int64) (map[string]int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin ensure committees: %w", err)
	}
	defer tx.Rollback()

	ids := make(map[string]int64, len(table))
	for _, o := range table {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO committees (name, source_key) VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET source_key = excluded.source_key
		`, o.Committee, o.SourceKey); err != nil {
			return nil, fmt.Errorf("upsert committee %s: %w", o.Committee, err)
		}

		var id int64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM committees WHERE name = ?`, o.Committee).Scan(&id); err != nil {
			return nil, fmt.Errorf("committee id %s: %w", o.Committee, err)
		}
		ids[o.Committee] = id

		for _, s := range o.Sectors {
			sid, ok := sectorIDs[s]
			if !ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO committee_sectors (committee_id, sector_id) VALUES (?, ?)
				ON CONFLICT DO NOTHING
			`, id, sid); err != nil {
				return nil, fmt.Errorf("link committee %s sector %s: %w", o.Committee, s, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit ensure committees: %w", err)
	}
	return ids, nil
}

// Link records committee membership. inserted is false when the pair was
// already present.
func (r *Repo) Link(ctx context.Context, committeeID, memberID int64) (inserted bool, err error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO member_committees (committee_id, member_id) VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`, committeeID, memberID)
	if err != nil {
		return false, fmt.Errorf("link member %d to committee %d: %w", memberID, committeeID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("link rows: %w", err)
	}
	return n > 0, nil
}

func (r *Repo) CountLinks(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM member_committees`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count member committees: %w", err)
	}
	return n, nil
}

// ForMember lists the committees a member sits on.
func (r *Repo) ForMember(ctx context.Context, memberID int64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.name
		FROM member_committees mc
		JOIN committees c ON c.id = mc.committee_id
		WHERE mc.member_id = ?
		ORDER BY c.name ASC
	`, memberID)
	if err != nil {
		return nil, fmt.Errorf("member committees: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan member committee: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// List returns committees with their persisted sector links.
func (r *Repo) List(ctx context.Context) ([]models.Committee, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.name, COALESCE(c.source_key, ''), s.name
		FROM committees c
		LEFT JOIN committee_sectors cs ON cs.committee_id = c.id
		LEFT JOIN sectors s ON s.id = cs.sector_id
		ORDER BY c.id ASC, s.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list committees: %w", err)
	}
	defer rows.Close()

	var out []models.Committee
	for rows.Next() {
		var (
			c          models.Committee
			sectorName sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.SourceKey, &sectorName); err != nil {
			return nil, fmt.Errorf("scan committee: %w", err)
		}
		if n := len(out); n > 0 && out[n-1].ID == c.ID {
			if sectorName.Valid {
				out[n-1].Sectors = append(out[n-1].Sectors, sectorName.String)
			}
			continue
		}
		if sectorName.Valid {
			c.Sectors = []string{sectorName.String}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
