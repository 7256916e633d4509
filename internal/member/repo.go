package member

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"integritywatch/pkg/models"
)

type Repo struct {
	DB  *sql.DB
	Now func() time.Time
}

type ListQuery struct {
	Q            string // keyword search in name/riding
	Jurisdiction string
	Party        string
	Limit        int
	Offset       int
}

// RosterEntry is one row of a roster refresh, keyed by ExternalID.
type RosterEntry struct {
	ExternalID string
	Name       string
	Riding     string
	Party      string
	Chamber    string
	PhotoURL   string
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db, Now: func() time.Time { return time.Now().UTC() }}
}

const memberColumns = `id, COALESCE(external_id, ''), name, riding, party, jurisdiction, chamber,
	photo_url, COALESCE(slug, ''), integrity_rank, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(s rowScanner) (models.Member, error) {
	var (
		m    models.Member
		rank sql.NullFloat64
	)
	if err := s.Scan(
		&m.ID, &m.ExternalID, &m.Name, &m.Riding, &m.Party, &m.Jurisdiction, &m.Chamber,
		&m.PhotoURL, &m.Slug, &rank, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return models.Member{}, err
	}
	if rank.Valid {
		v := rank.Float64
		m.IntegrityRank = &v
	}
	return m, nil
}

// UpsertRoster writes one batch of roster rows in a single transaction.
// Rows are matched on external id; integrity rank and slug are preserved.
func (r *Repo) UpsertRoster(ctx context.Context, j models.Jurisdiction, entries []RosterEntry) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO members (external_id, name, riding, party, jurisdiction, chamber, photo_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
		  name = excluded.name,
		  riding = excluded.riding,
		  party = excluded.party,
		  jurisdiction = excluded.jurisdiction,
		  chamber = excluded.chamber,
		  photo_url = CASE WHEN excluded.photo_url <> '' THEN excluded.photo_url ELSE members.photo_url END,
		  updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	now := r.Now()
	n := 0
	for _, e := range entries {
		if strings.TrimSpace(e.ExternalID) == "" || strings.TrimSpace(e.Name) == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			e.ExternalID, strings.TrimSpace(e.Name), e.Riding, e.Party, string(j), e.Chamber, e.PhotoURL, now, now,
		); err != nil {
			return 0, fmt.Errorf("exec upsert for %s: %w", e.ExternalID, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return n, nil
}

// Create inserts a member without an external id (seed data, tests).
func (r *Repo) Create(ctx context.Context, m models.Member) (int64, error) {
	now := r.Now()
	var ext any
	if m.ExternalID != "" {
		ext = m.ExternalID
	}
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO members (external_id, name, riding, party, jurisdiction, chamber, photo_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ext, m.Name, m.Riding, m.Party, string(m.Jurisdiction), m.Chamber, m.PhotoURL, now, now)
	if err != nil {
		return 0, fmt.Errorf("create member: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create member id: %w", err)
	}
	return id, nil
}

func (r *Repo) CountByJurisdiction(ctx context.Context, j models.Jurisdiction) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM members WHERE jurisdiction = ?`, string(j)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Member, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return &m, nil
}

func (r *Repo) GetBySlug(ctx context.Context, slug string) (*models.Member, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE slug = ?`, slug)
	m, err := scanMember(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getBySlug: %w", err)
	}
	return &m, nil
}

// All returns every member ordered by id.
func (r *Repo) All(ctx context.Context) ([]models.Member, error) {
	return r.query(ctx, `SELECT `+memberColumns+` FROM members ORDER BY id ASC`)
}

// DueForDisclosureSync returns up to limit members, never-synced first,
// then the least recently synced.
func (r *Repo) DueForDisclosureSync(ctx context.Context, limit int) ([]models.Member, error) {
	return r.query(ctx, `
		SELECT `+memberColumns+`
		FROM members
		ORDER BY disclosures_synced_at IS NOT NULL, disclosures_synced_at ASC, id ASC
		LIMIT ?
	`, limit)
}

func (r *Repo) MarkDisclosuresSynced(ctx context.Context, id int64) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE members SET disclosures_synced_at = ? WHERE id = ?`, r.Now(), id); err != nil {
		return fmt.Errorf("mark disclosures synced %d: %w", id, err)
	}
	return nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Member, error) {
	sqlStr, args := buildListSQL(q, false)
	return r.query(ctx, sqlStr, args...)
}

func (r *Repo) query(ctx context.Context, sqlStr string, args ...any) ([]models.Member, error) {
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	var out []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// buildListSQL builds either COUNT(*) or SELECT list.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `SELECT ` + memberColumns + ` FROM members`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM members`
	}

	var where []string
	var args []any

	if strings.TrimSpace(q.Q) != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(riding) LIKE ?)")
		kw := "%" + strings.ToLower(strings.TrimSpace(q.Q)) + "%"
		args = append(args, kw, kw)
	}
	if j := strings.ToUpper(strings.TrimSpace(q.Jurisdiction)); j != "" {
		where = append(where, "jurisdiction = ?")
		args = append(args, j)
	}
	if p := strings.TrimSpace(q.Party); p != "" {
		where = append(where, "LOWER(party) = ?")
		args = append(args, strings.ToLower(p))
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY name ASC"
		sqlStr += " LIMIT ? OFFSET ?"
		limit := q.Limit
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}
