package member

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"integritywatch/pkg/database"
	"integritywatch/pkg/models"
)

const disclosureColumns = `id, member_id, category, description, disclosure_date, created_at,
	sector_id, conflict_flag, conflict_reason`

func scanDisclosure(s rowScanner) (models.Disclosure, error) {
	var (
		d      models.Disclosure
		date   sql.NullTime
		sector sql.NullInt64
		reason sql.NullString
	)
	if err := s.Scan(&d.ID, &d.MemberID, &d.Category, &d.Description, &date, &d.CreatedAt,
		&sector, &d.ConflictFlag, &reason); err != nil {
		return models.Disclosure{}, err
	}
	if date.Valid {
		t := date.Time
		d.DisclosureDate = &t
	}
	if sector.Valid {
		id := sector.Int64
		d.SectorID = &id
	}
	if reason.Valid {
		s := reason.String
		d.ConflictReason = &s
	}
	return d, nil
}

// InsertDisclosure stores d. A row that already exists under the natural
// key (member, category, description, date) is skipped: inserted is false
// and err is nil. A zero CreatedAt is replaced with the repo clock.
func (r *Repo) InsertDisclosure(ctx context.Context, d models.Disclosure) (inserted bool, err error) {
	created := d.CreatedAt
	if created.IsZero() {
		created = r.Now()
	}
	var date any
	if d.DisclosureDate != nil {
		date = dateOnly(*d.DisclosureDate)
	}
	var sector any
	if d.SectorID != nil {
		sector = *d.SectorID
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO disclosures (member_id, category, description, disclosure_date, created_at, sector_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.MemberID, d.Category, d.Description, date, created.UTC(), sector)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert disclosure for member %d: %w", d.MemberID, err)
	}
	return true, nil
}

// RecentDisclosures returns at most limit disclosures, newest event first.
func (r *Repo) RecentDisclosures(ctx context.Context, memberID int64, limit int) ([]models.Disclosure, error) {
	return r.queryDisclosures(ctx, `
		SELECT `+disclosureColumns+`
		FROM disclosures
		WHERE member_id = ?
		ORDER BY COALESCE(disclosure_date, created_at) DESC, id DESC
		LIMIT ?
	`, memberID, limit)
}

// Disclosures returns every disclosure of a member.
func (r *Repo) Disclosures(ctx context.Context, memberID int64) ([]models.Disclosure, error) {
	return r.queryDisclosures(ctx, `
		SELECT `+disclosureColumns+`
		FROM disclosures
		WHERE member_id = ?
		ORDER BY id ASC
	`, memberID)
}

func (r *Repo) queryDisclosures(ctx context.Context, sqlStr string, args ...any) ([]models.Disclosure, error) {
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("disclosures query: %w", err)
	}
	defer rows.Close()

	var out []models.Disclosure
	for rows.Next() {
		d, err := scanDisclosure(rows)
		if err != nil {
			return nil, fmt.Errorf("disclosures scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) CountDisclosures(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM disclosures`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count disclosures: %w", err)
	}
	return n, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
