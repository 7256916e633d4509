package bill

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

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db, Now: func() time.Time { return time.Now().UTC() }}
}

type Record struct {
	Number string
	Status string
	Title  string
}

// Upsert writes the given bills keyed on number and returns how many rows
// were written. Rows without a number are ignored. key_vote is always
// recomputed from KeyVotes.
func (r *Repo) Upsert(ctx context.Context, bills []Record) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bills (number, status, title, key_vote, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(number) DO UPDATE SET
		  status = excluded.status,
		  title = COALESCE(excluded.title, bills.title),
		  key_vote = excluded.key_vote,
		  updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	now := r.Now()
	n := 0
	for _, b := range bills {
		number := NormalizeNumber(b.Number)
		if number == "" {
			continue
		}
		var title any
		if t := strings.TrimSpace(b.Title); t != "" {
			title = t
		}
		if _, err := stmt.ExecContext(ctx, number, strings.TrimSpace(b.Status), title, IsKeyVote(number), now); err != nil {
			return 0, fmt.Errorf("exec upsert for %s: %w", number, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return n, nil
}

// Tracked returns up to limit bills, most recently updated first.
func (r *Repo) Tracked(ctx context.Context, limit int) ([]models.Bill, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, number, status, COALESCE(title, ''), key_vote, updated_at
		FROM bills
		ORDER BY updated_at DESC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("bills query: %w", err)
	}
	defer rows.Close()

	var out []models.Bill
	for rows.Next() {
		var b models.Bill
		if err := rows.Scan(&b.ID, &b.Number, &b.Status, &b.Title, &b.KeyVote, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("bills scan: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) GetByNumber(ctx context.Context, number string) (*models.Bill, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, number, status, COALESCE(title, ''), key_vote, updated_at
		FROM bills WHERE number = ?
	`, NormalizeNumber(number))

	var b models.Bill
	if err := row.Scan(&b.ID, &b.Number, &b.Status, &b.Title, &b.KeyVote, &b.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByNumber: %w", err)
	}
	return &b, nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM bills`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bills: %w", err)
	}
	return n, nil
}
