package member

import (
	"context"
	"fmt"
	"strings"

	"integritywatch/pkg/database"
	"integritywatch/pkg/models"
)

// InsertTrade stores t, skipping an existing (member, symbol, date) row.
func (r *Repo) InsertTrade(ctx context.Context, t models.TradeEvent) (inserted bool, err error) {
	symbol := strings.ToUpper(strings.TrimSpace(t.Symbol))
	if symbol == "" {
		return false, fmt.Errorf("insert trade for member %d: empty symbol", t.MemberID)
	}
	if t.Direction != models.Buy && t.Direction != models.Sell {
		return false, fmt.Errorf("insert trade for member %d: bad direction %q", t.MemberID, t.Direction)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO trade_events (member_id, symbol, direction, trade_date, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.MemberID, symbol, string(t.Direction), dateOnly(t.TradeDate), r.Now())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert trade for member %d: %w", t.MemberID, err)
	}
	return true, nil
}

// RecentTrades returns at most limit trades, newest first.
func (r *Repo) RecentTrades(ctx context.Context, memberID int64, limit int) ([]models.TradeEvent, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, member_id, symbol, direction, trade_date, created_at
		FROM trade_events
		WHERE member_id = ?
		ORDER BY trade_date DESC, id DESC
		LIMIT ?
	`, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("trades query: %w", err)
	}
	defer rows.Close()

	var out []models.TradeEvent
	for rows.Next() {
		var t models.TradeEvent
		if err := rows.Scan(&t.ID, &t.MemberID, &t.Symbol, &t.Direction, &t.TradeDate, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("trades scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// DistinctSymbols lists every tracked ticker.
func (r *Repo) DistinctSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT DISTINCT symbol FROM trade_events ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("distinct symbols: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) CountTrades(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM trade_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count trades: %w", err)
	}
	return n, nil
}
