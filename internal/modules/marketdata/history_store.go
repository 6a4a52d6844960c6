package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/aristath/varengine/internal/database"
	"github.com/rs/zerolog"
)

// HistoryStore persists daily close prices in the history database.
type HistoryStore struct {
	db  *database.DB
	log zerolog.Logger
}

// NewHistoryStore creates a store over an already migrated history database.
func NewHistoryStore(db *database.DB, log zerolog.Logger) *HistoryStore {
	return &HistoryStore{
		db:  db,
		log: log.With().Str("component", "history_store").Logger(),
	}
}

// SavePrices upserts every non-missing cell of the table and records the
// sync run. It returns the number of prices written.
func (s *HistoryStore) SavePrices(ctx context.Context, table *PriceTable, source string) (int, error) {
	written := 0
	now := time.Now().Unix()

	err := database.WithTransaction(s.db.Conn(), func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO daily_prices (symbol, date, close, source, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(symbol, date) DO UPDATE SET
				close = excluded.close,
				source = excluded.source,
				updated_at = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for i, row := range table.Rows {
			date := truncateDay(table.Dates[i]).Unix()
			for j, v := range row {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					continue
				}
				if _, err := stmt.ExecContext(ctx, table.Symbols[j], date, v, source, now); err != nil {
					return fmt.Errorf("failed to upsert %s: %w", table.Symbols[j], err)
				}
				written++
			}
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO sync_runs (source, rows_written, finished_at) VALUES (?, ?, ?)",
			source, written, now)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.Debug().Int("prices", written).Str("source", source).Msg("Saved prices")
	return written, nil
}

// LoadPrices implements Source.
func (s *HistoryStore) LoadPrices(ctx context.Context, symbols []string, from, to time.Time) (*PriceTable, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols requested")
	}

	query := `
		SELECT symbol, date, close
		FROM daily_prices
		WHERE symbol IN (?` + strings.Repeat(", ?", len(symbols)-1) + `)
	`
	args := make([]any, 0, len(symbols)+2)
	for _, sym := range symbols {
		args = append(args, sym)
	}
	if !from.IsZero() {
		query += " AND date >= ?"
		args = append(args, truncateDay(from).Unix())
	}
	if !to.IsZero() {
		query += " AND date <= ?"
		args = append(args, truncateDay(to).Unix())
	}
	query += " ORDER BY date ASC"

	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	col := make(map[string]int, len(symbols))
	for j, sym := range symbols {
		col[sym] = j
	}

	var (
		dates  []time.Time
		values = map[int64][]float64{}
	)
	for rows.Next() {
		var (
			symbol   string
			dateUnix int64
			closePx  float64
		)
		if err := rows.Scan(&symbol, &dateUnix, &closePx); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}

		row, ok := values[dateUnix]
		if !ok {
			row = make([]float64, len(symbols))
			for j := range row {
				row[j] = math.NaN()
			}
			values[dateUnix] = row
			dates = append(dates, time.Unix(dateUnix, 0).UTC())
		}
		row[col[symbol]] = closePx
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}

	table := &PriceTable{
		Dates:   dates,
		Symbols: append([]string(nil), symbols...),
		Rows:    make([][]float64, len(dates)),
	}
	for i, d := range dates {
		table.Rows[i] = values[d.Unix()]
	}
	return table, nil
}

// Symbols lists every symbol with stored prices.
func (s *HistoryStore) Symbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.Conn().QueryContext(ctx, "SELECT DISTINCT symbol FROM daily_prices")
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Strings(symbols)
	return symbols, nil
}

// LastSync returns the finish time of the most recent price sync, or the zero
// time when none has run.
func (s *HistoryStore) LastSync(ctx context.Context) (time.Time, error) {
	var finished sql.NullInt64
	err := s.db.Conn().QueryRowContext(ctx, "SELECT MAX(finished_at) FROM sync_runs").Scan(&finished)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query last sync: %w", err)
	}
	if !finished.Valid {
		return time.Time{}, nil
	}
	return time.Unix(finished.Int64, 0).UTC(), nil
}
