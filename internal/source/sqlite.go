package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"supplychain-analytics/internal/model"
)

// SQLiteSource serves records from the single-file database the import
// notebook writes. Tables follow the external contract: logistics and
// inventory with the column names from the table schema.
type SQLiteSource struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewSQLiteSource(path string, log zerolog.Logger) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite %s: %v", ErrSourceUnavailable, path, err)
	}
	return &SQLiteSource{db: db, log: log.With().Str("source", "sqlite").Logger()}, nil
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) Logistics(ctx context.Context) ([]model.LogisticsRecord, int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT route_id, date, region, state, status, expected_time, actual_time, cost, co2
		FROM logistics`)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: query logistics: %v", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var records []model.LogisticsRecord
	dropped := 0
	for rows.Next() {
		var rec model.LogisticsRecord
		var date, status string
		if err := rows.Scan(&rec.RouteID, &date, &rec.Region, &rec.State, &status,
			&rec.ExpectedTime, &rec.ActualTime, &rec.Cost, &rec.CO2); err != nil {
			dropped++
			s.log.Warn().Err(err).Msg("dropping unreadable logistics row")
			continue
		}
		rec.Date, err = parseDate(date)
		if err == nil {
			rec.Status = NormalizeStatus(status)
			err = ValidateLogistics(&rec)
		}
		if err != nil {
			dropped++
			if err != errSkipRow {
				s.log.Warn().Err(err).Str("route_id", rec.RouteID).Msg("dropping malformed logistics row")
			}
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterate logistics: %v", ErrSourceUnavailable, err)
	}
	return records, dropped, nil
}

func (s *SQLiteSource) Inventory(ctx context.Context) ([]model.InventoryRecord, int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, state, region, daily_demand, demand_met, demand_unmet,
		       available_stock, ending_stock, stock_out, replenishment, fulfillment_rate, low_stock
		FROM inventory`)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: query inventory: %v", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var records []model.InventoryRecord
	dropped := 0
	for rows.Next() {
		var rec model.InventoryRecord
		var date string
		if err := rows.Scan(&date, &rec.State, &rec.Region, &rec.DailyDemand, &rec.DemandMet,
			&rec.DemandUnmet, &rec.AvailableStock, &rec.EndingStock, &rec.StockOut,
			&rec.Replenishment, &rec.FulfillmentRate, &rec.LowStock); err != nil {
			dropped++
			s.log.Warn().Err(err).Msg("dropping unreadable inventory row")
			continue
		}
		rec.Date, err = parseDate(date)
		if err == nil {
			err = ValidateInventory(&rec)
		}
		if err != nil {
			dropped++
			s.log.Warn().Err(err).Str("state", rec.State).Msg("dropping malformed inventory row")
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterate inventory: %v", ErrSourceUnavailable, err)
	}
	return records, dropped, nil
}

// Version combines row counts and max dates of both tables; the notebook
// only ever appends or rewrites wholesale, so this changes on every import.
func (s *SQLiteSource) Version(ctx context.Context) (string, error) {
	var version string
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM logistics) || ':' || (SELECT COALESCE(MAX(date), '') FROM logistics)
		       || '/' ||
		       (SELECT COUNT(*) FROM inventory) || ':' || (SELECT COALESCE(MAX(date), '') FROM inventory)`).
		Scan(&version)
	if err != nil {
		return "", fmt.Errorf("%w: version query: %v", ErrSourceUnavailable, err)
	}
	return version, nil
}
