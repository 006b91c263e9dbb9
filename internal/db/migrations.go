package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS logistics (
		id BIGSERIAL PRIMARY KEY,
		route_id TEXT NOT NULL,
		date DATE NOT NULL,
		region TEXT NOT NULL,
		state TEXT NOT NULL,
		status TEXT NOT NULL,
		expected_time DOUBLE PRECISION NOT NULL,
		actual_time DOUBLE PRECISION NOT NULL,
		cost DOUBLE PRECISION NOT NULL,
		co2 DOUBLE PRECISION NOT NULL,
		imported_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS inventory (
		id BIGSERIAL PRIMARY KEY,
		date DATE NOT NULL,
		state TEXT NOT NULL,
		region TEXT NOT NULL,
		daily_demand DOUBLE PRECISION NOT NULL,
		demand_met DOUBLE PRECISION NOT NULL,
		demand_unmet DOUBLE PRECISION NOT NULL,
		available_stock DOUBLE PRECISION NOT NULL,
		ending_stock DOUBLE PRECISION NOT NULL,
		stock_out DOUBLE PRECISION NOT NULL,
		replenishment DOUBLE PRECISION NOT NULL,
		fulfillment_rate DOUBLE PRECISION NOT NULL,
		low_stock BOOLEAN NOT NULL DEFAULT FALSE,
		imported_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_logistics_date ON logistics (date);`,
	`CREATE INDEX IF NOT EXISTS idx_logistics_region_state ON logistics (region, state);`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_date ON inventory (date);`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_region_state ON inventory (region, state);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
