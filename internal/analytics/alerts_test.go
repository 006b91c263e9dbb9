package analytics

import (
	"testing"

	"supplychain-analytics/internal/model"
)

func TestEvaluatorLowStockThreshold(t *testing.T) {
	evaluator := NewEvaluator(0.1, false)

	tests := []struct {
		name string
		rec  model.InventoryRecord
		want bool
	}{
		{"BelowThreshold", model.InventoryRecord{AvailableStock: 100, EndingStock: 5}, true},
		{"AboveThreshold", model.InventoryRecord{AvailableStock: 100, EndingStock: 20}, false},
		{"ExactlyAtThreshold", model.InventoryRecord{AvailableStock: 100, EndingStock: 10}, false},
		{"FlaggedBySource", model.InventoryRecord{AvailableStock: 100, EndingStock: 50, LowStock: true}, true},
		{"NoAvailableStock", model.InventoryRecord{AvailableStock: 0, EndingStock: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kinds := evaluator.EvaluateInventory(tt.rec)
			got := containsKind(kinds, model.AlertLowStock)
			if got != tt.want {
				t.Errorf("low stock alert = %v, want %v (kinds %v)", got, tt.want, kinds)
			}
		})
	}
}

func TestEvaluatorStockOut(t *testing.T) {
	evaluator := NewEvaluator(0.2, false)

	tests := []struct {
		name string
		rec  model.InventoryRecord
		want bool
	}{
		{"StockOutQuantity", model.InventoryRecord{StockOut: 5, AvailableStock: 100, EndingStock: 50}, true},
		{"ZeroEndingStock", model.InventoryRecord{AvailableStock: 100, EndingStock: 0}, true},
		{"NegativeEndingStock", model.InventoryRecord{AvailableStock: 100, EndingStock: -3}, true},
		{"Healthy", model.InventoryRecord{AvailableStock: 100, EndingStock: 60}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kinds := evaluator.EvaluateInventory(tt.rec)
			got := containsKind(kinds, model.AlertStockOut)
			if got != tt.want {
				t.Errorf("stock out alert = %v, want %v (kinds %v)", got, tt.want, kinds)
			}
		})
	}
}

func TestEvaluatorDelayed(t *testing.T) {
	tests := []struct {
		name           string
		delayFromTimes bool
		rec            model.LogisticsRecord
		want           bool
	}{
		{"StatusDelayedAuthoritative", false, model.LogisticsRecord{Status: model.StatusDelayed, ExpectedTime: 60, ActualTime: 50}, true},
		{"StatusDeliveredAuthoritative", false, model.LogisticsRecord{Status: model.StatusDelivered, ExpectedTime: 60, ActualTime: 90}, false},
		{"MissingStatusFallsBackToTimes", false, model.LogisticsRecord{Status: model.StatusUnknown, ExpectedTime: 60, ActualTime: 90}, true},
		{"MissingStatusOnTime", false, model.LogisticsRecord{Status: model.StatusUnknown, ExpectedTime: 60, ActualTime: 50}, false},
		{"PolicyForcesTimeComparison", true, model.LogisticsRecord{Status: model.StatusDelivered, ExpectedTime: 60, ActualTime: 90}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evaluator := NewEvaluator(0.2, tt.delayFromTimes)
			kinds := evaluator.EvaluateLogistics(tt.rec)
			got := containsKind(kinds, model.AlertDelayed)
			if got != tt.want {
				t.Errorf("delayed alert = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlertCounts(t *testing.T) {
	evaluator := NewEvaluator(0.1, false)

	logistics := []model.LogisticsRecord{
		{Status: model.StatusDelayed},
		{Status: model.StatusDelivered},
		{Status: model.StatusDelayed},
	}
	counts := evaluator.CountLogistics(logistics)
	if counts.Delayed != 2 {
		t.Errorf("delayed count = %d, want 2", counts.Delayed)
	}

	inventory := []model.InventoryRecord{
		{AvailableStock: 100, EndingStock: 5},               // low stock
		{AvailableStock: 100, EndingStock: 0},               // stock out and low stock
		{AvailableStock: 100, EndingStock: 50},              // healthy
		{AvailableStock: 100, EndingStock: 40, StockOut: 3}, // stock out
	}
	invCounts := evaluator.CountInventory(inventory)
	if invCounts.StockOut != 2 {
		t.Errorf("stock out count = %d, want 2", invCounts.StockOut)
	}
	if invCounts.LowStock != 2 {
		t.Errorf("low stock count = %d, want 2", invCounts.LowStock)
	}
	if got := invCounts.Total(); got != 4 {
		t.Errorf("total alerts = %d, want 4", got)
	}
}

func containsKind(kinds []model.AlertKind, kind model.AlertKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
