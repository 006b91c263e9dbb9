package analytics

import "supplychain-analytics/internal/model"

// Evaluator derives alert flags from individual records. The low-stock
// threshold is the fraction of available stock below which ending stock is
// flagged; it comes from configuration, not from code.
type Evaluator struct {
	// LowStockThreshold is a fraction in (0, 1].
	LowStockThreshold float64
	// DelayFromTimes forces the actual-vs-expected comparison even when the
	// source supplied a status. By default the raw status is authoritative
	// and the comparison is only a fallback for records without one.
	DelayFromTimes bool
}

func NewEvaluator(lowStockThreshold float64, delayFromTimes bool) Evaluator {
	return Evaluator{LowStockThreshold: lowStockThreshold, DelayFromTimes: delayFromTimes}
}

func (e Evaluator) EvaluateLogistics(rec model.LogisticsRecord) []model.AlertKind {
	if e.isDelayed(rec) {
		return []model.AlertKind{model.AlertDelayed}
	}
	return nil
}

func (e Evaluator) isDelayed(rec model.LogisticsRecord) bool {
	if !e.DelayFromTimes {
		switch rec.Status {
		case model.StatusDelayed:
			return true
		case model.StatusDelivered:
			return false
		}
	}
	return rec.ActualTime > rec.ExpectedTime
}

func (e Evaluator) EvaluateInventory(rec model.InventoryRecord) []model.AlertKind {
	var kinds []model.AlertKind
	if rec.StockOut > 0 || rec.EndingStock <= 0 {
		kinds = append(kinds, model.AlertStockOut)
	}
	if e.isLowStock(rec) {
		kinds = append(kinds, model.AlertLowStock)
	}
	return kinds
}

func (e Evaluator) isLowStock(rec model.InventoryRecord) bool {
	if rec.LowStock {
		return true
	}
	if rec.AvailableStock <= 0 {
		return false
	}
	return safeDiv(rec.EndingStock, rec.AvailableStock) < e.LowStockThreshold
}

// CountLogistics tallies alert kinds over a record set for dashboard-level
// summaries.
func (e Evaluator) CountLogistics(records []model.LogisticsRecord) model.AlertCounts {
	var counts model.AlertCounts
	for _, rec := range records {
		for _, kind := range e.EvaluateLogistics(rec) {
			counts = bump(counts, kind)
		}
	}
	return counts
}

func (e Evaluator) CountInventory(records []model.InventoryRecord) model.AlertCounts {
	var counts model.AlertCounts
	for _, rec := range records {
		for _, kind := range e.EvaluateInventory(rec) {
			counts = bump(counts, kind)
		}
	}
	return counts
}

func bump(counts model.AlertCounts, kind model.AlertKind) model.AlertCounts {
	switch kind {
	case model.AlertDelayed:
		counts.Delayed++
	case model.AlertStockOut:
		counts.StockOut++
	case model.AlertLowStock:
		counts.LowStock++
	}
	return counts
}
