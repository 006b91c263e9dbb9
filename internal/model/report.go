package model

import "time"

type AlertKind string

const (
	AlertDelayed  AlertKind = "delayed"
	AlertStockOut AlertKind = "stock_out"
	AlertLowStock AlertKind = "low_stock"
)

type AlertCounts struct {
	Delayed  int64 `json:"delayed"`
	StockOut int64 `json:"stock_out"`
	LowStock int64 `json:"low_stock"`
}

func (c AlertCounts) Total() int64 {
	return c.Delayed + c.StockOut + c.LowStock
}

// LogisticsKPIs are the scalar metrics of the logistics dashboard tab.
// Means and rates over an empty record set are zero, never NaN.
type LogisticsKPIs struct {
	RecordCount        int64   `json:"record_count"`
	AvgActualTime      float64 `json:"avg_actual_time"`
	MedianActualTime   float64 `json:"median_actual_time"`
	AvgExpectedTime    float64 `json:"avg_expected_time"`
	TimeReductionPct   float64 `json:"time_reduction_pct"`
	DelayRate          float64 `json:"delay_rate"`
	TotalCost          float64 `json:"total_cost"`
	AvgCost            float64 `json:"avg_cost"`
	TotalCO2           float64 `json:"total_co2"`
	AvgCO2             float64 `json:"avg_co2"`
	CostCO2Correlation float64 `json:"cost_co2_correlation"`
}

// LogisticsGroupMetric is a per-region or per-state rollup.
type LogisticsGroupMetric struct {
	Key           string  `json:"key"`
	RecordCount   int64   `json:"record_count"`
	AvgActualTime float64 `json:"avg_actual_time"`
	DelayRate     float64 `json:"delay_rate"`
	TotalCost     float64 `json:"total_cost"`
	AvgCost       float64 `json:"avg_cost"`
	TotalCO2      float64 `json:"total_co2"`
	AvgCO2        float64 `json:"avg_co2"`
}

type LogisticsSeriesPoint struct {
	Bucket          time.Time `json:"bucket"`
	RecordCount     int64     `json:"record_count"`
	DelayRate       float64   `json:"delay_rate"`
	AvgActualTime   float64   `json:"avg_actual_time"`
	AvgExpectedTime float64   `json:"avg_expected_time"`
}

// CostEmissionPoint is one region of the cost-vs-emission correlation view.
type CostEmissionPoint struct {
	Region  string  `json:"region"`
	AvgCost float64 `json:"avg_cost"`
	AvgCO2  float64 `json:"avg_co2"`
}

// LogisticsReport is the aggregate result for the logistics dataset. It is a
// value: produced once per distinct filter and never mutated afterwards.
type LogisticsReport struct {
	KPIs         LogisticsKPIs          `json:"kpis"`
	ByRegion     []LogisticsGroupMetric `json:"by_region"`
	ByState      []LogisticsGroupMetric `json:"by_state"`
	Series       []LogisticsSeriesPoint `json:"series"`
	CostEmission []CostEmissionPoint    `json:"cost_emission"`
	RecentRoutes []LogisticsRecord      `json:"recent_routes"`
	DroppedRows  int                    `json:"dropped_rows"`
}

type InventoryKPIs struct {
	RecordCount        int64   `json:"record_count"`
	TotalDemand        float64 `json:"total_demand"`
	TotalDemandMet     float64 `json:"total_demand_met"`
	TotalUnmetDemand   float64 `json:"total_unmet_demand"`
	TotalStockOut      float64 `json:"total_stock_out"`
	StockOutDays       int64   `json:"stock_out_days"`
	AvgEndingStock     float64 `json:"avg_ending_stock"`
	AvgFulfillmentRate float64 `json:"avg_fulfillment_rate"`
}

type InventoryGroupMetric struct {
	Key                string  `json:"key"`
	RecordCount        int64   `json:"record_count"`
	TotalDemand        float64 `json:"total_demand"`
	TotalStockOut      float64 `json:"total_stock_out"`
	StockOutPct        float64 `json:"stock_out_pct"`
	AvgFulfillmentRate float64 `json:"avg_fulfillment_rate"`
	AvgEndingStock     float64 `json:"avg_ending_stock"`
	TotalReplenishment float64 `json:"total_replenishment"`
}

type InventorySeriesPoint struct {
	Bucket            time.Time `json:"bucket"`
	TotalDemand       float64   `json:"total_demand"`
	AvgAvailableStock float64   `json:"avg_available_stock"`
	AvgEndingStock    float64   `json:"avg_ending_stock"`
	TotalStockOut     float64   `json:"total_stock_out"`
}

type InventoryReport struct {
	KPIs            InventoryKPIs          `json:"kpis"`
	ByRegion        []InventoryGroupMetric `json:"by_region"`
	ByState         []InventoryGroupMetric `json:"by_state"`
	Series          []InventorySeriesPoint `json:"series"`
	LowStockRecords []InventoryRecord      `json:"low_stock_records"`
	DroppedRows     int                    `json:"dropped_rows"`
}

// LogisticsView is what the query interface hands the presentation layer:
// the aggregate result plus alert counts and the range actually applied.
type LogisticsView struct {
	Report       LogisticsReport `json:"report"`
	Alerts       AlertCounts     `json:"alerts"`
	GeneratedFor DateRange       `json:"generated_for"`
}

type InventoryView struct {
	Report       InventoryReport `json:"report"`
	Alerts       AlertCounts     `json:"alerts"`
	GeneratedFor DateRange       `json:"generated_for"`
}

// DashboardView bundles both datasets for the combined dashboard endpoint.
type DashboardView struct {
	Logistics    LogisticsView `json:"logistics"`
	Inventory    InventoryView `json:"inventory"`
	GeneratedFor DateRange     `json:"generated_for"`
}
