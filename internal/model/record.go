package model

import "time"

type Dataset string

const (
	DatasetLogistics Dataset = "logistics"
	DatasetInventory Dataset = "inventory"
)

type DeliveryStatus string

const (
	StatusDelivered DeliveryStatus = "delivered"
	StatusDelayed   DeliveryStatus = "delayed"
	// StatusInTransit rows are historical noise and are dropped at the
	// source boundary; they never reach the aggregation engine.
	StatusInTransit DeliveryStatus = "in_transit"
	StatusUnknown   DeliveryStatus = ""
)

// LogisticsRecord is a single distribution event as exposed by the
// logistics table contract: logistics(route_id, date, region, state,
// status, expected_time, actual_time, cost, co2).
type LogisticsRecord struct {
	RouteID      string         `json:"route_id"`
	Date         time.Time      `json:"date"`
	Region       string         `json:"region"`
	State        string         `json:"state"`
	Status       DeliveryStatus `json:"status"`
	ExpectedTime float64        `json:"expected_time"`
	ActualTime   float64        `json:"actual_time"`
	Cost         float64        `json:"cost"`
	CO2          float64        `json:"co2"`
}

// InventoryRecord is a daily inventory/demand snapshot per state.
// Invariant (validated at the source boundary): DemandMet + DemandUnmet
// equals DailyDemand within floating-point tolerance.
type InventoryRecord struct {
	Date            time.Time `json:"date"`
	State           string    `json:"state"`
	Region          string    `json:"region"`
	DailyDemand     float64   `json:"daily_demand"`
	DemandMet       float64   `json:"demand_met"`
	DemandUnmet     float64   `json:"demand_unmet"`
	AvailableStock  float64   `json:"available_stock"`
	EndingStock     float64   `json:"ending_stock"`
	StockOut        float64   `json:"stock_out"`
	Replenishment   float64   `json:"replenishment"`
	FulfillmentRate float64   `json:"fulfillment_rate"`
	LowStock        bool      `json:"low_stock"`
}
