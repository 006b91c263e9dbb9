package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"supplychain-analytics/internal/model"
)

// errSkipRow marks rows that are well-formed but out of scope, such as
// in-transit deliveries that are not historical data yet.
var errSkipRow = fmt.Errorf("row skipped")

const demandTolerance = 1e-6

// Legacy exports from the upstream warehouse still carry the original
// Portuguese column names; both spellings are honored.
var headerAliases = map[string]string{
	"rota_id":                 "route_id",
	"data":                    "date",
	"regiao":                  "region",
	"estado":                  "state",
	"tempo_resposta_previsto": "expected_time",
	"tempo_resposta_real":     "actual_time",
	"custo_logistico_usd":     "cost",
	"emissao_co2_kg":          "co2",
	"demanda_diaria":          "daily_demand",
	"demanda_atendida":        "demand_met",
	"demanda_nao_atendida":    "demand_unmet",
	"estoque_disponivel":      "available_stock",
	"estoque_final":           "ending_stock",
	"reabastecimento":         "replenishment",
	"taxa_atendimento":        "fulfillment_rate",
	"indicador_estoque_baixo": "low_stock",
	"indicador_stock_out":     "stock_out_flag",
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := headerAliases[name]; ok {
		return canonical
	}
	return name
}

// NormalizeStatus maps raw status values, including the legacy Portuguese
// ones, onto the delivery status enum.
func NormalizeStatus(raw string) model.DeliveryStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "delivered", "entregue":
		return model.StatusDelivered
	case "delayed", "atrasado":
		return model.StatusDelayed
	case "in_transit", "em rota", "em_rota":
		return model.StatusInTransit
	default:
		return model.StatusUnknown
	}
}

// ValidateLogistics checks a decoded record against the schema invariants.
// In-transit rows return errSkipRow.
func ValidateLogistics(rec *model.LogisticsRecord) error {
	if rec.Status == model.StatusInTransit {
		return errSkipRow
	}
	if rec.RouteID == "" {
		return fmt.Errorf("missing route_id")
	}
	if rec.Date.IsZero() {
		return fmt.Errorf("missing date")
	}
	if rec.Region == "" || rec.State == "" {
		return fmt.Errorf("missing region or state")
	}
	if rec.ExpectedTime < 0 || rec.ActualTime < 0 {
		return fmt.Errorf("negative response time")
	}
	if !isFinite(rec.ExpectedTime, rec.ActualTime, rec.Cost, rec.CO2) {
		return fmt.Errorf("non-finite value")
	}
	return nil
}

// ValidateInventory checks the demand identity and normalizes the
// fulfillment rate to the met/demand fraction, recomputing it so the stored
// value always honors the invariant (0 when daily demand is 0).
func ValidateInventory(rec *model.InventoryRecord) error {
	if rec.Date.IsZero() {
		return fmt.Errorf("missing date")
	}
	if rec.Region == "" || rec.State == "" {
		return fmt.Errorf("missing region or state")
	}
	if rec.DailyDemand < 0 || rec.DemandMet < 0 || rec.DemandUnmet < 0 {
		return fmt.Errorf("negative demand")
	}
	if !isFinite(rec.DailyDemand, rec.DemandMet, rec.DemandUnmet, rec.AvailableStock, rec.EndingStock, rec.StockOut, rec.Replenishment) {
		return fmt.Errorf("non-finite value")
	}
	tolerance := demandTolerance * math.Max(1, rec.DailyDemand)
	if math.Abs(rec.DemandMet+rec.DemandUnmet-rec.DailyDemand) > tolerance {
		return fmt.Errorf("demand met %v + unmet %v != daily %v", rec.DemandMet, rec.DemandUnmet, rec.DailyDemand)
	}
	if rec.DailyDemand > 0 {
		rec.FulfillmentRate = rec.DemandMet / rec.DailyDemand
	} else {
		rec.FulfillmentRate = 0
	}
	return nil
}

func isFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// rowReader exposes one textual row by canonical column name. CSV-shaped
// backends (files, S3 objects) share it.
type rowReader struct {
	index  map[string]int
	fields []string
}

func newHeaderIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[normalizeHeader(name)] = i
	}
	return index
}

func (r rowReader) text(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r rowReader) float(col string) (float64, error) {
	raw := r.text(col)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return v, nil
}

func (r rowReader) flag(col string) bool {
	switch strings.ToLower(r.text(col)) {
	case "1", "true", "t", "yes":
		return true
	default:
		return false
	}
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

func (r rowReader) date(col string) (time.Time, error) {
	t, err := parseDate(r.text(col))
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", col, err)
	}
	return t, nil
}

func decodeLogisticsRow(r rowReader) (model.LogisticsRecord, error) {
	date, err := r.date("date")
	if err != nil {
		return model.LogisticsRecord{}, err
	}
	rec := model.LogisticsRecord{
		RouteID: r.text("route_id"),
		Date:    date,
		Region:  r.text("region"),
		State:   r.text("state"),
		Status:  NormalizeStatus(r.text("status")),
	}
	if rec.ExpectedTime, err = r.float("expected_time"); err != nil {
		return model.LogisticsRecord{}, err
	}
	if rec.ActualTime, err = r.float("actual_time"); err != nil {
		return model.LogisticsRecord{}, err
	}
	if rec.Cost, err = r.float("cost"); err != nil {
		return model.LogisticsRecord{}, err
	}
	if rec.CO2, err = r.float("co2"); err != nil {
		return model.LogisticsRecord{}, err
	}
	if err := ValidateLogistics(&rec); err != nil {
		return model.LogisticsRecord{}, err
	}
	return rec, nil
}

func decodeInventoryRow(r rowReader) (model.InventoryRecord, error) {
	date, err := r.date("date")
	if err != nil {
		return model.InventoryRecord{}, err
	}
	rec := model.InventoryRecord{
		Date:     date,
		State:    r.text("state"),
		Region:   r.text("region"),
		LowStock: r.flag("low_stock"),
	}
	if rec.DailyDemand, err = r.float("daily_demand"); err != nil {
		return model.InventoryRecord{}, err
	}
	if rec.DemandMet, err = r.float("demand_met"); err != nil {
		return model.InventoryRecord{}, err
	}
	if rec.DemandUnmet, err = r.float("demand_unmet"); err != nil {
		return model.InventoryRecord{}, err
	}
	if rec.AvailableStock, err = r.float("available_stock"); err != nil {
		return model.InventoryRecord{}, err
	}
	if rec.EndingStock, err = r.float("ending_stock"); err != nil {
		return model.InventoryRecord{}, err
	}
	if rec.StockOut, err = r.float("stock_out"); err != nil {
		return model.InventoryRecord{}, err
	}
	if rec.Replenishment, err = r.float("replenishment"); err != nil {
		return model.InventoryRecord{}, err
	}
	if err := ValidateInventory(&rec); err != nil {
		return model.InventoryRecord{}, err
	}
	return rec, nil
}
