package analytics

import (
	"sort"
	"time"

	"supplychain-analytics/internal/model"
)

const recentRouteLimit = 20

// AggregateLogistics computes the logistics KPIs, per-region and per-state
// breakdowns, the delay/response-time series and the cost-vs-emission view
// for an already filtered record set. An empty input yields a report with
// zero KPIs and empty (non-nil) slices.
func AggregateLogistics(records []model.LogisticsRecord, groupBy model.GroupBy) model.LogisticsReport {
	report := model.LogisticsReport{
		ByRegion:     []model.LogisticsGroupMetric{},
		ByState:      []model.LogisticsGroupMetric{},
		Series:       []model.LogisticsSeriesPoint{},
		CostEmission: []model.CostEmissionPoint{},
		RecentRoutes: []model.LogisticsRecord{},
	}
	if len(records) == 0 {
		return report
	}

	n := float64(len(records))
	var sumActual, sumExpected, sumCost, sumCO2 float64
	var delayed int64
	actuals := make([]float64, 0, len(records))
	costs := make([]float64, 0, len(records))
	emissions := make([]float64, 0, len(records))

	byRegion := map[string]*logisticsAccumulator{}
	byState := map[string]*logisticsAccumulator{}
	series := map[time.Time]*logisticsAccumulator{}

	for _, rec := range records {
		sumActual += rec.ActualTime
		sumExpected += rec.ExpectedTime
		sumCost += rec.Cost
		sumCO2 += rec.CO2
		actuals = append(actuals, rec.ActualTime)
		costs = append(costs, rec.Cost)
		emissions = append(emissions, rec.CO2)
		if rec.Status == model.StatusDelayed {
			delayed++
		}

		accumulate(byRegion, rec.Region, rec)
		accumulate(byState, rec.State, rec)

		bucket := truncateBucket(rec.Date, groupBy)
		acc, ok := series[bucket]
		if !ok {
			acc = &logisticsAccumulator{}
			series[bucket] = acc
		}
		acc.add(rec)
	}

	avgExpected := sumExpected / n
	avgActual := sumActual / n

	report.KPIs = model.LogisticsKPIs{
		RecordCount:        int64(len(records)),
		AvgActualTime:      avgActual,
		MedianActualTime:   median(actuals),
		AvgExpectedTime:    avgExpected,
		TimeReductionPct:   safeDiv(avgExpected-avgActual, avgExpected) * 100,
		DelayRate:          safeDiv(float64(delayed), n),
		TotalCost:          sumCost,
		AvgCost:            sumCost / n,
		TotalCO2:           sumCO2,
		AvgCO2:             sumCO2 / n,
		CostCO2Correlation: pearson(costs, emissions),
	}

	report.ByRegion = flushLogisticsGroups(byRegion)
	report.ByState = flushLogisticsGroups(byState)
	report.Series = flushLogisticsSeries(series)
	report.CostEmission = costEmissionByRegion(byRegion)
	report.RecentRoutes = recentRoutes(records, recentRouteLimit)

	return report
}

type logisticsAccumulator struct {
	count       int64
	delayed     int64
	sumActual   float64
	sumExpected float64
	sumCost     float64
	sumCO2      float64
}

func (a *logisticsAccumulator) add(rec model.LogisticsRecord) {
	a.count++
	if rec.Status == model.StatusDelayed {
		a.delayed++
	}
	a.sumActual += rec.ActualTime
	a.sumExpected += rec.ExpectedTime
	a.sumCost += rec.Cost
	a.sumCO2 += rec.CO2
}

func accumulate(groups map[string]*logisticsAccumulator, key string, rec model.LogisticsRecord) {
	acc, ok := groups[key]
	if !ok {
		acc = &logisticsAccumulator{}
		groups[key] = acc
	}
	acc.add(rec)
}

func flushLogisticsGroups(groups map[string]*logisticsAccumulator) []model.LogisticsGroupMetric {
	out := make([]model.LogisticsGroupMetric, 0, len(groups))
	for key, acc := range groups {
		n := float64(acc.count)
		out = append(out, model.LogisticsGroupMetric{
			Key:           key,
			RecordCount:   acc.count,
			AvgActualTime: safeDiv(acc.sumActual, n),
			DelayRate:     safeDiv(float64(acc.delayed), n),
			TotalCost:     acc.sumCost,
			AvgCost:       safeDiv(acc.sumCost, n),
			TotalCO2:      acc.sumCO2,
			AvgCO2:        safeDiv(acc.sumCO2, n),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func flushLogisticsSeries(series map[time.Time]*logisticsAccumulator) []model.LogisticsSeriesPoint {
	out := make([]model.LogisticsSeriesPoint, 0, len(series))
	for bucket, acc := range series {
		n := float64(acc.count)
		out = append(out, model.LogisticsSeriesPoint{
			Bucket:          bucket,
			RecordCount:     acc.count,
			DelayRate:       safeDiv(float64(acc.delayed), n),
			AvgActualTime:   safeDiv(acc.sumActual, n),
			AvgExpectedTime: safeDiv(acc.sumExpected, n),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket.Before(out[j].Bucket) })
	return out
}

func costEmissionByRegion(groups map[string]*logisticsAccumulator) []model.CostEmissionPoint {
	out := make([]model.CostEmissionPoint, 0, len(groups))
	for region, acc := range groups {
		n := float64(acc.count)
		out = append(out, model.CostEmissionPoint{
			Region:  region,
			AvgCost: safeDiv(acc.sumCost, n),
			AvgCO2:  safeDiv(acc.sumCO2, n),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Region < out[j].Region })
	return out
}

// recentRoutes returns the latest records by date, newest first, for the
// route monitoring table. Ties keep input order so output stays stable.
func recentRoutes(records []model.LogisticsRecord, limit int) []model.LogisticsRecord {
	sorted := make([]model.LogisticsRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// AggregateInventory computes the inventory KPIs, breakdowns and the
// demand-vs-stock series for an already filtered record set.
func AggregateInventory(records []model.InventoryRecord, groupBy model.GroupBy) model.InventoryReport {
	report := model.InventoryReport{
		ByRegion:        []model.InventoryGroupMetric{},
		ByState:         []model.InventoryGroupMetric{},
		Series:          []model.InventorySeriesPoint{},
		LowStockRecords: []model.InventoryRecord{},
	}
	if len(records) == 0 {
		return report
	}

	n := float64(len(records))
	var sumDemand, sumMet, sumUnmet, sumStockOut, sumEnding, sumFulfillment float64
	var stockOutDays int64

	byRegion := map[string]*inventoryAccumulator{}
	byState := map[string]*inventoryAccumulator{}
	series := map[time.Time]*inventoryAccumulator{}

	for _, rec := range records {
		sumDemand += rec.DailyDemand
		sumMet += rec.DemandMet
		sumUnmet += rec.DemandUnmet
		sumStockOut += rec.StockOut
		sumEnding += rec.EndingStock
		sumFulfillment += rec.FulfillmentRate
		if rec.StockOut > 0 || rec.EndingStock <= 0 {
			stockOutDays++
		}

		accumulateInventory(byRegion, rec.Region, rec)
		accumulateInventory(byState, rec.State, rec)

		bucket := truncateBucket(rec.Date, groupBy)
		acc, ok := series[bucket]
		if !ok {
			acc = &inventoryAccumulator{}
			series[bucket] = acc
		}
		acc.add(rec)
	}

	report.KPIs = model.InventoryKPIs{
		RecordCount:        int64(len(records)),
		TotalDemand:        sumDemand,
		TotalDemandMet:     sumMet,
		TotalUnmetDemand:   sumUnmet,
		TotalStockOut:      sumStockOut,
		StockOutDays:       stockOutDays,
		AvgEndingStock:     sumEnding / n,
		AvgFulfillmentRate: sumFulfillment / n,
	}

	report.ByRegion = flushInventoryGroups(byRegion)
	report.ByState = flushInventoryGroups(byState)
	report.Series = flushInventorySeries(series)
	report.LowStockRecords = lowStockRecords(records, 30)

	return report
}

type inventoryAccumulator struct {
	count          int64
	sumDemand      float64
	sumStockOut    float64
	sumEnding      float64
	sumAvailable   float64
	sumFulfillment float64
	sumReplenish   float64
}

func (a *inventoryAccumulator) add(rec model.InventoryRecord) {
	a.count++
	a.sumDemand += rec.DailyDemand
	a.sumStockOut += rec.StockOut
	a.sumEnding += rec.EndingStock
	a.sumAvailable += rec.AvailableStock
	a.sumFulfillment += rec.FulfillmentRate
	a.sumReplenish += rec.Replenishment
}

func accumulateInventory(groups map[string]*inventoryAccumulator, key string, rec model.InventoryRecord) {
	acc, ok := groups[key]
	if !ok {
		acc = &inventoryAccumulator{}
		groups[key] = acc
	}
	acc.add(rec)
}

func flushInventoryGroups(groups map[string]*inventoryAccumulator) []model.InventoryGroupMetric {
	out := make([]model.InventoryGroupMetric, 0, len(groups))
	for key, acc := range groups {
		n := float64(acc.count)
		out = append(out, model.InventoryGroupMetric{
			Key:                key,
			RecordCount:        acc.count,
			TotalDemand:        acc.sumDemand,
			TotalStockOut:      acc.sumStockOut,
			StockOutPct:        safeDiv(acc.sumStockOut, acc.sumDemand) * 100,
			AvgFulfillmentRate: safeDiv(acc.sumFulfillment, n),
			AvgEndingStock:     safeDiv(acc.sumEnding, n),
			TotalReplenishment: acc.sumReplenish,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func flushInventorySeries(series map[time.Time]*inventoryAccumulator) []model.InventorySeriesPoint {
	out := make([]model.InventorySeriesPoint, 0, len(series))
	for bucket, acc := range series {
		n := float64(acc.count)
		out = append(out, model.InventorySeriesPoint{
			Bucket:            bucket,
			TotalDemand:       acc.sumDemand,
			AvgAvailableStock: safeDiv(acc.sumAvailable, n),
			AvgEndingStock:    safeDiv(acc.sumEnding, n),
			TotalStockOut:     acc.sumStockOut,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket.Before(out[j].Bucket) })
	return out
}

func lowStockRecords(records []model.InventoryRecord, limit int) []model.InventoryRecord {
	flagged := make([]model.InventoryRecord, 0, len(records))
	for _, rec := range records {
		if rec.LowStock || rec.StockOut > 0 || rec.EndingStock <= 0 {
			flagged = append(flagged, rec)
		}
	}
	sort.SliceStable(flagged, func(i, j int) bool { return flagged[i].Date.After(flagged[j].Date) })
	if len(flagged) > limit {
		flagged = flagged[:limit]
	}
	return flagged
}

// truncateBucket floors t to the start of its day, or to Monday of its week
// for weekly series. Buckets are UTC.
func truncateBucket(t time.Time, groupBy model.GroupBy) time.Time {
	day := t.UTC().Truncate(24 * time.Hour)
	if groupBy != model.GroupByWeek {
		return day
	}
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
