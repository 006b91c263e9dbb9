package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"supplychain-analytics/internal/analytics"
	"supplychain-analytics/internal/cache"
	"supplychain-analytics/internal/model"
	"supplychain-analytics/internal/source"
)

type stubSource struct {
	logistics      []model.LogisticsRecord
	inventory      []model.InventoryRecord
	dropped        int
	version        string
	err            error
	logisticsCalls int32
	inventoryCalls int32
}

func (s *stubSource) Logistics(ctx context.Context) ([]model.LogisticsRecord, int, error) {
	atomic.AddInt32(&s.logisticsCalls, 1)
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.logistics, s.dropped, nil
}

func (s *stubSource) Inventory(ctx context.Context) ([]model.InventoryRecord, int, error) {
	atomic.AddInt32(&s.inventoryCalls, 1)
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.inventory, s.dropped, nil
}

func (s *stubSource) Version(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.version, nil
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

var testPrincipal = model.Principal{UserID: "u-1", Role: model.RoleAnalyst}

func newTestService(src source.Source, clock func() time.Time) *QueryService {
	resultCache := cache.NewWithClock(60*time.Second, clock)
	evaluator := analytics.NewEvaluator(0.1, false)
	return NewQueryService(src, resultCache, evaluator, 30, 365, zerolog.Nop())
}

func janSpec() model.FilterSpec {
	return model.FilterSpec{Range: model.DateRange{From: date("2024-01-01"), To: date("2024-01-31")}}
}

func TestLogisticsQueryComputesAndCaches(t *testing.T) {
	src := &stubSource{
		logistics: []model.LogisticsRecord{
			{RouteID: "R1", Date: date("2024-01-01"), Region: "South", State: "SP", Status: model.StatusDelayed, ExpectedTime: 60, ActualTime: 90},
			{RouteID: "R2", Date: date("2024-01-01"), Region: "North", State: "AM", Status: model.StatusDelivered, ExpectedTime: 60, ActualTime: 50},
		},
		dropped: 3,
		version: "v1",
	}
	svc := newTestService(src, time.Now)

	first, err := svc.Logistics(context.Background(), testPrincipal, janSpec())
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if first.Report.KPIs.DelayRate != 0.5 {
		t.Errorf("delay rate = %v, want 0.5", first.Report.KPIs.DelayRate)
	}
	if first.Report.DroppedRows != 3 {
		t.Errorf("dropped rows = %d, want 3", first.Report.DroppedRows)
	}
	if first.Alerts.Delayed != 1 {
		t.Errorf("delayed alerts = %d, want 1", first.Alerts.Delayed)
	}

	second, err := svc.Logistics(context.Background(), testPrincipal, janSpec())
	if err != nil {
		t.Fatalf("second query failed: %v", err)
	}
	if second != first {
		t.Error("second call within TTL did not return the cached result")
	}
	if got := atomic.LoadInt32(&src.logisticsCalls); got != 1 {
		t.Errorf("source fetched %d times, want 1", got)
	}
}

func TestLogisticsQueryExpiryRecomputes(t *testing.T) {
	src := &stubSource{version: "v1"}
	now := date("2024-06-01")
	clock := func() time.Time { return now }
	svc := newTestService(src, clock)

	if _, err := svc.Logistics(context.Background(), testPrincipal, janSpec()); err != nil {
		t.Fatal(err)
	}
	now = now.Add(61 * time.Second)
	if _, err := svc.Logistics(context.Background(), testPrincipal, janSpec()); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&src.logisticsCalls); got != 2 {
		t.Errorf("source fetched %d times, want 2 after TTL expiry", got)
	}
}

// Reordered filter sets hit the same cache entry.
func TestQueryKeyCanonicalization(t *testing.T) {
	src := &stubSource{version: "v1"}
	svc := newTestService(src, time.Now)

	specA := janSpec()
	specA.Regions = []string{"South", "North"}
	specB := janSpec()
	specB.Regions = []string{"north", "SOUTH"}

	if _, err := svc.Logistics(context.Background(), testPrincipal, specA); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Logistics(context.Background(), testPrincipal, specB); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&src.logisticsCalls); got != 1 {
		t.Errorf("source fetched %d times, want 1 for equivalent specs", got)
	}
}

// A refreshed source (new version tag) invalidates cached results even
// inside the TTL window.
func TestSourceVersionInvalidates(t *testing.T) {
	src := &stubSource{version: "v1"}
	svc := newTestService(src, time.Now)

	if _, err := svc.Inventory(context.Background(), testPrincipal, janSpec()); err != nil {
		t.Fatal(err)
	}
	src.version = "v2"
	if _, err := svc.Inventory(context.Background(), testPrincipal, janSpec()); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&src.inventoryCalls); got != 2 {
		t.Errorf("source fetched %d times, want 2 after version change", got)
	}
}

func TestSourceFailureNotCached(t *testing.T) {
	src := &stubSource{err: source.ErrSourceUnavailable}
	svc := newTestService(src, time.Now)

	if _, err := svc.Logistics(context.Background(), testPrincipal, janSpec()); !errors.Is(err, source.ErrSourceUnavailable) {
		t.Fatalf("error = %v, want ErrSourceUnavailable", err)
	}

	src.err = nil
	src.version = "v1"
	view, err := svc.Logistics(context.Background(), testPrincipal, janSpec())
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if view == nil {
		t.Fatal("retry returned nil view")
	}
}

func TestMissingPrincipalDenied(t *testing.T) {
	svc := newTestService(&stubSource{version: "v1"}, time.Now)
	if _, err := svc.Logistics(context.Background(), model.Principal{}, janSpec()); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("error = %v, want ErrPermissionDenied", err)
	}
}

func TestDashboardBundlesBothDatasets(t *testing.T) {
	src := &stubSource{
		logistics: []model.LogisticsRecord{
			{RouteID: "R1", Date: date("2024-01-05"), Region: "South", State: "SP", Status: model.StatusDelivered, ExpectedTime: 60, ActualTime: 50},
		},
		inventory: []model.InventoryRecord{
			{Date: date("2024-01-05"), Region: "South", State: "SP", DailyDemand: 100, DemandMet: 100, AvailableStock: 200, EndingStock: 150, FulfillmentRate: 1},
		},
		version: "v1",
	}
	svc := newTestService(src, time.Now)

	view, err := svc.Dashboard(context.Background(), testPrincipal, janSpec())
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if view.Logistics.Report.KPIs.RecordCount != 1 {
		t.Errorf("logistics count = %d, want 1", view.Logistics.Report.KPIs.RecordCount)
	}
	if view.Inventory.Report.KPIs.RecordCount != 1 {
		t.Errorf("inventory count = %d, want 1", view.Inventory.Report.KPIs.RecordCount)
	}
}
