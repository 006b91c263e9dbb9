package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"supplychain-analytics/internal/analytics"
	"supplychain-analytics/internal/cache"
	"supplychain-analytics/internal/model"
	"supplychain-analytics/internal/source"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
)

// QueryService is the query interface exposed to the presentation layer: a
// filter spec and a dataset selector in, an aggregate result plus alert
// counts out. Results are memoized in the TTL cache keyed by the canonical
// spec plus the source version tag.
type QueryService struct {
	source       source.Source
	cache        *cache.Cache
	evaluator    analytics.Evaluator
	defaultRange int
	maxRange     int
	log          zerolog.Logger
}

func NewQueryService(src source.Source, resultCache *cache.Cache, evaluator analytics.Evaluator, defaultRange, maxRange int, log zerolog.Logger) *QueryService {
	return &QueryService{
		source:       src,
		cache:        resultCache,
		evaluator:    evaluator,
		defaultRange: defaultRange,
		maxRange:     maxRange,
		log:          log,
	}
}

func (s *QueryService) Logistics(ctx context.Context, principal model.Principal, spec model.FilterSpec) (*model.LogisticsView, error) {
	if principal.UserID == "" {
		return nil, ErrPermissionDenied
	}
	spec = spec.ClampRange(s.defaultRange, s.maxRange)

	key, err := s.queryKey(ctx, model.DatasetLogistics, spec)
	if err != nil {
		return nil, err
	}

	value, hit, err := s.cache.GetOrCompute(key, func() (interface{}, error) {
		return s.computeLogistics(ctx, spec)
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("key", key).Bool("cache_hit", hit).Msg("logistics query served")
	return value.(*model.LogisticsView), nil
}

func (s *QueryService) Inventory(ctx context.Context, principal model.Principal, spec model.FilterSpec) (*model.InventoryView, error) {
	if principal.UserID == "" {
		return nil, ErrPermissionDenied
	}
	spec = spec.ClampRange(s.defaultRange, s.maxRange)

	key, err := s.queryKey(ctx, model.DatasetInventory, spec)
	if err != nil {
		return nil, err
	}

	value, hit, err := s.cache.GetOrCompute(key, func() (interface{}, error) {
		return s.computeInventory(ctx, spec)
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("key", key).Bool("cache_hit", hit).Msg("inventory query served")
	return value.(*model.InventoryView), nil
}

// Dashboard returns both datasets for the combined overview.
func (s *QueryService) Dashboard(ctx context.Context, principal model.Principal, spec model.FilterSpec) (*model.DashboardView, error) {
	logisticsView, err := s.Logistics(ctx, principal, spec)
	if err != nil {
		return nil, err
	}
	inventoryView, err := s.Inventory(ctx, principal, spec)
	if err != nil {
		return nil, err
	}
	return &model.DashboardView{
		Logistics:    *logisticsView,
		Inventory:    *inventoryView,
		GeneratedFor: logisticsView.GeneratedFor,
	}, nil
}

// queryKey folds the dataset, the canonical filter serialization and the
// source version into the cache key, so a refreshed source invalidates
// cached results even mid-session.
func (s *QueryService) queryKey(ctx context.Context, dataset model.Dataset, spec model.FilterSpec) (string, error) {
	version, err := s.source.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s|%s|v=%s", dataset, spec.Key(), version), nil
}

func (s *QueryService) computeLogistics(ctx context.Context, spec model.FilterSpec) (*model.LogisticsView, error) {
	records, dropped, err := s.source.Logistics(ctx)
	if err != nil {
		return nil, err
	}
	filtered := analytics.FilterLogistics(records, spec)
	report := analytics.AggregateLogistics(filtered, spec.Bucket())
	report.DroppedRows = dropped

	return &model.LogisticsView{
		Report:       report,
		Alerts:       s.evaluator.CountLogistics(filtered),
		GeneratedFor: spec.Range,
	}, nil
}

func (s *QueryService) computeInventory(ctx context.Context, spec model.FilterSpec) (*model.InventoryView, error) {
	records, dropped, err := s.source.Inventory(ctx)
	if err != nil {
		return nil, err
	}
	filtered := analytics.FilterInventory(records, spec)
	report := analytics.AggregateInventory(filtered, spec.Bucket())
	report.DroppedRows = dropped

	return &model.InventoryView{
		Report:       report,
		Alerts:       s.evaluator.CountInventory(filtered),
		GeneratedFor: spec.Range,
	}, nil
}
