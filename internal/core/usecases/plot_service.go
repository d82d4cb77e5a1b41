package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okpanku/ministry-api/internal/core/domain"
	"github.com/okpanku/ministry-api/internal/core/ports"
)

// plotListingKey caches the assembled FeatureCollection. Submissions and
// clearance updates change the derived status inside it, so both paths
// delete this key.
const plotListingKey = "plots:featurecollection"

// plotListingTTL in seconds. Short: the layer is small and the cache
// exists to absorb map clients refreshing, not to serve stale reviews.
const plotListingTTL = 60

// PlotService serves the plot layer and per-plot lookups.
type PlotService struct {
	plots   ports.PlotRepository
	cache   ports.CacheService
	nudge   domain.Nudge
	labels  domain.StatusLabels
	exclude []string
}

// NewPlotService creates a new PlotService. cache may be nil.
func NewPlotService(plots ports.PlotRepository, cache ports.CacheService, nudge domain.Nudge, labels domain.StatusLabels, exclude []string) *PlotService {
	return &PlotService{plots: plots, cache: cache, nudge: nudge, labels: labels, exclude: exclude}
}

// FeatureCollection returns the plot layer as a GeoJSON document. The
// store guarantees an empty FeatureCollection when no plots exist, so
// callers never see a null body.
func (s *PlotService) FeatureCollection(ctx context.Context) (json.RawMessage, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, plotListingKey); err == nil && len(data) > 0 {
			return data, nil
		}
	}

	fc, err := s.plots.FeatureCollection(ctx, s.nudge, s.labels, s.exclude)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, plotListingKey, fc, plotListingTTL)
	}

	return fc, nil
}

// List returns plot records without geometry, for the admin views.
func (s *PlotService) List(ctx context.Context) ([]domain.Plot, error) {
	return s.plots.List(ctx, s.labels, s.exclude)
}

// GetByPlotNo returns one plot record with its derived status.
func (s *PlotService) GetByPlotNo(ctx context.Context, plotNo string) (*domain.Plot, error) {
	plotNo = strings.TrimSpace(plotNo)
	if plotNo == "" {
		return nil, fmt.Errorf("%w: plot_no is required", domain.ErrInvalidInput)
	}
	return s.plots.GetByPlotNo(ctx, plotNo, s.labels)
}
