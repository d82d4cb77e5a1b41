package ports

import (
	"context"
	"encoding/json"

	"github.com/okpanku/ministry-api/internal/core/domain"
)

// PlotRepository reads land plots. Plot geometry is maintained by an
// external cadastral loading process; this layer only reads it, except
// for the legacy-plot removal used by maintenance tooling.
type PlotRepository interface {
	// FeatureCollection returns the full plot layer as a single GeoJSON
	// document assembled in the store: geometry flattened, nudged in the
	// projected system and transformed to 4326, with the derived
	// application_status in each feature's properties.
	FeatureCollection(ctx context.Context, nudge domain.Nudge, labels domain.StatusLabels, exclude []string) (json.RawMessage, error)

	// List returns plot records with derived status, without geometry.
	List(ctx context.Context, labels domain.StatusLabels, exclude []string) ([]domain.Plot, error)

	// GetByPlotNo returns a single plot record with derived status.
	GetByPlotNo(ctx context.Context, plotNo string, labels domain.StatusLabels) (*domain.Plot, error)

	// RemoveByPlotNos deletes the named plots and their applications,
	// returning the number of plots removed. Maintenance use only.
	RemoveByPlotNos(ctx context.Context, plotNos []string) (int64, error)
}

// ApplicationRepository persists permit applications.
type ApplicationRepository interface {
	// Submit inserts a footprint (GeoJSON, EPSG:4326) against the plot
	// resolved by plotNo in one statement and returns the setback
	// analysis. domain.ErrPlotNotFound if no plot matches; no row is
	// created in that case.
	Submit(ctx context.Context, plotNo string, footprint []byte, nudge domain.Nudge) (*domain.SetbackAnalysis, error)

	// SetClearance records the review decision on the plot's most recent
	// application. domain.ErrApplicationNotFound if the plot does not
	// exist or has no application.
	SetClearance(ctx context.Context, plotNo string, cleared bool) error

	// ListByPlot returns the applications for one plot, newest first.
	ListByPlot(ctx context.Context, plotNo string, labels domain.StatusLabels) ([]domain.Application, error)
}
