package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/okpanku/ministry-api/internal/core/domain"
	"github.com/okpanku/ministry-api/internal/core/ports"
)

// ApplicationService handles permit submission and review.
type ApplicationService struct {
	apps   ports.ApplicationRepository
	events ports.EventPublisher
	cache  ports.CacheService
	nudge  domain.Nudge
	labels domain.StatusLabels
}

// NewApplicationService creates a new ApplicationService.
// events and cache may be nil.
func NewApplicationService(apps ports.ApplicationRepository, events ports.EventPublisher, cache ports.CacheService, nudge domain.Nudge, labels domain.StatusLabels) *ApplicationService {
	return &ApplicationService{apps: apps, events: events, cache: cache, nudge: nudge, labels: labels}
}

// Submit validates the footprint's structural shape, inserts it against
// the plot resolved by plotNo and returns the setback analysis. The
// listing cache is invalidated because the plot's derived status changes
// from NOT_SUBMITTED on first submission.
func (s *ApplicationService) Submit(ctx context.Context, plotNo string, footprint *domain.Geometry) (*domain.SetbackAnalysis, error) {
	plotNo = strings.TrimSpace(plotNo)
	if plotNo == "" {
		return nil, fmt.Errorf("%w: plot_no is required", domain.ErrInvalidInput)
	}
	if err := footprint.Validate(); err != nil {
		return nil, err
	}

	data, err := footprint.Encode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidGeometry, err)
	}

	analysis, err := s.apps.Submit(ctx, plotNo, data, s.nudge)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, plotListingKey)
	}

	if s.events != nil {
		ev := &domain.SubmissionEvent{
			UniquePlotNo: analysis.UniquePlotNo,
			MinSetback:   analysis.MinSetback,
			SubmittedAt:  time.Now().UTC(),
		}
		if err := s.events.PublishSubmission(ctx, ev); err != nil {
			slog.Warn("publish submission event", "plot_no", analysis.UniquePlotNo, "error", err)
		}
	}

	return analysis, nil
}

// SetClearance records the review decision on the plot's most recent
// application. Repeating the same decision is a no-op update and stays
// a success.
func (s *ApplicationService) SetClearance(ctx context.Context, plotNo string, cleared bool) error {
	plotNo = strings.TrimSpace(plotNo)
	if plotNo == "" {
		return fmt.Errorf("%w: plot_no is required", domain.ErrInvalidInput)
	}

	if err := s.apps.SetClearance(ctx, plotNo, cleared); err != nil {
		return err
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, plotListingKey)
	}

	if s.events != nil {
		ev := &domain.ClearanceEvent{
			UniquePlotNo: plotNo,
			GISCleared:   cleared,
			DecidedAt:    time.Now().UTC(),
		}
		if err := s.events.PublishClearance(ctx, ev); err != nil {
			slog.Warn("publish clearance event", "plot_no", plotNo, "error", err)
		}
	}

	return nil
}

// ListByPlot returns the applications filed against one plot, newest
// first, for the review dashboard.
func (s *ApplicationService) ListByPlot(ctx context.Context, plotNo string) ([]domain.Application, error) {
	plotNo = strings.TrimSpace(plotNo)
	if plotNo == "" {
		return nil, fmt.Errorf("%w: plot_no is required", domain.ErrInvalidInput)
	}
	return s.apps.ListByPlot(ctx, plotNo, s.labels)
}
