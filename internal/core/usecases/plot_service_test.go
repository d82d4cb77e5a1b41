package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/okpanku/ministry-api/internal/core/domain"
	"github.com/okpanku/ministry-api/internal/core/usecases"
)

// --- Mock PlotRepository ---

type mockPlotRepo struct {
	featureCollectionFn func(ctx context.Context, nudge domain.Nudge, labels domain.StatusLabels, exclude []string) (json.RawMessage, error)
	listFn              func(ctx context.Context, labels domain.StatusLabels, exclude []string) ([]domain.Plot, error)
	getByPlotNoFn       func(ctx context.Context, plotNo string, labels domain.StatusLabels) (*domain.Plot, error)
}

func (m *mockPlotRepo) FeatureCollection(ctx context.Context, nudge domain.Nudge, labels domain.StatusLabels, exclude []string) (json.RawMessage, error) {
	if m.featureCollectionFn != nil {
		return m.featureCollectionFn(ctx, nudge, labels, exclude)
	}
	return nil, nil
}

func (m *mockPlotRepo) List(ctx context.Context, labels domain.StatusLabels, exclude []string) ([]domain.Plot, error) {
	if m.listFn != nil {
		return m.listFn(ctx, labels, exclude)
	}
	return nil, nil
}

func (m *mockPlotRepo) GetByPlotNo(ctx context.Context, plotNo string, labels domain.StatusLabels) (*domain.Plot, error) {
	if m.getByPlotNoFn != nil {
		return m.getByPlotNoFn(ctx, plotNo, labels)
	}
	return nil, nil
}

func (m *mockPlotRepo) RemoveByPlotNos(ctx context.Context, plotNos []string) (int64, error) {
	return 0, nil
}

// --- Mock CacheService ---

type mockCache struct {
	getFn    func(ctx context.Context, key string) ([]byte, error)
	setFn    func(ctx context.Context, key string, value []byte, ttlSeconds int) error
	deleteFn func(ctx context.Context, key string) error
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, errors.New("miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttlSeconds)
	}
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

var testNudge = domain.Nudge{X: 71.69, Y: -57.74}

var testLabels = domain.StatusLabels{Pending: "PENDING", Unreviewed: "NOT_APPROVED"}

// --- Tests ---

func TestPlotService_FeatureCollection_PassesConfig(t *testing.T) {
	fc := json.RawMessage(`{"type":"FeatureCollection","features":[]}`)
	repo := &mockPlotRepo{
		featureCollectionFn: func(ctx context.Context, nudge domain.Nudge, labels domain.StatusLabels, exclude []string) (json.RawMessage, error) {
			if nudge != testNudge {
				t.Errorf("expected nudge %+v, got %+v", testNudge, nudge)
			}
			if labels.Pending != "PENDING" || labels.Unreviewed != "NOT_APPROVED" {
				t.Errorf("unexpected labels %+v", labels)
			}
			if len(exclude) != 1 || exclude[0] != "PLOT-001" {
				t.Errorf("unexpected exclusions %v", exclude)
			}
			return fc, nil
		},
	}

	svc := usecases.NewPlotService(repo, nil, testNudge, testLabels, []string{"PLOT-001"})

	got, err := svc.FeatureCollection(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != string(fc) {
		t.Errorf("unexpected document: %s", got)
	}
}

func TestPlotService_FeatureCollection_CacheHit(t *testing.T) {
	cached := []byte(`{"type":"FeatureCollection","features":[]}`)
	repoCalled := false

	repo := &mockPlotRepo{
		featureCollectionFn: func(ctx context.Context, nudge domain.Nudge, labels domain.StatusLabels, exclude []string) (json.RawMessage, error) {
			repoCalled = true
			return nil, nil
		},
	}
	cache := &mockCache{
		getFn: func(ctx context.Context, key string) ([]byte, error) {
			return cached, nil
		},
	}

	svc := usecases.NewPlotService(repo, cache, testNudge, testLabels, nil)

	got, err := svc.FeatureCollection(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != string(cached) {
		t.Errorf("expected cached document, got %s", got)
	}
	if repoCalled {
		t.Error("repo should not be hit on a cache hit")
	}
}

func TestPlotService_FeatureCollection_CacheMissPopulates(t *testing.T) {
	fc := json.RawMessage(`{"type":"FeatureCollection","features":[]}`)
	var setKey string
	var setTTL int

	repo := &mockPlotRepo{
		featureCollectionFn: func(ctx context.Context, nudge domain.Nudge, labels domain.StatusLabels, exclude []string) (json.RawMessage, error) {
			return fc, nil
		},
	}
	cache := &mockCache{
		getFn: func(ctx context.Context, key string) ([]byte, error) {
			return nil, errors.New("miss")
		},
		setFn: func(ctx context.Context, key string, value []byte, ttlSeconds int) error {
			setKey = key
			setTTL = ttlSeconds
			return nil
		},
	}

	svc := usecases.NewPlotService(repo, cache, testNudge, testLabels, nil)

	if _, err := svc.FeatureCollection(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if setKey != "plots:featurecollection" {
		t.Errorf("unexpected cache key %q", setKey)
	}
	if setTTL != 60 {
		t.Errorf("expected 60s TTL, got %d", setTTL)
	}
}

func TestPlotService_FeatureCollection_RepoError(t *testing.T) {
	repo := &mockPlotRepo{
		featureCollectionFn: func(ctx context.Context, nudge domain.Nudge, labels domain.StatusLabels, exclude []string) (json.RawMessage, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}

	svc := usecases.NewPlotService(repo, nil, testNudge, testLabels, nil)

	if _, err := svc.FeatureCollection(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestPlotService_GetByPlotNo_TrimsInput(t *testing.T) {
	repo := &mockPlotRepo{
		getByPlotNoFn: func(ctx context.Context, plotNo string, labels domain.StatusLabels) (*domain.Plot, error) {
			if plotNo != "PLT-042" {
				t.Errorf("expected trimmed plot no, got %q", plotNo)
			}
			return &domain.Plot{UniquePlotNo: plotNo}, nil
		},
	}

	svc := usecases.NewPlotService(repo, nil, testNudge, testLabels, nil)

	plot, err := svc.GetByPlotNo(context.Background(), "  PLT-042  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plot.UniquePlotNo != "PLT-042" {
		t.Errorf("unexpected plot %+v", plot)
	}
}

func TestPlotService_GetByPlotNo_Blank(t *testing.T) {
	svc := usecases.NewPlotService(&mockPlotRepo{}, nil, testNudge, testLabels, nil)

	_, err := svc.GetByPlotNo(context.Background(), "   ")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
