package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/okpanku/ministry-api/internal/core/domain"
)

// SRIDs fixed by the store schema: plot geometry is kept in UTM zone
// 32N and leaves the store as WGS 84.
const (
	projectedSRID  = 32632
	geographicSRID = 4326
)

// statusCase derives the application_status label from the plot's
// most recent application. $-placeholders for the false/NULL labels are
// interpolated by position in each caller.
const statusCase = `
	COALESCE((SELECT CASE WHEN a.gis_cleared = TRUE THEN 'APPROVED'
		WHEN a.gis_cleared = FALSE THEN %s
		ELSE %s END
		FROM applications a WHERE a.plot_id = p.plot_id
		ORDER BY a.submission_date DESC, a.application_id DESC LIMIT 1), 'NOT_SUBMITTED')`

// PlotRepo implements ports.PlotRepository with pgx.
type PlotRepo struct {
	db *DB
}

// NewPlotRepo creates a new PlotRepo.
func NewPlotRepo(db *DB) *PlotRepo {
	return &PlotRepo{db: db}
}

// FeatureCollection assembles the whole plot layer in the store: each
// polygon is flattened to 2D, translated by the nudge offsets while
// still in the projected system, then transformed to geographic
// coordinates and aggregated into one GeoJSON document. An empty table
// yields an empty FeatureCollection, never NULL.
func (r *PlotRepo) FeatureCollection(ctx context.Context, nudge domain.Nudge, labels domain.StatusLabels, exclude []string) (json.RawMessage, error) {
	query := fmt.Sprintf(`
		SELECT json_build_object(
			'type', 'FeatureCollection',
			'features', COALESCE(json_agg(ST_AsGeoJSON(t.*)::json), '[]'::json)
		)
		FROM (
			SELECT p.unique_plot_no, p.zoning_class, p.area_sqm,
				`+statusCase+` AS application_status,
				ST_Transform(ST_Translate(ST_SetSRID(ST_Force2D(p.geometry), %d), $1, $2), %d) AS geometry
			FROM land_plots p
			WHERE p.unique_plot_no != ALL($5)
			ORDER BY p.unique_plot_no
		) t
	`, "$3", "$4", projectedSRID, geographicSRID)

	if exclude == nil {
		exclude = []string{}
	}

	var fc json.RawMessage
	err := r.db.Pool.QueryRow(ctx, query,
		nudge.X, nudge.Y, labels.Pending, labels.Unreviewed, exclude,
	).Scan(&fc)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// List returns plot records with derived status, no geometry.
func (r *PlotRepo) List(ctx context.Context, labels domain.StatusLabels, exclude []string) ([]domain.Plot, error) {
	query := fmt.Sprintf(`
		SELECT p.plot_id, p.unique_plot_no, p.zoning_class, p.area_sqm,
			`+statusCase+`
		FROM land_plots p
		WHERE p.unique_plot_no != ALL($3)
		ORDER BY p.unique_plot_no
	`, "$1", "$2")

	if exclude == nil {
		exclude = []string{}
	}

	rows, err := r.db.Pool.Query(ctx, query, labels.Pending, labels.Unreviewed, exclude)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plots []domain.Plot
	for rows.Next() {
		var p domain.Plot
		if err := rows.Scan(&p.PlotID, &p.UniquePlotNo, &p.ZoningClass, &p.AreaSqm, &p.ApplicationStatus); err != nil {
			return nil, err
		}
		plots = append(plots, p)
	}
	return plots, rows.Err()
}

// GetByPlotNo returns one plot record with derived status.
func (r *PlotRepo) GetByPlotNo(ctx context.Context, plotNo string, labels domain.StatusLabels) (*domain.Plot, error) {
	query := fmt.Sprintf(`
		SELECT p.plot_id, p.unique_plot_no, p.zoning_class, p.area_sqm,
			`+statusCase+`
		FROM land_plots p
		WHERE p.unique_plot_no = $3
	`, "$1", "$2")

	var p domain.Plot
	err := r.db.Pool.QueryRow(ctx, query, labels.Pending, labels.Unreviewed, plotNo).
		Scan(&p.PlotID, &p.UniquePlotNo, &p.ZoningClass, &p.AreaSqm, &p.ApplicationStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlotNotFound
		}
		return nil, err
	}
	return &p, nil
}

// RemoveByPlotNos deletes applications referencing the named plots, then
// the plots themselves, in one transaction. Exposed only through the
// fixplots maintenance command.
func (r *PlotRepo) RemoveByPlotNos(ctx context.Context, plotNos []string) (int64, error) {
	if len(plotNos) == 0 {
		return 0, nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM applications
		WHERE plot_id IN (SELECT plot_id FROM land_plots WHERE unique_plot_no = ANY($1))
	`, plotNos)
	if err != nil {
		return 0, fmt.Errorf("delete applications: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM land_plots WHERE unique_plot_no = ANY($1)
	`, plotNos)
	if err != nil {
		return 0, fmt.Errorf("delete plots: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return tag.RowsAffected(), nil
}
