package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/okpanku/ministry-api/internal/core/domain"
)

// ApplicationRepo implements ports.ApplicationRepository with pgx.
type ApplicationRepo struct {
	db *DB
}

// NewApplicationRepo creates a new ApplicationRepo.
func NewApplicationRepo(db *DB) *ApplicationRepo {
	return &ApplicationRepo{db: db}
}

// Submit inserts the footprint and computes the setback analysis in a
// single statement. The INSERT selects through the plot lookup, so a
// missing plot produces zero rows and no application row; the footprint
// is reprojected into the plot's projected system and promoted to a
// multi-part geometry before storage. The returned plot outline gets the
// same nudge-then-transform treatment as the listing so the two layers
// stay aligned on the map.
func (r *ApplicationRepo) Submit(ctx context.Context, plotNo string, footprint []byte, nudge domain.Nudge) (*domain.SetbackAnalysis, error) {
	query := fmt.Sprintf(`
		WITH inserted_app AS (
			INSERT INTO applications (plot_id, applicant_name, building_footprint)
			SELECT plot_id, $5, ST_Multi(ST_Transform(ST_SetSRID(ST_GeomFromGeoJSON($1), %d), %d))
			FROM land_plots WHERE unique_plot_no = $2
			RETURNING plot_id, building_footprint
		)
		SELECT p.unique_plot_no,
			ROUND(ST_Distance(i.building_footprint, ST_Boundary(p.geometry))::numeric, 2)::float8 AS min_setback,
			ST_AsGeoJSON(ST_Transform(ST_Translate(ST_SetSRID(ST_Force2D(p.geometry), %d), $3, $4), %d)) AS plot_outline_geojson,
			ST_AsGeoJSON(ST_Transform(i.building_footprint, %d)) AS footprint_geojson
		FROM inserted_app i
		JOIN land_plots p ON i.plot_id = p.plot_id
	`, geographicSRID, projectedSRID, projectedSRID, geographicSRID, geographicSRID)

	var a domain.SetbackAnalysis
	var outline, fp string
	err := r.db.Pool.QueryRow(ctx, query,
		string(footprint), plotNo, nudge.X, nudge.Y, domain.PlaceholderApplicant,
	).Scan(&a.UniquePlotNo, &a.MinSetback, &outline, &fp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlotNotFound
		}
		return nil, classifyGeometryErr(err)
	}

	a.PlotOutline = []byte(outline)
	a.Footprint = []byte(fp)
	return &a, nil
}

// SetClearance records the review decision on the plot's most recent
// application only. Keying the UPDATE on the resolved application id
// keeps older applications for the same plot untouched.
func (r *ApplicationRepo) SetClearance(ctx context.Context, plotNo string, cleared bool) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE applications SET gis_cleared = $2
		WHERE application_id = (
			SELECT a.application_id
			FROM applications a
			JOIN land_plots p ON p.plot_id = a.plot_id
			WHERE p.unique_plot_no = $1
			ORDER BY a.submission_date DESC, a.application_id DESC
			LIMIT 1
		)
	`, plotNo, cleared)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrApplicationNotFound
	}
	return nil
}

// ListByPlot returns the applications for one plot, newest first.
func (r *ApplicationRepo) ListByPlot(ctx context.Context, plotNo string, labels domain.StatusLabels) ([]domain.Application, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT a.application_id, p.unique_plot_no, a.applicant_name, a.submission_date,
			a.gis_cleared,
			CASE WHEN a.gis_cleared = TRUE THEN 'APPROVED'
				WHEN a.gis_cleared = FALSE THEN $2
				ELSE $3 END AS status
		FROM applications a
		JOIN land_plots p ON p.plot_id = a.plot_id
		WHERE p.unique_plot_no = $1
		ORDER BY a.submission_date DESC, a.application_id DESC
	`, plotNo, labels.Pending, labels.Unreviewed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		var a domain.Application
		if err := rows.Scan(&a.ApplicationID, &a.UniquePlotNo, &a.ApplicantName,
			&a.SubmissionDate, &a.GISCleared, &a.Status); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}
