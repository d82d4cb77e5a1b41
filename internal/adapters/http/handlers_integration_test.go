//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	handler "github.com/okpanku/ministry-api/internal/adapters/http"
	"github.com/okpanku/ministry-api/internal/adapters/postgres"
	"github.com/okpanku/ministry-api/internal/core/domain"
	"github.com/okpanku/ministry-api/internal/core/usecases"
)

// setupTestDB connects to the database named by MINISTRY_TEST_DATABASE_URL.
// The schema from migrations/ must already be applied and PostGIS enabled.
func setupTestDB(t *testing.T) *postgres.DB {
	dsn := os.Getenv("MINISTRY_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("MINISTRY_TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	return &postgres.DB{Pool: pool}
}

func setupIntegrationApp(t *testing.T, db *postgres.DB) *fiber.App {
	nudge := domain.Nudge{X: 71.69, Y: -57.74}
	labels := domain.StatusLabels{Pending: "PENDING", Unreviewed: "NOT_APPROVED"}

	plotRepo := postgres.NewPlotRepo(db)
	appRepo := postgres.NewApplicationRepo(db)

	deps := &handler.Dependencies{
		Plots:        usecases.NewPlotService(plotRepo, nil, nudge, labels, nil),
		Applications: usecases.NewApplicationService(appRepo, nil, nil, nudge, labels),
		Auth:         usecases.NewAuthService("registrar", "s3cret"),
		DB:           db,
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

// seedTestPlot inserts a square plot in the projected system and returns
// its plot number.
func seedTestPlot(t *testing.T, db *postgres.DB, plotNo string) string {
	t.Helper()
	ctx := context.Background()

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO land_plots (unique_plot_no, zoning_class, area_sqm, geometry)
		VALUES ($1, 'Residential', 10000,
			ST_GeomFromText('POLYGON((330000 1000000, 330100 1000000, 330100 1000100, 330000 1000100, 330000 1000000))', 32632))
		ON CONFLICT (unique_plot_no) DO NOTHING
	`, plotNo)
	if err != nil {
		t.Fatalf("seed plot: %v", err)
	}

	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(),
			`DELETE FROM applications WHERE plot_id IN (SELECT plot_id FROM land_plots WHERE unique_plot_no = $1)`, plotNo)
		_, _ = db.Pool.Exec(context.Background(),
			`DELETE FROM land_plots WHERE unique_plot_no = $1`, plotNo)
	})

	return plotNo
}

// footprintInside returns a footprint in geographic coordinates that
// lands well inside the seeded plot.
func footprintInside(t *testing.T, db *postgres.DB, plotNo string) string {
	t.Helper()

	// Derive it from the plot itself so the test is independent of the
	// exact UTM zone placement.
	var geojson string
	err := db.Pool.QueryRow(context.Background(), `
		SELECT ST_AsGeoJSON(ST_Transform(ST_Buffer(ST_Centroid(geometry), 20), 4326))
		FROM land_plots WHERE unique_plot_no = $1
	`, plotNo).Scan(&geojson)
	if err != nil {
		t.Fatalf("derive footprint: %v", err)
	}
	return geojson
}

func TestIntegration_SubmitAndReviewFlow(t *testing.T) {
	db := setupTestDB(t)
	defer db.Pool.Close()

	app := setupIntegrationApp(t, db)
	plotNo := seedTestPlot(t, db, "ITEST-001")
	footprint := footprintInside(t, db, plotNo)

	// Fresh plot shows NOT_SUBMITTED in the listing
	req := httptest.NewRequest("GET", "/api/plots", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("plots: expected 200, got %d", resp.StatusCode)
	}
	var fc struct {
		Features []struct {
			Properties struct {
				UniquePlotNo      string `json:"unique_plot_no"`
				ApplicationStatus string `json:"application_status"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		t.Fatal(err)
	}
	status := ""
	for _, f := range fc.Features {
		if f.Properties.UniquePlotNo == plotNo {
			status = f.Properties.ApplicationStatus
		}
	}
	if status != "NOT_SUBMITTED" {
		t.Fatalf("expected NOT_SUBMITTED before submission, got %q", status)
	}

	// Submit a footprint fully inside the plot
	body := `{"plot_no":"` + plotNo + `","geojson_footprint":` + footprint + `}`
	req = httptest.NewRequest("POST", "/api/submit-application", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("submit: expected 200, got %d", resp.StatusCode)
	}
	var submitted struct {
		Analysis struct {
			UniquePlotNo string  `json:"unique_plot_no"`
			MinSetback   float64 `json:"min_setback"`
		} `json:"analysis"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		t.Fatal(err)
	}
	if submitted.Analysis.UniquePlotNo != plotNo {
		t.Errorf("unexpected plot in analysis: %q", submitted.Analysis.UniquePlotNo)
	}
	if submitted.Analysis.MinSetback <= 0 {
		t.Errorf("footprint is inside the plot, expected positive setback, got %v", submitted.Analysis.MinSetback)
	}

	// Approve it
	req = httptest.NewRequest("POST", "/api/update-status",
		strings.NewReader(`{"plot_no":"`+plotNo+`","gis_cleared":true}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("update-status: expected 200, got %d", resp.StatusCode)
	}

	// Listing now derives APPROVED
	req = httptest.NewRequest("GET", "/api/plots", nil)
	resp, _ = app.Test(req, -1)
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		t.Fatal(err)
	}
	for _, f := range fc.Features {
		if f.Properties.UniquePlotNo == plotNo && f.Properties.ApplicationStatus != "APPROVED" {
			t.Errorf("expected APPROVED after clearance, got %q", f.Properties.ApplicationStatus)
		}
	}
}

func TestIntegration_SubmitUnknownPlot(t *testing.T) {
	db := setupTestDB(t)
	defer db.Pool.Close()

	app := setupIntegrationApp(t, db)

	var before int
	if err := db.Pool.QueryRow(context.Background(), `SELECT count(*) FROM applications`).Scan(&before); err != nil {
		t.Fatal(err)
	}

	body := `{"plot_no":"NO-SUCH-PLOT","geojson_footprint":{"type":"Polygon","coordinates":[[[7.49,9.05],[7.50,9.05],[7.50,9.06],[7.49,9.05]]]}}`
	req := httptest.NewRequest("POST", "/api/submit-application", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	// No orphan row was created
	var after int
	if err := db.Pool.QueryRow(context.Background(), `SELECT count(*) FROM applications`).Scan(&after); err != nil {
		t.Fatal(err)
	}
	if after != before {
		t.Errorf("application count changed from %d to %d", before, after)
	}
}

func TestIntegration_UpdateStatusWithoutApplication(t *testing.T) {
	db := setupTestDB(t)
	defer db.Pool.Close()

	app := setupIntegrationApp(t, db)
	plotNo := seedTestPlot(t, db, "ITEST-002")

	req := httptest.NewRequest("POST", "/api/update-status",
		strings.NewReader(`{"plot_no":"`+plotNo+`","gis_cleared":true}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 for plot with no applications, got %d", resp.StatusCode)
	}
}
