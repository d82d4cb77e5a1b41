package http

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/okpanku/ministry-api/internal/core/domain"
	"github.com/okpanku/ministry-api/internal/pkg/metrics"
)

// LoginHandler checks the configured admin credential pair and hands
// back the opaque access token. No session is created; later requests
// are not verified against the token.
func LoginHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if strings.TrimSpace(req.Username) == "" || req.Password == "" {
			return errBadRequest(c, "username and password are required")
		}

		token, err := deps.Auth.Login(req.Username, req.Password)
		if err != nil {
			return errUnauthorized(c, "invalid credentials")
		}

		return c.JSON(fiber.Map{"status": "SUCCESS", "token": token})
	}
}

// ListPlotsHandler returns the whole plot layer as a single GeoJSON
// FeatureCollection assembled in the store.
func ListPlotsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fc, err := deps.Plots.FeatureCollection(c.Context())
		if err != nil {
			slog.Error("load plot layer", "error", err)
			return errInternal(c, "failed to load plot layer")
		}

		c.Set("Content-Type", "application/json")
		return c.Send(fc)
	}
}

// SubmitApplicationHandler accepts a building-permit application: a plot
// business key plus a GeoJSON footprint in geographic coordinates. On
// success it returns the setback analysis computed by the store.
func SubmitApplicationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			PlotNo    string           `json:"plot_no"`
			Footprint *domain.Geometry `json:"geojson_footprint"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		analysis, err := deps.Applications.Submit(c.Context(), req.PlotNo, req.Footprint)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidGeometry):
				return errBadRequest(c, err.Error())
			case errors.Is(err, domain.ErrPlotNotFound):
				return errNotFound(c, "plot not found")
			default:
				slog.Error("submit application", "plot_no", req.PlotNo, "error", err)
				return errInternal(c, "failed to submit application")
			}
		}

		metrics.ApplicationsSubmitted.Inc()
		metrics.SetbackDistance.Observe(analysis.MinSetback)

		return c.JSON(fiber.Map{"status": "SUCCESS", "analysis": analysis})
	}
}

// UpdateStatusHandler records the review decision on the plot's most
// recent application. gis_cleared must be a strict JSON boolean.
func UpdateStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			PlotNo     string `json:"plot_no"`
			GISCleared *bool  `json:"gis_cleared"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if req.GISCleared == nil {
			return errBadRequest(c, "gis_cleared must be a boolean")
		}

		err := deps.Applications.SetClearance(c.Context(), req.PlotNo, *req.GISCleared)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidInput):
				return errBadRequest(c, err.Error())
			case errors.Is(err, domain.ErrApplicationNotFound), errors.Is(err, domain.ErrPlotNotFound):
				return errNotFound(c, "no application found for plot")
			default:
				slog.Error("update clearance", "plot_no", req.PlotNo, "error", err)
				return errInternal(c, "failed to update application status")
			}
		}

		metrics.ClearanceUpdates.WithLabelValues(strconv.FormatBool(*req.GISCleared)).Inc()

		return c.JSON(fiber.Map{"status": "SUCCESS"})
	}
}

// ListApplicationsHandler returns the applications filed against one
// plot, newest first, for the review dashboard.
func ListApplicationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		plotNo := c.Query("plot_no")
		if strings.TrimSpace(plotNo) == "" {
			return errBadRequest(c, "plot_no query parameter is required")
		}

		apps, err := deps.Applications.ListByPlot(c.Context(), plotNo)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				return errBadRequest(c, err.Error())
			}
			slog.Error("list applications", "plot_no", plotNo, "error", err)
			return errInternal(c, "failed to list applications")
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		total := len(apps)
		if offset >= total {
			apps = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			apps = apps[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: apps, Pagination: pg})
	}
}

// StatsHandler returns row counts for the dashboard.
func StatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats struct {
			Plots          int    `json:"plots"`
			Applications   int    `json:"applications"`
			Cleared        int    `json:"cleared"`
			LastSubmission string `json:"last_submission,omitempty"`
		}

		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM land_plots),
				(SELECT count(*) FROM applications),
				(SELECT count(*) FROM applications WHERE gis_cleared = TRUE),
				COALESCE((SELECT max(submission_date)::text FROM applications), '')
		`)
		if err := row.Scan(&stats.Plots, &stats.Applications, &stats.Cleared, &stats.LastSubmission); err != nil {
			slog.Error("load stats", "error", err)
			return errInternal(c, "failed to load stats")
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}
