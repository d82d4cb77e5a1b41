package domain

import (
	"encoding/json"
	"time"
)

// PlaceholderApplicant is recorded on every submission; the portal does
// not capture real identity.
const PlaceholderApplicant = "Portal User"

// Derived application status labels. The labels for a false and a NULL
// review flag differ between deployments and come from configuration;
// these two are fixed.
const (
	StatusNotSubmitted = "NOT_SUBMITTED"
	StatusApproved     = "APPROVED"
)

// Plot is a cadastral land parcel. The polygon itself lives in the store
// in a projected coordinate system and only ever leaves it as GeoJSON.
type Plot struct {
	PlotID            int64   `json:"plot_id"`
	UniquePlotNo      string  `json:"unique_plot_no"`
	ZoningClass       string  `json:"zoning_class"`
	AreaSqm           float64 `json:"area_sqm"`
	ApplicationStatus string  `json:"application_status"`
}

// Application is a citizen-submitted building footprint awaiting review.
// GISCleared is tri-state: nil means not yet reviewed.
type Application struct {
	ApplicationID  int64     `json:"application_id"`
	UniquePlotNo   string    `json:"unique_plot_no"`
	ApplicantName  string    `json:"applicant_name"`
	SubmissionDate time.Time `json:"submission_date"`
	GISCleared     *bool     `json:"gis_cleared"`
	Status         string    `json:"status"`
}

// SetbackAnalysis is the result of a successful submission: the minimum
// distance from the inserted footprint to the plot boundary, plus both
// geometries re-projected for map display.
type SetbackAnalysis struct {
	UniquePlotNo string          `json:"unique_plot_no"`
	MinSetback   float64         `json:"min_setback"`
	PlotOutline  json.RawMessage `json:"plot_outline_geojson"`
	Footprint    json.RawMessage `json:"footprint_geojson"`
}

// Nudge is the fixed calibration translation applied to plot geometry in
// the projected system before re-projection. The same pair must be used
// for the listing and for the submission response, or the two layers
// drift apart on the basemap.
type Nudge struct {
	X float64
	Y float64
}

// StatusLabels maps the stored review flag to the labels a deployment
// expects. False and NULL wording varies between installations.
type StatusLabels struct {
	Pending    string // gis_cleared = false
	Unreviewed string // gis_cleared IS NULL
}

// SubmissionEvent is published when an application is created.
type SubmissionEvent struct {
	UniquePlotNo string    `json:"unique_plot_no"`
	MinSetback   float64   `json:"min_setback"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// ClearanceEvent is published when a review decision is recorded.
type ClearanceEvent struct {
	UniquePlotNo string    `json:"unique_plot_no"`
	GISCleared   bool      `json:"gis_cleared"`
	DecidedAt    time.Time `json:"decided_at"`
}
