package domain

import "errors"

// Sentinel errors shared between the adapters and the HTTP layer.
// Repositories translate store failures into these; handlers map them
// onto status codes without ever forwarding raw store error text.
var (
	// ErrPlotNotFound: no plot matches the given unique_plot_no.
	ErrPlotNotFound = errors.New("plot not found")

	// ErrApplicationNotFound: the plot has no application to review.
	ErrApplicationNotFound = errors.New("application not found")

	// ErrInvalidGeometry: the footprint failed either the structural
	// check or the store's geometry parsing.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrInvalidInput: a missing or malformed request field.
	ErrInvalidInput = errors.New("invalid input")
)
