package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/okpanku/ministry-api/internal/core/domain"
)

// classifyGeometryErr maps store-reported failures from statements that
// parse caller geometry onto domain errors. PostGIS raises its GeoJSON
// parse and GEOS topology failures as XX000 (internal_error); malformed
// parameter values surface as 22023 / 22P02. Everything else stays a
// plain store failure and becomes a 500 upstream.
func classifyGeometryErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "XX000", "22023", "22P02":
		return domain.ErrInvalidGeometry
	}
	return err
}
