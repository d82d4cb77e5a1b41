package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Geometry is a caller-submitted GeoJSON geometry object, assumed to be
// in geographic coordinates (EPSG:4326). Coordinates are kept raw: ring
// closure and self-intersection checks are the store's job, not ours.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// geometryTypes are the six standard GeoJSON geometry types.
// GeometryCollection is not accepted: it has no coordinates member.
var geometryTypes = map[string]bool{
	"Point":           true,
	"MultiPoint":      true,
	"LineString":      true,
	"MultiLineString": true,
	"Polygon":         true,
	"MultiPolygon":    true,
}

// Validate checks the structural shape of the geometry: a recognised
// type and a non-empty coordinates array. Anything deeper is deferred
// to the store.
func (g *Geometry) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: geometry object is required", ErrInvalidGeometry)
	}
	if !geometryTypes[g.Type] {
		return fmt.Errorf("%w: unrecognised geometry type %q", ErrInvalidGeometry, g.Type)
	}
	coords := bytes.TrimSpace(g.Coordinates)
	if len(coords) == 0 || bytes.Equal(coords, []byte("null")) {
		return fmt.Errorf("%w: geometry has no coordinates", ErrInvalidGeometry)
	}
	if coords[0] != '[' {
		return fmt.Errorf("%w: coordinates must be an array", ErrInvalidGeometry)
	}
	return nil
}

// Encode returns the geometry as the JSON document handed to
// ST_GeomFromGeoJSON.
func (g *Geometry) Encode() ([]byte, error) {
	return json.Marshal(g)
}
