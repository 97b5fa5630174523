// Package geojson renders decoded station records as GeoJSON (RFC 7946).
package geojson

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/couchcryptid/synop-etl/internal/domain"
)

// MediaType is the registered content type for GeoJSON documents.
const MediaType = "application/geo+json"

// Geometry is a GeoJSON Point. Coordinates are [longitude, latitude].
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Properties is the flat property object of a station feature. The decoded
// fields are embedded so their JSON names sit alongside the station identity.
type Properties struct {
	StationID  string `json:"station_id"`
	Name       string `json:"name"`
	Country    string `json:"country"`
	ElevationM int    `json:"elevation_m"`
	RawSynop   string `json:"raw_synop"`

	domain.DecodedFields

	// Mirrors pressure_change_3h under the name downstream map layers expect.
	PressureTendency3hHPa *domain.Field[float64] `json:"pressure_tendency_3h_hpa,omitempty"`
}

// Feature is one station observation.
type Feature struct {
	Type       string     `json:"type"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

// FeatureCollection is the document written for a bulletin.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeature converts a record into a Point feature.
func NewFeature(rec domain.ObservationRecord) Feature {
	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: [2]float64{rec.Geometry.Longitude, rec.Geometry.Latitude},
		},
		Properties: Properties{
			StationID:             rec.StationID,
			Name:                  rec.Name,
			Country:               rec.Country,
			ElevationM:            rec.ElevationM,
			RawSynop:              rec.RawReport,
			DecodedFields:         rec.Fields,
			PressureTendency3hHPa: rec.Fields.PressureChange3h,
		},
	}
}

// NewFeatureCollection preserves record order. An empty input yields an empty
// (not null) feature array.
func NewFeatureCollection(records []domain.ObservationRecord) FeatureCollection {
	features := make([]Feature, 0, len(records))
	for _, rec := range records {
		features = append(features, NewFeature(rec))
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

// Encode writes fc to w, optionally indented for people to read.
func Encode(w io.Writer, fc FeatureCollection, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("encode feature collection: %w", err)
	}
	return nil
}

// Decode reads a feature collection previously written by Encode.
func Decode(r io.Reader) (FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return FeatureCollection{}, fmt.Errorf("decode feature collection: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return FeatureCollection{}, fmt.Errorf("unexpected document type %q", fc.Type)
	}
	return fc, nil
}

const filenameLayout = "200601021504"

// Filename names an output file after the window it covers.
func Filename(start, end time.Time) string {
	return fmt.Sprintf("weather_stations_%s_%s.geojson", start.UTC().Format(filenameLayout), end.UTC().Format(filenameLayout))
}
