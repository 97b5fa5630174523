// Command validate checks a GeoJSON file produced by decode or the service
// against the bulletin it was made from. It verifies feature count and order,
// station geometry, and the value ranges of decoded fields.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -bulletin ogimet_data.txt \
//	  -geojson weather_stations.geojson
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/fatih/color"

	"github.com/couchcryptid/synop-etl/internal/domain"
	"github.com/couchcryptid/synop-etl/internal/geojson"
)

const coordTolerance = 1e-6

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	bulletinPath := flag.String("bulletin", "", "path to the bulletin text export")
	geojsonPath := flag.String("geojson", "", "path to the GeoJSON file to check")
	noColor := flag.Bool("no-color", false, "disable color output")
	flag.Parse()

	if *bulletinPath == "" || *geojsonPath == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *noColor {
		color.NoColor = true
	}

	if code := run(*bulletinPath, *geojsonPath, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(bulletinPath, geojsonPath string, out io.Writer) int {
	fmt.Fprintln(out, "=== SYNOP GeoJSON Integrity Validation ===")
	fmt.Fprintln(out)

	text, err := os.ReadFile(bulletinPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load bulletin: %v\n", err)
		return 1
	}

	f, err := os.Open(geojsonPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load GeoJSON: %v\n", err)
		return 1
	}
	fc, err := geojson.Decode(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	records, stats := domain.DecodeBulletinStats(string(text))

	phases := []*phase{
		validateRecordParity(records, fc),
		validateGeometry(records, fc),
		validateFieldRanges(fc),
	}

	return report(out, phases, stats, len(fc.Features))
}

func report(out io.Writer, phases []*phase, stats domain.DecodeStats, features int) int {
	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()

	allPassed := true
	for _, p := range phases {
		status := pass("PASS")
		if !p.passed() {
			status = fail(fmt.Sprintf("FAIL (%d errors)", len(p.errors)))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Stations: %d headers, %d decoded, %d dropped, %d features\n",
		stats.Headers, stats.Records, len(stats.Dropped), features)

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func validateRecordParity(records []domain.ObservationRecord, fc geojson.FeatureCollection) *phase {
	p := &phase{name: "Phase 1: Record Parity (count and order)"}

	if len(records) != len(fc.Features) {
		p.errorf("bulletin decodes to %d records, GeoJSON has %d features", len(records), len(fc.Features))
	}
	for i := range min(len(records), len(fc.Features)) {
		if got, want := fc.Features[i].Properties.StationID, records[i].StationID; got != want {
			p.errorf("feature %d: station %s, expected %s", i, got, want)
		}
	}
	return p
}

func validateGeometry(records []domain.ObservationRecord, fc geojson.FeatureCollection) *phase {
	p := &phase{name: "Phase 2: Geometry"}

	byID := make(map[string]domain.Geometry, len(records))
	for _, r := range records {
		byID[r.StationID] = r.Geometry
	}

	for i, f := range fc.Features {
		id := f.Properties.StationID
		if f.Geometry.Type != "Point" {
			p.errorf("%s: geometry type %q", id, f.Geometry.Type)
		}
		lon, lat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			p.errorf("%s: coordinates [%f, %f] out of range", id, lon, lat)
		}
		want, ok := byID[id]
		if !ok {
			p.errorf("feature %d: station %s not in bulletin", i, id)
			continue
		}
		if math.Abs(want.Longitude-lon) > coordTolerance || math.Abs(want.Latitude-lat) > coordTolerance {
			p.errorf("%s: coordinates [%f, %f], expected [%f, %f]", id, lon, lat, want.Longitude, want.Latitude)
		}
	}
	return p
}

func validateFieldRanges(fc geojson.FeatureCollection) *phase {
	p := &phase{name: "Phase 3: Field Ranges"}

	for _, f := range fc.Features {
		checkFieldRanges(p.errorf, f.Properties)
	}
	return p
}

func checkFieldRanges(pf func(string, ...any), props geojson.Properties) {
	id := props.StationID
	intRange := func(name string, fld *domain.Field[int], lo, hi int) {
		if v, ok := fld.Get(); ok && (v < lo || v > hi) {
			pf("%s: %s=%d outside [%d, %d]", id, name, v, lo, hi)
		}
	}
	floatRange := func(name string, fld *domain.Field[float64], lo, hi float64) {
		if v, ok := fld.Get(); ok && (v < lo || v > hi) {
			pf("%s: %s=%.1f outside [%.1f, %.1f]", id, name, v, lo, hi)
		}
	}

	intRange("cloud_cover_octas", props.CloudCoverOctas, 0, 9)
	intRange("low_cloud_amount_octas", props.LowCloudAmountOctas, 0, 9)
	intRange("cloud_base_height_code", props.CloudBaseHeightCode, 0, 9)
	intRange("pressure_tendency_characteristic", props.PressureTendencyCharacteristic, 0, 8)
	intRange("wind_speed_kt", props.WindSpeedKt, 0, 99)
	floatRange("visibility_km", props.VisibilityKm, 0, 70)
	floatRange("temperature_c", props.TemperatureC, -99.9, 99.9)
	floatRange("dew_point_c", props.DewPointC, -99.9, 99.9)
	floatRange("max_temp_c", props.MaxTempC, -99.9, 99.9)
	floatRange("min_temp_c", props.MinTempC, -99.9, 99.9)
	floatRange("pressure_hpa", props.PressureHPa, 100, 1099.9)
	floatRange("station_pressure_hpa", props.StationPressureHPa, 100, 1099.9)
	floatRange("precip_amount_mm", props.PrecipAmountMm, 0, 989)

	if dir, ok := props.WindDirectionDeg.Get(); ok && !dir.Variable && (dir.Degrees < 0 || dir.Degrees > 360) {
		pf("%s: wind_direction_deg=%d outside [0, 360]", id, dir.Degrees)
	}

	change, okChange := props.PressureChange3h.Get()
	alias, okAlias := props.PressureTendency3hHPa.Get()
	if okChange != okAlias || change != alias {
		pf("%s: pressure_tendency_3h_hpa does not mirror pressure_change_3h", id)
	}
}
