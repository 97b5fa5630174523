package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedCoordinate is returned when a DMS string does not have the
// DDD-MM-SS[NSEW] shape. Callers drop the station rather than failing the batch.
var ErrMalformedCoordinate = errors.New("malformed coordinate")

// dmsRe matches "34-02-59N" and "074-24-00E".
var dmsRe = regexp.MustCompile(`^(\d{2,3})-(\d{2})-(\d{2})([NSEW])$`)

// ConvertDMS converts a degree-minute-second string to signed decimal degrees,
// rounded to six places. South and west are negative.
func ConvertDMS(s string) (float64, error) {
	m := dmsRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedCoordinate, s)
	}

	deg, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	secs, _ := strconv.Atoi(m[3])

	decimal := float64(deg) + float64(mins)/60 + float64(secs)/3600
	if m[4] == "S" || m[4] == "W" {
		decimal = -decimal
	}
	return roundTo(decimal, 6), nil
}

// convertAxis converts a DMS string and checks that its hemisphere letter
// belongs to the expected axis ("NS" for latitude, "EW" for longitude).
func convertAxis(s, hemispheres string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || !strings.ContainsRune(hemispheres, rune(s[len(s)-1])) {
		return 0, fmt.Errorf("%w: %q is not one of %s", ErrMalformedCoordinate, s, hemispheres)
	}
	return ConvertDMS(s)
}

// StationGeometry converts a header's latitude and longitude.
func StationGeometry(h StationHeader) (Geometry, error) {
	lat, err := convertAxis(h.LatitudeDMS, "NS")
	if err != nil {
		return Geometry{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := convertAxis(h.LongitudeDMS, "EW")
	if err != nil {
		return Geometry{}, fmt.Errorf("longitude: %w", err)
	}
	return Geometry{Longitude: lon, Latitude: lat}, nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
