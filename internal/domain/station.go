package domain

import "time"

// StationHeader is the identity and location line that opens a station block.
type StationHeader struct {
	ID           string
	Name         string
	Country      string
	LatitudeDMS  string // e.g. "28-35-00N"
	LongitudeDMS string // e.g. "077-12-00E"
	ElevationM   int
}

// StationBlock is a header plus the cleaned report text that followed it.
type StationBlock struct {
	Header StationHeader
	Raw    string // report lines, newline separated, header decoration removed
	Err    error  // set when a header field could not be read; the block is dropped
}

// Geometry is a WGS-84 point in decimal degrees.
type Geometry struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// DecodedFields holds everything the group decoder could extract from one report.
type DecodedFields struct {
	// iRixhVV
	PresentWeatherCode  *Field[string]  `json:"present_weather_code,omitempty"`
	WeatherObserved     *Field[bool]    `json:"weather_observed,omitempty"`
	CloudBaseHeightCode *Field[int]     `json:"cloud_base_height_code,omitempty"`
	VisibilityKm        *Field[float64] `json:"visibility_km,omitempty"`

	// Nddff
	CloudCoverOctas  *Field[int]           `json:"cloud_cover_octas,omitempty"`
	WindDirectionDeg *Field[WindDirection] `json:"wind_direction_deg,omitempty"`
	WindSpeedKt      *Field[int]           `json:"wind_speed_kt,omitempty"`

	TemperatureC                   *Field[float64] `json:"temperature_c,omitempty"`
	DewPointC                      *Field[float64] `json:"dew_point_c,omitempty"`
	StationPressureHPa             *Field[float64] `json:"station_pressure_hpa,omitempty"`
	PressureHPa                    *Field[float64] `json:"pressure_hpa,omitempty"`
	PressureTendencyCharacteristic *Field[int]     `json:"pressure_tendency_characteristic,omitempty"`
	PressureChange3h               *Field[float64] `json:"pressure_change_3h,omitempty"`
	PrecipAmountMm                 *Field[float64] `json:"precip_amount_mm,omitempty"`

	// 8NhCLCMCH
	LowCloudAmountOctas *Field[int] `json:"low_cloud_amount_octas,omitempty"`
	LowCloudTypeCode    *Field[int] `json:"low_cloud_type_code,omitempty"`
	MidCloudTypeCode    *Field[int] `json:"mid_cloud_type_code,omitempty"`
	HighCloudTypeCode   *Field[int] `json:"high_cloud_type_code,omitempty"`

	// Section 3
	MaxTempC *Field[float64] `json:"max_temp_c,omitempty"`
	MinTempC *Field[float64] `json:"min_temp_c,omitempty"`
}

// ObservationRecord is one decoded, geolocated station report.
type ObservationRecord struct {
	StationID  string        `json:"station_id"`
	Name       string        `json:"name"`
	Country    string        `json:"country"`
	ElevationM int           `json:"elevation_m"`
	Geometry   Geometry      `json:"geometry"`
	RawReport  string        `json:"raw_synop"`
	Fields     DecodedFields `json:"decoded_fields"`
}

// DroppedStation records a header whose record could not be emitted.
type DroppedStation struct {
	StationID string
	Reason    error
}

// DecodeStats summarizes one bulletin decode.
type DecodeStats struct {
	Headers        int
	Records        int
	Dropped        []DroppedStation
	UnparsedGroups int
}

// Bulletin is the raw text export for one time window.
type Bulletin struct {
	Window    Window
	Text      string
	FetchedAt time.Time
}

// NewBulletin stamps a bulletin with the current clock time.
func NewBulletin(w Window, text string) Bulletin {
	return Bulletin{Window: w, Text: text, FetchedAt: clock.Now().UTC()}
}

// DecodedBulletin pairs a bulletin with its decoded records.
type DecodedBulletin struct {
	Bulletin Bulletin
	Records  []ObservationRecord
	Stats    DecodeStats
}
