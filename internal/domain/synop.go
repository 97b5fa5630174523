package domain

import "strings"

const (
	// missingSentinel replaces '/' so that every group is plain ASCII.
	missingSentinel = 'X'

	groupLength   = 5
	section3Token = "333"

	// noSignificantWeather is reported when iX says group 7 was omitted on purpose.
	noSignificantWeather = "no_sig"

	// notReportedTenths is the TTT value for "not measured".
	notReportedTenths = 999

	precipTrace     = 990
	precipTraceMm   = 0.05
	maxTendencyCode = 8
	obscuredOctas   = 9
)

// Section identifies which group table applies to the current token.
type Section int

const (
	Section1 Section = iota + 1
	Section3
)

func (s Section) String() string {
	switch s {
	case Section1:
		return "section1"
	case Section3:
		return "section3"
	default:
		return "unknown"
	}
}

// next returns the section that follows tok. The only transition is 1 → 3.
func (s Section) next(tok string) Section {
	if tok == section3Token {
		return Section3
	}
	return s
}

// DecodeSynop decodes a station's raw report text.
func DecodeSynop(raw, stationID string) DecodedFields {
	fields, _ := decodeSynop(raw, stationID)
	return fields
}

// tokenize normalizes separators and terminators and splits on whitespace.
func tokenize(raw string) []string {
	r := strings.NewReplacer("/", string(missingSentinel), "=", " ")
	return strings.Fields(r.Replace(raw))
}

// decodeSynop returns the decoded fields and the number of five-character
// groups that could not be interpreted.
func decodeSynop(raw, stationID string) (DecodedFields, int) {
	var f DecodedFields
	tokens := tokenize(raw)

	for i, tok := range tokens {
		if tok == stationID {
			tokens = tokens[i+1:]
			break
		}
	}

	unparsed := 0

	if len(tokens) > 0 {
		if len(tokens[0]) == groupLength {
			decodeIndicatorGroup(tokens[0], &f)
		}
		tokens = tokens[1:]
	}

	if len(tokens) > 0 {
		if len(tokens[0]) == groupLength && !decodeWindGroup(tokens[0], &f) {
			unparsed++
		}
		tokens = tokens[1:]
	}

	section := Section1
	for _, tok := range tokens {
		if next := section.next(tok); next != section {
			section = next
			continue
		}
		if len(tok) != groupLength {
			continue
		}
		if !applyGroup(section, tok, &f) {
			unparsed++
		}
	}

	return f, unparsed
}

// decodeIndicatorGroup handles iRixhVV.
func decodeIndicatorGroup(g string, f *DecodedFields) {
	if ix := g[1]; ix == '2' || ix == '3' {
		f.PresentWeatherCode = Present(noSignificantWeather)
		f.WeatherObserved = Present(false)
	}

	switch h := g[2]; {
	case isDigit(h):
		f.CloudBaseHeightCode = Present(int(h - '0'))
	case h == missingSentinel:
		f.CloudBaseHeightCode = Absent[int]()
	}

	if km, ok := DecodeVisibilityCode(g[3:5]); ok {
		f.VisibilityKm = Present(roundTo(km, 1))
	} else {
		f.VisibilityKm = Absent[float64]()
	}
}

// decodeWindGroup handles Nddff. Cloud cover and wind are independent: a bad
// wind part leaves both wind fields unset and reports false.
func decodeWindGroup(g string, f *DecodedFields) bool {
	switch n := g[0]; {
	case isDigit(n):
		f.CloudCoverOctas = Present(min(int(n-'0'), obscuredOctas))
	case n == missingSentinel:
		f.CloudCoverOctas = Absent[int]()
	}

	dd, okD := parseDigits(g[1:3])
	ff, okF := parseDigits(g[3:5])
	if !okD || !okF {
		return false
	}

	var dir WindDirection
	switch {
	case dd == 0 && ff == 0:
		dir = WindDirection{}
	case dd == 99:
		dir = WindDirection{Variable: true}
	default:
		dir = WindDirection{Degrees: dd * 10}
	}
	f.WindDirectionDeg = Present(dir)
	f.WindSpeedKt = Present(ff)
	return true
}

// applyGroup decodes one variable group and merges it into f. It reports
// whether the group was understood; groups a section does not define are
// ignored without counting as failures.
func applyGroup(section Section, g string, f *DecodedFields) bool {
	switch section {
	case Section1:
		switch g[0] {
		case '1':
			return set(&f.TemperatureC, g, signedTenths)
		case '2':
			return set(&f.DewPointC, g, signedTenths)
		case '3':
			return set(&f.StationPressureHPa, g, pressure)
		case '4':
			return set(&f.PressureHPa, g, pressure)
		case '5':
			return applyTendency(g, f)
		case '6':
			return set(&f.PrecipAmountMm, g, precipitation)
		case '7':
			return set(&f.PresentWeatherCode, g, presentWeather)
		case '8':
			return applyClouds(g, f)
		}
	case Section3:
		switch g[0] {
		case '1':
			return set(&f.MaxTempC, g, signedTenths)
		case '2':
			return set(&f.MinTempC, g, signedTenths)
		case '5':
			return applyTendency(g, f)
		}
	}
	return true
}

// set decodes g with decode and stores the result when it succeeds.
func set[T any](dst **Field[T], g string, decode func(string) (*Field[T], bool)) bool {
	v, ok := decode(g)
	if ok {
		*dst = v
	}
	return ok
}

// signedTenths decodes snTTT: sn=1 is negative, TTT is tenths, 999 is not reported.
func signedTenths(g string) (*Field[float64], bool) {
	val, ok := parseDigits(g[2:5])
	if !ok {
		return nil, false
	}
	if val == notReportedTenths {
		return Absent[float64](), true
	}
	v := float64(val) / 10
	if g[1] == '1' {
		v = -v
	}
	return Present(roundTo(v, 1)), true
}

// pressure decodes PPPP in tenths of hPa with the thousands digit omitted.
func pressure(g string) (*Field[float64], bool) {
	if g[1] == missingSentinel {
		return Absent[float64](), true
	}
	val, ok := parseDigits(g[1:5])
	if !ok {
		return nil, false
	}
	hpa := float64(val) / 10
	if hpa < 100 {
		hpa += 1000
	}
	return Present(roundTo(hpa, 1)), true
}

// tendency is the decoded 5appp group.
type tendency struct {
	characteristic *Field[int]
	change         *Field[float64]
}

func pressureTendency(g string) (tendency, bool) {
	if g[1] == missingSentinel || g[2] == missingSentinel {
		return tendency{characteristic: Absent[int](), change: Absent[float64]()}, true
	}
	a, okA := parseDigits(g[1:2])
	ppp, okP := parseDigits(g[2:5])
	if !okA || !okP || a > maxTendencyCode {
		return tendency{}, false
	}
	change := float64(ppp) / 10
	if a >= 5 {
		change = -change
	}
	return tendency{characteristic: Present(a), change: Present(roundTo(change, 1))}, true
}

func applyTendency(g string, f *DecodedFields) bool {
	t, ok := pressureTendency(g)
	if !ok {
		return false
	}
	f.PressureTendencyCharacteristic = t.characteristic
	f.PressureChange3h = t.change
	return true
}

// precipitation decodes RRR. 990 is a trace; the remaining 99x codes are not decoded.
func precipitation(g string) (*Field[float64], bool) {
	code, ok := parseDigits(g[1:4])
	if !ok {
		return nil, false
	}
	switch {
	case code < precipTrace:
		return Present(float64(code)), true
	case code == precipTrace:
		return Present(roundTo(precipTraceMm, 1)), true
	default:
		return Absent[float64](), true
	}
}

// presentWeather keeps ww verbatim.
func presentWeather(g string) (*Field[string], bool) {
	return Present(g[1:3]), true
}

// applyClouds decodes 8NhCLCMCH, keeping each digit that is numeric.
func applyClouds(g string, f *DecodedFields) bool {
	if nh := g[1]; isDigit(nh) {
		f.LowCloudAmountOctas = Present(min(int(nh-'0'), obscuredOctas))
	}
	targets := []**Field[int]{&f.LowCloudTypeCode, &f.MidCloudTypeCode, &f.HighCloudTypeCode}
	for i, dst := range targets {
		if c := g[2+i]; isDigit(c) {
			*dst = Present(int(c - '0'))
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
