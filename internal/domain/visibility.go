package domain

// fixedVisibilityKm holds WMO Table 4377 codes 89–99, which are not linear.
var fixedVisibilityKm = map[int]float64{
	89: 75,   // > 70 km
	90: 0.05, // < 0.05 km
	91: 0.05,
	92: 0.2,
	93: 0.5,
	94: 1,
	95: 2,
	96: 4,
	97: 10,
	98: 20,
	99: 50, // > 50 km
}

// DecodeVisibilityCode maps a two-digit VV code to kilometers. It returns
// false for non-numeric input and for codes the table leaves undefined (51–55).
func DecodeVisibilityCode(code string) (float64, bool) {
	vv, ok := parseDigits(code)
	if !ok || len(code) != 2 {
		return 0, false
	}

	switch {
	case vv <= 50:
		return float64(vv) / 10, true
	case vv >= 56 && vv <= 80:
		return float64(vv - 50), true
	case vv >= 81 && vv <= 88:
		return 30 + float64(vv-80)*5, true
	}

	km, ok := fixedVisibilityKm[vv]
	return km, ok
}

// parseDigits parses a non-empty string made only of ASCII digits.
func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
