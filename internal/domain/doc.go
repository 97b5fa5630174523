// Package domain decodes WMO FM-12 SYNOP bulletins into geolocated observation records.
//
// # Data Source
//
// Bulletins come from the Ogimet SYNOP text export
// (https://www.ogimet.com/display_synopsc2.php with fmt=txt). The upstream adapter
// strips the surrounding HTML and hands this package the text inside <pre>.
//
// # Bulletin Layout
//
// Each station starts with a header line followed by zero or more report lines:
//
//	# SYNOPS from 42182, New Delhi/Safdarjung (India) | 28-35-00N | 077-12-00E | 216 m
//	#
//	202401010000 AAXX 01001 42182 32965 70000 10120 20100 39854 40146 52010 333 10210 20050=
//
// The header carries the station id, name, country, latitude and longitude in
// degree-minute-second notation and the elevation in meters. Lines beginning
// with "#" inside a block are decoration and are discarded.
//
// # Group Conventions
//
// Reports are whitespace separated groups of five characters. "/" marks a
// missing digit and is normalized to 'X'; "=" terminates a report. The station
// id anchors Section 1, which opens with two fixed groups:
//
//	iRixhVV  ix weather indicator, h cloud base height, VV visibility (Table 4377)
//	Nddff    N total cloud cover in octas, dd direction in tens of degrees, ff speed
//
// followed by variable groups keyed by their first digit:
//
//	1snTTT   temperature         (Section 3: maximum temperature)
//	2snTdTdTd dew point          (Section 3: minimum temperature)
//	3PoPoPoPo station pressure   4PPPP sea level pressure
//	5appp    pressure tendency   (also decoded in Section 3)
//	6RRRtR   precipitation       7wwW1W2 present weather   8NhCLCMCH clouds
//
// The token "333" switches the remaining groups to Section 3 semantics. The
// switch is one-way.
//
// Signs: sn=1 is negative. Tenths: TTT and PPPP are in tenths of a unit. Sea
// level and station pressure drop the thousands digit, so values under 100 hPa
// get 1000 added back. Tendency characteristics 5–8 (WMO Table 0200) mean the
// pressure fell, so the magnitude is negated.
//
// # Absent Values
//
// A [Field] pointer that is nil was never reported. A non-nil Field with Missing
// set was reported as "not available" by the encoding itself (a '/' sentinel,
// 999, or a code outside its table). Decoded floats are rounded to one decimal.
package domain
