package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// headerMarker opens header and decoration lines in the text export.
const headerMarker = "#"

// stationHeaderRe matches a station header line, e.g.
// "# SYNOPS from 42182, New Delhi/Safdarjung (India) | 28-35-00N | 077-12-00E | 216 m".
// The coordinate fields are captured loosely; ConvertDMS decides whether they are valid.
var stationHeaderRe = regexp.MustCompile(
	`#[ \t]+SYNOPS from (\d+), (.+?) \(([^()\n]+)\) \| ([^|\n]+?) \| ([^|\n]+?) \| (-?\d+) m`,
)

// ErrMalformedElevation is set on a block whose header elevation does not fit an int.
var ErrMalformedElevation = errors.New("malformed elevation")

// SegmentBulletin splits bulletin text into station blocks in document order.
// Text before the first header is ignored; a bulletin without headers yields nil.
func SegmentBulletin(text string) []StationBlock {
	matches := stationHeaderRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	blocks := make([]StationBlock, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		block := StationBlock{
			Header: StationHeader{
				ID:           text[m[2]:m[3]],
				Name:         text[m[4]:m[5]],
				Country:      text[m[6]:m[7]],
				LatitudeDMS:  text[m[8]:m[9]],
				LongitudeDMS: text[m[10]:m[11]],
			},
			Raw: cleanReport(text[m[1]:end]),
		}
		// The pattern guarantees digits, so this only fails on overflow.
		elev := text[m[12]:m[13]]
		if v, err := strconv.Atoi(elev); err == nil {
			block.Header.ElevationM = v
		} else {
			block.Err = fmt.Errorf("%w %q", ErrMalformedElevation, elev)
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// cleanReport trims every line and drops blank and decoration lines.
func cleanReport(chunk string) string {
	lines := strings.Split(chunk, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, headerMarker) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
