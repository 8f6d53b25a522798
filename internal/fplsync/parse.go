package fplsync

import (
	"strconv"
	"strings"
)

// parseIntOrNull parses s as a base-10 integer. An empty (after trimming) or
// unparsable value yields nil, never an error: malformed source fields degrade
// to SQL NULL while the record is still ingested.
func parseIntOrNull(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseFloatOrNull parses s as a float. Same contract as parseIntOrNull.
func parseFloatOrNull(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// valueScale converts the source's tenths-of-a-unit transfer values
// (e.g. now_cost 55) to a decimal unit price (5.5).
const valueScale = 10.0

// scaleValue applies valueScale, passing nil through.
func scaleValue(v *float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v / valueScale
	return &scaled
}

// positionFromCode maps the source's element_type codes onto positions.
// Unrecognized codes map to nil, not to a guessed position.
func positionFromCode(code *int64) *string {
	if code == nil {
		return nil
	}
	var pos string
	switch *code {
	case 1:
		pos = PositionGK
	case 2:
		pos = PositionDEF
	case 3:
		pos = PositionMID
	case 4:
		pos = PositionFWD
	default:
		return nil
	}
	return &pos
}
