package tweet

import (
	"regexp"
	"strconv"
)

// Extractor pulls the user id and coordinates out of a raw tweet line with
// compiled regular expressions, bypassing JSON decoding entirely. It exists
// for the regex scanning path of the aggregation comparison.
type Extractor struct {
	userID *regexp.Regexp
	geo    *regexp.Regexp
}

// NewExtractor compiles the extraction patterns once for reuse across lines.
func NewExtractor() *Extractor {
	return &Extractor{
		userID: regexp.MustCompile(`"user":\s*\{[^{}]*?"id_str":\s*"(\d+)"`),
		geo:    regexp.MustCompile(`"coordinates":\s*\[\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*\]`),
	}
}

// Extract returns the user id and coordinates from a line, or ok=false when
// either pattern is absent. Mirrors the JSON path: only tweets carrying both
// an author and a coordinate pair participate in the aggregation.
func (e *Extractor) Extract(line []byte) (userID string, longitude, latitude float64, ok bool) {
	userMatch := e.userID.FindSubmatch(line)
	if userMatch == nil {
		return "", 0, 0, false
	}
	geoMatch := e.geo.FindSubmatch(line)
	if geoMatch == nil {
		return "", 0, 0, false
	}

	longitude, err := strconv.ParseFloat(string(geoMatch[1]), 64)
	if err != nil {
		return "", 0, 0, false
	}
	latitude, err = strconv.ParseFloat(string(geoMatch[2]), 64)
	if err != nil {
		return "", 0, 0, false
	}

	return string(userMatch[1]), longitude, latitude, true
}
