// Package ingest parses plain-text observation input and writes
// discovered seeds back out, the two file-oriented edges of the
// search engine that sit outside the HTTP API.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rawblock/seedfinder/pkg/models"
)

const maxCoordinate = 3e7

// ParseObservations reads one observation per line in the form
// "<x> <y> <z> [<kind>]", where kind is "bedrock" or "other"
// (case-insensitive, defaulting to "other" when omitted). Blank lines
// and lines starting with '#' are skipped. A malformed or
// out-of-range line is dropped with a diagnostic rather than aborting
// the whole parse, so a caller can report every bad line at once.
// Once every line has been parsed, the full observation set is run
// through ValidateForMode for mode, and any per-column diagnostics it
// raises are appended to the returned errors.
func ParseObservations(r io.Reader, mode models.CrackerMode) ([]models.Observation, []error) {
	var observations []models.Observation
	var errs []error

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		obs, err := parseLine(line)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", lineNo, err))
			continue
		}
		observations = append(observations, obs)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("reading input: %w", err))
	}

	validated, modeErrs := ValidateForMode(observations, mode)
	errs = append(errs, modeErrs...)

	return validated, errs
}

func parseLine(line string) (models.Observation, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 && len(fields) != 4 {
		return models.Observation{}, fmt.Errorf("expected \"x y z [kind]\", got %q", line)
	}

	x, err := strconv.ParseInt(fields[0], 10, 32)
	if err != nil {
		return models.Observation{}, fmt.Errorf("invalid x: %w", err)
	}
	y, err := strconv.ParseInt(fields[1], 10, 32)
	if err != nil {
		return models.Observation{}, fmt.Errorf("invalid y: %w", err)
	}
	z, err := strconv.ParseInt(fields[2], 10, 32)
	if err != nil {
		return models.Observation{}, fmt.Errorf("invalid z: %w", err)
	}

	if x < -maxCoordinate || x > maxCoordinate || z < -maxCoordinate || z > maxCoordinate {
		return models.Observation{}, fmt.Errorf("coordinate out of range: x=%d z=%d", x, z)
	}
	if !validLayer(int32(y)) {
		return models.Observation{}, fmt.Errorf("y=%d is not a valid bedrock layer (1..4 or 123..126)", y)
	}

	kind := models.Other
	if len(fields) == 4 {
		switch strings.ToLower(fields[3]) {
		case "bedrock":
			kind = models.Bedrock
		case "other":
			kind = models.Other
		default:
			return models.Observation{}, fmt.Errorf("unknown kind %q", fields[3])
		}
	}

	return models.Observation{X: int32(x), Y: int32(y), Z: int32(z), Kind: kind}, nil
}

func validLayer(y int32) bool {
	return (y >= 1 && y <= 4) || (y >= 123 && y <= 126)
}
