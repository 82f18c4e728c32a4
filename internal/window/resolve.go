// Package window turns user-supplied time expressions into absolute query
// windows. Resolution is pure: the reference time is always injected, so
// the whole pipeline stays testable without a live clock.
package window

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/obskit/obsctl/internal/models"
)

var (
	// ErrInvalidTimeExpression marks input matching neither the relative
	// grammar nor an RFC 3339 timestamp.
	ErrInvalidTimeExpression = errors.New("invalid time expression")
	// ErrInvalidRange marks a resolved window whose start does not precede
	// its end.
	ErrInvalidRange = errors.New("invalid time range")
)

// relativeExpr is the relative grammar: <integer><unit>, unit in m/h/d.
var relativeExpr = regexp.MustCompile(`^(\d+)([mhd])$`)

var unitDurations = map[string]time.Duration{
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// Resolve normalizes the from/to expressions into a half-open window.
//
// A relative from ("15m", "4h", "7d") resolves to [ref-duration, ref) and
// rejects a to endpoint. Absolute endpoints are RFC 3339 timestamps; an
// empty to defaults to ref.
func Resolve(from, to string, ref time.Time) (models.TimeWindow, error) {
	if from == "" {
		return models.TimeWindow{}, fmt.Errorf("%w: empty from expression", ErrInvalidTimeExpression)
	}

	if match := relativeExpr.FindStringSubmatch(from); match != nil {
		if to != "" {
			return models.TimeWindow{}, fmt.Errorf("%w: relative expression %q cannot be combined with an end time", ErrInvalidTimeExpression, from)
		}
		count, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return models.TimeWindow{}, fmt.Errorf("%w: %q", ErrInvalidTimeExpression, from)
		}
		// "0m" is grammatically valid but resolves to an empty interval;
		// newWindow reports that as a range error.
		duration := time.Duration(count) * unitDurations[match[2]]
		return newWindow(ref.Add(-duration), ref)
	}

	start, err := time.Parse(time.RFC3339, from)
	if err != nil {
		return models.TimeWindow{}, fmt.Errorf("%w: %q", ErrInvalidTimeExpression, from)
	}

	end := ref
	if to != "" {
		end, err = time.Parse(time.RFC3339, to)
		if err != nil {
			return models.TimeWindow{}, fmt.Errorf("%w: %q", ErrInvalidTimeExpression, to)
		}
	}

	return newWindow(start, end)
}

func newWindow(start, end time.Time) (models.TimeWindow, error) {
	w, err := models.NewTimeWindow(start, end)
	if err != nil {
		return models.TimeWindow{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return w, nil
}
