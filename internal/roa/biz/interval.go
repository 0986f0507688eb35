package biz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ErrMalformedInterval indicates a storage-layer date range token that could
// not be parsed into two dated endpoints.
var ErrMalformedInterval = errors.New("malformed date range token")

// DateInterval is a validity range in canonical closed form: Start is the
// first date the fact held and End is the last, both inclusive.
type DateInterval struct {
	Start time.Time
	End   time.Time
}

// MarshalJSON renders the interval as ["YYYY-MM-DD","YYYY-MM-DD"].
func (d DateInterval) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{
		d.Start.Format(dateLayout),
		d.End.Format(dateLayout),
	})
}

// Inverted reports whether Start falls after End. The store occasionally
// produces such ranges on days with missing dumps; they are passed through
// and logged rather than rejected.
func (d DateInterval) Inverted() bool {
	return d.Start.After(d.End)
}

// ParseInterval converts a storage-layer range token into a closed interval.
// Each endpoint carries its own marker: '[' / ']' inclusive, '(' / ')'
// exclusive. An exclusive start is advanced by one day and an exclusive end
// retreated by one day, so "[2021-02-09,2022-01-27)" becomes
// (2021-02-09, 2022-01-26).
func ParseInterval(token string) (DateInterval, error) {
	if len(token) < 2 {
		return DateInterval{}, fmt.Errorf("%w: %q", ErrMalformedInterval, token)
	}

	var startExclusive, endExclusive bool
	switch token[0] {
	case '(':
		startExclusive = true
	case '[':
	default:
		return DateInterval{}, fmt.Errorf("%w: bad start marker in %q", ErrMalformedInterval, token)
	}
	switch token[len(token)-1] {
	case ')':
		endExclusive = true
	case ']':
	default:
		return DateInterval{}, fmt.Errorf("%w: bad end marker in %q", ErrMalformedInterval, token)
	}

	parts := strings.Split(token[1:len(token)-1], ",")
	if len(parts) != 2 {
		return DateInterval{}, fmt.Errorf("%w: expected two dates in %q", ErrMalformedInterval, token)
	}

	start, err := time.Parse(dateLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return DateInterval{}, fmt.Errorf("%w: %q: %v", ErrMalformedInterval, token, err)
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return DateInterval{}, fmt.Errorf("%w: %q: %v", ErrMalformedInterval, token, err)
	}

	if startExclusive {
		start = start.AddDate(0, 0, 1)
	}
	if endExclusive {
		end = end.AddDate(0, 0, -1)
	}

	return DateInterval{Start: start, End: end}, nil
}
