// Package fixed normalizes venue-reported numerics: decimal strings into
// fixed-point values at a known precision, and millisecond timestamps into
// nanoseconds. Venue payloads carry numbers as strings; everything here
// parses them exactly, never through a binary float.
package fixed

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrMalformedNumeric indicates a venue string that is not a valid number.
	ErrMalformedNumeric = errors.New("malformed numeric string")
	// ErrTimestampOverflow indicates a millisecond timestamp whose nanosecond
	// equivalent does not fit in int64.
	ErrTimestampOverflow = errors.New("timestamp overflow")
)

// maxMillis is the largest millisecond count whose nanosecond equivalent
// still fits in int64.
const maxMillis = math.MaxInt64 / int64(time.Millisecond)

// ToFixed parses raw as a decimal string and rounds it to the given number
// of fractional digits.
func ToFixed(raw string, precision int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrMalformedNumeric, raw)
	}
	return d.Round(precision), nil
}

// Int64FromString parses raw as a base-10 integer.
func Int64FromString(raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumeric, raw)
	}
	return n, nil
}

// MillisToNanos converts a millisecond epoch timestamp to nanoseconds.
func MillisToNanos(ms int64) (int64, error) {
	if ms > maxMillis || ms < -maxMillis {
		return 0, fmt.Errorf("%w: %d ms", ErrTimestampOverflow, ms)
	}
	return ms * int64(time.Millisecond), nil
}

// TimeFromMillis converts a millisecond epoch timestamp to a UTC time.Time.
func TimeFromMillis(ms int64) (time.Time, error) {
	ns, err := MillisToNanos(ms)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, ns).UTC(), nil
}
