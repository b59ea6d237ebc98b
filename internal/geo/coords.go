package geo

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// COORDINATES
// Lat/lon travel the app as fixed-precision decimal strings. User input and
// map clicks are funneled through ParseDecimalCoordinate; the strict
// six-fractional-digit format is enforced only at validation time so partially
// typed values survive editing.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// MsgInvalidCoordinates is the user-facing message for malformed or
// out-of-range point coordinates.
const MsgInvalidCoordinates = "Invalid point coordinates, please try again"

// Placeholder shown where a coordinate cannot be displayed.
const Placeholder = "—"

var (
	decimalInputRe  = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	strictDecimalRe = regexp.MustCompile(`^-?\d{2,3}\.\d{6}$`)
)

// ParseDecimalCoordinate accepts a decimal-degree string (optional sign,
// digits, optional fractional digits) and truncates the fraction to six
// digits without rounding. Anything else yields the empty string. The
// function is idempotent.
func ParseDecimalCoordinate(raw string) string {
	s := strings.TrimSpace(raw)
	if !decimalInputRe.MatchString(s) {
		return ""
	}
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return s
	}
	frac := s[dot+1:]
	if len(frac) > 6 {
		frac = frac[:6]
	}
	return s[:dot+1] + frac
}

// FormatDecimal renders a float as a six-fractional-digit decimal string,
// truncating (not rounding) the excess. This is the canonical form for
// coordinates captured from map clicks.
func FormatDecimal(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	truncated := math.Trunc(f*1e6) / 1e6
	return strconv.FormatFloat(truncated, 'f', 6, 64)
}

// ValidateCoordinates checks a lat/lon pair for save. Both values must match
// the strict -?DD(D).DDDDDD format and fall in geographic range. Empty inputs
// are "not yet valid": invalid, but with an empty message so callers can
// suppress the error display while the user is still typing.
func ValidateCoordinates(lat, lon string) (bool, string) {
	lat = strings.TrimSpace(lat)
	lon = strings.TrimSpace(lon)
	if lat == "" || lon == "" {
		return false, ""
	}

	if !strictDecimalRe.MatchString(lat) || !strictDecimalRe.MatchString(lon) {
		return false, MsgInvalidCoordinates
	}

	latNum, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return false, MsgInvalidCoordinates
	}
	lonNum, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return false, MsgInvalidCoordinates
	}

	if latNum < -90 || latNum > 90 {
		return false, MsgInvalidCoordinates
	}
	if lonNum < -180 || lonNum > 180 {
		return false, MsgInvalidCoordinates
	}

	return true, ""
}

// DecimalToDMS converts a decimal-degree value to degrees-minutes-seconds
// display form, e.g. `55° 45' 4.47"`. Degrees and minutes are floored and the
// seconds fraction is truncated, never rounded. NaN yields the placeholder.
func DecimalToDMS(decimal float64) string {
	if math.IsNaN(decimal) || math.IsInf(decimal, 0) {
		return Placeholder
	}

	absolute := math.Abs(decimal)
	degrees := math.Floor(absolute)
	minutesFull := (absolute - degrees) * 60
	minutes := math.Floor(minutesFull)
	seconds := math.Trunc((minutesFull-minutes)*60*100) / 100

	return fmt.Sprintf(`%d° %d' %.2f"`, int(degrees), int(minutes), seconds)
}

// DecimalStringToDMS converts a stored coordinate string to DMS display form.
// Unparseable input yields the placeholder.
func DecimalStringToDMS(s string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Placeholder
	}
	return DecimalToDMS(f)
}

// FormatCoordinate renders a stored coordinate string with six decimals for
// display, or the placeholder when it does not parse.
func FormatCoordinate(s string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Placeholder
	}
	return strconv.FormatFloat(f, 'f', 6, 64)
}
