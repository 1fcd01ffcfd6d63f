package geo

import "errors"

var (
	ErrNotANumber = errors.New("not a number")
	ErrOutOfRange = errors.New("out of range")
)

// ParseLatitude accepts a decimal with dot or comma in [-90, 90].
func ParseLatitude(raw string) (float64, error) {
	return parseCoordinate(raw, 90)
}

// ParseLongitude accepts a decimal with dot or comma in [-180, 180].
func ParseLongitude(raw string) (float64, error) {
	return parseCoordinate(raw, 180)
}
