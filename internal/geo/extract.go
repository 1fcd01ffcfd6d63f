// Package geo pulls coordinates out of map links and expands short links.
package geo

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Point is a location recovered from a map link. PlaceID is set when the
// link carries a Google place id.
type Point struct {
	Latitude  float64
	Longitude float64
	PlaceID   string
}

var (
	pinRe     = regexp.MustCompile(`!3d(-?\d{1,3}(?:\.\d+)?)!4d(-?\d{1,3}(?:\.\d+)?)`)
	atRe      = regexp.MustCompile(`@(-?\d{1,3}(?:\.\d+)?),(-?\d{1,3}(?:\.\d+)?)`)
	pairRe    = regexp.MustCompile(`^\s*(-?\d{1,3}(?:\.\d+)?)\s*,\s*(-?\d{1,3}(?:\.\d+)?)\s*$`)
	placeIDRe = regexp.MustCompile(`(?:place_id[:=]|query_place_id=|!1s)(ChIJ[A-Za-z0-9_-]+)`)
)

// coordinate-bearing query parameters, most specific first
var pairParams = []string{"ll", "q", "query", "destination", "center", "sll"}

// Extract finds coordinates in a map URL. An exact pin (!3d..!4d..) wins
// over the "@lat,lng" viewport centre, which wins over query parameters.
// Yandex "ll" and "pt" use lng,lat order.
func Extract(rawURL string) (Point, bool) {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return Point{}, false
	}

	p := Point{PlaceID: placeID(s)}

	if m := pinRe.FindStringSubmatch(s); m != nil {
		if lat, lng, ok := parsePair(m[1], m[2]); ok {
			p.Latitude, p.Longitude = lat, lng
			return p, true
		}
	}
	if m := atRe.FindStringSubmatch(s); m != nil {
		if lat, lng, ok := parsePair(m[1], m[2]); ok {
			p.Latitude, p.Longitude = lat, lng
			return p, true
		}
	}

	u, err := url.Parse(s)
	if err != nil {
		return Point{}, false
	}
	q := u.Query()
	yandex := strings.Contains(strings.ToLower(u.Hostname()), "yandex")

	if yandex {
		for _, key := range []string{"pt", "ll"} {
			if m := pairRe.FindStringSubmatch(q.Get(key)); m != nil {
				if lat, lng, ok := parsePair(m[2], m[1]); ok {
					p.Latitude, p.Longitude = lat, lng
					return p, true
				}
			}
		}
	}
	for _, key := range pairParams {
		if m := pairRe.FindStringSubmatch(q.Get(key)); m != nil {
			if lat, lng, ok := parsePair(m[1], m[2]); ok {
				p.Latitude, p.Longitude = lat, lng
				return p, true
			}
		}
	}
	return Point{}, false
}

// IsShortLink reports whether the URL is a redirecting share link that must
// be resolved before extraction.
func IsShortLink(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case host == "maps.app.goo.gl", host == "g.co":
		return true
	case host == "goo.gl":
		return strings.HasPrefix(u.Path, "/maps")
	case strings.HasPrefix(host, "yandex."):
		return strings.HasPrefix(u.Path, "/maps/-/")
	}
	return false
}

func placeID(s string) string {
	if m := placeIDRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func parsePair(latStr, lngStr string) (float64, float64, bool) {
	lat, err := ParseLatitude(latStr)
	if err != nil {
		return 0, 0, false
	}
	lng, err := ParseLongitude(lngStr)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

func parseCoordinate(raw string, limit float64) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrNotANumber
	}
	if v < -limit || v > limit {
		return 0, ErrOutOfRange
	}
	return v, nil
}
