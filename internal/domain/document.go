package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// cityDocument is the stored shape of a city in both stores:
// {name, photo?, places, created_at, updated_at}. The key is the document id.
type cityDocument struct {
	Name      string     `json:"name"`
	Photo     *CityPhoto `json:"photo,omitempty"`
	Places    []Place    `json:"places"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// EncodeCity serialises a city into its stored document.
func EncodeCity(c *City) ([]byte, error) {
	places := make([]Place, len(c.Places))
	copy(places, c.Places)
	for i := range places {
		if places[i].SocialLinks == nil {
			places[i].SocialLinks = SocialLinks{}
		}
		if places[i].Photos == nil {
			places[i].Photos = []Photo{}
		}
	}
	return json.Marshal(cityDocument{
		Name:      c.Name,
		Photo:     c.Photo,
		Places:    places,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	})
}

// EncodePlaces serialises a place list the way it appears inside a city document.
func EncodePlaces(places []Place) ([]byte, error) {
	doc, err := EncodeCity(&City{Places: places})
	if err != nil {
		return nil, err
	}
	var shell struct {
		Places json.RawMessage `json:"places"`
	}
	if err := json.Unmarshal(doc, &shell); err != nil {
		return nil, err
	}
	return shell.Places, nil
}

// DecodeCity parses a stored city document. This is the ingress boundary for
// both stores: legacy shapes (places as an object, social_links in any
// alternative form, coordinates as strings, photos as bare URLs) are coerced,
// and unrecognised parts are dropped and returned as issues.
func DecodeCity(key string, data []byte) (*City, []*MalformedDataError, error) {
	var raw struct {
		Name      string          `json:"name"`
		Photo     json.RawMessage `json:"photo"`
		Places    json.RawMessage `json:"places"`
		CreatedAt json.RawMessage `json:"created_at"`
		UpdatedAt json.RawMessage `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode city %s: %w", key, err)
	}

	var issues []*MalformedDataError
	city := &City{Key: key, Name: raw.Name}

	if photo := bytes.TrimSpace(raw.Photo); len(photo) > 0 && !bytes.Equal(photo, []byte("null")) {
		var p CityPhoto
		if err := json.Unmarshal(photo, &p); err != nil {
			issues = append(issues, &MalformedDataError{Entity: "city", Field: "photo", Reason: err.Error()})
		} else {
			city.Photo = &p
		}
	}

	var issue *MalformedDataError
	city.CreatedAt, issue = decodeTime("city", "created_at", raw.CreatedAt)
	issues = appendIssue(issues, issue)
	city.UpdatedAt, issue = decodeTime("city", "updated_at", raw.UpdatedAt)
	issues = appendIssue(issues, issue)

	items, listIssues := decodePlaceList(raw.Places)
	issues = append(issues, listIssues...)

	city.Places = make([]Place, 0, len(items))
	for i, item := range items {
		p, placeIssues, ok := decodePlace(key, item)
		issues = append(issues, placeIssues...)
		if !ok {
			issues = append(issues, &MalformedDataError{Entity: "city", Field: "places", Reason: fmt.Sprintf("dropped unreadable place #%d", i)})
			continue
		}
		if _, dup := city.Place(p.ID); dup {
			issues = append(issues, &MalformedDataError{Entity: "city", Field: "places", Reason: "duplicate place id " + p.ID})
			continue
		}
		city.Places = append(city.Places, p)
	}

	return city, issues, nil
}

// decodePlaceList accepts an array, or an object keyed by index as written by
// document databases that turn arrays into maps.
func decodePlaceList(raw json.RawMessage) ([]json.RawMessage, []*MalformedDataError) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, []*MalformedDataError{{Entity: "city", Field: "places", Reason: err.Error()}}
		}
		return items, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, []*MalformedDataError{{Entity: "city", Field: "places", Reason: err.Error()}}
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, errA := strconv.Atoi(keys[i])
			b, errB := strconv.Atoi(keys[j])
			if errA == nil && errB == nil {
				return a < b
			}
			return keys[i] < keys[j]
		})
		items := make([]json.RawMessage, 0, len(keys))
		for _, k := range keys {
			items = append(items, obj[k])
		}
		return items, []*MalformedDataError{{Entity: "city", Field: "places", Reason: "stored as object, coerced to list"}}
	}
	return nil, []*MalformedDataError{{Entity: "city", Field: "places", Reason: "not a list"}}
}

type placeRecord struct {
	Place
	SocialLinks json.RawMessage `json:"social_links"`
	Latitude    json.RawMessage `json:"latitude"`
	Longitude   json.RawMessage `json:"longitude"`
	CategoryID  json.RawMessage `json:"category_id"`
	Photos      json.RawMessage `json:"photos"`
	CreatedAt   json.RawMessage `json:"created_at"`
	UpdatedAt   json.RawMessage `json:"updated_at"`
}

func decodePlace(cityKey string, raw json.RawMessage) (Place, []*MalformedDataError, bool) {
	var rec placeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Place{}, nil, false
	}

	p := rec.Place
	p.CityKey = cityKey

	var issues []*MalformedDataError
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(cityKey+"/"+p.Name)).String()
		issues = append(issues, &MalformedDataError{Entity: "place", Field: "id", Reason: "missing, derived from name"})
	}

	links, linkIssues := DecodeSocialLinks(rec.SocialLinks)
	p.SocialLinks = links
	issues = append(issues, linkIssues...)

	var issue *MalformedDataError
	p.Latitude, issue = decodeCoordinate("latitude", rec.Latitude)
	issues = appendIssue(issues, issue)
	p.Longitude, issue = decodeCoordinate("longitude", rec.Longitude)
	issues = appendIssue(issues, issue)

	p.CategoryID, issue = decodeInt("category_id", rec.CategoryID)
	issues = appendIssue(issues, issue)

	p.Photos, issue = decodePhotos(rec.Photos)
	issues = appendIssue(issues, issue)

	p.CreatedAt, issue = decodeTime("place", "created_at", rec.CreatedAt)
	issues = appendIssue(issues, issue)
	p.UpdatedAt, issue = decodeTime("place", "updated_at", rec.UpdatedAt)
	issues = appendIssue(issues, issue)

	return p, issues, true
}

func decodeCoordinate(field string, raw json.RawMessage) (*float64, *MalformedDataError) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		if v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
			return &v, nil
		}
	}
	return nil, &MalformedDataError{Entity: "place", Field: field, Reason: "not a number, dropped"}
}

func decodeInt(field string, raw json.RawMessage) (int, *MalformedDataError) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v, nil
		}
	}
	return 0, &MalformedDataError{Entity: "place", Field: field, Reason: "not an integer, dropped"}
}

func decodePhotos(raw json.RawMessage) ([]Photo, *MalformedDataError) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Photo{}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []Photo{}, &MalformedDataError{Entity: "place", Field: "photos", Reason: "not a list, dropped"}
	}
	photos := make([]Photo, 0, len(items))
	dropped := 0
	for _, item := range items {
		var ph Photo
		if err := json.Unmarshal(item, &ph); err == nil {
			photos = append(photos, ph)
			continue
		}
		var u string
		if err := json.Unmarshal(item, &u); err == nil && strings.TrimSpace(u) != "" {
			photos = append(photos, Photo{URL: strings.TrimSpace(u)})
			continue
		}
		dropped++
	}
	if dropped > 0 {
		return photos, &MalformedDataError{Entity: "place", Field: "photos", Reason: fmt.Sprintf("dropped %d unreadable photos", dropped)}
	}
	return photos, nil
}

// decodeTime accepts RFC 3339 strings and unix milliseconds.
func decodeTime(entity, field string, raw json.RawMessage) (time.Time, *MalformedDataError) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}
	var t time.Time
	if err := json.Unmarshal(raw, &t); err == nil {
		return t, nil
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, &MalformedDataError{Entity: entity, Field: field, Reason: "unreadable timestamp, dropped"}
}

func appendIssue(issues []*MalformedDataError, issue *MalformedDataError) []*MalformedDataError {
	if issue == nil {
		return issues
	}
	return append(issues, issue)
}
