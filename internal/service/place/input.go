package place

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// Length limits of the free-text fields, in characters.
const (
	MaxNameLength         = 100
	MaxAddressLength      = 200
	MaxWorkingHoursLength = 200
	MaxPriceLength        = 100
	MaxDescriptionLength  = 1000
	MaxSocialLinks        = 10
	MaxPhotos             = 10
)

// ValidateText normalises whitespace and enforces a length limit. An empty
// value is an error only when required.
func ValidateText(field, raw string, maxLen int, required bool) (string, error) {
	text := strings.TrimSpace(raw)
	if field != "description" {
		text = domain.NormalizeText(text)
	}
	if text == "" && required {
		return "", domain.NewValidationError(field, "required")
	}
	if utf8.RuneCountInString(text) > maxLen {
		return "", domain.NewValidationError(field, fmt.Sprintf("max %d characters", maxLen))
	}
	return text, nil
}

// ValidateURL normalises a link and rejects values that cannot be one.
func ValidateURL(field, raw string) (string, error) {
	u := domain.NormalizeURL(raw)
	if u == "" {
		return "", nil
	}
	if strings.ContainsAny(u, " \t\n") || !strings.Contains(u[strings.Index(u, "://")+3:], ".") {
		return "", domain.NewValidationError(field, "not a link")
	}
	return u, nil
}

// normalize checks every field of p and rewrites it into its stored form.
// All errors are collected.
func normalize(p *domain.Place) error {
	var errs []domain.FieldError
	text := func(field string, v *string, maxLen int, required bool) {
		out, err := ValidateText(field, *v, maxLen, required)
		if err != nil {
			errs = append(errs, domain.FieldErrors(err)...)
			return
		}
		*v = out
	}
	link := func(field string, v *string) {
		out, err := ValidateURL(field, *v)
		if err != nil {
			errs = append(errs, domain.FieldErrors(err)...)
			return
		}
		*v = out
	}

	text("name", &p.Name, MaxNameLength, true)
	text("address", &p.Address, MaxAddressLength, false)
	text("working_hours", &p.WorkingHours, MaxWorkingHoursLength, false)
	text("average_price", &p.AveragePrice, MaxPriceLength, false)
	text("description", &p.Description, MaxDescriptionLength, false)
	link("website", &p.Website)
	link("map_url", &p.MapURL)

	if strings.TrimSpace(p.Phone) != "" {
		phone, err := domain.ValidatePhone(p.Phone)
		if err != nil {
			errs = append(errs, domain.FieldErrors(err)...)
		} else {
			p.Phone = phone
		}
	} else {
		p.Phone = ""
	}

	if p.CategoryID <= 0 {
		errs = append(errs, domain.FieldError{Field: "category_id", Message: "required"})
	}
	if (p.Latitude == nil) != (p.Longitude == nil) {
		errs = append(errs, domain.FieldError{Field: "coordinates", Message: "latitude and longitude go together"})
	}
	if p.Latitude != nil && (*p.Latitude < -90 || *p.Latitude > 90) {
		errs = append(errs, domain.FieldError{Field: "latitude", Message: "must be between -90 and 90"})
	}
	if p.Longitude != nil && (*p.Longitude < -180 || *p.Longitude > 180) {
		errs = append(errs, domain.FieldError{Field: "longitude", Message: "must be between -180 and 180"})
	}

	if len(p.SocialLinks) > MaxSocialLinks {
		errs = append(errs, domain.FieldError{Field: "social_links", Message: fmt.Sprintf("max %d links", MaxSocialLinks)})
	}
	links := make(domain.SocialLinks, len(p.SocialLinks))
	for name, u := range p.SocialLinks {
		if nu := domain.NormalizeURL(u); nu != "" {
			links[name] = nu
		}
	}
	p.SocialLinks = links

	if len(p.Photos) > MaxPhotos {
		errs = append(errs, domain.FieldError{Field: "photos", Message: fmt.Sprintf("max %d photos", MaxPhotos)})
	}
	if p.Photos == nil {
		p.Photos = []domain.Photo{}
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
