package domain

import (
	"regexp"
	"strings"
)

var (
	phoneCharsRe = regexp.MustCompile(`^[+0-9 ().\-]{5,20}$`)
	nonDigitRe   = regexp.MustCompile(`[^0-9]`)
)

// mobilePatterns are digit-only forms (country code included) of mobile
// numbers for the countries the directory is used in.
var mobilePatterns = []struct {
	country string
	re      *regexp.Regexp
}{
	{"RU", regexp.MustCompile(`^79\d{9}$`)},
	{"KZ", regexp.MustCompile(`^77\d{9}$`)},
	{"UA", regexp.MustCompile(`^380(39|50|63|66|67|68|73|9\d)\d{7}$`)},
	{"BY", regexp.MustCompile(`^375(25|29|33|44)\d{7}$`)},
	{"GE", regexp.MustCompile(`^9955\d{8}$`)},
	{"AM", regexp.MustCompile(`^374(4\d|55|77|9\d)\d{6}$`)},
	{"TR", regexp.MustCompile(`^905\d{9}$`)},
	{"RS", regexp.MustCompile(`^3816\d{7,8}$`)},
	{"ES", regexp.MustCompile(`^34[67]\d{8}$`)},
	{"US", regexp.MustCompile(`^1[2-9]\d{9}$`)},
}

// ValidatePhone accepts "+", digits, spaces, parentheses, hyphens and dots,
// 5 to 20 characters. Returns the trimmed phone.
func ValidatePhone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if !phoneCharsRe.MatchString(phone) {
		return "", NewValidationError("phone", "use digits, spaces, +, (), - or . (5-20 characters)")
	}
	return phone, nil
}

// MobileCountry reports the country whose mobile numbering plan the phone
// matches. It is informational and never used to reject input.
func MobileCountry(phone string) (string, bool) {
	digits := nonDigitRe.ReplaceAllString(phone, "")
	if strings.HasPrefix(digits, "8") && len(digits) == 11 {
		digits = "7" + digits[1:]
	}
	for _, p := range mobilePatterns {
		if p.re.MatchString(digits) {
			return p.country, true
		}
	}
	return "", false
}
