package domain

import (
	"regexp"
	"strings"
)

var (
	brokenSchemeRe = regexp.MustCompile(`(?i)^(https?):/*`)
	anySchemeRe    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	multiSlashRe   = regexp.MustCompile(`/{2,}`)
)

// NormalizeURL prepares a user-supplied link for storage:
//   - trims whitespace
//   - repairs "http:" / "https:" written without "//"
//   - injects "https://" when no scheme is present
//   - collapses duplicate slashes in the path
//   - strips a single trailing slash
//
// An empty or whitespace-only input yields "".
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if m := brokenSchemeRe.FindStringSubmatch(s); m != nil {
		s = strings.ToLower(m[1]) + "://" + s[len(m[0]):]
	} else if !anySchemeRe.MatchString(s) {
		s = "https://" + strings.TrimLeft(s, "/")
	}

	sep := strings.Index(s, "://") + len("://")
	scheme, rest := s[:sep], s[sep:]

	tail := ""
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest, tail = rest[:i], rest[i:]
	}
	rest = multiSlashRe.ReplaceAllString(rest, "/")
	if tail == "" {
		rest = strings.TrimSuffix(rest, "/")
	}

	return scheme + rest + tail
}

// NormalizeText trims leading/trailing whitespace and compresses runs of
// whitespace into a single space. Case is preserved.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
