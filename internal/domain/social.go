package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// GenericSocialName labels links whose domain is not in the known table.
const GenericSocialName = "Link"

// SocialLinks maps a display name ("Instagram") to a URL. This is the only
// in-memory shape; alternative stored shapes are converted by DecodeSocialLinks.
type SocialLinks map[string]string

var socialDomains = []struct {
	domain string
	name   string
}{
	{"instagram.com", "Instagram"},
	{"instagr.am", "Instagram"},
	{"facebook.com", "Facebook"},
	{"fb.com", "Facebook"},
	{"fb.me", "Facebook"},
	{"vk.com", "VK"},
	{"vk.ru", "VK"},
	{"t.me", "Telegram"},
	{"telegram.me", "Telegram"},
	{"youtube.com", "YouTube"},
	{"youtu.be", "YouTube"},
	{"tiktok.com", "TikTok"},
	{"twitter.com", "X"},
	{"x.com", "X"},
	{"wa.me", "WhatsApp"},
	{"whatsapp.com", "WhatsApp"},
	{"linkedin.com", "LinkedIn"},
	{"ok.ru", "Odnoklassniki"},
	{"tripadvisor.com", "Tripadvisor"},
	{"threads.net", "Threads"},
	{"pinterest.com", "Pinterest"},
}

// SocialNetworkName infers a display name from the link's domain.
func SocialNetworkName(rawURL string) string {
	normalized := NormalizeURL(rawURL)
	if normalized == "" {
		return GenericSocialName
	}
	u, err := url.Parse(normalized)
	if err != nil || u.Hostname() == "" {
		return GenericSocialName
	}
	host := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "m.", "mobile.", "web."} {
		host = strings.TrimPrefix(host, prefix)
	}
	for _, d := range socialDomains {
		if host == d.domain || strings.HasSuffix(host, "."+d.domain) {
			return d.name
		}
	}
	return GenericSocialName
}

// Add stores rawURL under its inferred name, suffixing a counter when the
// name is taken, and returns the name used.
func (l SocialLinks) Add(rawURL string) string {
	base := SocialNetworkName(rawURL)
	name := base
	for i := 2; ; i++ {
		if _, taken := l[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s %d", base, i)
	}
	l[name] = NormalizeURL(rawURL)
	return name
}

// UnmarshalJSON accepts every shape DecodeSocialLinks does and never fails.
func (l *SocialLinks) UnmarshalJSON(data []byte) error {
	links, _ := DecodeSocialLinks(data)
	*l = links
	return nil
}

// DecodeSocialLinks converts a stored social_links value into the canonical
// map. Accepted shapes: object, array of [name, url] pairs, array of
// {name, url} objects, a JSON string holding any of those, a bare URL
// string, and null. Unrecognised entries are dropped and reported.
func DecodeSocialLinks(raw []byte) (SocialLinks, []*MalformedDataError) {
	links := SocialLinks{}
	issues := decodeSocialInto(links, raw, 0)
	return links, issues
}

func decodeSocialInto(links SocialLinks, raw []byte, depth int) []*MalformedDataError {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	switch raw[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return []*MalformedDataError{socialIssue("invalid object: " + err.Error())}
		}
		var issues []*MalformedDataError
		for name, v := range obj {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				issues = append(issues, socialIssue(fmt.Sprintf("non-string value for %q", name)))
				continue
			}
			addDecoded(links, name, s)
		}
		return issues

	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return []*MalformedDataError{socialIssue("invalid array: " + err.Error())}
		}
		var issues []*MalformedDataError
		for i, item := range items {
			if err := decodeSocialItem(links, item); err != nil {
				issues = append(issues, socialIssue(fmt.Sprintf("item %d: %s", i, err)))
			}
		}
		return issues

	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return []*MalformedDataError{socialIssue("invalid string: " + err.Error())}
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if (s[0] == '{' || s[0] == '[') && depth == 0 {
			return decodeSocialInto(links, []byte(s), depth+1)
		}
		if looksLikeURL(s) {
			links.Add(s)
			return nil
		}
		return []*MalformedDataError{socialIssue("unrecognised string value")}
	}

	return []*MalformedDataError{socialIssue(fmt.Sprintf("unsupported shape starting with %q", raw[0]))}
}

func decodeSocialItem(links SocialLinks, item json.RawMessage) error {
	item = bytes.TrimSpace(item)
	if len(item) == 0 {
		return fmt.Errorf("empty item")
	}
	switch item[0] {
	case '[':
		var pair []string
		if err := json.Unmarshal(item, &pair); err != nil || len(pair) < 2 {
			return fmt.Errorf("pair must be two strings")
		}
		addDecoded(links, pair[0], pair[1])
		return nil
	case '{':
		var obj struct {
			Name string `json:"name"`
			URL  string `json:"url"`
			Link string `json:"link"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return fmt.Errorf("invalid object: %w", err)
		}
		u := obj.URL
		if u == "" {
			u = obj.Link
		}
		if strings.TrimSpace(u) == "" {
			return fmt.Errorf("object without url")
		}
		addDecoded(links, obj.Name, u)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(item, &s); err != nil || !looksLikeURL(s) {
			return fmt.Errorf("string item is not a url")
		}
		links.Add(s)
		return nil
	}
	return fmt.Errorf("unsupported item")
}

func addDecoded(links SocialLinks, name, rawURL string) {
	name = strings.TrimSpace(name)
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return
	}
	if name == "" {
		links.Add(rawURL)
		return
	}
	links[name] = rawURL
}

func looksLikeURL(s string) bool {
	s = strings.TrimSpace(s)
	return !strings.ContainsAny(s, " \t\n") && strings.Contains(s, ".")
}

func socialIssue(reason string) *MalformedDataError {
	return &MalformedDataError{Entity: "place", Field: "social_links", Reason: reason}
}
