package command

import "strings"

// Sanitize forces an arbitrary string into the token contract. Compliant
// input that fits is returned unchanged. Otherwise non-ASCII is removed,
// disallowed bytes become "_" and runs of "_" collapse. If the result is
// still too long the "action:city:place" head is kept and trailing params
// are shortened; a head that alone exceeds the limit is cut flat.
func Sanitize(raw string) string {
	if len(raw) <= MaxTokenLen && validToken(raw) {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))
	lastUnderscore := false
	for _, r := range raw {
		if r > 0x7f {
			continue
		}
		c := byte(r)
		if !allowed(c) {
			c = '_'
		}
		if c == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteByte(c)
	}
	clean := b.String()
	if len(clean) <= MaxTokenLen {
		return clean
	}
	return truncate(clean)
}

func truncate(s string) string {
	parts := strings.Split(s, ":")
	headLen := min(3, len(parts))
	head := strings.Join(parts[:headLen], ":")
	if len(head) > MaxTokenLen || headLen == len(parts) {
		return s[:MaxTokenLen]
	}

	var b strings.Builder
	b.WriteString(head)
	for _, p := range parts[headLen:] {
		room := MaxTokenLen - b.Len() - 1
		if room < 0 {
			break
		}
		if len(p) > room {
			p = p[:room]
		}
		b.WriteByte(':')
		b.WriteString(p)
		if b.Len() == MaxTokenLen {
			break
		}
	}
	return b.String()
}
