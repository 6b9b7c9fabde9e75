package classifier

import "strings"

// Normalize reduces a raw domain or URL to its bare host: lowercase, no
// scheme, no leading www., no path/query/fragment, no port. Normalize is
// idempotent.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	// Userinfo must go before the port strip: the password separator is
	// also a colon.
	if i := strings.LastIndexByte(s, '@'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, ".")
}

// parentCandidates returns the progressively shorter suffixes of a domain:
// "a.b.c" yields ["b.c", "c"].
func parentCandidates(domain string) []string {
	var out []string
	for {
		i := strings.IndexByte(domain, '.')
		if i < 0 {
			return out
		}
		domain = domain[i+1:]
		if domain == "" {
			return out
		}
		out = append(out, domain)
	}
}
