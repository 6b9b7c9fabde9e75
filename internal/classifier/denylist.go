package classifier

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Denylist holds glob patterns for domains that must never be classified
// or stored. Patterns use doublestar syntax, e.g. "*.bank" or
// "tracker-?.example.com".
type Denylist struct {
	patterns []string
}

// NewDenylist creates a Denylist from the given patterns. Invalid patterns
// are kept and simply never match.
func NewDenylist(patterns []string) *Denylist {
	return &Denylist{patterns: append([]string(nil), patterns...)}
}

// Blocked reports whether the normalized domain matches any pattern.
func (d *Denylist) Blocked(domain string) bool {
	if d == nil {
		return false
	}
	for _, pattern := range d.patterns {
		if strings.EqualFold(pattern, domain) {
			return true
		}
		if matched, err := doublestar.Match(strings.ToLower(pattern), domain); err == nil && matched {
			return true
		}
	}
	return false
}
