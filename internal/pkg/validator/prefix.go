package validator

import (
	"net/netip"
	"strings"
)

// IsValidPrefix reports whether s is a syntactically valid IPv4 or IPv6
// CIDR prefix such as "10.0.0.0/8" or "2001:db8::/32".
func IsValidPrefix(s string) bool {
	if s == "" {
		return false
	}
	_, err := netip.ParsePrefix(s)
	return err == nil
}

// NormalizePrefix trims surrounding whitespace from a prefix string.
// Host-bit normalization is left to the store, which compares cidr values.
func NormalizePrefix(s string) string {
	return strings.TrimSpace(s)
}
