// Package cidr holds small IPv4 CIDR helpers shared by the resolver.
package cidr

import (
	"fmt"
	"net/netip"
)

var privateRanges = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
}

// ParseIPv4 parses s as an IPv4 CIDR prefix and normalizes it to its
// masked form.
func ParseIPv4(s string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, err
	}
	if !p.Addr().Is4() {
		return netip.Prefix{}, fmt.Errorf("%q is not an IPv4 prefix", s)
	}
	return p.Masked(), nil
}

// Contains reports whether inner is fully contained in outer. Equal
// prefixes count as contained.
func Contains(outer, inner netip.Prefix) bool {
	return inner.Bits() >= outer.Bits() && outer.Contains(inner.Addr())
}

// IsPrivate reports whether p lies entirely inside one of the RFC 1918
// private ranges.
func IsPrivate(p netip.Prefix) bool {
	for _, r := range privateRanges {
		if Contains(r, p) {
			return true
		}
	}
	return false
}

// IsSingleHost reports whether p addresses exactly one IPv4 host (/32).
func IsSingleHost(p netip.Prefix) bool {
	return p.Addr().Is4() && p.Bits() == 32
}
