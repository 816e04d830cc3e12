package serverutils

import (
	"net/netip"
	"strings"
)

// ResolveClientIP returns the first public address of an X-Forwarded-For chain,
// falling back to the direct connection address.
func ResolveClientIP(forwardedFor, remoteAddr string) string {
	for _, part := range strings.Split(forwardedFor, ",") {
		addr, err := netip.ParseAddr(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if isPublic(addr) {
			return addr.Unmap().String()
		}
	}
	return strings.TrimSpace(remoteAddr)
}

func isPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsGlobalUnicast() &&
		!addr.IsPrivate() &&
		!addr.IsLoopback() &&
		!addr.IsLinkLocalUnicast()
}
