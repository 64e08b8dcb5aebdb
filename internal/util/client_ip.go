package util

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the caller IP used for rate-limit keying. The leftmost
// X-Forwarded-For hop wins when present; otherwise the direct peer.
func ClientIP(r *http.Request) string {
	if raw := r.Header.Get("X-Forwarded-For"); raw != "" {
		first := strings.TrimSpace(strings.Split(raw, ",")[0])
		if ip := net.ParseIP(first); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
