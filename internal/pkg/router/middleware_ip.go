package router

import (
	"net"
	"net/http"
	"strings"
)

// proxyIPHeaders in trust order. X-Forwarded-For is last because only
// its first hop is client-supplied truth behind a well-behaved proxy.
var proxyIPHeaders = []string{"True-Client-IP", "X-Real-IP", "X-Forwarded-For"}

// middlewareIP rewrites RemoteAddr from proxy headers so rate limiting
// and logging see the caller, not the load balancer.
func middlewareIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rip := realIP(r); rip != "" {
			r.RemoteAddr = rip
		}
		next.ServeHTTP(w, r)
	})
}

// realIP resolves the caller address from the first populated proxy
// header. A value that does not parse as an IP falls back to the host
// part of RemoteAddr.
func realIP(r *http.Request) string {
	var ip string
	for _, h := range proxyIPHeaders {
		if v := r.Header.Get(h); v != "" {
			ip, _, _ = strings.Cut(v, ",")
			break
		}
	}

	if net.ParseIP(ip) != nil {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return ""
}
