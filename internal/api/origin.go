package api

import "strings"

// OriginAllowed reports whether a request may use the send endpoint. An
// empty allow-list allows everything. Otherwise the Origin or the Referer
// header must start with one of the listed prefixes.
//
// This is a case-sensitive string prefix match, not a host comparison:
// with "https://site.com" listed, "https://site.com.example.net" passes.
func OriginAllowed(allowed []string, origin, referer string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, prefix := range allowed {
		if prefix == "" {
			continue
		}
		if origin != "" && strings.HasPrefix(origin, prefix) {
			return true
		}
		if referer != "" && strings.HasPrefix(referer, prefix) {
			return true
		}
	}
	return false
}
