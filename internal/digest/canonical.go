package digest

import (
	"net"
	"net/url"
	"strings"
	"unicode"
)

var trackingQueryParams = map[string]struct{}{
	"gclid":   {},
	"dclid":   {},
	"fbclid":  {},
	"msclkid": {},
	"igshid":  {},
	"mc_cid":  {},
	"mc_eid":  {},
}

// maxCanonicalPasses bounds re-normalisation of already canonical output.
const maxCanonicalPasses = 4

// CanonicalURL normalises a URL for duplicate detection.
// It lowercases scheme and host, drops default ports, trailing slashes, the fragment
// and tracking query parameters (utm_*, fbclid, etc.). Remaining parameters keep their order.
// Unparseable input is returned trimmed. The function is idempotent.
func CanonicalURL(raw string) string {
	out := canonicalize(raw)
	// Removing a fragment or parameter can expose characters the next pass would trim.
	for i := 0; i < maxCanonicalPasses; i++ {
		next := canonicalize(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func canonicalize(raw string) string {
	raw = strings.TrimSpace(raw)
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return trimTrailing(raw)
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = stripDefaultPort(parsed.Scheme, strings.ToLower(parsed.Host))
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawPath = strings.TrimRight(parsed.RawPath, "/")
	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.ForceQuery = false
	parsed.RawQuery = stripTracking(parsed.RawQuery)

	return parsed.String()
}

// trimTrailing drops any mix of trailing slashes and whitespace.
func trimTrailing(s string) string {
	return strings.TrimRightFunc(s, func(r rune) bool {
		return r == '/' || unicode.IsSpace(r)
	})
}

func stripDefaultPort(scheme, host string) string {
	name, port, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		if strings.Contains(name, ":") {
			return "[" + name + "]"
		}
		return name
	}
	return host
}

func stripTracking(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	parts := strings.Split(rawQuery, "&")
	kept := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, _, _ := strings.Cut(part, "=")
		if unescaped, err := url.QueryUnescape(key); err == nil {
			key = unescaped
		}
		key = strings.ToLower(key)
		if strings.HasPrefix(key, "utm_") {
			continue
		}
		if _, drop := trackingQueryParams[key]; drop {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "&")
}
