// Package urlutil extracts protocol, host, domain and subdomain components
// from a raw URL string.
//
// This is not a full public-suffix-list implementation. Domain extraction
// takes the last two labels of the host (example.com) with a single
// hard-coded exception for "co.uk", where it takes three (bbc.co.uk). Other multi-label public suffixes
// (.ac.uk, .com.au, ...) will be misclassified - see HostWithoutSpecificSubdomains.
package urlutil

import "strings"

// StripProtocol removes a leading "http://", "https://" or "//" and returns
// the remainder, including the host.
func StripProtocol(raw string) string {
	return raw[protocolEnd(raw):]
}

// protocolEnd returns the index of the first byte after the protocol's
// double slash, or 0 if raw has no recognized protocol prefix.
func protocolEnd(raw string) int {
	switch {
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		idx := strings.Index(raw, "//")
		return idx + 2
	case strings.HasPrefix(raw, "//"):
		return 2
	default:
		return 0
	}
}

// Protocol returns the scheme portion of raw, excluding "://", or "" if raw
// has no protocol.
func Protocol(raw string) string {
	switch {
	case strings.HasPrefix(raw, "http://"):
		return "http"
	case strings.HasPrefix(raw, "https://"):
		return "https"
	default:
		return ""
	}
}

// Host returns the host portion of raw: everything after the protocol up to
// the first '/' or the end of the string.
func Host(raw string) string {
	rest := StripProtocol(raw)
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		return rest[:idx]
	}
	return rest
}

// Domain returns the effective registrable domain of raw's host.
//
// If the host has one dot or fewer, the domain equals the host. Otherwise
// the last two dot-separated labels are taken, with one special case: if
// those two labels are exactly "co.uk", three labels are taken instead.
func Domain(raw string) string {
	host := Host(raw)

	dots := strings.Count(host, ".")
	if dots <= 1 {
		return host
	}

	lastDot := strings.LastIndexByte(host, '.')
	start := strings.LastIndexByte(host[:lastDot], '.') + 1

	if host[start:] == "co.uk" {
		if prev := strings.LastIndexByte(host[:start-1], '.'); prev >= 0 {
			start = prev + 1
		} else {
			start = 0
		}
	}

	return host[start:]
}

// Subdomain returns the host with its Domain suffix and the separating '.'
// removed. ok is false when the host equals its own domain (no subdomain).
func Subdomain(raw string) (sub string, ok bool) {
	host := Host(raw)
	domain := Domain(raw)

	rest, found := strings.CutSuffix(host, domain)
	if !found {
		return "", false
	}
	if rest == "" || rest == "." {
		return "", false
	}
	return rest[:len(rest)-1], true
}

// HostWithoutSpecificSubdomains is the projection used to build the host
// graph: it returns Domain(raw) when the subdomain is exactly "www", and
// Host(raw) otherwise (including when there is no subdomain at all).
func HostWithoutSpecificSubdomains(raw string) string {
	sub, ok := Subdomain(raw)
	if ok && sub == "www" {
		return Domain(raw)
	}
	return Host(raw)
}

// Full prepends "https://" to raw when it has no protocol.
func Full(raw string) string {
	if Protocol(raw) == "" {
		return "https://" + raw
	}
	return raw
}
