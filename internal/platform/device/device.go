// Package device condenses raw User-Agent headers into short display names
// for audit attribution ("Chrome on Mac OS X").
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent returns a human-readable device name for a User-Agent
// string. Unknown agents still produce a non-empty name so audit records
// never carry a blank attribution.
func ParseUserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Unknown Device"
	}

	parsed := useragent.New(raw)
	browser, _ := parsed.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	os := parsed.OSInfo().Name
	if parsed.Mobile() && parsed.Platform() != "" {
		os = parsed.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}

	return browser + " on " + os
}
