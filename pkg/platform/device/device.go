// Package device turns a raw User-Agent header into a short display name for
// log lines.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Unknown is returned for an empty User-Agent.
const Unknown = "Unknown Device"

// Describe returns "<browser> on <platform>", e.g. "Chrome on Intel Mac OS X
// 10_15_7". Bots are reported as "Bot: <name>".
func Describe(userAgent string) string {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return Unknown
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	if ua.Bot() {
		return "Bot: " + browser
	}

	platform := ua.OS()
	if platform == "" {
		platform = ua.Platform()
	}
	if platform == "" {
		platform = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + platform)
}

// Mobile reports whether the User-Agent belongs to a mobile device.
func Mobile(userAgent string) bool {
	if strings.TrimSpace(userAgent) == "" {
		return false
	}
	return useragent.New(userAgent).Mobile()
}
