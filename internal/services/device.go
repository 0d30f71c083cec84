package services

import (
	"strings"
)

// Device classes and the browser fallback value.
const (
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceDesktop = "Desktop"

	BrowserUnknown = "Unknown"
)

type uaRule struct {
	match  func(ua string) bool
	result string
}

func containsAny(ua string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(ua, m) {
			return true
		}
	}
	return false
}

// Rule order is load-bearing: Edge and Opera user agents carry the Chrome
// and Safari markers, so precedence is encoded as data and evaluated
// first-match-wins.
var deviceRules = []uaRule{
	{func(ua string) bool { return containsAny(ua, "mobile", "android", "iphone") }, DeviceMobile},
	{func(ua string) bool { return containsAny(ua, "tablet", "ipad") }, DeviceTablet},
}

var browserRules = []uaRule{
	{func(ua string) bool { return strings.Contains(ua, "chrome") && !strings.Contains(ua, "edg") }, "Chrome"},
	{func(ua string) bool { return strings.Contains(ua, "firefox") }, "Firefox"},
	{func(ua string) bool { return strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome") }, "Safari"},
	{func(ua string) bool { return strings.Contains(ua, "edg") }, "Edge"},
	{func(ua string) bool { return containsAny(ua, "opera", "opr") }, "Opera"},
}

// ClassifyUserAgent derives the device class and browser name from a raw
// user-agent string. Pure and total: any input yields a classification.
func ClassifyUserAgent(userAgent string) (device, browser string) {
	ua := strings.ToLower(userAgent)

	device = DeviceDesktop
	for _, r := range deviceRules {
		if r.match(ua) {
			device = r.result
			break
		}
	}

	browser = BrowserUnknown
	for _, r := range browserRules {
		if r.match(ua) {
			browser = r.result
			break
		}
	}

	return device, browser
}
