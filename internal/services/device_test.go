package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyUserAgent_Device(t *testing.T) {
	cases := []struct {
		name string
		ua   string
		want string
	}{
		{"iPhone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15", DeviceMobile},
		{"Android phone", "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36", DeviceMobile},
		{"iPad", "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15", DeviceTablet},
		{"Generic tablet", "Mozilla/5.0 (Linux; Tablet) AppleWebKit/537.36", DeviceTablet},
		{"Desktop", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", DeviceDesktop},
		{"Empty", "", DeviceDesktop},
		// mobile marker is checked before tablet, so both-markers resolves mobile
		{"Android tablet", "Mozilla/5.0 (Linux; Android 14; Tab S9 Tablet) AppleWebKit/537.36", DeviceMobile},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			device, _ := ClassifyUserAgent(tc.ua)
			assert.Equal(t, tc.want, device)
		})
	}
}

func TestClassifyUserAgent_Browser(t *testing.T) {
	cases := []struct {
		name string
		ua   string
		want string
	}{
		{"Chrome", "Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", "Chrome"},
		{"Edge carries the chrome marker", "Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 Chrome/120.0 Safari/537.36 Edg/120.0", "Edge"},
		{"Firefox", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", "Firefox"},
		{"Safari without chrome marker", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Version/17.0 Safari/605.1.15", "Safari"},
		{"Plain opera token", "Opera/9.80 (Windows NT 6.0) Presto/2.12.388 Version/12.14", "Opera"},
		{"Curl", "curl/8.4.0", BrowserUnknown},
		{"Empty", "", BrowserUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, browser := ClassifyUserAgent(tc.ua)
			assert.Equal(t, tc.want, browser)
		})
	}
}
