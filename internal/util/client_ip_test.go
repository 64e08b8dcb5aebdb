package util

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{name: "direct peer", remoteAddr: "198.51.100.10:1234", want: "198.51.100.10"},
		{name: "forwarded header wins", remoteAddr: "10.0.0.20:1234", xff: "203.0.113.5", want: "203.0.113.5"},
		{name: "leftmost forwarded hop", remoteAddr: "10.0.0.20:1234", xff: "203.0.113.5, 10.0.0.10", want: "203.0.113.5"},
		{name: "invalid forwarded entry ignored", remoteAddr: "10.0.0.20:1234", xff: "not-an-ip", want: "10.0.0.20"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if got := ClientIP(r); got != tc.want {
				t.Fatalf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}
