package httpclient

import (
	"net/http"
	"testing"
	"time"
)

func TestStatusError_Error(t *testing.T) {
	err := &StatusError{StatusCode: 503, Status: "503 Service Unavailable"}
	want := "httpclient: upstream returned 503 Service Unavailable"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestStatusError_RetryAfter(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"absent", "", 0},
		{"integer seconds", "7", 7 * time.Second},
		{"zero", "0", 0},
		{"negative", "-3", 0},
		{"not a number", "soon", 0},
		{"http date ignored", "Fri, 29 Aug 2026 12:00:00 GMT", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.value != "" {
				header.Set("Retry-After", tt.value)
			}
			err := &StatusError{StatusCode: 429, Status: "429 Too Many Requests", Header: header}
			if got := err.RetryAfter(); got != tt.want {
				t.Errorf("RetryAfter() = %v, want %v", got, tt.want)
			}
		})
	}
}
