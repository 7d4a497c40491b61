package api

import (
	"errors"
	"strings"
	"testing"

	"trends-dashboard/pkg/trends"
)

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantNil     bool
		rateLimited bool
	}{
		{name: "ok", status: 200, wantNil: true},
		{name: "too many requests", status: 429, body: "slow down", rateLimited: true},
		{name: "server error", status: 500, body: "oops"},
		{name: "bad request", status: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyResponse("/trends/api/explore", tt.status, []byte(tt.body))
			if tt.wantNil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if got := trends.IsRateLimited(err); got != tt.rateLimited {
				t.Errorf("IsRateLimited = %v, want %v (err: %v)", got, tt.rateLimited, err)
			}
			var statusErr *StatusError
			if !tt.rateLimited {
				if !errors.As(err, &statusErr) {
					t.Fatalf("expected *StatusError, got %T", err)
				}
				if statusErr.StatusCode != tt.status {
					t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, tt.status)
				}
			}
		})
	}
}

func TestClassifyResponse_TruncatesBody(t *testing.T) {
	err := classifyResponse("/x", 503, []byte(strings.Repeat("a", 1000)))
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if len(statusErr.Body) != maxErrorBody {
		t.Errorf("body length = %d, want %d", len(statusErr.Body), maxErrorBody)
	}
}

func TestStripXSSI(t *testing.T) {
	tests := map[string]string{
		")]}'\n{\"a\":1}":  `{"a":1}`,
		")]}',\n{\"a\":1}": `{"a":1}`,
		`{"a":1}`:          `{"a":1}`,
	}
	for in, want := range tests {
		if got := string(stripXSSI([]byte(in))); got != want {
			t.Errorf("stripXSSI(%q) = %q, want %q", in, got, want)
		}
	}
}
