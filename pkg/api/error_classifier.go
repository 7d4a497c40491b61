package api

import (
	"bytes"
	"fmt"

	"github.com/valyala/fasthttp"

	"trends-dashboard/pkg/trends"
)

const maxErrorBody = 256

// StatusError is returned for non-200 upstream responses other than 429
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Path, e.StatusCode, e.Body)
}

// classifyResponse maps an upstream status to an error. 429 is the only
// status that becomes trends.ErrRateLimited; 200 yields nil.
func classifyResponse(path string, status int, body []byte) error {
	switch status {
	case fasthttp.StatusOK:
		return nil
	case fasthttp.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", path, trends.ErrRateLimited)
	}

	snippet := bytes.TrimSpace(body)
	if len(snippet) > maxErrorBody {
		snippet = snippet[:maxErrorBody]
	}
	return &StatusError{Path: path, StatusCode: status, Body: string(snippet)}
}

// stripXSSI removes the anti-JSON-hijacking prefix ")]}'" (optionally
// followed by a comma) that the trends endpoints put in front of JSON.
func stripXSSI(body []byte) []byte {
	body = bytes.TrimPrefix(body, []byte(")]}'"))
	return bytes.TrimLeft(body, ", \r\n\t")
}
