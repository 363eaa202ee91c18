package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bote-dev/bote/pkg/debug"
)

// UpstreamError describes a failed upstream exchange. StatusCode is
// zero for network-level failures. Code and Type carry whatever the
// backend's error body declared, for diagnostics.
type UpstreamError struct {
	StatusCode int
	Code       string
	Type       string
	Message    string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// mapHTTPError converts a non-2xx response into an UpstreamError. The
// messages are stable phrases the failure reporter keys on.
func mapHTTPError(resp *http.Response) *UpstreamError {
	detail := extractErrorDetail(resp.Body)
	e := &UpstreamError{
		StatusCode: resp.StatusCode,
		Code:       detail.code,
		Type:       detail.typ,
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		e.Message = "unauthorized: the upstream API rejected the credential"
	case resp.StatusCode == http.StatusForbidden:
		e.Message = "forbidden: the credential does not grant access to this resource"
	case resp.StatusCode == http.StatusTooManyRequests:
		e.Message = "rate limit exceeded on the upstream API"
	case resp.StatusCode >= 500:
		e.Message = fmt.Sprintf("upstream server error (HTTP %d)", resp.StatusCode)
	default:
		if detail.message != "" {
			e.Message = fmt.Sprintf("upstream request failed (HTTP %d): %s", resp.StatusCode, detail.message)
		} else {
			e.Message = fmt.Sprintf("upstream request failed (HTTP %d)", resp.StatusCode)
		}
	}
	return e
}

// mapNetworkError converts a transport-level failure into an
// UpstreamError. Context cancellation passes through untouched so
// callers can tell a cancelled exchange from a broken connection.
func mapNetworkError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &UpstreamError{
		Message: fmt.Sprintf("connection to upstream failed: %v", err),
	}
}

type errorDetail struct {
	message string
	typ     string
	code    string
}

// extractErrorDetail reads up to 4KB of an error response body and
// pulls out the structured error, falling back to the raw body when the
// shape is unexpected.
func extractErrorDetail(body io.Reader) errorDetail {
	if body == nil {
		return errorDetail{}
	}
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return errorDetail{}
	}

	var parsed ChatErrorResponse
	if err := json.Unmarshal(data, &parsed); err != nil || parsed.Error.Message == "" {
		return errorDetail{message: debug.Truncate(strings.TrimSpace(string(data)), 200)}
	}

	d := errorDetail{message: parsed.Error.Message, typ: parsed.Error.Type}
	if parsed.Error.Code != nil {
		d.code = fmt.Sprint(parsed.Error.Code)
	}
	return d
}
