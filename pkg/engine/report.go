package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bote-dev/bote/pkg/provider"
)

// Reported guidance for failures that end an exchange without upstream
// output. These become ordinary text parts on the stream.
const (
	missingCredentialReport = "No v0 API key is configured. Set the V0_API_KEY environment variable or the upstream.api_key setting and try again."

	nothingToSendReport = "There is nothing to send to the model: all messages were empty after translation."
)

// reportText maps a failure to one human-readable text part.
// Classification is substring-matched against the failure message; the
// provider layer keeps those phrases stable.
func reportText(err error) string {
	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "unauthorized"):
		return "The upstream API rejected the configured credential. Check that your v0 API key is valid."
	case strings.Contains(lower, "forbidden"):
		return "The configured credential is not allowed to use this resource. Check your v0 plan and key permissions."
	case strings.Contains(lower, "rate limit"):
		return "The upstream API is rate limiting requests. Wait a moment and try again."
	case strings.Contains(lower, "server error"):
		return "The upstream API reported a server error. Try again in a few minutes."
	case strings.Contains(lower, "connection"), strings.Contains(lower, "network"):
		return "Could not reach the upstream API. Check your network connection and the configured base URL."
	}

	text := "The request failed: " + err.Error()

	var upstreamErr *provider.UpstreamError
	if errors.As(err, &upstreamErr) {
		var details []string
		if upstreamErr.StatusCode != 0 {
			details = append(details, fmt.Sprintf("status %d", upstreamErr.StatusCode))
		}
		if upstreamErr.Code != "" {
			details = append(details, "code "+upstreamErr.Code)
		}
		if upstreamErr.Type != "" {
			details = append(details, "type "+upstreamErr.Type)
		}
		if len(details) > 0 {
			text += " (" + strings.Join(details, ", ") + ")"
		}
	}
	return text
}
