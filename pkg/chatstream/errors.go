package chatstream

import (
	"errors"
	"strings"
)

// Upstream credential failures arrive as plain error text from the model
// provider. The substring match is kept behind this single function so the
// strategy can be swapped for a typed error without touching call sites.
const (
	authFailureMarker  = "401 No cookie auth credentials found"
	authFailureMessage = "Authentication failed: Please check your LLM API credentials"
)

// ClassifyStreamError converts an upstream error into the user-safe
// terminal error value reported on the stream.
func ClassifyStreamError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), authFailureMarker) {
		return errors.New(authFailureMessage)
	}
	return err
}
