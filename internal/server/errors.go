// Package server defines the relay error taxonomy. Every error here is
// recoverable and local: it is reported back to the originating connection
// and never terminates the connection or the process.
package server

import "errors"

var (
	// ErrInvalidName rejects a join whose trimmed display name is empty,
	// longer than the allowed maximum, or whose connection already joined.
	ErrInvalidName = errors.New("display name must be 1-30 characters")

	// ErrSenderNotRegistered rejects sends and typing signals from a
	// connection with no completed join. It is also the defined outcome for
	// the send-after-disconnect race.
	ErrSenderNotRegistered = errors.New("sender has not joined the chat")

	// ErrRecipientNotFound rejects a direct send to an unknown or departed
	// connection id.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrMalformedPayload rejects an inbound frame that is not valid JSON or
	// is missing a required field.
	ErrMalformedPayload = errors.New("malformed payload")
)

// Wire codes carried in error events.
const (
	CodeInvalidName         = "invalid_name"
	CodeSenderNotRegistered = "sender_not_registered"
	CodeRecipientNotFound   = "recipient_not_found"
	CodeMalformedPayload    = "malformed_payload"
	CodeInternalError       = "internal_error"
)

// errorCode maps a relay error to its wire code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidName):
		return CodeInvalidName
	case errors.Is(err, ErrSenderNotRegistered):
		return CodeSenderNotRegistered
	case errors.Is(err, ErrRecipientNotFound):
		return CodeRecipientNotFound
	case errors.Is(err, ErrMalformedPayload):
		return CodeMalformedPayload
	default:
		return CodeInternalError
	}
}
