package parse

import "errors"

// Only these three failures abort a parse; every other missing field
// degrades to a default. Callers distinguish them with errors.Is.
var (
	// ErrInvalidInput is returned for empty or blank message text, before
	// any template matching is attempted.
	ErrInvalidInput = errors.New("invalid input: message text is empty")

	// ErrUnrecognizedFormat is returned when no bank profile's
	// identification rule matches the message.
	ErrUnrecognizedFormat = errors.New("unrecognized bank message format")

	// ErrAmountExtraction is returned when a bank was identified but no
	// amount could be extracted from the message.
	ErrAmountExtraction = errors.New("could not extract amount from message")
)
