package utils

import "errors"

var (
	ErrorRecordNotFound    = errors.New("record not found")
	ErrorUnsupportedLocale = errors.New("unsupported locale")
	ErrorForbidden         = errors.New("forbidden")

	// ErrorInvalidTransition is returned by moderator actions applied to a
	// field that is not awaiting review.
	ErrorInvalidTransition = errors.New("field is not pending review")
)
