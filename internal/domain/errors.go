package domain

import "errors"

var (
	// ErrValidation signals bad or missing request input. Nothing has been
	// fetched or written when it is returned.
	ErrValidation = errors.New("validation failed")
	// ErrFetch signals that the source image could not be downloaded.
	ErrFetch = errors.New("fetch failed")
	// ErrProbe signals that the image dimensions could not be extracted.
	ErrProbe = errors.New("probe failed")
	// ErrRender signals that the compositing command failed.
	ErrRender = errors.New("render failed")
	// ErrIO signals a local read or write failure.
	ErrIO = errors.New("io failed")

	// ErrInvalidAPIKey signals that the provided API key is not known.
	ErrInvalidAPIKey = errors.New("invalid api key")
	// ErrTokenStoreNotReady signals that the token store has not been loaded yet.
	// This can happen during startup when the DB isn't ready.
	ErrTokenStoreNotReady = errors.New("token store not ready")
)

// IsClientError reports whether err was caused by the caller rather than by
// the service or one of its collaborators.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}
