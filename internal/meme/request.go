package meme

import (
	"fmt"
	"net/url"
	"unicode/utf8"

	"mememaker/internal/domain"
)

// Request is one caption job as received from a caller.
type Request struct {
	Image      string
	TopText    string
	BottomText string
}

// Validate checks the request before any side effect takes place.
// maxLen bounds both captions, counted in characters.
func (r Request) Validate(maxLen int) error {
	if r.Image == "" {
		return fmt.Errorf("%w: image is required", domain.ErrValidation)
	}

	parsed, err := url.ParseRequestURI(r.Image)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%w: image must be an absolute HTTP or HTTPS URL", domain.ErrValidation)
	}

	if r.TopText == "" {
		return fmt.Errorf("%w: topText is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(r.TopText) > maxLen {
		return fmt.Errorf("%w: topText exceeds %d characters", domain.ErrValidation, maxLen)
	}
	if utf8.RuneCountInString(r.BottomText) > maxLen {
		return fmt.Errorf("%w: bottomText exceeds %d characters", domain.ErrValidation, maxLen)
	}
	return nil
}
