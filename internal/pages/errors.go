package pages

import (
	"errors"
	"fmt"
)

var (
	ErrMissingElement     = errors.New("missing host element")
	ErrMissingPageSurface = errors.New("missing page surface")
	ErrParse              = errors.New("cannot parse page count")
	ErrPageLoadTimeout    = errors.New("page load timed out")
	ErrRevealLimit        = errors.New("continue control never disappeared")
	ErrInvalidRange       = errors.New("invalid page range")
)

// MissingElementError reports a required host UI element that is absent.
type MissingElementError struct {
	ID string
}

func (e *MissingElementError) Error() string {
	return fmt.Sprintf("couldn't find element %q on the host page", e.ID)
}

func (e *MissingElementError) Unwrap() error { return ErrMissingElement }

type MissingPageSurfaceError struct {
	Page int
}

func (e *MissingPageSurfaceError) Error() string {
	return fmt.Sprintf("couldn't find page surface for page #%d", e.Page)
}

func (e *MissingPageSurfaceError) Unwrap() error { return ErrMissingPageSurface }

// ParseError wraps the numeric parse failure of the page-count indicator.
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("page count %q is not a number: %v", e.Text, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

type PageLoadTimeoutError struct {
	Page  int
	Polls int
}

func (e *PageLoadTimeoutError) Error() string {
	return fmt.Sprintf("page #%d not ready after %d polls", e.Page, e.Polls)
}

func (e *PageLoadTimeoutError) Unwrap() error { return ErrPageLoadTimeout }

type RevealLimitError struct {
	Clicks int
}

func (e *RevealLimitError) Error() string {
	return fmt.Sprintf("continue control still present after %d clicks", e.Clicks)
}

func (e *RevealLimitError) Unwrap() error { return ErrRevealLimit }
