// internal/common/errors/domain.go
package errors

import (
	goerrors "errors"
	"fmt"
	"time"
)

// MalformedColorError reports a theme color that is not exactly six hex digits.
type MalformedColorError struct {
	Value  string
	Reason string
}

func (e *MalformedColorError) Error() string {
	return fmt.Sprintf("malformed color %q: %s", e.Value, e.Reason)
}

// SlideNotFoundError reports a slide-targeted update whose slide_number is absent from the deck.
type SlideNotFoundError struct {
	SlideNumber int
}

func (e *SlideNotFoundError) Error() string {
	return fmt.Sprintf("slide %d not found", e.SlideNumber)
}

// RenderError wraps a failure of the document-authoring library. Slide is the
// 1-based position of the slide being composed, or 0 for document-level failures.
type RenderError struct {
	Slide int
	Op    string
	Err   error
}

func (e *RenderError) Error() string {
	if e.Slide > 0 {
		return fmt.Sprintf("render slide %d: %s: %v", e.Slide, e.Op, e.Err)
	}
	return fmt.Sprintf("render: %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Classify normalizes any error into a StandardError.
func Classify(err error) *StandardError {
	if err == nil {
		return nil
	}

	var stdErr *StandardError
	if goerrors.As(err, &stdErr) {
		return stdErr
	}

	var colorErr *MalformedColorError
	if goerrors.As(err, &colorErr) {
		return &StandardError{
			Code:      ErrCodeMalformedColor,
			Message:   colorErr.Error(),
			Details:   colorErr.Reason,
			Metadata:  map[string]interface{}{"color": colorErr.Value},
			Timestamp: time.Now().UTC(),
		}
	}

	var slideErr *SlideNotFoundError
	if goerrors.As(err, &slideErr) {
		return &StandardError{
			Code:      ErrCodeSlideNotFound,
			Message:   fmt.Sprintf("Slide %d not found", slideErr.SlideNumber),
			Metadata:  map[string]interface{}{"slide_number": slideErr.SlideNumber},
			Timestamp: time.Now().UTC(),
		}
	}

	var renderErr *RenderError
	if goerrors.As(err, &renderErr) {
		return &StandardError{
			Code:      ErrCodeRenderFailed,
			Message:   "Presentation could not be rendered",
			Details:   renderErr.Error(),
			Metadata:  map[string]interface{}{"slide": renderErr.Slide, "op": renderErr.Op},
			Timestamp: time.Now().UTC(),
		}
	}

	return NewInternalError(err)
}
