package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure by the stage that produced it.
type Kind string

const (
	KindProbe        Kind = "probe_error"
	KindThumbnail    Kind = "thumbnail_error"
	KindTranscode    Kind = "transcode_error"
	KindInvalidInput Kind = "invalid_input"
	KindFilesystem   Kind = "filesystem_error"
	KindInternal     Kind = "internal_error"
)

// Error is a stage failure with the originating error preserved for
// diagnostics.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the failure kind, defaulting to KindInternal for
// errors that escaped classification.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindInternal
}
