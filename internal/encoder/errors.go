package encoder

import "fmt"

// ProbeError means the source file could not be read or carries no usable
// video stream. Fatal for the whole conversion.
type ProbeError struct {
	Path   string
	Reason string
	Err    error // underlying tool error, may be nil
}

func (e *ProbeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("probe %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("probe %s: %s", e.Path, e.Reason)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// TranscodeError means a single rendition encode failed. Collected by the
// orchestrator, not immediately fatal.
type TranscodeError struct {
	Resolution string
	Stderr     string // tail of the encoder's stderr, for diagnostics
	Err        error
}

func (e *TranscodeError) Error() string {
	msg := fmt.Sprintf("transcode %s: %v", e.Resolution, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *TranscodeError) Unwrap() error { return e.Err }
