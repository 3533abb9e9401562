package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/pandafill/internal/filler"
	"github.com/roach88/pandafill/internal/ir"
	"github.com/roach88/pandafill/internal/objmap"
)

// ErrorCode categorizes event processing errors. Codes are stored with
// failed events.
type ErrorCode string

const (
	// CodeMissingMapKey indicates pass 2 needed a map no filler published.
	CodeMissingMapKey ErrorCode = "MISSING_MAP_KEY"

	// CodeTypeMismatch indicates an input object lacks a required capability.
	CodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// CodeFillerFailed covers every other error a filler returns.
	CodeFillerFailed ErrorCode = "FILLER_FAILED"

	// CodeFillerPanic indicates a filler panicked.
	CodeFillerPanic ErrorCode = "FILLER_PANIC"

	// CodeInvalidInput indicates the input event could not be encoded.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeSinkFailed indicates the event could not be written.
	CodeSinkFailed ErrorCode = "SINK_FAILED"
)

// Phase names the step an event error occurred in.
type Phase string

const (
	PhaseInput   Phase = "input"
	PhaseFill    Phase = "fill"
	PhaseSetRefs Phase = "setrefs"
	PhaseOutput  Phase = "output"
	PhaseWrite   Phase = "write"
)

// EventError is an error that aborted the processing of one event.
// Processing errors never leak across events.
type EventError struct {
	Code   ErrorCode
	Filler string // Empty outside filler phases
	Phase  Phase
	Event  ir.EventID
	Err    error
}

func (e *EventError) Error() string {
	if e.Filler != "" {
		return fmt.Sprintf("%s: event %s: %s %s: %v", e.Code, e.Event, e.Filler, e.Phase, e.Err)
	}
	return fmt.Sprintf("%s: event %s: %s: %v", e.Code, e.Event, e.Phase, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}

// classify picks the code for an error returned by a filler.
func classify(err error) ErrorCode {
	var missing *objmap.MissingMapKeyError
	if errors.As(err, &missing) {
		return CodeMissingMapKey
	}
	var mismatch *filler.TypeMismatchError
	if errors.As(err, &mismatch) {
		return CodeTypeMismatch
	}
	return CodeFillerFailed
}

// CodeOf returns the code of an EventError anywhere in err's chain, or the
// empty code.
func CodeOf(err error) ErrorCode {
	var ee *EventError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// IsMissingMapKey returns true if err is a missing map error.
// Uses errors.As to handle wrapped errors.
func IsMissingMapKey(err error) bool {
	var missing *objmap.MissingMapKeyError
	return errors.As(err, &missing)
}

// IsTypeMismatch returns true if err is a type mismatch error.
func IsTypeMismatch(err error) bool {
	var mismatch *filler.TypeMismatchError
	return errors.As(err, &mismatch)
}
