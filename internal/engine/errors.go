package engine

import "fmt"

// Code is a stable machine-readable error code. Codes are part of the
// contract crossing the core boundary; messages are diagnostic only.
type Code string

const (
	CodeNotYourTurn      Code = "NOT_YOUR_TURN"
	CodeInvalidAction    Code = "INVALID_ACTION"
	CodeHandComplete     Code = "HAND_ALREADY_COMPLETE"
	CodeRaiseCapReached  Code = "RAISE_CAP_REACHED"
	CodeReplayDetected   Code = "REPLAY_DETECTED"
	CodeTableFull        Code = "TABLE_FULL"
	CodeAlreadySeated    Code = "AGENT_ALREADY_SEATED"
	CodeCannotStartHand  Code = "CANNOT_START_HAND"
	CodeTableClosed      Code = "TABLE_CLOSED"
	CodeUnknownPlayer    Code = "UNKNOWN_PLAYER"
	CodeInvalidHandSetup Code = "INVALID_HAND_SETUP"
)

// Error is a coded error. Callers dispatch on Code; Message is free-form.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds a coded error with a formatted diagnostic message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the code from an error, or "" for uncoded errors.
func CodeOf(err error) Code {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
