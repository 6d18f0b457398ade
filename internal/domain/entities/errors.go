package entities

import (
	"errors"
	"fmt"
)

// Code is a machine-readable validation error code.
type Code string

// Validation error codes.
const (
	CodeEmptyName           Code = "EMPTY_NAME"
	CodeNameTooLong         Code = "NAME_TOO_LONG"
	CodeEmptyPrompt         Code = "EMPTY_PROMPT"
	CodePromptTooLong       Code = "PROMPT_TOO_LONG"
	CodeBadCredentialPrefix Code = "BAD_CREDENTIAL_PREFIX"
	CodeCredentialTooShort  Code = "CREDENTIAL_TOO_SHORT"
	CodeCredentialHasSpace  Code = "CREDENTIAL_HAS_SPACE"
	CodeEmptyInput          Code = "EMPTY_INPUT"
	CodeInputTooLong        Code = "INPUT_TOO_LONG"
	// CodeWrongType exists for parity with dynamically typed callers.
	// Speak takes a string, so it is never produced here.
	CodeWrongType        Code = "WRONG_TYPE"
	CodeNonPositiveDelta Code = "NON_POSITIVE_DELTA"
)

// ValidationError reports input or profile data that violates a constraint.
// It is always returned before any mutation happens.
type ValidationError struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches another ValidationError by code. A target without a code
// matches every validation error.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

func newValidationError(code Code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is checks.
var (
	ErrValidation          = &ValidationError{}
	ErrEmptyName           = &ValidationError{Code: CodeEmptyName}
	ErrNameTooLong         = &ValidationError{Code: CodeNameTooLong}
	ErrEmptyPrompt         = &ValidationError{Code: CodeEmptyPrompt}
	ErrPromptTooLong       = &ValidationError{Code: CodePromptTooLong}
	ErrBadCredentialPrefix = &ValidationError{Code: CodeBadCredentialPrefix}
	ErrCredentialTooShort  = &ValidationError{Code: CodeCredentialTooShort}
	ErrCredentialHasSpace  = &ValidationError{Code: CodeCredentialHasSpace}
	ErrEmptyInput          = &ValidationError{Code: CodeEmptyInput}
	ErrInputTooLong        = &ValidationError{Code: CodeInputTooLong}
	ErrNonPositiveDelta    = &ValidationError{Code: CodeNonPositiveDelta}
)

// ErrIndexOutOfRange is matched by every *IndexError.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrTypeMismatch is returned when an operand has the wrong kind,
// e.g. merging with a nil persona.
var ErrTypeMismatch = errors.New("type mismatch")

// IndexError reports a ledger index outside [0, Length) after normalization.
type IndexError struct {
	Index  int
	Length int
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	if e.Length == 0 {
		return fmt.Sprintf("index %d out of range: ledger is empty", e.Index)
	}
	return fmt.Sprintf("index %d out of range: valid range is 0-%d", e.Index, e.Length-1)
}

// Is reports whether target is ErrIndexOutOfRange.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}
