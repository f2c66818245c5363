package domain

import (
	"errors"
	"fmt"
)

// Code classifies why a single client change could not be applied.
type Code string

const (
	CodeConflict            Code = "conflict"
	CodeHierarchyViolation  Code = "hierarchy_violation"
	CodeUniquenessViolation Code = "uniqueness_violation"
	CodePermissionDenied    Code = "permission_denied"
	CodeNotFound            Code = "not_found"
	CodeInvalidInput        Code = "invalid_input"
	CodeInternal            Code = "internal"
)

// Error is the typed error raised by validators and the sync engine.
// errors.Is matches any *Error carrying the same Code, so callers can test
// against the sentinels below regardless of message.
type Error struct {
	Code    Code
	Kind    Kind
	ID      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Public returns e without its cause. Causes carry storage details that
// belong in server logs, not in responses.
func (e *Error) Public() *Error {
	return &Error{Code: e.Code, Kind: e.Kind, ID: e.ID, Message: e.Message}
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrConflict            = &Error{Code: CodeConflict}
	ErrHierarchyViolation  = &Error{Code: CodeHierarchyViolation}
	ErrUniquenessViolation = &Error{Code: CodeUniquenessViolation}
	ErrPermissionDenied    = &Error{Code: CodePermissionDenied}
	ErrNotFound            = &Error{Code: CodeNotFound}
	ErrInvalidInput        = &Error{Code: CodeInvalidInput}
	ErrInternal            = &Error{Code: CodeInternal}
)

// CodeOf extracts the taxonomy code of err. Untyped errors are internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

func newError(code Code, kind Kind, id, format string, args ...any) *Error {
	return &Error{Code: code, Kind: kind, ID: id, Message: fmt.Sprintf(format, args...)}
}

// HierarchyViolation reports a parent assignment that would create a cycle.
func HierarchyViolation(folderID, parentID string) *Error {
	if folderID == parentID {
		return newError(CodeHierarchyViolation, KindFolder, folderID,
			"folder %s cannot be its own parent", folderID)
	}
	return newError(CodeHierarchyViolation, KindFolder, folderID,
		"cannot move folder %s under %s: target is one of its descendants", folderID, parentID)
}

// UniquenessViolation reports a name already taken in its scope.
func UniquenessViolation(kind Kind, id, name string) *Error {
	return newError(CodeUniquenessViolation, kind, id,
		"a %s named %q already exists", kind, name)
}

// PermissionDenied reports references to records the caller does not own.
func PermissionDenied(kind Kind, id, format string, args ...any) *Error {
	return newError(CodePermissionDenied, kind, id, format, args...)
}

// NotFound reports a missing (or tombstoned) referenced record.
func NotFound(kind Kind, id string) *Error {
	return newError(CodeNotFound, kind, id, "%s %s not found", kind, id)
}

// InvalidInput reports a malformed client change.
func InvalidInput(kind Kind, id, format string, args ...any) *Error {
	return newError(CodeInvalidInput, kind, id, format, args...)
}

// Internal wraps an unexpected failure (storage, encoding...).
func Internal(kind Kind, id string, err error) *Error {
	return &Error{Code: CodeInternal, Kind: kind, ID: id, Message: "internal error", Err: err}
}
