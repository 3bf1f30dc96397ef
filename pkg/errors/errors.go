package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// State errors
	ErrStateLoad  ErrorCode = "STATE_LOAD"
	ErrStateParse ErrorCode = "STATE_PARSE"
	ErrStateWrite ErrorCode = "STATE_WRITE"

	// Mapping resolution errors
	ErrProjectRootMissing ErrorCode = "PROJECT_ROOT_MISSING"
	ErrSourceMissing      ErrorCode = "SOURCE_MISSING"
	ErrAgentNotFound      ErrorCode = "AGENT_NOT_FOUND"

	// Conflict errors
	ErrConflictCancelled ErrorCode = "CONFLICT_CANCELLED"
	ErrConflictPrompt    ErrorCode = "CONFLICT_PROMPT"

	// Filesystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileCreate    ErrorCode = "FILE_CREATE"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
	ErrDirNotEmpty   ErrorCode = "DIR_NOT_EMPTY"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrBackupFailed  ErrorCode = "BACKUP_FAILED"
)

// Kind groups error codes into the three failure classes the CLI
// maps to distinct exit codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindFilesystem
)

// SyncError represents a structured error with code and details
type SyncError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SyncError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SyncError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SyncError) Is(target error) bool {
	var targetErr *SyncError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SyncError with the given code and message
func New(code ErrorCode, message string) *SyncError {
	return &SyncError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SyncError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SyncError {
	return &SyncError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SyncError
func Wrap(err error, code ErrorCode, message string) *SyncError {
	if err == nil {
		return nil
	}
	return &SyncError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SyncError {
	if err == nil {
		return nil
	}
	return &SyncError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SyncError) WithDetail(key string, value interface{}) *SyncError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SyncError
func GetErrorCode(err error) ErrorCode {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Code
	}
	return ErrUnknown
}

// KindOf classifies an error into one of the three failure classes.
// Unexpected errors (including non-SyncError values) report KindUnknown.
func KindOf(err error) Kind {
	switch GetErrorCode(err) {
	case ErrInvalidInput, ErrConfigLoad, ErrConfigParse, ErrConfigValid,
		ErrStateLoad, ErrStateParse,
		ErrProjectRootMissing, ErrSourceMissing, ErrAgentNotFound:
		return KindValidation
	case ErrConflictCancelled, ErrConflictPrompt:
		return KindConflict
	case ErrFileAccess, ErrFileCreate, ErrFileWrite, ErrDirCreate,
		ErrDirNotEmpty, ErrSymlinkCreate, ErrBackupFailed, ErrStateWrite:
		return KindFilesystem
	default:
		return KindUnknown
	}
}
