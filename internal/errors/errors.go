package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidPattern indicates a configured directive or branch-match
	// regex failed to compile
	InvalidPattern ErrorCode = "INVALID_PATTERN"
	// InvalidVersion indicates a version string failed semver parsing
	InvalidVersion ErrorCode = "INVALID_VERSION"
	// InvalidConfig indicates the merged configuration failed validation
	InvalidConfig ErrorCode = "INVALID_CONFIG"
	// RepositoryUnavailable indicates the target is not a usable git repository
	RepositoryUnavailable ErrorCode = "REPOSITORY_UNAVAILABLE"
	// ObjectNotFound indicates a commit could not be loaded from the
	// object database
	ObjectNotFound ErrorCode = "OBJECT_NOT_FOUND"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// BumpError represents a bump error with code, message, and suggestions
type BumpError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// NewBumpError creates a new BumpError
func NewBumpError(code ErrorCode, message string, cause error, suggestedFixes []FixAction) *BumpError {
	return &BumpError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes,
	}
}

// Error implements the error interface
func (e *BumpError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *BumpError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *BumpError) WithDetails(details interface{}) *BumpError {
	e.Details = details
	return e
}

// CodeOf extracts the error code from an error chain.
// The second return is false when no BumpError is present.
func CodeOf(err error) (ErrorCode, bool) {
	var be *BumpError
	if stderrors.As(err, &be) {
		return be.Code, true
	}
	return "", false
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	InvalidPattern: {
		{
			Type:        RunCommand,
			Command:     "bump doctor",
			Safe:        true,
			Description: "Report which configured pattern fails to compile",
		},
		{
			Type:        OpenDocs,
			URL:         "https://golang.org/s/re2syntax",
			Description: "Review RE2 regular expression syntax",
		},
	},
	InvalidConfig: {
		{
			Type:        RunCommand,
			Command:     "bump doctor",
			Safe:        true,
			Description: "Validate the merged configuration",
		},
	},
	RepositoryUnavailable: {
		{
			Type:        RunCommand,
			Command:     "git status",
			Safe:        true,
			Description: "Verify the directory is inside a git repository",
		},
		{
			Type:        RunCommand,
			Command:     "git init",
			Safe:        false,
			Description: "Initialize a git repository",
		},
	},
	ObjectNotFound: {
		{
			Type:        RunCommand,
			Command:     "git fetch --unshallow",
			Safe:        false,
			Description: "Fetch full history into a shallow clone",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
