package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common error conditions
var (
	// ErrSyntax is returned when a filter expression cannot be parsed
	ErrSyntax = errors.New("filter syntax error")

	// ErrUnsupportedFilter is returned when a structurally valid filter AST
	// uses a construct the compiler refuses
	ErrUnsupportedFilter = errors.New("unsupported filter")

	// ErrIndexUnavailable is returned when the underlying index search call fails
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrIndexNotFound is returned when an index is not found
	ErrIndexNotFound = errors.New("index not found")

	// ErrRecordNotFound is returned when a record is not found
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidSettings is returned when submitted index settings fail validation
	ErrInvalidSettings = errors.New("invalid settings")
)

// SyntaxError represents a malformed filter expression. It carries the byte
// position and the offending token so clients can point at the mistake.
type SyntaxError struct {
	Pos     int
	Token   string
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("syntax error at position %d near %q: %s", e.Pos, e.Token, e.Message)
	}
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Message)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// NewSyntaxError creates a new SyntaxError
func NewSyntaxError(pos int, token, message string) *SyntaxError {
	return &SyntaxError{Pos: pos, Token: token, Message: message}
}

// UnsupportedFilterError represents a filter AST the compiler refuses:
// a negated compound expression or an unrecognized node kind.
type UnsupportedFilterError struct {
	Reason string
}

func (e *UnsupportedFilterError) Error() string {
	return "unsupported filter: " + e.Reason
}

func (e *UnsupportedFilterError) Is(target error) bool {
	return target == ErrUnsupportedFilter
}

// NewUnsupportedFilterError creates a new UnsupportedFilterError
func NewUnsupportedFilterError(reason string) *UnsupportedFilterError {
	return &UnsupportedFilterError{Reason: reason}
}

// InvalidSettingsError carries every validation problem of a rejected
// settings submission.
type InvalidSettingsError struct {
	Problems []string
}

func (e *InvalidSettingsError) Error() string {
	return "invalid settings: " + strings.Join(e.Problems, "; ")
}

func (e *InvalidSettingsError) Is(target error) bool {
	return target == ErrInvalidSettings
}

// NewInvalidSettingsError creates a new InvalidSettingsError
func NewInvalidSettingsError(problems []string) *InvalidSettingsError {
	return &InvalidSettingsError{Problems: problems}
}

// IndexUnavailableError wraps a failure of the external search call.
type IndexUnavailableError struct {
	IndexName string
	Err       error
}

func (e *IndexUnavailableError) Error() string {
	return fmt.Sprintf("index '%s' unavailable: %v", e.IndexName, e.Err)
}

func (e *IndexUnavailableError) Is(target error) bool {
	return target == ErrIndexUnavailable
}

func (e *IndexUnavailableError) Unwrap() error {
	return e.Err
}

// NewIndexUnavailableError creates a new IndexUnavailableError
func NewIndexUnavailableError(indexName string, err error) *IndexUnavailableError {
	return &IndexUnavailableError{IndexName: indexName, Err: err}
}

// IndexNotFoundError represents an index not found error with context
type IndexNotFoundError struct {
	IndexName string
}

func (e *IndexNotFoundError) Error() string {
	return fmt.Sprintf("index named '%s' not found", e.IndexName)
}

func (e *IndexNotFoundError) Is(target error) bool {
	return target == ErrIndexNotFound
}

// NewIndexNotFoundError creates a new IndexNotFoundError
func NewIndexNotFoundError(indexName string) *IndexNotFoundError {
	return &IndexNotFoundError{IndexName: indexName}
}

// RecordNotFoundError represents a record not found error with context
type RecordNotFoundError struct {
	ObjectID  string
	IndexName string
}

func (e *RecordNotFoundError) Error() string {
	if e.IndexName != "" {
		return fmt.Sprintf("record with objectID '%s' not found in index '%s'", e.ObjectID, e.IndexName)
	}
	return fmt.Sprintf("record with objectID '%s' not found", e.ObjectID)
}

func (e *RecordNotFoundError) Is(target error) bool {
	return target == ErrRecordNotFound
}

// NewRecordNotFoundError creates a new RecordNotFoundError
func NewRecordNotFoundError(objectID string, indexName ...string) *RecordNotFoundError {
	err := &RecordNotFoundError{ObjectID: objectID}
	if len(indexName) > 0 {
		err.IndexName = indexName[0]
	}
	return err
}
