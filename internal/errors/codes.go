package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents internal error codes for cluster operations
type ErrorCode int

const (
	// Success
	ErrCodeOK ErrorCode = 0

	// Topology errors
	ErrCodeShardExists   ErrorCode = 1000
	ErrCodeShardNotFound ErrorCode = 1001
	ErrCodeEmptyRing     ErrorCode = 1002

	// Routing errors
	ErrCodeNoShardsAvailable ErrorCode = 2000

	// Server errors
	ErrCodeInternal ErrorCode = 3000
)

// String returns a stable snake_case name for the code, used in logs and metric labels
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeShardExists:
		return "shard_exists"
	case ErrCodeShardNotFound:
		return "shard_not_found"
	case ErrCodeEmptyRing:
		return "empty_ring"
	case ErrCodeNoShardsAvailable:
		return "no_shards_available"
	default:
		return "internal"
	}
}

// ClusterError represents a structured error with code and context
type ClusterError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Cause   error
}

// Error implements the error interface
func (e *ClusterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *ClusterError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *ClusterError) WithDetail(key string, value interface{}) *ClusterError {
	e.Details[key] = value
	return e
}

// HTTPStatus maps internal error codes to HTTP status codes
func (e *ClusterError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeOK:
		return http.StatusOK
	case ErrCodeShardExists:
		return http.StatusConflict
	case ErrCodeShardNotFound:
		return http.StatusNotFound
	case ErrCodeEmptyRing:
		return http.StatusConflict
	case ErrCodeNoShardsAvailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewClusterError creates a new ClusterError
func NewClusterError(code ErrorCode, message string, cause error) *ClusterError {
	return &ClusterError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Cause:   cause,
	}
}

// Convenience constructors for common errors

func ShardExists(shardID string) *ClusterError {
	return NewClusterError(ErrCodeShardExists, fmt.Sprintf("shard already exists: %s", shardID), nil).
		WithDetail("shard_id", shardID)
}

func ShardNotFound(shardID string) *ClusterError {
	return NewClusterError(ErrCodeShardNotFound, fmt.Sprintf("shard not found: %s", shardID), nil).
		WithDetail("shard_id", shardID)
}

func EmptyRing(operation string) *ClusterError {
	return NewClusterError(ErrCodeEmptyRing, fmt.Sprintf("ring has no virtual nodes: %s", operation), nil).
		WithDetail("operation", operation)
}

func NoShardsAvailable(operation string) *ClusterError {
	return NewClusterError(ErrCodeNoShardsAvailable, fmt.Sprintf("no shards available: %s", operation), nil).
		WithDetail("operation", operation)
}

func InternalError(message string, cause error) *ClusterError {
	return NewClusterError(ErrCodeInternal, message, cause)
}

// IsClusterError checks if an error is a ClusterError
func IsClusterError(err error) bool {
	var ce *ClusterError
	return errors.As(err, &ce)
}

// AsClusterError extracts a ClusterError from an error chain
func AsClusterError(err error) (*ClusterError, bool) {
	var ce *ClusterError
	ok := errors.As(err, &ce)
	return ce, ok
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var ce *ClusterError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given cluster error code
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}
