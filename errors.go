package flowgraph

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Sentinel errors for platform setup.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrInvalidConfig indicates the provided configuration is invalid or incomplete.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownBackend indicates a store or registry backend name that is not supported.
	ErrUnknownBackend = errors.New("unknown backend")
)

// Error kinds categorize errors by their type.
const (
	// KindNotFound represents errors where a resource was not found.
	KindNotFound = "not_found"

	// KindValidation represents errors related to definition validation.
	KindValidation = "validation"

	// KindConfiguration represents errors related to configuration.
	KindConfiguration = "configuration"

	// KindNetwork represents errors connecting to a store or registry backend.
	KindNetwork = "network"
)

// Error wraps an underlying error with the platform operation that failed and the
// category of error.
//
// Error supports unwrapping, making it compatible with errors.Is() and errors.As().
//
// Example usage:
//
//	err := &Error{
//		Op:   "Platform.Open",
//		Kind: KindConfiguration,
//		Err:  ErrInvalidConfig,
//	}
type Error struct {
	// Op is the operation that failed (e.g., "Platform.Open").
	Op string

	// Kind categorizes the error (e.g., KindNotFound, KindValidation).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional context about the error (optional).
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("flowgraph: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("flowgraph: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("flowgraph: %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a target *Error by Kind, and by Op when the target sets one. Other
// targets are compared against the underlying error.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	return errors.Is(e.Err, target)
}

// WithContext returns a copy of the error with the provided context added.
func (e *Error) WithContext(ctx map[string]any) *Error {
	newErr := *e
	newErr.Context = make(map[string]any, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		newErr.Context[k] = v
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// NewNotFoundError creates a new Error with KindNotFound.
func NewNotFoundError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindNotFound, Err: err}
}

// NewValidationError creates a new Error with KindValidation.
func NewValidationError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindValidation, Err: err}
}

// NewConfigurationError creates a new Error with KindConfiguration.
func NewConfigurationError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindConfiguration, Err: err}
}

// NewNetworkError creates a new Error with KindNetwork.
func NewNetworkError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindNetwork, Err: err}
}

// CloseWithLog closes the resource and logs any error at warning level. It is
// meant for defer statements.
//
// If logger is nil, slog.Default() is used.
//
// Example usage:
//
//	defer flowgraph.CloseWithLog(platform, logger, "platform")
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
