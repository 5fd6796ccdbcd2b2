package render

import (
	"errors"
	"fmt"
)

// ErrGeneration matches any GenerationError via errors.Is.
var ErrGeneration = errors.New("sql generation failed")

// UnsupportedFeatureError indicates a feature not supported by the dialect.
type UnsupportedFeatureError struct {
	Feature string
	Dialect string
	Hint    string
}

func (e UnsupportedFeatureError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s is not supported: %s", e.Dialect, e.Feature, e.Hint)
	}
	return fmt.Sprintf("%s: %s is not supported", e.Dialect, e.Feature)
}

// NewUnsupportedFeatureError creates a new unsupported feature error.
func NewUnsupportedFeatureError(dialect, feature string, hint ...string) error {
	err := UnsupportedFeatureError{Feature: feature, Dialect: dialect}
	if len(hint) > 0 {
		err.Hint = hint[0]
	}
	return err
}

// GenerationError is returned by a processor that cannot render a member.
type GenerationError struct {
	Member string // Full member name, if known
	Kind   string // Symbol kind, if known
	Reason string
	Err    error // Underlying cause, e.g. an UnsupportedFeatureError
}

func (e *GenerationError) Error() string {
	msg := e.Reason
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	switch {
	case e.Member != "" && e.Kind != "":
		return fmt.Sprintf("render %s %s: %s", e.Kind, e.Member, msg)
	case e.Member != "":
		return fmt.Sprintf("render %s: %s", e.Member, msg)
	default:
		return "render: " + msg
	}
}

// Unwrap returns the underlying cause.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrGeneration.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

// NewGenerationError creates a generation error with a formatted reason.
func NewGenerationError(member, kind, format string, args ...any) *GenerationError {
	return &GenerationError{Member: member, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// WrapGenerationError attaches member context to err.
// An existing GenerationError is returned unchanged.
func WrapGenerationError(member, kind string, err error) error {
	if err == nil {
		return nil
	}
	var gen *GenerationError
	if errors.As(err, &gen) {
		return err
	}
	return &GenerationError{Member: member, Kind: kind, Err: err}
}
