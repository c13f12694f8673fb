package errors

import (
	"fmt"
)

// ConfigurationError captures run descriptor validation issues.
type ConfigurationError struct {
	Field   string
	Message string
	Err     error
}

// NewConfigurationError constructs a ConfigurationError.
func NewConfigurationError(field, message string, err error) error {
	return &ConfigurationError{Field: field, Message: message, Err: err}
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PrerequisitesError represents a failed or incomplete toolchain precondition.
// Retryable marks conditions the operator resolves out-of-band (an interactive
// installer still running) before re-invoking the tool.
type PrerequisitesError struct {
	Step      string
	Message   string
	Retryable bool
	Err       error
}

// NewPrerequisitesError constructs a fatal PrerequisitesError.
func NewPrerequisitesError(step string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &PrerequisitesError{Step: step, Message: message, Err: err}
}

// NewRetryablePrerequisitesError constructs a PrerequisitesError the operator
// can clear by completing the named step and re-running.
func NewRetryablePrerequisitesError(step, message string) error {
	return &PrerequisitesError{Step: step, Message: message, Retryable: true}
}

func (e *PrerequisitesError) Error() string {
	if e == nil {
		return ""
	}
	if e.Step != "" {
		return fmt.Sprintf("prerequisites error [%s]: %s", e.Step, e.Message)
	}
	return fmt.Sprintf("prerequisites error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *PrerequisitesError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InstallationError represents an SDK checkout operation failure. Output
// carries the failing command's captured diagnostics when available.
type InstallationError struct {
	Op     string
	Output string
	Err    error
}

// NewInstallationError constructs an InstallationError for the given operation.
func NewInstallationError(op, output string, err error) error {
	return &InstallationError{Op: op, Output: output, Err: err}
}

func (e *InstallationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Op != "" {
		return fmt.Sprintf("sdk installation error [%s]: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("sdk installation error: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *InstallationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ProjectCreationError represents a failed project generation command.
type ProjectCreationError struct {
	Output string
	Err    error
}

// NewProjectCreationError constructs a ProjectCreationError.
func NewProjectCreationError(output string, err error) error {
	return &ProjectCreationError{Output: output, Err: err}
}

func (e *ProjectCreationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Output != "" {
		return fmt.Sprintf("project creation error: %v: %s", e.Err, e.Output)
	}
	return fmt.Sprintf("project creation error: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *ProjectCreationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// SetupError is the catch-all wrapper tagging a failure with the stage that
// produced it.
type SetupError struct {
	Stage string
	Err   error
}

// NewSetupError constructs a SetupError for the named stage.
func NewSetupError(stage string, err error) error {
	return &SetupError{Stage: stage, Err: err}
}

func (e *SetupError) Error() string {
	if e == nil {
		return ""
	}
	if e.Stage != "" {
		return fmt.Sprintf("setup error during %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("setup error: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *SetupError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
