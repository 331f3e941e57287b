package swap

import "fmt"

// ConfigurationError reports that a swap could not start because the signing
// credential is missing or unusable. It is fatal for the current session
// only, never for the process.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("swap configuration: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ValidationError reports input that failed conversion before any executor
// work. Dialog handlers validate amounts before calling the orchestrator, so
// this surfaces only to direct callers.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid swap input: %s", e.Reason)
}

// ExecutionError carries the swap executor's failure text verbatim, so the
// user sees exactly what the executor reported.
type ExecutionError struct {
	Text string
}

func (e *ExecutionError) Error() string {
	return e.Text
}
