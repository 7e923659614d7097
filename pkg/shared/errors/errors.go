package errors

import "fmt"

// CommandError carries the process exit code a command wants the CLI to
// finish with. A compliance rejection and an internal tool failure both
// surface as errors but must map to different exit codes.
type CommandError struct {
	ExitCode int
	Message  string
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return e.Message
}

// NewCommandError creates a new CommandError with the given exit code.
func NewCommandError(code int, format string, args ...interface{}) *CommandError {
	return &CommandError{
		ExitCode: code,
		Message:  fmt.Sprintf(format, args...),
	}
}
