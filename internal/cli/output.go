package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/born-ml/elementwise/internal/ufunc"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Task or scenario failure
	ExitCommandError = 2 // Bad flags, paths or config
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error; ExitFailure when err is
// not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// Response is the JSON envelope of every command.
type Response struct {
	Status string         `json:"status"`
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the error part of a Response. Code is the ufunc error
// code when the failure came from the registry.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON reports whether the formatter writes JSON.
func (f *OutputFormatter) JSON() bool { return f.Format == "json" }

// Success writes data. Text output is produced by text.
func (f *OutputFormatter) Success(data any, text func(io.Writer) error) error {
	if f.JSON() {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(Response{Status: "ok", Data: data})
	}
	return text(f.Writer)
}

// Error writes err. Registry errors keep their code.
func (f *OutputFormatter) Error(err error) error {
	code := string(ufunc.CodeOf(err))
	if code == "" {
		code = "ERROR"
	}
	if f.JSON() {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(Response{Status: "error", Error: &ResponseError{Code: code, Message: err.Error()}})
	}
	_, werr := fmt.Fprintf(f.Writer, "Error [%s]: %v\n", code, err)
	return werr
}
