package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // invalid rules or lint issues
	ExitCommandError = 2 // bad configuration, unreadable input
)

// Error codes reported by the commands. Rule document errors are reported
// under the loader's E2xx codes instead.
const (
	ErrCodeGeneric  = "E001"
	ErrCodeConfig   = "E002" // configuration could not be resolved
	ErrCodeNoTerms  = "E003" // no entity terms configured
	ErrCodeRead     = "E004" // input could not be read
	ErrCodeNotFound = "E005"
	ErrCodeAnnotate = "E006" // qualifier detection failed
	ErrCodeLint     = "E010"
)

// ExitError ends a command with a process exit code. The command has
// already written its report when it returns one, so callers only need
// the code.
type ExitError struct {
	Code   int
	Reason string
}

func (e *ExitError) Error() string { return e.Reason }

// GetExitCode returns the exit code carried by err: ExitSuccess for nil,
// ExitFailure for errors that are not an *ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		return ExitFailure
	}
	return exitErr.Code
}

// Report is the result of a command. In json format it becomes the data
// of the response envelope; in text format it writes itself.
type Report interface {
	WriteText(w io.Writer) error
}

// Problem describes why a command failed.
type Problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (p Problem) String() string {
	return fmt.Sprintf("Error [%s]: %s", p.Code, p.Message)
}

// Envelope is the json document every command writes.
type Envelope struct {
	Status string   `json:"status"` // "ok" or "error"
	Data   any      `json:"data,omitempty"`
	Error  *Problem `json:"error,omitempty"`
}

const (
	statusOK    = "ok"
	statusError = "error"
)

// Printer writes command reports to the streams of a command.
type Printer struct {
	Format  string
	Out     io.Writer
	Diag    io.Writer // verbose output; Out when nil
	Verbose bool
}

// JSON reports whether reports are written as json envelopes.
func (p *Printer) JSON() bool { return p.Format == "json" }

// Report writes the result of a successful command.
func (p *Printer) Report(r Report) error {
	if p.JSON() {
		return p.encode(Envelope{Status: statusOK, Data: r})
	}
	return r.WriteText(p.Out)
}

// Reject writes a result that fails the command, such as a rule set with
// lint issues, and returns the error ending it with exitCode. In text
// format r describes the failure itself.
func (p *Printer) Reject(exitCode int, r Report, problem Problem) error {
	var err error
	if p.JSON() {
		err = p.encode(Envelope{Status: statusError, Data: r, Error: &problem})
	} else {
		err = r.WriteText(p.Out)
	}
	if err != nil {
		return err
	}
	return &ExitError{Code: exitCode, Reason: problem.Code + ": " + problem.Message}
}

// Fail reports a failure that has no result and returns the error ending
// the command with exitCode. Details are printed in text format only when
// verbose.
func (p *Printer) Fail(exitCode int, code, message string, details any) error {
	problem := Problem{Code: code, Message: message, Details: details}

	var err error
	if p.JSON() {
		err = p.encode(Envelope{Status: statusError, Error: &problem})
	} else {
		_, err = fmt.Fprintln(p.Out, problem)
		if err == nil && p.Verbose && details != nil {
			_, err = fmt.Fprintf(p.Out, "Details: %v\n", details)
		}
	}
	if err != nil {
		return err
	}
	return &ExitError{Code: exitCode, Reason: code + ": " + message}
}

// Verbosef writes a diagnostic line when verbose. It never goes to Out
// unless Diag is unset, so json output stays parseable.
func (p *Printer) Verbosef(format string, args ...any) {
	if !p.Verbose {
		return
	}
	fmt.Fprintf(p.diag(), format+"\n", args...)
}

func (p *Printer) diag() io.Writer {
	if p.Diag == nil {
		return p.Out
	}
	return p.Diag
}

func (p *Printer) encode(e Envelope) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
