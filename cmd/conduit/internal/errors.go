// Package internal holds CLI-side helpers: exit-code mapping and output
// formatting shared by the conduit subcommands.
package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netauto-ai/conduit/internal/types"
)

// Exit code constants for the CLI.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitError indicates a general error.
	ExitError = 1
	// ExitInterrupted indicates the thread suspended awaiting approval.
	ExitInterrupted = 2
	// ExitTimeout indicates the operation timed out.
	ExitTimeout = 3
	// ExitCancelled indicates the operation was cancelled.
	ExitCancelled = 4
	// ExitConfigError indicates a configuration error.
	ExitConfigError = 10
	// ExitCheckpointError indicates a checkpoint store error.
	ExitCheckpointError = 12
)

// CLIError represents a CLI-specific error with an exit code.
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// WrapError creates a new CLIError wrapping an existing error.
func WrapError(code int, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Cause: err}
}

// HandleError prints err to the command's error output and returns the
// appropriate exit code.
func HandleError(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, context.Canceled) {
		cmd.PrintErrln("Operation cancelled")
		return ExitCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		cmd.PrintErrln("Operation timed out")
		return ExitTimeout
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		cmd.PrintErrln("Error:", cliErr.Message)
		if cliErr.Cause != nil && verboseEnabled(cmd) {
			cmd.PrintErrln("Cause:", cliErr.Cause)
		}
		return cliErr.Code
	}

	cmd.PrintErrln("Error:", err)
	return mapErrorCode(types.ErrorCodeOf(err))
}

// mapErrorCode maps domain error codes to CLI exit codes.
func mapErrorCode(code types.ErrorCode) int {
	switch code {
	case types.CONFIG_LOAD_FAILED, types.CONFIG_VALIDATION_FAILED:
		return ExitConfigError
	case types.CHECKPOINT_OPEN_FAILED, types.CHECKPOINT_READ_FAILED,
		types.CHECKPOINT_WRITE_FAILED, types.CHECKPOINT_STALE_WRITE:
		return ExitCheckpointError
	default:
		return ExitError
	}
}

func verboseEnabled(cmd *cobra.Command) bool {
	flag := cmd.Flag("verbose")
	return flag != nil && flag.Changed
}
