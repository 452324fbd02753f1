package exitcode

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/felixgeelhaar/lintgate/internal/errors"
)

// Exit codes for consistent error handling across the CLI. Hooks and CI
// wrappers rely on these being distinct: a failing gate is not the same as
// a broken gate.
const (
	// Success indicates the gate passed
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// FindingsFailed indicates blocking findings were present
	FindingsFailed = 3

	// ConfigError indicates invalid or missing configuration
	ConfigError = 4

	// MandatoryToolUnavailable indicates a mandatory analyzer crashed or timed out
	MandatoryToolUnavailable = 5

	// Interrupted indicates the run was cancelled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	code := DetermineExitCode(err)
	Exit(code)
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var gateErr *errors.GateError
	if stderrors.As(err, &gateErr) {
		switch gateErr.Code {
		case errors.ErrCodeGateFindings:
			return FindingsFailed
		case errors.ErrCodeGateMandatoryTool:
			return MandatoryToolUnavailable
		}

		switch codeFamily(gateErr.Code) {
		case "CONFIG", "SUPPRESS":
			return ConfigError
		}

		return GeneralError
	}

	errMsg := strings.ToLower(err.Error())

	// Usage errors surface from cobra as plain errors
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "unknown flag") {
		return UsageError
	}
	// Every cobra argument-count validator phrases its error with "arg(s)"
	if strings.Contains(errMsg, "arg(s)") {
		return UsageError
	}

	return GeneralError
}

// codeFamily returns the category prefix of an error code
func codeFamily(code errors.ErrorCode) string {
	s := string(code)
	if i := strings.IndexByte(s, '-'); i > 0 {
		return s[:i]
	}
	return s
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case FindingsFailed:
		return "Blocking findings present"
	case ConfigError:
		return "Configuration error"
	case MandatoryToolUnavailable:
		return "Mandatory analyzer unavailable"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
