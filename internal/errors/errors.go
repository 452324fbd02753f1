package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound  ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid   ErrorCode = "CONFIG-002"
	ErrCodeConfigUnmarshal ErrorCode = "CONFIG-003"
	ErrCodeToolUnknown     ErrorCode = "CONFIG-004"
	ErrCodeNoToolsEnabled  ErrorCode = "CONFIG-005"
	ErrCodeTargetInvalid   ErrorCode = "CONFIG-006"

	// Suppression errors (SUPPRESS-001 to SUPPRESS-099)
	ErrCodeSuppressionInvalid ErrorCode = "SUPPRESS-001"
	ErrCodeSuppressionFile    ErrorCode = "SUPPRESS-002"

	// Adapter errors (ADAPTER-001 to ADAPTER-099)
	ErrCodeAdapterTimeout ErrorCode = "ADAPTER-001"
	ErrCodeAdapterCrash   ErrorCode = "ADAPTER-002"
	ErrCodeAdapterParse   ErrorCode = "ADAPTER-003"

	// Gate errors (GATE-001 to GATE-099)
	ErrCodeGateFindings      ErrorCode = "GATE-001"
	ErrCodeGateMandatoryTool ErrorCode = "GATE-002"

	// Report errors (REPORT-001 to REPORT-099)
	ErrCodeReportRender ErrorCode = "REPORT-001"
	ErrCodeReportWrite  ErrorCode = "REPORT-002"

	// Attestation errors (ATTEST-001 to ATTEST-099)
	ErrCodeAttestSign   ErrorCode = "ATTEST-001"
	ErrCodeAttestVerify ErrorCode = "ATTEST-002"
	ErrCodeAttestKey    ErrorCode = "ATTEST-003"

	// Cache errors (CACHE-001 to CACHE-099)
	ErrCodeCacheOpen    ErrorCode = "CACHE-001"
	ErrCodeCacheCorrupt ErrorCode = "CACHE-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeFileUnmarshal   ErrorCode = "IO-004"
	ErrCodeFileMarshal     ErrorCode = "IO-005"
)

// GateError represents an enhanced error with code, suggestions, and documentation
type GateError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *GateError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *GateError) Unwrap() error {
	return e.Cause
}

// New creates a new GateError
func New(code ErrorCode, message string) *GateError {
	return &GateError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new GateError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *GateError {
	return &GateError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *GateError) WithSuggestion(suggestion string) *GateError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *GateError) WithSuggestions(suggestions ...string) *GateError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *GateError) WithDocs(url string) *GateError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewConfigNotFoundError creates a config file not found error
func NewConfigNotFoundError(path string) *GateError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithSuggestion("Run 'lintgate init' to create a starter configuration").
		WithSuggestion("Check if the file path is correct").
		WithDocs("https://github.com/felixgeelhaar/lintgate#configuration")
}

// NewConfigInvalidError creates a config validation error
func NewConfigInvalidError(details string) *GateError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Check .lintgate.yaml against the documented schema").
		WithDocs("https://github.com/felixgeelhaar/lintgate#configuration")
}

// NewToolUnknownError creates an unknown analyzer kind error
func NewToolUnknownError(name string, kind string, known []string) *GateError {
	return New(ErrCodeToolUnknown, fmt.Sprintf("tool %q has unknown kind %q", name, kind)).
		WithSuggestion(fmt.Sprintf("Use one of: %s", strings.Join(known, ", "))).
		WithSuggestion("Use kind 'regex' with a pattern for analyzers without a built-in adapter").
		WithDocs("https://github.com/felixgeelhaar/lintgate#analyzers")
}

// NewNoToolsEnabledError creates an empty tool set error
func NewNoToolsEnabledError() *GateError {
	return New(ErrCodeNoToolsEnabled, "no analyzers are enabled").
		WithSuggestion("Enable at least one tool in .lintgate.yaml").
		WithSuggestion("Run 'lintgate tools' to see the configured analyzers").
		WithDocs("https://github.com/felixgeelhaar/lintgate#configuration")
}

// NewTargetInvalidError creates an invalid target or diff line error
func NewTargetInvalidError(details string) *GateError {
	return New(ErrCodeTargetInvalid, fmt.Sprintf("invalid target: %s", details)).
		WithSuggestion("Diff lines use the form path, path:line or path:start-end")
}

// NewMandatoryToolMissingError creates an error for a mandatory tool that
// is not present in the tool list
func NewMandatoryToolMissingError(tool string) *GateError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("mandatory tool %q is not configured", tool)).
		WithSuggestion(fmt.Sprintf("Add %q to the tools list or remove it from mandatory_tools", tool))
}

// NewSuppressionFileError creates a suppression file error
func NewSuppressionFileError(path string, cause error) *GateError {
	return Wrap(ErrCodeSuppressionFile, fmt.Sprintf("failed to load suppressions from %s", path), cause).
		WithSuggestion("Check the file syntax: each rule needs a fingerprint or a rule pattern").
		WithDocs("https://github.com/felixgeelhaar/lintgate#suppressions")
}

// NewSuppressionInvalidError creates a suppression validation error
func NewSuppressionInvalidError(details string) *GateError {
	return New(ErrCodeSuppressionInvalid, fmt.Sprintf("invalid suppression rule: %s", details)).
		WithSuggestion("Every suppression needs a fingerprint or rule pattern and a justification")
}

// NewGateFindingsError creates the blocking-findings gate failure
func NewGateFindingsError(blocking int) *GateError {
	return New(ErrCodeGateFindings, fmt.Sprintf("gate failed: %d blocking finding(s)", blocking)).
		WithSuggestion("Fix the reported findings or add justified suppressions").
		WithSuggestion("Run 'lintgate check --format json' for machine-readable details")
}

// NewMandatoryToolError creates the mandatory-tool-unavailable gate failure
func NewMandatoryToolError(tool string, status string) *GateError {
	return New(ErrCodeGateMandatoryTool, fmt.Sprintf("mandatory tool %q did not complete (status: %s)", tool, status)).
		WithSuggestion(fmt.Sprintf("Check that %q is installed and on PATH", tool)).
		WithSuggestion("Increase timeout_per_tool if the analyzer is slow on this tree")
}

// NewAdapterCrashError creates an analyzer crash error
func NewAdapterCrashError(tool string, cause error) *GateError {
	return Wrap(ErrCodeAdapterCrash, fmt.Sprintf("analyzer %q crashed", tool), cause).
		WithSuggestion(fmt.Sprintf("Run the %q command manually to reproduce", tool))
}

// NewAdapterParseError creates an unparseable-output error
func NewAdapterParseError(tool string, cause error) *GateError {
	return Wrap(ErrCodeAdapterParse, fmt.Sprintf("cannot parse output of analyzer %q", tool), cause).
		WithSuggestion("Check that the tool is invoked with its machine-readable output flag")
}

// NewCacheOpenError creates a cache open error
func NewCacheOpenError(path string, cause error) *GateError {
	return Wrap(ErrCodeCacheOpen, fmt.Sprintf("cannot open result cache at %s", path), cause).
		WithSuggestion("Remove the cache file and retry, or disable the cache in .lintgate.yaml")
}

// NewReportRenderError creates a report render error
func NewReportRenderError(format string, cause error) *GateError {
	return Wrap(ErrCodeReportRender, fmt.Sprintf("failed to render %s report", format), cause)
}

// NewReportWriteError creates a report output error
func NewReportWriteError(path string, cause error) *GateError {
	return Wrap(ErrCodeReportWrite, fmt.Sprintf("failed to write report to %s", path), cause).
		WithSuggestion("Check that the output directory exists and is writable")
}

// NewCacheCorruptError creates a cache corruption error
func NewCacheCorruptError(key string, cause error) *GateError {
	return Wrap(ErrCodeCacheCorrupt, fmt.Sprintf("cache entry %s cannot be decoded", key), cause).
		WithSuggestion("Run `lintgate cache clean` to rebuild the cache")
}

// NewAttestSignError creates a signing failure error
func NewAttestSignError(cause error) *GateError {
	return Wrap(ErrCodeAttestSign, "failed to sign report", cause)
}

// NewAttestKeyError creates a signing key error
func NewAttestKeyError(path string, cause error) *GateError {
	return Wrap(ErrCodeAttestKey, fmt.Sprintf("cannot load signing key from %s", path), cause).
		WithSuggestion("Provide a PEM-encoded ECDSA key or an OpenSSH private key")
}

// NewAttestVerifyError creates a verification failure error
func NewAttestVerifyError(details string) *GateError {
	return New(ErrCodeAttestVerify, fmt.Sprintf("attestation verification failed: %s", details)).
		WithSuggestion("The report may have been modified after it was signed")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *GateError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *GateError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
