package adapter

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/felixgeelhaar/lintgate/internal/config"
	"github.com/felixgeelhaar/lintgate/internal/errors"
)

// runCommand executes an analyzer binary with buffered stdio. Only a start
// failure or a kill is an error; non-zero exit codes come back in the
// RawResult. Context errors surface as-is so callers can tell a timeout
// from a crash.
func runCommand(ctx context.Context, tool string, name string, args []string) (*RawResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	exitCode := 0
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, errors.NewAdapterCrashError(tool, err)
		}
		exitCode = exitErr.ExitCode()
		if exitCode < 0 {
			// Killed by a signal outside our deadline
			return nil, errors.NewAdapterCrashError(tool, err)
		}
	}

	return &RawResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode,
	}, nil
}

// binary resolves the command to run: the configured override or the
// adapter's default.
func binary(tool config.Tool, fallback string) string {
	if tool.Command != "" {
		return tool.Command
	}
	return fallback
}
