package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandConverter delegates conversion to an external program that takes a
// file path as its only argument and writes markdown to stdout
// (markitdown's CLI contract).
type CommandConverter struct {
	bin string
}

// NewCommandConverter returns a converter running bin. It fails if bin is not on PATH.
func NewCommandConverter(bin string) (*CommandConverter, error) {
	resolved, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("converter command %q: %w", bin, err)
	}
	return &CommandConverter{bin: resolved}, nil
}

func (c *CommandConverter) Convert(ctx context.Context, path string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.bin, path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("converter exited with %d: %s", exitErr.ExitCode(), lastLine(stderr.String()))
		}
		return "", fmt.Errorf("run converter: %w", err)
	}

	return stdout.String(), nil
}

// lastLine keeps error messages short; tracebacks end with the actual error.
func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return "no output"
	}
	return s
}
