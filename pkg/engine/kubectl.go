package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"
)

// ErrNotInstalled is returned when the kubectl binary can't be started.
var ErrNotInstalled = errors.New("kubectl is not installed. Please install kubectl cli")

// Output holds the captured streams of a kubectl run
type Output struct {
	Stdout string
	Stderr string
}

// ExitError is returned when kubectl exits with a non-zero code
type ExitError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("kubectl %s exited with code %d", strings.Join(e.Args, " "), e.ExitCode)
}

// KubectlExecutor an executor that shells out to run commands
type KubectlExecutor struct {
	kubectl string
	envVars []string
}

// NewKubectlExecutor creates a new executor that runs kubectl commands
func NewKubectlExecutor(kubectl string, envVars []string) KubectlExecutor {
	return KubectlExecutor{
		envVars: envVars,
		kubectl: kubectl,
	}
}

// Probe starts kubectl without arguments to make sure the binary can be found and executed,
// the exit code is ignored since kubectl exits non-zero when it only prints its usage
func (e KubectlExecutor) Probe(ctx context.Context) error {
	cmd, err := e.buildCmd(ctx, nil)
	if err != nil {
		return err
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrNotInstalled, err)
	}
	return nil
}

// Run executes the kubectl command with the specified args and waits for it to exit,
// the captured output is returned even when the command fails
func (e KubectlExecutor) Run(ctx context.Context, args ...string) (Output, error) {
	cmd, err := e.buildCmd(ctx, args)
	if err != nil {
		return Output{}, err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	output := Output{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, &ExitError{
				Args:     args,
				ExitCode: exitErr.ExitCode(),
				Stderr:   output.Stderr,
			}
		}
		return output, fmt.Errorf("%w: %v", ErrNotInstalled, err)
	}

	return output, nil
}

func (e KubectlExecutor) buildCmd(ctx context.Context, args []string) (*exec.Cmd, error) {
	s, err := shellwords.Parse(e.kubectl)
	if err != nil {
		return nil, fmt.Errorf("parsing kubectl command '%s' failed: %w", e.kubectl, err)
	}
	if len(s) == 0 {
		return nil, fmt.Errorf("kubectl command can't be empty")
	}
	s = append(s, args...)

	cmd := exec.CommandContext(ctx, s[0], s[1:]...)
	if len(e.envVars) > 0 {
		cmd.Env = e.envVars
	}
	return cmd, nil
}
