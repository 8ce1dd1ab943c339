package system

import (
	"errors"
	"io"
	"os"
	"os/exec"
)

// Command describes a single external process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory of the child process. Empty means the
	// caller's current directory.
	Dir string
	// Env entries are appended to the inherited environment.
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Argv returns the full argument vector including the program name.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// CommandRunner defines an interface for running external commands.
type CommandRunner interface {
	Run(cmd Command) error
}

// ExecCommandRunner executes commands with os/exec, blocking until they exit.
type ExecCommandRunner struct{}

// NewCommandRunner returns a default command runner implementation.
func NewCommandRunner() CommandRunner {
	return &ExecCommandRunner{}
}

// Run starts the command and waits for it to finish.
func (r *ExecCommandRunner) Run(c Command) error {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	return cmd.Run()
}

// ExitCode reports the exit status carried by an error returned from Run.
// It returns 0 for a nil error and -1 when the process never produced a
// status (for example, the binary was not found).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
