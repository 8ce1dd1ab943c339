package testcloud

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zoro11031/testcloud-step/internal/system"
)

// Submitter runs a built submission command.
type Submitter struct {
	runner system.CommandRunner
	stdout io.Writer
	stderr io.Writer
}

// NewSubmitter creates a Submitter that streams the client's output to the
// process stdout and stderr.
func NewSubmitter(runner system.CommandRunner) *Submitter {
	return &Submitter{
		runner: runner,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// Submit runs argv in dir with env appended to the inherited environment and
// blocks until the client exits. A non-zero exit wraps ErrSubmissionFailed.
func (s *Submitter) Submit(argv []string, dir string, env []string) error {
	if len(argv) == 0 {
		return errors.New("empty submission command")
	}

	err := s.runner.Run(system.Command{
		Name:   argv[0],
		Args:   argv[1:],
		Dir:    dir,
		Env:    env,
		Stdout: s.stdout,
		Stderr: s.stderr,
	})
	if err != nil {
		if code := system.ExitCode(err); code > 0 {
			return fmt.Errorf("%w: %s exited with status %d", ErrSubmissionFailed, argv[0], code)
		}
		return fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	return nil
}
