// Package report publishes the outcome of a submission to the CI environment.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zoro11031/testcloud-step/internal/system"
	"github.com/zoro11031/testcloud-step/internal/ui"
)

// Result values exported under the result key.
const (
	ResultSucceeded = "succeeded"
	ResultFailed    = "failed"
)

// DefaultResultKey is the environment key CI workflows read the result from.
const DefaultResultKey = "BITRISE_XAMARIN_TEST_RESULT"

// Exporter writes a key/value pair into the CI environment.
type Exporter interface {
	Export(key, value string) error
}

// EnvmanExporter exports through `envman add`, passing the value on stdin.
type EnvmanExporter struct {
	runner system.CommandRunner
}

// NewEnvmanExporter creates an EnvmanExporter.
func NewEnvmanExporter(runner system.CommandRunner) *EnvmanExporter {
	return &EnvmanExporter{runner: runner}
}

// Export runs envman add --key key.
func (e *EnvmanExporter) Export(key, value string) error {
	err := e.runner.Run(system.Command{
		Name:  "envman",
		Args:  []string{"add", "--key", key},
		Stdin: strings.NewReader(value),
	})
	if err != nil {
		return fmt.Errorf("envman add --key %s failed: %w", key, err)
	}
	return nil
}

// FileExporter appends KEY=value lines to a file, the convention of CI
// systems that source an env file between steps.
type FileExporter struct {
	path string
}

// NewFileExporter creates a FileExporter writing to path.
func NewFileExporter(path string) *FileExporter {
	return &FileExporter{path: path}
}

// Export appends one line to the file, creating it and its directory if needed.
func (f *FileExporter) Export(key, value string) error {
	if strings.ContainsAny(key, "=\n") || strings.Contains(value, "\n") {
		return fmt.Errorf("cannot export %q: key or value contains a line break or '='", key)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create result file directory: %w", err)
	}

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open result file: %w", err)
	}
	if _, err := fmt.Fprintf(file, "%s=%s\n", key, value); err != nil {
		file.Close()
		return fmt.Errorf("failed to write result file: %w", err)
	}
	return file.Close()
}

// PrintExporter only prints the pair. It is used when no export mechanism is available.
type PrintExporter struct {
	ui *ui.UI
}

// NewPrintExporter creates a PrintExporter.
func NewPrintExporter(u *ui.UI) *PrintExporter {
	return &PrintExporter{ui: u}
}

// Export prints key=value.
func (p *PrintExporter) Export(key, value string) error {
	p.ui.Infof("%s=%s", key, value)
	return nil
}

// NewExporter picks the exporter for this environment: a result file when
// one is configured, envman when it is on PATH, printing otherwise.
func NewExporter(runner system.CommandRunner, u *ui.UI, resultFile string) Exporter {
	switch {
	case resultFile != "":
		return NewFileExporter(resultFile)
	case system.CommandExists("envman"):
		return NewEnvmanExporter(runner)
	default:
		return NewPrintExporter(u)
	}
}

// Reporter exports the result of one run. It exports at most once.
type Reporter struct {
	exporter Exporter
	ui       *ui.UI
	key      string
	done     bool
}

// NewReporter creates a Reporter exporting under key, or DefaultResultKey when key is empty.
func NewReporter(exporter Exporter, u *ui.UI, key string) *Reporter {
	if key == "" {
		key = DefaultResultKey
	}
	return &Reporter{exporter: exporter, ui: u, key: key}
}

// Success exports the succeeded marker.
func (r *Reporter) Success() error {
	if r.done {
		return nil
	}
	r.done = true

	r.ui.Successf("The result is: %s", ResultSucceeded)
	if err := r.exporter.Export(r.key, ResultSucceeded); err != nil {
		return fmt.Errorf("failed to export %s: %w", r.key, err)
	}
	return nil
}

// Failure exports the failed marker. Export errors are only warned about
// since the run has already failed; the caller prints the reason.
func (r *Reporter) Failure() {
	if r.done {
		return
	}
	r.done = true

	if err := r.exporter.Export(r.key, ResultFailed); err != nil {
		r.ui.Warningf("Failed to export environment: %s, error: %v", r.key, err)
	}
}
