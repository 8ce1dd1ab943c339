package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zoro11031/testcloud-step/internal/config"
	"github.com/zoro11031/testcloud-step/internal/report"
	"github.com/zoro11031/testcloud-step/internal/system"
	"github.com/zoro11031/testcloud-step/internal/testcloud"
	"github.com/zoro11031/testcloud-step/internal/ui"
)

type fakeCommandRunner struct {
	commands    []system.Command
	failCommand string
}

func (f *fakeCommandRunner) Run(cmd system.Command) error {
	line := strings.Join(cmd.Argv(), " ")
	f.commands = append(f.commands, cmd)
	if f.failCommand != "" && strings.HasPrefix(line, f.failCommand) {
		return errors.New("forced failure for " + line)
	}
	return nil
}

func (f *fakeCommandRunner) lines() []string {
	var out []string
	for _, cmd := range f.commands {
		out = append(out, strings.Join(cmd.Argv(), " "))
	}
	return out
}

type recordingExporter struct {
	pairs []string
}

func (r *recordingExporter) Export(key, value string) error {
	r.pairs = append(r.pairs, key+"="+value)
	return nil
}

type project struct {
	root     string
	features string
	ipa      string
}

func newProject(t *testing.T) project {
	t.Helper()
	root := t.TempDir()
	features := filepath.Join(root, "features")
	if err := os.Mkdir(features, 0755); err != nil {
		t.Fatalf("Mkdir() failed: %v", err)
	}
	ipa := filepath.Join(root, "build", "App.ipa")
	if err := os.MkdirAll(filepath.Dir(ipa), 0755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}
	if err := os.WriteFile(ipa, []byte("ipa"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return project{root: root, features: features, ipa: ipa}
}

func newTestContext(t *testing.T, runner *fakeCommandRunner, env map[string]string, cwd string) (*StepContext, *recordingExporter) {
	t.Helper()
	exporter := &recordingExporter{}
	return &StepContext{
		Config:   config.New(filepath.Join(t.TempDir(), "test.conf")),
		UI:       ui.NewWithWriter(&bytes.Buffer{}),
		Runner:   runner,
		Exporter: exporter,
		Getenv:   func(key string) string { return env[key] },
		Getwd:    func() (string, error) { return cwd, nil },
	}, exporter
}

func (p project) flags() testcloud.Inputs {
	return testcloud.Inputs{
		Features: p.features,
		IPAPath:  p.ipa,
		APIKey:   "0123456789abcdef",
		User:     "ci@example.com",
		Devices:  "f3a5c1d2",
	}
}

func TestRunSubmitsAndReportsSuccess(t *testing.T) {
	p := newProject(t)
	runner := &fakeCommandRunner{}
	ctx, exporter := newTestContext(t, runner, nil, "/somewhere/else")

	if err := ctx.Run(p.flags(), RunOptions{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(runner.commands) != 1 {
		t.Fatalf("commands = %v, want one submission", runner.lines())
	}
	want := "test-cloud submit " + p.ipa + " 0123456789abcdef --user ci@example.com --devices f3a5c1d2 --async --series master"
	if got := runner.lines()[0]; got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
	if runner.commands[0].Dir != p.root {
		t.Errorf("Dir = %s, want directory containing features %s", runner.commands[0].Dir, p.root)
	}

	if len(exporter.pairs) != 1 || exporter.pairs[0] != report.DefaultResultKey+"="+report.ResultSucceeded {
		t.Errorf("exported = %v, want exactly one success marker", exporter.pairs)
	}
}

func TestRunSubmissionFailure(t *testing.T) {
	p := newProject(t)
	runner := &fakeCommandRunner{failCommand: "test-cloud submit"}
	ctx, exporter := newTestContext(t, runner, nil, p.root)

	err := ctx.Run(p.flags(), RunOptions{})
	if !errors.Is(err, testcloud.ErrSubmissionFailed) {
		t.Fatalf("Run() error = %v, want ErrSubmissionFailed", err)
	}
	for _, pair := range exporter.pairs {
		if strings.HasSuffix(pair, "="+report.ResultSucceeded) {
			t.Errorf("success marker exported after failure: %v", exporter.pairs)
		}
	}
	if len(exporter.pairs) != 1 || exporter.pairs[0] != report.DefaultResultKey+"="+report.ResultFailed {
		t.Errorf("exported = %v, want failed marker", exporter.pairs)
	}
}

func TestRunMissingIPA(t *testing.T) {
	p := newProject(t)
	runner := &fakeCommandRunner{}
	ctx, exporter := newTestContext(t, runner, nil, p.root)

	flags := p.flags()
	flags.IPAPath = filepath.Join(p.root, "missing.ipa")

	err := ctx.Run(flags, RunOptions{})
	if !errors.Is(err, testcloud.ErrMissingInput) {
		t.Fatalf("Run() error = %v, want ErrMissingInput", err)
	}
	if len(runner.commands) != 0 {
		t.Errorf("no command should run, got %v", runner.lines())
	}
	if len(exporter.pairs) != 1 || exporter.pairs[0] != report.DefaultResultKey+"="+report.ResultFailed {
		t.Errorf("exported = %v", exporter.pairs)
	}
}

func TestRunInvalidAsync(t *testing.T) {
	p := newProject(t)
	runner := &fakeCommandRunner{}
	ctx, _ := newTestContext(t, runner, nil, p.root)

	flags := p.flags()
	flags.Async = "perhaps"

	if err := ctx.Run(flags, RunOptions{}); !errors.Is(err, testcloud.ErrInvalidBooleanInput) {
		t.Fatalf("Run() error = %v, want ErrInvalidBooleanInput", err)
	}
	if len(runner.commands) != 0 {
		t.Errorf("no command should run, got %v", runner.lines())
	}
}

func TestRunReadsEnvironmentAndConfig(t *testing.T) {
	p := newProject(t)
	runner := &fakeCommandRunner{}
	env := map[string]string{
		testcloud.EnvIPAPath:  p.ipa,
		testcloud.EnvAPIKey:   "env-key",
		testcloud.EnvUser:     "env-user",
		testcloud.EnvAsync:    "no",
		testcloud.EnvFeatures: p.features,
	}
	ctx, _ := newTestContext(t, runner, env, p.root)
	if err := ctx.Config.Set(config.KeyDevices, "stored-devices"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := ctx.Config.Set(config.KeySeries, "nightly"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	if err := ctx.Run(testcloud.Inputs{User: "flag-user"}, RunOptions{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "test-cloud submit " + p.ipa + " env-key --user flag-user --devices stored-devices --series nightly"
	if got := runner.lines()[0]; got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestRunInstallDepsWithBundler(t *testing.T) {
	p := newProject(t)
	gemfile := filepath.Join(p.root, "Gemfile")
	if err := os.WriteFile(gemfile, []byte("gem 'cucumber'\ngem 'xamarin-test-cloud'\n"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	runner := &fakeCommandRunner{}
	ctx, _ := newTestContext(t, runner, nil, p.root)

	flags := p.flags()
	flags.InstallDeps = true
	flags.Async = "false"
	flags.Series = "release"

	if err := ctx.Run(flags, RunOptions{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	lines := runner.lines()
	if len(lines) != 2 {
		t.Fatalf("commands = %v, want bundle install and submission", lines)
	}
	if lines[0] != "bundle install --jobs 20 --retry 5" {
		t.Errorf("first command = %q", lines[0])
	}
	want := "bundle exec test-cloud submit " + p.ipa + " 0123456789abcdef --user ci@example.com --devices f3a5c1d2 --series release"
	if lines[1] != want {
		t.Errorf("submission = %q, want %q", lines[1], want)
	}
	submit := runner.commands[1]
	if submit.Dir != p.root {
		t.Errorf("Dir = %s, want current directory %s", submit.Dir, p.root)
	}
	if len(submit.Env) != 1 || submit.Env[0] != "BUNDLE_GEMFILE="+gemfile {
		t.Errorf("Env = %v", submit.Env)
	}
}

func TestRunInstallDepsWithoutGemfile(t *testing.T) {
	p := newProject(t)
	runner := &fakeCommandRunner{}
	ctx, _ := newTestContext(t, runner, nil, p.root)

	flags := p.flags()
	flags.InstallDeps = true

	if err := ctx.Run(flags, RunOptions{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	lines := runner.lines()
	if len(lines) != 3 {
		t.Fatalf("commands = %v", lines)
	}
	if lines[0] != "gem install cucumber --no-document" || lines[1] != "gem install xamarin-test-cloud --no-document" {
		t.Errorf("install commands = %v", lines[:2])
	}
	if !strings.HasPrefix(lines[2], "test-cloud submit ") {
		t.Errorf("submission = %q", lines[2])
	}
}

func TestRunDryRun(t *testing.T) {
	p := newProject(t)
	runner := &fakeCommandRunner{}
	ctx, exporter := newTestContext(t, runner, nil, p.root)
	var out bytes.Buffer
	ctx.UI = ui.NewWithWriter(&out)

	if err := ctx.Run(p.flags(), RunOptions{DryRun: true}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(runner.commands) != 0 {
		t.Errorf("dry run executed %v", runner.lines())
	}
	if len(exporter.pairs) != 0 {
		t.Errorf("dry run exported %v", exporter.pairs)
	}
	if strings.Contains(out.String(), "0123456789abcdef") {
		t.Error("API key printed in clear text")
	}
	if !strings.Contains(out.String(), "test-cloud submit") {
		t.Errorf("dry run did not print the command:\n%s", out.String())
	}
}
