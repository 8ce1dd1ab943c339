// Package deps makes sure the Ruby gems the test-cloud client needs are
// installed, either through bundler or with plain gem installs.
package deps

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zoro11031/testcloud-step/internal/manifest"
	"github.com/zoro11031/testcloud-step/internal/system"
	"github.com/zoro11031/testcloud-step/internal/ui"
)

// Gems the submission depends on.
const (
	GemCucumber  = "cucumber"
	GemTestCloud = "xamarin-test-cloud"
)

// DefaultGemfile is looked up in the work dir when no Gemfile path is given.
const DefaultGemfile = "Gemfile"

// RequiredGems lists the gems in install order.
var RequiredGems = []string{GemCucumber, GemTestCloud}

// Plan is the outcome of inspecting the dependency manifest.
type Plan struct {
	// Gemfile is the absolute Gemfile path used with bundler.
	Gemfile string
	// Manifest is the parsed manifest, nil when none was found.
	Manifest *manifest.Manifest
	// UseBundler is set when every required gem is declared in the manifest.
	UseBundler bool
}

// Env returns the environment entries the bundler commands need.
func (p Plan) Env() []string {
	if !p.UseBundler {
		return nil
	}
	return []string{"BUNDLE_GEMFILE=" + p.Gemfile}
}

// CommandPrefix returns the argv prefix for running gem executables.
func (p Plan) CommandPrefix() []string {
	if !p.UseBundler {
		return nil
	}
	return []string{"bundle", "exec"}
}

// Installer inspects manifests and runs bundler or gem installs.
type Installer struct {
	runner system.CommandRunner
	ui     *ui.UI
	stdout io.Writer
	stderr io.Writer
}

// NewInstaller creates an Installer that streams command output to the
// process stdout and stderr.
func NewInstaller(runner system.CommandRunner, u *ui.UI) *Installer {
	return &Installer{
		runner: runner,
		ui:     u,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// Plan decides how dependencies are installed. gemfilePath may be empty, in
// which case workDir/Gemfile is used.
func (i *Installer) Plan(gemfilePath, workDir string) (Plan, error) {
	if gemfilePath == "" {
		gemfilePath = filepath.Join(workDir, DefaultGemfile)
	}
	gemfile, err := system.AbsPath(gemfilePath)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{Gemfile: gemfile}

	path, err := manifest.Locate(gemfile)
	if err != nil {
		return Plan{}, err
	}
	if path == "" {
		i.ui.Warningf("No Gemfile found at: %s", gemfile)
		return plan, nil
	}

	m, err := manifest.Load(path)
	if err != nil {
		return Plan{}, err
	}
	i.ui.Infof("Dependency manifest: %s", path)
	plan.Manifest = m

	declared := 0
	for _, gem := range RequiredGems {
		if m.Has(gem) {
			declared++
			if v := m.Version(gem); v != "" {
				i.ui.Infof("  %s (%s) declared", gem, v)
			} else {
				i.ui.Infof("  %s declared", gem)
			}
		} else {
			i.ui.Infof("  %s not declared", gem)
		}
	}
	plan.UseBundler = declared == len(RequiredGems)

	return plan, nil
}

// Ensure installs the dependencies according to plan. It stops at the first
// failing command.
func (i *Installer) Ensure(plan Plan) error {
	if plan.UseBundler {
		i.ui.Success("Using gems from the Gemfile with bundler")
		return i.run(system.Command{
			Name: "bundle",
			Args: []string{"install", "--jobs", "20", "--retry", "5"},
			Env:  plan.Env(),
		})
	}

	i.ui.Success("Installing latest gem versions")
	for _, gem := range RequiredGems {
		if err := i.run(system.Command{
			Name: "gem",
			Args: []string{"install", gem, "--no-document"},
		}); err != nil {
			return err
		}
	}
	return nil
}

func (i *Installer) run(cmd system.Command) error {
	cmd.Stdout = i.stdout
	cmd.Stderr = i.stderr
	i.ui.Command(cmd.Argv())

	if err := i.runner.Run(cmd); err != nil {
		return fmt.Errorf("%s failed: %w", cmd.Name, err)
	}
	return nil
}
