// Package cli wires configuration, output and the submission pipeline
// together for the command-line entry point.
package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/zoro11031/testcloud-step/internal/config"
	"github.com/zoro11031/testcloud-step/internal/deps"
	"github.com/zoro11031/testcloud-step/internal/report"
	"github.com/zoro11031/testcloud-step/internal/system"
	"github.com/zoro11031/testcloud-step/internal/testcloud"
	"github.com/zoro11031/testcloud-step/internal/ui"
)

// Options configure a StepContext.
type Options struct {
	ConfigPath  string
	Interactive bool
	// ResultFile receives KEY=value result lines instead of envman.
	ResultFile string
}

// StepContext holds all dependencies needed for a submission run
type StepContext struct {
	Config   *config.Config
	UI       *ui.UI
	Runner   system.CommandRunner
	Exporter report.Exporter

	Getenv func(string) string
	Getwd  func() (string, error)
}

// NewStepContext creates a StepContext backed by the real environment.
func NewStepContext(opts Options) (*StepContext, error) {
	cfg := config.New(opts.ConfigPath)
	if err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	uiInstance := ui.New()
	uiInstance.SetNonInteractive(!opts.Interactive)

	resultFile := opts.ResultFile
	if resultFile == "" {
		resultFile = cfg.GetOrDefault(config.KeyResultFile, "")
	}

	runner := system.NewCommandRunner()
	return &StepContext{
		Config:   cfg,
		UI:       uiInstance,
		Runner:   runner,
		Exporter: report.NewExporter(runner, uiInstance, resultFile),
		Getenv:   os.Getenv,
		Getwd:    os.Getwd,
	}, nil
}

// RunOptions control a single submission.
type RunOptions struct {
	// DryRun stops after printing the command; nothing is installed,
	// submitted or exported.
	DryRun bool
}

// Run resolves inputs from flags, the environment and the config file, then
// validates, installs dependencies, submits and reports the result.
func (s *StepContext) Run(flags testcloud.Inputs, opts RunOptions) error {
	reporter := report.NewReporter(s.Exporter, s.UI, s.Config.GetOrDefault(config.KeyResultKey, ""))

	err := s.submit(flags, opts)
	if opts.DryRun {
		return err
	}
	if err != nil {
		reporter.Failure()
		return err
	}
	return reporter.Success()
}

func (s *StepContext) submit(flags testcloud.Inputs, opts RunOptions) error {
	s.UI.Header("Test Cloud Submission")

	in := flags.
		Merge(testcloud.InputsFromEnv(s.Getenv)).
		Merge(testcloud.InputsFromConfig(s.Config))

	if !s.UI.IsNonInteractive() {
		var err error
		if in, err = s.promptMissing(in); err != nil {
			return err
		}
	}

	rc, err := in.RunConfig()
	if err != nil {
		return fmt.Errorf("issue with input: %w", err)
	}

	s.printConfig(rc)

	if err := rc.Validate(); err != nil {
		return fmt.Errorf("issue with input: %w", err)
	}

	if rc, err = rc.Absolute(); err != nil {
		return err
	}

	cwd, err := s.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	workDir, err := system.AbsPath(rc.ResolveWorkDir(cwd))
	if err != nil {
		return err
	}

	var plan deps.Plan
	if rc.InstallDeps {
		s.UI.Step("Checking gem dependencies...")
		installer := deps.NewInstaller(s.Runner, s.UI)
		if plan, err = installer.Plan(rc.GemfilePath, workDir); err != nil {
			return fmt.Errorf("failed to inspect dependencies: %w", err)
		}
		if !opts.DryRun {
			if err := installer.Ensure(plan); err != nil {
				return fmt.Errorf("failed to install dependencies: %w", err)
			}
		}
	}

	argv, err := testcloud.BuildCommand(rc, testcloud.BuildOptions{
		Client: s.Config.GetOrDefault(config.KeyClientBinary, testcloud.DefaultClient),
		Prefix: plan.CommandPrefix(),
	})
	if err != nil {
		return err
	}

	s.UI.Step("Submitting ipa...")
	s.UI.Infof("Working directory: %s", workDir)
	s.UI.Command(testcloud.MaskArgv(argv, rc.APIKey))

	if opts.DryRun {
		s.UI.Info("Dry run: submission skipped")
		return nil
	}

	return testcloud.NewSubmitter(s.Runner).Submit(argv, workDir, plan.Env())
}

func (s *StepContext) printConfig(rc testcloud.RunConfig) {
	rc = rc.Masked()

	s.UI.Info("Configs:")
	s.UI.Field("features", rc.Features)
	s.UI.Field("ipa_path", rc.IPAPath)
	s.UI.Field("dsym_path", rc.DSYMPath)
	s.UI.Field("api_key", rc.APIKey)
	s.UI.Field("user", rc.User)
	s.UI.Field("devices", rc.Devices)
	s.UI.Field("async", strconv.FormatBool(rc.Async))
	s.UI.Field("series", rc.Series)
	s.UI.Field("other_parameters", rc.OtherParameters)
	if rc.InstallDeps {
		s.UI.Field("work_dir", rc.WorkDir)
		s.UI.Field("gemfile", rc.GemfilePath)
	}
}

// promptMissing asks for required inputs that no source provided.
func (s *StepContext) promptMissing(in testcloud.Inputs) (testcloud.Inputs, error) {
	var err error
	if in.User == "" {
		if in.User, err = s.UI.PromptInputRequired("Test Cloud user (email)", "Account the test run is submitted under"); err != nil {
			return in, err
		}
	}
	if in.Devices == "" {
		if in.Devices, err = s.UI.PromptInputRequired("Device selection ID", "The --devices value shown by the Test Cloud upload dialog"); err != nil {
			return in, err
		}
	}
	if in.APIKey == "" {
		if in.APIKey, err = s.UI.PromptPassword("Test Cloud API key"); err != nil {
			return in, err
		}
	}
	return in, nil
}
