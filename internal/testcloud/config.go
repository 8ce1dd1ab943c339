// Package testcloud turns step inputs into a validated submission and runs the
// test-cloud client.
package testcloud

import (
	"fmt"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/zoro11031/testcloud-step/internal/common"
	"github.com/zoro11031/testcloud-step/internal/config"
	"github.com/zoro11031/testcloud-step/internal/system"
)

// DefaultSeries is used when no series is given.
const DefaultSeries = "master"

// Inputs holds raw, unvalidated step inputs from one source (flags,
// environment or the defaults file). Empty strings mean "not provided".
type Inputs struct {
	Features        string
	IPAPath         string
	DSYMPath        string
	APIKey          string
	User            string
	Devices         string
	Async           string
	Series          string
	OtherParameters string
	WorkDir         string
	GemfilePath     string
	InstallDeps     bool
}

// Step input environment variables, as the CI passes them.
const (
	EnvFeatures        = "features"
	EnvIPAPath         = "ipa_path"
	EnvDSYMPath        = "dsym_path"
	EnvAPIKey          = "test_cloud_api_key"
	EnvUser            = "xamarin_user"
	EnvDevices         = "test_cloud_devices"
	EnvAsync           = "test_cloud_is_async"
	EnvSeries          = "test_cloud_series"
	EnvOtherParameters = "other_parameters"
	EnvWorkDir         = "work_dir"
	EnvGemfilePath     = "gem_file_path"
)

// InputsFromEnv reads step inputs through getenv.
func InputsFromEnv(getenv func(string) string) Inputs {
	return Inputs{
		Features:        getenv(EnvFeatures),
		IPAPath:         getenv(EnvIPAPath),
		DSYMPath:        getenv(EnvDSYMPath),
		APIKey:          getenv(EnvAPIKey),
		User:            getenv(EnvUser),
		Devices:         getenv(EnvDevices),
		Async:           getenv(EnvAsync),
		Series:          getenv(EnvSeries),
		OtherParameters: getenv(EnvOtherParameters),
		WorkDir:         getenv(EnvWorkDir),
		GemfilePath:     getenv(EnvGemfilePath),
	}
}

// InputsFromConfig reads stored defaults, falling back to the config Defaults
// table. The API key is never stored.
func InputsFromConfig(cfg *config.Config) Inputs {
	return Inputs{
		Features:        cfg.GetOrDefault(config.KeyFeatures, ""),
		User:            cfg.GetOrDefault(config.KeyUser, ""),
		Devices:         cfg.GetOrDefault(config.KeyDevices, ""),
		Async:           cfg.GetOrDefault(config.KeyAsync, ""),
		Series:          cfg.GetOrDefault(config.KeySeries, ""),
		OtherParameters: cfg.GetOrDefault(config.KeyOtherParameters, ""),
		WorkDir:         cfg.GetOrDefault(config.KeyWorkDir, ""),
		GemfilePath:     cfg.GetOrDefault(config.KeyGemfilePath, ""),
	}
}

// Merge fills every empty field of in from lower.
func (in Inputs) Merge(lower Inputs) Inputs {
	pick := func(a, b string) string {
		if strings.TrimSpace(a) != "" {
			return a
		}
		return b
	}
	return Inputs{
		Features:        pick(in.Features, lower.Features),
		IPAPath:         pick(in.IPAPath, lower.IPAPath),
		DSYMPath:        pick(in.DSYMPath, lower.DSYMPath),
		APIKey:          pick(in.APIKey, lower.APIKey),
		User:            pick(in.User, lower.User),
		Devices:         pick(in.Devices, lower.Devices),
		Async:           pick(in.Async, lower.Async),
		Series:          pick(in.Series, lower.Series),
		OtherParameters: pick(in.OtherParameters, lower.OtherParameters),
		WorkDir:         pick(in.WorkDir, lower.WorkDir),
		GemfilePath:     pick(in.GemfilePath, lower.GemfilePath),
		InstallDeps:     in.InstallDeps || lower.InstallDeps,
	}
}

// RunConfig is the resolved description of one submission.
type RunConfig struct {
	Features        string `json:"features"`
	IPAPath         string `json:"ipa_path"`
	DSYMPath        string `json:"dsym_path"`
	APIKey          string `json:"api_key"`
	User            string `json:"user"`
	Devices         string `json:"devices"`
	Async           bool   `json:"async"`
	Series          string `json:"series"`
	OtherParameters string `json:"other_parameters"`
	WorkDir         string `json:"work_dir"`
	GemfilePath     string `json:"gemfile_path"`
	// InstallDeps selects the extended flow: features are required, gem
	// dependencies are ensured and the client runs from the current directory.
	InstallDeps bool `json:"install_deps"`
}

// RunConfig applies defaults and parses the async token. Async defaults to
// true when no value was given at all.
func (in Inputs) RunConfig() (RunConfig, error) {
	trim := strings.TrimSpace

	async := true
	if trim(in.Async) != "" {
		v, err := ParseBool(in.Async)
		if err != nil {
			return RunConfig{}, err
		}
		async = v
	}

	series := trim(in.Series)
	if series == "" {
		series = DefaultSeries
	}

	return RunConfig{
		Features:        trim(in.Features),
		IPAPath:         trim(in.IPAPath),
		DSYMPath:        trim(in.DSYMPath),
		APIKey:          trim(in.APIKey),
		User:            trim(in.User),
		Devices:         trim(in.Devices),
		Async:           async,
		Series:          series,
		OtherParameters: trim(in.OtherParameters),
		WorkDir:         trim(in.WorkDir),
		GemfilePath:     trim(in.GemfilePath),
		InstallDeps:     in.InstallDeps,
	}, nil
}

// Validate checks required inputs and referenced paths. Every failure wraps
// ErrMissingInput.
func (c RunConfig) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Features,
			validation.When(c.InstallDeps, validation.Required.Error("no features folder specified")),
			common.PathExists,
		),
		validation.Field(&c.IPAPath, validation.Required.Error("no ipa specified"), common.PathExists),
		validation.Field(&c.DSYMPath, common.PathExists),
		validation.Field(&c.APIKey, validation.Required.Error("api key not specified")),
		validation.Field(&c.User, validation.Required.Error("user not specified")),
		validation.Field(&c.Devices, validation.Required.Error("devices not specified")),
		validation.Field(&c.OtherParameters, common.ShellWords),
		validation.Field(&c.WorkDir, common.DirExists),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingInput, err)
	}
	return nil
}

// Absolute returns a copy with every path made absolute, so the paths stay
// valid once the client runs in another working directory.
func (c RunConfig) Absolute() (RunConfig, error) {
	for _, path := range []*string{&c.Features, &c.IPAPath, &c.DSYMPath, &c.WorkDir, &c.GemfilePath} {
		if *path == "" {
			continue
		}
		abs, err := system.AbsPath(*path)
		if err != nil {
			return RunConfig{}, err
		}
		*path = abs
	}
	return c, nil
}

// ResolveWorkDir returns the directory the client runs in: an explicit work
// dir, else the current directory for the extended flow, else the directory
// containing the features path.
func (c RunConfig) ResolveWorkDir(cwd string) string {
	switch {
	case c.WorkDir != "":
		return c.WorkDir
	case c.InstallDeps:
		return cwd
	case c.Features != "":
		return filepath.Dir(c.Features)
	default:
		return cwd
	}
}

// Masked returns a copy safe for printing.
func (c RunConfig) Masked() RunConfig {
	if c.APIKey != "" {
		c.APIKey = "***"
	}
	return c
}
