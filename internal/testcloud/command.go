package testcloud

import (
	"fmt"

	"github.com/kballard/go-shellquote"
)

// DefaultClient is the test-cloud client executable.
const DefaultClient = "test-cloud"

// BuildOptions controls how the client is invoked.
type BuildOptions struct {
	// Client overrides DefaultClient.
	Client string
	// Prefix is prepended to the argv, e.g. "bundle exec".
	Prefix []string
}

// BuildCommand assembles the submission argv in fixed order:
//
//	<client> submit <ipa> <api-key> --user <user> --devices <devices>
//	  [--async] [--series <series>] [--dsym-file <dsym>] [other parameters...]
func BuildCommand(c RunConfig, opts BuildOptions) ([]string, error) {
	client := opts.Client
	if client == "" {
		client = DefaultClient
	}

	argv := append([]string{}, opts.Prefix...)
	argv = append(argv, client, "submit", c.IPAPath, c.APIKey)
	argv = append(argv, "--user", c.User)
	argv = append(argv, "--devices", c.Devices)
	if c.Async {
		argv = append(argv, "--async")
	}
	if c.Series != "" {
		argv = append(argv, "--series", c.Series)
	}
	if c.DSYMPath != "" {
		argv = append(argv, "--dsym-file", c.DSYMPath)
	}
	if c.OtherParameters != "" {
		extra, err := shellquote.Split(c.OtherParameters)
		if err != nil {
			return nil, fmt.Errorf("failed to split other parameters %q: %w", c.OtherParameters, err)
		}
		argv = append(argv, extra...)
	}

	return argv, nil
}

// MaskArgv returns a copy of argv with every occurrence of secret replaced.
func MaskArgv(argv []string, secret string) []string {
	masked := make([]string, len(argv))
	for i, arg := range argv {
		if secret != "" && arg == secret {
			arg = "***"
		}
		masked[i] = arg
	}
	return masked
}
