package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zoro11031/testcloud-step/internal/cli"
	"github.com/zoro11031/testcloud-step/internal/testcloud"
	"github.com/zoro11031/testcloud-step/pkg/version"
)

var (
	stepInputs  testcloud.Inputs
	configPath  string
	resultFile  string
	interactive bool
	dryRun      bool
)

var rootCmd = &cobra.Command{
	Use:   "testcloud-step [flags]",
	Short: "Submit a Calabash iOS test run to Xamarin Test Cloud",
	Long: `Submits an IPA and its Calabash features to Xamarin Test Cloud through the
test-cloud client and reports the result to the CI environment.

Inputs are taken from flags first, then from the step environment variables
(ipa_path, test_cloud_api_key, xamarin_user, test_cloud_devices, ...), then
from the defaults file managed with "testcloud-step config".

With --install-deps the cucumber and xamarin-test-cloud gems are installed
first: through bundler when the Gemfile declares both, otherwise with gem install.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSubmit,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Info())
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&stepInputs.Features, "features", "a", "", "Calabash features directory")
	flags.StringVarP(&stepInputs.User, "user", "b", "", "Test Cloud user (email)")
	flags.StringVarP(&stepInputs.APIKey, "api-key", "c", "", "Test Cloud API key")
	flags.StringVarP(&stepInputs.Devices, "devices", "d", "", "Device selection ID")
	flags.StringVarP(&stepInputs.Async, "async", "e", "", "Do not wait for the test results (true/false/yes/no/1/0, default true)")
	flags.StringVarP(&stepInputs.Series, "series", "f", "", `Test series (default "master")`)
	flags.StringVarP(&stepInputs.OtherParameters, "other-parameters", "g", "", "Extra arguments passed to test-cloud submit")
	flags.StringVarP(&stepInputs.IPAPath, "ipa", "i", "", "Path of the IPA to submit")
	flags.StringVarP(&stepInputs.DSYMPath, "dsym", "j", "", "Path of the dSYM bundle")
	flags.StringVar(&stepInputs.WorkDir, "work-dir", "", "Directory to run test-cloud in")
	flags.StringVar(&stepInputs.GemfilePath, "gemfile", "", "Gemfile to inspect with --install-deps (default <work dir>/Gemfile)")
	flags.BoolVar(&stepInputs.InstallDeps, "install-deps", false, "Install cucumber and xamarin-test-cloud gems before submitting")
	flags.BoolVar(&interactive, "interactive", false, "Prompt for missing user, devices and API key")
	flags.BoolVar(&dryRun, "dry-run", false, "Print the submission command without running it")
	flags.StringVar(&resultFile, "result-file", "", "Append the result as KEY=value to this file instead of using envman")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Defaults file (default ~/.testcloud-step.conf)")

	rootCmd.AddCommand(versionCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx, err := cli.NewStepContext(cli.Options{
		ConfigPath:  configPath,
		Interactive: interactive,
		ResultFile:  resultFile,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize step context: %w", err)
	}

	return ctx.Run(stepInputs, cli.RunOptions{DryRun: dryRun})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
