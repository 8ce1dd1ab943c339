package config

// Configuration key constants to prevent typos and enable autocomplete
const (
	// Submission inputs
	KeyUser            = "TEST_CLOUD_USER"
	KeyDevices         = "TEST_CLOUD_DEVICES"
	KeyAsync           = "TEST_CLOUD_IS_ASYNC"
	KeySeries          = "TEST_CLOUD_SERIES"
	KeyOtherParameters = "TEST_CLOUD_OTHER_PARAMETERS"

	// Project layout
	KeyFeatures    = "FEATURES_PATH"
	KeyWorkDir     = "WORK_DIR"
	KeyGemfilePath = "GEMFILE_PATH"

	// Tooling
	KeyClientBinary = "TEST_CLOUD_BINARY" // Name or path of the test-cloud client
	KeyResultKey    = "RESULT_ENV_KEY"    // Environment key receiving succeeded/failed
	KeyResultFile   = "RESULT_FILE"       // Optional file receiving KEY=value lines
)

// Defaults for configuration keys
var Defaults = map[string]string{
	KeySeries:       "master",
	KeyAsync:        "true",
	KeyClientBinary: "test-cloud",
	KeyResultKey:    "BITRISE_XAMARIN_TEST_RESULT",
}

// KnownKeys lists every key the config file accepts, in display order.
// The API key is deliberately absent: it is never written to disk.
var KnownKeys = []string{
	KeyUser,
	KeyDevices,
	KeyAsync,
	KeySeries,
	KeyOtherParameters,
	KeyFeatures,
	KeyWorkDir,
	KeyGemfilePath,
	KeyClientBinary,
	KeyResultKey,
	KeyResultFile,
}

// IsKnownKey reports whether key is accepted by the config file.
func IsKnownKey(key string) bool {
	for _, k := range KnownKeys {
		if k == key {
			return true
		}
	}
	return false
}
