package testcloud

import (
	"fmt"
	"strings"
)

// ParseBool accepts true/t/yes/y/1 and false/f/no/n/0 in any case.
// An empty value counts as false.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidBooleanInput, value)
	}
}
