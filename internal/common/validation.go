// Package common holds input validation shared by the step and its config
// subcommands.
package common

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/kballard/go-shellquote"
	"github.com/zoro11031/testcloud-step/internal/system"
)

// PathExists fails when a non-empty value does not name an existing path.
// Empty values pass; pair it with validation.Required when the field is mandatory.
var PathExists = validation.By(func(value interface{}) error {
	path, err := validation.EnsureString(value)
	if err != nil || path == "" {
		return err
	}
	exists, err := system.FileExists(path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("no such file or directory: %s", path)
	}
	return nil
})

// DirExists fails when a non-empty value is not an existing directory.
var DirExists = validation.By(func(value interface{}) error {
	path, err := validation.EnsureString(value)
	if err != nil || path == "" {
		return err
	}
	exists, err := system.DirectoryExists(path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("directory does not exist: %s", path)
	}
	return nil
})

// ShellWords fails when a value cannot be split into words with POSIX shell rules.
var ShellWords = validation.By(func(value interface{}) error {
	s, err := validation.EnsureString(value)
	if err != nil || s == "" {
		return err
	}
	if _, err := shellquote.Split(s); err != nil {
		return fmt.Errorf("cannot split into arguments: %w", err)
	}
	return nil
})

// ValidateConfigKey checks that a key is usable in the key=value config file:
// upper-case letters, digits and underscores, starting with a letter.
func ValidateConfigKey(key string) error {
	if key == "" {
		return errors.New("config key cannot be empty")
	}
	if key[0] < 'A' || key[0] > 'Z' {
		return fmt.Errorf("config key must start with an upper-case letter: %s", key)
	}
	for _, c := range key {
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_') {
			return fmt.Errorf("config key contains invalid character %q: %s", c, key)
		}
	}
	return nil
}

// ValidateConfigValue rejects values that would break the line-based config format.
func ValidateConfigValue(value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return errors.New("config value cannot contain line breaks")
	}
	return nil
}
