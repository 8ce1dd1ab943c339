// Package config manages the persistent defaults file of the test-cloud step.
// Values are stored as key=value lines and are consulted after command-line
// flags and step environment variables. All operations are safe for
// concurrent use.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zoro11031/testcloud-step/internal/common"
)

// DefaultFileName is the name of the defaults file inside the home directory.
const DefaultFileName = ".testcloud-step.conf"

// Config holds step defaults loaded from a key=value file
type Config struct {
	filePath string
	data     map[string]string
	loaded   bool
	mu       sync.RWMutex
}

// ensureLoaded loads configuration data from disk once.
// Callers must hold c.mu.
func (c *Config) ensureLoaded() error {
	if c.loaded {
		return nil
	}
	return c.load()
}

// New creates a Config backed by filePath, or by ~/.testcloud-step.conf when
// filePath is empty.
func New(filePath string) *Config {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		filePath = filepath.Join(home, DefaultFileName)
	}

	return &Config{
		filePath: filePath,
		data:     make(map[string]string),
	}
}

// Load reads configuration from file. A missing file is not an error.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

func (c *Config) load() error {
	file, err := os.Open(c.filePath)
	if os.IsNotExist(err) {
		c.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	data := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	c.data = data
	c.loaded = true
	return nil
}

// save writes the file through a temp file and rename so a failed write never
// truncates existing defaults. Callers must hold c.mu.
func (c *Config) save() error {
	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, DefaultFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := tmpFile.Chmod(0600); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}

	w := bufio.NewWriter(tmpFile)
	fmt.Fprintln(w, "# test-cloud step defaults")
	fmt.Fprintf(w, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintln(w)

	keys := make([]string, 0, len(c.data))
	for key := range c.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(w, "%s=%s\n", key, c.data[key])
	}

	if err := w.Flush(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, c.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file to config: %w", err)
	}
	return nil
}

// Get retrieves a configuration value
func (c *Config) Get(key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(); err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	value, exists := c.data[key]
	if !exists {
		return "", fmt.Errorf("config key not found: %s", key)
	}
	return value, nil
}

// GetOrDefault returns the stored value, then the Defaults table entry, then
// defaultValue.
func (c *Config) GetOrDefault(key, defaultValue string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(); err != nil {
		return defaultValue
	}
	if value, exists := c.data[key]; exists {
		return value
	}
	if tableDefault, exists := Defaults[key]; exists {
		return tableDefault
	}
	return defaultValue
}

// Set stores a value and persists the file.
func (c *Config) Set(key, value string) error {
	if !IsKnownKey(key) {
		if err := common.ValidateConfigKey(key); err != nil {
			return err
		}
		return fmt.Errorf("unknown config key: %s", key)
	}
	if err := common.ValidateConfigValue(value); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(); err != nil {
		return fmt.Errorf("failed to load existing config before set: %w", err)
	}

	c.data[key] = value
	return c.save()
}

// Exists checks if a key is stored in the file
func (c *Config) Exists(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(); err != nil {
		return false
	}
	_, exists := c.data[key]
	return exists
}

// GetAll returns a copy of all stored values
func (c *Config) GetAll() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(); err != nil {
		return map[string]string{}
	}
	result := make(map[string]string, len(c.data))
	for k, v := range c.data {
		result[k] = v
	}
	return result
}

// Delete removes a key and persists the file.
func (c *Config) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(); err != nil {
		return fmt.Errorf("failed to load existing config before delete: %w", err)
	}

	delete(c.data, key)
	return c.save()
}

// Reset deletes the config file. It returns false when there was nothing to delete.
func (c *Config) Reset() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]string)
	c.loaded = true

	if err := os.Remove(c.filePath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to remove config file: %w", err)
	}
	return true, nil
}

// FilePath returns the configuration file path
func (c *Config) FilePath() string {
	return c.filePath
}
