package system

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileExists checks if a file or directory exists at path
func FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check if path exists %s: %w", path, err)
}

// DirectoryExists checks if a directory exists
func DirectoryExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check if directory exists %s: %w", path, err)
}

// AbsPath expands a leading "~" and returns the absolute form of path.
func AbsPath(path string) (string, error) {
	if path == "~" || (len(path) > 1 && path[:2] == "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %s: %w", path, err)
	}
	return abs, nil
}
