// Package manifest reads Ruby dependency manifests (Gemfile and Gemfile.lock)
// and reports which gems they declare.
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// LockFileName is the bundler lock file expected next to a Gemfile.
const LockFileName = "Gemfile.lock"

// Manifest is the set of gems declared by one manifest file.
type Manifest struct {
	Path string
	// gems maps lower-cased gem name to its version, "" when unpinned.
	gems map[string]string
}

func newManifest(path string) *Manifest {
	return &Manifest{Path: path, gems: make(map[string]string)}
}

// Has reports whether the gem is declared. Names compare case-insensitively.
func (m *Manifest) Has(name string) bool {
	if m == nil {
		return false
	}
	_, ok := m.gems[strings.ToLower(name)]
	return ok
}

// Version returns the locked or requested version of a gem, or "".
func (m *Manifest) Version(name string) string {
	if m == nil {
		return ""
	}
	return m.gems[strings.ToLower(name)]
}

// Names returns the declared gem names in sorted order.
func (m *Manifest) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.gems))
	for name := range m.gems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manifest) add(name, version string) {
	name = strings.ToLower(name)
	if existing, ok := m.gems[name]; ok && existing != "" && version == "" {
		return
	}
	m.gems[name] = version
}

var gemfileLine = regexp.MustCompile(`^gem\s*\(?\s*['"]([^'"]+)['"](?:\s*,\s*['"]([^'"]+)['"])?`)

// ParseGemfile reads `gem "name"[, "requirement"]` declarations.
// Comments and other DSL statements are ignored.
func ParseGemfile(r io.Reader) (*Manifest, error) {
	m := newManifest("")
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		match := gemfileLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		m.add(match[1], match[2])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read Gemfile: %w", err)
	}
	return m, nil
}

var (
	lockSpec       = regexp.MustCompile(`^    ([^\s(]+)(?: \(([^)]+)\))?$`)
	lockDependency = regexp.MustCompile(`^  ([^\s(!]+)!?(?: \(([^)]+)\))?$`)
)

// ParseGemfileLock reads the resolved specs of every source section (GEM,
// GIT, PATH) and the DEPENDENCIES section. Transitive dependencies listed
// under a spec are not counted as declared.
func ParseGemfileLock(r io.Reader) (*Manifest, error) {
	m := newManifest("")

	var section string
	inSpecs := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			section = ""
			inSpecs = false
			continue
		}

		if !strings.HasPrefix(line, " ") {
			section = line
			inSpecs = false
			continue
		}

		switch section {
		case "GEM", "GIT", "PATH":
			if strings.TrimSpace(line) == "specs:" {
				inSpecs = true
				continue
			}
			if !inSpecs {
				continue
			}
			if match := lockSpec.FindStringSubmatch(line); match != nil {
				m.add(match[1], match[2])
			}
		case "DEPENDENCIES":
			if match := lockDependency.FindStringSubmatch(line); match != nil {
				m.add(match[1], "")
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read Gemfile.lock: %w", err)
	}
	return m, nil
}

// Load parses the manifest at path, choosing the lock file format when the
// file is named Gemfile.lock.
func Load(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	var m *Manifest
	if filepath.Base(path) == LockFileName {
		m, err = ParseGemfileLock(file)
	} else {
		m, err = ParseGemfile(file)
	}
	if err != nil {
		return nil, err
	}
	m.Path = path
	return m, nil
}

// Locate returns the manifest to read for a Gemfile: the sibling Gemfile.lock
// when it exists, otherwise the Gemfile itself. It returns "" when neither
// exists.
func Locate(gemfilePath string) (string, error) {
	lockPath := filepath.Join(filepath.Dir(gemfilePath), LockFileName)
	for _, candidate := range []string{lockPath, gemfilePath} {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to check manifest %s: %w", candidate, err)
		}
	}
	return "", nil
}
