// Package manifest loads a project's root manifest: the project root
// path and the named dependency-to-path mappings `use a::b::c` resolves
// against, stored as YAML on disk.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dep is one entry of the `deps` map.
type Dep struct {
	Path string `yaml:"path"`
}

// Manifest is the project root manifest.
type Manifest struct {
	Root string         `yaml:"root"`
	Deps map[string]Dep `yaml:"deps"`

	// dir is the directory the manifest file itself lives in, used to
	// resolve Root when it is given as a relative path.
	dir string
}

// Load reads and validates a manifest from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	m.dir = filepath.Dir(path)

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest validation failed: %w", err)
	}
	return &m, nil
}

// Save writes the manifest back to path.
func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the manifest for consistency.
func (m *Manifest) Validate() error {
	if m.Root == "" {
		return fmt.Errorf("manifest missing root")
	}
	for name, dep := range m.Deps {
		if dep.Path == "" {
			return fmt.Errorf("dependency %q missing path", name)
		}
	}
	return nil
}

// RootPath returns the absolute project root, resolving a relative Root
// against the manifest file's own directory.
func (m *Manifest) RootPath() string {
	if filepath.IsAbs(m.Root) {
		return m.Root
	}
	return filepath.Join(m.dir, m.Root)
}

// ResolveUse turns `use a::b::c` into a filesystem path
// `<root>/<deps[a].path or "a">/b/c.pi`.
// The first segment names either a declared dependency or, absent one, a
// directory directly under the project root.
func (m *Manifest) ResolveUse(segments []string) (string, bool) {
	if len(segments) == 0 {
		return "", false
	}
	head := segments[0]
	rest := segments[1:]

	base := head
	if dep, ok := m.Deps[head]; ok {
		base = dep.Path
	}

	parts := append([]string{m.RootPath(), base}, rest...)
	full := filepath.Join(parts...)
	return full + ".pi", true
}

// NamespaceCompletions lists the candidate next segments for a `use` path
// typed so far as segments: declared dependency names plus sibling `.pi`
// files/directories of whichever directory the path-so-far resolves to.
// The trailing element of segments is treated as the in-progress segment
// being completed, so the directory scanned is the one segments[:len-1]
// resolves to.
func (m *Manifest) NamespaceCompletions(segments []string) []string {
	var dir string
	switch {
	case len(segments) <= 1:
		dir = m.RootPath()
	default:
		head := segments[0]
		base := head
		if dep, ok := m.Deps[head]; ok {
			base = dep.Path
		}
		parts := append([]string{m.RootPath(), base}, segments[1:len(segments)-1]...)
		dir = filepath.Join(parts...)
	}

	seen := map[string]bool{}
	var names []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	if len(segments) <= 1 {
		for dep := range m.Deps {
			add(dep)
		}
	}

	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() {
				add(name)
			} else if strings.HasSuffix(name, ".pi") {
				add(strings.TrimSuffix(name, ".pi"))
			}
		}
	}

	sort.Strings(names)
	return names
}
