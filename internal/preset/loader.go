package preset

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Load resolves nameOrPath to a compiled preset. A path to an existing YAML
// file takes precedence; otherwise the name is looked up among the built-in
// presets.
func Load(nameOrPath string) (*CompiledPreset, error) {
	if _, err := os.Stat(nameOrPath); err == nil {
		return LoadFile(nameOrPath)
	}

	if p, ok := builtins[nameOrPath]; ok {
		return p.Compile()
	}

	return nil, fmt.Errorf("unknown preset %q (not a file, not one of: %v)", nameOrPath, BuiltinNames())
}

// LoadFile reads and validates a YAML preset file.
func LoadFile(path string) (*CompiledPreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read preset file: %w", err)
	}

	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("could not parse preset file %s: %w", path, err)
	}

	cp, err := p.Compile()
	if err != nil {
		return nil, fmt.Errorf("preset file %s: %w", path, err)
	}
	return cp, nil
}

// BuiltinNames lists the bundled preset names, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
