package preset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDirectory returns <UserConfigDir>/EQPlugin/Presets, or a directory
// below the system temp dir when no config dir is available.
func DefaultDirectory() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, CreatedBy, "Presets")
	}

	return filepath.Join(os.TempDir(), CreatedBy+"_Presets")
}

// List returns the paths of the preset files in dir, sorted by name. A
// missing directory yields an empty list.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("preset: list %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.EqualFold(filepath.Ext(e.Name()), Extension) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}

	return out, nil
}
