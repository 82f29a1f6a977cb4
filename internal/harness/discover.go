package harness

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// LevelNotFoundError is returned when a scenario names a level file that
// does not exist.
type LevelNotFoundError struct {
	Scenario     string
	LevelPath    string
	ResolvedPath string
}

func (e *LevelNotFoundError) Error() string {
	return fmt.Sprintf("scenario %q: level file not found: %s (resolved to %s)",
		e.Scenario, e.LevelPath, e.ResolvedPath)
}

// Discover returns the scenario files under dir, sorted by path. If filter
// is non-empty, only files whose base name contains it are returned.
func Discover(dir, filter string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" && !strings.Contains(filepath.Base(path), filter) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover scenarios in %s: %w", dir, err)
	}
	slices.Sort(paths)
	return paths, nil
}

// RunFile loads and runs one scenario file.
func RunFile(path string) (*Scenario, *Result, error) {
	scenario, err := LoadScenario(path)
	if err != nil {
		return nil, nil, err
	}
	result, err := Run(scenario)
	if err != nil {
		return scenario, nil, err
	}
	return scenario, result, nil
}
