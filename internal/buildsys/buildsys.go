// Package buildsys detects build systems and package managers from their
// manifest files and counts declared dependencies.
package buildsys

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"
)

// Build system identifiers.
const (
	NPM       = "npm"
	Pip       = "pip"
	Maven     = "maven"
	Gradle    = "gradle"
	Composer  = "composer"
	Bundler   = "bundler"
	Cargo     = "cargo"
	GoModules = "go_modules"
	CMake     = "cmake"
	Make      = "make"
	Docker    = "docker"
)

type indicator struct {
	system string
	files  []string
}

// indicators is checked in order for every file name.
var indicators = []indicator{
	{NPM, []string{"package.json", "package-lock.json", "yarn.lock"}},
	{Pip, []string{"requirements.txt", "setup.py", "pyproject.toml", "Pipfile"}},
	{Maven, []string{"pom.xml"}},
	{Gradle, []string{"build.gradle", "build.gradle.kts"}},
	{Composer, []string{"composer.json"}},
	{Bundler, []string{"Gemfile"}},
	{Cargo, []string{"Cargo.toml"}},
	{GoModules, []string{"go.mod"}},
	{CMake, []string{"CMakeLists.txt"}},
	{Make, []string{"Makefile", "makefile"}},
	{Docker, []string{"Dockerfile", "docker-compose.yml"}},
}

var packageManagers = map[string]bool{
	NPM: true, Pip: true, Maven: true, Gradle: true,
	Composer: true, Bundler: true, Cargo: true, GoModules: true,
}

// Summary is the build-systems section of a report.
type Summary struct {
	DetectedSystems   []string `json:"detected_systems" yaml:"detected_systems"`
	PackageManagers   []string `json:"package_managers" yaml:"package_managers"`
	BuildFiles        []string `json:"build_files" yaml:"build_files"`
	DependenciesCount int      `json:"dependencies_count" yaml:"dependencies_count"`
}

// Detect walks root, skipping .git, and records every manifest it finds.
// Manifests that cannot be read or parsed contribute no dependencies.
func Detect(ctx context.Context, root string, logger *slog.Logger) Summary {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := Summary{
		DetectedSystems: []string{},
		PackageManagers: []string{},
		BuildFiles:      []string{},
	}
	seen := map[string]bool{}

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		for _, ind := range indicators {
			if !contains(ind.files, name) {
				continue
			}
			if !seen[ind.system] {
				seen[ind.system] = true
				s.DetectedSystems = append(s.DetectedSystems, ind.system)
				if packageManagers[ind.system] {
					s.PackageManagers = append(s.PackageManagers, ind.system)
				}
			}
			s.BuildFiles = append(s.BuildFiles, name)

			n, err := CountDependencies(path)
			if err != nil {
				logger.Debug("counting dependencies", "path", path, "error", err)
				continue
			}
			s.DependenciesCount += n
		}
		return nil
	})

	return s
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var gemLine = regexp.MustCompile(`(?m)^\s*gem\s+`)

// CountDependencies counts the dependencies declared in a manifest. Files it
// does not know how to read count as zero.
func CountDependencies(path string) (int, error) {
	name := filepath.Base(path)
	switch name {
	case "package.json", "requirements.txt", "Gemfile", "go.mod", "Cargo.toml", "pyproject.toml":
	default:
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", name, err)
	}

	switch name {
	case "package.json":
		return countPackageJSON(data)
	case "requirements.txt":
		return countRequirements(data), nil
	case "Gemfile":
		return len(gemLine.FindAllIndex(data, -1)), nil
	case "go.mod":
		return countGoMod(path, data)
	case "Cargo.toml":
		return countCargo(data)
	default:
		return countPyproject(data)
	}
}

func countPackageJSON(data []byte) (int, error) {
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return 0, fmt.Errorf("parsing package.json: %w", err)
	}
	return len(pkg.Dependencies) + len(pkg.DevDependencies), nil
}

func countRequirements(data []byte) int {
	n := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			n++
		}
	}
	return n
}

func countGoMod(path string, data []byte) (int, error) {
	f, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return 0, fmt.Errorf("parsing go.mod: %w", err)
	}
	return len(f.Require), nil
}

func countCargo(data []byte) (int, error) {
	var manifest struct {
		Dependencies    map[string]any `toml:"dependencies"`
		DevDependencies map[string]any `toml:"dev-dependencies"`
	}
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return 0, fmt.Errorf("parsing Cargo.toml: %w", err)
	}
	return len(manifest.Dependencies) + len(manifest.DevDependencies), nil
}

func countPyproject(data []byte) (int, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("parsing pyproject.toml: %w", err)
	}

	n := 0
	if project, ok := raw["project"].(map[string]any); ok {
		if deps, ok := project["dependencies"].([]any); ok {
			n += len(deps)
		}
	}
	if tool, ok := raw["tool"].(map[string]any); ok {
		if poetry, ok := tool["poetry"].(map[string]any); ok {
			if deps, ok := poetry["dependencies"].(map[string]any); ok {
				for name := range deps {
					// Poetry lists the interpreter constraint alongside packages.
					if !strings.EqualFold(name, "python") {
						n++
					}
				}
			}
		}
	}
	return n, nil
}
