package buildsys

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetect_Polyglot(t *testing.T) {
	root := t.TempDir()
	write(t, root, "Dockerfile", "FROM scratch\n")
	write(t, root, "Makefile", "all:\n")
	write(t, root, "go.mod", "module example.com/x\n\ngo 1.22\n\nrequire (\n\tgithub.com/a/b v1.0.0\n\tgithub.com/c/d v1.2.0 // indirect\n)\n")
	write(t, root, "web/package.json", `{"dependencies":{"react":"^18"},"devDependencies":{"jest":"^29","vite":"^5"}}`)
	write(t, root, "web/yarn.lock", "")
	write(t, root, ".git/Makefile", "ignored\n")

	s := Detect(context.Background(), root, nil)

	assert.Equal(t, []string{Docker, Make, GoModules, NPM}, s.DetectedSystems)
	assert.Equal(t, []string{GoModules, NPM}, s.PackageManagers)
	assert.Equal(t, []string{"Dockerfile", "Makefile", "go.mod", "package.json", "yarn.lock"}, s.BuildFiles)
	assert.Equal(t, 5, s.DependenciesCount)
}

func TestDetect_Empty(t *testing.T) {
	s := Detect(context.Background(), t.TempDir(), nil)
	assert.Empty(t, s.DetectedSystems)
	assert.NotNil(t, s.BuildFiles)
	assert.Zero(t, s.DependenciesCount)
}

func TestCountDependencies(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"requirements.txt", "# pinned\nrequests==2.31\n\nflask\n  # indented comment\n", 2},
		{"Gemfile", "source 'https://rubygems.org'\ngem 'rails'\n  gem 'pg'\n# gem 'old'\n", 2},
		{"Cargo.toml", "[package]\nname = \"x\"\n\n[dependencies]\nserde = \"1\"\ntokio = { version = \"1\" }\n\n[dev-dependencies]\ninsta = \"1\"\n", 3},
		{"pyproject.toml", "[project]\ndependencies = [\"httpx\", \"rich\"]\n\n[tool.poetry.dependencies]\npython = \"^3.11\"\nclick = \"^8\"\n", 3},
		{"pom.xml", "<project/>", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := write(t, root, tc.name, tc.content)
			n, err := CountDependencies(path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, n)
		})
	}
}

func TestCountDependencies_MalformedManifest(t *testing.T) {
	root := t.TempDir()
	path := write(t, root, "package.json", "{not json")
	_, err := CountDependencies(path)
	assert.Error(t, err)

	s := Detect(context.Background(), root, nil)
	assert.Equal(t, []string{NPM}, s.DetectedSystems, "a broken manifest is still detected")
	assert.Zero(t, s.DependenciesCount)
}
