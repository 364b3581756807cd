// Package config handles loading and resolving the uni-hook configuration:
// the tracked skills branch, the cache root, and the repository manifest.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmoxon/uni-hook/internal/model"
	"go.yaml.in/yaml/v3"
)

const (
	// DefaultBranch is used when no skillsBranch is configured.
	DefaultBranch = "main"
	// DefaultRepoURL is the canonical core skills repository.
	DefaultRepoURL = "https://github.com/tmoxon/uni-core-skills"
	// ManifestFilename is the optional repository manifest in the cache root.
	ManifestFilename = "repos.yaml"
	// ManifestAPIVersion is the current manifest schema apiVersion.
	ManifestAPIVersion = "uni.dev/v1"
	// ManifestKind is the current manifest schema kind.
	ManifestKind = "SkillRepos"

	workspaceConfigPath = "/workspace/.uni/config.json"
)

// ErrNoCoreRepo is returned when the manifest declares no repository named
// "core". This is the only fatal configuration error.
var ErrNoCoreRepo = errors.New(`configuration requires at least one repository named "core"`)

// branchConfig is the externally fixed JSON config document shape.
type branchConfig struct {
	SkillsBranch string `json:"skillsBranch"`
}

// ResolveConfigPath picks the branch config file: explicit override first,
// then the workspace path, then .uni/config.json under cwd. The workspace
// default is returned even when no file exists.
func ResolveConfigPath(override, cwd string) string {
	if override != "" {
		return override
	}
	if _, err := os.Stat(workspaceConfigPath); err == nil {
		return workspaceConfigPath
	}
	if strings.TrimSpace(cwd) == "" {
		cwd, _ = os.Getwd()
	}
	candidate := filepath.Join(cwd, ".uni", "config.json")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return workspaceConfigPath
}

// LoadBranch reads the skills branch from the JSON config at path. A missing
// or unreadable file falls back to DefaultBranch; the error reports why, for
// a stderr diagnostic, and is never fatal.
func LoadBranch(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultBranch, nil
		}
		return DefaultBranch, fmt.Errorf("could not read config file: %w", err)
	}
	var cfg branchConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultBranch, fmt.Errorf("could not parse config file: %w", err)
	}
	if strings.TrimSpace(cfg.SkillsBranch) == "" {
		return DefaultBranch, nil
	}
	return cfg.SkillsBranch, nil
}

// CacheRoot returns the uni cache root. Order: UNI_ROOT env var, then
// $HOME/.config/uni (with Git-Bash drive paths normalized), then the
// platform home directory.
func CacheRoot() (string, error) {
	if env := strings.TrimSpace(os.Getenv("UNI_ROOT")); env != "" {
		return filepath.Clean(env), nil
	}
	if home := normalizeHome(os.Getenv("HOME")); home != "" {
		return filepath.Join(home, ".config", "uni"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "uni"), nil
}

// normalizeHome converts Git-Bash/MSYS style HOME values such as /c/Users/x
// to C:/Users/x so the cache root lands on the same directory the rest of
// the toolchain sees. Unix paths pass through unchanged.
func normalizeHome(home string) string {
	if len(home) > 2 && home[0] == '/' && home[2] == '/' && isDriveLetter(home[1]) {
		return strings.ToUpper(home[1:2]) + ":/" + home[3:]
	}
	return home
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Manifest is the repos.yaml document declaring skill repositories.
type Manifest struct {
	APIVersion string           `yaml:"apiVersion"`
	Kind       string           `yaml:"kind"`
	Repos      []model.RepoSpec `yaml:"repos"`
}

// DefaultRepos returns the built-in repository set used when no manifest
// exists: the single canonical core repository.
func DefaultRepos() []model.RepoSpec {
	return []model.RepoSpec{{Name: "core", URL: DefaultRepoURL}}
}

// LoadManifest reads a repos.yaml manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	applyManifestGVK(&m)
	if err := validateManifestGVK(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ResolveRepos produces the final repository set for a run: manifest entries
// when <root>/repos.yaml exists, the built-in default otherwise. Entries
// without a branch inherit branch. A set without a "core" entry is rejected.
func ResolveRepos(root, branch string) ([]model.RepoSpec, error) {
	repos := DefaultRepos()

	manifestPath := filepath.Join(root, ManifestFilename)
	if _, err := os.Stat(manifestPath); err == nil {
		m, err := LoadManifest(manifestPath)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", manifestPath, err)
		}
		if len(m.Repos) > 0 {
			repos = m.Repos
		}
	}

	hasCore := false
	for i := range repos {
		if strings.TrimSpace(repos[i].Branch) == "" {
			repos[i].Branch = branch
		}
		if repos[i].Name == "core" {
			hasCore = true
		}
	}
	if !hasCore {
		return nil, ErrNoCoreRepo
	}
	return repos, nil
}

func applyManifestGVK(m *Manifest) {
	if strings.TrimSpace(m.APIVersion) == "" {
		m.APIVersion = ManifestAPIVersion
	}
	if strings.TrimSpace(m.Kind) == "" {
		m.Kind = ManifestKind
	}
}

func validateManifestGVK(m *Manifest) error {
	if m.APIVersion != ManifestAPIVersion {
		return fmt.Errorf("unsupported manifest apiVersion %q (expected %q)", m.APIVersion, ManifestAPIVersion)
	}
	if m.Kind != ManifestKind {
		return fmt.Errorf("unsupported manifest kind %q (expected %q)", m.Kind, ManifestKind)
	}
	return nil
}
