package store

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pantry-cli/internal/model"

	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

type GlobalConfig struct {
	CurrentWorkspace string `yaml:"currentWorkspace,omitempty" json:"currentWorkspace,omitempty"`

	// Policy overrides the default variant behavior. Nil means model.DefaultPolicy().
	Policy *model.Policy `yaml:"policy,omitempty" json:"policy,omitempty"`

	Log *LogConfig `yaml:"log,omitempty" json:"log,omitempty"`

	// TUI holds optional user preferences for the interactive TUI.
	TUI *TUIConfig `yaml:"tui,omitempty" json:"tui,omitempty"`
}

type LogConfig struct {
	// Level is a zap level name (debug|info|warn|error).
	Level string `yaml:"level,omitempty" json:"level,omitempty"`
}

type TUIConfig struct {
	// Glyphs selects the glyph set ("unicode" or "ascii").
	Glyphs string `yaml:"glyphs,omitempty" json:"glyphs,omitempty"`
}

// EffectivePolicy returns the configured policy or the default one.
func (c *GlobalConfig) EffectivePolicy() model.Policy {
	if c == nil || c.Policy == nil {
		return model.DefaultPolicy()
	}
	return *c.Policy
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.pantry).
	if v := strings.TrimSpace(os.Getenv("PANTRY_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pantry"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "config.yaml.*.tmp", path, b, 0o600)
}

func NormalizeWorkspaceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("workspace name is empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", errors.New("workspace name must be a plain directory name")
	}
	return name, nil
}

// ListWorkspaces returns the names of workspaces under <configdir>/workspaces.
func ListWorkspaces() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	out := []string{}
	ents, err := os.ReadDir(filepath.Join(dir, "workspaces"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, nil
		}
		return nil, err
	}
	for _, e := range ents {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
