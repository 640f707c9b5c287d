package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNoConfig = errors.New("no config selected")

const (
	appDir       = "mangacap"
	defaultLabel = "Default"
	ext          = ".yaml"
)

// Store manages labelled YAML profiles under Root/configs and the label of
// the active one in Root/current_config.
type Store struct {
	Root string
}

// DefaultStore is rooted in the platform's user config directory.
func DefaultStore() *Store {
	return &Store{Root: ConfigRoot()}
}

func ConfigRoot() string {
	// Windows
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, appDir)
	}

	// Linux/macOS XDG
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir)
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appDir)
}

func (s *Store) ConfigsDir() string {
	return filepath.Join(s.Root, "configs")
}

func (s *Store) currentLabelFile() string {
	return filepath.Join(s.Root, "current_config")
}

func (s *Store) ensureDirs() error {
	return os.MkdirAll(s.ConfigsDir(), 0755)
}

func validLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return errors.New("label cannot be empty")
	}
	if strings.ContainsAny(label, `/\`) || label == "." || label == ".." {
		return fmt.Errorf("invalid label %q", label)
	}

	return nil
}

// PathByLabel returns the profile path for label without checking that it
// exists.
func (s *Store) PathByLabel(label string) (string, error) {
	if err := validLabel(label); err != nil {
		return "", err
	}

	return filepath.Join(s.ConfigsDir(), label+ext), nil
}

func (s *Store) exists(label string) (string, bool) {
	path, err := s.PathByLabel(label)
	if err != nil {
		return "", false
	}
	_, err = os.Stat(path)
	return path, err == nil
}

func (s *Store) CurrentLabel() (string, error) {
	b, err := os.ReadFile(s.currentLabelFile())
	if os.IsNotExist(err) {
		return "", ErrNoConfig
	}
	if err != nil {
		return "", err
	}

	label := strings.TrimSpace(string(b))
	if label == "" {
		return "", ErrNoConfig
	}

	return label, nil
}

func (s *Store) ActiveConfigPath() (string, error) {
	label, err := s.CurrentLabel()
	if err != nil {
		return "", err
	}

	return s.PathByLabel(label)
}

type ConfigInfo struct {
	Label  string
	Path   string
	Active bool
}

func (s *Store) ListConfigs() ([]ConfigInfo, error) {
	if err := s.ensureDirs(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.ConfigsDir())
	if err != nil {
		return nil, err
	}

	activeLabel, _ := s.CurrentLabel()
	var out []ConfigInfo

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}

		label := strings.TrimSuffix(name, ext)
		out = append(out, ConfigInfo{
			Label:  label,
			Path:   filepath.Join(s.ConfigsDir(), name),
			Active: label == activeLabel,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (s *Store) SwitchConfig(label string) error {
	if err := s.ensureDirs(); err != nil {
		return err
	}

	path, ok := s.exists(label)
	if !ok {
		if err := validLabel(label); err != nil {
			return err
		}
		return fmt.Errorf("config %q does not exist", path)
	}

	return os.WriteFile(s.currentLabelFile(), []byte(label), 0644)
}

// CreateConfig writes cfg (or the defaults) as a new profile.
func (s *Store) CreateConfig(label string, cfg *Config) (string, error) {
	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	path, err := s.PathByLabel(label)
	if err != nil {
		return "", err
	}
	if _, ok := s.exists(label); ok {
		return "", fmt.Errorf("config %q already exists", label)
	}

	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := SaveYAML(cfg, path); err != nil {
		return "", err
	}

	return path, nil
}

func (s *Store) RenameConfig(oldLabel, newLabel string) error {
	if err := validLabel(newLabel); err != nil {
		return err
	}

	oldPath, ok := s.exists(oldLabel)
	if !ok {
		return fmt.Errorf("config %q does not exist", oldLabel)
	}
	newPath, taken := s.exists(newLabel)
	if taken {
		return fmt.Errorf("config %q already exists", newLabel)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}

	if active, _ := s.CurrentLabel(); active == oldLabel {
		return os.WriteFile(s.currentLabelFile(), []byte(newLabel), 0644)
	}

	return nil
}

// RemoveConfig deletes a profile. Removing the active one switches to
// Default; Default itself cannot be removed.
func (s *Store) RemoveConfig(label string) error {
	if err := validLabel(label); err != nil {
		return err
	}
	if label == defaultLabel {
		return errors.New("cannot remove the Default config")
	}

	path, ok := s.exists(label)
	if !ok {
		return fmt.Errorf("config %q does not exist", label)
	}

	if active, _ := s.CurrentLabel(); active == label {
		if err := s.SwitchConfig(defaultLabel); err != nil {
			return fmt.Errorf("failed switching to Default: %w", err)
		}
	}

	return os.Remove(path)
}

// InitDefaultConfig writes the Default profile and makes it active. It
// returns os.ErrExist, with the path, when Default is already there; with
// overwrite set the file is replaced instead.
func (s *Store) InitDefaultConfig(overwrite bool) (string, error) {
	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	path, _ := s.PathByLabel(defaultLabel)
	if _, err := os.Stat(path); err == nil && !overwrite {
		_ = os.WriteFile(s.currentLabelFile(), []byte(defaultLabel), 0644)
		return path, os.ErrExist
	}

	if err := SaveYAML(DefaultConfig(), path); err != nil {
		return "", err
	}

	return path, os.WriteFile(s.currentLabelFile(), []byte(defaultLabel), 0644)
}
