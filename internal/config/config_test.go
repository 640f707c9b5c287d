package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return &Store{Root: filepath.Join(t.TempDir(), "mangacap")}
}

func TestLoadMergedWithoutProfile(t *testing.T) {
	s := newStore(t)

	cfg, src, err := s.LoadMerged(Options{})
	require.NoError(t, err)
	assert.Contains(t, src, "default config in memory")

	assert.Equal(t, DefaultURLsFile, cfg.URLsFile)
	assert.Equal(t, DefaultDoneFile, cfg.DoneFile)
	assert.Equal(t, DefaultCookies, cfg.CookiesFile)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, 1440, cfg.WindowWidth)
	assert.Equal(t, 2560, cfg.WindowHeight)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 750*time.Millisecond, cfg.Wait)
	assert.True(t, cfg.Headless)
	assert.Equal(t, "https://www.fakku.net/login/", cfg.LoginURL)
}

func TestLoadMergedProfileAndFlags(t *testing.T) {
	s := newStore(t)

	prof := DefaultConfig()
	prof.Output = "from-profile"
	prof.Timeout = 20 * time.Second
	prof.Headless = false
	_, err := s.CreateConfig("Work", prof)
	require.NoError(t, err)
	require.NoError(t, s.SwitchConfig("Work"))

	cfg, src, err := s.LoadMerged(Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.ConfigsDir(), "Work.yaml"), src)
	assert.Equal(t, "from-profile", cfg.Output)
	assert.Equal(t, 20*time.Second, cfg.Timeout)
	assert.False(t, cfg.Headless)

	headless := true
	cfg, _, err = s.LoadMerged(Options{Output: "flag", Wait: time.Second, Headless: &headless, Debug: true})
	require.NoError(t, err)
	assert.Equal(t, "flag", cfg.Output)
	assert.Equal(t, time.Second, cfg.Wait)
	assert.Equal(t, 20*time.Second, cfg.Timeout)
	assert.True(t, cfg.Headless)
	assert.True(t, cfg.Debug)

	cfg, src, err = s.LoadMerged(Options{IgnoreConfig: true})
	require.NoError(t, err)
	assert.Equal(t, "(ignored config)", src)
	assert.Equal(t, DefaultOutput, cfg.Output)
}

func TestLoadYAMLPartialProfile(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(s.ConfigsDir(), 0755))

	body := "output: comics\ntimeout: 8s\nwait: 1500ms\nbase_url: https://example.test/\n"
	require.NoError(t, os.WriteFile(filepath.Join(s.ConfigsDir(), "Mini.yaml"), []byte(body), 0644))
	require.NoError(t, s.SwitchConfig("Mini"))

	cfg, _, err := s.LoadMerged(Options{})
	require.NoError(t, err)
	assert.Equal(t, "comics", cfg.Output)
	assert.Equal(t, 8*time.Second, cfg.Timeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Wait)
	assert.Equal(t, "https://example.test", cfg.BaseURL)
	assert.True(t, cfg.Headless)
	assert.Equal(t, DefaultURLsFile, cfg.URLsFile)
	assert.Equal(t, "https://example.test/login/", cfg.LoginURL)
}

func TestBaseURLFlagDerivesLoginURL(t *testing.T) {
	s := newStore(t)

	cfg, _, err := s.LoadMerged(Options{BaseURL: "https://mirror.test/"})
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.test", cfg.BaseURL)
	assert.Equal(t, "https://mirror.test/login/", cfg.LoginURL)

	cfg, _, err = s.LoadMerged(Options{BaseURL: "https://mirror.test", LoginURL: "https://auth.test/in"})
	require.NoError(t, err)
	assert.Equal(t, "https://auth.test/in", cfg.LoginURL)
}

func TestValidate(t *testing.T) {
	s := newStore(t)

	_, _, err := s.LoadMerged(Options{BaseURL: "not a url"})
	assert.Error(t, err)

	_, _, err = s.LoadMerged(Options{WindowWidth: -5})
	assert.Error(t, err)

	_, _, err = s.LoadMerged(Options{Timeout: -time.Second})
	assert.Error(t, err)
}

func TestSaveYAMLWritesDurationsAsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, SaveYAML(DefaultConfig(), path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "timeout: 5s")
	assert.Contains(t, string(b), "wait: 750ms")

	back, err := loadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), back)
}

func TestStoreLifecycle(t *testing.T) {
	s := newStore(t)

	_, err := s.CurrentLabel()
	assert.ErrorIs(t, err, ErrNoConfig)

	path, err := s.InitDefaultConfig(false)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = s.InitDefaultConfig(false)
	assert.ErrorIs(t, err, os.ErrExist)

	_, err = s.CreateConfig("Alt", nil)
	require.NoError(t, err)
	_, err = s.CreateConfig("Alt", nil)
	assert.Error(t, err)

	require.NoError(t, s.SwitchConfig("Alt"))
	label, err := s.CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "Alt", label)

	require.NoError(t, s.RenameConfig("Alt", "Other"))
	label, _ = s.CurrentLabel()
	assert.Equal(t, "Other", label)
	assert.Error(t, s.RenameConfig("Other", "Default"))
	assert.Error(t, s.RenameConfig("Missing", "X"))

	list, err := s.ListConfigs()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Default", list[0].Label)
	assert.False(t, list[0].Active)
	assert.Equal(t, "Other", list[1].Label)
	assert.True(t, list[1].Active)

	require.NoError(t, s.RemoveConfig("Other"))
	label, _ = s.CurrentLabel()
	assert.Equal(t, "Default", label)

	assert.Error(t, s.RemoveConfig("Default"))
	assert.Error(t, s.RemoveConfig("Other"))
	assert.Error(t, s.SwitchConfig("Nope"))
}

func TestInvalidLabels(t *testing.T) {
	s := newStore(t)

	for _, label := range []string{"", "  ", "../escape", `a\b`, ".."} {
		_, err := s.CreateConfig(label, nil)
		assert.Error(t, err, label)
		_, err = s.PathByLabel(label)
		assert.Error(t, err, label)
	}
}
