package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL   = "https://www.fakku.net"
	DefaultURLsFile  = "urls.txt"
	DefaultDoneFile  = "done.txt"
	DefaultCookies   = "cookies.gob"
	DefaultOutput    = "manga"
	DefaultWidth     = 1440
	DefaultHeight    = 2560
	DefaultTimeout   = 5 * time.Second
	DefaultWait      = 750 * time.Millisecond
	defaultLoginPath = "/login/"
)

type Config struct {
	URLsFile    string `yaml:"urls_file"`
	DoneFile    string `yaml:"done_file"`
	CookiesFile string `yaml:"cookies_file"`
	Output      string `yaml:"output"`

	ChromePath   string        `yaml:"chrome_path"`
	WindowWidth  int           `yaml:"window_width"`
	WindowHeight int           `yaml:"window_height"`
	Timeout      time.Duration `yaml:"timeout"`
	Wait         time.Duration `yaml:"wait"`
	Headless     bool          `yaml:"headless"`
	UserAgent    string        `yaml:"user_agent"`

	BaseURL string `yaml:"base_url"`
	// LoginURL defaults to <base_url>/login/.
	LoginURL string `yaml:"login_url"`

	CBZ         bool `yaml:"cbz"`
	KeepFolders bool `yaml:"keep_folders"`
	Debug       bool `yaml:"debug"`
}

// Options carries CLI overrides. Zero values leave the profile untouched;
// Headless is a pointer because false is a meaningful override.
type Options struct {
	IgnoreConfig bool
	Debug        bool

	URLsFile    string
	DoneFile    string
	CookiesFile string
	Output      string

	ChromePath   string
	WindowWidth  int
	WindowHeight int
	Timeout      time.Duration
	Wait         time.Duration
	Headless     *bool
	UserAgent    string

	BaseURL  string
	LoginURL string

	CBZ         bool
	KeepFolders bool
}

func DefaultConfig() *Config {
	return &Config{
		URLsFile:     DefaultURLsFile,
		DoneFile:     DefaultDoneFile,
		CookiesFile:  DefaultCookies,
		Output:       DefaultOutput,
		WindowWidth:  DefaultWidth,
		WindowHeight: DefaultHeight,
		Timeout:      DefaultTimeout,
		Wait:         DefaultWait,
		Headless:     true,
		BaseURL:      DefaultBaseURL,
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// loadYAML reads a profile on top of the defaults, so keys missing from
// older files keep their default values.
func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged resolves the active profile of s (or the built-in defaults),
// applies opts and validates the result. The second return value names
// the source for display.
func (s *Store) LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		return finish(cfg, "(ignored config)")
	}

	activePath, err := s.ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		return finish(cfg, "(default config in memory)\nRun `mangacap config init` to create an actual config\n")
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	return finish(cfg, activePath)
}

// LoadMerged uses the store in the user's config directory.
func LoadMerged(opts Options) (*Config, string, error) {
	return DefaultStore().LoadMerged(opts)
}

func finish(cfg *Config, source string) (*Config, string, error) {
	normalizeDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return cfg, source, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Debug {
		c.Debug = true
	}
	if o.URLsFile != "" {
		c.URLsFile = o.URLsFile
	}
	if o.DoneFile != "" {
		c.DoneFile = o.DoneFile
	}
	if o.CookiesFile != "" {
		c.CookiesFile = o.CookiesFile
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.ChromePath != "" {
		c.ChromePath = o.ChromePath
	}
	if o.WindowWidth != 0 {
		c.WindowWidth = o.WindowWidth
	}
	if o.WindowHeight != 0 {
		c.WindowHeight = o.WindowHeight
	}
	if o.Timeout != 0 {
		c.Timeout = o.Timeout
	}
	if o.Wait != 0 {
		c.Wait = o.Wait
	}
	if o.Headless != nil {
		c.Headless = *o.Headless
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.LoginURL != "" {
		c.LoginURL = o.LoginURL
	}
	if o.CBZ {
		c.CBZ = true
	}
	if o.KeepFolders {
		c.KeepFolders = true
	}
}

func normalizeDefaults(c *Config) {
	if c.URLsFile == "" {
		c.URLsFile = DefaultURLsFile
	}
	if c.DoneFile == "" {
		c.DoneFile = DefaultDoneFile
	}
	if c.CookiesFile == "" {
		c.CookiesFile = DefaultCookies
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.WindowWidth == 0 {
		c.WindowWidth = DefaultWidth
	}
	if c.WindowHeight == 0 {
		c.WindowHeight = DefaultHeight
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Wait == 0 {
		c.Wait = DefaultWait
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.LoginURL == "" {
		c.LoginURL = c.BaseURL + defaultLoginPath
	}
}

func (c *Config) Validate() error {
	if c.WindowWidth < 0 || c.WindowHeight < 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.WindowWidth, c.WindowHeight)
	}
	if c.Timeout < 0 || c.Wait < 0 {
		return fmt.Errorf("timeout and wait must not be negative")
	}

	for name, raw := range map[string]string{"base_url": c.BaseURL, "login_url": c.LoginURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}

	return nil
}

func (c *Config) Print() {
	fmt.Printf(" -urls_file: %s\n", c.URLsFile)
	fmt.Printf(" -done_file: %s\n", c.DoneFile)
	fmt.Printf(" -cookies_file: %s\n", c.CookiesFile)
	fmt.Printf(" -output: %s\n", c.Output)
	if c.ChromePath != "" {
		fmt.Printf(" -chrome_path: %s\n", c.ChromePath)
	}
	fmt.Printf(" -window: %dx%d\n", c.WindowWidth, c.WindowHeight)
	fmt.Printf(" -timeout: %s\n", c.Timeout)
	fmt.Printf(" -wait: %s\n", c.Wait)
	if !c.Headless {
		fmt.Printf(" -headless: %t\n", c.Headless)
	}
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
	fmt.Printf(" -base_url: %s\n", c.BaseURL)
	if c.CBZ {
		fmt.Printf(" -cbz: %t\n", c.CBZ)
	}
	if c.KeepFolders {
		fmt.Printf(" -keep_folders: %t\n", c.KeepFolders)
	}
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
}
