package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/brogergvhs/mangacap/internal/browser"
	"github.com/brogergvhs/mangacap/internal/config"
	"github.com/brogergvhs/mangacap/internal/session"
	"github.com/brogergvhs/mangacap/internal/ui"

	"github.com/spf13/cobra"
)

// browserFlags are shared by every command that drives the browser.
type browserFlags struct {
	cookies    string
	chromePath string
	width      int
	height     int
	timeout    time.Duration
	wait       time.Duration
	baseURL    string
	headless   bool
	userAgent  string
}

func (f *browserFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.cookies, "cookies", "", "cookie store written by `mangacap login`")
	fs.StringVar(&f.chromePath, "chrome-path", "", "Chrome/Chromium binary (default: autodetect)")
	fs.IntVar(&f.width, "width", 0, "initial window width")
	fs.IntVar(&f.height, "height", 0, "initial window height")
	fs.DurationVar(&f.timeout, "timeout", 0, "max wait for a page to become ready (e.g. 5s)")
	fs.DurationVar(&f.wait, "wait", 0, "fixed delay before polling a page (e.g. 750ms)")
	fs.StringVar(&f.baseURL, "base-url", "", "site root used to resolve links and the login page")
	fs.BoolVar(&f.headless, "headless", true, "run the browser without a window")
	fs.StringVar(&f.userAgent, "user-agent", "", "override User-Agent")
}

// options fills the browser part of config.Options. headless only counts
// when it was given explicitly, so the profile value survives otherwise.
func (f *browserFlags) options(cmd *cobra.Command, o *config.Options) {
	o.IgnoreConfig = flagIgnoreConfig
	o.Debug = flagDebug
	o.CookiesFile = f.cookies
	o.ChromePath = f.chromePath
	o.WindowWidth = f.width
	o.WindowHeight = f.height
	o.Timeout = f.timeout
	o.Wait = f.wait
	o.BaseURL = f.baseURL
	o.UserAgent = f.userAgent

	if cmd.Flags().Changed("headless") {
		h := f.headless
		o.Headless = &h
	}
}

func browserOptions(cfg *config.Config) browser.Options {
	return browser.Options{
		ExecPath:  cfg.ChromePath,
		UserAgent: cfg.UserAgent,
		Headless:  cfg.Headless,
		Width:     cfg.WindowWidth,
		Height:    cfg.WindowHeight,
		Timeout:   cfg.Timeout,
		Wait:      cfg.Wait,
	}
}

// openSession starts a browser and restores the stored login into it. The
// caller owns the returned browser and must Close it.
func openSession(ctx context.Context, cfg *config.Config, logSvc *ui.Logger) (*browser.Browser, error) {
	cookies, err := session.Load(cfg.CookiesFile)
	if err != nil {
		return nil, fmt.Errorf("%w (run `mangacap login` first)", err)
	}

	b, err := browser.New(ctx, browserOptions(cfg), logSvc)
	if err != nil {
		return nil, err
	}

	if err := b.RestoreCookies(cfg.LoginURL, cookies); err != nil {
		_ = b.Close()
		return nil, err
	}

	return b, nil
}

func printConfig(cfg *config.Config, usedPath string) {
	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}

	fmt.Println("Full config:")
	cfg.Print()
	fmt.Println()
}
