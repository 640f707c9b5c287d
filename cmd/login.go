package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/brogergvhs/mangacap/internal/browser"
	"github.com/brogergvhs/mangacap/internal/config"
	"github.com/brogergvhs/mangacap/internal/session"
	"github.com/brogergvhs/mangacap/internal/ui"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	loginBrowser browserFlags
	flagUsername string
	flagPassword string
	flagLoginURL string
)

func init() {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a visible browser and store the session cookies",
		RunE:  runLogin,
	}

	loginCmd.Flags().StringVar(&flagUsername, "username", "", "fill the login form with this username")
	loginCmd.Flags().StringVar(&flagPassword, "password", "", "fill the login form with this password (prompted if omitted)")
	loginCmd.Flags().StringVar(&flagLoginURL, "login-url", "", "login page (default: <base-url>/login/)")
	loginBrowser.register(loginCmd)
	_ = loginCmd.Flags().MarkHidden("headless")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	opts := config.Options{LoginURL: flagLoginURL}
	loginBrowser.options(cmd, &opts)

	// the user has to see the form
	headless := false
	opts.Headless = &headless

	cfg, usedPath, err := config.LoadMerged(opts)
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	printConfig(cfg, usedPath)

	password := flagPassword
	if flagUsername != "" && password == "" {
		prompt := promptui.Prompt{
			Label: "Password for " + flagUsername,
			Mask:  '*',
		}
		password, err = prompt.Run()
		if err != nil {
			return errors.New("password prompt cancelled")
		}
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	b, err := browser.New(ctx, browserOptions(cfg), logSvc)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logSvc.Debugf("close browser: %v", err)
		}
	}()

	if err := b.Login(cfg.LoginURL, flagUsername, password); err != nil {
		return err
	}

	fmt.Println("Finish logging in in the browser window, then press Enter here.")
	if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err != nil {
		return fmt.Errorf("waiting for confirmation: %w", err)
	}

	cookies, err := b.Cookies()
	if err != nil {
		return err
	}
	if len(cookies) == 0 {
		return fmt.Errorf("browser reported no cookies for %s", cfg.LoginURL)
	}

	if err := session.Save(cfg.CookiesFile, cookies); err != nil {
		return err
	}

	fmt.Printf("Saved %d cookies to %s\n", len(cookies), cfg.CookiesFile)
	return nil
}
