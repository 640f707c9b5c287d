package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brogergvhs/mangacap/internal/capture"
	"github.com/brogergvhs/mangacap/internal/config"
	"github.com/brogergvhs/mangacap/internal/ledger"
	"github.com/brogergvhs/mangacap/internal/ui"
	"github.com/brogergvhs/mangacap/internal/util"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var (
	colBrowser  browserFlags
	flagColURLs string
)

func init() {
	collectionCmd := &cobra.Command{
		Use:   "collection <url>",
		Short: "Append every item of a paginated collection to the URL list",
		Args:  cobra.ExactArgs(1),
		RunE:  runCollection,
	}

	collectionCmd.Flags().StringVar(&flagColURLs, "urls", "", "file the item URLs are appended to")
	colBrowser.register(collectionCmd)
	rootCmd.AddCommand(collectionCmd)
}

func runCollection(cmd *cobra.Command, args []string) error {
	opts := config.Options{URLsFile: flagColURLs}
	colBrowser.options(cmd, &opts)

	cfg, usedPath, err := config.LoadMerged(opts)
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	printConfig(cfg, usedPath)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	stop := util.SetupInterruptHandler(cancel, "")
	defer stop()

	b, err := openSession(ctx, cfg, logSvc)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logSvc.Debugf("close browser: %v", err)
		}
	}()

	sink, err := ledger.OpenAppender(cfg.URLsFile)
	if err != nil {
		return err
	}
	defer func() {
		_ = sink.Close()
	}()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Loading collection..."
	s.Start()

	c := capture.New(b, logSvc, nil, capture.Options{BaseURL: cfg.BaseURL})
	c.OnCollectionPage = func(page, total int) {
		s.Lock()
		s.Suffix = fmt.Sprintf(" Collection page %d/%d", page, total)
		s.Unlock()
	}

	found, err := c.ResolveCollection(args[0], sink)
	s.Stop()
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	fmt.Printf("Added %d URLs to %s\n", found, sink.Path())
	return nil
}
