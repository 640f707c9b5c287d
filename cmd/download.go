package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/brogergvhs/mangacap/internal/capture"
	"github.com/brogergvhs/mangacap/internal/config"
	"github.com/brogergvhs/mangacap/internal/ledger"
	"github.com/brogergvhs/mangacap/internal/ui"
	"github.com/brogergvhs/mangacap/internal/util"

	"github.com/spf13/cobra"
)

var (
	dlBrowser browserFlags

	// ledger
	flagURLs  string
	flagDone  string
	flagRange string
	flagList  string

	// output
	flagOutput      string
	flagCBZ         bool
	flagKeepFolders bool
	flagDryRun      bool
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Capture every pending URL. Uses the defaults from the selected config, overwritten by CLI flags",
		RunE:  runDownload,
	}

	downloadCmd.Flags().StringVar(&flagURLs, "urls", "", "file with item URLs, one per line")
	downloadCmd.Flags().StringVar(&flagDone, "done", "", "file that finished URLs are appended to")
	downloadCmd.Flags().StringVar(&flagRange, "range", "", "capture a range of pending items by position (e.g. 5-12)")
	downloadCmd.Flags().StringVar(&flagList, "list", "", "capture specific pending items by position (e.g. 1,3,5)")

	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "output folder")
	downloadCmd.Flags().BoolVar(&flagCBZ, "cbz", false, "pack every finished item into a CBZ file")
	downloadCmd.Flags().BoolVar(&flagKeepFolders, "keep-folders", false, "keep page folders after CBZ packing")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show what would be captured, don’t start the browser")

	dlBrowser.register(downloadCmd)
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	opts := config.Options{
		URLsFile:    flagURLs,
		DoneFile:    flagDone,
		Output:      flagOutput,
		CBZ:         flagCBZ,
		KeepFolders: flagKeepFolders,
	}
	dlBrowser.options(cmd, &opts)

	cfg, usedPath, err := config.LoadMerged(opts)
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	printConfig(cfg, usedPath)

	pending, err := ledger.Pending(cfg.URLsFile, cfg.DoneFile)
	if err != nil {
		return err
	}

	queue := ledger.Select(pending, flagRange, flagList)
	if len(queue) == 0 {
		fmt.Printf("Nothing to do: %d pending URLs, none selected.\n", len(pending))
		return nil
	}

	if flagDryRun {
		fmt.Printf("Dry-run: %d of %d pending URLs selected.\n\n", len(queue), len(pending))
		for i, u := range queue {
			fmt.Printf("%3d) %s\n    %s\n", i+1, capture.Slug(u), u)
		}
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	stop := util.SetupInterruptHandler(cancel, cfg.Output)
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

	done, err := ledger.OpenAppender(cfg.DoneFile)
	if err != nil {
		return err
	}
	defer func() {
		_ = done.Close()
	}()

	pm := ui.NewProgressManager(nil)
	stats := &ui.Stats{}

	c := capture.New(b, logSvc, stats, capture.Options{
		OutputDir:   cfg.Output,
		BaseURL:     cfg.BaseURL,
		CBZ:         cfg.CBZ,
		KeepFolders: cfg.KeepFolders,
	})
	c.NewTracker = func(label string) capture.Tracker {
		return pm.Register(label)
	}

	fmt.Printf("Capturing %d of %d pending URLs.\n\n", len(queue), len(pending))
	start := time.Now()

	runErr := c.Run(queue, done)
	pm.Close()

	fmt.Println()
	fmt.Println("Capture Summary:")
	fmt.Printf("Items:  %d/%d\n", stats.TotalItems.Load(), len(queue))
	fmt.Printf("Pages:  %d\n", stats.TotalPages.Load())
	fmt.Printf("Data:   %s\n", util.Human(stats.TotalBytes.Load()))
	fmt.Printf("Time:   %s\n", time.Since(start).Round(time.Second))

	if runErr != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("interrupted: %w", runErr)
		}
		return runErr
	}

	fmt.Println("\nAll done.")
	return nil
}
