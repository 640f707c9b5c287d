// Package capture drives the browser through every reader page of an item
// and stores one screenshot per page. It also expands collection pages into
// item URLs.
package capture

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/mangacap/internal/browser"
	"github.com/brogergvhs/mangacap/internal/extract"
	"github.com/brogergvhs/mangacap/internal/ui"
	"github.com/brogergvhs/mangacap/internal/util"
)

// Driver is the subset of browser.Browser used by the capture loop.
type Driver interface {
	Navigate(url string) error
	WaitReady(mode browser.Mode) error
	HTML() (string, error)
	LayerCount() (int, error)
	CanvasSize(index int) (int64, int64, error)
	Resize(width, height int64) error
	ResetWindow() error
	RemoveLayer(index int) error
	Screenshot() ([]byte, error)
}

// Sink receives ledger lines: completed item URLs, or item URLs found on a
// collection.
type Sink interface {
	Append(lines ...string) error
}

type Tracker interface {
	SetTotal(total int)
	Update(done, total int, bytes int64)
	MarkDone()
	Abort()
}

type Options struct {
	OutputDir string
	BaseURL   string
	// CBZ packs each finished item into <OutputDir>/<slug>.cbz.
	CBZ bool
	// KeepFolders keeps the page folder after CBZ packing.
	KeepFolders bool
}

type Capturer struct {
	drv   Driver
	log   *ui.Logger
	opts  Options
	stats *ui.Stats

	// NewTracker, when set, is called once per item.
	NewTracker func(label string) Tracker
	// OnCollectionPage, when set, is called before each collection page is
	// scanned.
	OnCollectionPage func(page, total int)
}

func New(drv Driver, logger *ui.Logger, stats *ui.Stats, opts Options) *Capturer {
	if stats == nil {
		stats = &ui.Stats{}
	}

	return &Capturer{
		drv:   drv,
		log:   logger,
		opts:  opts,
		stats: stats,
	}
}

// Slug is the folder name of an item: the last path segment of its URL,
// still percent-encoded. Dot segments yield "".
func Slug(itemURL string) string {
	p := itemURL
	if u, err := url.Parse(itemURL); err == nil && u.Path != "" {
		p = u.EscapedPath()
	}

	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}

	base := path.Base(p)
	if base == "." || base == ".." || strings.ContainsAny(base, `/\`) {
		return ""
	}

	return base
}

// inside reports whether dir lies strictly below root.
func inside(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." || rel == ".." {
		return false
	}

	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Run captures urls in order and appends each to done once all of its pages
// are on disk. The first error stops the run; the failing item is not
// recorded.
func (c *Capturer) Run(urls []string, done Sink) error {
	if err := os.MkdirAll(c.opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	for _, u := range urls {
		pages, err := c.CaptureItem(u)
		if err != nil {
			return fmt.Errorf("%s: %w", u, err)
		}

		if err := done.Append(u); err != nil {
			return err
		}

		c.stats.TotalItems.Add(1)
		c.log.Infof("%s done (%d pages)", Slug(u), pages)
	}

	return nil
}

// CaptureItem stores every page of one item and returns the page count.
func (c *Capturer) CaptureItem(itemURL string) (int, error) {
	slug := Slug(itemURL)
	if slug == "" {
		return 0, fmt.Errorf("cannot derive folder name from %q", itemURL)
	}

	folder := filepath.Join(c.opts.OutputDir, slug)
	if !inside(c.opts.OutputDir, folder) {
		return 0, fmt.Errorf("folder %q escapes output root %q", folder, c.opts.OutputDir)
	}
	if err := os.MkdirAll(folder, 0755); err != nil {
		return 0, err
	}

	if err := c.drv.ResetWindow(); err != nil {
		return 0, err
	}
	if err := c.drv.Navigate(itemURL); err != nil {
		return 0, err
	}
	if err := c.drv.WaitReady(browser.Listing); err != nil {
		return 0, err
	}

	src, err := c.drv.HTML()
	if err != nil {
		return 0, err
	}

	count, err := extract.PageCount(src)
	if err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}

	c.log.Infof("Downloading %q (%d pages)", slug, count)

	tr := c.tracker(slug)
	tr.SetTotal(count)

	base := strings.TrimRight(itemURL, "/")
	files := make([]string, 0, count)
	var written int64

	for i := 1; i <= count; i++ {
		file := filepath.Join(folder, fmt.Sprintf("%d.png", i))

		n, err := c.capturePage(fmt.Sprintf("%s/read/page/%d", base, i), i == 1, file)
		if err != nil {
			tr.Abort()
			return 0, fmt.Errorf("page %d: %w", i, err)
		}

		files = append(files, file)
		written += n
		c.stats.TotalPages.Add(1)
		c.stats.TotalBytes.Add(n)
		tr.Update(i, count, written)
	}

	if c.opts.CBZ {
		out := filepath.Join(c.opts.OutputDir, slug+".cbz")
		if err := util.CreateCBZ(files, out); err != nil {
			tr.Abort()
			return 0, err
		}
		if !c.opts.KeepFolders {
			util.CleanupFolder(folder)
		}
	}

	tr.MarkDone()
	return count, nil
}

func (c *Capturer) capturePage(pageURL string, first bool, file string) (int64, error) {
	mode := browser.Reader
	if first {
		mode = browser.FirstReader
	}

	if err := c.drv.Navigate(pageURL); err != nil {
		return 0, err
	}
	if err := c.drv.WaitReady(mode); err != nil {
		return 0, err
	}

	// 2 or 3 layers: the canvas sits under the UI layer, which is last
	n, err := c.drv.LayerCount()
	if err != nil {
		return 0, err
	}

	w, h, err := c.drv.CanvasSize(n - 2)
	switch {
	case errors.Is(err, browser.ErrScript):
		c.log.Warnf("Page not ready, keeping current window size (try increasing --timeout): %v", err)
	case err != nil:
		return 0, err
	default:
		if err := c.drv.Resize(w, h); err != nil {
			return 0, err
		}
	}

	if err := c.drv.RemoveLayer(n - 1); err != nil {
		return 0, fmt.Errorf("remove overlay: %w", err)
	}

	shot, err := c.drv.Screenshot()
	if err != nil {
		return 0, err
	}

	if err := os.WriteFile(file, shot, 0644); err != nil {
		return 0, err
	}
	c.log.Debugf("Saved %s (%s)", file, util.Human(int64(len(shot))))

	return int64(len(shot)), nil
}

// ResolveCollection appends the item URLs of every page of a collection to
// sink and returns how many were found. Nothing is deduplicated.
func (c *Capturer) ResolveCollection(collectionURL string, sink Sink) (int, error) {
	if err := c.drv.Navigate(collectionURL); err != nil {
		return 0, err
	}
	if err := c.drv.WaitReady(browser.Listing); err != nil {
		return 0, err
	}

	src, err := c.drv.HTML()
	if err != nil {
		return 0, err
	}

	total, err := extract.CollectionPageCount(src)
	if err != nil {
		return 0, fmt.Errorf("collection page count: %w", err)
	}

	base := strings.TrimRight(collectionURL, "/")
	found := 0

	for p := 1; p <= total; p++ {
		if c.OnCollectionPage != nil {
			c.OnCollectionPage(p, total)
		}

		// page 1 is already loaded
		if p != 1 {
			if err := c.drv.Navigate(fmt.Sprintf("%s/page/%d", base, p)); err != nil {
				return found, err
			}
			if err := c.drv.WaitReady(browser.Listing); err != nil {
				return found, err
			}
			if src, err = c.drv.HTML(); err != nil {
				return found, err
			}
		}

		links, err := extract.ItemLinks(src, c.opts.BaseURL)
		if err != nil {
			return found, fmt.Errorf("collection page %d: %w", p, err)
		}
		if err := sink.Append(links...); err != nil {
			return found, err
		}

		found += len(links)
		c.log.Debugf("Collection page %d/%d: %d items", p, total, len(links))
	}

	return found, nil
}

func (c *Capturer) tracker(label string) Tracker {
	if c.NewTracker == nil {
		return nopTracker{}
	}
	return c.NewTracker(label)
}

type nopTracker struct{}

func (nopTracker) SetTotal(int)           {}
func (nopTracker) Update(int, int, int64) {}
func (nopTracker) MarkDone()              {}
func (nopTracker) Abort()                 {}
