// Package browser owns the single Chrome instance of a run and exposes the
// handful of page operations the capture loop needs: navigation, readiness
// waits, runtime queries against the reader's canvas layers, viewport
// resizing, screenshots and cookie transfer.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brogergvhs/mangacap/internal/session"
	"github.com/brogergvhs/mangacap/internal/ui"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Mode selects the readiness marker and delay used by WaitReady.
type Mode int

const (
	// Listing is any non-reader page: item roots and collections.
	Listing Mode = iota
	// Reader is a reader page after the first one.
	Reader
	// FirstReader is page 1 of the reader, which renders slower.
	FirstReader
)

func (m Mode) String() string {
	switch m {
	case Listing:
		return "listing"
	case Reader:
		return "reader"
	case FirstReader:
		return "first reader page"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

const (
	listingMarker = `link[type="image/x-icon"]`
	readerMarker  = `div[data-name="PageView"]`

	// time allowed for login form elements to show up
	formTimeout = 15 * time.Second
)

var (
	ErrTimeout = errors.New("timed out waiting for page to load")
	ErrScript  = errors.New("page script failed")
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

func PickUserAgent(override string) string {
	if override != "" {
		return override
	}

	return DefaultUserAgent
}

type Options struct {
	ExecPath  string
	UserAgent string
	Headless  bool
	Width     int
	Height    int
	// Timeout bounds the wait for a readiness marker.
	Timeout time.Duration
	// Wait is the fixed delay before polling; tripled on FirstReader.
	Wait time.Duration
}

type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options
	log    *ui.Logger
}

// New starts Chrome. The process lives until Close is called or parent is
// cancelled.
func New(parent context.Context, opts Options, logger *ui.Logger) (*Browser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(opts.Width, opts.Height),
		chromedp.DisableGPU,
		chromedp.UserAgent(PickUserAgent(opts.UserAgent)),
	)
	if !opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)

	// chromedp reports unknown CDP events through errorf; they are noise
	ctxOpts := []chromedp.ContextOption{chromedp.WithErrorf(logger.Debugf)}
	if logger.Debug {
		ctxOpts = append(ctxOpts, chromedp.WithLogf(logger.Debugf))
	}
	ctx, cancelCtx := chromedp.NewContext(allocCtx, ctxOpts...)

	b := &Browser{
		ctx: ctx,
		cancel: func() {
			cancelCtx()
			cancelAlloc()
		},
		opts: opts,
		log:  logger,
	}

	if err := chromedp.Run(ctx); err != nil {
		b.cancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	logger.Debugf("Browser started (headless=%t, window=%dx%d, exec=%q)", opts.Headless, opts.Width, opts.Height, opts.ExecPath)
	return b, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (b *Browser) Close() error {
	err := chromedp.Cancel(b.ctx)
	b.cancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func (b *Browser) Navigate(url string) error {
	b.log.Debugf("Navigate %s", url)
	if err := chromedp.Run(b.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}

	return nil
}

// WaitReady sleeps the configured delay and then polls for the marker of
// mode until the load timeout expires.
func (b *Browser) WaitReady(mode Mode) error {
	delay := b.opts.Wait
	sel := readerMarker

	switch mode {
	case Listing:
		sel = listingMarker
	case FirstReader:
		delay *= 3
	}

	if err := chromedp.Run(b.ctx, chromedp.Sleep(delay)); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(b.ctx, b.opts.Timeout)
	defer cancel()

	err := chromedp.Run(ctx, chromedp.WaitReady(sel, chromedp.ByQuery))
	if errors.Is(err, context.DeadlineExceeded) && b.ctx.Err() == nil {
		return fmt.Errorf("%w: no %s after %s on %s page; try increasing --timeout",
			ErrTimeout, sel, b.opts.Timeout, mode)
	}

	return err
}

func (b *Browser) HTML() (string, error) {
	var src string
	if err := chromedp.Run(b.ctx, chromedp.OuterHTML("html", &src, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("page source: %w", err)
	}

	return src, nil
}

// LayerCount returns the number of reader rendering layers on the page.
func (b *Browser) LayerCount() (int, error) {
	var n int
	if err := b.eval(`document.getElementsByClassName('layer').length`, &n); err != nil {
		return 0, err
	}

	return n, nil
}

// CanvasSize returns the intrinsic size of the index-th canvas.
func (b *Browser) CanvasSize(index int) (int64, int64, error) {
	var dims []int64
	expr := fmt.Sprintf(`(() => {
		const c = document.getElementsByTagName('canvas')[%d];
		return [c.width, c.height];
	})()`, index)

	if err := b.eval(expr, &dims); err != nil {
		return 0, 0, err
	}
	if len(dims) != 2 || dims[0] <= 0 || dims[1] <= 0 {
		return 0, 0, fmt.Errorf("%w: canvas %d reported size %v", ErrScript, index, dims)
	}

	return dims[0], dims[1], nil
}

// Resize makes the viewport exactly width x height, so the next screenshot
// covers the canvas and nothing else.
func (b *Browser) Resize(width, height int64) error {
	if err := chromedp.Run(b.ctx, chromedp.EmulateViewport(width, height)); err != nil {
		return fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}

	return nil
}

// ResetWindow restores the initial window size.
func (b *Browser) ResetWindow() error {
	return b.Resize(int64(b.opts.Width), int64(b.opts.Height))
}

// RemoveLayer detaches the index-th reader layer from the DOM.
func (b *Browser) RemoveLayer(index int) error {
	return b.eval(fmt.Sprintf(`document.getElementsByClassName('layer')[%d].remove()`, index), nil)
}

func (b *Browser) Screenshot() ([]byte, error) {
	var buf []byte
	if err := chromedp.Run(b.ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}

	return buf, nil
}

// Cookies returns the cookies visible to the current page.
func (b *Browser) Cookies() ([]session.Cookie, error) {
	var raw []*network.Cookie
	err := chromedp.Run(b.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}

	return session.FromNetwork(raw), nil
}

// RestoreCookies opens loginURL so the site's domain is loaded, installs
// cookies and resets the window to its initial size.
func (b *Browser) RestoreCookies(loginURL string, cookies []session.Cookie) error {
	if err := b.Navigate(loginURL); err != nil {
		return err
	}

	err := chromedp.Run(b.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			if err := c.Params().Do(ctx); err != nil {
				return fmt.Errorf("cookie %s: %w", c.Name, err)
			}
		}
		return nil
	}))
	if err != nil {
		return fmt.Errorf("restore cookies: %w", err)
	}

	b.log.Debugf("Restored %d cookies", len(cookies))
	return b.ResetWindow()
}

// Login opens the login form and submits the given credentials. Empty
// credentials leave the form to the user.
func (b *Browser) Login(loginURL, username, password string) error {
	if err := b.Navigate(loginURL); err != nil {
		return err
	}
	if username == "" && password == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(b.ctx, formTimeout)
	defer cancel()

	var tasks chromedp.Tasks
	if username != "" {
		tasks = append(tasks, chromedp.SendKeys(`#username`, username, chromedp.ByQuery))
	}
	if password != "" {
		tasks = append(tasks, chromedp.SendKeys(`#password`, password, chromedp.ByQuery))
	}
	tasks = append(tasks, chromedp.Click(`.js-submit`, chromedp.ByQuery))

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("login form: %w", err)
	}

	return nil
}

func (b *Browser) eval(expr string, res any) error {
	if err := chromedp.Run(b.ctx, chromedp.Evaluate(expr, res)); err != nil {
		if b.ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %v", ErrScript, err)
	}

	return nil
}
