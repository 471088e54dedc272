// Package browser drives a headless Chrome over the DevTools protocol.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Error constants.
var (
	ErrNotOpen = errors.New("no page has been opened")
)

// Lifecycle events a page can be considered settled on.
const (
	// EventNetworkAlmostIdle fires once at most two connections stayed open for 500ms.
	EventNetworkAlmostIdle = "networkAlmostIdle"
	// EventNetworkIdle fires once no connection stayed open for 500ms.
	EventNetworkIdle = "networkIdle"
)

// Defaults.
const (
	defaultWidth  = 1280
	defaultHeight = 2400
	defaultSettle = 250 * time.Millisecond
)

// Option configures a Chrome instance.
type Option func(*Chrome)

// WithWindowSize sets the browser window and viewport size.
func WithWindowSize(width, height int) Option {
	return func(c *Chrome) {
		if width > 0 && height > 0 {
			c.width, c.height = width, height
		}
	}
}

// WithExecPath points at a specific Chrome binary.
func WithExecPath(path string) Option {
	return func(c *Chrome) { c.execPath = path }
}

// WithIdleEvent selects the lifecycle event Open waits for.
func WithIdleEvent(name string) Option {
	return func(c *Chrome) {
		if name != "" {
			c.idleEvent = name
		}
	}
}

// WithSettleDelay sets the pause after the idle event before Open returns.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Chrome) {
		if d >= 0 {
			c.settle = d
		}
	}
}

// Chrome is one headless browser with a single tab.
type Chrome struct {
	width     int
	height    int
	execPath  string
	idleEvent string
	settle    time.Duration

	allocCancel context.CancelFunc
	tab         context.Context
	tabCancel   context.CancelFunc
	opened      bool
}

// Launch starts Chrome and its first tab. The process lives until Close or
// until ctx ends.
func Launch(ctx context.Context, opts ...Option) (*Chrome, error) {
	c := &Chrome{
		width:     defaultWidth,
		height:    defaultHeight,
		idleEvent: EventNetworkAlmostIdle,
		settle:    defaultSettle,
	}
	for _, opt := range opts {
		opt(c)
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.WindowSize(c.width, c.height),
		chromedp.Flag("hide-scrollbars", true),
	)
	if c.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tab, tabCancel := chromedp.NewContext(allocCtx)
	c.allocCancel, c.tab, c.tabCancel = allocCancel, tab, tabCancel

	// The first Run starts the browser process.
	if err := chromedp.Run(tab,
		chromedp.EmulateViewport(int64(c.width), int64(c.height)),
		page.SetLifecycleEventsEnabled(true),
	); err != nil {
		c.release()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	return c, nil
}

// Open navigates to url and waits for the idle lifecycle event of the new document.
func (c *Chrome) Open(ctx context.Context, url string) error {
	listenCtx, stop := context.WithCancel(c.tab)
	defer stop()

	idle := newIdleWatch()
	chromedp.ListenTarget(listenCtx, func(ev any) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == c.idleEvent {
			idle.mark(e.LoaderID)
		}
	})

	var loader cdp.LoaderID
	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, id, errorText, err := page.Navigate(url).Do(ctx)
		switch {
		case err != nil:
			return err
		case errorText != "":
			return fmt.Errorf("navigate %s: %s", url, errorText)
		}
		loader = id
		return nil
	}))
	if err != nil {
		return err
	}

	if err := idle.wait(ctx, loader); err != nil {
		return err
	}
	c.opened = true
	return c.pause(ctx)
}

// idleWatch remembers every loader that reached the idle event. Events may
// arrive before the navigated loader is known, so none are discarded.
type idleWatch struct {
	mu     sync.Mutex
	seen   map[cdp.LoaderID]struct{}
	notify chan struct{}
}

func newIdleWatch() *idleWatch {
	return &idleWatch{
		seen:   make(map[cdp.LoaderID]struct{}),
		notify: make(chan struct{}, 1),
	}
}

// mark records id and wakes the waiter. It never blocks the event loop.
func (w *idleWatch) mark(id cdp.LoaderID) {
	w.mu.Lock()
	w.seen[id] = struct{}{}
	w.mu.Unlock()
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func (w *idleWatch) has(id cdp.LoaderID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.seen[id]
	return ok
}

// wait blocks until id has been marked or ctx ends.
func (w *idleWatch) wait(ctx context.Context, id cdp.LoaderID) error {
	for !w.has(id) {
		select {
		case <-w.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// PDF prints the page with background graphics.
func (c *Chrome) PDF(ctx context.Context) ([]byte, error) {
	if !c.opened {
		return nil, ErrNotOpen
	}
	var buf []byte
	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
		buf = data
		return err
	}))
	return buf, err
}

// Screenshot captures the whole page as PNG.
func (c *Chrome) Screenshot(ctx context.Context) ([]byte, error) {
	if !c.opened {
		return nil, ErrNotOpen
	}
	var buf []byte
	// Quality 100 keeps the capture lossless PNG.
	err := c.run(ctx, chromedp.FullScreenshot(&buf, 100))
	return buf, err
}

// HTML returns the document's outer HTML after scripts ran.
func (c *Chrome) HTML(ctx context.Context) (string, error) {
	if !c.opened {
		return "", ErrNotOpen
	}
	var html string
	err := c.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// Close shuts the tab and the browser process down.
func (c *Chrome) Close() error {
	err := chromedp.Cancel(c.tab)
	c.release()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Chrome) release() {
	c.tabCancel()
	c.allocCancel()
}

// run executes actions on the tab while honoring ctx.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	done := make(chan error, 1)
	go func() { done <- chromedp.Run(c.tab, actions...) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Chrome) pause(ctx context.Context) error {
	if c.settle == 0 {
		return nil
	}
	t := time.NewTimer(c.settle)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
