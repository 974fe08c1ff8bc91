// Package browser owns the chromedp session. Each site adapter gets its own
// tab and never shares it; there is no process-wide page handle.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

const (
	viewportWidth  = 1200
	viewportHeight = 1200

	// opTimeout bounds every individual browser operation so a dead page
	// cannot hang the run.
	opTimeout = 30 * time.Second
)

// Browser is a running Chrome instance.
type Browser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// Launch starts Chrome. With headless false a visible window opens, which the
// bank's 2FA flow usually needs.
func Launch(headless bool) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.WindowSize(viewportWidth, viewportHeight),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	return &Browser{ctx: ctx, cancel: cancel, allocCancel: allocCancel}, nil
}

// Close shuts the browser down.
func (b *Browser) Close() {
	b.cancel()
	b.allocCancel()
}

// NewTab opens a tab with the standard viewport.
func (b *Browser) NewTab() (*Tab, error) {
	ctx, cancel := chromedp.NewContext(b.ctx)
	t := &Tab{ctx: ctx, cancel: cancel}

	if err := t.run(chromedp.EmulateViewport(viewportWidth, viewportHeight)); err != nil {
		cancel()
		return nil, fmt.Errorf("opening tab: %w", err)
	}
	return t, nil
}

// Tab is one browser tab, exclusively owned by a single site adapter.
type Tab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Close closes the tab.
func (t *Tab) Close() { t.cancel() }

func (t *Tab) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(t.ctx, opTimeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// Navigate loads url and waits for the document to be ready.
func (t *Tab) Navigate(url string) error {
	return t.run(chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery))
}

// Click waits for selector to be visible and clicks it.
func (t *Tab) Click(selector string) error {
	return t.run(
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
}

// Type waits for selector and sends text to it.
func (t *Tab) Type(selector, text string) error {
	return t.run(
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
}

// TypeEnter sends text to selector followed by the Enter key, submitting
// whatever form owns the field.
func (t *Tab) TypeEnter(selector, text string) error {
	return t.Type(selector, text+kb.Enter)
}

// Text returns the inner text of the first element matching selector,
// waiting for it to appear.
func (t *Tab) Text(selector string) (string, error) {
	var s string
	if err := t.run(chromedp.Text(selector, &s, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return s, nil
}

// TextIfPresent returns the inner text of selector without waiting. The
// second result is false when no element matches.
func (t *Tab) TextIfPresent(selector string) (string, bool, error) {
	nodes, err := t.nodes(selector, nil)
	if err != nil {
		return "", false, err
	}
	if len(nodes) == 0 {
		return "", false, nil
	}

	var s string
	if err := t.run(chromedp.Text(selector, &s, chromedp.ByQuery)); err != nil {
		return "", false, err
	}
	return s, true, nil
}

// Present reports whether any element matches selector right now.
func (t *Tab) Present(selector string) (bool, error) {
	nodes, err := t.nodes(selector, nil)
	if err != nil {
		return false, err
	}
	return len(nodes) > 0, nil
}

// WaitVisible blocks until selector is visible.
func (t *Tab) WaitVisible(selector string) error {
	return t.run(chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// Sleep pauses the tab, for pages whose loaders race the DOM.
func (t *Tab) Sleep(d time.Duration) error {
	return t.run(chromedp.Sleep(d))
}

// Elements returns every element matching selector, in document order. An
// empty page yields an empty slice, not an error.
func (t *Tab) Elements(selector string) ([]Element, error) {
	nodes, err := t.nodes(selector, nil)
	if err != nil {
		return nil, err
	}
	return t.wrap(nodes), nil
}

func (t *Tab) nodes(selector string, from *cdp.Node) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	if from != nil {
		opts = append(opts, chromedp.FromNode(from))
	}
	if err := t.run(chromedp.Nodes(selector, &nodes, opts...)); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (t *Tab) wrap(nodes []*cdp.Node) []Element {
	els := make([]Element, len(nodes))
	for i, n := range nodes {
		els[i] = Element{tab: t, node: n}
	}
	return els
}

// Element is one DOM node scoped to its tab. It satisfies extract.Record.
type Element struct {
	tab  *Tab
	node *cdp.Node
}

// Text returns the inner text of the first descendant matching selector,
// waiting for it to appear.
func (e Element) Text(selector string) (string, error) {
	var s string
	err := e.tab.run(chromedp.Text(selector, &s, chromedp.ByQuery, chromedp.FromNode(e.node)))
	if err != nil {
		return "", err
	}
	return s, nil
}

// Elements returns the element's descendants matching selector.
func (e Element) Elements(selector string) ([]Element, error) {
	nodes, err := e.tab.nodes(selector, e.node)
	if err != nil {
		return nil, err
	}
	return e.tab.wrap(nodes), nil
}
