package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// ErrNoElement is returned when a selector matches nothing in a frame.
var ErrNoElement = errors.New("element not found")

// frameSelector matches both iframe and frameset children.
const frameSelector = "iframe, frame"

// Frame is one document of a page: the top-level document or an embedded frame.
type Frame interface {
	// Has reports whether at least one element matches selector, without waiting.
	Has(ctx context.Context, selector string) (bool, error)
	// OuterHTML returns the outer HTML of the first element matching selector.
	OuterHTML(ctx context.Context, selector string) (string, error)
	// Frames returns the direct child frames in document order.
	Frames(ctx context.Context) ([]Frame, error)
	// URL returns the document's current location.
	URL(ctx context.Context) (string, error)
}

// Page is the top-level document plus the actions a run performs on it.
type Page interface {
	Frame
	Navigate(ctx context.Context, url string) error
	WaitLoad(ctx context.Context) error
	Fill(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	// Screenshot writes a full-page PNG to path.
	Screenshot(ctx context.Context, path string) error
}

// rodFrame adapts a rod page. rod models embedded frames as pages too, so one type serves both.
type rodFrame struct {
	page    *rod.Page
	timeout time.Duration
}

func (f *rodFrame) bounded(ctx context.Context) *rod.Page {
	return f.page.Context(ctx).Timeout(f.timeout)
}

func (f *rodFrame) Has(ctx context.Context, selector string) (bool, error) {
	has, _, err := f.page.Context(ctx).Has(selector)
	if err != nil {
		return false, fmt.Errorf("probe %q: %w", selector, err)
	}
	return has, nil
}

func (f *rodFrame) OuterHTML(ctx context.Context, selector string) (string, error) {
	has, el, err := f.page.Context(ctx).Has(selector)
	if err != nil {
		return "", fmt.Errorf("probe %q: %w", selector, err)
	}
	if !has {
		return "", fmt.Errorf("%w: %s", ErrNoElement, selector)
	}
	html, err := el.HTML()
	if err != nil {
		return "", fmt.Errorf("read html of %q: %w", selector, err)
	}
	return html, nil
}

func (f *rodFrame) Frames(ctx context.Context) ([]Frame, error) {
	els, err := f.page.Context(ctx).Elements(frameSelector)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	out := make([]Frame, 0, len(els))
	for _, el := range els {
		child, err := el.Frame()
		if err != nil {
			// Cross-origin or detached frame; it cannot hold anything we can read.
			continue
		}
		out = append(out, &rodFrame{page: child, timeout: f.timeout})
	}
	return out, nil
}

func (f *rodFrame) URL(ctx context.Context) (string, error) {
	res, err := f.page.Context(ctx).Eval(`() => window.location.href`)
	if err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	if res == nil || res.Value.Nil() {
		return "", nil
	}
	return res.Value.String(), nil
}

func (f *rodFrame) Navigate(ctx context.Context, url string) error {
	if err := f.bounded(ctx).Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (f *rodFrame) WaitLoad(ctx context.Context) error {
	if err := f.bounded(ctx).WaitLoad(); err != nil {
		return fmt.Errorf("wait for load: %w", err)
	}
	return nil
}

func (f *rodFrame) Fill(ctx context.Context, selector, value string) error {
	el, err := f.bounded(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("element %q not found: %w", selector, err)
	}
	// Input types at the caret; selecting first makes it replace any prefilled value.
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select text of %q: %w", selector, err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	return nil
}

func (f *rodFrame) Click(ctx context.Context, selector string) error {
	el, err := f.bounded(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("element %q not found: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

func (f *rodFrame) Screenshot(ctx context.Context, path string) error {
	data, err := f.page.Context(ctx).Screenshot(true, nil)
	if err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create screenshot dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	return nil
}
