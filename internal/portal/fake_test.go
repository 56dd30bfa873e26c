package portal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"timesheetbot/internal/browser"
)

// fakeFrame is an in-memory frame tree node.
type fakeFrame struct {
	name      string
	tableHTML string // non-empty means the frame holds the summary table
	children  []*fakeFrame
	hasErr    error
	framesErr error
}

func (f *fakeFrame) Has(ctx context.Context, selector string) (bool, error) {
	if f.hasErr != nil {
		return false, f.hasErr
	}
	return f.tableHTML != "", nil
}

func (f *fakeFrame) OuterHTML(ctx context.Context, selector string) (string, error) {
	if f.tableHTML == "" {
		return "", fmt.Errorf("%w: %s", browser.ErrNoElement, selector)
	}
	return f.tableHTML, nil
}

func (f *fakeFrame) Frames(ctx context.Context) ([]browser.Frame, error) {
	if f.framesErr != nil {
		return nil, f.framesErr
	}
	out := make([]browser.Frame, 0, len(f.children))
	for _, c := range f.children {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeFrame) URL(ctx context.Context) (string, error) {
	return "about:blank#" + f.name, nil
}

// fakePage records the actions performed on it and replays a scripted URL sequence.
type fakePage struct {
	*fakeFrame

	mu          sync.Mutex
	urls        []string // returned in order; the last one repeats
	urlCalls    int
	navigated   []string
	filled      map[string]string
	clicked     []string
	screenshots []string
	navigateErr error
}

func newFakePage(root *fakeFrame, urls ...string) *fakePage {
	return &fakePage{fakeFrame: root, urls: urls, filled: map[string]string{}}
}

func (p *fakePage) URL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.urls) == 0 {
		return "", errors.New("no document")
	}
	i := p.urlCalls
	if i >= len(p.urls) {
		i = len(p.urls) - 1
	}
	p.urlCalls++
	return p.urls[i], nil
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	return p.navigateErr
}

func (p *fakePage) WaitLoad(ctx context.Context) error { return nil }

func (p *fakePage) Fill(ctx context.Context, selector, value string) error {
	p.filled[selector] = value
	return nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	p.clicked = append(p.clicked, selector)
	return nil
}

func (p *fakePage) Screenshot(ctx context.Context, path string) error {
	p.screenshots = append(p.screenshots, path)
	return nil
}
