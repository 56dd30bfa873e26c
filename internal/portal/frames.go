package portal

import (
	"context"

	"timesheetbot/internal/browser"
)

// maxFrameDepth bounds the frame walk on pathological pages.
const maxFrameDepth = 8

// FindFrame walks the frame tree rooted at root in document order (a frame before its children,
// siblings in source order) and returns the first frame containing an element matching selector.
// A frame that cannot be probed is not a match, but its children are still searched; a frame
// whose children cannot be listed ends that branch. The only error returned is cancellation of
// ctx; nil, nil means no frame matched.
func FindFrame(ctx context.Context, root browser.Frame, selector string) (browser.Frame, error) {
	return findFrame(ctx, root, selector, 0)
}

func findFrame(ctx context.Context, f browser.Frame, selector string, depth int) (browser.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if has, err := f.Has(ctx, selector); err == nil && has {
		return f, nil
	}
	if depth >= maxFrameDepth {
		return nil, nil
	}
	children, err := f.Frames(ctx)
	if err != nil {
		return nil, ctx.Err()
	}
	for _, child := range children {
		found, err := findFrame(ctx, child, selector, depth+1)
		if err != nil || found != nil {
			return found, err
		}
	}
	return nil, nil
}
