package portal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sel = "table.tbActualSummary"

func TestFindFrame_TopDocument(t *testing.T) {
	top := &fakeFrame{name: "top", tableHTML: "<table></table>", children: []*fakeFrame{
		{name: "child", tableHTML: "<table></table>"},
	}}
	got, err := FindFrame(context.Background(), top, sel)
	require.NoError(t, err)
	assert.Same(t, top, got)
}

func TestFindFrame_DocumentOrder(t *testing.T) {
	// Pre-order: top, a, a1, b. Both a1 and b match; a1 comes first in the document.
	a1 := &fakeFrame{name: "a1", tableHTML: "x"}
	b := &fakeFrame{name: "b", tableHTML: "x"}
	top := &fakeFrame{name: "top", children: []*fakeFrame{
		{name: "a", children: []*fakeFrame{a1}},
		b,
	}}
	got, err := FindFrame(context.Background(), top, sel)
	require.NoError(t, err)
	assert.Same(t, a1, got)
}

func TestFindFrame_SiblingsInOrder(t *testing.T) {
	first := &fakeFrame{name: "first", tableHTML: "x"}
	second := &fakeFrame{name: "second", tableHTML: "x"}
	top := &fakeFrame{name: "top", children: []*fakeFrame{{name: "empty"}, first, second}}
	got, err := FindFrame(context.Background(), top, sel)
	require.NoError(t, err)
	assert.Same(t, first, got)
}

func TestFindFrame_SkipsUnreadableFrames(t *testing.T) {
	target := &fakeFrame{name: "target", tableHTML: "x"}
	top := &fakeFrame{name: "top", children: []*fakeFrame{
		{name: "broken", hasErr: errors.New("detached"), framesErr: errors.New("detached")},
		target,
	}}
	got, err := FindFrame(context.Background(), top, sel)
	require.NoError(t, err)
	assert.Same(t, target, got)
}

func TestFindFrame_SearchesBelowUnprobeableFrame(t *testing.T) {
	inner := &fakeFrame{name: "inner", tableHTML: "x"}
	top := &fakeFrame{name: "top", children: []*fakeFrame{
		{name: "broken", hasErr: errors.New("evaluation failed"), children: []*fakeFrame{inner}},
	}}
	got, err := FindFrame(context.Background(), top, sel)
	require.NoError(t, err)
	assert.Same(t, inner, got)
}

func TestFindFrame_NotFound(t *testing.T) {
	top := &fakeFrame{name: "top", children: []*fakeFrame{{name: "a"}, {name: "b"}}}
	got, err := FindFrame(context.Background(), top, sel)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindFrame_DepthBound(t *testing.T) {
	leaf := &fakeFrame{name: "deep", tableHTML: "x"}
	node := leaf
	for i := 0; i < maxFrameDepth+2; i++ {
		node = &fakeFrame{name: "wrap", children: []*fakeFrame{node}}
	}
	got, err := FindFrame(context.Background(), node, sel)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindFrame_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FindFrame(ctx, &fakeFrame{name: "top", tableHTML: "x"}, sel)
	assert.ErrorIs(t, err, context.Canceled)
}
