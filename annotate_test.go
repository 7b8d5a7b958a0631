// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderFooterConfig_Normalized(t *testing.T) {
	cfg := &HeaderFooterConfig{StartPage: -4, FontSize: 0}
	c := cfg.normalized()

	assert.Equal(t, 1, c.StartPage)
	assert.Equal(t, 10, c.FontSize)
	assert.Equal(t, "Document", c.FileLabel)

	// Valid values pass through untouched.
	cfg = &HeaderFooterConfig{StartPage: 3, FontSize: 14, FileLabel: "report"}
	c = cfg.normalized()
	assert.Equal(t, 3, c.StartPage)
	assert.Equal(t, 14, c.FontSize)
	assert.Equal(t, "report", c.FileLabel)
}

func TestWatermarkConfig_Normalized(t *testing.T) {
	// Malformed input degrades to the nearest valid value, never rejects.
	rot := -180
	cfg := &WatermarkConfig{
		FontSize: 400,
		Opacity:  7.5,
		Rotation: &rot,
		Position: "upper-middle",
	}
	c := cfg.normalized()

	assert.Equal(t, "CONFIDENTIAL", c.Text)
	assert.Equal(t, 100, c.FontSize)
	assert.Equal(t, 1.0, c.Opacity)
	assert.Equal(t, -90, *c.Rotation)
	assert.Equal(t, PosCenter, c.Position)
	assert.Equal(t, 1, c.StartPage)
	assert.Equal(t, 0, c.EndPage)

	// Defaults when unset, rotation included.
	c = (&WatermarkConfig{}).normalized()
	assert.Equal(t, 48, c.FontSize)
	assert.Equal(t, 0.3, c.Opacity)
	assert.Equal(t, 45, *c.Rotation)

	// An explicit zero rotation is a real value, not a request for the
	// default.
	zero := 0
	c = (&WatermarkConfig{Rotation: &zero}).normalized()
	assert.Equal(t, 0, *c.Rotation)

	// Low bounds clamp too.
	c = (&WatermarkConfig{FontSize: 3, Opacity: 0.01}).normalized()
	assert.Equal(t, 12, c.FontSize)
	assert.Equal(t, 0.1, c.Opacity)
}

func TestHeaderFooter_RightHeaderFromStartPage(t *testing.T) {
	// Scenario: 3 pages, rightHeader "Page (x) of (y)", startPage 2.
	tr := NewTransformer(NewDefaultConfig())
	input := fixturePDF(t, 3)

	out, err := tr.HeaderFooter(context.Background(), input, &HeaderFooterConfig{
		RightHeader: "Page (x) of (y)",
		StartPage:   2,
	})
	require.NoError(t, err)
	assert.NotEqual(t, input, out)

	n, err := reloadPageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, ValidateStructure(out))
}

func TestHeaderFooter_StartBeyondLastPageIsNoop(t *testing.T) {
	tr := NewTransformer(NewDefaultConfig())
	input := fixturePDF(t, 2)

	out, err := tr.HeaderFooter(context.Background(), input, &HeaderFooterConfig{
		LeftFooter: "(x)",
		StartPage:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

func TestHeaderFooter_AllSlotsWithCover(t *testing.T) {
	tr := NewTransformer(NewDefaultConfig())
	input := fixturePDF(t, 2)

	out, err := tr.HeaderFooter(context.Background(), input, &HeaderFooterConfig{
		LeftHeader:     "(file)",
		MiddleHeader:   "Draft",
		RightHeader:    "Page (x) of (y)",
		LeftFooter:     "(x) of (y)",
		MiddleFooter:   "internal",
		RightFooter:    "Page (x)",
		CoverWithWhite: true,
		TextColor:      "#003366",
		FileLabel:      "quarterly",
	})
	require.NoError(t, err)

	n, err := reloadPageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestHeaderFooter_CoverBandsNeverEraseText(t *testing.T) {
	// A long centered header spans into the left slot's band. The cover
	// must paint as its own pass before either text draws, so the middle
	// slot's background cannot erase the already-drawn left header.
	tr := NewTransformer(NewDefaultConfig())
	input := fixturePDF(t, 2)
	ctx := context.Background()

	long := strings.Repeat("overlap ", 14)
	covered, err := tr.HeaderFooter(ctx, input, &HeaderFooterConfig{
		LeftHeader:     "left",
		MiddleHeader:   long,
		CoverWithWhite: true,
	})
	require.NoError(t, err)

	n, err := reloadPageCount(covered)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, ValidateStructure(covered))

	// The band is a separate full-width stamping pass, so the covered
	// output carries strictly more content than the uncovered one.
	plain, err := tr.HeaderFooter(ctx, input, &HeaderFooterConfig{
		LeftHeader:   "left",
		MiddleHeader: long,
	})
	require.NoError(t, err)
	assert.Greater(t, len(covered), len(plain))
}

func TestWatermark_EndPageSentinel(t *testing.T) {
	// Scenario: endPage 0 marks all 5 pages; endPage 3 only pages 1-3.
	tr := NewTransformer(NewDefaultConfig())
	input := fixturePDF(t, 5)
	ctx := context.Background()

	all, err := tr.Watermark(ctx, input, &WatermarkConfig{
		Position: PosTopRight,
		EndPage:  0,
	})
	require.NoError(t, err)
	n, err := reloadPageCount(all)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	partial, err := tr.Watermark(ctx, input, &WatermarkConfig{
		Position: PosTopRight,
		EndPage:  3,
	})
	require.NoError(t, err)
	n, err = reloadPageCount(partial)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// The full-document pass stamps more pages, so it cannot be smaller.
	assert.GreaterOrEqual(t, len(all), len(partial))
}

func TestWatermark_EmptyWindowIsNoop(t *testing.T) {
	tr := NewTransformer(NewDefaultConfig())
	input := fixturePDF(t, 3)

	out, err := tr.Watermark(context.Background(), input, &WatermarkConfig{
		StartPage: 3,
		EndPage:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, input, out)
}
