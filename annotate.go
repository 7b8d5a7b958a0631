// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sassoftware/viya-pdf-transform/logger"
)

// HeaderFooterConfig configures the six header/footer slots. Empty slots
// are not drawn. Malformed numeric fields degrade to defaults instead of
// failing the request.
type HeaderFooterConfig struct {
	LeftHeader   string
	MiddleHeader string
	RightHeader  string
	LeftFooter   string
	MiddleFooter string
	RightFooter  string

	StartPage      int // 1-based, default 1
	CoverWithWhite bool
	TextColor      string // hex, default black
	FontSize       int    // points, default 10
	FileLabel      string // expansion of the (file) placeholder
}

func (cfg *HeaderFooterConfig) normalized() HeaderFooterConfig {
	out := *cfg
	if out.StartPage < 1 {
		out.StartPage = 1
	}
	if out.FontSize <= 0 {
		out.FontSize = 10
	}
	if out.FileLabel == "" {
		out.FileLabel = "Document"
	}
	return out
}

// WatermarkConfig configures the rotated translucent page mark. All
// numeric fields clamp to their valid range rather than rejecting.
type WatermarkConfig struct {
	Text      string  // default "CONFIDENTIAL"
	FontSize  int     // 12-100, default 48
	Opacity   float64 // 0.1-1.0, default 0.3
	Color     string  // hex, default black
	Rotation  *int    // -90..90 degrees, nil = 45 (0 is a real value)
	Position  string  // one of the 5 position keywords, default center
	StartPage int     // 1-based, default 1
	EndPage   int     // 1-based inclusive, 0 = through last page
}

func (cfg *WatermarkConfig) normalized() WatermarkConfig {
	out := *cfg
	if out.Text == "" {
		out.Text = "CONFIDENTIAL"
	}
	if out.FontSize == 0 {
		out.FontSize = 48
	}
	out.FontSize = clampInt(out.FontSize, 12, 100)
	if out.Opacity == 0 {
		out.Opacity = 0.3
	}
	out.Opacity = clampFloat(out.Opacity, 0.1, 1.0)
	rot := 45
	if out.Rotation != nil {
		rot = clampInt(*out.Rotation, -90, 90)
	}
	out.Rotation = &rot
	switch out.Position {
	case PosCenter, PosTopLeft, PosTopRight, PosBottomLeft, PosBottomRight:
	default:
		out.Position = PosCenter
	}
	if out.StartPage < 1 {
		out.StartPage = 1
	}
	if out.EndPage < 0 {
		out.EndPage = 0
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// headerFooterSlot binds one configured text slot to its band and
// alignment.
type headerFooterSlot struct {
	text   string
	align  hAlign
	header bool
}

func (cfg *HeaderFooterConfig) slots() []headerFooterSlot {
	return []headerFooterSlot{
		{cfg.LeftHeader, alignLeft, true},
		{cfg.MiddleHeader, alignMiddle, true},
		{cfg.RightHeader, alignRight, true},
		{cfg.LeftFooter, alignLeft, false},
		{cfg.MiddleFooter, alignMiddle, false},
		{cfg.RightFooter, alignRight, false},
	}
}

// HeaderFooter draws the configured header and footer slots on every page
// from StartPage through the last page. Templates expand against each
// page's 1-based number and the total page count. With CoverWithWhite the
// band behind each text is painted opaque white before the text draws.
func (t *transformer) HeaderFooter(ctx context.Context, input []byte, cfg *HeaderFooterConfig) ([]byte, error) {
	if err := t.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	if int64(len(input)) > t.cfg.MaxFileBytes {
		return nil, fmt.Errorf("%w: %d bytes, per-file limit %d", ErrResourceExceeded, len(input), t.cfg.MaxFileBytes)
	}

	if cfg == nil {
		cfg = &HeaderFooterConfig{}
	}
	c := cfg.normalized()

	pctx, err := loadContext(ctx, input, permissiveConf(), loadTimeout(t.cfg.LoadTimeoutFloor, len(input)))
	if err != nil {
		return nil, err
	}
	dims, err := pctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("%w: page dimensions: %v", ErrInputInvalid, err)
	}

	pageCount := pctx.PageCount
	if c.StartPage > pageCount {
		logger.Debug(fmt.Sprintf("Start page beyond document, nothing to annotate: start=%d pages=%d", c.StartPage, pageCount), true)
		return input, nil
	}

	logger.Debug(fmt.Sprintf("Annotating headers/footers: pages=%d start=%d fontSize=%d", pageCount, c.StartPage, c.FontSize), true)

	out := input

	// Both cover bands paint before any text draws. A per-text background
	// would let a later slot's box erase an earlier slot's text where the
	// two overlap.
	if c.CoverWithWhite {
		out, err = coverBands(out, &c, dims, pageCount)
		if err != nil {
			return nil, err
		}
	}

	for _, slot := range c.slots() {
		if slot.text == "" {
			continue
		}

		stamps := make(map[int]*model.Watermark, pageCount-c.StartPage+1)
		for p := c.StartPage; p <= pageCount; p++ {
			text := ExpandTemplate(slot.text, p, pageCount, c.FileLabel)
			if text == "" {
				continue
			}

			pw, ph := pageDim(dims, p)
			x := anchorX(slot.align, pw, measureText(text, c.FontSize))
			y := footerY()
			if slot.header {
				y = headerY(ph)
			}

			wm, err := textStamp(text, x, y, c.FontSize, 0, 1.0, c.TextColor, true)
			if err != nil {
				return nil, fmt.Errorf("%w: stamp: %v", ErrInputInvalid, err)
			}
			stamps[p] = wm
		}

		out, err = applyStamps(out, stamps)
		if err != nil {
			return nil, fmt.Errorf("annotate: %w", err)
		}
	}

	return out, nil
}

// coverBands stamps one full-width opaque white band per page for each
// band that has text configured. Runs as its own passes ahead of every
// text pass so the bands can never obscure drawn text.
func coverBands(input []byte, c *HeaderFooterConfig, dims []types.Dim, pageCount int) ([]byte, error) {
	hasHeader := c.LeftHeader != "" || c.MiddleHeader != "" || c.RightHeader != ""
	hasFooter := c.LeftFooter != "" || c.MiddleFooter != "" || c.RightFooter != ""

	out := input
	for _, band := range []struct {
		present bool
		header  bool
	}{{hasHeader, true}, {hasFooter, false}} {
		if !band.present {
			continue
		}

		stamps := make(map[int]*model.Watermark, pageCount-c.StartPage+1)
		for p := c.StartPage; p <= pageCount; p++ {
			pw, ph := pageDim(dims, p)
			y := footerY()
			if band.header {
				y = headerY(ph)
			}
			wm, err := bandStamp(pw, y, c.FontSize)
			if err != nil {
				return nil, fmt.Errorf("%w: cover band: %v", ErrInputInvalid, err)
			}
			stamps[p] = wm
		}

		var err error
		out, err = applyStamps(out, stamps)
		if err != nil {
			return nil, fmt.Errorf("annotate: %w", err)
		}
	}
	return out, nil
}

// Watermark draws a rotated, semi-transparent text mark on every page in
// the configured window. EndPage 0 means through the last page, resolved
// once against the real page count.
func (t *transformer) Watermark(ctx context.Context, input []byte, cfg *WatermarkConfig) ([]byte, error) {
	if err := t.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	if int64(len(input)) > t.cfg.MaxFileBytes {
		return nil, fmt.Errorf("%w: %d bytes, per-file limit %d", ErrResourceExceeded, len(input), t.cfg.MaxFileBytes)
	}

	if cfg == nil {
		cfg = &WatermarkConfig{}
	}
	c := cfg.normalized()

	pctx, err := loadContext(ctx, input, permissiveConf(), loadTimeout(t.cfg.LoadTimeoutFloor, len(input)))
	if err != nil {
		return nil, err
	}
	dims, err := pctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("%w: page dimensions: %v", ErrInputInvalid, err)
	}

	pageCount := pctx.PageCount
	end := c.EndPage
	if end == 0 || end > pageCount {
		end = pageCount
	}
	if c.StartPage > end {
		logger.Debug(fmt.Sprintf("Watermark window empty: start=%d end=%d", c.StartPage, end), true)
		return input, nil
	}

	logger.Debug(fmt.Sprintf("Watermarking: pages=%d-%d position=%s rotation=%d opacity=%.2f",
		c.StartPage, end, c.Position, *c.Rotation, c.Opacity), true)

	tw := measureText(c.Text, c.FontSize)
	stamps := make(map[int]*model.Watermark, end-c.StartPage+1)
	for p := c.StartPage; p <= end; p++ {
		pw, ph := pageDim(dims, p)
		x, y := watermarkAnchor(c.Position, pw, ph, tw, c.FontSize)

		wm, err := textStamp(c.Text, x, y, c.FontSize, *c.Rotation, c.Opacity, c.Color, false)
		if err != nil {
			return nil, fmt.Errorf("%w: watermark: %v", ErrInputInvalid, err)
		}
		stamps[p] = wm
	}

	return applyStamps(input, stamps)
}

// textStamp builds one positioned text watermark. Position is expressed
// as an offset from the bottom-left anchor so the layout engine's absolute
// coordinates apply directly.
func textStamp(text string, x, y float64, fontSize, rotation int, opacity float64, hexColor string, onTop bool) (*model.Watermark, error) {
	fill := colorOrBlack(hexColor)

	desc := fmt.Sprintf(
		"fontname:%s, points:%d, scalefactor:1 abs, rotation:%d, opacity:%.2f, fillcolor:#%02x%02x%02x, position:bl, offset:%.1f %.1f",
		stampFontName, fontSize, rotation, opacity,
		int(fill.R*255), int(fill.G*255), int(fill.B*255),
		x, y,
	)

	wm, err := pdfcpu.ParseTextWatermarkDetails(text, desc, onTop, types.POINTS)
	if err != nil {
		return nil, err
	}
	wm.Pos = types.BottomLeft
	wm.Dx = x
	wm.Dy = y
	return wm, nil
}

// bandStamp builds one full-width opaque white box centered on the band's
// baseline. The box is background-only: white text on a white background
// with margins stretched past both page edges.
func bandStamp(pw, y float64, fontSize int) (*model.Watermark, error) {
	hm := int(pw/2) + 1
	desc := fmt.Sprintf(
		"fontname:%s, points:%d, scalefactor:1 abs, rotation:0, opacity:1, fillcolor:#ffffff, bgcolor:#ffffff, margins:%d %d %d %d, position:bl, offset:%.1f %.1f",
		stampFontName, fontSize, fontSize, hm, fontSize, hm, pw/2, y,
	)

	wm, err := pdfcpu.ParseTextWatermarkDetails(".", desc, true, types.POINTS)
	if err != nil {
		return nil, err
	}
	wm.Pos = types.BottomLeft
	wm.Dx = pw / 2
	wm.Dy = y
	return wm, nil
}

// applyStamps runs one stamping pass over the document bytes. An empty
// stamp map is a no-op.
func applyStamps(input []byte, stamps map[int]*model.Watermark) ([]byte, error) {
	if len(stamps) == 0 {
		return input, nil
	}
	var buf bytes.Buffer
	if err := api.AddWatermarksMap(bytes.NewReader(input), &buf, stamps, permissiveConf()); err != nil {
		return nil, fmt.Errorf("%w: stamping: %v", ErrInputInvalid, err)
	}
	return buf.Bytes(), nil
}
