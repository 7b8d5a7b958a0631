// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"github.com/pdfcpu/pdfcpu/pkg/font"
)

// Layout constants, in PDF user-space points.
const (
	sideMargin  = 40.0 // left/right text margin for header and footer slots
	headerInset = 30.0 // distance of the header baseline from the top edge
	footerInset = 20.0 // distance of the footer baseline from the bottom edge
	cornerInset = 50.0 // watermark inset from page edges for corner positions
)

const stampFontName = "Helvetica"

// Horizontal alignment of a header/footer slot.
type hAlign int

const (
	alignLeft hAlign = iota
	alignMiddle
	alignRight
)

// Watermark position keywords from the wire contract.
const (
	PosCenter      = "center"
	PosTopLeft     = "top-left"
	PosTopRight    = "top-right"
	PosBottomLeft  = "bottom-left"
	PosBottomRight = "bottom-right"
)

// measureText returns the rendered width of text in points for the stamp
// font at the given size.
func measureText(text string, fontSize int) float64 {
	return font.TextWidth(text, stampFontName, fontSize)
}

// anchorX computes the x coordinate where a text of width textWidth is
// drawn on a page of width pageWidth for the given alignment.
func anchorX(align hAlign, pageWidth, textWidth float64) float64 {
	switch align {
	case alignMiddle:
		return (pageWidth - textWidth) / 2
	case alignRight:
		return pageWidth - textWidth - sideMargin
	default:
		return sideMargin
	}
}

// headerY returns the header band baseline for a page of the given height.
func headerY(pageHeight float64) float64 {
	return pageHeight - headerInset
}

// footerY returns the footer band baseline.
func footerY() float64 {
	return footerInset
}

// watermarkAnchor computes the draw origin for a watermark of the given
// measured width and font size on a pageWidth×pageHeight page. Corners use
// a fixed inset from the page edges; center is true geometric centering.
func watermarkAnchor(position string, pageWidth, pageHeight, textWidth float64, fontSize int) (x, y float64) {
	fs := float64(fontSize)
	switch position {
	case PosTopLeft:
		return cornerInset, pageHeight - cornerInset - fs
	case PosTopRight:
		return pageWidth - textWidth - cornerInset, pageHeight - cornerInset - fs
	case PosBottomLeft:
		return cornerInset, cornerInset
	case PosBottomRight:
		return pageWidth - textWidth - cornerInset, cornerInset
	default: // center
		return (pageWidth - textWidth) / 2, pageHeight / 2
	}
}
