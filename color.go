// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"
)

// ParseHexColor converts a hex color string ("#rrggbb" or "#rgb", leading
// '#' optional, case-insensitive) into a normalized RGB triple.
func ParseHexColor(s string) (color.SimpleColor, error) {
	h := strings.TrimPrefix(strings.TrimSpace(strings.ToLower(s)), "#")

	switch len(h) {
	case 3:
		// #rgb expands each nibble: #f3c -> #ff33cc
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6:
	default:
		return color.Black, fmt.Errorf("%w: hex color %q", ErrInputInvalid, s)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.Black, fmt.Errorf("%w: hex color %q", ErrInputInvalid, s)
	}

	return color.SimpleColor{
		R: float32((v>>16)&0xff) / 255,
		G: float32((v>>8)&0xff) / 255,
		B: float32(v&0xff) / 255,
	}, nil
}

// colorOrBlack is the degradation used by annotation configs: a malformed
// color falls back to black instead of failing the request.
func colorOrBlack(s string) color.SimpleColor {
	if s == "" {
		return color.Black
	}
	c, err := ParseHexColor(s)
	if err != nil {
		return color.Black
	}
	return c
}
