// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"strconv"
	"strings"
)

// Page-numbering placeholders recognized in header/footer text, most
// specific first. Substitution order matters: "Page (x) of (y)" has to be
// consumed before the bare "(x)" pattern sees the string.
const (
	tplPageXofY = "Page (x) of (y)"
	tplXofY     = "(x) of (y)"
	tplPageX    = "Page (x)"
	tplX        = "(x)"
	tplFile     = "(file)"
)

// ExpandTemplate substitutes page-numbering placeholders in text for the
// given 1-based page number and page count. Substitution is textual and
// unconditional; a string without placeholders passes through unchanged.
func ExpandTemplate(text string, pageNr, pageCount int, fileLabel string) string {
	if text == "" {
		return ""
	}

	x := strconv.Itoa(pageNr)
	y := strconv.Itoa(pageCount)

	text = strings.ReplaceAll(text, tplPageXofY, "Page "+x+" of "+y)
	text = strings.ReplaceAll(text, tplXofY, x+" of "+y)
	text = strings.ReplaceAll(text, tplPageX, "Page "+x)
	text = strings.ReplaceAll(text, tplX, x)
	text = strings.ReplaceAll(text, tplFile, fileLabel)

	return text
}
