// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Structural markers the sniff test looks for. This is a heuristic check
// tuned to the corruption patterns merge and compress can produce, not a
// semantic PDF validator.
var (
	pdfSignature    = []byte("%PDF-")
	pdfTrailer      = []byte("%%EOF")
	pdfCatalogMark  = []byte("/Catalog")
	pdfPageTreeMark = []byte("/Pages")
)

const trailerWindow = 1024

// ValidateStructure runs the byte-level checks in order, short-circuiting
// on the first failure: signature in the first 8 bytes, end-of-file marker
// in the trailing ~1KB, catalog and page-tree markers anywhere.
func ValidateStructure(b []byte) error {
	if len(b) < len(pdfSignature) {
		return fmt.Errorf("%w: document too short", ErrStructuralValidation)
	}

	head := b
	if len(head) > 8 {
		head = head[:8]
	}
	if !bytes.Contains(head, pdfSignature) {
		return fmt.Errorf("%w: missing %%PDF signature", ErrStructuralValidation)
	}

	tail := b
	if len(tail) > trailerWindow {
		tail = tail[len(tail)-trailerWindow:]
	}
	if !bytes.Contains(tail, pdfTrailer) {
		return fmt.Errorf("%w: missing %%%%EOF trailer", ErrStructuralValidation)
	}

	if !bytes.Contains(b, pdfCatalogMark) {
		return fmt.Errorf("%w: missing catalog marker", ErrStructuralValidation)
	}
	if !bytes.Contains(b, pdfPageTreeMark) {
		return fmt.Errorf("%w: missing page tree marker", ErrStructuralValidation)
	}

	return nil
}

// ValidateDocument runs ValidateStructure and then re-loads the bytes
// through the underlying primitives. When expectedPages >= 0 the re-loaded
// page count must match exactly. The re-load runs under the caller's
// timeout floor, sized up for large documents. Any failure is fatal for
// the operation that produced the bytes.
func ValidateDocument(ctx context.Context, b []byte, expectedPages int, timeoutFloor time.Duration) error {
	if err := ValidateStructure(b); err != nil {
		return err
	}

	pctx, err := loadContext(ctx, b, permissiveConf(), loadTimeout(timeoutFloor, len(b)))
	if err != nil {
		return fmt.Errorf("%w: re-load failed: %v", ErrStructuralValidation, err)
	}

	if expectedPages >= 0 && pctx.PageCount != expectedPages {
		return fmt.Errorf("%w: page count %d, expected %d",
			ErrStructuralValidation, pctx.PageCount, expectedPages)
	}

	return nil
}

// reloadPageCount is the validity re-load used by the compression profile
// search: the candidate must decode and report a page count.
func reloadPageCount(b []byte) (int, error) {
	return api.PageCount(bytes.NewReader(b), permissiveConf())
}
