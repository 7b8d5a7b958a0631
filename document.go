// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sassoftware/viya-pdf-transform/logger"
)

// permissiveConf is the load profile for user-supplied documents: relaxed
// validation, encryption flags tolerated where possible.
func permissiveConf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// compatConf is the compatibility-first save profile: object streams and
// cross-reference streams disabled. Aggressive stream packing is the known
// root cause of structurally corrupt merge output, so smaller output is
// subordinate to validity here.
func compatConf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// loadTimeout computes the size-proportional load timeout:
// max(floor, 1s per MB of input).
func loadTimeout(floor time.Duration, sizeBytes int) time.Duration {
	sized := time.Duration(sizeBytes/(1<<20)) * time.Second
	if sized < floor {
		return floor
	}
	return sized
}

// loadContext decodes b into a pdfcpu context under the given deadline.
// On timeout the decode goroutine keeps running and its result is
// discarded; there is no cancellation mid-parse.
func loadContext(ctx context.Context, b []byte, conf *model.Configuration, timeout time.Duration) (*model.Context, error) {
	type loaded struct {
		pctx *model.Context
		err  error
	}

	done := make(chan loaded, 1)
	go func() {
		pctx, err := api.ReadContext(bytes.NewReader(b), conf)
		done <- loaded{pctx, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case l := <-done:
		if l.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInputInvalid, l.err)
		}
		return l.pctx, nil
	case <-timer.C:
		logger.Warn(fmt.Sprintf("Load timed out: size=%d timeout=%v", len(b), timeout))
		return nil, fmt.Errorf("%w: load exceeded %v", ErrProcessingTimeout, timeout)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrProcessingTimeout, ctx.Err())
	}
}

// writeContext serializes a pdfcpu context back to bytes.
func writeContext(pctx *model.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := api.WriteContext(pctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// copyPages copies the given 1-based pages of src, in order, into a fresh
// document graph and serializes it. This is the page-copy primitive shared
// by split groups, merge batches and the per-page retry path.
func copyPages(src *model.Context, pages []int) ([]byte, error) {
	dst, err := pdfcpu.ExtractPages(src, pages, false)
	if err != nil {
		return nil, err
	}
	return writeContext(dst)
}

// pageDim returns the media box dimensions of the 1-based page nr,
// falling back to US Letter when the page tree does not resolve.
func pageDim(dims []types.Dim, nr int) (width, height float64) {
	if nr >= 1 && nr <= len(dims) {
		return dims[nr-1].Width, dims[nr-1].Height
	}
	return 612, 792
}

// Keys stripped from the document information dictionary when metadata
// removal is requested.
var infoMetadataKeys = []string{"Title", "Author", "Subject", "Keywords", "CreationDate", "ModDate"}

// stripInfoMetadata deletes descriptive fields from the info dictionary.
// Reports whether anything was removed.
func stripInfoMetadata(pctx *model.Context) bool {
	if pctx.Info == nil {
		return false
	}
	d, err := pctx.DereferenceDict(*pctx.Info)
	if err != nil || d == nil {
		return false
	}
	removed := false
	for _, k := range infoMetadataKeys {
		if _, found := d.Find(k); found {
			d.Delete(k)
			removed = true
		}
	}
	return removed
}
