// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sassoftware/viya-pdf-transform/logger"
)

// MergeInput is one ordered merge source. Name is used for bookmark titles
// and skip reporting only.
type MergeInput struct {
	Name string
	Data []byte
}

// MergeConfig carries the merge options from the wire contract.
type MergeConfig struct {
	OutputFileName string
	AddBookmarks   bool
}

// SkippedPage records one page lost during batch copy. Skips are
// non-fatal but must stay observable.
type SkippedPage struct {
	Input  string
	Page   int
	Reason string
}

// MergeResult is a structurally validated merge output.
type MergeResult struct {
	Data          []byte
	PageCount     int
	SkippedPages  []SkippedPage
	BookmarkCount int
}

// batchSizeFor returns the page-copy batch size for an input of the given
// byte size. Smaller inputs copy in larger batches; large inputs shrink
// the batch to bound peak memory and isolate failures.
func batchSizeFor(sizeBytes int) int {
	switch {
	case sizeBytes <= 20<<20:
		return 20
	case sizeBytes <= 100<<20:
		return 10
	default:
		return 5
	}
}

// Merge concatenates the page sequences of the ordered inputs into one
// document. Pages are copied in size-inverse batches with an individual
// retry pass per failed batch; pages that still fail are skipped with a
// warning. The output is written with the compatibility-first profile and
// must pass structural validation against the copied page total, otherwise
// the whole merge fails.
func (t *transformer) Merge(ctx context.Context, inputs []MergeInput, cfg *MergeConfig) (*MergeResult, error) {
	if err := t.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	if len(inputs) < 2 {
		return nil, fmt.Errorf("%w: merge needs at least 2 documents, got %d", ErrInputInvalid, len(inputs))
	}

	var aggregate int64
	for _, in := range inputs {
		if int64(len(in.Data)) > t.cfg.MaxFileBytes {
			return nil, fmt.Errorf("%w: %s is %d bytes, per-file limit %d",
				ErrResourceExceeded, in.Name, len(in.Data), t.cfg.MaxFileBytes)
		}
		aggregate += int64(len(in.Data))
	}
	if aggregate > t.cfg.MaxMergeTotalBytes {
		return nil, fmt.Errorf("%w: aggregate %d bytes, merge limit %d",
			ErrResourceExceeded, aggregate, t.cfg.MaxMergeTotalBytes)
	}

	logger.Debug(fmt.Sprintf("Starting merge: inputs=%d aggregate=%d", len(inputs), aggregate), true)

	var (
		parts      [][]byte // batch buffers, output order
		skipped    []SkippedPage
		copied     int
		firstPages = make([]int, len(inputs)) // 1-based first output page per input, 0 if none
	)

	for i, in := range inputs {
		timeout := loadTimeout(t.cfg.LoadTimeoutFloor, len(in.Data))
		pctx, err := loadContext(ctx, in.Data, permissiveConf(), timeout)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", in.Name, err)
		}

		total := pctx.PageCount
		bs := batchSizeFor(len(in.Data))
		logger.Debug(fmt.Sprintf("Merge input loaded: name=%s pages=%d batch=%d", in.Name, total, bs), true)

		inputCopied := 0
		for start := 1; start <= total; start += bs {
			end := start + bs - 1
			if end > total {
				end = total
			}
			batch := make([]int, 0, end-start+1)
			for p := start; p <= end; p++ {
				batch = append(batch, p)
			}

			part, err := t.copyPages(pctx, batch)
			if err == nil {
				parts = append(parts, part)
				inputCopied += len(batch)
				continue
			}

			logger.Debug(fmt.Sprintf("Batch copy failed, retrying pages individually: input=%s pages=%d-%d err=%v",
				in.Name, start, end, err), true)

			for _, p := range batch {
				page, perr := t.copyPageWithRetries(pctx, p)
				if perr != nil {
					skipped = append(skipped, SkippedPage{Input: in.Name, Page: p, Reason: perr.Error()})
					logger.Warn(fmt.Sprintf("Page skipped during merge: input=%s page=%d err=%v", in.Name, p, perr))
					continue
				}
				parts = append(parts, page)
				inputCopied++
			}
		}

		if inputCopied > 0 {
			firstPages[i] = copied + 1
		}
		copied += inputCopied
	}

	if copied == 0 || len(parts) == 0 {
		return nil, fmt.Errorf("%w: no pages could be copied from any input", ErrInputInvalid)
	}

	readers := make([]io.ReadSeeker, len(parts))
	for i, p := range parts {
		readers[i] = bytes.NewReader(p)
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, compatConf()); err != nil {
		return nil, fmt.Errorf("%w: assembling output: %v", ErrStructuralValidation, err)
	}
	out := buf.Bytes()

	bookmarks := 0
	if cfg != nil && cfg.AddBookmarks {
		out, bookmarks = t.addMergeBookmarks(out, inputs, firstPages)
	}

	if err := ValidateDocument(ctx, out, copied, t.cfg.LoadTimeoutFloor); err != nil {
		return nil, err
	}

	logger.Debug(fmt.Sprintf("Merge completed: pages=%d skipped=%d bookmarks=%d bytes=%d",
		copied, len(skipped), bookmarks, len(out)), true)

	return &MergeResult{
		Data:          out,
		PageCount:     copied,
		SkippedPages:  skipped,
		BookmarkCount: bookmarks,
	}, nil
}

// copyPageWithRetries copies a single page, retrying per the configured
// retry budget before the caller records a skip.
func (t *transformer) copyPageWithRetries(pctx *model.Context, page int) ([]byte, error) {
	var out []byte
	var err error
	for attempt := 0; attempt <= t.cfg.MaxPageRetries; attempt++ {
		out, err = t.copyPages(pctx, []int{page})
		if err == nil {
			return out, nil
		}
		logger.Debug(fmt.Sprintf("Retrying page copy: page=%d attempt=%d err=%v", page, attempt, err), true)
	}
	return nil, err
}

// addMergeBookmarks attaches one outline entry per source document at its
// first output page. Best-effort: failure keeps the unbookmarked output.
func (t *transformer) addMergeBookmarks(merged []byte, inputs []MergeInput, firstPages []int) ([]byte, int) {
	var bms []pdfcpu.Bookmark
	for i, in := range inputs {
		if firstPages[i] == 0 {
			continue
		}
		title := in.Name
		if title == "" {
			title = fmt.Sprintf("Document %d", i+1)
		}
		bms = append(bms, pdfcpu.Bookmark{Title: title, PageFrom: firstPages[i]})
	}
	if len(bms) == 0 {
		return merged, 0
	}

	var buf bytes.Buffer
	if err := api.AddBookmarks(bytes.NewReader(merged), &buf, bms, true, compatConf()); err != nil {
		logger.Warn(fmt.Sprintf("Bookmark pass failed, keeping unbookmarked output: err=%v", err))
		return merged, 0
	}
	return buf.Bytes(), len(bms)
}

// MergeFilePreview summarizes one merge input without mutating anything.
type MergeFilePreview struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"sizeBytes"`
	Pages     int    `json:"pages"`
	Meta      Meta   `json:"meta"`
}

// MergePreview is the structural summary returned by the preview operation.
type MergePreview struct {
	Files      []MergeFilePreview `json:"files"`
	TotalPages int                `json:"totalPages"`
	TotalBytes int64              `json:"totalBytes"`
}

// PreviewMerge reports per-file page counts and metadata plus aggregate
// totals for the given inputs. No document is mutated.
func (t *transformer) PreviewMerge(ctx context.Context, inputs []MergeInput) (*MergePreview, error) {
	if err := t.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	pv := &MergePreview{}
	for _, in := range inputs {
		timeout := loadTimeout(t.cfg.LoadTimeoutFloor, len(in.Data))
		pctx, err := loadContext(ctx, in.Data, permissiveConf(), timeout)
		if err != nil {
			return nil, fmt.Errorf("preview %s: %w", in.Name, err)
		}
		pv.Files = append(pv.Files, MergeFilePreview{
			Name:      in.Name,
			SizeBytes: int64(len(in.Data)),
			Pages:     pctx.PageCount,
			Meta:      readMeta(pctx),
		})
		pv.TotalPages += pctx.PageCount
		pv.TotalBytes += int64(len(in.Data))
	}
	return pv, nil
}
