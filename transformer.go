// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"context"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sassoftware/viya-pdf-transform/logger"
	"golang.org/x/sync/semaphore"
)

// Transformer defines the contract for the four document transformations
// and their non-mutating previews. Every call is a self-contained unit of
// work over whole-document byte payloads; no state is shared between
// calls.
type Transformer interface {
	HeaderFooter(ctx context.Context, input []byte, cfg *HeaderFooterConfig) ([]byte, error)
	Watermark(ctx context.Context, input []byte, cfg *WatermarkConfig) ([]byte, error)
	Split(ctx context.Context, input []byte, cfg *SplitConfig) (*SplitResult, error)
	Merge(ctx context.Context, inputs []MergeInput, cfg *MergeConfig) (*MergeResult, error)
	Compress(ctx context.Context, input []byte, cfg *CompressConfig) (*CompressResult, error)
	PreviewMerge(ctx context.Context, inputs []MergeInput) (*MergePreview, error)
	EstimateCompression(ctx context.Context, input []byte) (*CompressionEstimate, error)
	Metadata(ctx context.Context, input []byte, w io.Writer) error
}

// transformer bounds concurrent requests and carries the process config.
// Within a request all work is sequential: peak-memory control, not
// throughput, is the goal.
type transformer struct {
	cfg *Config
	sem *semaphore.Weighted

	// copyPages is the page-copy primitive behind split groups and merge
	// batches, replaceable in tests to exercise the partial-loss paths.
	copyPages func(src *model.Context, pages []int) ([]byte, error)
}

// NewTransformer validates the config and creates a new transformer.
func NewTransformer(cfg *Config) *transformer {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	if cfg.Logger != nil {
		logger.SetLogger(cfg.Logger)
	}

	logger.Debug(fmt.Sprintf("Transformer initialized: max_concurrent_jobs=%d max_file_bytes=%d max_merge_total_bytes=%d",
		cfg.MaxConcurrentJobs, cfg.MaxFileBytes, cfg.MaxMergeTotalBytes), true)

	return &transformer{
		cfg:       cfg,
		sem:       semaphore.NewWeighted(int64(cfg.MaxConcurrentJobs)),
		copyPages: copyPages,
	}
}

func (t *transformer) acquireSlot(ctx context.Context) error {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire slot: %w", err)
	}
	logger.Debug("Slot acquired successfully", true)
	return nil
}

// Split partitions the document per the configured policy. Every planned
// group is produced or the whole request fails; a partial set is never
// returned.
func (t *transformer) Split(ctx context.Context, input []byte, cfg *SplitConfig) (*SplitResult, error) {
	if err := t.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	if int64(len(input)) > t.cfg.MaxFileBytes {
		return nil, fmt.Errorf("%w: %d bytes, per-file limit %d", ErrResourceExceeded, len(input), t.cfg.MaxFileBytes)
	}

	if cfg == nil {
		cfg = &SplitConfig{}
	}

	pctx, err := loadContext(ctx, input, permissiveConf(), loadTimeout(t.cfg.LoadTimeoutFloor, len(input)))
	if err != nil {
		return nil, err
	}

	groups, err := PlanSplit(cfg, pctx.PageCount)
	if err != nil {
		return nil, err
	}

	logger.Debug(fmt.Sprintf("Split planned: mode=%s pages=%d groups=%d", cfg.Mode, pctx.PageCount, len(groups)), true)

	res := &SplitResult{Files: make([]SplitFile, 0, len(groups))}
	for _, g := range groups {
		data, err := t.copyPages(pctx, g.Pages)
		if err != nil {
			return nil, fmt.Errorf("%w: group %s: %v", ErrStructuralValidation, g.Name, err)
		}
		res.Files = append(res.Files, SplitFile{Name: g.Name, Label: g.Label, Data: data})
		logger.Debug(fmt.Sprintf("Split group produced: name=%s pages=%d bytes=%d", g.Name, len(g.Pages), len(data)), true)
	}

	return res, nil
}
