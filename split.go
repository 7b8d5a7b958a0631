// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// SplitMode selects the partitioning policy.
type SplitMode string

const (
	SplitPages  SplitMode = "pages"  // one output per requested page
	SplitRanges SplitMode = "ranges" // one output per page range
	SplitEveryN SplitMode = "every"  // fixed-size contiguous chunks
)

// PageRange is a 1-based inclusive page range.
type PageRange struct {
	Start int
	End   int
}

// SplitConfig describes how a document is partitioned.
type SplitConfig struct {
	Mode     SplitMode `validate:"oneof=pages ranges every"`
	Pages    []int
	Ranges   []PageRange
	EveryN   int
	FileName string
}

// PageGroup is one planned output: an ordered set of 1-based pages, a
// deterministic output name and a human-readable range label.
type PageGroup struct {
	Pages []int
	Name  string
	Label string
}

// SplitFile is one produced output document.
type SplitFile struct {
	Name  string
	Label string
	Data  []byte
}

// SplitResult is the complete set of produced documents. Group failures
// fail the whole request; a partial set is never returned.
type SplitResult struct {
	Files []SplitFile
}

// PlanSplit resolves a partitioning policy against a page count into an
// ordered list of page groups.
//
// Pages mode preserves caller order and duplicates; out-of-range page
// numbers are dropped silently. Ranges mode clamps each range into
// [1, pageCount] and drops ranges that end up inverted. EveryN mode floors
// the chunk size to 1 and produces contiguous, exhaustive chunks where only
// the last may be short. A plan with zero groups is a hard error.
func PlanSplit(cfg *SplitConfig, pageCount int) ([]PageGroup, error) {
	base := baseName(cfg.FileName)

	var groups []PageGroup
	switch cfg.Mode {
	case SplitPages:
		for _, p := range cfg.Pages {
			if p < 1 || p > pageCount {
				continue
			}
			groups = append(groups, PageGroup{
				Pages: []int{p},
				Label: fmt.Sprintf("Page %d", p),
				Name:  fmt.Sprintf("%s_page_%d.pdf", base, p),
			})
		}

	case SplitRanges:
		for _, r := range cfg.Ranges {
			start, end := r.Start, r.End
			if start < 1 {
				start = 1
			}
			if end > pageCount {
				end = pageCount
			}
			if start > end {
				continue
			}
			pages := make([]int, 0, end-start+1)
			for p := start; p <= end; p++ {
				pages = append(pages, p)
			}
			groups = append(groups, PageGroup{
				Pages: pages,
				Label: fmt.Sprintf("Pages %d-%d", start, end),
				Name:  fmt.Sprintf("%s_pages_%d-%d.pdf", base, start, end),
			})
		}

	case SplitEveryN:
		n := cfg.EveryN
		if n < 1 {
			n = 1
		}
		for start := 1; start <= pageCount; start += n {
			end := start + n - 1
			if end > pageCount {
				end = pageCount
			}
			pages := make([]int, 0, end-start+1)
			for p := start; p <= end; p++ {
				pages = append(pages, p)
			}
			groups = append(groups, PageGroup{
				Pages: pages,
				Label: fmt.Sprintf("Pages %d-%d", start, end),
				Name:  fmt.Sprintf("%s_pages_%d-%d.pdf", base, start, end),
			})
		}

	default:
		return nil, fmt.Errorf("%w: unknown split mode %q", ErrInputInvalid, cfg.Mode)
	}

	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: mode=%s pageCount=%d", ErrSplitPolicyEmpty, cfg.Mode, pageCount)
	}

	return dedupeGroupNames(groups), nil
}

// dedupeGroupNames suffixes repeated output names so that duplicate page
// requests stay collision-free within one request.
func dedupeGroupNames(groups []PageGroup) []PageGroup {
	seen := make(map[string]int, len(groups))
	for i := range groups {
		name := groups[i].Name
		seen[name]++
		if n := seen[name]; n > 1 {
			groups[i].Name = strings.TrimSuffix(name, ".pdf") + fmt.Sprintf("_%d.pdf", n)
		}
	}
	return groups
}

// baseName strips a trailing .pdf extension and falls back to "document"
// for an empty base.
func baseName(s string) string {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".pdf")
	if s == "" {
		return "document"
	}
	return s
}

// ZipSplitResult packs a multi-file split result into a zip container with
// deterministic entry order.
func ZipSplitResult(res *SplitResult) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range res.Files {
		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", f.Name, err)
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
