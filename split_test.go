// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanSplit_Pages(t *testing.T) {
	cfg := &SplitConfig{Mode: SplitPages, Pages: []int{3, 1, 3, 99, 0, -2}, FileName: "doc.pdf"}

	groups, err := PlanSplit(cfg, 10)
	require.NoError(t, err)

	// Caller order and duplicates preserved, out-of-range dropped.
	require.Len(t, groups, 3)
	assert.Equal(t, []int{3}, groups[0].Pages)
	assert.Equal(t, []int{1}, groups[1].Pages)
	assert.Equal(t, []int{3}, groups[2].Pages)

	// Names deterministic and collision-free for the duplicate.
	assert.Equal(t, "doc_page_3.pdf", groups[0].Name)
	assert.Equal(t, "doc_page_1.pdf", groups[1].Name)
	assert.Equal(t, "doc_page_3_2.pdf", groups[2].Name)
}

func TestPlanSplit_Ranges(t *testing.T) {
	cfg := &SplitConfig{
		Mode: SplitRanges,
		Ranges: []PageRange{
			{Start: 1, End: 5},
			{Start: 6, End: 10},
			{Start: -3, End: 2},  // clamps to 1-2
			{Start: 8, End: 99},  // clamps to 8-10
			{Start: 12, End: 20}, // start > clamped end, dropped
		},
		FileName: "doc",
	}

	groups, err := PlanSplit(cfg, 10)
	require.NoError(t, err)
	require.Len(t, groups, 4)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, groups[0].Pages)
	assert.Equal(t, []int{6, 7, 8, 9, 10}, groups[1].Pages)
	assert.Equal(t, []int{1, 2}, groups[2].Pages)
	assert.Equal(t, []int{8, 9, 10}, groups[3].Pages)
	assert.Equal(t, "Pages 8-10", groups[3].Label)
}

func TestPlanSplit_EveryN_Exhaustive(t *testing.T) {
	// Chunks are contiguous, non-overlapping, and cover [1, P] exactly.
	for pageCount := 1; pageCount <= 25; pageCount++ {
		for n := 1; n <= 7; n++ {
			cfg := &SplitConfig{Mode: SplitEveryN, EveryN: n, FileName: "d"}
			groups, err := PlanSplit(cfg, pageCount)
			require.NoError(t, err)

			next := 1
			for _, g := range groups {
				for _, p := range g.Pages {
					require.Equal(t, next, p, "P=%d N=%d", pageCount, n)
					next++
				}
			}
			require.Equal(t, pageCount+1, next, "P=%d N=%d", pageCount, n)

			last := len(groups[len(groups)-1].Pages)
			want := pageCount % n
			if want == 0 {
				want = n
			}
			if n > pageCount {
				want = pageCount
			}
			assert.Equal(t, want, last, "P=%d N=%d", pageCount, n)
		}
	}
}

func TestPlanSplit_EveryN_FlooredChunkSize(t *testing.T) {
	cfg := &SplitConfig{Mode: SplitEveryN, EveryN: 0, FileName: "d"}
	groups, err := PlanSplit(cfg, 3)
	require.NoError(t, err)
	assert.Len(t, groups, 3)
}

func TestPlanSplit_EmptyPolicyIsError(t *testing.T) {
	tests := []struct {
		name string
		cfg  *SplitConfig
	}{
		{"all pages out of range", &SplitConfig{Mode: SplitPages, Pages: []int{11, 12}}},
		{"no pages requested", &SplitConfig{Mode: SplitPages}},
		{"all ranges inverted", &SplitConfig{Mode: SplitRanges, Ranges: []PageRange{{Start: 20, End: 30}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanSplit(tt.cfg, 10)
			assert.ErrorIs(t, err, ErrSplitPolicyEmpty)
		})
	}
}

func TestSplit_Ranges(t *testing.T) {
	// Scenario: 10 pages split as [1,5] and [6,10] gives two 5-page files.
	tr := NewTransformer(NewDefaultConfig())
	input := fixturePDF(t, 10)

	res, err := tr.Split(context.Background(), input, &SplitConfig{
		Mode:     SplitRanges,
		Ranges:   []PageRange{{Start: 1, End: 5}, {Start: 6, End: 10}},
		FileName: "report.pdf",
	})
	require.NoError(t, err)
	require.Len(t, res.Files, 2)

	assert.NotEqual(t, res.Files[0].Name, res.Files[1].Name)
	for _, f := range res.Files {
		n, err := reloadPageCount(f.Data)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.NoError(t, ValidateStructure(f.Data))
	}
}

func TestSplit_EveryN(t *testing.T) {
	tr := NewTransformer(NewDefaultConfig())
	input := fixturePDF(t, 7)

	res, err := tr.Split(context.Background(), input, &SplitConfig{
		Mode: SplitEveryN, EveryN: 3, FileName: "chunks",
	})
	require.NoError(t, err)
	require.Len(t, res.Files, 3)

	wantPages := []int{3, 3, 1}
	for i, f := range res.Files {
		n, err := reloadPageCount(f.Data)
		require.NoError(t, err)
		assert.Equal(t, wantPages[i], n)
	}
}

func TestZipSplitResult(t *testing.T) {
	res := &SplitResult{Files: []SplitFile{
		{Name: "a.pdf", Data: []byte("one")},
		{Name: "b.pdf", Data: []byte("two")},
	}}

	data, err := ZipSplitResult(res)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "a.pdf", zr.File[0].Name)
	assert.Equal(t, "b.pdf", zr.File[1].Name)
}
