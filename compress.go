// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sassoftware/viya-pdf-transform/logger"
)

// CompressionLevel is one of four ordinal aggressiveness tiers.
type CompressionLevel string

const (
	CompressionLow     CompressionLevel = "low"
	CompressionMedium  CompressionLevel = "medium"
	CompressionHigh    CompressionLevel = "high"
	CompressionMaximum CompressionLevel = "maximum"
)

// CompressConfig carries the compression options from the wire contract.
type CompressConfig struct {
	Level          CompressionLevel `validate:"omitempty,oneof=low medium high maximum"`
	RemoveMetadata bool
	TargetSizeKB   int
	OutputFileName string
}

// CompressResult reports the chosen output and the size delta.
type CompressResult struct {
	Data             []byte
	Level            CompressionLevel
	OriginalSize     int64
	CompressedSize   int64
	ReductionPercent float64
	MetadataRemoved  bool
}

// saveProfile is one save-time configuration attempted during the tier
// search: object-stream usage, cross-reference stream usage, and whether
// the primitives' optimizer pass runs before serialization.
type saveProfile struct {
	name          string
	objectStreams bool
	xrefStreams   bool
	optimize      bool
}

// conservativeProfile is the known-good fallback when every ranked profile
// produces invalid output.
var conservativeProfile = saveProfile{name: "compat-rewrite"}

// profilesFor returns the ranked profile list for a tier. Lists are
// cumulative: every profile a lower tier tries is also tried by the tiers
// above it, so a higher tier can never settle on a larger output.
func profilesFor(level CompressionLevel) []saveProfile {
	packed := saveProfile{name: "packed-optimize", objectStreams: true, xrefStreams: true, optimize: true}
	optimized := saveProfile{name: "compat-optimize", optimize: true}

	switch level {
	case CompressionLow:
		return []saveProfile{conservativeProfile}
	case CompressionMedium:
		return []saveProfile{optimized, conservativeProfile}
	default: // high, maximum
		return []saveProfile{packed, optimized, conservativeProfile}
	}
}

// applyProfile re-serializes input under the profile's save configuration.
func applyProfile(input []byte, p saveProfile) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = p.objectStreams
	conf.WriteXRefStream = p.xrefStreams

	var buf bytes.Buffer
	if p.optimize {
		if err := api.Optimize(bytes.NewReader(input), &buf, conf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	pctx, err := api.ReadContext(bytes.NewReader(input), conf)
	if err != nil {
		return nil, err
	}
	if err := api.WriteContext(pctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rebuildDocument copies every page into a fresh document graph, shedding
// stale indirect objects the incremental history may carry. Used by the
// maximum tier before the profile search.
func rebuildDocument(ctx context.Context, input []byte, floor time.Duration) ([]byte, error) {
	pctx, err := loadContext(ctx, input, permissiveConf(), loadTimeout(floor, len(input)))
	if err != nil {
		return nil, err
	}
	pages := make([]int, pctx.PageCount)
	for i := range pages {
		pages[i] = i + 1
	}
	return copyPages(pctx, pages)
}

// Compress re-serializes the document under the tier's ranked profile
// list, keeping the smallest output that passes the validity re-load
// check. A smaller-but-invalid candidate is never chosen; if no candidate
// beats the input, the input bytes are returned unchanged.
func (t *transformer) Compress(ctx context.Context, input []byte, cfg *CompressConfig) (*CompressResult, error) {
	if err := t.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	if int64(len(input)) > t.cfg.MaxFileBytes {
		return nil, fmt.Errorf("%w: %d bytes, per-file limit %d",
			ErrResourceExceeded, len(input), t.cfg.MaxFileBytes)
	}

	if cfg == nil {
		cfg = &CompressConfig{}
	}
	level := cfg.Level
	if level == "" {
		level = CompressionMedium
	}

	origPages, err := reloadPageCount(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputInvalid, err)
	}

	logger.Debug(fmt.Sprintf("Starting compression: level=%s size=%d pages=%d", level, len(input), origPages), true)

	working := input
	metadataRemoved := false
	if cfg.RemoveMetadata {
		working, metadataRemoved = t.stripMetadata(ctx, working)
	}

	// The maximum tier also rebuilds into a fresh graph and searches both
	// bases, so its candidate set strictly contains the high tier's.
	bases := [][]byte{working}
	if level == CompressionMaximum {
		rebuilt, err := rebuildDocument(ctx, working, t.cfg.LoadTimeoutFloor)
		if err != nil {
			logger.Debug(fmt.Sprintf("Rebuild pass failed, continuing with original graph: err=%v", err), true)
		} else if n, rerr := reloadPageCount(rebuilt); rerr == nil && n == origPages {
			bases = append([][]byte{rebuilt}, bases...)
		}
	}

	targetBytes := int64(cfg.TargetSizeKB) * 1024

	var best []byte
search:
	for _, base := range bases {
		for _, p := range profilesFor(level) {
			cand, err := applyProfile(base, p)
			if err != nil {
				logger.Debug(fmt.Sprintf("Profile failed: profile=%s err=%v", p.name, err), true)
				continue
			}
			if n, err := reloadPageCount(cand); err != nil || n != origPages {
				logger.Debug(fmt.Sprintf("Profile produced invalid output: profile=%s err=%v", p.name, err), true)
				continue
			}
			if best == nil || len(cand) < len(best) {
				best = cand
				logger.Debug(fmt.Sprintf("New best candidate: profile=%s bytes=%d", p.name, len(cand)), true)
			}
			if targetBytes > 0 && int64(len(best)) <= targetBytes {
				break search
			}
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: no save profile produced a valid document", ErrStructuralValidation)
	}

	out := best
	if len(out) >= len(input) && !metadataRemoved {
		// The untouched input is itself a valid candidate.
		out = input
	}

	res := &CompressResult{
		Data:            out,
		Level:           level,
		OriginalSize:    int64(len(input)),
		CompressedSize:  int64(len(out)),
		MetadataRemoved: metadataRemoved,
	}
	if res.OriginalSize > 0 {
		res.ReductionPercent = 100 * float64(res.OriginalSize-res.CompressedSize) / float64(res.OriginalSize)
	}

	logger.Debug(fmt.Sprintf("Compression completed: level=%s original=%d compressed=%d reduction=%.1f%%",
		level, res.OriginalSize, res.CompressedSize, res.ReductionPercent), true)

	return res, nil
}

// stripMetadata removes descriptive info-dictionary fields and
// re-serializes. On any failure the original bytes are kept.
func (t *transformer) stripMetadata(ctx context.Context, input []byte) ([]byte, bool) {
	pctx, err := loadContext(ctx, input, permissiveConf(), loadTimeout(t.cfg.LoadTimeoutFloor, len(input)))
	if err != nil {
		logger.Debug(fmt.Sprintf("Metadata strip skipped, load failed: err=%v", err), true)
		return input, false
	}
	if !stripInfoMetadata(pctx) {
		return input, false
	}
	out, err := writeContext(pctx)
	if err != nil {
		logger.Debug(fmt.Sprintf("Metadata strip skipped, write failed: err=%v", err), true)
		return input, false
	}
	return out, true
}

// TierEstimate is one tier's projected size reduction range.
type TierEstimate struct {
	Level          CompressionLevel `json:"level"`
	MinPercent     float64          `json:"minPercent"`
	MaxPercent     float64          `json:"maxPercent"`
	ProjectedBytes int64            `json:"projectedBytes"`
}

// CompressionEstimate is the preview-only projection. It inspects raw byte
// content for markers correlated with compressibility and never runs the
// real compression path.
type CompressionEstimate struct {
	OriginalBytes int64          `json:"originalBytes"`
	Tiers         []TierEstimate `json:"tiers"`
}

// tierFactors scale the base estimate per tier, in tier order.
var tierFactors = []struct {
	level  CompressionLevel
	factor float64
}{
	{CompressionLow, 0.4},
	{CompressionMedium, 0.7},
	{CompressionHigh, 1.0},
	{CompressionMaximum, 1.2},
}

// EstimateCompression projects a bounded reduction percentage range per
// tier from static content inspection. Explicitly an approximation.
func (t *transformer) EstimateCompression(ctx context.Context, input []byte) (*CompressionEstimate, error) {
	if err := t.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	if err := ValidateStructure(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputInvalid, err)
	}

	base := estimateBasePercent(input)

	est := &CompressionEstimate{OriginalBytes: int64(len(input))}
	for _, tf := range tierFactors {
		mid := clampPercent(base * tf.factor)
		min := clampPercent(mid * 0.66)
		max := clampPercent(mid * 1.33)
		est.Tiers = append(est.Tiers, TierEstimate{
			Level:          tf.level,
			MinPercent:     min,
			MaxPercent:     max,
			ProjectedBytes: int64(float64(len(input)) * (1 - mid/100)),
		})
	}
	return est, nil
}

// estimateBasePercent derives the raw compressibility signal from static
// markers: object-stream absence, whitespace ratio, font/stream density
// and removable metadata.
func estimateBasePercent(b []byte) float64 {
	base := 5.0

	if !bytes.Contains(b, []byte("/ObjStm")) {
		// No object streams yet: repacking usually wins the most.
		base += 10
	}

	sample := b
	if len(sample) > 512<<10 {
		sample = sample[:512<<10]
	}
	ws := 0
	for _, c := range sample {
		if c == ' ' || c == '\n' || c == '\r' || c == '\t' {
			ws++
		}
	}
	wsRatio := float64(ws) / float64(len(sample))
	if wsRatio > 0.10 {
		base += wsRatio * 40
	}

	kb := float64(len(b)) / 1024
	if kb > 0 {
		fontDensity := float64(bytes.Count(b, []byte("/Font"))) / kb
		if fontDensity > 0.5 {
			base += 5
		}
		streamDensity := float64(bytes.Count(b, []byte("stream"))) / kb
		if streamDensity > 2 {
			// Already stream-heavy content compresses little further.
			base -= 3
		}
	}

	for _, k := range infoMetadataKeys {
		if bytes.Contains(b, []byte("/"+k)) {
			base += 2
			break
		}
	}

	return base
}

func clampPercent(p float64) float64 {
	if p < 1 {
		return 1
	}
	if p > 60 {
		return 60
	}
	return p
}
