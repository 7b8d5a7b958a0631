// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Command pdftransform exposes the transformation engine against files on
// disk: annotate, watermark, split, merge, compress, plus the previews.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	transform "github.com/sassoftware/viya-pdf-transform"
	"github.com/sassoftware/viya-pdf-transform/logger"
)

// fileConfig is the optional YAML override for engine limits.
type fileConfig struct {
	MaxConcurrentJobs  int   `yaml:"maxConcurrentJobs"`
	LoadTimeoutFloorS  int   `yaml:"loadTimeoutFloorSeconds"`
	MaxFileBytes       int64 `yaml:"maxFileBytes"`
	MaxMergeTotalBytes int64 `yaml:"maxMergeTotalBytes"`
	MaxPageRetries     int   `yaml:"maxPageRetries"`
}

var (
	configPath string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:           "pdftransform",
		Short:         "Transform PDF documents: annotate, split, merge, compress",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file with engine limits")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newAnnotateCmd(),
		newWatermarkCmd(),
		newSplitCmd(),
		newMergeCmd(),
		newCompressCmd(),
		newEstimateCmd(),
		newPreviewCmd(),
		newValidateCmd(),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error (%s): %v\n", transform.Classify(err), err)
		os.Exit(1)
	}
}

func loadConfig() (*transform.Config, error) {
	cfg := transform.NewDefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if fc.MaxConcurrentJobs > 0 {
			cfg.MaxConcurrentJobs = fc.MaxConcurrentJobs
		}
		if fc.LoadTimeoutFloorS > 0 {
			cfg.LoadTimeoutFloor = time.Duration(fc.LoadTimeoutFloorS) * time.Second
		}
		if fc.MaxFileBytes > 0 {
			cfg.MaxFileBytes = fc.MaxFileBytes
		}
		if fc.MaxMergeTotalBytes > 0 {
			cfg.MaxMergeTotalBytes = fc.MaxMergeTotalBytes
		}
		if fc.MaxPageRetries > 0 {
			cfg.MaxPageRetries = fc.MaxPageRetries
		}
	}

	if verbose {
		cfg.Logger = func(level logger.LogLevel, msg string, keyvals ...interface{}) {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", level, msg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newEngine() (transform.Transformer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return transform.NewTransformer(cfg), nil
}

func newAnnotateCmd() *cobra.Command {
	cfg := &transform.HeaderFooterConfig{}
	var out string

	cmd := &cobra.Command{
		Use:   "annotate <input.pdf>",
		Short: "Draw header/footer text on each page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			input, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if cfg.FileLabel == "" {
				cfg.FileLabel = filepath.Base(args[0])
			}
			data, err := eng.HeaderFooter(cmd.Context(), input, cfg)
			if err != nil {
				return err
			}
			return writeOutput(out, args[0], "_annotated", data)
		},
	}

	cmd.Flags().StringVar(&cfg.LeftHeader, "left-header", "", "left header text")
	cmd.Flags().StringVar(&cfg.MiddleHeader, "middle-header", "", "middle header text")
	cmd.Flags().StringVar(&cfg.RightHeader, "right-header", "", "right header text")
	cmd.Flags().StringVar(&cfg.LeftFooter, "left-footer", "", "left footer text")
	cmd.Flags().StringVar(&cfg.MiddleFooter, "middle-footer", "", "middle footer text")
	cmd.Flags().StringVar(&cfg.RightFooter, "right-footer", "", "right footer text")
	cmd.Flags().IntVar(&cfg.StartPage, "start-page", 1, "first page to annotate (1-based)")
	cmd.Flags().BoolVar(&cfg.CoverWithWhite, "cover-white", false, "paint an opaque white band behind the text")
	cmd.Flags().StringVar(&cfg.TextColor, "color", "#000000", "text color (hex)")
	cmd.Flags().IntVar(&cfg.FontSize, "font-size", 10, "font size in points")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file")
	return cmd
}

func newWatermarkCmd() *cobra.Command {
	cfg := &transform.WatermarkConfig{}
	var (
		rotation int
		out      string
	)

	cmd := &cobra.Command{
		Use:   "watermark <input.pdf>",
		Short: "Draw a rotated translucent text mark on a page range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			input, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			cfg.Rotation = &rotation
			data, err := eng.Watermark(cmd.Context(), input, cfg)
			if err != nil {
				return err
			}
			return writeOutput(out, args[0], "_watermarked", data)
		},
	}

	cmd.Flags().StringVar(&cfg.Text, "text", "CONFIDENTIAL", "watermark text")
	cmd.Flags().IntVar(&cfg.FontSize, "font-size", 48, "font size in points (12-100)")
	cmd.Flags().Float64Var(&cfg.Opacity, "opacity", 0.3, "opacity (0.1-1.0)")
	cmd.Flags().StringVar(&cfg.Color, "color", "#000000", "text color (hex)")
	cmd.Flags().IntVar(&rotation, "rotation", 45, "rotation in degrees (-90..90)")
	cmd.Flags().StringVar(&cfg.Position, "position", "center", "center|top-left|top-right|bottom-left|bottom-right")
	cmd.Flags().IntVar(&cfg.StartPage, "start-page", 1, "first page (1-based)")
	cmd.Flags().IntVar(&cfg.EndPage, "end-page", 0, "last page, 0 = through end")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file")
	return cmd
}

func newSplitCmd() *cobra.Command {
	var (
		mode   string
		pages  []int
		ranges []string
		everyN int
		out    string
	)

	cmd := &cobra.Command{
		Use:   "split <input.pdf>",
		Short: "Partition a document into multiple outputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			input, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			cfg := &transform.SplitConfig{
				Mode:     transform.SplitMode(mode),
				Pages:    pages,
				EveryN:   everyN,
				FileName: filepath.Base(args[0]),
			}
			for _, r := range ranges {
				var pr transform.PageRange
				if _, err := fmt.Sscanf(r, "%d-%d", &pr.Start, &pr.End); err != nil {
					return fmt.Errorf("bad range %q, want start-end: %w", r, err)
				}
				cfg.Ranges = append(cfg.Ranges, pr)
			}

			res, err := eng.Split(cmd.Context(), input, cfg)
			if err != nil {
				return err
			}

			if len(res.Files) == 1 {
				return writeOutput(out, args[0], "_split", res.Files[0].Data)
			}

			zipped, err := transform.ZipSplitResult(res)
			if err != nil {
				return err
			}
			if out == "" {
				out = deriveName(args[0], "_split", ".zip")
			}
			return os.WriteFile(out, zipped, 0o644)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "every", "pages|ranges|every")
	cmd.Flags().IntSliceVar(&pages, "pages", nil, "1-based page numbers (pages mode)")
	cmd.Flags().StringSliceVar(&ranges, "ranges", nil, "start-end pairs, e.g. 1-5,6-10 (ranges mode)")
	cmd.Flags().IntVar(&everyN, "every", 1, "chunk size (every mode)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file")
	return cmd
}

func newMergeCmd() *cobra.Command {
	var (
		out       string
		bookmarks bool
	)

	cmd := &cobra.Command{
		Use:   "merge <a.pdf> <b.pdf> [more.pdf...]",
		Short: "Concatenate documents in argument order",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			inputs, err := readInputs(args)
			if err != nil {
				return err
			}

			res, err := eng.Merge(cmd.Context(), inputs, &transform.MergeConfig{
				OutputFileName: out,
				AddBookmarks:   bookmarks,
			})
			if err != nil {
				return err
			}

			for _, s := range res.SkippedPages {
				fmt.Fprintf(os.Stderr, "warning: skipped %s page %d: %s\n", s.Input, s.Page, s.Reason)
			}
			fmt.Fprintf(os.Stderr, "merged %d pages (%d skipped)\n", res.PageCount, len(res.SkippedPages))

			if out == "" {
				out = "merged.pdf"
			}
			return os.WriteFile(out, res.Data, 0o644)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "merged.pdf", "output file")
	cmd.Flags().BoolVar(&bookmarks, "bookmarks", false, "add an outline entry per source document")
	return cmd
}

func newCompressCmd() *cobra.Command {
	var (
		level    string
		stripped bool
		targetKB int
		out      string
	)

	cmd := &cobra.Command{
		Use:   "compress <input.pdf>",
		Short: "Reduce document size under a compression tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			input, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			res, err := eng.Compress(cmd.Context(), input, &transform.CompressConfig{
				Level:          transform.CompressionLevel(level),
				RemoveMetadata: stripped,
				TargetSizeKB:   targetKB,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "%d -> %d bytes (%.1f%% reduction)\n",
				res.OriginalSize, res.CompressedSize, res.ReductionPercent)
			return writeOutput(out, args[0], "_compressed", res.Data)
		},
	}

	cmd.Flags().StringVar(&level, "level", "medium", "low|medium|high|maximum")
	cmd.Flags().BoolVar(&stripped, "remove-metadata", false, "strip descriptive info fields")
	cmd.Flags().IntVar(&targetKB, "target-kb", 0, "stop once a candidate is at or under this size")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file")
	return cmd
}

func newEstimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estimate <input.pdf>",
		Short: "Project per-tier compression results without transforming",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			input, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			est, err := eng.EstimateCompression(cmd.Context(), input)
			if err != nil {
				return err
			}
			return printJSON(est)
		},
	}
}

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <a.pdf> <b.pdf> [more.pdf...]",
		Short: "Summarize merge inputs without mutating anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			inputs, err := readInputs(args)
			if err != nil {
				return err
			}
			pv, err := eng.PreviewMerge(cmd.Context(), inputs)
			if err != nil {
				return err
			}
			return printJSON(pv)
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <input.pdf>",
		Short: "Run the structural sniff checks against a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			input, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := transform.ValidateDocument(cmd.Context(), input, -1, cfg.LoadTimeoutFloor); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func readInputs(paths []string) ([]transform.MergeInput, error) {
	inputs := make([]transform.MergeInput, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, transform.MergeInput{Name: filepath.Base(p), Data: data})
	}
	return inputs, nil
}

func writeOutput(out, input, suffix string, data []byte) error {
	if out == "" {
		out = deriveName(input, suffix, ".pdf")
	}
	return os.WriteFile(out, data, 0o644)
}

func deriveName(input, suffix, ext string) string {
	base := input[:len(input)-len(filepath.Ext(input))]
	return base + suffix + ext
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
