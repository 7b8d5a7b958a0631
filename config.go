// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sassoftware/viya-pdf-transform/logger"
)

// Config carries the per-process knobs of the transformation engine.
// Every request is otherwise self-contained and stateless.
type Config struct {
	// MaxConcurrentJobs bounds how many transformation requests run at once.
	MaxConcurrentJobs int `validate:"min=1,max=32"`

	// LoadTimeoutFloor is the minimum load timeout. The effective timeout
	// grows with input size: max(floor, 1s per MB).
	LoadTimeoutFloor time.Duration `validate:"required"`

	// MaxFileBytes is the per-file size ceiling, enforced before any load.
	MaxFileBytes int64 `validate:"min=1"`

	// MaxMergeTotalBytes is the aggregate ceiling across all merge inputs.
	MaxMergeTotalBytes int64 `validate:"min=1"`

	// MaxPageRetries is how many times a failed page copy is retried
	// individually before the page is skipped with a warning.
	MaxPageRetries int `validate:"min=0,max=3"`

	DebugOn bool
	Logger  logger.LogFunc
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxConcurrentJobs:  5,
		LoadTimeoutFloor:   30 * time.Second,
		MaxFileBytes:       200 << 20,
		MaxMergeTotalBytes: 500 << 20,
		MaxPageRetries:     1,
		DebugOn:            false,
	}
}

func (cfg *Config) Validate() error {
	logger.Debug("Validating Config Object")
	validate := validator.New()
	return validate.Struct(cfg)
}
