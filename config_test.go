// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *Config
		shouldErr bool
	}{
		{
			name: "valid config",
			cfg: &Config{
				MaxConcurrentJobs:  10,
				LoadTimeoutFloor:   30 * time.Second,
				MaxFileBytes:       100 << 20,
				MaxMergeTotalBytes: 300 << 20,
				MaxPageRetries:     1,
			},
			shouldErr: false,
		},
		{
			name: "invalid MaxConcurrentJobs (too low)",
			cfg: &Config{
				MaxConcurrentJobs:  0,
				LoadTimeoutFloor:   30 * time.Second,
				MaxFileBytes:       100 << 20,
				MaxMergeTotalBytes: 300 << 20,
				MaxPageRetries:     1,
			},
			shouldErr: true,
		},
		{
			name: "missing LoadTimeoutFloor",
			cfg: &Config{
				MaxConcurrentJobs:  5,
				LoadTimeoutFloor:   0,
				MaxFileBytes:       100 << 20,
				MaxMergeTotalBytes: 300 << 20,
				MaxPageRetries:     1,
			},
			shouldErr: true,
		},
		{
			name: "invalid MaxFileBytes",
			cfg: &Config{
				MaxConcurrentJobs:  5,
				LoadTimeoutFloor:   30 * time.Second,
				MaxFileBytes:       0,
				MaxMergeTotalBytes: 300 << 20,
				MaxPageRetries:     1,
			},
			shouldErr: true,
		},
		{
			name: "invalid MaxPageRetries (too high)",
			cfg: &Config{
				MaxConcurrentJobs:  5,
				LoadTimeoutFloor:   30 * time.Second,
				MaxFileBytes:       100 << 20,
				MaxMergeTotalBytes: 300 << 20,
				MaxPageRetries:     10,
			},
			shouldErr: true,
		},
		{
			name:      "default config is valid",
			cfg:       NewDefaultConfig(),
			shouldErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.shouldErr {
				assert.Error(t, err, "expected validation error")
			} else {
				assert.NoError(t, err, "expected validation to pass")
			}
		})
	}
}
