// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    color.SimpleColor
		wantErr bool
	}{
		{"black", "#000000", color.SimpleColor{}, false},
		{"white", "#ffffff", color.SimpleColor{R: 1, G: 1, B: 1}, false},
		{"red no hash", "ff0000", color.SimpleColor{R: 1}, false},
		{"short form", "#f00", color.SimpleColor{R: 1}, false},
		{"uppercase", "#FF0000", color.SimpleColor{R: 1}, false},
		{"padded", "  #00ff00 ", color.SimpleColor{G: 1}, false},
		{"garbage", "#zzzzzz", color.SimpleColor{}, true},
		{"wrong length", "#ffff", color.SimpleColor{}, true},
		{"empty", "", color.SimpleColor{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInputInvalid)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want.R, got.R, 0.005)
			assert.InDelta(t, tt.want.G, got.G, 0.005)
			assert.InDelta(t, tt.want.B, got.B, 0.005)
		})
	}
}

func TestColorOrBlack(t *testing.T) {
	// Malformed colors degrade to black instead of failing the request.
	assert.Equal(t, color.Black, colorOrBlack("not-a-color"))
	assert.Equal(t, color.Black, colorOrBlack(""))

	c := colorOrBlack("#336699")
	assert.InDelta(t, 0x33/255.0, c.R, 0.005)
	assert.InDelta(t, 0x66/255.0, c.G, 0.005)
	assert.InDelta(t, 0x99/255.0, c.B, 0.005)
}
