// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrInputInvalid, "input-invalid"},
		{ErrResourceExceeded, "size-exceeded"},
		{ErrProcessingTimeout, "timeout"},
		{ErrStructuralValidation, "validation-failed"},
		{ErrSplitPolicyEmpty, "split-empty"},
		{errors.New("something else"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
			// Wrapped details keep their classification.
			assert.Equal(t, tt.want, Classify(fmt.Errorf("op failed: %w", tt.err)))
		})
	}
}
