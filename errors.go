// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package transform

import "errors"

// Sentinel errors classifying every failure this package returns.
// Callers match with errors.Is; the wrapped detail string carries the
// human-readable part of the contract.
var (
	// ErrInputInvalid is returned when an input is not a well-formed PDF,
	// the file count is wrong, or the configuration is malformed.
	ErrInputInvalid = errors.New("input invalid")

	// ErrResourceExceeded is returned when a file or aggregate payload is
	// over the configured ceiling. Rejected before any load begins.
	ErrResourceExceeded = errors.New("size limit exceeded")

	// ErrProcessingTimeout is returned when the size-proportional load
	// timeout elapses. The request may succeed if the caller splits the
	// file first.
	ErrProcessingTimeout = errors.New("processing timeout, try splitting the file first")

	// ErrStructuralValidation is returned when a produced byte sequence
	// fails the post-write structural checks. No artifact is returned.
	ErrStructuralValidation = errors.New("structural validation failed")

	// ErrSplitPolicyEmpty is returned when a split policy resolves to zero
	// page groups after out-of-range filtering.
	ErrSplitPolicyEmpty = errors.New("split policy selected no pages")
)

// Classify maps an error to its short classification string for the
// external contract. Unrecognized errors classify as "internal".
func Classify(err error) string {
	switch {
	case errors.Is(err, ErrInputInvalid):
		return "input-invalid"
	case errors.Is(err, ErrResourceExceeded):
		return "size-exceeded"
	case errors.Is(err, ErrProcessingTimeout):
		return "timeout"
	case errors.Is(err, ErrStructuralValidation):
		return "validation-failed"
	case errors.Is(err, ErrSplitPolicyEmpty):
		return "split-empty"
	default:
		return "internal"
	}
}
