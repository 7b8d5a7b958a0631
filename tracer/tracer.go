// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package tracer

import (
	"fmt"
	"sync"
)

var (
	mu            sync.Mutex
	traceMessages []string
)

// Log just adds a message to the trace log.
// Safe to call from concurrent requests.
func Log(msg string) {
	mu.Lock()
	traceMessages = append(traceMessages, msg)
	mu.Unlock()
}

// Flush prints the accumulated trace log and resets it.
func Flush() {
	mu.Lock()
	msgs := traceMessages
	// reset so the next run starts fresh
	traceMessages = nil
	mu.Unlock()

	for _, msg := range msgs {
		fmt.Println(msg)
	}
}

// Messages returns a copy of the accumulated trace log without resetting it.
func Messages() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, len(traceMessages))
	copy(out, traceMessages)
	return out
}
