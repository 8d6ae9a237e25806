// SPDX-FileCopyrightText: 2026 The guestinit authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"fmt"
	"io"
)

// Tracer emits verbose boot traces. It is held in [State] and handed to
// every stage, so enabling tracing is a single decision made once the
// command line has been parsed, not a mutable global.
//
// The zero value discards all traces.
type Tracer struct {
	out io.Writer
}

// NewTracer creates a tracer writing to the given writer.
func NewTracer(out io.Writer) *Tracer {
	return &Tracer{out: out}
}

// Enabled returns whether traces are written anywhere.
func (t *Tracer) Enabled() bool {
	return t != nil && t.out != nil
}

// Printf writes a single trace line.
func (t *Tracer) Printf(format string, args ...any) {
	if !t.Enabled() {
		return
	}

	_, _ = fmt.Fprintf(t.out, format+"\n", args...)
}

// PrintError prints an error to the writer (like [os.Stderr]).
func PrintError(dst io.Writer, err error) {
	_, _ = fmt.Fprintf(dst, "Error: %v\n", err)
}
