/*
cdc6000 operator interface

	Copyright (c) 2024, Richard Cornwell

	Permission is hereby granted, free of charge, to any person obtaining a
	copy of this software and associated documentation files (the "Software"),
	to deal in the Software without restriction, including without limitation
	the rights to use, copy, modify, merge, publish, distribute, sublicense,
	and/or sell copies of the Software, and to permit persons to whom the
	Software is furnished to do so, subject to the following conditions:

	The above copyright notice and this permission notice shall be included in
	all copies or substantial portions of the Software.

	THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
	IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
	FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
	RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
	IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
	CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

// Package operator implements the operator-facing side of the
// emulator: paper removal (flush, timestamp-rename, reopen a
// printer's capture file) and a remote shell for issuing operator
// commands over the network, adapted from the same line discipline
// used by the emulator's console telnet server.
package operator

import (
	"fmt"
	"os"
	"time"

	"github.com/rcornwell/cdc6000/device"
	"github.com/rcornwell/cdc6000/util/debug"
)

// Kind selects the archive naming convention for removePaper.
type Kind int

const (
	LP1612 Kind = iota
	LP5xx
)

func (k Kind) prefix() string {
	if k == LP1612 {
		return "LP1612"
	}
	return "LP5xx"
}

// PaperDevice is the file-handling side interface a printer
// implements so removePaper can flush, rename, and reopen its
// capture file without operator importing the concrete printer
// packages. Satisfied by *printer1612.Printer and *printer5xx.Printer.
type PaperDevice interface {
	Flush() error
	Size() (int64, error)
	Close() error
	Reopen() error
	CapturePath() string
	Dir() string
}

// maxRenameAttempts bounds the rename-retry loop (spec §5: "bounded,
// ≤100 attempts").
const maxRenameAttempts = 100

// RemovePaper implements the removePaper operator command: locate the
// device at chan,eq, flush its capture file, and — unless the file is
// empty (R2, a no-op) — close it, rename it to a timestamped archive
// name, and reopen the original path in write-truncate mode.
//
// nowFn defaults to time.Now; it is re-invoked on every rename
// attempt so a collision can be retried against a later timestamp.
// handoff, if non-nil, is called with the archive path after a
// successful rename; its error is logged, not propagated (best-effort
// per spec §4.3).
func RemovePaper(reg *device.Registry, kind Kind, chanEq string, nowFn func() time.Time, handoff func(path string) error) error {
	if nowFn == nil {
		nowFn = time.Now
	}

	channel, eqNo, err := device.ParseChanEq(chanEq)
	if err != nil {
		debug.OperatorError("operator: removePaper %q: %v", chanEq, err)
		return err
	}

	slot := reg.Lookup(channel, eqNo)
	if slot == nil {
		err := fmt.Errorf("operator: removePaper: no device at %#o,%o", channel, eqNo)
		debug.OperatorError("%v", err)
		return err
	}

	pd, ok := slot.Dev.(PaperDevice)
	if !ok {
		err := fmt.Errorf("operator: removePaper: device at %#o,%o does not support paper removal", channel, eqNo)
		debug.OperatorError("%v", err)
		return err
	}

	if err := pd.Flush(); err != nil {
		debug.OperatorError("operator: removePaper: flush at %#o,%o: %v", channel, eqNo, err)
	}

	size, err := pd.Size()
	if err != nil {
		debug.OperatorError("operator: removePaper: stat at %#o,%o: %v", channel, eqNo, err)
		return err
	}
	if size == 0 {
		debug.OperatorError("operator: removePaper: no output has been written at %#o,%o", channel, eqNo)
		return nil // R2: idempotent no-op on an empty capture file
	}

	capturePath := pd.CapturePath()
	if err := pd.Close(); err != nil {
		debug.OperatorError("operator: removePaper: close at %#o,%o: %v", channel, eqNo, err)
		return err
	}

	archived := renameToArchive(pd.Dir(), kind, capturePath, nowFn)
	if archived == "" {
		debug.OperatorError("operator: removePaper: exhausted %d rename attempts at %#o,%o", maxRenameAttempts, channel, eqNo)
	}

	if err := pd.Reopen(); err != nil {
		debug.ConfigFatal("operator: removePaper: reopen at %#o,%o: %v", channel, eqNo, err)
		return err
	}

	if archived != "" && handoff != nil {
		if err := handoff(archived); err != nil {
			debug.OperatorError("operator: removePaper: print handoff for %s: %v", archived, err)
		}
	}
	return nil
}

// renameToArchive tries LP5xx_YYYYMMDD_hhmmss_NN[.txt] (NN 0..99),
// re-reading the wall clock between attempts, stopping at the first
// name that doesn't already exist. Returns "" if every attempt collided.
func renameToArchive(dir string, kind Kind, capturePath string, nowFn func() time.Time) string {
	for attempt := 0; attempt < maxRenameAttempts; attempt++ {
		candidate := archiveName(dir, kind, nowFn(), attempt)
		if _, err := os.Stat(candidate); err == nil {
			continue // collision: try again, possibly against a later clock read
		} else if !os.IsNotExist(err) {
			break
		}
		if err := os.Rename(capturePath, candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func archiveName(dir string, kind Kind, t time.Time, attempt int) string {
	name := fmt.Sprintf("%s_%s_%02d", kind.prefix(), t.Format("20060102_150405"), attempt)
	if kind == LP5xx {
		name += ".txt"
	}
	return dir + name
}
