/*
 * cdc6000 - Per-device debug logging
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package debug gates per-device trace logging behind a bit mask: every
// device package in this module keeps its own debugMsk and asks this
// package whether a level is enabled before formatting a message,
// same convention as the teacher's util/debug package, rebuilt on top
// of log/slog instead of a private log file so it composes with
// util/logger.
package debug

import (
	"fmt"
	"log/slog"
)

// DebugDevf logs a device-scoped trace line when level is set in mask.
func DebugDevf(channel int, equipment uint8, mask int, level int, format string, a ...interface{}) {
	if (mask & level) == 0 {
		return
	}
	slog.Debug(fmt.Sprintf(format, a...), "channel", channel, "equipment", equipment)
}

// DebugChanf logs a channel-scoped trace line when level is set in mask.
func DebugChanf(channel int, mask int, level int, format string, a ...interface{}) {
	if (mask & level) == 0 {
		return
	}
	slog.Debug(fmt.Sprintf(format, a...), "channel", channel)
}

// OperatorError logs a kind-2 runtime operator error (spec error kind 2):
// reported to the log, emulator continues.
func OperatorError(format string, a ...interface{}) {
	slog.Warn(fmt.Sprintf(format, a...))
}

// InvariantBreach logs a kind-3 invariant breach: a NOP with a trace.
func InvariantBreach(channel int, equipment uint8, format string, a ...interface{}) {
	slog.Info(fmt.Sprintf(format, a...), "channel", channel, "equipment", equipment)
}

// ConfigFatal logs a kind-1 fatal configuration error. Callers decide
// whether to terminate; this package never calls os.Exit itself.
func ConfigFatal(format string, a ...interface{}) {
	slog.Error(fmt.Sprintf(format, a...))
}
