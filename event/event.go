/*
 * cdc6000 - Cooperative executive work queue
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

// Package event is the executive's single ordered list of pending
// work, consumed by a Drain call. Unlike a timed scheduler this core
// has no cycle-counted delay to offer: work is either run immediately
// or queued for the next time the single-threaded executive is free
// to visit it, which is the only suspension this core's device
// callbacks are allowed (spec: "no suspension points within a
// callback"). It exists to let the console's keyboard ring hand a
// host-thread-originated key event to the executive without the
// producer ever calling into device code directly.
package event

import "sync"

// list is the process-wide queue of pending work.
var (
	mu   sync.Mutex
	list []func()
)

// Enqueue appends fn to the pending work list. Safe to call from any
// goroutine (the producer side of the keyboard ring runs on a
// separate input thread in some host environments).
func Enqueue(fn func()) {
	mu.Lock()
	list = append(list, fn)
	mu.Unlock()
}

// Drain runs every pending work item, in submission order, and
// empties the queue. Called by the single-threaded executive between
// device callbacks; must never be called concurrently with itself.
func Drain() {
	mu.Lock()
	pending := list
	list = nil
	mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

// Pending reports whether any work is queued, for tests and for an
// executive that wants to avoid an idle Drain call.
func Pending() bool {
	mu.Lock()
	defer mu.Unlock()
	return len(list) > 0
}
