/*
cdc6000 6612 operator console

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

// Package console6612 implements the 6612 operator console: a
// character/dot-mode screen addressed by 12-bit coordinate-bearing
// words, and an asynchronous keyboard ring buffer with an "autodate"
// pattern-matching injector. The screen itself is an abstract
// interface (package console6612 never draws pixels); callers supply
// a Screen, with NullScreen standing in for headless operation.
package console6612

import (
	"fmt"
	"time"

	"github.com/rcornwell/cdc6000/charset"
	"github.com/rcornwell/cdc6000/config/deviceconfig"
	"github.com/rcornwell/cdc6000/device"
	"github.com/rcornwell/cdc6000/event"
)

func init() {
	deviceconfig.RegisterModel("CONSOLE6612", newFromConfig)
}

// newFromConfig builds a 6612 console bound to channel. The console
// has no capture file, so the device-init parameter string carries
// nothing it needs; a console built here renders through NullScreen
// (only New takes a real Screen).
func newFromConfig(channel int, _ uint8, _ string) (device.Device, error) {
	return New(channel, nil), nil
}

// Font selects the character cell size, or dot-plotting mode.
type Font int

const (
	FontDot Font = iota
	FontSmall  // 64-char row
	FontMedium // 32-char row
	FontLarge  // 16-char row
)

// Offset selects which of the two side-by-side logical screens a word targets.
type Offset int

const (
	LeftScreen Offset = iota
	RightScreen
)

// Function codes.
const (
	SelDotLeft uint16 = iota
	SelDotRight
	Sel64CharLeft
	Sel64CharRight
	Sel32CharLeft
	Sel32CharRight
	Sel16CharLeft
	Sel16CharRight
	SelKeyIn
)

// ringSize is the keyboard ring buffer capacity (spec: 50).
const ringSize = 50

// Screen is the abstract rendering collaborator; package console6612
// never draws pixels itself.
type Screen interface {
	PutChar(offset Offset, font Font, ch byte)
	PlotDot(offset Offset, x, y int)
	SetHCoord(offset Offset, x int)
	SetVCoord(offset Offset, y int)
	Flush()
}

// NullScreen is a no-op Screen for headless operation and tests.
type NullScreen struct{}

func (NullScreen) PutChar(Offset, Font, byte)  {}
func (NullScreen) PlotDot(Offset, int, int)    {}
func (NullScreen) SetHCoord(Offset, int)       {}
func (NullScreen) SetVCoord(Offset, int)       {}
func (NullScreen) Flush()                      {}

// keyRing is a fixed-size lock-free single-producer/single-consumer
// FIFO of 6-bit keycodes. keyIn is written only by the producer,
// keyOut only by the consumer; overflow drops the newest key (I5).
type keyRing struct {
	buf    [ringSize]byte
	keyIn  int
	keyOut int
}

func (r *keyRing) empty() bool {
	return r.keyIn == r.keyOut
}

func (r *keyRing) push(ch byte) {
	next := (r.keyIn + 1) % ringSize
	if next == r.keyOut {
		return // full: drop the newest character
	}
	r.buf[r.keyIn] = ch
	r.keyIn = next
}

func (r *keyRing) pop() (byte, bool) {
	if r.empty() {
		return 0, false
	}
	ch := r.buf[r.keyOut]
	r.keyOut = (r.keyOut + 1) % ringSize
	return ch, true
}

// Console is a 6612 console context bound to one (channel, equipment) slot.
type Console struct {
	chanID int
	screen Screen

	currentFont   Font
	currentOffset Offset
	emptyDrop     bool

	ring    keyRing
	ppKeyIn byte

	getKeyCounter int

	autoDate       bool
	autoDateString string
	autoYearString string
	autoPos        int

	activeCode uint16

	now func() time.Time
}

// New constructs a 6612 console bound to the given channel, rendering
// through screen (NullScreen{} for headless operation).
func New(chanID int, screen Screen) *Console {
	if screen == nil {
		screen = NullScreen{}
	}
	return &Console{chanID: chanID, screen: screen, now: time.Now}
}

// ConfigureAutoDate enables the autodate injector with the given
// prompt pattern and two-digit year override.
func (c *Console) ConfigureAutoDate(pattern, year string) {
	c.autoDate = true
	c.autoDateString = pattern
	c.autoYearString = year
	c.autoPos = 0
}

// QueueKey is the producer endpoint: queues a push of a keycode from
// the windowing layer's input thread as event work; the key reaches
// the ring on the executive's next event.Drain. Safe to call
// concurrently with GetKey.
func (c *Console) QueueKey(ch byte) {
	event.Enqueue(func() {
		c.ring.push(ch)
	})
}

// GetKey is the consumer endpoint (consoleGetKey): throttles delivery
// to every 3rd call (spec §9: "intentional under-delivery"), modeling
// the typing rate real hardware produces.
func (c *Console) GetKey() byte {
	c.getKeyCounter++
	if c.getKeyCounter%3 != 1 {
		return 0
	}
	ch, ok := c.ring.pop()
	if !ok {
		return 0
	}
	return ch
}

// SetPPKey sets the scalar host-keycode input (ppKeyIn), mapped
// through the ASCII-to-console table by the caller before this call.
func (c *Console) SetPPKey(ch byte) {
	c.ppKeyIn = ch
}

// Func implements device.Device.
func (c *Console) Func(code uint16) device.FuncResult {
	switch code {
	case SelDotLeft:
		c.currentFont, c.currentOffset = FontDot, LeftScreen
	case SelDotRight:
		c.currentFont, c.currentOffset = FontDot, RightScreen
	case Sel64CharLeft:
		c.currentFont, c.currentOffset = FontSmall, LeftScreen
	case Sel64CharRight:
		c.currentFont, c.currentOffset = FontSmall, RightScreen
	case Sel32CharLeft:
		c.currentFont, c.currentOffset = FontMedium, LeftScreen
	case Sel32CharRight:
		c.currentFont, c.currentOffset = FontMedium, RightScreen
	case Sel16CharLeft:
		c.currentFont, c.currentOffset = FontLarge, LeftScreen
	case Sel16CharRight:
		c.currentFont, c.currentOffset = FontLarge, RightScreen
	case SelKeyIn:
		c.activeCode = code
		return device.Accepted
	default:
		return device.Declined
	}
	c.activeCode = code
	return device.Accepted
}

// IO implements device.Device.
func (c *Console) IO(ch *device.Channel) {
	if ch.Full {
		return
	}

	if c.activeCode == SelKeyIn {
		key := c.ppKeyIn
		if key == 0 {
			key = c.GetKey()
		}
		ch.Data = uint16(key)
		ch.Full = true
		c.activeCode = 0 // spec: fcode cleared as part of this transfer
		return
	}

	hi := (ch.Data >> 6) & 0o77
	switch {
	case hi < 0o60:
		lo := ch.Data & 0o77
		c.putDecoded(byte(hi))
		c.putDecoded(byte(lo))
	case hi <= 0o67:
		x := int(ch.Data & 0o777)
		c.screen.SetHCoord(c.currentOffset, x)
	default:
		y := int(ch.Data & 0o777)
		c.screen.SetVCoord(c.currentOffset, y)
		if c.currentFont == FontDot {
			c.screen.PlotDot(c.currentOffset, 0, y)
		}
	}
	ch.Full = true
}

// putDecoded maps one 6-bit display code through the console table,
// renders it, and feeds the autodate matcher when in Medium font.
func (c *Console) putDecoded(code byte) {
	ascii := charset.ConsoleToASCII[code]
	c.screen.PutChar(c.currentOffset, c.currentFont, ascii)
	if c.currentFont == FontMedium {
		c.matchAutoDate(ascii)
	}
}

func (c *Console) matchAutoDate(ch byte) {
	if !c.autoDate {
		return
	}
	if c.autoPos >= len(c.autoDateString) {
		c.autoPos = 0
	}
	if c.autoDateString[c.autoPos] != ch {
		c.autoPos = 0
		return
	}
	c.autoPos++
	if c.autoPos < len(c.autoDateString) {
		return
	}
	if !c.ring.empty() {
		return
	}
	c.injectDate()
	c.autoDate = false
}

// injectDate enqueues "YYMMDD\nHHMMSS\n" into the keyboard ring, YY
// overridden by autoYearString, per the autodate contract.
func (c *Console) injectDate() {
	now := c.now()
	stamp := fmt.Sprintf("%02d%02d\n%02d%02d%02d\n",
		now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second())
	line := c.autoYearString + stamp
	for i := 0; i < len(line); i++ {
		c.ring.push(line[i])
	}
}

// Activate implements device.Device.
func (c *Console) Activate() {}

// Disconnect implements device.Device. It clears the latched code and
// flushes the screen only while emptyDrop is set; nothing in this
// package sets emptyDrop, so Disconnect never flushes the screen.
func (c *Console) Disconnect() {
	c.activeCode = 0
	if c.emptyDrop {
		c.screen.Flush()
		c.emptyDrop = false
	}
}

// Options implements device.Capability.
func (c *Console) Options() string {
	return "autodate=<pattern>,<year>"
}

// Attach implements device.Capability: attach here configures the
// autodate injector rather than a file, since the console has no
// capture file of its own.
func (c *Console) Attach(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("console6612: attach requires pattern and year, got %d args", len(args))
	}
	c.ConfigureAutoDate(args[0], args[1])
	return nil
}

// Detach implements device.Capability: disables the autodate injector.
func (c *Console) Detach() error {
	c.autoDate = false
	return nil
}

// Set implements device.Capability.
func (c *Console) Set(opt string) error {
	switch opt {
	case "autodate-off":
		c.autoDate = false
	default:
		return fmt.Errorf("console6612: invalid option %q", opt)
	}
	return nil
}

// Show implements device.Capability.
func (c *Console) Show() string {
	return fmt.Sprintf("chan=%#o font=%d offset=%d autodate=%v", c.chanID, c.currentFont, c.currentOffset, c.autoDate)
}

// Debug implements device.Capability. The console has no debug
// sub-options of its own; any request is rejected.
func (c *Console) Debug(opt string) error {
	return fmt.Errorf("console6612: invalid debug option %q", opt)
}
