/*
cdc6000 Channel / device-slot protocol

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

// Package device implements the channel/device-slot protocol every
// peripheral plugs into: a numbered set of 12-bit channels, a slot
// registry keyed by (channel, equipment), and the four-callback
// capability contract (func/io/activate/disconnect) a PP uses to talk
// to an attached device.
package device

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxChannels is the number of PP channels modeled.
const MaxChannels = 20

// Channel is a numbered 12-bit I/O endpoint shared between a PP and
// the device occupying a slot on it.
type Channel struct {
	ID     int
	Data   uint16 // low 12 bits significant
	Full   bool   // producer has written Data, consumer must drain
	Status uint16 // low 12 bits significant
}

// FuncResult is the outcome of a Func call.
type FuncResult int

const (
	// Declined means the code is not recognized by this device.
	Declined FuncResult = iota
	// Accepted means the code is latched into the slot's FCode;
	// subsequent IO cycles are driven for this transaction.
	Accepted
	// Processed means the code was handled synchronously and is not latched.
	Processed
)

func (r FuncResult) String() string {
	switch r {
	case Accepted:
		return "Accepted"
	case Processed:
		return "Processed"
	default:
		return "Declined"
	}
}

// Device is the capability every peripheral exposes to the channel.
// A PP transaction begins with Func, proceeds through zero or more IO
// cycles alternating producer/consumer on Channel.Full, and ends with
// Disconnect. Devices must be re-entrant across transactions but
// single-threaded within one; none of these may block.
type Device interface {
	Func(code uint16) FuncResult
	IO(ch *Channel)
	Activate()
	Disconnect()
}

// Capability is the operator-facing side interface a device may
// additionally implement; not every device implements every method,
// so callers type-assert for the ones they need.
type Capability interface {
	Options() string
	Attach(args []string) error
	Detach() error
	Set(opt string) error
	Show() string
	Debug(opt string) error
}

// Slot holds everything the registry knows about one attached
// device: the owning channel, addressing, the latched function code,
// and the device itself.
type Slot struct {
	Channel      *Channel
	EqNo         uint8
	UnitNo       int
	DeviceType   string
	SelectedUnit int
	FCode        uint16
	Dev          Device
}

// Func drives the slot's Device.Func and, per invariant I1, only
// latches FCode on Accepted.
func (s *Slot) Func(code uint16) FuncResult {
	result := s.Dev.Func(code)
	if result == Accepted {
		s.FCode = code
	}
	return result
}

// IO drives one channel word through the slot's device.
func (s *Slot) IO() {
	s.Dev.IO(s.Channel)
}

// Activate notifies the device it has been selected.
func (s *Slot) Activate() {
	s.Dev.Activate()
}

// Disconnect notifies the device the PP has released the channel and
// clears the latched function code, completing the transaction.
func (s *Slot) Disconnect() {
	s.Dev.Disconnect()
	s.FCode = 0
}

// Step drives one cycle of the PP→channel→device contract: while slot
// has no function latched, code is submitted as a new function (per
// I1, only Accepted latches it); once a function is latched, code is
// ignored and one word is instead pumped over ch via Slot.IO. Callers
// loop Step across successive channel words and call Slot.Disconnect
// themselves once the transaction is over — Step has no way to know
// a transaction's length, since that decision belongs to the PP
// instruction stream this core does not implement.
func Step(ch *Channel, slot *Slot, code uint16) FuncResult {
	if slot.FCode == 0 {
		return slot.Func(code)
	}
	slot.Dev.IO(ch)
	return Processed
}

// key identifies a slot by channel and equipment number.
type key struct {
	channel int
	eqNo    uint8
}

// Registry is the table of attached devices, keyed by (channel, equipment).
type Registry struct {
	slots map[key]*Slot
}

// NewRegistry returns an empty device registry.
func NewRegistry() *Registry {
	return &Registry{slots: make(map[key]*Slot)}
}

// AddDevice attaches a slot at (channel, eqNo) tagged with deviceType
// (the model name it was created from). Returns an error if the slot
// is already occupied (a configuration error per the
// duplicate-unit-on-equipment case). UnitNo and SelectedUnit are
// always 0: the core does not model multiple logical units on a
// single equipment.
func (r *Registry) AddDevice(channel int, eqNo uint8, deviceType string, slot *Slot) error {
	k := key{channel, eqNo}
	if _, ok := r.slots[k]; ok {
		return fmt.Errorf("device: channel %d equipment %o already occupied", channel, eqNo)
	}
	if slot.Channel == nil {
		slot.Channel = &Channel{ID: channel}
	}
	slot.EqNo = eqNo
	slot.DeviceType = deviceType
	slot.UnitNo = 0
	slot.SelectedUnit = 0
	r.slots[k] = slot
	return nil
}

// Lookup returns the slot at (channel, eqNo), or nil if unoccupied.
func (r *Registry) Lookup(channel int, eqNo uint8) *Slot {
	return r.slots[key{channel, eqNo}]
}

// ParseChanEq parses an operator-supplied "chan,eq" string, both
// fields octal, as used by removePaper and the remote operator shell.
func ParseChanEq(s string) (channel int, eqNo uint8, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("device: malformed chan,eq %q", s)
	}
	c, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 8, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("device: bad channel in %q: %w", s, err)
	}
	e, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 8, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("device: bad equipment in %q: %w", s, err)
	}
	if c < 0 || c >= MaxChannels {
		return 0, 0, fmt.Errorf("device: channel %d out of range", c)
	}
	return int(c), uint8(e), nil
}
