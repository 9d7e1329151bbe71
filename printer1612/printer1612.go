/*
cdc6000 1612 line printer

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

// Package printer1612 implements the 1612 line printer: one function
// code at a time, ASCII or ANSI/ASA carriage-control output. The
// simplest of the printer families; no preprint/postprint split, no
// interrupt latching.
package printer1612

import (
	"errors"
	"fmt"
	"os"

	"github.com/rcornwell/cdc6000/charset"
	"github.com/rcornwell/cdc6000/config/deviceconfig"
	"github.com/rcornwell/cdc6000/device"
	"github.com/rcornwell/cdc6000/util/debug"
)

func init() {
	deviceconfig.RegisterModel("LP1612", newFromConfig)
}

// newFromConfig builds and opens a 1612 printer from the
// "path,,mode" device-init parameter string (controllerType is
// unused by this model).
func newFromConfig(channel int, _ uint8, params string) (device.Device, error) {
	p := deviceconfig.ParseParams(params)
	printer := New(channel, p.Path, p.ANSI)
	if err := printer.Open(); err != nil {
		return nil, err
	}
	return printer, nil
}

// Function codes, octal, lower 6 bits.
const (
	Select       uint16 = 0o00
	SingleSpace  uint16 = 0o01
	DoubleSpace  uint16 = 0o02
	MoveCh7      uint16 = 0o03
	MoveTOF      uint16 = 0o04
	Print        uint16 = 0o05
	SuppressLF   uint16 = 0o06
	StatusReq    uint16 = 0o07
	ClearFormat  uint16 = 0o10
	Format1      uint16 = 0o11
	Format6      uint16 = 0o16
)

// StPrintReady is status bit 0, the ready bit. StatusReq replies with
// the channel's Status as armed by the previous StatusReq, so the first
// reply on a channel is 0 (see IO).
const StPrintReady uint16 = 0o1

// Debug options.
const (
	debugCmd = 1 << iota
	debugData
)

var debugOption = map[string]int{
	"CMD":  debugCmd,
	"DATA": debugData,
}

// asciiAdvance and ansiAdvance map an Accepted spacing code to its
// ASCII and ANSI deferred-advance text. Select, ClearFormat and
// Format1..6 have no entry: they produce no output.
var asciiAdvance = map[uint16]string{
	SingleSpace: "\n",
	MoveCh7:     "\n",
	Print:       "\n",
	DoubleSpace: "\n\n",
	MoveTOF:     "\f",
}

var ansiAdvance = map[uint16]string{
	SingleSpace: "\n ",
	MoveCh7:     "\n ",
	Print:       "\n ",
	DoubleSpace: "\n0",
	MoveTOF:     "\n1",
}

// Printer is a 1612 line-printer context, one per (channel, equipment) slot.
type Printer struct {
	chanID  int
	path    string
	useANSI bool
	file    *os.File

	pendingAdvance string
	activeCode     uint16
	debugMsk       int
}

// New constructs a 1612 printer bound to the given channel.
func New(chanID int, path string, useANSI bool) *Printer {
	return &Printer{chanID: chanID, path: path, useANSI: useANSI}
}

// outputPath is the active capture file name per spec §6.
func (p *Printer) outputPath() string {
	return fmt.Sprintf("%sLP1612_C%02o", p.path, p.chanID)
}

// Open creates the capture file; a configuration error (kind 1) if it fails.
func (p *Printer) Open() error {
	f, err := os.Create(p.outputPath())
	if err != nil {
		debug.ConfigFatal("printer1612: channel %#o: open %s: %v", p.chanID, p.outputPath(), err)
		return err
	}
	p.file = f
	return nil
}

// Func implements device.Device.
func (p *Printer) Func(code uint16) device.FuncResult {
	switch code {
	case SuppressLF:
		if p.file == nil {
			debug.InvariantBreach(p.chanID, 0, "printer1612: SuppressLF with no open file")
			return device.Processed
		}
		if _, err := p.file.WriteString("\r"); err != nil {
			debug.OperatorError("printer1612: write failed: %v", err)
		}
		return device.Processed

	case StatusReq:
		p.activeCode = code
		return device.Accepted

	case Select, ClearFormat, Format1, Format1 + 1, Format1 + 2, Format1 + 3, Format1 + 4, Format6:
		debug.DebugDevf(p.chanID, 0, p.debugMsk, debugCmd, "printer1612: func %#o (no output)", code)
		p.activeCode = code
		return device.Accepted

	case SingleSpace, DoubleSpace, MoveCh7, MoveTOF, Print:
		if p.useANSI {
			p.pendingAdvance = ansiAdvance[code]
		} else {
			p.pendingAdvance = asciiAdvance[code]
		}
		p.activeCode = code
		return device.Accepted

	default:
		debug.InvariantBreach(p.chanID, 0, "printer1612: unknown function code %#o", code)
		return device.Declined
	}
}

// IO implements device.Device. For StatusReq it delivers the quirked
// status word (spec §9 open question): channel.status as set by the
// *previous* StatusReq transaction, with this transaction re-arming
// it for the next one. For data-carrying codes it decodes one
// external-BCD character and appends it to the file.
func (p *Printer) IO(ch *device.Channel) {
	if ch.Full {
		return
	}

	if p.activeCode == StatusReq {
		ch.Data = ch.Status
		ch.Status = StPrintReady
		ch.Full = true
		p.activeCode = 0
		return
	}

	if p.file == nil {
		debug.InvariantBreach(p.chanID, 0, "printer1612: IO with no open file")
		ch.Full = true
		return
	}
	code := byte(ch.Data & 0o77)
	ascii := charset.ExtBCDToASCII[code]
	if _, err := p.file.WriteString(string(ascii)); err != nil {
		debug.OperatorError("printer1612: write failed: %v", err)
	}
	debug.DebugDevf(p.chanID, 0, p.debugMsk, debugData, "printer1612: wrote %q", ascii)
	ch.Full = true
}

// Activate implements device.Device.
func (p *Printer) Activate() {}

// Disconnect implements device.Device. Flushes any pending carriage
// advance accumulated since Func accepted a spacing code; this is
// what produces the documented "characters then advance" ordering.
func (p *Printer) Disconnect() {
	p.activeCode = 0
	if p.pendingAdvance == "" {
		return
	}
	if p.file != nil {
		if _, err := p.file.WriteString(p.pendingAdvance); err != nil {
			debug.OperatorError("printer1612: write failed: %v", err)
		}
	}
	p.pendingAdvance = ""
}

// Flush implements operator.PaperDevice.
func (p *Printer) Flush() error {
	if p.file == nil {
		return nil
	}
	return p.file.Sync()
}

// Size implements operator.PaperDevice: bytes written to the active
// capture file, used by removePaper's empty-file no-op check (R2).
func (p *Printer) Size() (int64, error) {
	if p.file == nil {
		return 0, nil
	}
	fi, err := p.file.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Close implements operator.PaperDevice.
func (p *Printer) Close() error {
	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	return err
}

// Reopen implements operator.PaperDevice: recreates the active
// capture file in write-truncate mode.
func (p *Printer) Reopen() error {
	return p.Open()
}

// CapturePath implements operator.PaperDevice.
func (p *Printer) CapturePath() string {
	return p.outputPath()
}

// Dir implements operator.PaperDevice.
func (p *Printer) Dir() string {
	return p.path
}

// Options implements device.Capability.
func (p *Printer) Options() string {
	return "file=<path>"
}

// Attach implements device.Capability.
func (p *Printer) Attach(args []string) error {
	if len(args) == 0 {
		return errors.New("printer1612: attach requires a file path")
	}
	_ = p.Detach()
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	p.file = f
	return nil
}

// Detach implements device.Capability.
func (p *Printer) Detach() error {
	if p.file != nil {
		err := p.file.Close()
		p.file = nil
		return err
	}
	return nil
}

// Set implements device.Capability.
func (p *Printer) Set(opt string) error {
	switch opt {
	case "ansi":
		p.useANSI = true
	case "ascii":
		p.useANSI = false
	default:
		return fmt.Errorf("printer1612: invalid option %q", opt)
	}
	return nil
}

// Show implements device.Capability.
func (p *Printer) Show() string {
	mode := "ascii"
	if p.useANSI {
		mode = "ansi"
	}
	name := "not attached"
	if p.file != nil {
		name = p.file.Name()
	}
	return fmt.Sprintf("chan=%#o mode=%s %s", p.chanID, mode, name)
}

// Debug implements device.Capability.
func (p *Printer) Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return fmt.Errorf("printer1612: invalid debug option %q", opt)
	}
	p.debugMsk |= flag
	return nil
}
