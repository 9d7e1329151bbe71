/*
cdc6000 3000-series line printer

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

// Package printer5xx implements the 501/512 printhead crossed with the
// 3152/3555 controller family: preprint/postprint spacing, latched
// interrupts with separate enable bits, fill-image-memory discard,
// VFU no-ops, and the paper-removal rename cycle (delegated to
// package operator).
package printer5xx

import (
	"fmt"
	"os"

	"github.com/rcornwell/cdc6000/charset"
	"github.com/rcornwell/cdc6000/config/deviceconfig"
	"github.com/rcornwell/cdc6000/device"
	"github.com/rcornwell/cdc6000/util/debug"
)

func init() {
	deviceconfig.RegisterModel("LP5XX", newFromConfig)
}

// newFromConfig builds and opens a 3000-series printer from the
// "path,controllerType,mode" device-init parameter string. The head
// (501 vs 512) is not carried on the wire; it defaults to 501.
func newFromConfig(channel int, eqNo uint8, params string) (device.Device, error) {
	p := deviceconfig.ParseParams(params)
	ctlr := Controller3555
	if p.Controller == "3152" {
		ctlr = Controller3152
	}
	printer := New(channel, eqNo, Head501, ctlr, p.Path, p.ANSI)
	if err := printer.Open(); err != nil {
		return nil, err
	}
	return printer, nil
}

// Head selects the I/O byte encoding.
type Head int

const (
	Head501 Head = iota // two display-code chars per word
	Head512              // low 8 bits of each word is one ASCII byte
)

// Controller selects the function-code vocabulary.
type Controller int

const (
	Controller3555 Controller = iota
	Controller3152
)

// Function codes, common to both controllers.
const (
	Release uint16 = iota
	Single
	Double
	LastLine
	Eject
	AutoEject
	NoSpace
	Output
)

// Shared controller codes.
const (
	MasterClear uint16 = 0o20 + iota
	ClearFormat
	SelectPreprint
	SelIntReady
	RelIntReady
	SelIntEnd
	RelIntEnd
	StatusReq
	FillMemory
	Release2
)

// SpaceOpt is the pending spacing amount for the next advance.
type SpaceOpt int

const (
	SpaceSingle SpaceOpt = iota
	SpaceDouble
)

// StPrintReady is status bit 0.
const StPrintReady uint16 = 0o1

// Interrupt status bits, visible only while their enable bit is set (I4).
const (
	StIntReady uint16 = 0o2
	StIntEnd   uint16 = 0o4
)

// discardShift is how far a latched code is shifted to produce its
// FillImageMem "discard" variant; the discard path drains words
// without printing them.
const discardShift = 0o400

// Debug options.
const (
	debugCmd = 1 << iota
	debugData
)

var debugOption = map[string]int{
	"CMD":  debugCmd,
	"DATA": debugData,
}

// Printer is a 3000-series line-printer context bound to one
// (channel, equipment) slot.
type Printer struct {
	chanID int
	eqNo   uint8
	head   Head
	ctlr   Controller
	path   string

	useANSI bool
	file    *os.File

	intReady, intEnd       bool
	intReadyEna, intEndEna bool
	fillImageMem           bool
	keepInt                bool

	printed      bool
	spaceOpt     SpaceOpt
	lpi          int
	lpp          int
	curLine      int
	suppressNext bool
	postprint    bool
	anyOutput    bool // true once any byte has ever reached the file (I6 first-line guard)

	activeCode uint16

	// PreprintTabDebug reproduces the documented "experimental"
	// preprint-disconnect tab path byte for byte. Default true.
	PreprintTabDebug bool

	// OnPaperFull is invoked by Release/Release2 when bytes have been
	// printed since the last release, triggering the operator
	// paper-removal rename cycle. Wired by the initialization layer
	// to operator.RemovePaper; nil is a valid no-op.
	OnPaperFull func()

	debugMsk int
}

// New constructs a 3000-series printer. lpi defaults to 6.
func New(chanID int, eqNo uint8, head Head, ctlr Controller, path string, useANSI bool) *Printer {
	p := &Printer{
		chanID:           chanID,
		eqNo:             eqNo,
		head:             head,
		ctlr:             ctlr,
		path:             path,
		useANSI:          useANSI,
		postprint:        true,
		lpi:              6,
		PreprintTabDebug: true,
	}
	p.lpp = 11 * p.lpi
	p.curLine = 1
	return p
}

func (p *Printer) outputPath() string {
	return fmt.Sprintf("%sLP5xx_C%02o_E%o", p.path, p.chanID, p.eqNo)
}

// Open creates the capture file. A fresh file restarts the I6
// first-line guard: the rename-and-reopen cycle in package operator
// hands the device an empty file that needs its own leading control
// byte, same as a brand-new printer.
func (p *Printer) Open() error {
	f, err := os.Create(p.outputPath())
	if err != nil {
		debug.ConfigFatal("printer5xx: channel %#o eq %o: open %s: %v", p.chanID, p.eqNo, p.outputPath(), err)
		return err
	}
	p.file = f
	p.anyOutput = false
	return nil
}

func (p *Printer) write(s string) {
	if p.file == nil {
		debug.InvariantBreach(p.chanID, p.eqNo, "printer5xx: write with no open file")
		return
	}
	if _, err := p.file.WriteString(s); err != nil {
		debug.OperatorError("printer5xx: write failed: %v", err)
	}
	if s != "" {
		p.printed = true
		p.anyOutput = true
	}
}

func asciiSpace(opt SpaceOpt) string {
	if opt == SpaceDouble {
		return "\n\n"
	}
	return "\n"
}

func ansiSpace(opt SpaceOpt) string {
	if opt == SpaceDouble {
		return "\n0"
	}
	return "\n "
}

func (p *Printer) advance(opt SpaceOpt) string {
	if p.useANSI {
		return ansiSpace(opt)
	}
	return asciiSpace(opt)
}

func (p *Printer) eject() string {
	p.curLine = 1
	if p.useANSI {
		return "\n1"
	}
	return "\f"
}

func (p *Printer) advanceLines(n int) {
	p.curLine += n
	if p.curLine > p.lpp {
		p.curLine = ((p.curLine - 1) % p.lpp) + 1
	}
}

func (p *Printer) recomputeSummary() {
	// Aggregate device-interrupt summary lives entirely in status;
	// nothing further to recompute beyond the bits already held.
}

// Func implements device.Device.
func (p *Printer) Func(code uint16) device.FuncResult {
	switch code {
	case Release, Release2:
		p.intReady = false
		p.intEnd = false
		p.recomputeSummary()
		if p.printed {
			p.write("") // flush is implicit; OS buffers handle durability
			if p.file != nil {
				_ = p.file.Sync()
			}
			debug.DebugDevf(p.chanID, p.eqNo, p.debugMsk, debugCmd, "printer5xx: release triggers paper removal")
			p.printed = false
			if p.OnPaperFull != nil {
				p.OnPaperFull()
			}
		}
		return device.Processed

	case MasterClear:
		p.intReady, p.intEnd = false, false
		p.intReadyEna, p.intEndEna = false, false
		p.fillImageMem = false
		p.keepInt = false
		p.suppressNext = false
		p.spaceOpt = SpaceSingle
		p.postprint = true
		p.write(p.eject())
		return device.Processed

	case ClearFormat:
		p.postprint = true
		return device.Processed

	case SelectPreprint:
		p.postprint = false
		return device.Processed

	case Single:
		p.spaceOpt = SpaceSingle
		if !p.postprint {
			p.write(p.advance(SpaceSingle))
			p.advanceLines(1)
		}
		return device.Processed

	case Double:
		p.spaceOpt = SpaceDouble
		if !p.postprint {
			p.write(p.advance(SpaceDouble))
			p.advanceLines(2)
		}
		return device.Processed

	case Eject:
		p.write(p.eject())
		return device.Processed

	case LastLine:
		p.write(p.advance(SpaceSingle))
		p.advanceLines(1)
		return device.Processed

	case AutoEject:
		return device.Processed

	case NoSpace:
		p.suppressNext = true
		return device.Processed

	case SelIntReady:
		p.intReadyEna = true
		if p.keepInt {
			p.keepInt = false
		} else {
			p.intReady = false
		}
		p.recomputeSummary()
		return device.Processed

	case RelIntReady:
		p.intReadyEna = false
		p.intReady = false
		p.recomputeSummary()
		return device.Processed

	case SelIntEnd:
		p.intEndEna = true
		if p.keepInt {
			p.keepInt = false
		} else {
			p.intEnd = false
		}
		p.recomputeSummary()
		return device.Processed

	case RelIntEnd:
		p.intEndEna = false
		p.intEnd = false
		p.recomputeSummary()
		return device.Processed

	case FillMemory:
		p.fillImageMem = true
		return device.Processed

	case StatusReq:
		p.activeCode = StatusReq
		return device.Accepted

	case Output:
		p.intReady = false
		p.intEnd = false
		if p.intReadyEna {
			p.intReady = true
		}
		if p.intEndEna {
			p.intEnd = true
		}
		p.recomputeSummary()
		p.keepInt = true

		latched := Output
		if p.fillImageMem {
			latched += discardShift
			p.fillImageMem = false
		}
		p.activeCode = latched
		return device.Accepted

	default:
		debug.InvariantBreach(p.chanID, p.eqNo, "printer5xx: unknown function code %#o", code)
		return device.Processed
	}
}

// IO implements device.Device.
func (p *Printer) IO(ch *device.Channel) {
	if ch.Full {
		return
	}

	if p.activeCode == StatusReq {
		var status uint16 = StPrintReady
		if p.intReadyEna && p.intReady {
			status |= StIntReady
		}
		if p.intEndEna && p.intEnd {
			status |= StIntEnd
		}
		ch.Data = status
		ch.Full = true
		return
	}

	discard := p.activeCode >= discardShift
	ch.Full = true

	if discard {
		return
	}

	// I6: every ANSI-mode line starts with one of {space,0,1,+}. Preprint
	// mode and MasterClear's eject already put a leading control byte in
	// the file before content ever reaches here; postprint mode only
	// emits its advance on disconnect, after the content it governs, so
	// the very first line written to a fresh file would otherwise have
	// no leading control byte at all.
	if p.useANSI && !p.anyOutput {
		p.write(" ")
	}

	switch p.head {
	case Head512:
		p.write(string(byte(ch.Data & 0xff)))
	default: // Head501: two display-code characters per word
		hi := byte((ch.Data >> 6) & 0o77)
		lo := byte(ch.Data & 0o77)
		p.write(string(charset.BCDToASCII[hi]))
		p.write(string(charset.BCDToASCII[lo]))
	}
}

// Activate implements device.Device.
func (p *Printer) Activate() {}

// Disconnect implements device.Device.
func (p *Printer) Disconnect() {
	wasOutput := p.activeCode == Output || p.activeCode == Output+discardShift
	p.activeCode = 0

	if !wasOutput {
		return
	}

	switch {
	case p.suppressNext:
		if p.useANSI {
			p.write("\n+")
		} else {
			p.write("\r")
		}
		p.suppressNext = false

	case p.postprint:
		p.write(p.advance(p.spaceOpt))
		if p.spaceOpt == SpaceDouble {
			p.advanceLines(2)
		} else {
			p.advanceLines(1)
		}
		p.spaceOpt = SpaceSingle

	default:
		// Preprint mode: the advance was already emitted at Func
		// time. This is the "experimental" debug path: a stray tab
		// is written here while PreprintTabDebug is set.
		if p.PreprintTabDebug {
			p.write("\t")
		}
	}
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
	return "file=<path> head={501,512} controller={3152,3555} mode={ansi,ascii}"
}

// Attach implements device.Capability.
func (p *Printer) Attach(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("printer5xx: attach requires a file path")
	}
	_ = p.Detach()
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	p.file = f
	p.anyOutput = false
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
	case "lpi6":
		p.lpi = 6
		p.lpp = 11 * p.lpi
	case "lpi8":
		p.lpi = 8
		p.lpp = 11 * p.lpi
	default:
		return fmt.Errorf("printer5xx: invalid option %q", opt)
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
	return fmt.Sprintf("chan=%#o eq=%o mode=%s lpi=%d curLine=%d %s",
		p.chanID, p.eqNo, mode, p.lpi, p.curLine, name)
}

// Debug implements device.Capability.
func (p *Printer) Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return fmt.Errorf("printer5xx: invalid debug option %q", opt)
	}
	p.debugMsk |= flag
	return nil
}

// CurLine reports the 1-based current line position, for invariant checks.
func (p *Printer) CurLine() int { return p.curLine }

// LPP reports lines-per-page.
func (p *Printer) LPP() int { return p.lpp }
