package printer1612_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rcornwell/cdc6000/config/deviceconfig"
	"github.com/rcornwell/cdc6000/device"
	"github.com/rcornwell/cdc6000/printer1612"
)

// The package's init function self-registers with deviceconfig; this
// exercises that registration rather than New/Open directly.
func TestDeviceConfigRegistration(t *testing.T) {
	dir := t.TempDir() + string(filepath.Separator)
	dev, err := deviceconfig.Create("lp1612", 3, 0, dir+",,ansi")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := dev.(*printer1612.Printer); !ok {
		t.Fatalf("Create returned %T, want *printer1612.Printer", dev)
	}
}

func newTestPrinter(t *testing.T, ansi bool) (*printer1612.Printer, string) {
	t.Helper()
	dir := t.TempDir() + string(filepath.Separator)
	p := printer1612.New(0, dir, ansi)
	if err := p.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return p, dir
}

func sendChar(t *testing.T, p *printer1612.Printer, code byte) {
	t.Helper()
	ch := &device.Channel{}
	ch.Data = uint16(code)
	p.IO(ch)
	if !ch.Full {
		t.Fatalf("IO did not set Full")
	}
}

// scenario 1: 1612 single-line print, ASCII.
func TestScenarioSingleLineASCII(t *testing.T) {
	p, dir := newTestPrinter(t, false)

	if r := p.Func(printer1612.Print); r != device.Accepted {
		t.Fatalf("Func(Print) = %v, want Accepted", r)
	}
	sendChar(t, p, 0o30) // external BCD 'H'
	sendChar(t, p, 0o31) // external BCD 'I'
	if r := p.Func(printer1612.SingleSpace); r != device.Accepted {
		t.Fatalf("Func(SingleSpace) = %v, want Accepted", r)
	}
	p.Disconnect()

	got := readFile(t, dir+"LP1612_C00")
	if got != "HI\n" {
		t.Fatalf("got %q, want %q", got, "HI\n")
	}
}

// scenario 2: same sequence, ANSI mode.
func TestScenarioSingleLineANSI(t *testing.T) {
	p, dir := newTestPrinter(t, true)

	p.Func(printer1612.Print)
	sendChar(t, p, 0o30)
	sendChar(t, p, 0o31)
	p.Func(printer1612.SingleSpace)
	p.Disconnect()

	got := readFile(t, dir+"LP1612_C00")
	if got != "HI\n " {
		t.Fatalf("got %q, want %q", got, "HI\n ")
	}
}

// I1: after Func returning Accepted, fcode stays latched until Disconnect.
func TestInvariantLatchedUntilDisconnect(t *testing.T) {
	p, _ := newTestPrinter(t, false)
	slot := &device.Slot{Dev: p, Channel: &device.Channel{}}

	if r := slot.Func(printer1612.Print); r != device.Accepted {
		t.Fatalf("Func = %v, want Accepted", r)
	}
	if slot.FCode == 0 {
		t.Fatalf("FCode not latched")
	}
	slot.Disconnect()
	if slot.FCode != 0 {
		t.Fatalf("FCode not cleared after Disconnect")
	}
}

// I6: every ASCII byte written in ANSI mode is preceded at line start
// by one of {space, 0, 1, +}. The 1612 writes no leading control byte
// before the file's first line, so byte 0 is not checked.
func TestInvariantANSILeadingControlChar(t *testing.T) {
	p, dir := newTestPrinter(t, true)

	p.Func(printer1612.Print)
	sendChar(t, p, 0o30)
	p.Func(printer1612.DoubleSpace)
	p.Disconnect()

	p.Func(printer1612.Print)
	sendChar(t, p, 0o31)
	p.Func(printer1612.MoveTOF)
	p.Disconnect()

	got := readFile(t, dir+"LP1612_C00")
	// "H" + "\n0" + "I" + "\n1"
	want := "H\n0I\n1"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	lines := []byte(got)
	for i, b := range lines {
		if i == 0 {
			continue
		}
		if lines[i-1] == '\n' {
			switch b {
			case ' ', '0', '1', '+':
			default:
				t.Fatalf("line start byte %q at %d is not a valid ANSI control char", b, i)
			}
		}
	}
}

// Status quirk: the first StatusReq returns the channel's initial
// (zero) status; subsequent ones return what the previous call armed.
func TestStatusReqQuirk(t *testing.T) {
	p, _ := newTestPrinter(t, false)

	ch := &device.Channel{}
	if r := p.Func(printer1612.StatusReq); r != device.Accepted {
		t.Fatalf("Func(StatusReq) = %v, want Accepted", r)
	}
	p.IO(ch)
	if ch.Data != 0 {
		t.Fatalf("first StatusReq returned %#o, want 0", ch.Data)
	}

	// Same channel, drained by the PP: its Status carries the value
	// the first request armed.
	ch2 := ch
	ch2.Full = false
	p.Func(printer1612.StatusReq)
	p.IO(ch2)
	if ch2.Data != printer1612.StPrintReady {
		t.Fatalf("second StatusReq returned %#o, want %#o", ch2.Data, printer1612.StPrintReady)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(b)
}
