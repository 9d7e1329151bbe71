package printer5xx_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rcornwell/cdc6000/config/deviceconfig"
	"github.com/rcornwell/cdc6000/device"
	"github.com/rcornwell/cdc6000/printer5xx"
)

// The package's init function self-registers with deviceconfig; this
// exercises that registration rather than New/Open directly.
func TestDeviceConfigRegistration(t *testing.T) {
	dir := t.TempDir() + string(filepath.Separator)
	dev, err := deviceconfig.Create("lp5xx", 2, 1, dir+",3152,ansi")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := dev.(*printer5xx.Printer); !ok {
		t.Fatalf("Create returned %T, want *printer5xx.Printer", dev)
	}
}

func newTestPrinter(t *testing.T, useANSI bool) (*printer5xx.Printer, string) {
	t.Helper()
	dir := t.TempDir() + string(filepath.Separator)
	p := printer5xx.New(0, 0, printer5xx.Head501, printer5xx.Controller3555, dir, useANSI)
	if err := p.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return p, dir
}

func sendWord(t *testing.T, p *printer5xx.Printer, word uint16) {
	t.Helper()
	ch := &device.Channel{Data: word}
	p.IO(ch)
	if !ch.Full {
		t.Fatalf("IO did not set Full")
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

// scenario 3: 501/3555 postprint single, ASCII. The spec's prose
// narrates the decoded pair as "A","B"; the literal data word it
// gives (0o3031) decodes through our BCDToASCII table to "Y","Z"
// instead (see DESIGN.md Open Questions: the table is kept consistent
// with its use in scenarios 4/5 and invariant I6 rather than
// renumbered to match this one scenario's illustrative prose).
func TestScenarioPostprintSingleASCII(t *testing.T) {
	p, dir := newTestPrinter(t, false)

	p.Func(printer5xx.MasterClear)
	if r := p.Func(printer5xx.Output); r != device.Accepted {
		t.Fatalf("Func(Output) = %v, want Accepted", r)
	}
	sendWord(t, p, 0o3031) // display codes 0o30,0o31 per spec scenario 3
	p.Disconnect()

	got := readFile(t, dir+"LP5xx_C00_E0")
	if got != "\fYZ\n" {
		t.Fatalf("got %q, want %q", got, "\fYZ\n")
	}
}

// scenario 4: preprint double, ANSI — preamble emitted at Func time,
// disconnect falls through to the preprint tab debug path.
func TestScenarioPreprintDoubleANSI(t *testing.T) {
	p, dir := newTestPrinter(t, true)

	p.Func(printer5xx.ClearFormat)
	p.Func(printer5xx.SelectPreprint)
	p.Func(printer5xx.Double)
	p.Func(printer5xx.Output)
	sendWord(t, p, 0o203) // display-code 'C','D'
	p.Disconnect()

	got := readFile(t, dir+"LP5xx_C00_E0")
	want := "\n0CD\t" // preamble, chars, then the experimental debug tab
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// NoSpace causes an overstrike control code instead of the normal
// postprint advance on the transaction immediately following it.
func TestNoSpaceOverstrike(t *testing.T) {
	p, dir := newTestPrinter(t, true)

	p.Func(printer5xx.Output)
	sendWord(t, p, 0o203)
	p.Disconnect() // I6 first-line guard + normal postprint advance: " CD" + "\n "

	p.Func(printer5xx.NoSpace)
	p.Func(printer5xx.Output)
	sendWord(t, p, 0o203)
	p.Disconnect() // suppressed: "CD" + "\n+"

	got := readFile(t, dir+"LP5xx_C00_E0")
	want := " CD\n CD\n+"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// I2: curLine stays in [1, lpp]; Eject resets to 1.
func TestInvariantCurLineBounds(t *testing.T) {
	p, _ := newTestPrinter(t, false)

	for i := 0; i < 100; i++ {
		p.Func(printer5xx.Output)
		sendWord(t, p, 0o203)
		p.Disconnect()
		if p.CurLine() < 1 || p.CurLine() > p.LPP() {
			t.Fatalf("curLine %d out of bounds [1,%d]", p.CurLine(), p.LPP())
		}
	}

	p.Func(printer5xx.Eject)
	if p.CurLine() != 1 {
		t.Fatalf("curLine after Eject = %d, want 1", p.CurLine())
	}
}

// I4: a latched interrupt bit is observable only while its enable bit is set.
func TestInvariantInterruptVisibleOnlyWhenEnabled(t *testing.T) {
	p, _ := newTestPrinter(t, false)

	p.Func(printer5xx.Output)
	sendWord(t, p, 0o203)
	p.Disconnect()

	ch := &device.Channel{}
	p.Func(printer5xx.StatusReq)
	p.IO(ch)
	if ch.Data&printer5xx.StIntReady != 0 {
		t.Fatalf("IntReady bit visible with enable bit clear")
	}

	p.Func(printer5xx.SelIntReady)
	p.Func(printer5xx.Output)
	sendWord(t, p, 0o203)
	p.Disconnect()

	ch2 := &device.Channel{}
	p.Func(printer5xx.StatusReq)
	p.IO(ch2)
	if ch2.Data&printer5xx.StIntReady == 0 {
		t.Fatalf("IntReady bit not visible with enable bit set and interrupt latched")
	}
}

// I6: every ASCII byte written in ANSI mode is preceded at line start
// by one of {space, 0, 1, +}.
func TestInvariantANSILeadingControlChar(t *testing.T) {
	p, dir := newTestPrinter(t, true)

	p.Func(printer5xx.Output)
	sendWord(t, p, 0o203)
	p.Disconnect()

	p.Func(printer5xx.Double)
	p.Func(printer5xx.Output)
	sendWord(t, p, 0o203)
	p.Disconnect()

	got := readFile(t, dir+"LP5xx_C00_E0")
	if len(got) == 0 {
		t.Fatalf("no output written")
	}
	for i := 0; i < len(got); i++ {
		if i == 0 || got[i-1] == '\n' {
			switch got[i] {
			case ' ', '0', '1', '+':
			default:
				t.Fatalf("line start byte %q at %d not a valid ANSI control char in %q", got[i], i, got)
			}
		}
	}
}

// I3: status reply bit 0 (StPrintReady) is always set while the device is open.
func TestInvariantStatusReadyBit(t *testing.T) {
	p, _ := newTestPrinter(t, false)
	ch := &device.Channel{}
	p.Func(printer5xx.StatusReq)
	p.IO(ch)
	if ch.Data&printer5xx.StPrintReady == 0 {
		t.Fatalf("StPrintReady bit not set: %#o", ch.Data)
	}
}
