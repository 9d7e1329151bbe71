/* cdc6000 display-code conversion tables.

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

   Three independent 64-entry display-code tables (BCDToASCII,
   ExtBCDToASCII, ConsoleToASCII) and their inverses. The forward
   tables are hand authored (BCDToASCII's ordering differs from the
   historical display code chart; see its comment); the inverse tables are derived once in init(), the way the 029/026
   Hollerith tables in the teacher's util/card package note theirs are
   "automatically generated" back tables.
*/
package charset

// BCDToASCII is the 6-bit display code table used for 501-head printer
// words and (as ConsoleToASCII) console words. 'A' is at code 0, one
// below its position in the historical CDC display code, where code 0
// is ':'. Line printer carriage-control codes are not part of this
// table; only printable display code.
var BCDToASCII = [64]byte{
	'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H',
	'I', 'J', 'K', 'L', 'M', 'N', 'O', 'P',
	'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X',
	'Y', 'Z', '0', '1', '2', '3', '4', '5',
	'6', '7', '8', '9', '+', '-', '*', '/',
	'(', ')', '$', '=', ' ', ',', '.', '#',
	'[', ']', '%', '"', '_', '!', '&', '\'',
	'?', '<', '>', '@', '\\', '^', ';', ':',
}

// ExtBCDToASCII is the 6-bit external BCD code used on tape/card style
// peripherals (3000-series line printers, 1612). Digit-first ordering,
// matching the punched-card heritage of the code.
var ExtBCDToASCII = [64]byte{
	'0', '1', '2', '3', '4', '5', '6', '7',
	'8', '9', '=', '\'', ':', '>', '(', '<',
	'&', 'A', 'B', 'C', 'D', 'E', 'F', 'G',
	'H', 'I', '.', ')', '[', '%', ']', '"',
	'-', 'J', 'K', 'L', 'M', 'N', 'O', 'P',
	'Q', 'R', '$', '*', ';', '\\', ',', '#',
	' ', '/', 'S', 'T', 'U', 'V', 'W', 'X',
	'Y', 'Z', '!', '_', '?', '+', '@', '^',
}

// ConsoleToASCII is the display code used to decode 6612 character-mode
// screen words; identical ordering to BCDToASCII but kept as a distinct
// table because the console and the BCD line-printer family are not
// required to evolve together.
var ConsoleToASCII = BCDToASCII

var (
	asciiToCDC     [256]byte
	asciiToConsole [256]byte
)

const noMapping = 0

func invert(forward [64]byte, inverse *[256]byte) {
	for i := range inverse {
		inverse[i] = noMapping
	}
	for code, ch := range forward {
		inverse[ch] = byte(code)
	}
}

func init() {
	invert(BCDToASCII, &asciiToCDC)
	invert(ConsoleToASCII, &asciiToConsole)
}

// ASCIIToCDC maps a host ASCII byte back to its 6-bit display code.
// Bytes with no representation in the display code map to 0.
func ASCIIToCDC(b byte) byte {
	return asciiToCDC[b]
}

// ASCIIToConsole maps a host ASCII byte back to its 6-bit console code.
func ASCIIToConsole(b byte) byte {
	return asciiToConsole[b]
}
