/*
cdc6000 - operator console reader.

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

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/peterh/liner"

	"github.com/rcornwell/cdc6000/device"
	"github.com/rcornwell/cdc6000/operator"
)

// consoleReader drives the local interactive operator prompt until
// the operator quits or aborts with ctrl-C.
func consoleReader(reg *device.Registry) {
	shell := operator.NewShell(reg)

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		word := partial
		if i := strings.LastIndexByte(partial, ' '); i >= 0 {
			word = partial[i+1:]
		}
		var out []string
		for _, c := range operator.Completions(word) {
			out = append(out, partial[:len(partial)-len(word)]+c)
		}
		return out
	})

	for {
		command, err := line.Prompt("ppcore> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			slog.Error("ppcored: reading command line", "error", err)
			return
		}

		line.AppendHistory(command)
		if strings.TrimSpace(command) == "quit" {
			return
		}

		resp, err := shell.Dispatch(command)
		if err != nil {
			fmt.Println("error: " + err.Error())
			continue
		}
		if resp != "" {
			fmt.Println(resp)
		}
	}
}
