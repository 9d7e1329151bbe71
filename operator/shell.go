/*
cdc6000 operator interface

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

package operator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rcornwell/cdc6000/device"
)

// shellCmd is one operator command: a name, the minimum prefix length
// that uniquely selects it, and the handler.
type shellCmd struct {
	name    string
	min     int
	process func(reg *device.Registry, args []string) (string, error)
}

var shellCmds = []shellCmd{
	{name: "attach", min: 2, process: cmdAttach},
	{name: "detach", min: 2, process: cmdDetach},
	{name: "set", min: 3, process: cmdSet},
	{name: "show", min: 2, process: cmdShow},
	{name: "removepaper", min: 3, process: cmdRemovePaper},
	{name: "quit", min: 4, process: cmdQuit},
}

// Shell is a line-oriented operator command dispatcher bound to a
// device registry. It has no knowledge of where lines come from; the
// same dispatcher backs both a local interactive prompt (package
// cmd/ppcored, line-edited with peterh/liner) and RemoteShell's TCP
// listener.
type Shell struct {
	reg *device.Registry
}

// NewShell returns a Shell dispatching operator commands against reg.
func NewShell(reg *device.Registry) *Shell {
	return &Shell{reg: reg}
}

// Dispatch parses and executes one command line, returning the
// response text to show the operator.
func (s *Shell) Dispatch(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	name, args := fields[0], fields[1:]

	match := matchCommand(name)
	switch len(match) {
	case 0:
		return "", errors.New("command not found: " + name)
	case 1:
		return match[0].process(s.reg, args)
	default:
		return "", errors.New("ambiguous command: " + name)
	}
}

// Completions returns every command name whose prefix is name, for
// tab-completion in a line editor.
func Completions(name string) []string {
	var out []string
	for _, c := range shellCmds {
		if strings.HasPrefix(c.name, name) {
			out = append(out, c.name)
		}
	}
	return out
}

func matchCommand(name string) []shellCmd {
	var out []shellCmd
	for _, c := range shellCmds {
		if len(name) < c.min {
			continue
		}
		if strings.HasPrefix(c.name, name) {
			out = append(out, c)
		}
	}
	return out
}

func lookupSlot(reg *device.Registry, chanEq string) (*device.Slot, error) {
	channel, eqNo, err := device.ParseChanEq(chanEq)
	if err != nil {
		return nil, err
	}
	slot := reg.Lookup(channel, eqNo)
	if slot == nil {
		return nil, errors.New("no device at " + chanEq)
	}
	return slot, nil
}

func cmdAttach(reg *device.Registry, args []string) (string, error) {
	if len(args) < 2 {
		return "", errors.New("usage: attach chan,eq file")
	}
	slot, err := lookupSlot(reg, args[0])
	if err != nil {
		return "", err
	}
	dc, ok := slot.Dev.(device.Capability)
	if !ok {
		return "", errors.New("device does not support attach")
	}
	if err := dc.Attach(args[1:]); err != nil {
		return "", err
	}
	return "attached", nil
}

func cmdDetach(reg *device.Registry, args []string) (string, error) {
	if len(args) < 1 {
		return "", errors.New("usage: detach chan,eq")
	}
	slot, err := lookupSlot(reg, args[0])
	if err != nil {
		return "", err
	}
	dc, ok := slot.Dev.(device.Capability)
	if !ok {
		return "", errors.New("device does not support detach")
	}
	if err := dc.Detach(); err != nil {
		return "", err
	}
	return "detached", nil
}

func cmdSet(reg *device.Registry, args []string) (string, error) {
	if len(args) < 2 {
		return "", errors.New("usage: set chan,eq option")
	}
	slot, err := lookupSlot(reg, args[0])
	if err != nil {
		return "", err
	}
	dc, ok := slot.Dev.(device.Capability)
	if !ok {
		return "", errors.New("device does not support set")
	}
	if err := dc.Set(args[1]); err != nil {
		return "", err
	}
	return "ok", nil
}

func cmdShow(reg *device.Registry, args []string) (string, error) {
	if len(args) < 1 {
		return "", errors.New("usage: show chan,eq")
	}
	slot, err := lookupSlot(reg, args[0])
	if err != nil {
		return "", err
	}
	dc, ok := slot.Dev.(device.Capability)
	if !ok {
		return "", errors.New("device does not support show")
	}
	return fmt.Sprintf("type=%s unit=%d/%d %s", slot.DeviceType, slot.UnitNo, slot.SelectedUnit, dc.Show()), nil
}

// cmdQuit is a no-op at the Dispatch layer: callers driving an
// interactive session (cmd/ppcored, RemoteShell) intercept "quit"
// themselves to end the session. It exists in shellCmds so
// completion and matchCommand see it as a real command name.
func cmdQuit(_ *device.Registry, _ []string) (string, error) {
	return "", nil
}

func cmdRemovePaper(reg *device.Registry, args []string) (string, error) {
	if len(args) < 2 {
		return "", errors.New("usage: removepaper {lp1612,lp5xx} chan,eq")
	}
	var kind Kind
	switch args[0] {
	case "lp1612":
		kind = LP1612
	case "lp5xx":
		kind = LP5xx
	default:
		return "", errors.New("unknown printer kind: " + args[0])
	}
	if err := RemovePaper(reg, kind, args[1], nil, nil); err != nil {
		return "", err
	}
	return "paper removed", nil
}
