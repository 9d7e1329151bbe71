/*
cdc6000 device configuration

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

// Package deviceconfig is the model-name registry consulted at setup
// time: every peripheral package registers a constructor under its
// model name (e.g. "LP1612", "LP5XX", "CONSOLE6612") from an init
// function, and the initialization layer turns a config line's
// "path,controllerType,mode" parameter string into a live device
// without deviceconfig ever importing the concrete peripheral packages.
package deviceconfig

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rcornwell/cdc6000/device"
)

// Constructor builds and opens a device bound to (channel, eqNo) from
// a model-specific parameter string.
type Constructor func(channel int, eqNo uint8, params string) (device.Device, error)

var constructors = map[string]Constructor{}

// RegisterModel is called from a peripheral package's init function.
func RegisterModel(model string, fn Constructor) {
	model = strings.ToUpper(model)
	slog.Info("deviceconfig: registering model", "model", model)
	constructors[model] = fn
}

// Create builds the named model's device. A configuration error (spec
// §7 kind 1) if the model name is unknown.
func Create(model string, channel int, eqNo uint8, params string) (device.Device, error) {
	fn, ok := constructors[strings.ToUpper(model)]
	if !ok {
		return nil, fmt.Errorf("deviceconfig: unknown model %q", model)
	}
	return fn(channel, eqNo, params)
}

// Params is the parsed form of the "path,controllerType,mode"
// device-initialization string (spec §6). controllerType and mode are
// both optional and case-insensitive; Path gets a trailing separator
// appended when non-empty.
type Params struct {
	Path       string
	Controller string // "3555" or "3152"; defaults to "3555"
	ANSI       bool   // mode == "ansi"; defaults to ascii
}

// ParseParams parses a device-init parameter string non-destructively
// (spec §9: reimplementations must not mutate the source string).
func ParseParams(s string) Params {
	fields := strings.Split(s, ",")
	p := Params{Controller: "3555"}

	if len(fields) > 0 && fields[0] != "" {
		p.Path = fields[0]
		if !strings.HasSuffix(p.Path, "/") {
			p.Path += "/"
		}
	}
	if len(fields) > 1 && fields[1] != "" {
		p.Controller = strings.ToLower(fields[1])
	}
	if len(fields) > 2 && strings.EqualFold(fields[2], "ansi") {
		p.ANSI = true
	}
	return p
}
