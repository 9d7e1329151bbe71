/*
cdc6000 - Main process.

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

// Command ppcored is a standalone demonstration harness for the
// peripheral core: it reads a small config file of device lines,
// attaches each to a channel/equipment slot, opens an optional remote
// operator shell, and drops into a local interactive operator prompt.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/cdc6000/config/deviceconfig"
	"github.com/rcornwell/cdc6000/device"
	"github.com/rcornwell/cdc6000/operator"
	"github.com/rcornwell/cdc6000/printer5xx"
	"github.com/rcornwell/cdc6000/util/logger"

	_ "github.com/rcornwell/cdc6000/console6612"
	_ "github.com/rcornwell/cdc6000/printer1612"
)

func main() {
	optConfig := getopt.StringLong("config", 'f', "ppcore.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optRemote := getopt.StringLong("remote", 'r', "", "Remote operator shell address, e.g. :2323")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logFile *os.File
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ppcored: create log file: %v\n", err)
			os.Exit(1)
		}
		logFile = f
	}
	logger.Install(logFile, false)

	slog.Info("ppcored started")

	reg := device.NewRegistry()

	if _, err := os.Stat(*optConfig); err == nil {
		if err := loadConfig(*optConfig, reg); err != nil {
			slog.Error("ppcored: loading configuration", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("ppcored: no configuration file found, starting with an empty registry", "path", *optConfig)
	}

	if *optRemote != "" {
		rs, err := operator.NewRemoteShell(*optRemote, reg)
		if err != nil {
			slog.Error("ppcored: remote shell", "error", err)
			os.Exit(1)
		}
		rs.Start()
		defer rs.Stop()
	}

	consoleReader(reg)

	slog.Info("ppcored exiting")
}

// loadConfig reads "channel,eq model params" lines (# starts a
// comment) and attaches each resulting device to reg.
func loadConfig(path string, reg *device.Registry) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := loadConfigLine(line, reg); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}

func loadConfigLine(line string, reg *device.Registry) error {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 2 {
		return fmt.Errorf("malformed device line %q", line)
	}
	channel, eqNo, err := device.ParseChanEq(fields[0])
	if err != nil {
		return err
	}
	model := fields[1]
	params := ""
	if len(fields) == 3 {
		params = fields[2]
	}

	dev, err := deviceconfig.Create(model, channel, eqNo, params)
	if err != nil {
		return err
	}

	deviceType := strings.ToUpper(model)
	if err := reg.AddDevice(channel, eqNo, deviceType, &device.Slot{Dev: dev}); err != nil {
		return err
	}

	// printer5xx's Release function triggers a paper-removal rename
	// cycle only if something is wired to OnPaperFull; wire it to the
	// same removePaper path the operator shell's "removepaper" command
	// drives.
	if p, ok := dev.(*printer5xx.Printer); ok {
		chanEq := fmt.Sprintf("%o,%o", channel, eqNo)
		p.OnPaperFull = func() {
			if err := operator.RemovePaper(reg, operator.LP5xx, chanEq, nil, nil); err != nil {
				slog.Error("ppcored: paper removal", "chan,eq", chanEq, "error", err)
			}
		}
	}

	return nil
}
