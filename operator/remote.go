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
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rcornwell/cdc6000/device"
)

// RemoteShell is a line-oriented TCP operator console: each
// connection gets a "ppcore> " prompt wired to the same Shell
// dispatcher a local interactive session uses. Adapted from the
// emulator's telnet listener, trimmed to bare line discipline since
// the operator shell has no terminal-type negotiation to do.
type RemoteShell struct {
	wg       sync.WaitGroup
	listener net.Listener
	shutdown chan struct{}
	shell    *Shell
	addr     string
}

// NewRemoteShell binds a listener on addr (e.g. ":2323") dispatching
// commands against reg. The server does not start accepting
// connections until Start is called.
func NewRemoteShell(addr string, reg *device.Registry) (*RemoteShell, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("operator: remote shell listen on %s: %w", addr, err)
	}
	return &RemoteShell{
		listener: listener,
		shutdown: make(chan struct{}),
		shell:    NewShell(reg),
		addr:     addr,
	}, nil
}

// Start begins accepting connections in the background.
func (r *RemoteShell) Start() {
	slog.Info("operator: remote shell listening", "addr", r.addr)
	r.wg.Add(1)
	go r.acceptLoop()
}

// Stop closes the listener and waits (up to one second) for
// in-flight connections to finish.
func (r *RemoteShell) Stop() {
	close(r.shutdown)
	r.listener.Close()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		slog.Warn("operator: remote shell shutdown timed out", "addr", r.addr)
	}
}

func (r *RemoteShell) acceptLoop() {
	defer r.wg.Done()
	for {
		conn, err := r.listener.Accept()
		if err != nil {
			select {
			case <-r.shutdown:
				return
			default:
				continue
			}
		}
		r.wg.Add(1)
		go r.handleConn(conn)
	}
}

func (r *RemoteShell) handleConn(conn net.Conn) {
	defer r.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	fmt.Fprint(conn, "ppcore> ")
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "quit" {
			return
		}
		resp, err := r.shell.Dispatch(scanner.Text())
		if err != nil {
			fmt.Fprintf(conn, "error: %v\r\n", err)
		} else if resp != "" {
			fmt.Fprintf(conn, "%s\r\n", resp)
		}
		fmt.Fprint(conn, "ppcore> ")
	}
}
