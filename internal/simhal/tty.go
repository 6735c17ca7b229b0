// Copyright 2026 The rvkernel Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package simhal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"

	"github.com/containerd/console"
	"github.com/containerd/fifo"
	"github.com/kr/pty"
	"golang.org/x/term"
)

// TTY is a small unread-byte counter fed by whatever is standing in for
// the machine's serial console. TTYInputEmpty only ever needs to know
// "is there something waiting", so the buffered bytes themselves are
// discarded once counted; nothing in this spec's scope models a
// kernel-side read() of TTY content.
type TTY struct {
	mu      sync.Mutex
	pending int
	closers []io.Closer
}

func newTTY() *TTY { return &TTY{} }

func (t *TTY) empty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending == 0
}

func (t *TTY) mark(n int) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	t.pending += n
	t.mu.Unlock()
}

func (t *TTY) pump(r io.Reader) {
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		t.mark(n)
		if err != nil {
			return
		}
	}
}

func (t *TTY) Close() error {
	t.mu.Lock()
	cs := t.closers
	t.closers = nil
	t.mu.Unlock()
	var firstErr error
	for _, c := range cs {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewInteractiveTTY wires the simulated machine's console to a real pty
// pair: the pty master becomes the simulated device's serial port (put
// into raw mode via containerd/console), and the host's own stdin is
// copied into the pty slave one keystroke at a time after being put
// into raw passthrough mode with golang.org/x/term. The returned cleanup
// function restores the host terminal and must be called on shutdown.
func NewInteractiveTTY() (*TTY, func(), error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, func() {}, fmt.Errorf("simhal: stdin is not a terminal")
	}

	master, slave, err := pty.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("simhal: open pty: %w", err)
	}

	devConsole, err := console.ConsoleFromFile(master)
	if err != nil {
		master.Close()
		slave.Close()
		return nil, nil, fmt.Errorf("simhal: wrap pty master: %w", err)
	}
	if err := devConsole.SetRaw(); err != nil {
		master.Close()
		slave.Close()
		return nil, nil, fmt.Errorf("simhal: set raw: %w", err)
	}

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		master.Close()
		slave.Close()
		return nil, nil, fmt.Errorf("simhal: make host stdin raw: %w", err)
	}

	src := newTTY()
	src.closers = []io.Closer{master, slave}
	go io.Copy(slave, os.Stdin)
	go src.pump(master)

	cleanup := func() {
		_ = term.Restore(int(os.Stdin.Fd()), oldState)
		_ = src.Close()
	}
	return src, cleanup, nil
}

// NewScriptedTTY feeds the TTY boost rule from a named FIFO instead of a
// live terminal, so CI and the test harness can trigger the interactive
// boost scenario deterministically without a real tty attached. The FIFO
// is created if it does not already exist.
func NewScriptedTTY(ctx context.Context, path string) (*TTY, func(), error) {
	f, err := fifo.OpenFifo(ctx, path, syscall.O_RDONLY|syscall.O_CREAT|syscall.O_NONBLOCK, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("simhal: open scripted tty fifo %q: %w", path, err)
	}
	src := newTTY()
	src.closers = []io.Closer{f}
	go src.pump(f)
	return src, func() { _ = src.Close() }, nil
}
