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

// Package workload plays the role of user space in the boot demo: a
// handful of synthetic process images, each a tiny scripted state
// machine, driving pkg/kernel through its TrapSource seam instead of
// real RISC-V instructions.
package workload

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/rvkernel/core/pkg/hal"
	"github.com/rvkernel/core/pkg/kernel"
)

// Kind selects a synthetic process image's scripted behavior.
type Kind int

const (
	// Spinner never issues a syscall; it only ever yields the core via
	// preemption, exercising pure MLFQ demotion.
	Spinner Kind = iota
	// Shell behaves like Spinner but is expected to occupy the
	// configured shell pid, the target of the TTY interactive boost.
	Shell
	// Sender issues a single Send to Peer soon after first scheduled.
	Sender
	// Receiver issues a single Recv(ANY) soon after first scheduled.
	Receiver
	// Sleeper issues a single Sleep(Duration) soon after first scheduled.
	Sleeper
	// Faulter raises an illegal-instruction exception soon after first
	// scheduled, exercising the kill-and-continue path.
	Faulter
)

type script struct {
	kind Kind
	peer int
	dur  uint64
	done bool
}

// Driver implements kernel.TrapSource over a fixed roster of synthetic
// process images, pacing timer interrupts with a rate limiter so the
// demo runs at a watchable speed instead of spinning a host CPU core.
type Driver struct {
	k       *kernel.Kernel
	h       hal.HAL
	limiter *rate.Limiter

	mu      sync.Mutex
	scripts map[int]*script
}

// New builds a Driver over kernel k, staging syscall arguments through h
// (the same HAL instance the kernel itself was constructed with).
// tickEvery paces the synthetic timer interrupt.
func New(k *kernel.Kernel, h hal.HAL, tickEvery time.Duration) *Driver {
	return &Driver{
		k:       k,
		h:       h,
		limiter: rate.NewLimiter(rate.Every(tickEvery), 1),
		scripts: make(map[int]*script),
	}
}

// Spawn allocates a process, installs its image, and registers the
// scripted behavior it will perform once first scheduled. peer and dur
// are interpreted per kind: peer is the Send target or Recv filter
// (kernel.ANY for "any sender"); dur is the Sleeper's duration in
// microseconds. Both are ignored by Spinner, Shell, and Faulter.
func (d *Driver) Spawn(kind Kind, peer int, dur uint64) int {
	pid := d.k.Alloc()
	d.k.InstallImage(pid)

	d.mu.Lock()
	d.scripts[pid] = &script{kind: kind, peer: peer, dur: dur}
	d.mu.Unlock()

	return pid
}

// NextTrap implements kernel.TrapSource: it paces a timer interrupt via
// the rate limiter, but if the process currently occupying core has a
// one-shot scripted action still pending, that action's trap is
// returned instead, staged into the HAL's simulated address space
// exactly as real user-space code would stage it before an ecall.
func (d *Driver) NextTrap(ctx context.Context, core int) (hal.Cause, uintptr, hal.RegFile, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return hal.Cause{}, 0, hal.RegFile{}, err
	}

	if pid, ok := d.k.CoreRunning(core); ok {
		if cause, fire := d.scriptedTrap(pid); fire {
			return cause, 0, hal.RegFile{}, nil
		}
	}
	return hal.Cause{Interrupt: true, Code: hal.CauseTimer}, 0, hal.RegFile{}, nil
}

// Resume implements kernel.TrapSource. The simulation never executes
// real instructions, so there is nothing to restore a context into.
func (d *Driver) Resume(core int, pc uintptr, regs hal.RegFile) {}

func (d *Driver) scriptedTrap(pid int) (hal.Cause, bool) {
	d.mu.Lock()
	sc, ok := d.scripts[pid]
	if !ok || sc.done {
		d.mu.Unlock()
		return hal.Cause{}, false
	}
	sc.done = true
	d.mu.Unlock()

	switch sc.kind {
	case Sender:
		d.stage(pid, kernel.Syscall{Type: kernel.SysSend, Receiver: sc.peer, Content: greeting(pid)})
		return hal.Cause{Interrupt: false, Code: hal.CauseEcallFromU}, true
	case Receiver:
		d.stage(pid, kernel.Syscall{Type: kernel.SysRecv, Sender: sc.peer})
		return hal.Cause{Interrupt: false, Code: hal.CauseEcallFromU}, true
	case Sleeper:
		d.stage(pid, kernel.Syscall{Type: kernel.SysSleep, SleepDurationUS: sc.dur})
		return hal.Cause{Interrupt: false, Code: hal.CauseEcallFromU}, true
	case Faulter:
		return hal.Cause{Interrupt: false, Code: hal.CauseIllegalInstr}, true
	default: // Spinner, Shell
		return hal.Cause{}, false
	}
}

func (d *Driver) stage(pid int, s kernel.Syscall) {
	payload := kernel.EncodeSyscallArgs(s)
	if window, ok := d.h.MMUTranslate(pid, kernel.SyscallArgVAddr, len(payload)); ok {
		copy(window, payload)
	}
}

func greeting(pid int) [kernel.MsgLen]byte {
	var c [kernel.MsgLen]byte
	copy(c[:], []byte("hello from pid"))
	return c
}

var _ kernel.TrapSource = (*Driver)(nil)
