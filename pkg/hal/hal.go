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

// Package hal provides the thin platform façade the kernel core is
// written against. No architectural opcode, register layout, or CSR name
// appears above this package: everything machine-specific is reached
// only through the methods below.
package hal

// RegFile is the opaque, architecturally sized register-file snapshot
// copied in and out of a PCB at trap entry/exit. Its layout is private to
// the HAL implementation; the kernel core only ever copies it wholesale
// or indexes saved_regs[0]/saved_regs[1] for the argc/argv handoff.
type RegFile [32]uintptr

// Cause is the decoded trap cause: the source passes the dispatcher a
// Cause rather than a raw CSR value, so cause decoding (interrupt vs.
// exception, the top-bit convention) lives entirely in the HAL.
type Cause struct {
	// Interrupt is true for interrupts, false for exceptions.
	Interrupt bool
	// Code is the cause-specific code: the interrupt number, or the
	// exception number (e.g. ecall-from-U-mode, illegal instruction).
	Code uint
}

// Well-known cause codes. The numeric values follow the RISC-V privileged
// spec's mcause encoding but are never interpreted outside the HAL.
const (
	CauseTimer        = 7
	CauseEcallFromU   = 8
	CauseEcallFromM   = 11
	CauseIllegalInstr = 2
)

// HAL is the full call surface the kernel core requires of the
// underlying machine. The production implementation is internal/simhal.HAL
// and pkg/kernel's tests use their own fake; pkg/kernel itself only ever
// calls through this interface, so the entire hardware-dependent surface
// is visible in one place.
type HAL interface {
	// NowUS returns a monotonic, non-decreasing microsecond clock,
	// coherent across cores.
	NowUS() uint64

	// TimerReset arms the given core's preemption timer for the next
	// tick, per the base quantum slice configured at boot.
	TimerReset(core int)

	// MMUTranslate returns a byte window of length n backing vaddr in
	// pid's address space, as seen by the kernel copying a fixed-size
	// argument or payload block across the user/kernel boundary. The
	// returned slice aliases the underlying physical page(s); the kernel
	// copies out of or into it immediately and never retains it.
	MMUTranslate(pid int, vaddr uintptr, n int) (window []byte, ok bool)

	// MMUSwitch installs pid's page tables on the calling core.
	MMUSwitch(pid int)

	// MMUFlushCache flushes the TLB on the calling core after a switch.
	MMUFlushCache()

	// MMUFree releases pid's page tables. Called once, at process free.
	MMUFree(pid int)

	// TTYInputEmpty reports whether the TTY input ring is empty.
	TTYInputEmpty() bool

	// WaitForInterrupt blocks the calling core until the next interrupt,
	// with interrupts enabled. The kernel lock must already be released
	// by the caller before calling this.
	WaitForInterrupt(core int)
}
