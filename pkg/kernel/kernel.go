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

package kernel

import (
	"sync"

	"github.com/rvkernel/core/internal/klog"
	"github.com/rvkernel/core/pkg/hal"
)

// Config carries the platform-defined compile-time constants of spec
// §6 that are not fixed by the data model itself (CAP and L are fixed:
// see table.go and mlfq.go).
type Config struct {
	NCores int

	// USERStart is the smallest pid considered a user process. Anything
	// below it is kernel-resident and a non-ecall exception from it is
	// always fatal.
	USERStart int

	// ShellPID identifies the process boosted by the TTY interactive
	// rule.
	ShellPID int

	// AppsEntry/AppsArg are the fixed virtual addresses preloaded into a
	// newly-loaded process's saved_pc/saved_regs on first selection.
	AppsEntry uintptr
	AppsArg   uintptr

	BaseQuantumUS uint64
	ResetPeriodUS uint64

	// ResponseClampUS is the "unreasonable response time" sanity
	// threshold of spec §4.2 (10s in the source; tunable per platform).
	ResponseClampUS uint64
}

// DefaultConfig matches the constants spec.md uses in its own examples.
func DefaultConfig() Config {
	return Config{
		NCores:          4,
		USERStart:       2,
		ShellPID:        1,
		AppsEntry:       0x10000,
		AppsArg:         0x7fff0000,
		BaseQuantumUS:   100_000,
		ResetPeriodUS:   10_000_000,
		ResponseClampUS: 10_000_000,
	}
}

// Kernel wires the process table, the MLFQ policy, and the HAL behind a
// single global lock: the process-wide mutual exclusion spec §5 mandates
// around every trap handler execution. All kernel-side mutation is
// effectively single-threaded from the data model's perspective;
// concurrency is expressed only at the Trap entry point below.
type Kernel struct {
	cfg   Config
	hal   hal.HAL
	table *Table
	mlfq  *MLFQ

	lock sync.Mutex
}

// New builds a Kernel over the given HAL and configuration. The idle
// placeholder occupies slot 0 of the table for every core from the
// start: core_to_slot is zero-valued on construction.
func New(cfg Config, h hal.HAL) *Kernel {
	return &Kernel{
		cfg:   cfg,
		hal:   h,
		table: NewTable(cfg.NCores),
		mlfq:  NewMLFQ(cfg.BaseQuantumUS, cfg.ResetPeriodUS, cfg.ShellPID),
	}
}

// Config returns the kernel's immutable boot configuration.
func (k *Kernel) Config() Config { return k.cfg }

// Alloc allocates a fresh PCB slot and returns its pid. It is called at
// boot time (or by a running process creating a child, outside this
// spec's scope) to install new images; it is not part of the trap path
// and takes the lock itself.
func (k *Kernel) Alloc() int {
	k.lock.Lock()
	defer k.lock.Unlock()
	pid, ok := k.table.Alloc(k.hal.NowUS())
	if !ok {
		klog.Fatalf("kernel: process table exhausted")
	}
	return pid
}

// InstallImage marks pid Ready: its image is considered loaded and it
// becomes eligible for first selection by the scheduler.
func (k *Kernel) InstallImage(pid int) {
	k.lock.Lock()
	defer k.lock.Unlock()
	if slot := k.table.Lookup(pid); slot != 0 {
		k.table.PCBs[slot].Status = Ready
	}
}

// CoreRunning reports the pid running on the given core, if any.
func (k *Kernel) CoreRunning(core int) (pid int, ok bool) {
	k.lock.Lock()
	defer k.lock.Unlock()
	slot := k.table.CoreToSlot[core]
	if slot == 0 {
		return 0, false
	}
	return k.table.PCBs[slot].PID, true
}

// Snapshot returns a value copy of the whole process table for
// introspection. Callers must not use it to make scheduling decisions:
// it is a point-in-time view taken under the lock and then released.
func (k *Kernel) Snapshot() [CAP + 1]PCB {
	k.lock.Lock()
	defer k.lock.Unlock()
	return k.table.PCBs
}
