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

// Package kernel implements the trap dispatcher, process table, MLFQ
// scheduler, and synchronous IPC at the center of the system. Everything
// in this package is pure Go operating on in-memory state under a single
// lock; no architectural opcode appears here, only calls through
// pkg/hal.
package kernel

import "github.com/rvkernel/core/pkg/hal"

// Status is a PCB's position in the process lifecycle.
type Status int

const (
	// Unused marks a free slot.
	Unused Status = iota
	// Loading marks a slot that has been allocated but has no installed
	// image yet.
	Loading
	// Ready marks a process with an installed image, never yet selected.
	Ready
	// Running marks the process currently executing on some core.
	Running
	// Runnable marks a process eligible for selection but not executing.
	Runnable
	// PendingSyscall marks a process blocked in-kernel on a syscall
	// (Send, Recv, Sleep, ...) that has not yet completed.
	PendingSyscall
)

func (s Status) String() string {
	switch s {
	case Unused:
		return "Unused"
	case Loading:
		return "Loading"
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Runnable:
		return "Runnable"
	case PendingSyscall:
		return "PendingSyscall"
	default:
		return "Status(?)"
	}
}

// PCB is a Process Control Block: the per-process record in the process
// table. Two PCBs never alias the same pid while both are non-Unused.
type PCB struct {
	PID    int
	Status Status

	SavedPC   uintptr
	SavedRegs hal.RegFile

	// PrevWasUser records whether this PCB returns to user mode (true)
	// or machine mode (false) on trap exit, i.e. whether it is a user
	// process (pid >= USER_START) or a kernel-resident one.
	PrevWasUser bool

	Syscall Syscall

	QueueLevel  int
	QueueTimeUS uint64

	// WakeupTimeUS is 0 unless this PCB is sleeping, in which case it is
	// the earliest instant at which it may be rescheduled.
	WakeupTimeUS uint64

	CreationTimeUS    uint64
	FirstScheduledUS  uint64
	LastScheduledUS   uint64
	TotalCPUUS        uint64
	TerminationTimeUS uint64
	TimerTickCount    uint64
}
