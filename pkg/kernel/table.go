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

// CAP is the number of allocatable process slots. Slot 0 is reserved for
// the idle placeholder, so the table holds CAP+1 entries.
const CAP = 16

// ALL is the free() sentinel pid meaning "every user process".
const ALL = -1

// Table is the fixed-capacity process table: a PCB array plus the
// per-core hart-id-to-slot mapping. It carries no lock of its own —
// Kernel holds the single global lock around every operation below, per
// the spec's "owned region under a single lock" design note. Lookup by
// pid is a linear scan; CAP is small enough that an auxiliary index adds
// complexity without a measurable win.
type Table struct {
	PCBs       [CAP + 1]PCB
	CoreToSlot []int
	nextPID    int
}

// NewTable builds an empty table sized for nCores hardware threads. Slot
// 0 is the permanent idle placeholder: its PCB stays zero-valued (status
// Unused), every scan starts at slot 1 so it is never allocated or
// selected, and core_to_slot entries pointing at it mean "this core is
// idle".
func NewTable(nCores int) *Table {
	return &Table{
		CoreToSlot: make([]int, nCores),
		nextPID:    1,
	}
}

// Alloc finds the first Unused slot among indices 1..=CAP, assigns it
// the next pid (monotonic, never reused), and initializes its
// accounting fields to zero and queue_level to 0. It reports ok=false if
// every slot is occupied; the caller (the kernel) treats that as fatal.
func (t *Table) Alloc(nowUS uint64) (pid int, ok bool) {
	for slot := 1; slot <= CAP; slot++ {
		if t.PCBs[slot].Status == Unused {
			pid = t.nextPID
			t.nextPID++
			t.PCBs[slot] = PCB{
				PID:            pid,
				Status:         Loading,
				QueueLevel:     0,
				CreationTimeUS: nowUS,
			}
			return pid, true
		}
	}
	return 0, false
}

// Lookup returns the slot index holding pid, or 0 (never a valid
// allocation) if no non-Unused slot matches.
func (t *Table) Lookup(pid int) int {
	for slot := 1; slot <= CAP; slot++ {
		if t.PCBs[slot].Status != Unused && t.PCBs[slot].PID == pid {
			return slot
		}
	}
	return 0
}

// Slot returns a pointer to the PCB at the given slot index, including
// slot 0 (the idle placeholder).
func (t *Table) Slot(slot int) *PCB {
	return &t.PCBs[slot]
}

// SetStatus performs a linear-scan status transition on pid. Callers
// needing the CPU-accounting flush that Running/Runnable/PendingSyscall
// transitions require should go through lifecycle.go's helpers instead
// of calling this directly.
func (t *Table) SetStatus(pid int, s Status) {
	if slot := t.Lookup(pid); slot != 0 {
		t.PCBs[slot].Status = s
	}
}
