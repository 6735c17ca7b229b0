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

// L is the number of MLFQ levels, 0 (highest priority) through L-1
// (sticky bottom level).
const L = 5

// MLFQ implements the multi-level feedback queue demotion and reset
// rules (spec §4.3): demotion on quantum exhaustion approximates
// CPU-boundness, the periodic global reset prevents starvation, and the
// TTY-triggered shell boost keeps the shell responsive without
// per-keystroke accounting.
type MLFQ struct {
	BaseQuantumUS uint64
	ResetPeriodUS uint64
	ShellPID      int
	lastResetUS   uint64
}

// NewMLFQ builds a policy with the given base quantum and reset period.
func NewMLFQ(baseQuantumUS, resetPeriodUS uint64, shellPID int) *MLFQ {
	return &MLFQ{
		BaseQuantumUS: baseQuantumUS,
		ResetPeriodUS: resetPeriodUS,
		ShellPID:      shellPID,
	}
}

// quantum returns the quantum, in microseconds, for a given queue level.
func (m *MLFQ) quantum(level int) uint64 {
	return uint64(level+1) * m.BaseQuantumUS
}

// Account folds deltaUS of consumed runtime into p's current level,
// demoting it by one level (and resetting queue_time_us) once the
// level's quantum is exhausted. The bottom level is sticky: once there,
// a process neither accrues queue_time_us nor is demoted further.
func (m *MLFQ) Account(p *PCB, deltaUS uint64) {
	if p.QueueLevel >= L-1 {
		return
	}
	p.QueueTimeUS += deltaUS
	if p.QueueTimeUS >= m.quantum(p.QueueLevel) {
		p.QueueLevel++
		p.QueueTimeUS = 0
	}
}

// MaybeReset applies Rule 5 (the periodic global priority boost) and the
// interactive TTY boost. It is called once per scheduling pass, never
// mid-scan, so that a single yield() sees a consistent queue-level
// snapshot across both of its scan passes.
func (m *MLFQ) MaybeReset(t *Table, nowUS uint64, ttyInputPending bool) {
	if ttyInputPending {
		if slot := t.Lookup(m.ShellPID); slot != 0 {
			t.PCBs[slot].QueueLevel = 0
			t.PCBs[slot].QueueTimeUS = 0
		}
	}

	if nowUS-m.lastResetUS < m.ResetPeriodUS {
		return
	}
	for slot := 1; slot <= CAP; slot++ {
		if t.PCBs[slot].Status == Unused {
			continue
		}
		t.PCBs[slot].QueueLevel = 0
		t.PCBs[slot].QueueTimeUS = 0
	}
	m.lastResetUS = nowUS
}
