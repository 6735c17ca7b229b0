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

// All of the transition helpers below assume k.lock is already held by
// the caller (the trap dispatcher or the scheduler loop); they are not
// safe to call independently.

// flushCPUAccounting folds the runtime a PCB just consumed into
// total_cpu_us and the MLFQ policy, per spec §4.2: called on every
// transition out of Running, before the status change takes effect.
func (k *Kernel) flushCPUAccounting(p *PCB, nowUS uint64) {
	delta := nowUS - p.LastScheduledUS
	p.TotalCPUUS += delta
	k.mlfq.Account(p, delta)
}

// setRunning transitions the PCB at slot to Running on the given core,
// recording first_scheduled_us/last_scheduled_us.
func (k *Kernel) setRunning(slot, core int, nowUS uint64) {
	p := &k.table.PCBs[slot]
	p.Status = Running
	p.LastScheduledUS = nowUS
	if p.FirstScheduledUS == 0 {
		p.FirstScheduledUS = nowUS
	}
	k.table.CoreToSlot[core] = slot
}

// setRunnable transitions the PCB at slot out of Running into Runnable,
// flushing CPU accounting first.
func (k *Kernel) setRunnable(slot int, nowUS uint64) {
	p := &k.table.PCBs[slot]
	if p.Status == Running {
		k.flushCPUAccounting(p, nowUS)
	}
	p.Status = Runnable
}

// setPendingSyscall transitions the PCB at slot into PendingSyscall,
// flushing CPU accounting first if it was Running.
func (k *Kernel) setPendingSyscall(slot int, nowUS uint64) {
	p := &k.table.PCBs[slot]
	if p.Status == Running {
		k.flushCPUAccounting(p, nowUS)
	}
	p.Status = PendingSyscall
}

// Stats are the lifecycle statistics printed (and logged) at process
// termination, all in integer milliseconds per spec §6.
type Stats struct {
	PID             int
	TurnaroundMS    int64
	ResponseMS      int64
	TotalCPUMS      int64
	WaitingMS       int64
	TimerInterrupts uint64
	FinalQueueLevel int
}

func usToMS(us int64) int64 {
	return us / 1000
}

// computeStats derives the turnaround/response/waiting metrics of spec
// §4.2 from a terminated PCB's accounting fields.
func (k *Kernel) computeStats(p *PCB) Stats {
	turnaround := int64(p.TerminationTimeUS) - int64(p.CreationTimeUS)

	response := int64(p.FirstScheduledUS) - int64(p.CreationTimeUS)
	if response < 0 {
		response = 0
	}
	if response > turnaround || response > int64(k.cfg.ResponseClampUS) {
		response = turnaround / 2
	}

	waiting := turnaround - response - int64(p.TotalCPUUS)
	if waiting < 0 {
		waiting = 0
	}

	return Stats{
		PID:             p.PID,
		TurnaroundMS:    usToMS(turnaround),
		ResponseMS:      usToMS(response),
		TotalCPUMS:      usToMS(int64(p.TotalCPUUS)),
		WaitingMS:       usToMS(waiting),
		TimerInterrupts: p.TimerTickCount,
		FinalQueueLevel: p.QueueLevel,
	}
}

// freeSlot releases a single slot: it records the termination time,
// computes and emits lifecycle statistics, releases the HAL's MMU
// resources, and marks the slot Unused.
func (k *Kernel) freeSlot(slot int, nowUS uint64) {
	p := &k.table.PCBs[slot]
	if p.Status == Running {
		k.flushCPUAccounting(p, nowUS)
	}
	p.TerminationTimeUS = nowUS
	stats := k.computeStats(p)
	logTermination(stats)
	k.hal.MMUFree(p.PID)
	k.table.PCBs[slot] = PCB{}
}

// free implements free(pid) of spec §4.1: pid == ALL frees every user
// slot (pid >= USER_START); otherwise it frees the single matching slot.
// Freeing an absent pid is a silent no-op. Assumes k.lock is held.
func (k *Kernel) free(pid int) {
	nowUS := k.hal.NowUS()
	if pid == ALL {
		for slot := 1; slot <= CAP; slot++ {
			if p := &k.table.PCBs[slot]; p.Status != Unused && p.PID >= k.cfg.USERStart {
				k.freeSlot(slot, nowUS)
			}
		}
		return
	}
	if slot := k.table.Lookup(pid); slot != 0 {
		k.freeSlot(slot, nowUS)
	}
}

// Free is the lock-taking entry point for code outside the trap path
// (e.g. a boot harness tearing down a process administratively).
func (k *Kernel) Free(pid int) {
	k.lock.Lock()
	defer k.lock.Unlock()
	k.free(pid)
}
