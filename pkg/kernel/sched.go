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

// yield implements spec §4.5 step 4, the scheduler selection ("yield")
// run at the end of every trap. Callers must hold k.lock on entry.
//
// If the core goes idle, yield releases k.lock itself before blocking on
// WaitForInterrupt and reports idled=true; the caller must not unlock
// again. Otherwise it returns the winning slot with k.lock still held.
func (k *Kernel) yield(core int) (slot int, idled bool) {
	nowUS := k.hal.NowUS()

	if cur := k.table.CoreToSlot[core]; cur != 0 && k.table.PCBs[cur].Status == Running {
		k.setRunnable(cur, nowUS)
	}

	k.mlfq.MaybeReset(k.table, nowUS, !k.hal.TTYInputEmpty())

	winner := k.scanMLFQ(nowUS)
	if winner == 0 {
		winner = k.scanFallback()
	}
	if winner == 0 {
		k.table.CoreToSlot[core] = 0
		k.hal.TimerReset(core)
		k.lock.Unlock()
		k.hal.WaitForInterrupt(core)
		return 0, true
	}

	k.installWinner(winner, core, nowUS)
	return winner, false
}

// scanMLFQ is the first, MLFQ-filtered pass: it processes wakeups and
// retries pending syscalls for every slot, then tracks the Ready|Runnable
// slot with the smallest queue_level, ties breaking toward the lower
// slot index by virtue of the scan order.
func (k *Kernel) scanMLFQ(nowUS uint64) int {
	best, bestLevel := 0, L
	for slot := 1; slot <= CAP; slot++ {
		p := &k.table.PCBs[slot]

		if p.Status == PendingSyscall && p.WakeupTimeUS > 0 && nowUS >= p.WakeupTimeUS {
			p.WakeupTimeUS = 0
			p.Status = Runnable
		}
		if p.Status == PendingSyscall {
			k.attemptProgress(slot)
		}
		if p.WakeupTimeUS > 0 && nowUS < p.WakeupTimeUS {
			continue
		}
		if (p.Status == Ready || p.Status == Runnable) && p.QueueLevel < bestLevel {
			best, bestLevel = slot, p.QueueLevel
		}
	}
	return best
}

// scanFallback is the defensive, unfiltered second pass: unreachable
// under the invariants of spec §8 if scanMLFQ already covers every
// Ready|Runnable slot, but kept as a belt-and-braces assertion per the
// Open Question in spec §9 rather than dropped.
func (k *Kernel) scanFallback() int {
	for slot := 1; slot <= CAP; slot++ {
		if s := k.table.PCBs[slot].Status; s == Ready || s == Runnable {
			return slot
		}
	}
	return 0
}

// installWinner implements spec §4.5 steps 5-7: update scheduling
// timestamps, preload argc/argv for a never-before-scheduled process,
// switch address spaces, and finally mark the winner Running.
func (k *Kernel) installWinner(slot, core int, nowUS uint64) {
	p := &k.table.PCBs[slot]
	wasReady := p.Status == Ready

	p.PrevWasUser = p.PID >= k.cfg.USERStart
	k.hal.MMUSwitch(p.PID)
	k.hal.MMUFlushCache()

	if wasReady {
		p.SavedRegs[0] = k.cfg.AppsArg
		p.SavedRegs[1] = k.cfg.AppsArg + 4
		p.SavedPC = k.cfg.AppsEntry
	}

	k.setRunning(slot, core, nowUS)
	k.hal.TimerReset(core)
}
