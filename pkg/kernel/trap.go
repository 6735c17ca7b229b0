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
	"github.com/rvkernel/core/internal/klog"
	"github.com/rvkernel/core/pkg/hal"
)

// Trap is the entry point invoked by the architectural trap vector on
// hart core, with the kernel lock taken for its entire duration — except
// for the idle path, which releases the lock before blocking on
// WaitForInterrupt, per spec §5's explicit deadlock-avoidance mandate.
//
// savedPC/savedRegs are the values the trap prologue captured from the
// fixed context-save area before calling in; the returned values are
// what the trap epilogue must restore before returning to the selected
// process. If the core went idle, both return values are zero and the
// caller should simply re-enter the trap vector on the next interrupt.
func (k *Kernel) Trap(core int, cause hal.Cause, savedPC uintptr, savedRegs hal.RegFile) (uintptr, hal.RegFile, error) {
	k.lock.Lock()

	curSlot := k.table.CoreToSlot[core]
	if curSlot != 0 {
		cur := &k.table.PCBs[curSlot]
		cur.SavedPC = savedPC
		cur.SavedRegs = savedRegs
	}

	func() {
		// A fatal panic from dispatch releases the lock on its way out, so
		// the other cores are not left blocked on it while Run cancels them.
		defer func() {
			if r := recover(); r != nil {
				k.lock.Unlock()
				panic(r)
			}
		}()
		if cause.Interrupt {
			k.dispatchInterrupt(core, curSlot, cause)
		} else {
			k.dispatchException(core, curSlot, cause)
		}
	}()

	winnerSlot, idled := k.yield(core)
	if idled {
		// yield() already released k.lock before blocking on wfi.
		return 0, hal.RegFile{}, nil
	}

	winner := &k.table.PCBs[winnerSlot]
	pc, regs := winner.SavedPC, winner.SavedRegs
	k.lock.Unlock()
	return pc, regs, nil
}

// dispatchInterrupt handles the interrupt side of cause decode: only
// the timer interrupt is recognized, everything else is fatal.
func (k *Kernel) dispatchInterrupt(core, curSlot int, cause hal.Cause) {
	if cause.Code != hal.CauseTimer {
		klog.Fatalf("core %d: unexpected interrupt cause %d", core, cause.Code)
	}
	if curSlot != 0 {
		k.table.PCBs[curSlot].TimerTickCount++
	}
	// Accounting flush + demotion to Runnable for a still-Running PCB
	// happens uniformly in yield()'s first step, not here.
}

// dispatchException handles the exception side of cause decode: ecall
// advances a syscall, anything else from a user process is killed, and
// anything else from a kernel-resident process is fatal.
func (k *Kernel) dispatchException(core, curSlot int, cause hal.Cause) {
	switch cause.Code {
	case hal.CauseEcallFromU, hal.CauseEcallFromM:
		k.handleEcall(curSlot)
	default:
		if curSlot == 0 {
			klog.Fatalf("core %d: exception %d with no current process", core, cause.Code)
		}
		pid := k.table.PCBs[curSlot].PID
		if pid < k.cfg.USERStart {
			klog.Fatalf("core %d: exception %d from kernel-resident pid %d", core, cause.Code, pid)
		}
		klog.WithPID(pid).Warningf("killed by exception %d", cause.Code)
		k.free(pid)
	}
}

// handleEcall implements spec §4.5's ecall handling: copy the argument
// block in, mark the syscall pending, transition the caller to
// PendingSyscall, advance past the ecall instruction, and attempt
// immediate delivery.
func (k *Kernel) handleEcall(slot int) {
	if slot == 0 {
		klog.Fatalf("ecall with no current process")
	}
	p := &k.table.PCBs[slot]

	window, ok := k.hal.MMUTranslate(p.PID, SyscallArgVAddr, syscallWireLen)
	if !ok {
		klog.Fatalf("pid %d: mmu_translate failed for syscall argument block", p.PID)
	}
	req := decodeSyscallArgs(window)

	switch req.Type {
	case SysSend:
		p.Syscall = Syscall{Type: SysSend, Status: Pending, Sender: p.PID, Receiver: req.Receiver, Content: req.Content}
		if k.table.Lookup(req.Receiver) == 0 {
			klog.Fatalf("pid %d: send to nonexistent receiver %d", p.PID, req.Receiver)
		}
	case SysRecv:
		p.Syscall = Syscall{Type: SysRecv, Status: Pending, Sender: req.Sender, Receiver: p.PID}
	case SysSleep:
		p.Syscall = Syscall{Type: SysSleep, Status: Done, SleepDurationUS: req.SleepDurationUS}
		p.WakeupTimeUS = k.hal.NowUS() + req.SleepDurationUS
	case SysYield:
		p.Syscall = Syscall{Type: SysYield, Status: Pending}
	default:
		klog.Fatalf("pid %d: unknown syscall type %d", p.PID, req.Type)
	}

	k.setPendingSyscall(slot, k.hal.NowUS())
	p.SavedPC += 4 // ecall instruction width

	k.attemptProgress(slot)
}
