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
	"testing"

	"github.com/rvkernel/core/pkg/hal"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.NCores = 2
	cfg.ShellPID = 1
	cfg.USERStart = 2
	return cfg
}

func newTestKernel() (*Kernel, *fakeHAL) {
	fh := newFakeHAL()
	return New(testConfig(), fh), fh
}

func timerTrap(t *testing.T, k *Kernel, core int) {
	t.Helper()
	if _, _, err := k.Trap(core, hal.Cause{Interrupt: true, Code: hal.CauseTimer}, 0, hal.RegFile{}); err != nil {
		t.Fatalf("timer trap: %v", err)
	}
}

func ecallTrap(t *testing.T, k *Kernel, core int) {
	t.Helper()
	if _, _, err := k.Trap(core, hal.Cause{Interrupt: false, Code: hal.CauseEcallFromU}, 0, hal.RegFile{}); err != nil {
		t.Fatalf("ecall trap: %v", err)
	}
}

func mustRunning(t *testing.T, k *Kernel, core, wantPID int) {
	t.Helper()
	pid, ok := k.CoreRunning(core)
	if !ok || pid != wantPID {
		t.Fatalf("core %d running = (%d, %v), want %d", core, pid, ok, wantPID)
	}
}

// --- Scenario 1: quantum demotion. ---

func TestQuantumDemotion(t *testing.T) {
	k, fh := newTestKernel()
	pid := k.Alloc()
	k.InstallImage(pid)

	timerTrap(t, k, 0) // idle -> selects the sole Ready process
	mustRunning(t, k, 0, pid)

	steps := []struct {
		advanceUS uint64
		wantLevel int
	}{
		{100_000, 1},
		{200_000, 2},
		{300_000, 3},
		{400_000, 4},
		{500_000, 4}, // sticky: no further demotion
	}
	for _, s := range steps {
		fh.Advance(s.advanceUS)
		timerTrap(t, k, 0)
		slot := k.table.Lookup(pid)
		if got := k.table.PCBs[slot].QueueLevel; got != s.wantLevel {
			t.Fatalf("after +%dus: queue level = %d, want %d", s.advanceUS, got, s.wantLevel)
		}
	}
}

// --- Scenario 2: priority boost / starvation fairness. ---

func TestPriorityBoostAndTieBreak(t *testing.T) {
	k, fh := newTestKernel()
	pidA := k.Alloc()
	k.InstallImage(pidA)
	slotA := k.table.Lookup(pidA)
	k.table.PCBs[slotA].QueueLevel = L - 1

	pidB := k.Alloc()
	k.InstallImage(pidB)

	timerTrap(t, k, 0)
	mustRunning(t, k, 0, pidB) // B at level 0 beats A at the bottom

	fh.Advance(k.cfg.ResetPeriodUS)
	timerTrap(t, k, 0) // B demoted to Runnable, reset fires, A (lower slot) wins the tie

	slotB := k.table.Lookup(pidB)
	if k.table.PCBs[slotA].QueueLevel != 0 || k.table.PCBs[slotB].QueueLevel != 0 {
		t.Fatalf("reset did not boost both processes to level 0")
	}
	mustRunning(t, k, 0, pidA)
}

// --- Scenario 3: interactive TTY boost. ---

func TestInteractiveTTYBoost(t *testing.T) {
	k, fh := newTestKernel()
	shellPID := k.Alloc()
	k.InstallImage(shellPID)
	if shellPID != k.cfg.ShellPID {
		t.Fatalf("expected first alloc to be the shell pid")
	}
	otherPID := k.Alloc()
	k.InstallImage(otherPID)

	shellSlot := k.table.Lookup(shellPID)
	otherSlot := k.table.Lookup(otherPID)
	k.table.PCBs[shellSlot].QueueLevel = 3
	k.table.PCBs[otherSlot].QueueLevel = 3

	fh.ttyEmpty = false
	timerTrap(t, k, 0)

	if got := k.table.PCBs[shellSlot].QueueLevel; got != 0 {
		t.Fatalf("shell queue level = %d, want 0 after TTY boost", got)
	}
	if got := k.table.PCBs[otherSlot].QueueLevel; got != 3 {
		t.Fatalf("other process queue level = %d, want unchanged 3", got)
	}
}

// --- Scenario 4: Send before Recv. ---

func TestSendBeforeRecv(t *testing.T) {
	k, fh := newTestKernel()
	p1 := k.Alloc()
	k.InstallImage(p1)
	p2 := k.Alloc()
	k.InstallImage(p2)

	timerTrap(t, k, 0)
	mustRunning(t, k, 0, p1)

	var msg Syscall
	msg.Type = SysSend
	msg.Receiver = p2
	copy(msg.Content[:], "hi")
	fh.writeSyscall(p1, msg)
	ecallTrap(t, k, 0)

	slot1 := k.table.Lookup(p1)
	if k.table.PCBs[slot1].Status != PendingSyscall {
		t.Fatalf("p1 status = %v, want PendingSyscall", k.table.PCBs[slot1].Status)
	}
	mustRunning(t, k, 0, p2) // scheduler moved on to p2

	var rreq Syscall
	rreq.Type = SysRecv
	rreq.Sender = ANY
	fh.writeSyscall(p2, rreq)
	ecallTrap(t, k, 0)

	slot2 := k.table.Lookup(p2)
	if k.table.PCBs[slot2].Status != Runnable {
		t.Fatalf("p2 status = %v, want Runnable after delivery", k.table.PCBs[slot2].Status)
	}
	// Delivery unblocked p1, and the same trap's yield then selected it
	// (slot 1 beats slot 2 at equal level 0), so it is already Running.
	if k.table.PCBs[slot1].Status != Running {
		t.Fatalf("p1 status = %v, want Running (unblocked by delivery, then selected)", k.table.PCBs[slot1].Status)
	}
	if got := string(k.table.PCBs[slot2].Syscall.Content[:2]); got != "hi" {
		t.Fatalf("delivered content = %q, want %q", got, "hi")
	}
	if k.table.PCBs[slot2].Syscall.Sender != p1 {
		t.Fatalf("resolved sender = %d, want %d", k.table.PCBs[slot2].Syscall.Sender, p1)
	}
}

// --- Scenario 5: Recv(ANY) before Send, lowest slot wins. ---

func TestRecvAnyFirstMatchBySlotIndex(t *testing.T) {
	k, fh := newTestKernel()
	p2 := k.Alloc() // receiver, allocated first so it gets the lowest slot among the three
	k.InstallImage(p2)
	p1 := k.Alloc() // sender "x", lower slot than p3
	k.InstallImage(p1)
	p3 := k.Alloc() // sender "y"
	k.InstallImage(p3)

	timerTrap(t, k, 0)
	mustRunning(t, k, 0, p2)

	var rreq Syscall
	rreq.Type = SysRecv
	rreq.Sender = ANY
	fh.writeSyscall(p2, rreq)
	ecallTrap(t, k, 0) // p2 blocks on Recv(ANY); nobody has sent yet

	mustRunning(t, k, 0, p1)
	var sendX Syscall
	sendX.Type = SysSend
	sendX.Receiver = p2
	copy(sendX.Content[:], "x")
	fh.writeSyscall(p1, sendX)
	ecallTrap(t, k, 0) // p1 Sends "x"; matches p2's waiting Recv immediately

	slot2 := k.table.Lookup(p2)
	if got := string(k.table.PCBs[slot2].Syscall.Content[:1]); got != "x" {
		t.Fatalf("delivered content = %q, want %q (lower slot index wins)", got, "x")
	}

	// Delivery unblocked both; the same trap then reselected p2, and p1 is
	// Runnable at level 0 ahead of p3; force p3 onto the core directly to
	// isolate the behavior under test (a Send with no waiting Recv).
	slot3 := k.table.Lookup(p3)
	k.table.PCBs[slot3].Status = Running
	k.table.PCBs[slot3].LastScheduledUS = fh.nowUS
	k.table.CoreToSlot[0] = slot3

	var sendY Syscall
	sendY.Type = SysSend
	sendY.Receiver = p2
	copy(sendY.Content[:], "y")
	fh.writeSyscall(p3, sendY)
	ecallTrap(t, k, 0) // p2 already satisfied: p3's Send has no waiting Recv and stays Pending

	if k.table.PCBs[slot3].Status != PendingSyscall {
		t.Fatalf("p3 status = %v, want PendingSyscall (unmatched send)", k.table.PCBs[slot3].Status)
	}
}

// --- Scenario 6: sleep / wake. ---

func TestSleepWake(t *testing.T) {
	k, fh := newTestKernel()
	fh.nowUS = 1_000_000
	pid := k.Alloc()
	k.InstallImage(pid)

	timerTrap(t, k, 0)
	mustRunning(t, k, 0, pid)

	var s Syscall
	s.Type = SysSleep
	s.SleepDurationUS = 50_000
	fh.writeSyscall(pid, s)
	ecallTrap(t, k, 0)

	slot := k.table.Lookup(pid)
	if got := k.table.PCBs[slot].WakeupTimeUS; got != 1_050_000 {
		t.Fatalf("wakeup_time = %d, want 1050000", got)
	}
	if k.table.PCBs[slot].Status != PendingSyscall {
		t.Fatalf("status = %v, want PendingSyscall while sleeping", k.table.PCBs[slot].Status)
	}

	// Only one process exists, so if the scheduler ever "selects" it,
	// CoreRunning will report it; it never should before the deadline.
	fh.Advance(49_000)
	timerTrap(t, k, 1)
	if _, ok := k.CoreRunning(1); ok {
		t.Fatalf("process selected before its wakeup time")
	}

	fh.Advance(1_000) // now at exactly sleep_start + d
	timerTrap(t, k, 1)
	mustRunning(t, k, 1, pid)
	if k.table.PCBs[slot].WakeupTimeUS != 0 {
		t.Fatalf("wakeup_time not cleared after wake")
	}
}

// --- Scenario 7: user exception kills the process and continues. ---

func TestUserExceptionKillsProcess(t *testing.T) {
	k, fh := newTestKernel()
	_ = k.Alloc() // pid 1: kernel-resident placeholder, left Loading (never a scheduling candidate)
	victim := k.Alloc()
	k.InstallImage(victim)
	survivor := k.Alloc()
	k.InstallImage(survivor)

	timerTrap(t, k, 0)
	mustRunning(t, k, 0, victim)

	if _, _, err := k.Trap(0, hal.Cause{Interrupt: false, Code: hal.CauseIllegalInstr}, 0, hal.RegFile{}); err != nil {
		t.Fatalf("exception trap: %v", err)
	}

	if slot := k.table.Lookup(victim); slot != 0 {
		t.Fatalf("victim still present in table after illegal instruction")
	}
	found := false
	for _, p := range fh.freed {
		if p == victim {
			found = true
		}
	}
	if !found {
		t.Fatalf("hal.MMUFree not called for killed process")
	}
	mustRunning(t, k, 0, survivor)
}

// --- Invariants & laws. ---

func TestMLFQIdempotentReset(t *testing.T) {
	k, fh := newTestKernel()
	for i := 0; i < 3; i++ {
		pid := k.Alloc()
		k.InstallImage(pid)
		slot := k.table.Lookup(pid)
		k.table.PCBs[slot].QueueLevel = i % L
		k.table.PCBs[slot].QueueTimeUS = 12345
	}
	fh.Advance(k.cfg.ResetPeriodUS)
	timerTrap(t, k, 0)

	for slot := 1; slot <= CAP; slot++ {
		p := &k.table.PCBs[slot]
		if p.Status == Unused {
			continue
		}
		if p.QueueLevel != 0 || p.QueueTimeUS != 0 {
			t.Fatalf("slot %d not reset: level=%d time=%d", slot, p.QueueLevel, p.QueueTimeUS)
		}
	}
}

func TestAtMostOneRunningPerCore(t *testing.T) {
	k, _ := newTestKernel()
	for i := 0; i < 3; i++ {
		pid := k.Alloc()
		k.InstallImage(pid)
		_ = pid
	}
	timerTrap(t, k, 0)
	timerTrap(t, k, 1)

	running := map[int]bool{}
	for slot := 1; slot <= CAP; slot++ {
		if k.table.PCBs[slot].Status == Running {
			if running[slot] {
				t.Fatalf("slot %d Running twice", slot)
			}
			running[slot] = true
		}
	}
	if len(running) > k.cfg.NCores {
		t.Fatalf("more Running PCBs (%d) than cores (%d)", len(running), k.cfg.NCores)
	}
	for core := 0; core < k.cfg.NCores; core++ {
		slot := k.table.CoreToSlot[core]
		if slot != 0 && k.table.PCBs[slot].Status != Running {
			t.Fatalf("core_to_slot[%d] = %d but that slot is %v, not Running", core, slot, k.table.PCBs[slot].Status)
		}
	}
}

func TestAllocIsMonotonicAndNeverReused(t *testing.T) {
	k, _ := newTestKernel()
	a := k.Alloc()
	k.Free(a)
	b := k.Alloc()
	if b <= a {
		t.Fatalf("pid %d reused/not monotonic after freeing %d", b, a)
	}
}

func TestAllocFatalWhenTableFull(t *testing.T) {
	k, _ := newTestKernel()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when allocating beyond capacity")
		}
	}()
	for i := 0; i < CAP+1; i++ {
		k.Alloc()
	}
}

func TestSendToNonexistentReceiverIsFatal(t *testing.T) {
	k, fh := newTestKernel()
	pid := k.Alloc()
	k.InstallImage(pid)
	timerTrap(t, k, 0)

	var s Syscall
	s.Type = SysSend
	s.Receiver = 999
	fh.writeSyscall(pid, s)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for send to nonexistent receiver")
		}
	}()
	ecallTrap(t, k, 0)
}
