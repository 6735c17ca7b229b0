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

// attemptProgress tries to advance a single PendingSyscall slot by one
// step. It is called both right after an ecall (for immediate delivery,
// spec §4.5) and once per PendingSyscall slot on every scheduler pass
// (the "retried by the scheduler on each pass" rule of spec §4.4). It
// reports whether the syscall completed.
//
// Sleep is not handled here: its wakeup condition is a deadline, checked
// against the clock in sched.go before this function is ever reached.
func (k *Kernel) attemptProgress(slot int) bool {
	p := &k.table.PCBs[slot]
	if p.Status != PendingSyscall || p.Syscall.Status != Pending {
		return false
	}
	switch p.Syscall.Type {
	case SysSend:
		return k.attemptSend(slot)
	case SysRecv:
		return k.attemptRecv(slot)
	case SysYield:
		p.Syscall.Status = Done
		k.setRunnable(slot, k.hal.NowUS())
		return true
	default:
		return false
	}
}

// deliver completes a matched Send/Recv pair: it copies content into the
// receiver's record, marks both syscalls Done, and unblocks both parties
// to Runnable atomically (both transition before the scheduler next
// runs, since this all happens under the single kernel lock).
func (k *Kernel) deliver(senderSlot, receiverSlot int) {
	s := &k.table.PCBs[senderSlot]
	r := &k.table.PCBs[receiverSlot]

	r.Syscall.Content = s.Syscall.Content
	r.Syscall.Sender = s.PID // resolve an ANY filter to the actual sender
	r.Syscall.Status = Done
	s.Syscall.Status = Done

	nowUS := k.hal.NowUS()
	k.setRunnable(senderSlot, nowUS)
	k.setRunnable(receiverSlot, nowUS)
}

// attemptSend looks for a receiver already blocked in a matching Recv.
// It never fails fatally: the one-time check that the named receiver
// exists anywhere in the table happens at ecall submission time
// (trap.go), since a pid that existed at submission but has since
// exited is a runtime condition, not a misconfiguration.
func (k *Kernel) attemptSend(senderSlot int) bool {
	s := &k.table.PCBs[senderSlot]
	rslot := k.table.Lookup(s.Syscall.Receiver)
	if rslot == 0 {
		return false
	}
	r := &k.table.PCBs[rslot]
	if r.Status != PendingSyscall || r.Syscall.Status != Pending || r.Syscall.Type != SysRecv {
		return false
	}
	if r.Syscall.Sender != ANY && r.Syscall.Sender != s.PID {
		return false
	}
	k.deliver(senderSlot, rslot)
	return true
}

// attemptRecv scans for a Send already blocked and targeting this pid,
// honoring the ANY filter. Ties among multiple matching senders break by
// lower slot index (stable first-wins scan), per spec §8 scenario 5.
func (k *Kernel) attemptRecv(receiverSlot int) bool {
	r := &k.table.PCBs[receiverSlot]
	filter := r.Syscall.Sender
	for slot := 1; slot <= CAP; slot++ {
		s := &k.table.PCBs[slot]
		if s.Status != PendingSyscall || s.Syscall.Status != Pending || s.Syscall.Type != SysSend {
			continue
		}
		if s.Syscall.Receiver != r.PID {
			continue
		}
		if filter != ANY && filter != s.PID {
			continue
		}
		k.deliver(slot, receiverSlot)
		return true
	}
	return false
}
