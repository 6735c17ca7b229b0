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

import "github.com/rvkernel/core/pkg/hal"

// fakeHAL is a manually-advanced clock and a trivial flat memory space,
// standing in for internal/simhal in tests that need full, deterministic
// control over time: scenario tests want to assert "at exactly t=..."
// without racing a real clock.
type fakeHAL struct {
	nowUS    uint64
	ttyEmpty bool
	mem      map[int]map[uintptr][]byte
	freed    []int
	switched []int
	wfiCalls int
}

func newFakeHAL() *fakeHAL {
	return &fakeHAL{
		ttyEmpty: true,
		mem:      make(map[int]map[uintptr][]byte),
	}
}

func (f *fakeHAL) NowUS() uint64 { return f.nowUS }

func (f *fakeHAL) Advance(deltaUS uint64) { f.nowUS += deltaUS }

func (f *fakeHAL) TimerReset(core int) {}

func (f *fakeHAL) MMUTranslate(pid int, vaddr uintptr, n int) ([]byte, bool) {
	pm, ok := f.mem[pid]
	if !ok {
		pm = make(map[uintptr][]byte)
		f.mem[pid] = pm
	}
	b, ok := pm[vaddr]
	if !ok || len(b) != n {
		b = make([]byte, n)
		pm[vaddr] = b
	}
	return b, true
}

func (f *fakeHAL) MMUSwitch(pid int) { f.switched = append(f.switched, pid) }

func (f *fakeHAL) MMUFlushCache() {}

func (f *fakeHAL) MMUFree(pid int) { f.freed = append(f.freed, pid) }

func (f *fakeHAL) TTYInputEmpty() bool { return f.ttyEmpty }

func (f *fakeHAL) WaitForInterrupt(core int) { f.wfiCalls++ }

// writeSyscall stages a syscall request in pid's simulated address space
// at SyscallArgVAddr, as if user-space code had just written it before
// trapping in via ecall.
func (f *fakeHAL) writeSyscall(pid int, s Syscall) {
	window, _ := f.MMUTranslate(pid, SyscallArgVAddr, syscallWireLen)
	copy(window, EncodeSyscallArgs(s))
}

var _ hal.HAL = (*fakeHAL)(nil)
