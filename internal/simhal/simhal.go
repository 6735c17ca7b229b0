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

// Package simhal is the concrete hal.HAL backing the demo boot harness:
// a software MMU over plain Go maps, a wall-clock timer, and a TTY input
// source fed either by a real terminal or a scripted FIFO. It stands in
// for the platform package a real architectural port would provide.
package simhal

import (
	"sync"
	"time"

	"github.com/rvkernel/core/pkg/hal"
)

// HAL is the wall-clock-backed hal.HAL implementation used outside of
// tests.
type HAL struct {
	epoch time.Time

	mmuMu sync.Mutex
	mem   map[int]map[uintptr][]byte

	tty *TTY

	idle *idlePoller
}

// New builds a HAL with the given TTY input source. Pass nil to run
// with no TTY activity ever reported (TTYInputEmpty always true).
func New(tty *TTY) *HAL {
	return &HAL{
		epoch: time.Now(),
		mem:   make(map[int]map[uintptr][]byte),
		tty:   tty,
		idle:  newIdlePoller(),
	}
}

// NowUS reports microseconds elapsed since the HAL was constructed.
func (h *HAL) NowUS() uint64 {
	return uint64(time.Since(h.epoch).Microseconds())
}

// TimerReset is a no-op here: in this simulation the next timer trap is
// driven by internal/workload's rate-limited instruction loop, not by a
// real countdown timer register.
func (h *HAL) TimerReset(core int) {}

// MMUTranslate returns the n-byte window backing vaddr in pid's
// simulated address space, lazily allocating it on first touch so a
// synthetic process's very first write doesn't need a separate "map
// this page" step.
func (h *HAL) MMUTranslate(pid int, vaddr uintptr, n int) ([]byte, bool) {
	h.mmuMu.Lock()
	defer h.mmuMu.Unlock()
	pm, ok := h.mem[pid]
	if !ok {
		pm = make(map[uintptr][]byte)
		h.mem[pid] = pm
	}
	b, ok := pm[vaddr]
	if !ok || len(b) != n {
		b = make([]byte, n)
		pm[vaddr] = b
	}
	return b, true
}

// MMUSwitch is a no-op: the software MMU above is already indexed by
// pid, so there is no address-space register to reload.
func (h *HAL) MMUSwitch(pid int) {}

// MMUFlushCache is a no-op: there is no cache to flush in a software MMU.
func (h *HAL) MMUFlushCache() {}

// MMUFree releases every page simhal allocated for pid.
func (h *HAL) MMUFree(pid int) {
	h.mmuMu.Lock()
	defer h.mmuMu.Unlock()
	delete(h.mem, pid)
}

// TTYInputEmpty reports whether any TTY input source has unread bytes
// buffered.
func (h *HAL) TTYInputEmpty() bool {
	if h.tty == nil {
		return true
	}
	return h.tty.empty()
}

// WaitForInterrupt blocks the calling core's goroutine with a capped
// constant-interval backoff until either new TTY input arrives or the cap is
// reached, mirroring the teacher's own constant-backoff wait loop around
// sandbox readiness.
func (h *HAL) WaitForInterrupt(core int) {
	h.idle.wait(h.tty)
}

var _ hal.HAL = (*HAL)(nil)
