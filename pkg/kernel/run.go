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
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rvkernel/core/internal/klog"
	"github.com/rvkernel/core/pkg/hal"
)

// TrapSource stands in for the architectural trap vector: it is how
// whatever drives the simulated (or, one day, real) machine hands the
// dispatcher its next trap on a given core, and gets back the context
// the dispatcher chose to restore. pkg/kernel never imports the
// simulation harness directly — TrapSource is the seam between them.
type TrapSource interface {
	// NextTrap blocks until the next trap is ready for core, or the
	// context is cancelled.
	NextTrap(ctx context.Context, core int) (cause hal.Cause, savedPC uintptr, savedRegs hal.RegFile, err error)

	// Resume hands the epilogue context back to whatever is standing in
	// for the trap epilogue and the resumed process.
	Resume(core int, pc uintptr, regs hal.RegFile)
}

// Run launches one goroutine per configured core, each repeatedly
// pulling the next trap from src and feeding it through Trap. A fatal
// kernel panic on any one core (via internal/klog.Fatalf) is recovered
// here, logged, and turned into an error that cancels every other
// core's goroutine through the errgroup — the multicore expression of
// spec §7's "halt the system."
func (k *Kernel) Run(ctx context.Context, src TrapSource) error {
	g, gctx := errgroup.WithContext(ctx)
	for core := 0; core < k.cfg.NCores; core++ {
		core := core
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("core %d: kernel panic: %v", core, r)
				}
			}()
			for {
				cause, pc, regs, nerr := src.NextTrap(gctx, core)
				if nerr != nil {
					return nerr
				}
				newPC, newRegs, terr := k.Trap(core, cause, pc, regs)
				if terr != nil {
					return terr
				}
				src.Resume(core, newPC, newRegs)
			}
		})
	}
	err := g.Wait()
	if err != nil && ctx.Err() == nil {
		klog.Warningf("kernel halted: %v", err)
	}
	return err
}
