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
	"fmt"

	"github.com/rvkernel/core/internal/klog"
)

// logTermination prints exactly one multi-line lifecycle-statistics
// block per spec §6, and mirrors it to the structured log at info
// level.
func logTermination(s Stats) {
	fmt.Printf("Process %d terminated:\n", s.PID)
	fmt.Printf("  Turnaround time: %d ms\n", s.TurnaroundMS)
	fmt.Printf("  Response time: %d ms\n", s.ResponseMS)
	fmt.Printf("  Total CPU time: %d ms\n", s.TotalCPUMS)
	fmt.Printf("  Waiting time: %d ms\n", s.WaitingMS)
	fmt.Printf("  Timer interrupts: %d\n", s.TimerInterrupts)
	fmt.Printf("  Final queue level: %d\n", s.FinalQueueLevel)

	klog.WithPID(s.PID).Infof(
		"terminated: turnaround=%dms response=%dms cpu=%dms waiting=%dms ticks=%d level=%d",
		s.TurnaroundMS, s.ResponseMS, s.TotalCPUMS, s.WaitingMS, s.TimerInterrupts, s.FinalQueueLevel,
	)
}
