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

// Package introspect renders a ps-style view of the process table for
// the "inspect" CLI command.
package introspect

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mohae/deepcopy"

	"github.com/rvkernel/core/pkg/kernel"
)

// Row is one formatted process table entry.
type Row struct {
	PID    int
	Status string
	Level  int
	CPUUS  uint64
}

// Snapshot takes k's point-in-time process table copy and deep-copies it
// a second time before formatting, so the formatter never aliases
// memory the kernel might reuse for a freshly allocated slot the moment
// the lock is released. kernel.Kernel.Snapshot already hands back a
// value copy; deepcopy.Copy here is the same defensive idiom the
// teacher applies to any state handed across a trust boundary, applied
// to the array itself rather than trusted to Go's by-value semantics
// alone.
func Snapshot(k *kernel.Kernel) []Row {
	raw := k.Snapshot()
	copied := deepcopy.Copy(raw).([kernel.CAP + 1]kernel.PCB)

	var rows []Row
	for slot := 1; slot < len(copied); slot++ {
		p := copied[slot]
		if p.Status == kernel.Unused {
			continue
		}
		rows = append(rows, Row{
			PID:    p.PID,
			Status: p.Status.String(),
			Level:  p.QueueLevel,
			CPUUS:  p.TotalCPUUS,
		})
	}
	return rows
}

// WriteTable renders rows as an aligned table, in the spirit of the
// teacher's own PS command output.
func WriteTable(w io.Writer, rows []Row) error {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PID\tSTATUS\tLEVEL\tCPU_US")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", r.PID, r.Status, r.Level, r.CPUUS)
	}
	return tw.Flush()
}
