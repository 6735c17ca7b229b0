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

package cli

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/rvkernel/core/internal/config"
	"github.com/rvkernel/core/internal/introspect"
	"github.com/rvkernel/core/internal/klog"
	"github.com/rvkernel/core/internal/simhal"
	"github.com/rvkernel/core/internal/workload"
	"github.com/rvkernel/core/pkg/kernel"
)

// Inspect implements subcommands.Command for "inspect": it runs a fresh
// kernel instance over the demo roster for a fixed duration, headless,
// and prints the final process table. It is the single-shot counterpart
// to boot's --inspect-interval: useful for a quick "does this look
// right" check without standing up a long-running instance.
type Inspect struct {
	configPath string
	runFor     time.Duration
}

func (*Inspect) Name() string     { return "inspect" }
func (*Inspect) Synopsis() string { return "run the demo roster briefly and print the process table" }
func (*Inspect) Usage() string {
	return "inspect [flags] - boot headlessly, run briefly, print the process table\n"
}

func (i *Inspect) SetFlags(f *flag.FlagSet) {
	f.StringVar(&i.configPath, "config", "", "path to a boot.toml; if empty, kernel.DefaultConfig() is used")
	f.DurationVar(&i.runFor, "for", 2*time.Second, "how long to run before snapshotting")
}

func (i *Inspect) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := kernel.DefaultConfig()
	if i.configPath != "" {
		var err error
		cfg, err = config.Load(i.configPath)
		if err != nil {
			klog.Fatalf("inspect: %v", err)
		}
	}

	h := simhal.New(nil)
	k := kernel.New(cfg, h)
	driver := workload.New(k, h, 5*time.Millisecond)
	spawnDemoRoster(driver, cfg)

	runCtx, cancel := context.WithTimeout(ctx, i.runFor)
	defer cancel()
	if err := k.Run(runCtx, driver); err != nil && runCtx.Err() == nil {
		klog.Warningf("inspect: kernel halted early: %v", err)
	}

	rows := introspect.Snapshot(k)
	introspect.WriteTable(os.Stdout, rows)
	return subcommands.ExitSuccess
}
