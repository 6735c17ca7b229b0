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

// Package cli implements the rvkerneld subcommands on top of
// google/subcommands, the same library the teacher's own CLI entrypoint
// uses.
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/subcommands"

	"github.com/rvkernel/core/internal/config"
	"github.com/rvkernel/core/internal/introspect"
	"github.com/rvkernel/core/internal/klog"
	"github.com/rvkernel/core/internal/simhal"
	"github.com/rvkernel/core/internal/workload"
	"github.com/rvkernel/core/pkg/kernel"
)

// Boot implements subcommands.Command for "boot": it loads a boot
// configuration, spawns the standard demo process roster, and runs the
// kernel until interrupted.
type Boot struct {
	configPath      string
	interactive     bool
	ttyFIFO         string
	tick            time.Duration
	inspectInterval time.Duration
	lockPath        string
	debug           bool
}

func (*Boot) Name() string     { return "boot" }
func (*Boot) Synopsis() string { return "boot the kernel over a synthetic process roster" }
func (*Boot) Usage() string {
	return "boot [flags] - boot the kernel and run until interrupted\n"
}

func (b *Boot) SetFlags(f *flag.FlagSet) {
	f.StringVar(&b.configPath, "config", "", "path to a boot.toml; if empty, kernel.DefaultConfig() is used")
	f.BoolVar(&b.interactive, "interactive", false, "wire the TTY boost demo to the host terminal")
	f.StringVar(&b.ttyFIFO, "tty-fifo", "", "read scripted TTY input from this named FIFO instead of a live terminal")
	f.DurationVar(&b.tick, "tick", 20*time.Millisecond, "wall-clock pacing of the synthetic timer interrupt")
	f.DurationVar(&b.inspectInterval, "inspect-interval", 0, "if nonzero, print a process table snapshot on this interval")
	f.StringVar(&b.lockPath, "lock", defaultLockPath(), "single-instance boot lock file")
	f.BoolVar(&b.debug, "debug", false, "enable debug-level logging")
}

func (b *Boot) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	klog.SetDebug(b.debug)

	fl := flock.New(b.lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		klog.Fatalf("boot: acquiring lock %q: %v", b.lockPath, err)
	}
	if !locked {
		fmt.Fprintf(os.Stderr, "another rvkerneld instance already holds %q\n", b.lockPath)
		return subcommands.ExitFailure
	}
	defer fl.Unlock()

	cfg := kernel.DefaultConfig()
	if b.configPath != "" {
		cfg, err = config.Load(b.configPath)
		if err != nil {
			klog.Fatalf("boot: %v", err)
		}
	}

	tty, ttyCleanup, err := b.buildTTY(ctx)
	if err != nil {
		klog.Warningf("boot: TTY disabled: %v", err)
		tty, ttyCleanup = nil, func() {}
	}
	defer ttyCleanup()

	h := simhal.New(tty)
	k := kernel.New(cfg, h)
	driver := workload.New(k, h, b.tick)
	spawnDemoRoster(driver, cfg)

	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	if b.inspectInterval > 0 {
		go periodicInspect(runCtx, k, b.inspectInterval)
	}

	klog.Infof("booting: cores=%d shell_pid=%d", cfg.NCores, cfg.ShellPID)
	if err := k.Run(runCtx, driver); err != nil && runCtx.Err() == nil {
		fmt.Fprintf(os.Stderr, "kernel halted: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (b *Boot) buildTTY(ctx context.Context) (*simhal.TTY, func(), error) {
	switch {
	case b.ttyFIFO != "":
		return simhal.NewScriptedTTY(ctx, b.ttyFIFO)
	case b.interactive:
		return simhal.NewInteractiveTTY()
	default:
		return nil, func() {}, nil
	}
}

// spawnDemoRoster installs the same small cast of synthetic processes
// spec §8's scenarios exercise: a shell, a pair of CPU-bound spinners, a
// sender/receiver pair, a sleeper, and a process that crashes itself.
func spawnDemoRoster(d *workload.Driver, cfg kernel.Config) {
	shell := d.Spawn(workload.Shell, 0, 0)
	_ = shell // expected to land on cfg.ShellPID as the first allocation

	d.Spawn(workload.Spinner, 0, 0)
	d.Spawn(workload.Spinner, 0, 0)

	receiver := d.Spawn(workload.Receiver, kernel.ANY, 0)
	d.Spawn(workload.Sender, receiver, 0)

	d.Spawn(workload.Sleeper, 0, 250_000)
	d.Spawn(workload.Faulter, 0, 0)
}

func periodicInspect(ctx context.Context, k *kernel.Kernel, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rows := introspect.Snapshot(k)
			introspect.WriteTable(os.Stdout, rows)
		}
	}
}

func defaultLockPath() string {
	return filepath.Join(os.TempDir(), "rvkerneld.lock")
}
