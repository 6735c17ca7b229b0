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

// Package config loads the boot-time platform constants of pkg/kernel's
// Config from a TOML file, the same file format spec.md itself uses to
// document the platform-defined constants table.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/rvkernel/core/pkg/kernel"
)

// Boot is the on-disk representation of pkg/kernel.Config: every field
// optional, defaulting to kernel.DefaultConfig()'s value when absent.
type Boot struct {
	NCores          *int    `toml:"n_cores"`
	USERStart       *int    `toml:"user_start"`
	ShellPID        *int    `toml:"shell_pid"`
	AppsEntry       *uint64 `toml:"apps_entry"`
	AppsArg         *uint64 `toml:"apps_arg"`
	BaseQuantumUS   *uint64 `toml:"base_quantum_us"`
	ResetPeriodUS   *uint64 `toml:"reset_period_us"`
	ResponseClampUS *uint64 `toml:"response_clamp_us"`
}

// Load reads and decodes a boot configuration file, returning a
// pkg/kernel.Config seeded from kernel.DefaultConfig() with any fields
// present in the file overridden.
func Load(path string) (kernel.Config, error) {
	cfg := kernel.DefaultConfig()

	var b Boot
	if _, err := toml.DecodeFile(path, &b); err != nil {
		return cfg, fmt.Errorf("config: decode %q: %w", path, err)
	}

	if b.NCores != nil {
		cfg.NCores = *b.NCores
	}
	if b.USERStart != nil {
		cfg.USERStart = *b.USERStart
	}
	if b.ShellPID != nil {
		cfg.ShellPID = *b.ShellPID
	}
	if b.AppsEntry != nil {
		cfg.AppsEntry = uintptr(*b.AppsEntry)
	}
	if b.AppsArg != nil {
		cfg.AppsArg = uintptr(*b.AppsArg)
	}
	if b.BaseQuantumUS != nil {
		cfg.BaseQuantumUS = *b.BaseQuantumUS
	}
	if b.ResetPeriodUS != nil {
		cfg.ResetPeriodUS = *b.ResetPeriodUS
	}
	if b.ResponseClampUS != nil {
		cfg.ResponseClampUS = *b.ResponseClampUS
	}
	return cfg, nil
}
