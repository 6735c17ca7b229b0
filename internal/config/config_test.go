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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rvkernel/core/pkg/kernel"
)

func TestLoadOverridesOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boot.toml")
	contents := "n_cores = 8\nshell_pid = 3\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	def := kernel.DefaultConfig()
	if cfg.NCores != 8 {
		t.Fatalf("NCores = %d, want 8", cfg.NCores)
	}
	if cfg.ShellPID != 3 {
		t.Fatalf("ShellPID = %d, want 3", cfg.ShellPID)
	}
	if cfg.USERStart != def.USERStart {
		t.Fatalf("USERStart = %d, want default %d", cfg.USERStart, def.USERStart)
	}
	if cfg.BaseQuantumUS != def.BaseQuantumUS {
		t.Fatalf("BaseQuantumUS = %d, want default %d", cfg.BaseQuantumUS, def.BaseQuantumUS)
	}
}

func TestLoadMissingFileIsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected an error loading a nonexistent config file")
	}
}
