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
	"fmt"

	"github.com/google/subcommands"
)

// Version is the rvkerneld build version, set at release time; left as
// a plain constant here since this repo has no release tooling of its
// own.
const Version = "0.1.0-dev"

// VersionCmd implements subcommands.Command for "version".
type VersionCmd struct{}

func (*VersionCmd) Name() string           { return "version" }
func (*VersionCmd) Synopsis() string       { return "print rvkerneld's version" }
func (*VersionCmd) Usage() string          { return "version - print rvkerneld's version\n" }
func (*VersionCmd) SetFlags(*flag.FlagSet) {}

func (*VersionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	fmt.Println("rvkerneld " + Version)
	return subcommands.ExitSuccess
}
