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

// Binary rvkerneld boots the educational kernel core over a synthetic
// process roster.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/rvkernel/core/internal/cli"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(new(cli.Boot), "")
	subcommands.Register(new(cli.Inspect), "")
	subcommands.Register(new(cli.VersionCmd), "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
