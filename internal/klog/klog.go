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

// Package klog is the small logging facade the rest of the kernel calls
// into, the same way the teacher's internal pkg/log wraps its backend.
// Keeping a facade here means the dispatcher and lifecycle code never
// import logrus directly, and the output format can change in one place.
package klog

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var std = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000000",
	})
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetOutput redirects all log output, e.g. to a file opened by the CLI.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// SetDebug toggles debug-level verbosity (the --debug CLI flag).
func SetDebug(on bool) {
	if on {
		std.SetLevel(logrus.DebugLevel)
		return
	}
	std.SetLevel(logrus.InfoLevel)
}

// WithCore returns an entry pre-tagged with the hart id, so every line
// emitted while handling a trap on that core is attributable to it.
func WithCore(core int) *logrus.Entry {
	return std.WithField("core", core)
}

// WithPID returns an entry pre-tagged with a process id.
func WithPID(pid int) *logrus.Entry {
	return std.WithField("pid", pid)
}

func Debugf(format string, args ...interface{}) {
	std.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	std.Infof(format, args...)
}

func Warningf(format string, args ...interface{}) {
	std.Warningf(format, args...)
}

// Fatalf logs at error level and then panics. Core logic never calls
// os.Exit directly: a kernel panic must unwind through the errgroup in
// pkg/kernel so every other simulated hart is cancelled too, rather than
// killing the process out from under them mid-trap.
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	std.Error(msg)
	panic(msg)
}
