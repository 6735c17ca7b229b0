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

package simhal

import (
	"time"

	"github.com/cenkalti/backoff"
)

// idlePollCap bounds how stale an idle core's view of "is there TTY
// input yet" can become; it is not a correctness requirement (the next
// real trap always re-enters the dispatcher), only a bound on how long
// a demo feels unresponsive to freshly typed input while every core
// happens to be idle.
const idlePollCap = 20 * time.Millisecond

// idlePoller backs hal.HAL.WaitForInterrupt with the same constant
// backoff-and-retry idiom the teacher uses while polling for sandbox
// readiness.
type idlePoller struct{}

func newIdlePoller() *idlePoller { return &idlePoller{} }

func (p *idlePoller) wait(tty *TTY) {
	if tty == nil {
		time.Sleep(idlePollCap)
		return
	}
	b := backoff.NewConstantBackOff(idlePollCap / 4)
	_ = backoff.Retry(func() error {
		if !tty.empty() {
			return nil
		}
		return errStillIdle
	}, limitedTries(b, 4))
}

type tryLimited struct {
	backoff.BackOff
	tries, max int
}

func limitedTries(b backoff.BackOff, max int) backoff.BackOff {
	return &tryLimited{BackOff: b, max: max}
}

func (t *tryLimited) NextBackOff() time.Duration {
	t.tries++
	if t.tries > t.max {
		return backoff.Stop
	}
	return t.BackOff.NextBackOff()
}

var errStillIdle = idleErr("still idle")

type idleErr string

func (e idleErr) Error() string { return string(e) }
