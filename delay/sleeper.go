// Copyright 2015 Google Inc. All Rights Reserved.
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

package delay

import (
	"runtime"
	"time"

	"github.com/jacobsa/timeutil"
)

// Something that waits for simulated work to complete.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Return a sleeper that blocks the calling goroutine for d of wall time.
func RealSleeper() Sleeper {
	return realSleeper{}
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}

	time.Sleep(d)
}

// Create a sleeper that, instead of blocking, advances the supplied clock by
// the requested duration and yields the processor. Useful for running
// protocols quickly in tests while keeping event timestamps meaningful.
func NewSimulatedSleeper(clock *timeutil.SimulatedClock) Sleeper {
	return &simulatedSleeper{clock: clock}
}

type simulatedSleeper struct {
	clock *timeutil.SimulatedClock
}

func (s *simulatedSleeper) Sleep(d time.Duration) {
	if d > 0 {
		s.clock.AdvanceTime(d)
	}

	runtime.Gosched()
}
