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

package coord

import (
	"github.com/google/uuid"
	"github.com/jacobsa/syncsim/delay"
	"github.com/jacobsa/timeutil"
)

// The collaborators a protocol run depends on. Any nil field is replaced with
// a default: a randomly seeded source, a real sleeper, the real clock and a
// sink that discards events.
type Env struct {
	Delays  delay.Source
	Sleeper delay.Sleeper
	Clock   timeutil.Clock
	Sink    Sink
}

// Per-run state shared by every worker of a run.
type runEnv struct {
	id      string
	delays  delay.Source
	sleeper delay.Sleeper
	clock   timeutil.Clock
	sink    Sink
}

func newRunEnv(env *Env) (re *runEnv) {
	re = &runEnv{
		id: uuid.New().String(),
	}

	if env != nil {
		re.delays = env.Delays
		re.sleeper = env.Sleeper
		re.clock = env.Clock
		re.sink = env.Sink
	}

	if re.delays == nil {
		re.delays = delay.NewRandomSource(delay.MakeSeed())
	}

	if re.sleeper == nil {
		re.sleeper = delay.RealSleeper()
	}

	if re.clock == nil {
		re.clock = timeutil.RealClock()
	}

	if re.sink == nil {
		re.sink = Discard
	}

	re.sink = newDebugSink(re.sink)
	return
}

// Simulate work whose duration is picked from r.
func (re *runEnv) pause(r delay.Range) {
	re.sleeper.Sleep(re.delays.Pick(r))
}

// Stamp and deliver an event.
func (re *runEnv) emit(e Event) {
	e.Run = re.id
	e.Time = re.clock.Now()
	re.sink.Emit(e)
}
