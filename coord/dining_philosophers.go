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
	"fmt"

	"golang.org/x/net/context"

	"github.com/jacobsa/syncsim/reqtrace"
	"github.com/jacobsa/syncutil"
)

// Run cfg.Philosophers philosophers, numbered from zero, each thinking and
// then eating cfg.Rounds times.
func RunDiningPhilosophers(
	ctx context.Context,
	cfg *DiningConfig,
	env *Env) (err error) {
	if err = cfg.Validate(); err != nil {
		return
	}

	ctx, report := reqtrace.Trace(ctx, "RunDiningPhilosophers")
	defer func() { report(err) }()

	re := newRunEnv(env)
	d := NewDiningCoordinator(cfg.Philosophers)
	b := syncutil.NewBundle(ctx)

	for i := 0; i < cfg.Philosophers; i++ {
		id := i
		b.Add(func(ctx context.Context) (err error) {
			defer reqtrace.StartWithError(ctx, &err, fmt.Sprintf("philosopher %d", id))()
			runPhilosopher(re, d, cfg, id)
			return
		})
	}

	if err = b.Join(); err != nil {
		err = fmt.Errorf("Join: %v", err)
		return
	}

	return
}

func runPhilosopher(
	re *runEnv,
	d *DiningCoordinator,
	cfg *DiningConfig,
	id int) {
	ev := func(k Kind, round int) Event {
		return Event{
			Participant: Philosopher,
			ID:          id,
			Kind:        k,
			Round:       round,
		}
	}

	for r := 1; r <= cfg.Rounds; r++ {
		re.emit(ev(Thinking, r))
		re.pause(cfg.Think)

		d.Admit(id)
		re.emit(ev(Hungry, r))

		d.PickUp(id)
		re.emit(ev(Eating, r))
		re.pause(cfg.Eat)

		// Both forks are still held, so no neighbour's Eating can precede
		// this in the stream.
		re.emit(ev(DoneEating, r))
		d.PutDown(id)
		d.Leave(id)

		re.pause(cfg.Rest)
	}
}
