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

package coord_test

import (
	"time"

	"github.com/jacobsa/syncsim/coord"
	"github.com/jacobsa/syncsim/coord/coordtesting"
	"github.com/jacobsa/syncsim/delay"
	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"
)

////////////////////////////////////////////////////////////////////////
// DiningCoordinator
////////////////////////////////////////////////////////////////////////

type DiningCoordinatorTest struct {
	d *coord.DiningCoordinator
}

func init() { RegisterTestSuite(&DiningCoordinatorTest{}) }

func (t *DiningCoordinatorTest) SetUp(ti *TestInfo) {
	t.d = coord.NewDiningCoordinator(5)
}

func (t *DiningCoordinatorTest) TooFewPhilosophers() {
	ExpectThat(func() { coord.NewDiningCoordinator(1) }, Panics(HasSubstr("at least 2")))
}

func (t *DiningCoordinatorTest) UnknownPhilosopher() {
	ExpectThat(func() { t.d.Admit(5) }, Panics(HasSubstr("not in [0, 5)")))
}

func (t *DiningCoordinatorTest) WaiterAdmitsAtMostNMinusOne() {
	for id := 0; id < 4; id++ {
		t.d.Admit(id)
	}

	// The fifth must wait until someone leaves.
	ok := finishesWithin(50*time.Millisecond, func() { t.d.Admit(4) })
	ExpectFalse(ok)

	t.d.Leave(0)
}

func (t *DiningCoordinatorTest) AdmittedPhilosopherEats() {
	// With four of five admitted, the fork to the right of philosopher 3
	// belongs to nobody admitted, so philosopher 3 can always eat.
	for id := 0; id < 4; id++ {
		t.d.Admit(id)
	}

	ok := finishesWithin(5*time.Second, func() {
		t.d.PickUp(3)
	})

	AssertTrue(ok)
	ExpectEq(1, t.d.MaxConcurrentHolders())

	t.d.PutDown(3)
	t.d.Leave(3)
	t.d.CheckInvariants()
}

func (t *DiningCoordinatorTest) NeighboursShareAFork() {
	t.d.Admit(0)
	t.d.PickUp(0)

	// Philosopher 1's left fork is philosopher 0's right.
	t.d.Admit(1)
	ok := finishesWithin(50*time.Millisecond, func() { t.d.PickUp(1) })
	ExpectFalse(ok)

	t.d.PutDown(0)
	t.d.Leave(0)
}

////////////////////////////////////////////////////////////////////////
// RunDiningPhilosophers
////////////////////////////////////////////////////////////////////////

type DiningPhilosophersTest struct {
	runTest
	cfg *coord.DiningConfig
}

func init() { RegisterTestSuite(&DiningPhilosophersTest{}) }

func (t *DiningPhilosophersTest) SetUp(ti *TestInfo) {
	t.runTest.SetUp(ti)
	t.cfg = coord.DefaultDiningConfig()
}

func (t *DiningPhilosophersTest) run() {
	var err error
	ok := finishesWithin(30*time.Second, func() {
		err = coord.RunDiningPhilosophers(t.ctx, t.cfg, &t.env)
	})

	AssertTrue(ok, "run did not finish; deadlock?")
	AssertEq(nil, err)

	events := t.recorder.Events()
	ExpectEq(nil, coordtesting.CheckDiningPhilosophers(events, t.cfg.Philosophers, t.cfg.Rounds))
}

func (t *DiningPhilosophersTest) FivePhilosophersThreeRounds() {
	t.run()

	events := t.recorder.Events()
	ExpectEq(15, coordtesting.Count(events, coord.Eating))
	ExpectEq(15, coordtesting.Count(events, coord.Thinking))
}

func (t *DiningPhilosophersTest) NoThinkingTime() {
	// With no delays everyone competes for forks constantly, which is when a
	// table without a waiter deadlocks.
	t.cfg.Rounds = 200
	t.cfg.Think = delay.Exactly(0)
	t.cfg.Eat = delay.Exactly(0)
	t.cfg.Rest = delay.Exactly(0)

	t.run()
	ExpectEq(1000, coordtesting.Count(t.recorder.Events(), coord.Eating))
}

func (t *DiningPhilosophersTest) TwoPhilosophers() {
	t.cfg.Philosophers = 2
	t.cfg.Rounds = 20

	t.run()
	ExpectEq(40, coordtesting.Count(t.recorder.Events(), coord.Eating))
}

func (t *DiningPhilosophersTest) RealTime() {
	t.env.Sleeper = delay.RealSleeper()
	t.cfg.Philosophers = 7
	t.cfg.Think = delay.Millis(0, 2)
	t.cfg.Eat = delay.Millis(1, 3)
	t.cfg.Rest = delay.Millis(0, 1)

	t.run()
}

// With no thinking and very short meals, forks change hands as fast as
// possible. A philosopher's DoneEating must still precede the neighbour's
// Eating in every stream.
func (t *DiningPhilosophersTest) FastForkHandoffs() {
	t.env.Sleeper = delay.RealSleeper()
	t.cfg.Philosophers = 4
	t.cfg.Rounds = 20
	t.cfg.Think = delay.Exactly(0)
	t.cfg.Eat = delay.Range{Lo: 0, Hi: 200 * time.Microsecond}
	t.cfg.Rest = delay.Exactly(0)

	for seed := 0; seed < 100; seed++ {
		var recorder coord.Recorder
		t.env.Sink = &recorder
		t.env.Delays = delay.NewRandomSource(int64(seed))

		var err error
		ok := finishesWithin(30*time.Second, func() {
			err = coord.RunDiningPhilosophers(t.ctx, t.cfg, &t.env)
		})

		AssertTrue(ok, "seed %d: run did not finish", seed)
		AssertEq(nil, err)

		err = coordtesting.CheckDiningPhilosophers(
			recorder.Events(),
			t.cfg.Philosophers,
			t.cfg.Rounds)

		AssertEq(nil, err, "seed %d", seed)
	}
}
