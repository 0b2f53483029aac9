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
	"sync"
	"time"

	"github.com/jacobsa/syncsim/coord"
	"github.com/jacobsa/syncsim/coord/coordtesting"
	"github.com/jacobsa/syncsim/delay"
	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"
)

////////////////////////////////////////////////////////////////////////
// BarberStation
////////////////////////////////////////////////////////////////////////

type BarberStationTest struct {
	s *coord.BarberStation
}

func init() { RegisterTestSuite(&BarberStationTest{}) }

func (t *BarberStationTest) SetUp(ti *TestInfo) {
	t.s = coord.NewBarberStation(2, false)
}

// Start customer id arriving in the background. The returned channel
// receives whether they were seated, once they have decided.
func (t *BarberStationTest) arrive(id int) (seated chan bool) {
	seated = make(chan bool, 1)
	go t.s.Arrive(id, func(ok bool, free int) { seated <- ok })
	return
}

func (t *BarberStationTest) NoChairs() {
	ExpectThat(func() { coord.NewBarberStation(0, false) }, Panics(HasSubstr("non-positive")))
}

func (t *BarberStationTest) TurnedAwayWithoutBlocking() {
	ExpectTrue(<-t.arrive(1))
	ExpectTrue(<-t.arrive(2))
	ExpectEq(0, t.s.FreeChairs())

	// A third customer finds no chair and leaves at once, without any help
	// from the barber.
	var free int
	var seated bool
	ok := finishesWithin(5*time.Second, func() {
		seated = t.s.Arrive(3, func(_ bool, f int) { free = f })
	})

	AssertTrue(ok)
	ExpectFalse(seated)
	ExpectEq(0, free)
	t.s.CheckInvariants()
}

func (t *BarberStationTest) SeatedCustomerWaitsForHaircut() {
	var wg sync.WaitGroup
	wg.Add(1)

	haircutDone := make(chan struct{})
	go func() {
		defer wg.Done()
		t.s.Arrive(1, nil)
		close(haircutDone)
	}()

	customer, ok := t.s.Next(nil)
	AssertTrue(ok)
	ExpectEq(1, customer)

	select {
	case <-haircutDone:
		AddFailure("customer left before the haircut finished")
	case <-time.After(50 * time.Millisecond):
	}

	t.s.Finish(customer, nil)
	wg.Wait()
}

func (t *BarberStationTest) StrictChairHeldUntilFinish() {
	ExpectTrue(<-t.arrive(1))

	var freeAtStart int
	customer, _ := t.s.Next(func(c int, free int) { freeAtStart = free })
	ExpectEq(1, freeAtStart)

	var freeAtEnd int
	t.s.Finish(customer, func(free int) { freeAtEnd = free })
	ExpectEq(2, freeAtEnd)
}

func (t *BarberStationTest) EarlyReleaseFreesChairAtStart() {
	t.s = coord.NewBarberStation(1, true)
	ExpectTrue(<-t.arrive(1))

	var freeAtStart int
	customer, _ := t.s.Next(func(c int, free int) { freeAtStart = free })
	ExpectEq(1, freeAtStart)

	// Someone else can sit while customer 1 is in the barber's chair.
	ExpectTrue(<-t.arrive(2))
	t.s.CheckInvariants()

	t.s.Finish(customer, nil)
	next, _ := t.s.Next(nil)
	ExpectEq(2, next)
	t.s.Finish(next, nil)
}

func (t *BarberStationTest) ServeNServesInSeatingOrder() {
	ExpectTrue(<-t.arrive(1))
	ExpectTrue(<-t.arrive(2))

	var order []int
	t.s.ServeN(2, func(customer int) { order = append(order, customer) })

	ExpectThat(order, ElementsAre(1, 2))
	ExpectEq(2, t.s.FreeChairs())
}

func (t *BarberStationTest) CloseWithEmptyQueue() {
	t.s.Close()

	ok := finishesWithin(5*time.Second, func() {
		t.s.Serve(func(int) { AddFailure("served a customer who never came") })
	})

	ExpectTrue(ok)
}

func (t *BarberStationTest) CloseDrainsQueue() {
	ExpectTrue(<-t.arrive(1))
	ExpectTrue(<-t.arrive(2))
	t.s.Close()

	var served []int
	t.s.Serve(func(customer int) { served = append(served, customer) })

	ExpectThat(served, ElementsAre(1, 2))
}

func (t *BarberStationTest) ArriveAfterClose() {
	t.s.Close()
	ExpectThat(func() { t.s.Arrive(1, nil) }, Panics(HasSubstr("after Close")))
}

////////////////////////////////////////////////////////////////////////
// RunSleepingBarber
////////////////////////////////////////////////////////////////////////

type SleepingBarberTest struct {
	runTest
	cfg *coord.BarberConfig
}

func init() { RegisterTestSuite(&SleepingBarberTest{}) }

func (t *SleepingBarberTest) SetUp(ti *TestInfo) {
	t.runTest.SetUp(ti)
	t.cfg = coord.DefaultBarberConfig()
}

func (t *SleepingBarberTest) run() {
	var err error
	ok := finishesWithin(30*time.Second, func() {
		err = coord.RunSleepingBarber(t.ctx, t.cfg, &t.env)
	})

	AssertTrue(ok, "run did not finish")
	AssertEq(nil, err)

	events := t.recorder.Events()
	err = coordtesting.CheckSleepingBarber(
		events,
		t.cfg.Chairs,
		t.cfg.Customers,
		t.cfg.EarlyChairRelease)

	ExpectEq(nil, err)

	seated := coordtesting.Count(events, coord.Seated)
	ExpectEq(t.cfg.Customers, coordtesting.Count(events, coord.Arrived))
	ExpectEq(t.cfg.Customers, seated+coordtesting.Count(events, coord.TurnedAway))
	ExpectEq(seated, coordtesting.Count(events, coord.ServiceEnd))
}

func (t *SleepingBarberTest) Defaults() {
	t.run()
}

func (t *SleepingBarberTest) EarlyChairRelease() {
	t.cfg.EarlyChairRelease = true
	t.run()
}

func (t *SleepingBarberTest) ArrivalsOutpaceBarber() {
	// Customers arrive a millisecond apart and each haircut takes far
	// longer, so the first three fill the chairs and the rest are turned
	// away.
	t.env.Sleeper = delay.RealSleeper()
	t.cfg.Arrival = delay.Exactly(time.Millisecond)
	t.cfg.Service = delay.Exactly(200 * time.Millisecond)

	t.run()

	events := t.recorder.Events()
	ExpectEq(3, coordtesting.Count(events, coord.Seated))
	ExpectEq(7, coordtesting.Count(events, coord.TurnedAway))
}

func (t *SleepingBarberTest) BarberKeepsUp() {
	// With haircuts much faster than arrivals nobody is ever turned away.
	t.env.Sleeper = delay.RealSleeper()
	t.cfg.Customers = 5
	t.cfg.Arrival = delay.Exactly(20 * time.Millisecond)
	t.cfg.Service = delay.Exactly(0)

	t.run()
	ExpectEq(0, coordtesting.Count(t.recorder.Events(), coord.TurnedAway))
}

func (t *SleepingBarberTest) SingleChairManyCustomers() {
	t.cfg.Chairs = 1
	t.cfg.Customers = 50
	t.cfg.Arrival = delay.Millis(0, 3)
	t.cfg.Service = delay.Millis(0, 3)

	t.run()
}
