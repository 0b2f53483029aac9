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

// A program that runs the coordination protocols over and over with random
// parameters, verifying every event stream and stopping at the first
// violation.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/net/context"

	"github.com/jacobsa/syncsim/coord"
	"github.com/jacobsa/syncsim/coord/coordtesting"
	"github.com/jacobsa/syncsim/delay"
	"github.com/jacobsa/syncutil"
	"github.com/jacobsa/timeutil"
)

var fRuns = flag.Int("runs", 1000, "Total runs to make. Zero means forever.")
var fWorkers = flag.Int("workers", 16, "Runs in flight at once.")
var fRealTime = flag.Bool("real_time", false, "Sleep for real rather than on a simulated clock.")
var fMaxDelay = flag.Duration("max_delay", 5*time.Millisecond, "Upper bound for random delays.")

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

// Between lo and hi inclusive.
func between(r *rand.Rand, lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}

func randRange(r *rand.Rand) delay.Range {
	max := int64(*fMaxDelay)
	a := time.Duration(r.Int63n(max + 1))
	b := time.Duration(r.Int63n(max + 1))
	if b < a {
		a, b = b, a
	}

	// Every once in awhile make sure we see zero-length delays.
	if r.Int31n(10) == 0 {
		a, b = 0, 0
	}

	return delay.Range{Lo: a, Hi: b}
}

// Choose a problem and random parameters for it, returning a function that
// runs it and a function that checks the resulting stream.
func randProblem(r *rand.Rand) (
	desc string,
	run func(context.Context, *coord.Env) error,
	verify func([]coord.Event) error) {
	switch r.Intn(4) {
	case 0:
		cfg := &coord.ProducerConsumerConfig{
			Items:        between(r, 1, 100),
			Capacity:     between(r, 1, 8),
			ProduceDelay: randRange(r),
			ConsumeDelay: randRange(r),
		}

		desc = fmt.Sprintf("pc %+v", *cfg)
		run = func(ctx context.Context, env *coord.Env) error {
			return coord.RunProducerConsumer(ctx, cfg, env)
		}

		verify = func(events []coord.Event) error {
			return coordtesting.CheckProducerConsumer(events, cfg.Capacity, cfg.Items)
		}

	case 1:
		cfg := &coord.ReadersWritersConfig{
			Readers:    between(r, 1, 8),
			Writers:    between(r, 1, 4),
			Rounds:     between(r, 1, 10),
			ReadHold:   randRange(r),
			ReaderRest: randRange(r),
			WriteHold:  randRange(r),
			WriterRest: randRange(r),
		}

		desc = fmt.Sprintf("rw %+v", *cfg)
		run = func(ctx context.Context, env *coord.Env) error {
			return coord.RunReadersWriters(ctx, cfg, env)
		}

		verify = func(events []coord.Event) error {
			return coordtesting.CheckReadersWriters(events, cfg.Readers, cfg.Writers, cfg.Rounds)
		}

	case 2:
		cfg := &coord.DiningConfig{
			Philosophers: between(r, 2, 9),
			Rounds:       between(r, 1, 10),
			Think:        randRange(r),
			Eat:          randRange(r),
			Rest:         randRange(r),
		}

		desc = fmt.Sprintf("dining %+v", *cfg)
		run = func(ctx context.Context, env *coord.Env) error {
			return coord.RunDiningPhilosophers(ctx, cfg, env)
		}

		verify = func(events []coord.Event) error {
			return coordtesting.CheckDiningPhilosophers(events, cfg.Philosophers, cfg.Rounds)
		}

	default:
		cfg := &coord.BarberConfig{
			Customers:         between(r, 1, 40),
			Chairs:            between(r, 1, 5),
			Arrival:           randRange(r),
			Service:           randRange(r),
			EarlyChairRelease: r.Intn(2) == 0,
		}

		desc = fmt.Sprintf("barber %+v", *cfg)
		run = func(ctx context.Context, env *coord.Env) error {
			return coord.RunSleepingBarber(ctx, cfg, env)
		}

		verify = func(events []coord.Event) error {
			return coordtesting.CheckSleepingBarber(
				events,
				cfg.Chairs,
				cfg.Customers,
				cfg.EarlyChairRelease)
		}
	}

	return
}

func runOnce(ctx context.Context, r *rand.Rand) (err error) {
	desc, run, verify := randProblem(r)

	var recorder coord.Recorder
	env := &coord.Env{
		Delays: delay.NewRandomSource(r.Int63()),
		Sink:   &recorder,
	}

	if *fRealTime {
		env.Sleeper = delay.RealSleeper()
		env.Clock = timeutil.RealClock()
	} else {
		clock := &timeutil.SimulatedClock{}
		clock.SetTime(time.Date(2015, 4, 5, 2, 15, 0, 0, time.Local))
		env.Sleeper = delay.NewSimulatedSleeper(clock)
		env.Clock = clock
	}

	err = run(ctx, env)
	if err != nil {
		err = fmt.Errorf("%s: %v", desc, err)
		return
	}

	err = verify(recorder.Events())
	if err != nil {
		err = fmt.Errorf("%s: %v", desc, err)
		return
	}

	return
}

////////////////////////////////////////////////////////////////////////
// Main
////////////////////////////////////////////////////////////////////////

func run() (err error) {
	runtime.GOMAXPROCS(4)

	var started int64
	var finished int64
	b := syncutil.NewBundle(context.Background())

	worker := func(ctx context.Context) (err error) {
		r := rand.New(rand.NewSource(delay.MakeSeed()))
		for {
			if *fRuns > 0 && atomic.AddInt64(&started, 1) > int64(*fRuns) {
				return
			}

			// Stop early if another worker has found a problem.
			select {
			case <-ctx.Done():
				err = ctx.Err()
				return

			default:
			}

			err = runOnce(ctx, r)
			if err != nil {
				return
			}

			n := atomic.AddInt64(&finished, 1)
			if n%100 == 0 {
				log.Printf("Verified %d runs.", n)
			}
		}
	}

	for i := 0; i < *fWorkers; i++ {
		b.Add(worker)
	}

	err = b.Join()
	if err != nil {
		return
	}

	log.Printf("All %d runs verified.", atomic.LoadInt64(&finished))
	return
}

func main() {
	flag.Parse()

	// Include more detailed output in stderr logs.
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	err := run()
	if err != nil {
		log.Fatal(err)
	}
}
