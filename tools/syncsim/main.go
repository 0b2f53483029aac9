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

// A program that runs one or all of the coordination protocols, logging each
// event as it happens and optionally verifying the recorded stream.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/net/context"

	"github.com/jacobsa/syncsim/coord"
	"github.com/jacobsa/syncsim/coord/coordtesting"
	"github.com/jacobsa/syncsim/delay"
	"github.com/jacobsa/syncutil"
	"github.com/jacobsa/timeutil"
)

var fProblem = flag.String("problem", "all", "One of pc, rw, dining, barber, all.")
var fSeed = flag.Int64("seed", 0, "Seed for random delays. Zero means pick one.")
var fTimeScale = flag.Float64("time_scale", 1, "Factor applied to every delay.")
var fVerify = flag.Bool("verify", false, "Check each event stream after the run.")

var fItems = flag.Int("items", 12, "Items sent from producer to consumer.")
var fCapacity = flag.Int("capacity", 5, "Slots in the producer/consumer channel.")

var fReaders = flag.Int("readers", 4, "The number of readers.")
var fWriters = flag.Int("writers", 2, "The number of writers.")
var fRWRounds = flag.Int("rw_rounds", 4, "Sections per reader or writer.")

var fPhilosophers = flag.Int("philosophers", 5, "The number of philosophers.")
var fDiningRounds = flag.Int("dining_rounds", 3, "Meals per philosopher.")

var fCustomers = flag.Int("customers", 10, "The number of barber customers.")
var fChairs = flag.Int("chairs", 3, "Waiting-room chairs.")
var fEarlyChairRelease = flag.Bool(
	"early_chair_release",
	false,
	"Free a customer's chair when the haircut starts rather than when it ends.")

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

type problem struct {
	name string
	run  func(ctx context.Context, env *coord.Env) error

	// Check a recorded stream.
	verify func(events []coord.Event) error
}

func problems() (ps []problem) {
	pc := coord.DefaultProducerConsumerConfig()
	pc.Items = *fItems
	pc.Capacity = *fCapacity

	rw := coord.DefaultReadersWritersConfig()
	rw.Readers = *fReaders
	rw.Writers = *fWriters
	rw.Rounds = *fRWRounds

	dining := coord.DefaultDiningConfig()
	dining.Philosophers = *fPhilosophers
	dining.Rounds = *fDiningRounds

	barber := coord.DefaultBarberConfig()
	barber.Customers = *fCustomers
	barber.Chairs = *fChairs
	barber.EarlyChairRelease = *fEarlyChairRelease

	ps = []problem{
		{
			name: "pc",
			run: func(ctx context.Context, env *coord.Env) error {
				return coord.RunProducerConsumer(ctx, pc, env)
			},
			verify: func(events []coord.Event) error {
				return coordtesting.CheckProducerConsumer(events, pc.Capacity, pc.Items)
			},
		},

		{
			name: "rw",
			run: func(ctx context.Context, env *coord.Env) error {
				return coord.RunReadersWriters(ctx, rw, env)
			},
			verify: func(events []coord.Event) error {
				return coordtesting.CheckReadersWriters(events, rw.Readers, rw.Writers, rw.Rounds)
			},
		},

		{
			name: "dining",
			run: func(ctx context.Context, env *coord.Env) error {
				return coord.RunDiningPhilosophers(ctx, dining, env)
			},
			verify: func(events []coord.Event) error {
				return coordtesting.CheckDiningPhilosophers(events, dining.Philosophers, dining.Rounds)
			},
		},

		{
			name: "barber",
			run: func(ctx context.Context, env *coord.Env) error {
				return coord.RunSleepingBarber(ctx, barber, env)
			},
			verify: func(events []coord.Event) error {
				return coordtesting.CheckSleepingBarber(
					events,
					barber.Chairs,
					barber.Customers,
					barber.EarlyChairRelease)
			},
		},
	}

	return
}

func selectProblems() (selected []problem, err error) {
	all := problems()
	if *fProblem == "all" {
		selected = all
		return
	}

	for _, p := range all {
		if p.name == *fProblem {
			selected = append(selected, p)
			return
		}
	}

	err = fmt.Errorf("Unknown problem %q.", *fProblem)
	return
}

func makeDelays() (s delay.Source, err error) {
	if *fTimeScale < 0 {
		err = errors.New("--time_scale must be non-negative.")
		return
	}

	seed := *fSeed
	if seed == 0 {
		seed = delay.MakeSeed()
	}

	log.Printf("Using seed %d.", seed)

	s = delay.NewRandomSource(seed)
	if *fTimeScale != 1 {
		s = delay.NewScaledSource(s, *fTimeScale)
	}

	return
}

// Run a single problem. Events are handed off through a channel and logged
// by a separate goroutine, so slow terminal output never holds up a worker
// that is inside a protocol lock.
func runOne(
	ctx context.Context,
	p problem,
	delays delay.Source) (err error) {
	eventChan := make(chan coord.Event, 1024)
	env := &coord.Env{
		Delays:  delays,
		Sleeper: delay.RealSleeper(),
		Clock:   timeutil.RealClock(),
		Sink:    coord.NewChanSink(eventChan),
	}

	log.Printf("===== %s =====", p.name)
	start := time.Now()

	b := syncutil.NewBundle(ctx)

	// Run the protocol.
	b.Add(func(ctx context.Context) (err error) {
		defer close(eventChan)
		err = p.run(ctx, env)
		return
	})

	// Render and remember events.
	var events []coord.Event
	b.Add(func(ctx context.Context) (err error) {
		for e := range eventChan {
			log.Printf("%v", &e)
			events = append(events, e)
		}

		return
	})

	err = b.Join()
	if err != nil {
		return
	}

	log.Printf(
		"%s finished in %v with %d events.",
		p.name,
		time.Since(start),
		len(events))

	if *fVerify {
		err = p.verify(events)
		if err != nil {
			err = fmt.Errorf("verify: %v", err)
			return
		}

		log.Printf("%s verified.", p.name)
	}

	return
}

////////////////////////////////////////////////////////////////////////
// Main
////////////////////////////////////////////////////////////////////////

func run(ctx context.Context) (err error) {
	selected, err := selectProblems()
	if err != nil {
		err = fmt.Errorf("selectProblems: %v", err)
		return
	}

	delays, err := makeDelays()
	if err != nil {
		err = fmt.Errorf("makeDelays: %v", err)
		return
	}

	for _, p := range selected {
		err = runOne(ctx, p, delays)
		if err != nil {
			err = fmt.Errorf("%s: %v", p.name, err)
			return
		}
	}

	return
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	err := run(context.Background())
	if err != nil {
		log.Fatal(err)
	}
}
