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
	"sync"

	"golang.org/x/net/context"

	"github.com/jacobsa/syncsim/reqtrace"
	"github.com/jacobsa/syncutil"
)

// Run one barber and cfg.Customers customers, numbered from one, who arrive
// one after another separated by the arrival delay. The barber stops once
// every customer has either been served or turned away.
func RunSleepingBarber(
	ctx context.Context,
	cfg *BarberConfig,
	env *Env) (err error) {
	if err = cfg.Validate(); err != nil {
		return
	}

	ctx, report := reqtrace.Trace(ctx, "RunSleepingBarber")
	defer func() { report(err) }()

	re := newRunEnv(env)
	s := NewBarberStation(cfg.Chairs, cfg.EarlyChairRelease)
	b := syncutil.NewBundle(ctx)

	// Barber
	b.Add(func(ctx context.Context) (err error) {
		defer reqtrace.StartWithError(ctx, &err, "barber")()
		runBarber(re, s, cfg)
		return
	})

	// Customers, staggered. Once each has either sat down or left, nobody
	// else can join the queue and the station can be closed.
	var decided sync.WaitGroup
	for i := 1; i <= cfg.Customers; i++ {
		id := i
		decided.Add(1)
		b.Add(func(ctx context.Context) (err error) {
			defer reqtrace.StartWithError(ctx, &err, fmt.Sprintf("customer %d", id))()
			runCustomer(re, s, id, decided.Done)
			return
		})

		if i < cfg.Customers {
			re.pause(cfg.Arrival)
		}
	}

	decided.Wait()
	s.Close()

	if err = b.Join(); err != nil {
		err = fmt.Errorf("Join: %v", err)
		return
	}

	return
}

func runBarber(
	re *runEnv,
	s *BarberStation,
	cfg *BarberConfig) {
	for cuts := 1; ; cuts++ {
		customer, ok := s.Next(func(customer int, free int) {
			re.emit(Event{
				Participant: Barber,
				ID:          1,
				Kind:        ServiceStart,
				Round:       cuts,
				Customer:    customer,
				FreeChairs:  free,
			})
		})

		if !ok {
			return
		}

		re.pause(cfg.Service)

		s.Finish(customer, func(free int) {
			re.emit(Event{
				Participant: Barber,
				ID:          1,
				Kind:        ServiceEnd,
				Round:       cuts,
				Customer:    customer,
				FreeChairs:  free,
			})
		})
	}
}

// decided is called once the customer has either sat down or left.
func runCustomer(
	re *runEnv,
	s *BarberStation,
	id int,
	decided func()) {
	re.emit(Event{
		Participant: Customer,
		ID:          id,
		Kind:        Arrived,
	})

	s.Arrive(id, func(seated bool, free int) {
		defer decided()

		k := TurnedAway
		if seated {
			k = Seated
		}

		re.emit(Event{
			Participant: Customer,
			ID:          id,
			Kind:        k,
			FreeChairs:  free,
		})
	})
}
