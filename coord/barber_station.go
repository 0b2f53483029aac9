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

	"github.com/jacobsa/syncsim/permit"
)

// A barber shop with a waiting room of fixed size. Customers who find every
// chair taken leave at once; seated customers wait until the barber has cut
// their hair.
//
// Both permits are FIFO-fair, so the barber wakes for customers in the order
// they signalled. A customer waiting on serviceDone is woken by whichever
// haircut completes next, which is the customer's own only if the customers
// started waiting in the order they were seated; the event stream therefore
// attributes completions via the barber, who always knows whom it served.
type BarberStation struct {
	/////////////////////////
	// Constant data
	/////////////////////////

	chairs       int
	earlyRelease bool

	/////////////////////////
	// Permits
	/////////////////////////

	// One permit per customer who has sat down and not yet been taken by the
	// barber, plus one once the station is closed.
	waiting permit.Permit

	// Released once per finished haircut.
	serviceDone permit.Permit

	/////////////////////////
	// Mutable state
	/////////////////////////

	mu *permit.Lock

	// INVARIANT: 0 <= freeChairs <= chairs
	// INVARIANT: If !earlyRelease, freeChairs + len(queue) + inService == chairs
	// INVARIANT: If earlyRelease, freeChairs + len(queue) == chairs
	//
	// GUARDED_BY(mu)
	freeChairs int

	// Seated customers not yet taken by the barber, in seating order.
	//
	// GUARDED_BY(mu)
	queue []int

	// The number of customers the barber has taken and not yet finished.
	//
	// INVARIANT: 0 <= inService <= 1
	//
	// GUARDED_BY(mu)
	inService int

	// Set by Close.
	//
	// GUARDED_BY(mu)
	closed bool
}

// Create a shop with the given number of waiting-room chairs. If
// earlyRelease is set, a customer's chair is given back when the barber
// starts cutting; otherwise when the haircut ends.
//
// REQUIRES: chairs > 0
func NewBarberStation(chairs int, earlyRelease bool) (s *BarberStation) {
	if chairs <= 0 {
		panic(fmt.Sprintf("non-positive chair count %d", chairs))
	}

	s = &BarberStation{
		chairs:       chairs,
		earlyRelease: earlyRelease,
		waiting:      permit.NewFair(0),
		serviceDone:  permit.NewFair(0),
		freeChairs:   chairs,
	}

	s.mu = permit.NewInvariantLock(s.checkInvariants)
	return
}

// LOCKS_REQUIRED(s.mu)
func (s *BarberStation) checkInvariants() {
	if s.freeChairs < 0 || s.freeChairs > s.chairs {
		panic(fmt.Sprintf("free chairs %d outside [0, %d]", s.freeChairs, s.chairs))
	}

	if s.inService < 0 || s.inService > 1 {
		panic(fmt.Sprintf("%d customers in service", s.inService))
	}

	occupied := len(s.queue)
	if !s.earlyRelease {
		occupied += s.inService
	}

	if s.freeChairs+occupied != s.chairs {
		panic(fmt.Sprintf(
			"free chairs %d plus occupied %d != %d",
			s.freeChairs,
			occupied,
			s.chairs))
	}
}

// Panic if any invariant is violated.
//
// LOCKS_EXCLUDED(s.mu)
func (s *BarberStation) CheckInvariants() {
	s.mu.Do(s.checkInvariants)
}

// Return the number of waiting-room chairs.
func (s *BarberStation) Chairs() int {
	return s.chairs
}

// Return the number of free chairs.
//
// LOCKS_EXCLUDED(s.mu)
func (s *BarberStation) FreeChairs() (n int) {
	s.mu.Do(func() { n = s.freeChairs })
	return
}

// Customer id arrives. If a chair is free, sit down, wake the barber, and
// block until a haircut finishes; otherwise leave immediately. observe, if
// non-nil, is called under the lock with the outcome and the number of
// chairs left free.
//
// LOCKS_EXCLUDED(s.mu)
func (s *BarberStation) Arrive(
	id int,
	observe func(seated bool, freeChairs int)) (seated bool) {
	s.mu.Do(func() {
		if s.closed {
			panic(fmt.Sprintf("customer %d arrived after Close", id))
		}

		if s.freeChairs > 0 {
			s.freeChairs--
			s.queue = append(s.queue, id)
			seated = true
		}

		if observe != nil {
			observe(seated, s.freeChairs)
		}
	})

	if !seated {
		return
	}

	s.waiting.Release()
	s.serviceDone.Acquire()

	return
}

// Block until a customer is waiting, then take the earliest seated one into
// the barber's chair. Return ok == false if the station has been closed and
// nobody is left waiting. observe, if non-nil, is called under the lock with
// the customer and the number of chairs left free.
//
// LOCKS_EXCLUDED(s.mu)
func (s *BarberStation) Next(
	observe func(customer int, freeChairs int)) (customer int, ok bool) {
	s.waiting.Acquire()

	s.mu.Do(func() {
		if len(s.queue) == 0 {
			if !s.closed {
				panic("woken with nobody waiting")
			}

			return
		}

		if s.inService != 0 {
			panic(fmt.Sprintf("customer taken while %d in service", s.inService))
		}

		customer = s.queue[0]
		s.queue = s.queue[1:]
		s.inService++
		ok = true

		if s.earlyRelease {
			s.freeChairs++
		}

		if observe != nil {
			observe(customer, s.freeChairs)
		}
	})

	return
}

// Finish the haircut of the customer returned by the last call to Next, and
// wake a waiting customer. observe, if non-nil, is called under the lock with
// the number of chairs free afterwards.
//
// LOCKS_EXCLUDED(s.mu)
func (s *BarberStation) Finish(customer int, observe func(freeChairs int)) {
	s.mu.Do(func() {
		if s.inService != 1 {
			panic(fmt.Sprintf("finishing customer %d with %d in service", customer, s.inService))
		}

		s.inService--
		if !s.earlyRelease {
			s.freeChairs++
		}

		if observe != nil {
			observe(s.freeChairs)
		}
	})

	s.serviceDone.Release()
}

// Declare that no more customers will arrive. A barber blocked in Next with
// nobody waiting returns ok == false; one still serving drains the queue
// first.
//
// LOCKS_EXCLUDED(s.mu)
func (s *BarberStation) Close() {
	s.mu.Do(func() {
		if s.closed {
			panic("Close called twice")
		}

		s.closed = true
	})

	s.waiting.Release()
}

// Serve customers until the station is closed and the waiting room is empty,
// calling cut for each one between Next and Finish.
func (s *BarberStation) Serve(cut func(customer int)) {
	for {
		customer, ok := s.Next(nil)
		if !ok {
			return
		}

		cut(customer)
		s.Finish(customer, nil)
	}
}

// Serve exactly n customers, calling cut for each one between Next and
// Finish.
//
// REQUIRES: At least n customers eventually sit down. Otherwise the barber
// sleeps forever waiting for one who never comes; this is not detected.
func (s *BarberStation) ServeN(n int, cut func(customer int)) {
	for served := 0; served < n; served++ {
		customer, ok := s.Next(nil)
		if !ok {
			panic(fmt.Sprintf("station closed after %d of %d customers", served, n))
		}

		cut(customer)
		s.Finish(customer, nil)
	}
}
