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

// Forks shared by philosophers seated around a table, plus a waiter that
// admits at most n-1 of them at a time to pick up forks.
//
// Every philosopher takes the left fork and then the right one. If all n
// could hold their left fork at once, each would wait forever for its right
// neighbour; with at most n-1 admitted, some admitted philosopher always
// finds both forks free eventually, so the cycle can't close.
type DiningCoordinator struct {
	/////////////////////////
	// Constant data
	/////////////////////////

	n int

	/////////////////////////
	// Permits
	/////////////////////////

	// forks[i] sits between philosophers i-1 and i.
	forks []*permit.Lock

	// INVARIANT: capacity is n-1
	waiter permit.Permit

	/////////////////////////
	// Instrumentation
	/////////////////////////

	mu *permit.Lock

	// The number of philosophers holding at least one fork, and the most
	// ever observed.
	//
	// INVARIANT: 0 <= holders <= maxHolders <= n-1
	//
	// GUARDED_BY(mu)
	holders    int
	maxHolders int
}

// Create a table for n philosophers.
//
// REQUIRES: n >= 2
func NewDiningCoordinator(n int) (d *DiningCoordinator) {
	if n < 2 {
		panic(fmt.Sprintf("need at least 2 philosophers, got %d", n))
	}

	d = &DiningCoordinator{
		n:      n,
		forks:  make([]*permit.Lock, n),
		waiter: permit.NewBounded(uint64(n-1), uint64(n-1)),
	}

	for i := range d.forks {
		d.forks[i] = permit.NewLock()
	}

	d.mu = permit.NewInvariantLock(d.checkInvariants)
	return
}

// LOCKS_REQUIRED(d.mu)
func (d *DiningCoordinator) checkInvariants() {
	if d.holders < 0 || d.holders > d.maxHolders || d.maxHolders > d.n-1 {
		panic(fmt.Sprintf(
			"holders %d, max %d, philosophers %d",
			d.holders,
			d.maxHolders,
			d.n))
	}
}

// Panic if any invariant is violated.
//
// LOCKS_EXCLUDED(d.mu)
func (d *DiningCoordinator) CheckInvariants() {
	d.mu.Do(d.checkInvariants)
}

// Return the number of philosophers.
func (d *DiningCoordinator) Size() int {
	return d.n
}

// Return the largest number of philosophers that held a fork at once.
//
// LOCKS_EXCLUDED(d.mu)
func (d *DiningCoordinator) MaxConcurrentHolders() (max int) {
	d.mu.Do(func() { max = d.maxHolders })
	return
}

func (d *DiningCoordinator) left(id int) int {
	return id
}

func (d *DiningCoordinator) right(id int) int {
	return (id + 1) % d.n
}

func (d *DiningCoordinator) checkID(id int) {
	if id < 0 || id >= d.n {
		panic(fmt.Sprintf("philosopher %d not in [0, %d)", id, d.n))
	}
}

// LOCKS_EXCLUDED(d.mu)
func (d *DiningCoordinator) adjustHolders(delta int) {
	d.mu.Do(func() {
		d.holders += delta
		if d.holders > d.maxHolders {
			d.maxHolders = d.holders
		}

		if d.holders > d.n-1 {
			panic(fmt.Sprintf("%d philosophers hold forks at once", d.holders))
		}
	})
}

// Block until the waiter admits philosopher id to the table.
func (d *DiningCoordinator) Admit(id int) {
	d.checkID(id)
	d.waiter.Acquire()
}

// Pick up the left and then the right fork of an admitted philosopher,
// blocking until each is free.
func (d *DiningCoordinator) PickUp(id int) {
	d.checkID(id)

	d.forks[d.left(id)].Lock()
	d.adjustHolders(1)
	d.forks[d.right(id)].Lock()
}

// Put down the right and then the left fork.
func (d *DiningCoordinator) PutDown(id int) {
	d.checkID(id)

	d.forks[d.right(id)].Unlock()
	d.adjustHolders(-1)
	d.forks[d.left(id)].Unlock()
}

// Tell the waiter that philosopher id has left the table.
func (d *DiningCoordinator) Leave(id int) {
	d.checkID(id)
	d.waiter.Release()
}
