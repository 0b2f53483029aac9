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

// Package coordtesting checks recorded event streams against the guarantees
// of each protocol. Events describing shared state are emitted while that
// state is protected, so replaying a stream in order reproduces every state
// the protocol passed through.
package coordtesting

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/jacobsa/syncsim/coord"
)

// Stop collecting after this many problems; the first few tell the story.
const maxProblems = 20

type checker struct {
	errs *multierror.Error
	n    int
}

func (c *checker) addf(index int, format string, a ...interface{}) {
	c.n++
	if c.n > maxProblems {
		return
	}

	msg := fmt.Sprintf(format, a...)
	c.errs = multierror.Append(c.errs, fmt.Errorf("event %d: %s", index, msg))
}

func (c *checker) err() error {
	return c.errs.ErrorOrNil()
}

// Return the events of the given kinds, in order.
func Filter(events []coord.Event, kinds ...coord.Kind) (filtered []coord.Event) {
	for _, e := range events {
		for _, k := range kinds {
			if e.Kind == k {
				filtered = append(filtered, e)
				break
			}
		}
	}

	return
}

// Return the number of events of the given kind.
func Count(events []coord.Event, kind coord.Kind) int {
	return len(Filter(events, kind))
}

////////////////////////////////////////////////////////////////////////
// Producer/consumer
////////////////////////////////////////////////////////////////////////

// Check a stream from coord.RunProducerConsumer: the number of occupied slots
// stays within [0, capacity], every take returns the item most recently put
// into its slot, and the consumer sees the items 1..items in order.
func CheckProducerConsumer(events []coord.Event, capacity int, items int) error {
	var c checker

	filled := make(map[int]int)
	occupied := 0
	produced := 0
	consumed := 0

	for i, e := range events {
		switch e.Kind {
		case coord.Produced:
			produced++
			if e.Slot < 0 || e.Slot >= capacity {
				c.addf(i, "slot %d outside [0, %d)", e.Slot, capacity)
			}

			if prev, ok := filled[e.Slot]; ok {
				c.addf(i, "item %d overwrote unread item %d in slot %d", e.Item, prev, e.Slot)
			}

			filled[e.Slot] = e.Item
			occupied++
			if occupied > capacity {
				c.addf(i, "%d slots occupied, capacity %d", occupied, capacity)
			}

		case coord.Consumed:
			consumed++
			want, ok := filled[e.Slot]
			if !ok {
				c.addf(i, "took item %d from empty slot %d", e.Item, e.Slot)
			} else if want != e.Item {
				c.addf(i, "took item %d from slot %d holding %d", e.Item, e.Slot, want)
			}

			delete(filled, e.Slot)
			occupied--
			if occupied < 0 {
				c.addf(i, "%d slots occupied", occupied)
			}

			if e.Item != consumed {
				c.addf(i, "consumer saw item %d, want %d", e.Item, consumed)
			}
		}
	}

	if produced != items || consumed != items {
		c.addf(len(events), "produced %d and consumed %d, want %d", produced, consumed, items)
	}

	return c.err()
}

////////////////////////////////////////////////////////////////////////
// Readers/writers
////////////////////////////////////////////////////////////////////////

// Check a stream from coord.RunReadersWriters: no reader is inside while a
// writer is, at most one writer is inside at a time, each ReadStart reports
// the readers inside at that point, and every participant completes its
// rounds.
func CheckReadersWriters(events []coord.Event, readers, writers, rounds int) error {
	var c checker

	readersInside := make(map[int]bool)
	writersInside := make(map[int]bool)
	reads := make(map[int]int)
	writes := make(map[int]int)

	for i, e := range events {
		switch e.Kind {
		case coord.ReadStart:
			if len(writersInside) > 0 {
				c.addf(i, "reader %d started while a writer is inside", e.ID)
			}

			if readersInside[e.ID] {
				c.addf(i, "reader %d started twice", e.ID)
			}

			if want := len(readersInside) + 1; e.Readers != want {
				c.addf(i, "reader %d reported %d active readers, want %d", e.ID, e.Readers, want)
			}

			readersInside[e.ID] = true

		case coord.ReadEnd:
			if !readersInside[e.ID] {
				c.addf(i, "reader %d ended without starting", e.ID)
			}

			delete(readersInside, e.ID)
			reads[e.ID]++

		case coord.WriteStart:
			if len(writersInside) > 0 {
				c.addf(i, "writer %d started while another writer is inside", e.ID)
			}

			if len(readersInside) > 0 {
				c.addf(i, "writer %d started with %d readers inside", e.ID, len(readersInside))
			}

			writersInside[e.ID] = true

		case coord.WriteEnd:
			if !writersInside[e.ID] {
				c.addf(i, "writer %d ended without starting", e.ID)
			}

			delete(writersInside, e.ID)
			writes[e.ID]++
		}
	}

	for id := 1; id <= readers; id++ {
		if reads[id] != rounds {
			c.addf(len(events), "reader %d completed %d reads, want %d", id, reads[id], rounds)
		}
	}

	for id := 1; id <= writers; id++ {
		if writes[id] != rounds {
			c.addf(len(events), "writer %d completed %d writes, want %d", id, writes[id], rounds)
		}
	}

	return c.err()
}

////////////////////////////////////////////////////////////////////////
// Dining philosophers
////////////////////////////////////////////////////////////////////////

// Check a stream from coord.RunDiningPhilosophers: at most n-1 philosophers
// are admitted at once, neighbours never eat at the same time, and every
// philosopher eats rounds times.
func CheckDiningPhilosophers(events []coord.Event, n, rounds int) error {
	var c checker

	admitted := make(map[int]bool)
	eating := make(map[int]bool)
	meals := make(map[int]int)

	for i, e := range events {
		switch e.Kind {
		case coord.Hungry:
			admitted[e.ID] = true
			if len(admitted) > n-1 {
				c.addf(i, "%d philosophers admitted at once", len(admitted))
			}

		case coord.Eating:
			if !admitted[e.ID] {
				c.addf(i, "philosopher %d eating without admission", e.ID)
			}

			left := (e.ID + n - 1) % n
			right := (e.ID + 1) % n
			if eating[left] || eating[right] {
				c.addf(i, "philosopher %d eating next to a neighbour", e.ID)
			}

			eating[e.ID] = true
			meals[e.ID]++

		case coord.DoneEating:
			if !eating[e.ID] {
				c.addf(i, "philosopher %d finished without eating", e.ID)
			}

			delete(eating, e.ID)
			delete(admitted, e.ID)
		}
	}

	for id := 0; id < n; id++ {
		if meals[id] != rounds {
			c.addf(len(events), "philosopher %d ate %d times, want %d", id, meals[id], rounds)
		}
	}

	return c.err()
}

////////////////////////////////////////////////////////////////////////
// Sleeping barber
////////////////////////////////////////////////////////////////////////

// Check a stream from coord.RunSleepingBarber: no more than chairs customers
// occupy chairs at once, customers are turned away only when no chair is
// free, the barber serves seated customers one at a time in seating order,
// and every customer either is served or leaves.
func CheckSleepingBarber(
	events []coord.Event,
	chairs int,
	customers int,
	earlyRelease bool) error {
	var c checker

	occupied := 0
	var queue []int
	inService := -1
	outcome := make(map[int]coord.Kind)
	served := make(map[int]bool)

	checkFree := func(i int, e coord.Event) {
		if e.FreeChairs != chairs-occupied {
			c.addf(i, "%v reports %d free chairs, replay says %d", e.Kind, e.FreeChairs, chairs-occupied)
		}
	}

	for i, e := range events {
		switch e.Kind {
		case coord.Seated:
			if _, ok := outcome[e.ID]; ok {
				c.addf(i, "customer %d decided twice", e.ID)
			}

			outcome[e.ID] = coord.Seated
			occupied++
			if occupied > chairs {
				c.addf(i, "%d customers seated, %d chairs", occupied, chairs)
			}

			queue = append(queue, e.ID)
			checkFree(i, e)

		case coord.TurnedAway:
			if _, ok := outcome[e.ID]; ok {
				c.addf(i, "customer %d decided twice", e.ID)
			}

			outcome[e.ID] = coord.TurnedAway
			if occupied < chairs {
				c.addf(i, "customer %d turned away with %d free chairs", e.ID, chairs-occupied)
			}

			checkFree(i, e)

		case coord.ServiceStart:
			if inService >= 0 {
				c.addf(i, "started customer %d while serving %d", e.Customer, inService)
			}

			if len(queue) == 0 || queue[0] != e.Customer {
				c.addf(i, "started customer %d out of seating order %v", e.Customer, queue)
			}

			if len(queue) > 0 {
				queue = queue[1:]
			}

			inService = e.Customer
			if earlyRelease {
				occupied--
			}

			checkFree(i, e)

		case coord.ServiceEnd:
			if inService != e.Customer {
				c.addf(i, "finished customer %d while serving %d", e.Customer, inService)
			}

			if served[e.Customer] {
				c.addf(i, "customer %d served twice", e.Customer)
			}

			served[e.Customer] = true
			inService = -1
			if !earlyRelease {
				occupied--
			}

			checkFree(i, e)
		}
	}

	for id := 1; id <= customers; id++ {
		switch outcome[id] {
		case coord.Seated:
			if !served[id] {
				c.addf(len(events), "customer %d seated but never served", id)
			}

		case coord.TurnedAway:

		default:
			c.addf(len(events), "customer %d never decided", id)
		}
	}

	return c.err()
}
