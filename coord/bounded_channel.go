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

// A fixed-capacity circular buffer of items. Put blocks while every slot is
// full and Take blocks while every slot is empty; neither ever fails.
//
// Slots are counted by two permits, and the cursors are protected by a lock
// because the permits alone say nothing about who may touch head and tail.
type BoundedChannel struct {
	/////////////////////////
	// Constant data
	/////////////////////////

	capacity int

	/////////////////////////
	// Permits
	/////////////////////////

	// One permit per slot that is free to write, and per slot that holds an
	// unread item.
	empty  permit.Permit
	filled permit.Permit

	/////////////////////////
	// Mutable state
	/////////////////////////

	mu *permit.Lock

	// GUARDED_BY(mu)
	slots []int

	// The next slot to read, and the next slot to write.
	//
	// INVARIANT: 0 <= head < capacity
	// INVARIANT: 0 <= tail < capacity
	// INVARIANT: tail == (head + occupied) % capacity
	//
	// GUARDED_BY(mu)
	head int
	tail int

	// INVARIANT: 0 <= occupied <= capacity
	// INVARIANT: filled.Available() <= occupied
	// INVARIANT: empty.Available() <= capacity - occupied
	//
	// GUARDED_BY(mu)
	occupied int
}

// Create an empty channel with the given number of slots.
//
// REQUIRES: capacity > 0
func NewBoundedChannel(capacity int) (c *BoundedChannel) {
	if capacity <= 0 {
		panic(fmt.Sprintf("non-positive capacity %d", capacity))
	}

	c = &BoundedChannel{
		capacity: capacity,
		empty:    permit.NewBounded(uint64(capacity), uint64(capacity)),
		filled:   permit.NewBounded(0, uint64(capacity)),
		slots:    make([]int, capacity),
	}

	c.mu = permit.NewInvariantLock(c.checkInvariants)
	return
}

// Panic if any invariant is violated.
//
// LOCKS_REQUIRED(c.mu)
func (c *BoundedChannel) checkInvariants() {
	if c.occupied < 0 || c.occupied > c.capacity {
		panic(fmt.Sprintf("occupied %d outside [0, %d]", c.occupied, c.capacity))
	}

	if c.head < 0 || c.head >= c.capacity || c.tail < 0 || c.tail >= c.capacity {
		panic(fmt.Sprintf("cursors out of range: head %d, tail %d", c.head, c.tail))
	}

	if c.tail != (c.head+c.occupied)%c.capacity {
		panic(fmt.Sprintf(
			"tail %d doesn't follow head %d by %d",
			c.tail,
			c.head,
			c.occupied))
	}

	if n := c.filled.Available(); n > uint64(c.occupied) {
		panic(fmt.Sprintf("%d filled permits for %d occupied slots", n, c.occupied))
	}

	if n := c.empty.Available(); n > uint64(c.capacity-c.occupied) {
		panic(fmt.Sprintf(
			"%d empty permits for %d free slots",
			n,
			c.capacity-c.occupied))
	}
}

// Panic if any invariant is violated.
//
// LOCKS_EXCLUDED(c.mu)
func (c *BoundedChannel) CheckInvariants() {
	c.mu.Do(c.checkInvariants)
}

// Return the number of slots.
func (c *BoundedChannel) Capacity() int {
	return c.capacity
}

// Return the number of slots holding unread items.
//
// LOCKS_EXCLUDED(c.mu)
func (c *BoundedChannel) Len() (n int) {
	c.mu.Do(func() { n = c.occupied })
	return
}

// Block until a slot is free, then write the item there. If observe is
// non-nil it is called with the slot index before the lock is released.
//
// LOCKS_EXCLUDED(c.mu)
func (c *BoundedChannel) Put(item int, observe func(slot int)) (slot int) {
	c.empty.Acquire()

	c.mu.Do(func() {
		slot = c.tail
		c.slots[slot] = item
		c.tail = (c.tail + 1) % c.capacity
		c.occupied++

		if observe != nil {
			observe(slot)
		}
	})

	c.filled.Release()
	return
}

// Block until a slot holds an item, then read it. If observe is non-nil it
// is called with the item and slot index before the lock is released.
//
// LOCKS_EXCLUDED(c.mu)
func (c *BoundedChannel) Take(observe func(item, slot int)) (item int, slot int) {
	c.filled.Acquire()

	c.mu.Do(func() {
		slot = c.head
		item = c.slots[slot]
		c.head = (c.head + 1) % c.capacity
		c.occupied--

		if observe != nil {
			observe(item, slot)
		}
	})

	c.empty.Release()
	return
}
