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

// Package permit contains counting semaphores ("permits") and the binary
// locks built from them.
package permit

import (
	"fmt"
	"math"
	"sync"

	"github.com/jacobsa/syncutil"
)

// A counting semaphore. Acquire blocks while no permits are available, then
// takes one; Release returns one and wakes a blocked acquirer.
type Permit interface {
	// Block until a permit is available, then take it.
	Acquire()

	// Return a permit, waking one blocked acquirer if any.
	Release()

	// Return the number of permits currently available. The value may be
	// stale by the time the caller looks at it.
	Available() uint64
}

// Create a permit with the supplied initial count and no upper bound. Blocked
// acquirers are woken in an unspecified order.
func New(initial uint64) (p Permit) {
	p = newCounting(initial, math.MaxUint64)
	return
}

// Create a permit with the supplied initial count that panics if released
// past max. Use this when every release must be matched by an earlier
// acquire.
//
// REQUIRES: initial <= max
func NewBounded(initial uint64, max uint64) (p Permit) {
	if initial > max {
		panic(fmt.Sprintf("initial count %d exceeds max %d", initial, max))
	}

	p = newCounting(initial, max)
	return
}

////////////////////////////////////////////////////////////////////////
// Implementation
////////////////////////////////////////////////////////////////////////

type counting struct {
	/////////////////////////
	// Constant data
	/////////////////////////

	initial uint64
	max     uint64

	/////////////////////////
	// Mutable state
	/////////////////////////

	mu syncutil.InvariantMutex

	// The number of permits available.
	//
	// INVARIANT: count <= max
	// INVARIANT: count == initial + released - acquired
	//
	// GUARDED_BY(mu)
	count uint64

	// Totals since creation.
	//
	// INVARIANT: acquired <= initial + released
	//
	// GUARDED_BY(mu)
	acquired uint64
	released uint64

	// Signalled when count is incremented.
	countChanged sync.Cond
}

func newCounting(initial uint64, max uint64) (c *counting) {
	c = &counting{
		initial: initial,
		max:     max,
		count:   initial,
	}

	c.mu = syncutil.NewInvariantMutex(c.checkInvariants)
	c.countChanged.L = &c.mu

	return
}

// LOCKS_REQUIRED(c.mu)
func (c *counting) checkInvariants() {
	// INVARIANT: count <= max
	if c.count > c.max {
		panic(fmt.Sprintf("count %d exceeds max %d", c.count, c.max))
	}

	// INVARIANT: acquired <= initial + released
	if c.acquired > c.initial+c.released {
		panic(fmt.Sprintf(
			"acquired %d exceeds initial %d plus released %d",
			c.acquired,
			c.initial,
			c.released))
	}

	// INVARIANT: count == initial + released - acquired
	if c.count != c.initial+c.released-c.acquired {
		panic(fmt.Sprintf(
			"count %d doesn't match %d + %d - %d",
			c.count,
			c.initial,
			c.released,
			c.acquired))
	}
}

// LOCKS_EXCLUDED(c.mu)
func (c *counting) Acquire() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.count == 0 {
		c.countChanged.Wait()
	}

	c.count--
	c.acquired++
}

// LOCKS_EXCLUDED(c.mu)
func (c *counting) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == c.max {
		panic(fmt.Sprintf("release would take count past max %d", c.max))
	}

	c.count++
	c.released++
	c.countChanged.Signal()
}

// LOCKS_EXCLUDED(c.mu)
func (c *counting) Available() (n uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n = c.count
	return
}
