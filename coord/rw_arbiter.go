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

	"github.com/jacobsa/syncsim/permit"
)

// A readers-preference reader/writer lock. Readers never wait for other
// readers, only for a writer already inside; a writer waits until no reader
// is active. A steady stream of readers can therefore keep a writer waiting
// forever.
type ReadWriteArbiter struct {
	// Held by the active readers as a group, or by a single writer.
	exclusive permit.Permit

	mu *permit.Lock

	// The number of readers that have begun and not yet ended a read,
	// including a first reader still waiting for exclusive.
	//
	// GUARDED_BY(mu)
	activeReaders int

	/////////////////////////
	// Instrumentation
	/////////////////////////

	statsMu sync.Mutex

	// Participants currently between Begin and End, counted only once access
	// has been granted.
	//
	// INVARIANT: writersInside <= 1
	// INVARIANT: writersInside == 0 || readersInside == 0
	//
	// GUARDED_BY(statsMu)
	readersInside int
	writersInside int
}

func NewReadWriteArbiter() (a *ReadWriteArbiter) {
	a = &ReadWriteArbiter{
		exclusive: permit.NewBounded(1, 1),
	}

	a.mu = permit.NewInvariantLock(a.checkReaderCount)
	return
}

// LOCKS_REQUIRED(a.mu)
func (a *ReadWriteArbiter) checkReaderCount() {
	if a.activeReaders < 0 {
		panic(fmt.Sprintf("negative reader count %d", a.activeReaders))
	}
}

// LOCKS_REQUIRED(a.statsMu)
func (a *ReadWriteArbiter) checkInside() {
	if a.writersInside > 1 {
		panic(fmt.Sprintf("%d writers inside", a.writersInside))
	}

	if a.writersInside > 0 && a.readersInside > 0 {
		panic(fmt.Sprintf(
			"writer inside alongside %d readers",
			a.readersInside))
	}
}

// Panic if any invariant is violated.
//
// LOCKS_EXCLUDED(a.statsMu)
func (a *ReadWriteArbiter) CheckInvariants() {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()

	a.checkInside()
}

func (a *ReadWriteArbiter) adjustInside(readers, writers int) {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()

	a.readersInside += readers
	a.writersInside += writers
	a.checkInside()
}

// Block until reading is allowed. Return the number of active readers,
// including the caller. observe, if non-nil, is called with that number
// while the count is still locked.
//
// LOCKS_EXCLUDED(a.mu)
func (a *ReadWriteArbiter) BeginRead(observe func(active int)) (active int) {
	// The first reader waits for exclusive while holding mu, so later
	// readers queue up behind it rather than slipping past the writer.
	a.mu.Do(func() {
		a.activeReaders++
		if a.activeReaders == 1 {
			a.exclusive.Acquire()
		}

		active = a.activeReaders
		if observe != nil {
			observe(active)
		}
	})

	a.adjustInside(1, 0)
	return
}

// End a read begun with BeginRead. observe, if non-nil, is called under the
// count lock before the caller stops counting as active, with the number of
// readers that will remain.
//
// LOCKS_EXCLUDED(a.mu)
func (a *ReadWriteArbiter) EndRead(observe func(remaining int)) {
	a.adjustInside(-1, 0)

	a.mu.Do(func() {
		if observe != nil {
			observe(a.activeReaders - 1)
		}

		a.activeReaders--
		if a.activeReaders == 0 {
			a.exclusive.Release()
		}
	})
}

// Block until no reader or other writer is active.
func (a *ReadWriteArbiter) BeginWrite() {
	a.exclusive.Acquire()
	a.adjustInside(0, 1)
}

// End a write begun with BeginWrite.
func (a *ReadWriteArbiter) EndWrite() {
	a.adjustInside(0, -1)
	a.exclusive.Release()
}
