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

package permit

import (
	"flag"
	"sync"
)

var fCheckInvariants = flag.Bool(
	"permit.check_invariants",
	false,
	"Crash when invariants registered with a lock are violated.")

// A mutual exclusion lock built from a binary permit. Unlike sync.Mutex,
// unlocking an unlocked Lock always panics, and the lock may be released by
// a goroutine other than the one that acquired it.
//
// Must be created with NewLock or NewInvariantLock.
type Lock struct {
	p     Permit
	check func()
}

var _ sync.Locker = &Lock{}

// Create an unlocked lock.
func NewLock() (l *Lock) {
	l = &Lock{
		p: NewBounded(1, 1),
	}

	return
}

// Create a lock which, when the flag -permit.check_invariants is set, calls
// the supplied function just after acquiring and just before releasing. The
// function should panic if an invariant protected by the lock is violated,
// and should have no side effects.
func NewInvariantLock(check func()) (l *Lock) {
	if check == nil {
		panic("check must be non-nil.")
	}

	l = NewLock()
	l.check = check

	return
}

func (l *Lock) Lock() {
	l.p.Acquire()
	l.checkIfEnabled()
}

func (l *Lock) Unlock() {
	l.checkIfEnabled()
	l.p.Release()
}

// Run f while holding the lock, releasing it however f exits.
func (l *Lock) Do(f func()) {
	l.Lock()
	defer l.Unlock()

	f()
}

func (l *Lock) checkIfEnabled() {
	if l.check != nil && *fCheckInvariants {
		l.check()
	}
}
