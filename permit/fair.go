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
	"fmt"
	"math"
	"sync"

	"golang.org/x/net/context"
	"golang.org/x/sync/semaphore"
)

// The ceiling of the weighted semaphore behind a fair permit. Releases past
// this many outstanding permits panic.
const fairCeiling = math.MaxInt32

// Create a permit that grants blocked acquirers in the order in which they
// called Acquire.
func NewFair(initial uint64) (p Permit) {
	if initial > fairCeiling {
		panic(fmt.Sprintf("initial count %d exceeds %d", initial, fairCeiling))
	}

	f := &fair{
		sem:   semaphore.NewWeighted(fairCeiling),
		count: initial,
	}

	// Start with everything but the initial count checked out.
	if held := int64(fairCeiling - initial); held > 0 {
		if !f.sem.TryAcquire(held) {
			panic("fresh semaphore refused initial acquire")
		}
	}

	p = f
	return
}

type fair struct {
	sem *semaphore.Weighted

	mu sync.Mutex

	// The number of permits available, trailing the semaphore by at most the
	// window between a grant and the bookkeeping below.
	//
	// GUARDED_BY(mu)
	count uint64
}

func (f *fair) Acquire() {
	// Acquire fails only when the context is done, and this one never is.
	if err := f.sem.Acquire(context.Background(), 1); err != nil {
		panic(fmt.Sprintf("semaphore.Acquire: %v", err))
	}

	f.mu.Lock()
	f.count--
	f.mu.Unlock()
}

func (f *fair) Release() {
	f.mu.Lock()
	f.count++
	f.mu.Unlock()

	f.sem.Release(1)
}

func (f *fair) Available() (n uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n = f.count
	return
}
