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

// Package delay contains the sources of simulated work duration used by the
// coordination protocols: picking a duration from a range, and waiting for
// it to elapse.
package delay

import (
	cryptorand "crypto/rand"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"
)

// An inclusive range of durations.
type Range struct {
	Lo time.Duration
	Hi time.Duration
}

// Return a range that always yields d.
func Exactly(d time.Duration) Range {
	return Range{Lo: d, Hi: d}
}

// Return a range [lo, hi] in milliseconds.
func Millis(lo, hi int) Range {
	return Range{
		Lo: time.Duration(lo) * time.Millisecond,
		Hi: time.Duration(hi) * time.Millisecond,
	}
}

// Return an error if the range is negative or inverted.
func (r Range) Validate() (err error) {
	if r.Lo < 0 {
		err = fmt.Errorf("lower bound %v is negative", r.Lo)
		return
	}

	if r.Hi < r.Lo {
		err = fmt.Errorf("upper bound %v is below lower bound %v", r.Hi, r.Lo)
		return
	}

	return
}

func (r Range) String() string {
	return fmt.Sprintf("[%v, %v]", r.Lo, r.Hi)
}

// A source of simulated work durations.
type Source interface {
	// Return a duration within the supplied range.
	//
	// REQUIRES: r.Validate() == nil
	Pick(r Range) time.Duration
}

// Create a source that picks uniformly at random using the supplied seed.
// Safe for concurrent use.
func NewRandomSource(seed int64) (s Source) {
	s = &randomSource{
		rand: rand.New(rand.NewSource(seed)),
	}

	return
}

type randomSource struct {
	mu sync.Mutex

	// GUARDED_BY(mu)
	rand *rand.Rand
}

func (s *randomSource) Pick(r Range) (d time.Duration) {
	if r.Hi <= r.Lo {
		d = r.Lo
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d = r.Lo + time.Duration(s.rand.Int63n(int64(r.Hi-r.Lo)+1))
	return
}

// Create a source that scales every duration picked by the wrapped source by
// the supplied factor, which must be non-negative.
func NewScaledSource(wrapped Source, factor float64) (s Source) {
	if factor < 0 {
		panic(fmt.Sprintf("negative scale factor %v", factor))
	}

	s = &scaledSource{
		wrapped: wrapped,
		factor:  factor,
	}

	return
}

type scaledSource struct {
	wrapped Source
	factor  float64
}

func (s *scaledSource) Pick(r Range) (d time.Duration) {
	d = time.Duration(float64(s.wrapped.Pick(r)) * s.factor)
	return
}

// Return a non-negative seed drawn from crypto/rand.
func MakeSeed() (seed int64) {
	var buf [8]byte
	_, err := io.ReadFull(cryptorand.Reader, buf[:])
	if err != nil {
		panic(err)
	}

	seed = (int64(buf[0])>>1)<<56 |
		int64(buf[1])<<48 |
		int64(buf[2])<<40 |
		int64(buf[3])<<32 |
		int64(buf[4])<<24 |
		int64(buf[5])<<16 |
		int64(buf[6])<<8 |
		int64(buf[7])<<0

	return
}
