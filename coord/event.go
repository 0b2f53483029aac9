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
	"time"
)

// The role of a worker taking part in a protocol.
type ParticipantKind int

const (
	Producer ParticipantKind = iota
	Consumer
	Reader
	Writer
	Philosopher
	Customer
	Barber
)

var participantNames = map[ParticipantKind]string{
	Producer:    "Producer",
	Consumer:    "Consumer",
	Reader:      "Reader",
	Writer:      "Writer",
	Philosopher: "Philosopher",
	Customer:    "Customer",
	Barber:      "Barber",
}

func (pk ParticipantKind) String() string {
	if s, ok := participantNames[pk]; ok {
		return s
	}

	return fmt.Sprintf("ParticipantKind(%d)", int(pk))
}

// A step in a worker's lifecycle.
type Kind int

const (
	Produced Kind = iota
	Consumed
	ReadStart
	ReadEnd
	WriteStart
	WriteEnd
	Thinking
	Hungry
	Eating
	DoneEating
	Arrived
	Seated
	TurnedAway
	ServiceStart
	ServiceEnd
)

var kindNames = map[Kind]string{
	Produced:     "Produced",
	Consumed:     "Consumed",
	ReadStart:    "ReadStart",
	ReadEnd:      "ReadEnd",
	WriteStart:   "WriteStart",
	WriteEnd:     "WriteEnd",
	Thinking:     "Thinking",
	Hungry:       "Hungry",
	Eating:       "Eating",
	DoneEating:   "DoneEating",
	Arrived:      "Arrived",
	Seated:       "Seated",
	TurnedAway:   "TurnedAway",
	ServiceStart: "ServiceStart",
	ServiceEnd:   "ServiceEnd",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// A record of something a worker did. Events that describe shared state are
// emitted while that state is protected, so the order in which a sink
// receives them is an order in which they could have happened.
type Event struct {
	// The run that produced the event, and when.
	Run  string
	Time time.Time

	Participant ParticipantKind
	ID          int
	Kind        Kind

	// The 1-based round of the worker, or zero for workers without rounds.
	Round int

	// Produced, Consumed: the item and the slot it passed through.
	Item int
	Slot int

	// ReadStart: the number of active readers, including this one.
	Readers int

	// Seated, TurnedAway, ServiceStart, ServiceEnd: the free chairs left.
	FreeChairs int

	// ServiceStart, ServiceEnd: the customer in the barber's chair.
	Customer int
}

// Return a short human-readable description of the kind-specific fields.
func (e *Event) Detail() string {
	switch e.Kind {
	case Produced:
		return fmt.Sprintf("item %d at slot %d", e.Item, e.Slot)

	case Consumed:
		return fmt.Sprintf("item %d from slot %d", e.Item, e.Slot)

	case ReadStart:
		return fmt.Sprintf("%d readers active", e.Readers)

	case Seated, TurnedAway:
		return fmt.Sprintf("%d free chairs", e.FreeChairs)

	case ServiceStart, ServiceEnd:
		return fmt.Sprintf("customer %d, %d free chairs", e.Customer, e.FreeChairs)
	}

	return ""
}

func (e *Event) String() string {
	s := fmt.Sprintf("%v %d %v", e.Participant, e.ID, e.Kind)
	if e.Round > 0 {
		s += fmt.Sprintf(" (round %d)", e.Round)
	}

	if d := e.Detail(); d != "" {
		s += ": " + d
	}

	return s
}

////////////////////////////////////////////////////////////////////////
// Sinks
////////////////////////////////////////////////////////////////////////

// Something that receives events. Emit is called concurrently by workers,
// sometimes while they hold protocol locks, so it must not block for long
// and must not call back into the protocol.
type Sink interface {
	Emit(e Event)
}

// An adapter that lets an ordinary function act as a sink.
type SinkFunc func(e Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// A sink that ignores everything.
var Discard Sink = SinkFunc(func(Event) {})

// A sink that remembers every event it receives, in order. The zero value is
// ready to use.
type Recorder struct {
	mu sync.Mutex

	// GUARDED_BY(mu)
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
}

// Return a copy of the events received so far.
func (r *Recorder) Events() (events []Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events = make([]Event, len(r.events))
	copy(events, r.events)
	return
}

// Return a sink that sends each event on the supplied channel. The channel's
// reader must keep up, since a worker blocked on a send may be holding a
// protocol lock.
func NewChanSink(c chan<- Event) Sink {
	return SinkFunc(func(e Event) { c <- e })
}
