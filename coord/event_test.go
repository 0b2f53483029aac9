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

package coord_test

import (
	"github.com/jacobsa/syncsim/coord"
	"github.com/jacobsa/syncsim/coord/coordtesting"
	. "github.com/jacobsa/ogletest"
)

type EventTest struct {
	runTest
}

func init() { RegisterTestSuite(&EventTest{}) }

func (t *EventTest) ChanSinkDeliversInOrder() {
	c := make(chan coord.Event, 2)
	sink := coord.NewChanSink(c)

	sink.Emit(coord.Event{Kind: coord.Produced, Item: 1})
	sink.Emit(coord.Event{Kind: coord.Produced, Item: 2})

	ExpectEq(1, (<-c).Item)
	ExpectEq(2, (<-c).Item)
}

func (t *EventTest) ChanSinkCarriesAWholeRun() {
	c := make(chan coord.Event)
	t.env.Sink = coord.NewChanSink(c)

	cfg := coord.DefaultProducerConsumerConfig()
	cfg.Items = 5
	cfg.Capacity = 2

	var events []coord.Event
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range c {
			events = append(events, e)
		}
	}()

	err := coord.RunProducerConsumer(t.ctx, cfg, &t.env)
	close(c)
	<-done

	AssertEq(nil, err)
	ExpectEq(10, len(events))
	ExpectEq(nil, coordtesting.CheckProducerConsumer(events, cfg.Capacity, cfg.Items))
}

func (t *EventTest) String() {
	e := coord.Event{
		Participant: coord.Reader,
		ID:          3,
		Kind:        coord.ReadStart,
		Round:       2,
		Readers:     4,
	}

	ExpectEq("Reader 3 ReadStart (round 2): 4 readers active", e.String())
}
