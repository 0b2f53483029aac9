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

import "github.com/jacobsa/syncsim/delay"

// Parameters for RunProducerConsumer.
type ProducerConsumerConfig struct {
	// The producer emits the items 1..Items; the consumer takes Items items.
	Items int

	// The number of slots in the channel.
	Capacity int

	// How long each side pauses after a successful put or take.
	ProduceDelay delay.Range
	ConsumeDelay delay.Range
}

func DefaultProducerConsumerConfig() *ProducerConsumerConfig {
	return &ProducerConsumerConfig{
		Items:        12,
		Capacity:     5,
		ProduceDelay: delay.Millis(200, 700),
		ConsumeDelay: delay.Millis(300, 900),
	}
}

func (c *ProducerConsumerConfig) Validate() error {
	var v validator
	v.positive("Items", c.Items)
	v.positive("Capacity", c.Capacity)
	v.rangeOK("ProduceDelay", c.ProduceDelay)
	v.rangeOK("ConsumeDelay", c.ConsumeDelay)

	return v.err()
}

// Parameters for RunReadersWriters.
type ReadersWritersConfig struct {
	Readers int
	Writers int

	// The number of read or write sections each participant performs.
	Rounds int

	// Time spent inside a section, and resting between sections.
	ReadHold   delay.Range
	ReaderRest delay.Range
	WriteHold  delay.Range
	WriterRest delay.Range
}

func DefaultReadersWritersConfig() *ReadersWritersConfig {
	return &ReadersWritersConfig{
		Readers:    4,
		Writers:    2,
		Rounds:     4,
		ReadHold:   delay.Millis(200, 600),
		ReaderRest: delay.Millis(300, 800),
		WriteHold:  delay.Millis(400, 900),
		WriterRest: delay.Millis(500, 900),
	}
}

func (c *ReadersWritersConfig) Validate() error {
	var v validator
	v.positive("Readers", c.Readers)
	v.positive("Writers", c.Writers)

	v.positive("Rounds", c.Rounds)
	v.rangeOK("ReadHold", c.ReadHold)
	v.rangeOK("ReaderRest", c.ReaderRest)
	v.rangeOK("WriteHold", c.WriteHold)
	v.rangeOK("WriterRest", c.WriterRest)

	return v.err()
}

// Parameters for RunDiningPhilosophers. The waiter's capacity is always one
// less than the number of philosophers and cannot be configured.
type DiningConfig struct {
	Philosophers int
	Rounds       int

	Think delay.Range
	Eat   delay.Range
	Rest  delay.Range
}

func DefaultDiningConfig() *DiningConfig {
	return &DiningConfig{
		Philosophers: 5,
		Rounds:       3,
		Think:        delay.Millis(200, 700),
		Eat:          delay.Millis(300, 800),
		Rest:         delay.Millis(200, 600),
	}
}

func (c *DiningConfig) Validate() error {
	var v validator
	if c.Philosophers < 2 {
		v.addf("Philosophers must be at least 2, got %d", c.Philosophers)
	}

	v.positive("Rounds", c.Rounds)
	v.rangeOK("Think", c.Think)
	v.rangeOK("Eat", c.Eat)
	v.rangeOK("Rest", c.Rest)

	return v.err()
}

// Parameters for RunSleepingBarber.
type BarberConfig struct {
	Customers int

	// The number of waiting-room chairs.
	Chairs int

	// The gap between successive arrivals, and the length of a haircut.
	Arrival delay.Range
	Service delay.Range

	// If set, a customer's chair is freed as soon as the barber starts
	// cutting, so the waiting room holds Chairs customers in addition to the
	// one being served. Otherwise the chair is held until the haircut ends.
	EarlyChairRelease bool
}

func DefaultBarberConfig() *BarberConfig {
	return &BarberConfig{
		Customers: 10,
		Chairs:    3,
		Arrival:   delay.Millis(150, 400),
		Service:   delay.Millis(300, 800),
	}
}

func (c *BarberConfig) Validate() error {
	var v validator
	v.positive("Customers", c.Customers)
	v.positive("Chairs", c.Chairs)
	v.rangeOK("Arrival", c.Arrival)
	v.rangeOK("Service", c.Service)

	return v.err()
}
