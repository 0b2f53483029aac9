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
	"github.com/jacobsa/syncsim/delay"
	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"
)

type ConfigTest struct {
	runTest
}

func init() { RegisterTestSuite(&ConfigTest{}) }

func (t *ConfigTest) DefaultsAreValid() {
	ExpectEq(nil, coord.DefaultProducerConsumerConfig().Validate())
	ExpectEq(nil, coord.DefaultReadersWritersConfig().Validate())
	ExpectEq(nil, coord.DefaultDiningConfig().Validate())
	ExpectEq(nil, coord.DefaultBarberConfig().Validate())
}

func (t *ConfigTest) ReportsEveryProblem() {
	cfg := &coord.ProducerConsumerConfig{
		Items:        0,
		Capacity:     -1,
		ProduceDelay: delay.Millis(5, 1),
	}

	err := cfg.Validate()
	AssertNe(nil, err)

	_, ok := err.(*coord.ConfigurationError)
	ExpectTrue(ok)

	ExpectThat(err, Error(HasSubstr("invalid configuration")))
	ExpectThat(err, Error(HasSubstr("Items must be positive, got 0")))
	ExpectThat(err, Error(HasSubstr("Capacity must be positive, got -1")))
	ExpectThat(err, Error(HasSubstr("ProduceDelay")))
}

func (t *ConfigTest) OnePhilosopher() {
	cfg := coord.DefaultDiningConfig()
	cfg.Philosophers = 1

	ExpectThat(cfg.Validate(), Error(HasSubstr("at least 2")))
}

func (t *ConfigTest) NoReadersOrWriters() {
	cfg := coord.DefaultReadersWritersConfig()
	cfg.Readers = 0
	cfg.Writers = 0

	err := cfg.Validate()
	ExpectThat(err, Error(HasSubstr("Readers must be positive, got 0")))
	ExpectThat(err, Error(HasSubstr("Writers must be positive, got 0")))
}

func (t *ConfigTest) NoWriters() {
	cfg := coord.DefaultReadersWritersConfig()
	cfg.Writers = 0

	err := cfg.Validate()
	_, ok := err.(*coord.ConfigurationError)
	ExpectTrue(ok, "%T", err)
	ExpectThat(err, Error(HasSubstr("Writers must be positive, got 0")))
}

func (t *ConfigTest) NoReaders() {
	cfg := coord.DefaultReadersWritersConfig()
	cfg.Readers = 0

	ExpectThat(cfg.Validate(), Error(HasSubstr("Readers must be positive, got 0")))
}

func (t *ConfigTest) NoChairs() {
	cfg := coord.DefaultBarberConfig()
	cfg.Chairs = 0

	ExpectThat(cfg.Validate(), Error(HasSubstr("Chairs must be positive")))
}

func (t *ConfigTest) RunsRejectBeforeStarting() {
	pc := coord.DefaultProducerConsumerConfig()
	pc.Capacity = 0
	ExpectThat(coord.RunProducerConsumer(nil, pc, &t.env), Error(HasSubstr("Capacity")))

	rw := coord.DefaultReadersWritersConfig()
	rw.Rounds = 0
	ExpectThat(coord.RunReadersWriters(nil, rw, &t.env), Error(HasSubstr("Rounds")))

	dp := coord.DefaultDiningConfig()
	dp.Philosophers = 0
	ExpectThat(coord.RunDiningPhilosophers(nil, dp, &t.env), Error(HasSubstr("Philosophers")))

	sb := coord.DefaultBarberConfig()
	sb.Customers = 0
	ExpectThat(coord.RunSleepingBarber(nil, sb, &t.env), Error(HasSubstr("Customers")))

	// Nothing ran.
	ExpectEq(0, len(t.recorder.Events()))
}
