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

	"golang.org/x/net/context"

	"github.com/jacobsa/syncsim/reqtrace"
	"github.com/jacobsa/syncutil"
)

// Run one producer putting the items 1..cfg.Items into a channel of
// cfg.Capacity slots and one consumer taking them back out, emitting a
// Produced or Consumed event for each operation. Return once both are done.
func RunProducerConsumer(
	ctx context.Context,
	cfg *ProducerConsumerConfig,
	env *Env) (err error) {
	if err = cfg.Validate(); err != nil {
		return
	}

	ctx, report := reqtrace.Trace(ctx, "RunProducerConsumer")
	defer func() { report(err) }()

	re := newRunEnv(env)
	c := NewBoundedChannel(cfg.Capacity)
	b := syncutil.NewBundle(ctx)

	// Producer
	b.Add(func(ctx context.Context) (err error) {
		defer reqtrace.StartWithError(ctx, &err, "producer")()

		for i := 1; i <= cfg.Items; i++ {
			c.Put(i, func(slot int) {
				re.emit(Event{
					Participant: Producer,
					ID:          1,
					Kind:        Produced,
					Round:       i,
					Item:        i,
					Slot:        slot,
				})
			})

			re.pause(cfg.ProduceDelay)
		}

		return
	})

	// Consumer
	b.Add(func(ctx context.Context) (err error) {
		defer reqtrace.StartWithError(ctx, &err, "consumer")()

		for i := 1; i <= cfg.Items; i++ {
			c.Take(func(item, slot int) {
				re.emit(Event{
					Participant: Consumer,
					ID:          1,
					Kind:        Consumed,
					Round:       i,
					Item:        item,
					Slot:        slot,
				})
			})

			re.pause(cfg.ConsumeDelay)
		}

		return
	})

	if err = b.Join(); err != nil {
		err = fmt.Errorf("Join: %v", err)
		return
	}

	return
}
