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

// Run cfg.Readers readers and cfg.Writers writers against a single
// ReadWriteArbiter, each performing cfg.Rounds read or write sections.
func RunReadersWriters(
	ctx context.Context,
	cfg *ReadersWritersConfig,
	env *Env) (err error) {
	if err = cfg.Validate(); err != nil {
		return
	}

	ctx, report := reqtrace.Trace(ctx, "RunReadersWriters")
	defer func() { report(err) }()

	re := newRunEnv(env)
	a := NewReadWriteArbiter()
	b := syncutil.NewBundle(ctx)

	for i := 1; i <= cfg.Readers; i++ {
		id := i
		b.Add(func(ctx context.Context) (err error) {
			defer reqtrace.StartWithError(ctx, &err, fmt.Sprintf("reader %d", id))()
			runReader(re, a, cfg, id)
			return
		})
	}

	for i := 1; i <= cfg.Writers; i++ {
		id := i
		b.Add(func(ctx context.Context) (err error) {
			defer reqtrace.StartWithError(ctx, &err, fmt.Sprintf("writer %d", id))()
			runWriter(re, a, cfg, id)
			return
		})
	}

	if err = b.Join(); err != nil {
		err = fmt.Errorf("Join: %v", err)
		return
	}

	return
}

func runReader(
	re *runEnv,
	a *ReadWriteArbiter,
	cfg *ReadersWritersConfig,
	id int) {
	for r := 1; r <= cfg.Rounds; r++ {
		a.BeginRead(func(active int) {
			re.emit(Event{
				Participant: Reader,
				ID:          id,
				Kind:        ReadStart,
				Round:       r,
				Readers:     active,
			})
		})

		re.pause(cfg.ReadHold)

		a.EndRead(func(int) {
			re.emit(Event{
				Participant: Reader,
				ID:          id,
				Kind:        ReadEnd,
				Round:       r,
			})
		})

		re.pause(cfg.ReaderRest)
	}
}

func runWriter(
	re *runEnv,
	a *ReadWriteArbiter,
	cfg *ReadersWritersConfig,
	id int) {
	for r := 1; r <= cfg.Rounds; r++ {
		a.BeginWrite()
		re.emit(Event{
			Participant: Writer,
			ID:          id,
			Kind:        WriteStart,
			Round:       r,
		})

		re.pause(cfg.WriteHold)

		re.emit(Event{
			Participant: Writer,
			ID:          id,
			Kind:        WriteEnd,
			Round:       r,
		})

		a.EndWrite()
		re.pause(cfg.WriterRest)
	}
}
