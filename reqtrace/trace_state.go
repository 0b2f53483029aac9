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

package reqtrace

import (
	"fmt"
	"log"
	"sync"
	"time"
)

type span struct {
	// Fixed at creation.
	desc  string
	start time.Time

	// Updated by report functions.
	end      time.Time
	err      error
	reported bool
}

// A copy of a span's state.
type SpanInfo struct {
	Desc     string
	Start    time.Time
	End      time.Time
	Err      error
	Reported bool
}

// All of the state for a particular trace root. The zero value is usable.
type traceState struct {
	mu sync.Mutex

	// The list of spans associated with this state. Append-only.
	//
	// GUARDED_BY(mu)
	spans []*span
}

func (ts *traceState) report(index int, err error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	s := ts.spans[index]
	if s.reported {
		panic(fmt.Sprintf("span %q reported twice", s.desc))
	}

	s.end = time.Now()
	s.err = err
	s.reported = true
}

// Associate a new span with the trace. Return a function that will report its
// completion.
func (ts *traceState) CreateSpan(desc string) (report ReportFunc) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	index := len(ts.spans)
	ts.spans = append(ts.spans, &span{desc: desc, start: time.Now()})

	report = func(err error) { ts.report(index, err) }
	return
}

// Return a copy of every span, in creation order.
func (ts *traceState) Snapshot() (infos []SpanInfo) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	for _, s := range ts.spans {
		infos = append(infos, SpanInfo{
			Desc:     s.desc,
			Start:    s.start,
			End:      s.end,
			Err:      s.err,
			Reported: s.reported,
		})
	}

	return
}

// Log information about the spans in this trace.
func (ts *traceState) Log() {
	infos := ts.Snapshot()
	if len(infos) == 0 {
		return
	}

	root := infos[0].Start
	for _, s := range infos {
		status := "OK"
		switch {
		case !s.Reported:
			status = "(running)"
		case s.Err != nil:
			status = s.Err.Error()
		}

		var dur time.Duration
		if s.Reported {
			dur = s.End.Sub(s.Start)
		}

		log.Printf(
			"reqtrace: %-24s +%-12v %-12v %s",
			s.Desc,
			s.Start.Sub(root),
			dur,
			status)
	}
}
