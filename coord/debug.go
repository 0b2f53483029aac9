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
	"flag"
	"log"
	"os"
	"sync"
)

var fDebug = flag.Bool(
	"coord.debug",
	false,
	"Write every protocol event to stderr.")

var gLogger *log.Logger
var gLoggerOnce sync.Once

func initLogger() {
	const flags = log.Ldate | log.Ltime | log.Lmicroseconds
	gLogger = log.New(os.Stderr, "coord: ", flags)
}

// Wrap the supplied sink so that events are also logged, if enabled.
func newDebugSink(wrapped Sink) (s Sink) {
	s = wrapped

	if *fDebug {
		gLoggerOnce.Do(initLogger)
		s = &debugSink{
			logger:  gLogger,
			wrapped: wrapped,
		}

		return
	}

	return
}

type debugSink struct {
	logger  *log.Logger
	wrapped Sink
}

func (s *debugSink) Emit(e Event) {
	s.logger.Printf("[%s] %v", e.Run, &e)
	s.wrapped.Emit(e)
}
