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

	"github.com/hashicorp/go-multierror"
)

// A configuration rejected before any worker started.
type ConfigurationError struct {
	// A wrapped error, usually a *multierror.Error listing every problem.
	Err error
}

func (ce *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", ce.Err)
}

// Accumulates configuration problems.
type validator struct {
	errs *multierror.Error
}

func (v *validator) addf(format string, a ...interface{}) {
	v.errs = multierror.Append(v.errs, fmt.Errorf(format, a...))
}

func (v *validator) positive(name string, n int) {
	if n <= 0 {
		v.addf("%s must be positive, got %d", name, n)
	}
}

func (v *validator) rangeOK(name string, r interface{ Validate() error }) {
	if err := r.Validate(); err != nil {
		v.addf("%s: %v", name, err)
	}
}

// Return a *ConfigurationError if any problems were recorded, nil otherwise.
func (v *validator) err() (err error) {
	if merr := v.errs.ErrorOrNil(); merr != nil {
		err = &ConfigurationError{Err: merr}
	}

	return
}
