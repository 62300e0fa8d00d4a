// Copyright (c) 2017 OysterPack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	"errors"
	"fmt"
)

// Err associates an ErrorID with an error
type Err struct {
	ErrorID ErrorID
	Err     error
}

func (a *Err) Error() string {
	return fmt.Sprintf("%x : %v", a.ErrorID, a.Err)
}

// Unwrap returns the underlying error
func (a *Err) Unwrap() error {
	return a.Err
}

// Is reports whether target carries the same ErrorID
func (a *Err) Is(target error) bool {
	if t, ok := target.(*Err); ok {
		return t.ErrorID == a.ErrorID
	}
	return false
}

var (
	ErrServiceNil      = &Err{ErrorID: ErrorID(0x9d95c5fac078b82c), Err: errors.New("Service is nil")}
	ErrServiceNotAlive = &Err{ErrorID: ErrorID(0x9cb3a496d32894d2), Err: errors.New("Service is not alive")}
	ErrServiceIDZero   = &Err{ErrorID: ErrorID(0xd33c54b382368d97), Err: errors.New("ServiceID(0) is not allowed")}

	ErrUnknownLogLevel = &Err{ErrorID(0x814a17666a94fe39), errors.New("Unknown log level")}
)

// NewConfigError wraps the specified error as a ConfigError
func NewConfigError(err error) ConfigError {
	return ConfigError{
		&Err{ErrorID: ErrorID(0xe75f0a8e1e5a7ff7), Err: err},
	}
}

// ConfigError indicates the process was misconfigured
type ConfigError struct {
	*Err
}

// UnrecoverableError requires manual intervention to resolve the misconfiguration
func (a ConfigError) UnrecoverableError() {}
