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
	"fmt"

	"github.com/rs/zerolog"
)

// InstanceID is the unique id for a relay process. There may be multiple relay processes sharing the same store and bus.
// The instance id is used to differentiate them, e.g., logs and metrics will contain the instance id.
type InstanceID string

// ServiceID unique service ID
type ServiceID uint64

// Hex returns the id formatted as 0x{hex}
func (a ServiceID) Hex() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

// ErrorID unique error id
type ErrorID uint64

// LogEventID unique log event id
type LogEventID uint64

// Log adds the event id to the log event
func (a LogEventID) Log(event *zerolog.Event) *zerolog.Event {
	return event.Uint64("event", uint64(a))
}
