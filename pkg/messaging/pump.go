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

package messaging

import (
	"github.com/oysterpack/relay.go/pkg/app"
	"gopkg.in/tomb.v2"
)

// log events
const (
	ENVELOPE_MALFORMED = app.LogEventID(0x8e2d1f7c4ab05936)
	SUBSCRIPTION_ENDED = app.LogEventID(0xe04a9b3c7d6f1258)
)

// Pump decodes raw bus messages into envelopes for a Subscription.
// The backend specific receive loop is run via Start() and forwards the raw message data via Forward().
type Pump struct {
	t         tomb.Tomb
	vendor    string
	counters  *Counters
	envelopes chan Envelope
}

// NewPump creates a new Pump. The envelope channel is buffered by bufSize.
func NewPump(vendor string, counters *Counters, bufSize int) *Pump {
	return &Pump{
		vendor:    vendor,
		counters:  counters,
		envelopes: make(chan Envelope, bufSize),
	}
}

// Start runs the receive loop. The envelope channel is closed once the loop returns.
// The loop is expected to return once Dying() is closed.
func (a *Pump) Start(loop func() error) {
	a.t.Go(func() error {
		defer close(a.envelopes)
		err := loop()
		event := SUBSCRIPTION_ENDED.Log(logger.Debug()).Str(LABEL_VENDOR, a.vendor)
		if err != nil {
			event.Err(err)
		}
		event.Msg("")
		return err
	})
}

// Dying is closed once the pump is being stopped
func (a *Pump) Dying() <-chan struct{} {
	return a.t.Dying()
}

// Forward decodes the data and sends the envelope downstream.
// Malformed data is logged and dropped. false is returned if the pump is dying.
func (a *Pump) Forward(data []byte) bool {
	a.counters.Received.Inc()
	envelope, err := Decode(data)
	if err != nil {
		a.counters.Malformed.Inc()
		ENVELOPE_MALFORMED.Log(logger.Warn()).Str(LABEL_VENDOR, a.vendor).Err(err).Msg("dropped")
		return true
	}
	select {
	case a.envelopes <- envelope:
		return true
	case <-a.t.Dying():
		return false
	}
}

// Channel returns the envelope stream
func (a *Pump) Channel() <-chan Envelope {
	return a.envelopes
}

// Stop kills the receive loop and waits for it to return
func (a *Pump) Stop() error {
	a.t.Kill(nil)
	return a.t.Wait()
}
