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

package relay

import (
	"errors"
	"fmt"

	"github.com/oysterpack/relay.go/pkg/app"
)

var (
	ErrRelayNotAlive              = &app.Err{ErrorID: app.ErrorID(0xd1e6a3f58b2c0479), Err: errors.New("Relay is not alive")}
	ErrDegraded                   = &app.Err{ErrorID: app.ErrorID(0x93fb0c7d2e5a4816), Err: errors.New("Relay is degraded : the mailbox store is unavailable")}
	ErrBacklogFull                = &app.Err{ErrorID: app.ErrorID(0xb7204e9ac63fd15b), Err: errors.New("Channel backlog is full")}
	ErrChannelMustNotBeBlank      = &app.Err{ErrorID: app.ErrorID(0xe8a5c1730fd96b24), Err: errors.New("Channel must not be blank")}
	ErrTransportAlreadyRegistered = &app.Err{ErrorID: app.ErrorID(0xa6d92f0e4b17c385), Err: errors.New("Transport is already registered")}
	ErrSubscriptionClosed         = &app.Err{ErrorID: app.ErrorID(0xc02b8e6f1a9d7354), Err: errors.New("Bus subscription was closed")}
	ErrMalformedFrame             = &app.Err{ErrorID: app.ErrorID(0xf35e7a0c9d2b6148), Err: errors.New("Malformed frame")}
	ErrTransport                  = &app.Err{ErrorID: app.ErrorID(0x8c41d0b7e2f95a63), Err: errors.New("Transport failure")}
)

// MalformedFrameError is a protocol error, i.e., the client sent a frame that could not be parsed
type MalformedFrameError struct {
	*app.Err
}

// NewMalformedFrameError wraps the parsing error
func NewMalformedFrameError(err error) MalformedFrameError {
	return MalformedFrameError{&app.Err{ErrorID: ErrMalformedFrame.ErrorID, Err: fmt.Errorf("%v : %w", ErrMalformedFrame.Err, err)}}
}

// TransportError indicates the client connection failed
type TransportError struct {
	*app.Err
}

// NewTransportError wraps the transport error
func NewTransportError(err error) TransportError {
	return TransportError{&app.Err{ErrorID: ErrTransport.ErrorID, Err: err}}
}
