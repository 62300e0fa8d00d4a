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
	"errors"
	"fmt"

	"github.com/oysterpack/relay.go/pkg/app"
)

var (
	ErrChannelMustNotBeBlank   = &app.Err{ErrorID: app.ErrorID(0xf7a6d1b33e0c5829), Err: errors.New("Channel must not be blank")}
	ErrMessageIDMustNotBeBlank = &app.Err{ErrorID: app.ErrorID(0xa0e5c29d7b14f36e), Err: errors.New("Message id must not be blank")}
	ErrSubjectMustNotBeBlank   = &app.Err{ErrorID: app.ErrorID(0xbd43f960c2e871a5), Err: errors.New("Subject must not be blank")}
	ErrMalformedEnvelope       = &app.Err{ErrorID: app.ErrorID(0xc63a18e5f0b9d247), Err: errors.New("Malformed envelope")}
)

// MalformedEnvelopeError is returned when the envelope data could not be decoded
type MalformedEnvelopeError struct {
	*app.Err
}

// NewMalformedEnvelopeError wraps the decoding error
func NewMalformedEnvelopeError(err error) MalformedEnvelopeError {
	return MalformedEnvelopeError{&app.Err{ErrorID: ErrMalformedEnvelope.ErrorID, Err: fmt.Errorf("%v : %w", ErrMalformedEnvelope.Err, err)}}
}

var (
	ErrEmptyEnvelope        = errors.New("empty envelope")
	ErrMissingSeparator     = errors.New("legacy envelope is missing the ':' separator")
	ErrChannelContainsColon = errors.New("legacy envelope channel must not contain ':'")
)
