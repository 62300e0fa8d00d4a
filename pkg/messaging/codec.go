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
	"strings"

	"github.com/fxamacker/cbor/v2"
)

var encMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// Encode encodes the envelope as a CBOR map with integer keys. Channel names may contain any character.
func Encode(envelope Envelope) ([]byte, error) {
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	return encMode.Marshal(envelope)
}

// EncodeLegacy encodes the envelope in the legacy "channel:id" text form.
// The legacy form cannot represent channel names that contain a colon.
func EncodeLegacy(envelope Envelope) ([]byte, error) {
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	if strings.Contains(envelope.Channel, ":") {
		return nil, NewMalformedEnvelopeError(ErrChannelContainsColon)
	}
	return []byte(envelope.Channel + ":" + envelope.MessageID), nil
}

// Decode decodes the envelope. Both the CBOR form and the legacy "channel:id" text form are accepted.
//
// A CBOR map header byte is never a valid first byte of UTF-8 text, which is how the two forms are told apart.
func Decode(data []byte) (Envelope, error) {
	if len(data) == 0 {
		return Envelope{}, NewMalformedEnvelopeError(ErrEmptyEnvelope)
	}
	var envelope Envelope
	if data[0]&0xe0 == 0xa0 {
		if err := cbor.Unmarshal(data, &envelope); err != nil {
			return Envelope{}, NewMalformedEnvelopeError(err)
		}
	} else {
		i := strings.IndexByte(string(data), ':')
		if i < 0 {
			return Envelope{}, NewMalformedEnvelopeError(ErrMissingSeparator)
		}
		envelope = Envelope{Channel: string(data[:i]), MessageID: string(data[i+1:])}
	}
	if err := envelope.Validate(); err != nil {
		return Envelope{}, NewMalformedEnvelopeError(err)
	}
	return envelope, nil
}
