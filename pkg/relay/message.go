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
	stdjson "encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/json-iterator/go"
)

// json numbers are decoded as json.Number, which preserves ids and payload numbers that do not fit in a float64
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// TYPE_REPLY is the frame type that marks an acknowledgment
const TYPE_REPLY = "reply"

// Message is either a *Payload or an *Ack
type Message interface {
	message()
}

// Payload is a message that is published to a channel mailbox
type Payload struct {
	// ID is unique among the pending messages of the channel. Publishing with an id that is still pending overwrites the message.
	ID string
	// Destination is the channel that the message is addressed to
	Destination string
	// Payload is the message content that is delivered to the client
	Payload map[string]interface{}
	// NeedsPush is an advisory flag that is carried through unchanged
	NeedsPush int
}

func (a *Payload) message() {}

// Ack acknowledges that the client has consumed the messages
type Ack struct {
	Destination string
	IDs         []string
}

func (a *Ack) message() {}

// Frame is the client wire frame
type Frame struct {
	To        string                 `json:"to,omitempty"`
	Type      string                 `json:"tp,omitempty"`
	IDs       string                 `json:"ids,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	NeedsPush int                    `json:"np,omitempty"`
}

// ParseFrame parses the client frame into a Message. The message type is decided here, once.
//
// A payload message's id is taken from the payload "id" field. If the payload has no id, then the id is left blank,
// and is assigned when the message is published.
func ParseFrame(data []byte) (Message, error) {
	frame := Frame{}
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, NewMalformedFrameError(err)
	}
	if frame.Type == TYPE_REPLY {
		return &Ack{Destination: frame.To, IDs: splitIDs(frame.IDs)}, nil
	}
	if strings.TrimSpace(frame.To) == "" {
		return nil, NewMalformedFrameError(ErrChannelMustNotBeBlank)
	}
	if frame.Payload == nil {
		frame.Payload = map[string]interface{}{}
	}
	id, err := payloadID(frame.Payload)
	if err != nil {
		return nil, NewMalformedFrameError(err)
	}
	return &Payload{
		ID:          id,
		Destination: frame.To,
		Payload:     frame.Payload,
		NeedsPush:   frame.NeedsPush,
	}, nil
}

func splitIDs(ids string) []string {
	var result []string
	for _, id := range strings.Split(ids, ",") {
		if id = strings.TrimSpace(id); id != "" {
			result = append(result, id)
		}
	}
	return result
}

func payloadID(payload map[string]interface{}) (string, error) {
	switch id := payload["id"].(type) {
	case nil:
		return "", nil
	case string:
		return id, nil
	case stdjson.Number:
		return id.String(), nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("payload id must be a string or number : %T", id)
	}
}

// stored is the mailbox representation of a Payload
type stored struct {
	ID        string                 `json:"id"`
	To        string                 `json:"to"`
	Payload   map[string]interface{} `json:"payload"`
	NeedsPush int                    `json:"np"`
}

func encodeStored(msg *Payload) ([]byte, error) {
	return json.Marshal(&stored{
		ID:        msg.ID,
		To:        msg.Destination,
		Payload:   msg.Payload,
		NeedsPush: msg.NeedsPush,
	})
}

func decodeStored(data []byte) (*Payload, error) {
	s := stored{}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Payload == nil {
		s.Payload = map[string]interface{}{}
	}
	return &Payload{ID: s.ID, Destination: s.To, Payload: s.Payload, NeedsPush: s.NeedsPush}, nil
}

type batch struct {
	Msgs []map[string]interface{} `json:"msgs"`
}

// EncodeBatch encodes the messages as an outbound client frame. Each delivered object is the message payload
// plus its id.
func EncodeBatch(msgs ...*Payload) ([]byte, error) {
	b := batch{Msgs: make([]map[string]interface{}, 0, len(msgs))}
	for _, msg := range msgs {
		obj := make(map[string]interface{}, len(msg.Payload)+1)
		for k, v := range msg.Payload {
			obj[k] = v
		}
		obj["id"] = msg.ID
		b.Msgs = append(b.Msgs, obj)
	}
	return json.Marshal(&b)
}

// DecodeBatch decodes an outbound client frame
func DecodeBatch(data []byte) ([]map[string]interface{}, error) {
	b := batch{}
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return b.Msgs, nil
}

func sortByID(msgs []*Payload) {
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].ID < msgs[j].ID
	})
}
