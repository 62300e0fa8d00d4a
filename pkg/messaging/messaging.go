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
	"context"
	"strings"

	"github.com/oysterpack/relay.go/pkg/app"
)

type pkgobject struct{}

var logger = app.NewPackageLogger(pkgobject{})

// DefaultSubject is the subject that notifications are published to, if not configured otherwise
const DefaultSubject = "relay.notify"

// Envelope notifies the relays that a message was persisted to a channel's mailbox
type Envelope struct {
	Channel   string `cbor:"1,keyasint"`
	MessageID string `cbor:"2,keyasint"`
}

// Validate checks that both the channel and message id are not blank
func (a Envelope) Validate() error {
	if strings.TrimSpace(a.Channel) == "" {
		return ErrChannelMustNotBeBlank
	}
	if strings.TrimSpace(a.MessageID) == "" {
		return ErrMessageIDMustNotBeBlank
	}
	return nil
}

// Bus is the notification bus shared by all relay processes
type Bus interface {
	// Publish sends the envelope to all subscribers. Publish does not wait for delivery.
	Publish(ctx context.Context, envelope Envelope) error

	// Subscribe starts a subscription on the bus subject. Envelopes that fail to decode are logged and dropped.
	Subscribe() (Subscription, error)

	// Close releases the bus connection. Any active subscriptions are terminated.
	Close() error
}

// Subscription is a stream of envelopes received from the bus
type Subscription interface {
	// Channel returns the envelope stream. The channel is closed once the subscription is terminated.
	Channel() <-chan Envelope

	// Unsubscribe terminates the subscription
	Unsubscribe() error
}
