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

// Package redis provides a redis pub/sub backed messaging.Bus
package redis

import (
	"context"
	"strings"

	"github.com/oysterpack/relay.go/pkg/app"
	"github.com/oysterpack/relay.go/pkg/messaging"
	"github.com/redis/go-redis/v9"
)

// VENDOR is used to label bus metrics
const VENDOR = "redis"

type pkgobject struct{}

var logger = app.NewPackageLogger(pkgobject{})

// log events
const (
	BUS_CONNECTED = app.LogEventID(0xe5c80d2b91fa4736)
	BUS_CLOSED    = app.LogEventID(0x8b16f4e07a3dc952)
)

// Bus is a messaging.Bus over redis PUBLISH / SUBSCRIBE
type Bus struct {
	client   *redis.Client
	channel  string
	counters *messaging.Counters
}

// Connect connects to redis. Notifications are published and received on the redis pub/sub channel.
func Connect(ctx context.Context, addr string, channel string) (*Bus, error) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return nil, messaging.ErrSubjectMustNotBeBlank
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	BUS_CONNECTED.Log(logger.Info()).Str("addr", addr).Str("channel", channel).Msg("")
	return &Bus{
		client:   client,
		channel:  channel,
		counters: messaging.NewCounters(VENDOR),
	}, nil
}

// Publish implements messaging.Bus
func (a *Bus) Publish(ctx context.Context, envelope messaging.Envelope) error {
	data, err := messaging.Encode(envelope)
	if err != nil {
		return err
	}
	if err := a.client.Publish(ctx, a.channel, data).Err(); err != nil {
		return err
	}
	a.counters.Published.Inc()
	return nil
}

// Subscribe implements messaging.Bus.
// The subscription is confirmed by the server before returning.
func (a *Bus) Subscribe() (messaging.Subscription, error) {
	ctx := context.Background()
	pubsub := a.client.Subscribe(ctx, a.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}
	msgs := pubsub.Channel()

	pump := messaging.NewPump(VENDOR, a.counters, 0)
	pump.Start(func() error {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return nil
				}
				if !pump.Forward([]byte(msg.Payload)) {
					return nil
				}
			case <-pump.Dying():
				return nil
			}
		}
	})
	return &subscription{pubsub: pubsub, pump: pump}, nil
}

// Close implements messaging.Bus
func (a *Bus) Close() error {
	err := a.client.Close()
	BUS_CLOSED.Log(logger.Info()).Err(err).Msg("")
	return err
}

type subscription struct {
	pubsub *redis.PubSub
	pump   *messaging.Pump
}

func (a *subscription) Channel() <-chan messaging.Envelope {
	return a.pump.Channel()
}

func (a *subscription) Unsubscribe() error {
	err := a.pubsub.Close()
	a.pump.Stop()
	return err
}
