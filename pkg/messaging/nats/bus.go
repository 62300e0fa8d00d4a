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

package nats

import (
	"context"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nuid"
	"github.com/oysterpack/relay.go/pkg/messaging"
	"github.com/oysterpack/relay.go/pkg/metrics"
)

// Bus is a messaging.Bus over a single NATS connection
type Bus struct {
	id      string
	subject string
	conn    *nats.Conn

	counters  *messaging.Counters
	collector *connCollector
}

// Connect connects to the NATS server(s) at url. Notifications are published and received on subject.
// Default connection options are : DefaultConnectTimeout, DefaultReConnectTimeout, AlwaysReconnect.
// The options are applied after the defaults, i.e., they may override the defaults.
func Connect(url string, subject string, options ...nats.Option) (*Bus, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, messaging.ErrSubjectMustNotBeBlank
	}
	id := nuid.Next()
	connLogger := logger.With().Str(CONN_ID, id).Logger()

	opts := []nats.Option{
		DefaultConnectTimeout,
		DefaultReConnectTimeout,
		AlwaysReconnect,
		nats.Name("relay-" + id),
		nats.DisconnectErrHandler(func(conn *nats.Conn, err error) {
			event := CONN_DISCONNECT.Log(connLogger.Warn())
			if err != nil {
				event.Err(err)
			}
			event.Msg("")
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			CONN_RECONNECT.Log(connLogger.Info()).Uint64(RECONNECTS, conn.Stats().Reconnects).Msg("")
		}),
		nats.ClosedHandler(func(conn *nats.Conn) {
			CONN_CLOSED.Log(connLogger.Info()).Msg("")
		}),
		nats.ErrorHandler(func(conn *nats.Conn, subscription *nats.Subscription, err error) {
			event := CONN_ERR.Log(connLogger.Error()).Err(err)
			if subscription != nil {
				event.Str(SUBJECT, subscription.Subject)
			}
			event.Msg("")
		}),
	}
	conn, err := nats.Connect(url, append(opts, options...)...)
	if err != nil {
		return nil, err
	}
	CONN_CONNECTED.Log(connLogger.Info()).Str("url", conn.ConnectedUrl()).Str(SUBJECT, subject).Msg("")

	bus := &Bus{
		id:       id,
		subject:  subject,
		conn:     conn,
		counters: messaging.NewCounters(VENDOR),
	}
	bus.collector = newConnCollector(id, conn)
	metrics.MustRegister(bus.collector)
	return bus, nil
}

// ID returns the unique bus connection id
func (a *Bus) ID() string {
	return a.id
}

// Subject returns the subject that notifications are published on
func (a *Bus) Subject() string {
	return a.subject
}

// Conn returns the underlying NATS connection
func (a *Bus) Conn() *nats.Conn {
	return a.conn
}

// Publish implements messaging.Bus
func (a *Bus) Publish(ctx context.Context, envelope messaging.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := messaging.Encode(envelope)
	if err != nil {
		return err
	}
	if err := a.conn.Publish(a.subject, data); err != nil {
		return err
	}
	a.counters.Published.Inc()
	return nil
}

// Subscribe implements messaging.Bus.
// The subscription is confirmed by the server before returning, i.e., envelopes published afterwards will be received.
func (a *Bus) Subscribe() (messaging.Subscription, error) {
	msgs := make(chan *nats.Msg, DefaultChanBufSize)
	sub, err := a.conn.ChanSubscribe(a.subject, msgs)
	if err != nil {
		return nil, err
	}
	if err := a.conn.Flush(); err != nil {
		sub.Unsubscribe()
		return nil, err
	}

	pump := messaging.NewPump(VENDOR, a.counters, 0)
	pump.Start(func() error {
		for {
			select {
			case msg := <-msgs:
				if !pump.Forward(msg.Data) {
					return nil
				}
			case <-pump.Dying():
				return nil
			}
		}
	})
	return &subscription{sub: sub, pump: pump}, nil
}

// Close implements messaging.Bus
func (a *Bus) Close() error {
	metrics.Unregister(a.collector)
	a.conn.Close()
	return nil
}

type subscription struct {
	sub  *nats.Subscription
	pump *messaging.Pump
}

func (a *subscription) Channel() <-chan messaging.Envelope {
	return a.pump.Channel()
}

func (a *subscription) Unsubscribe() error {
	err := a.sub.Unsubscribe()
	if err == nats.ErrConnectionClosed || err == nats.ErrBadSubscription {
		err = nil
	}
	a.pump.Stop()
	return err
}
