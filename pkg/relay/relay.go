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
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nuid"
	"github.com/oysterpack/relay.go/pkg/app"
	"github.com/oysterpack/relay.go/pkg/mailbox"
	"github.com/oysterpack/relay.go/pkg/messaging"
	"github.com/oysterpack/relay.go/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
)

// RelayServiceID is the relay service id
const RelayServiceID = app.ServiceID(0xf0c5a2e97d3b1846)

// defaults
const (
	DefaultPingInterval = 5 * time.Second
	DefaultSendTimeout  = 10 * time.Second
)

// Hook is invoked after a message that was received from a connection has been published
type Hook func(channel string, msg *Payload)

// Options are used to create a new Relay
type Options struct {
	Store *mailbox.Store
	Bus   messaging.Bus

	// MaxBacklog is the max number of pending messages per channel. Publishing to a full channel is rejected
	// with ErrBacklogFull, unless the message overwrites a pending message. 0 means unbounded.
	MaxBacklog int

	Retry RetryOptions

	// PingInterval is how often the store is pinged while the relay is degraded
	PingInterval time.Duration

	// SendTimeout bounds each push to a connection
	SendTimeout time.Duration
}

// Relay delivers persisted channel messages to the connections that are attached to this process
type Relay struct {
	*app.Service

	instanceID string

	store    *mailbox.Store
	bus      messaging.Bus
	sub      messaging.Subscription
	registry *Registry

	maxBacklog   int
	retryOptions RetryOptions
	pingInterval time.Duration
	sendTimeout  time.Duration

	degraded atomic.Bool

	// cancelled on shutdown, which unblocks connection tasks and in flight pushes
	ctx    context.Context
	cancel context.CancelFunc

	mutex   sync.Mutex
	closing bool
	conns   sync.WaitGroup

	relayCounters
	pushDuration prometheus.Histogram
	collector    *relayCollector
}

// New creates a new Relay and starts its dispatch loop
func New(opts Options) (*Relay, error) {
	if opts.Store == nil {
		return nil, app.NewConfigError(errors.New("mailbox store is required"))
	}
	if opts.Bus == nil {
		return nil, app.NewConfigError(errors.New("notification bus is required"))
	}
	if opts.MaxBacklog < 0 {
		return nil, app.NewConfigError(errors.New("max backlog must not be negative"))
	}
	if opts.Retry == (RetryOptions{}) {
		opts.Retry = DefaultRetryOptions
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = DefaultSendTimeout
	}

	sub, err := opts.Bus.Subscribe()
	if err != nil {
		return nil, err
	}

	instanceID := nuid.Next()
	ctx, cancel := context.WithCancel(context.Background())
	relay := &Relay{
		Service:    app.NewService(RelayServiceID, "relay"),
		instanceID: instanceID,

		store:    opts.Store,
		bus:      opts.Bus,
		sub:      sub,
		registry: NewRegistry(),

		maxBacklog:   opts.MaxBacklog,
		retryOptions: opts.Retry,
		pingInterval: opts.PingInterval,
		sendTimeout:  opts.SendTimeout,

		ctx:    ctx,
		cancel: cancel,

		relayCounters: newRelayCounters(instanceID),
		pushDuration:  metrics.GetOrMustRegisterHistogram(PushDurationHistogramOpts),
	}
	relay.collector = newRelayCollector(relay)
	metrics.MustRegister(relay.collector)

	relay.Go(relay.dispatch)
	relay.Go(relay.pingStore)
	app.SERVICE_STARTED.Log(relay.Logger().Info()).Str(RELAY_ID, instanceID).Int("max_backlog", opts.MaxBacklog).Msg("started")
	return relay, nil
}

// InstanceID uniquely identifies this relay instance
func (a *Relay) InstanceID() string {
	return a.instanceID
}

// Registry returns the local connection registry
func (a *Relay) Registry() *Registry {
	return a.registry
}

// Degraded returns true if publishing is suspended because the mailbox store is unavailable
func (a *Relay) Degraded() bool {
	return a.degraded.Load()
}

func (a *Relay) setDegraded(err error) {
	if a.degraded.CompareAndSwap(false, true) {
		DEGRADED.Log(a.Logger().Error()).Err(err).Msg("publishing is suspended until the mailbox store recovers")
	}
}

// HealthCheck returns nil if the relay is alive, not degraded, and the mailbox store responds to a ping
func (a *Relay) HealthCheck(ctx context.Context) error {
	if err := a.checkAlive(); err != nil {
		return err
	}
	if a.Degraded() {
		return ErrDegraded
	}
	return a.store.Ping(ctx)
}

func (a *Relay) checkAlive() error {
	if !a.Alive() {
		return ErrRelayNotAlive
	}
	return nil
}

// Publish persists the message to the channel mailbox and then notifies all relays.
// If the message has no id, then one is assigned.
//
// Publish does not wait for delivery. Once the message is persisted, a failure to notify is logged but not returned,
// because the message will be delivered by the next backlog replay.
func (a *Relay) Publish(ctx context.Context, channel string, msg *Payload) error {
	if err := a.checkAlive(); err != nil {
		return err
	}
	if strings.TrimSpace(channel) == "" {
		return ErrChannelMustNotBeBlank
	}
	if a.Degraded() {
		a.rejected.Inc()
		return ErrDegraded
	}
	if msg.ID == "" {
		msg.ID = nuid.Next()
	}
	msg.Destination = channel
	if msg.Payload == nil {
		msg.Payload = map[string]interface{}{}
	}

	if err := a.checkBacklog(ctx, channel, msg.ID); err != nil {
		a.rejected.Inc()
		PUBLISH_REJECTED.Log(a.Logger().Warn()).Str(CHANNEL, channel).Str(MSG_ID, msg.ID).Err(err).Msg("")
		return err
	}

	data, err := encodeStored(msg)
	if err != nil {
		return err
	}
	err = a.retry(ctx, "put", func() error {
		return a.store.Put(ctx, channel, msg.ID, data)
	})
	if err != nil {
		if ctx.Err() == nil {
			a.setDegraded(err)
		}
		return err
	}
	a.published.Inc()

	err = a.retry(ctx, "notify", func() error {
		return a.bus.Publish(ctx, messaging.Envelope{Channel: channel, MessageID: msg.ID})
	})
	if err != nil {
		a.notifyFailed.Inc()
		MESSAGE_NOTIFY_FAILED.Log(a.Logger().Error()).Str(CHANNEL, channel).Str(MSG_ID, msg.ID).Err(err).Msg("")
		return nil
	}
	MESSAGE_PUBLISHED.Log(a.Logger().Debug()).Str(CHANNEL, channel).Str(MSG_ID, msg.ID).Msg("")
	return nil
}

func (a *Relay) checkBacklog(ctx context.Context, channel, id string) error {
	if a.maxBacklog == 0 {
		return nil
	}
	var count int
	err := a.retry(ctx, "count", func() (err error) {
		count, err = a.store.Count(ctx, channel)
		return
	})
	if err != nil {
		return err
	}
	if count < a.maxBacklog {
		return nil
	}
	// overwriting a pending message does not grow the backlog
	err = a.retry(ctx, "get", func() error {
		_, err := a.store.Get(ctx, channel, id)
		return err
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mailbox.ErrNotFound):
		return ErrBacklogFull
	default:
		return err
	}
}

// Push prepends the payload to the list stored at key. The list is unrelated to the channel mailboxes.
func (a *Relay) Push(ctx context.Context, key string, payload []byte) error {
	if err := a.checkAlive(); err != nil {
		return err
	}
	if a.Degraded() {
		return ErrDegraded
	}
	err := a.retry(ctx, "push", func() error {
		return a.store.Push(ctx, key, payload)
	})
	if err != nil && ctx.Err() == nil {
		a.setDegraded(err)
	}
	return err
}

// Pending returns the channel's pending messages, sorted by id
func (a *Relay) Pending(ctx context.Context, channel string) ([]*Payload, error) {
	var values map[string][]byte
	err := a.retry(ctx, "get_all", func() (err error) {
		values, err = a.store.GetAll(ctx, channel)
		return
	})
	if err != nil {
		return nil, err
	}
	msgs := make([]*Payload, 0, len(values))
	for id, value := range values {
		msg, err := decodeStored(value)
		if err != nil {
			MESSAGE_DECODE_FAILED.Log(a.Logger().Error()).Str(CHANNEL, channel).Str(MSG_ID, id).Err(err).Msg("skipped")
			continue
		}
		msg.ID = id
		msgs = append(msgs, msg)
	}
	sortByID(msgs)
	return msgs, nil
}

// Accept attaches the transport to the channel and serves the connection until the transport fails, the client
// sends a malformed frame, the context is done, or the relay is shutdown. The transport is closed before returning.
//
// The channel's pending messages are replayed to the connection before any frames are read.
// Acks delete the acknowledged ids from the channel's mailbox. Payload messages are published to their destination
// channel, after which the hooks are invoked.
func (a *Relay) Accept(ctx context.Context, channel string, transport Transport, hooks ...Hook) error {
	defer transport.Close()
	if strings.TrimSpace(channel) == "" {
		return ErrChannelMustNotBeBlank
	}
	a.mutex.Lock()
	if a.closing {
		a.mutex.Unlock()
		return ErrRelayNotAlive
	}
	a.conns.Add(1)
	a.mutex.Unlock()
	defer a.conns.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(a.ctx, cancel)
	defer stop()

	connID := nuid.Next()
	connLogger := a.Logger().With().Str(CHANNEL, channel).Str(CONN_ID, connID).Logger()
	if _, err := a.registry.Register(channel, connID, transport); err != nil {
		return err
	}
	defer a.registry.Unregister(channel, connID)
	CONN_ACCEPTED.Log(connLogger.Info()).Msg("")

	if err := a.replay(ctx, channel, transport); err != nil {
		CONN_TRANSPORT_ERR.Log(connLogger.Warn()).Err(err).Msg("replay failed")
		return err
	}

	for {
		data, err := transport.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				CONN_CLOSED.Log(connLogger.Info()).Msg("cancelled")
				return nil
			}
			CONN_TRANSPORT_ERR.Log(connLogger.Info()).Err(err).Msg("")
			return NewTransportError(err)
		}
		msg, err := ParseFrame(data)
		if err != nil {
			a.protocolErrors.Inc()
			CONN_PROTOCOL_ERR.Log(connLogger.Warn()).Err(err).Msg("")
			return err
		}
		switch msg := msg.(type) {
		case *Ack:
			a.ack(ctx, connLogger, channel, msg.IDs)
		case *Payload:
			if err := a.Publish(ctx, msg.Destination, msg); err != nil {
				PUBLISH_REJECTED.Log(connLogger.Warn()).Str(MSG_ID, msg.ID).Str("to", msg.Destination).Err(err).Msg("")
				continue
			}
			for _, hook := range hooks {
				hook(channel, msg)
			}
		}
	}
}

func (a *Relay) replay(ctx context.Context, channel string, transport Transport) error {
	msgs, err := a.Pending(ctx, channel)
	if err != nil || len(msgs) == 0 {
		return err
	}
	frame, err := EncodeBatch(msgs...)
	if err != nil {
		return err
	}
	if err := a.send(ctx, transport, frame); err != nil {
		return NewTransportError(err)
	}
	a.replayed.Add(float64(len(msgs)))
	CONN_REPLAYED.Log(a.Logger().Debug()).Str(CHANNEL, channel).Int(COUNT, len(msgs)).Msg("")
	return nil
}

func (a *Relay) send(ctx context.Context, transport Transport, frame []byte) error {
	ctx, cancel := context.WithTimeout(ctx, a.sendTimeout)
	defer cancel()
	timer := prometheus.NewTimer(a.pushDuration)
	defer timer.ObserveDuration()
	return transport.Send(ctx, frame)
}

// ack deletes the acknowledged ids. Unknown ids are ignored. A store failure is logged, and the ids remain pending,
// i.e., they will be replayed on the next connect.
func (a *Relay) ack(ctx context.Context, connLogger zerolog.Logger, channel string, ids []string) {
	if len(ids) == 0 {
		return
	}
	err := a.retry(ctx, "delete_many", func() error {
		return a.store.DeleteMany(ctx, channel, ids...)
	})
	if err != nil {
		MESSAGES_ACK_FAILED.Log(connLogger.Error()).Strs(MSG_IDS, ids).Err(err).Msg("")
		return
	}
	a.acked.Add(float64(len(ids)))
	MESSAGES_ACKED.Log(connLogger.Debug()).Strs(MSG_IDS, ids).Msg("")
}

// dispatch consumes the bus notifications until the relay is killed
func (a *Relay) dispatch() error {
	defer DISPATCH_STOPPED.Log(a.Logger().Info()).Msg("")
	for {
		select {
		case <-a.Dying():
			return nil
		case envelope, ok := <-a.sub.Channel():
			if !ok {
				select {
				case <-a.Dying():
					return nil
				default:
					return ErrSubscriptionClosed
				}
			}
			a.deliver(envelope)
		}
	}
}

// deliver pushes the notified message to every local connection registered under the envelope channel.
// A failed push drops that connection only.
func (a *Relay) deliver(envelope messaging.Envelope) {
	conns := a.registry.List(envelope.Channel)
	if len(conns) == 0 {
		a.discarded.Inc()
		return
	}

	var value []byte
	err := a.retry(a.ctx, "get", func() (err error) {
		value, err = a.store.Get(a.ctx, envelope.Channel, envelope.MessageID)
		return
	})
	if err != nil {
		if errors.Is(err, mailbox.ErrNotFound) {
			a.discarded.Inc()
			MESSAGE_DISCARDED.Log(a.Logger().Debug()).Str(CHANNEL, envelope.Channel).Str(MSG_ID, envelope.MessageID).Msg("already acked")
			return
		}
		MESSAGE_FETCH_FAILED.Log(a.Logger().Error()).Str(CHANNEL, envelope.Channel).Str(MSG_ID, envelope.MessageID).Err(err).Msg("")
		return
	}
	msg, err := decodeStored(value)
	if err != nil {
		MESSAGE_DECODE_FAILED.Log(a.Logger().Error()).Str(CHANNEL, envelope.Channel).Str(MSG_ID, envelope.MessageID).Err(err).Msg("")
		return
	}
	msg.ID = envelope.MessageID
	frame, err := EncodeBatch(msg)
	if err != nil {
		MESSAGE_DECODE_FAILED.Log(a.Logger().Error()).Str(CHANNEL, envelope.Channel).Str(MSG_ID, envelope.MessageID).Err(err).Msg("")
		return
	}

	var wg conc.WaitGroup
	for _, conn := range conns {
		wg.Go(func() {
			if err := a.send(a.ctx, conn.Transport, frame); err != nil {
				a.pushFailed.Inc()
				MESSAGE_PUSH_FAILED.Log(a.Logger().Warn()).Str(CHANNEL, conn.Channel).Str(CONN_ID, conn.ID).Str(MSG_ID, msg.ID).Err(err).Msg("dropping connection")
				a.registry.Unregister(conn.Channel, conn.ID)
				conn.Transport.Close()
				return
			}
			a.delivered.Inc()
		})
	}
	wg.Wait()
}

// pingStore pings the store while the relay is degraded, and clears degraded mode once the store responds
func (a *Relay) pingStore() error {
	ticker := time.NewTicker(a.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.Dying():
			return nil
		case <-ticker.C:
			if !a.Degraded() {
				continue
			}
			ctx, cancel := context.WithTimeout(a.ctx, a.pingInterval)
			err := a.store.Ping(ctx)
			cancel()
			if err == nil && a.degraded.CompareAndSwap(true, false) {
				RECOVERED.Log(a.Logger().Info()).Msg("mailbox store is available")
			}
		}
	}
}

// Shutdown cancels and closes every connection, stops the dispatch loop, terminates the bus subscription, waits for
// the connection tasks to return, and then closes the mailbox store and the bus.
func (a *Relay) Shutdown() error {
	a.mutex.Lock()
	if a.closing {
		a.mutex.Unlock()
		return ErrRelayNotAlive
	}
	a.closing = true
	a.mutex.Unlock()

	a.cancel()
	// closing the transports unblocks in flight dispatch pushes, which the dispatch goroutine must return from
	// before the service can stop
	closed := a.registry.CloseAll()
	err := a.Stop()
	if unsubErr := a.sub.Unsubscribe(); unsubErr != nil {
		a.Logger().Warn().Err(unsubErr).Msg("unsubscribe failed")
	}
	a.conns.Wait()
	a.Logger().Info().Int(COUNT, closed).Msg("connections closed")

	metrics.Unregister(a.collector)
	if storeErr := a.store.Close(); storeErr != nil {
		a.Logger().Warn().Err(storeErr).Msg("mailbox store close failed")
	}
	if busErr := a.bus.Close(); busErr != nil {
		a.Logger().Warn().Err(busErr).Msg("bus close failed")
	}
	return err
}
