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

package relay_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/oysterpack/relay.go/pkg/data/keyvalue"
	"github.com/oysterpack/relay.go/pkg/data/redis"
	"github.com/oysterpack/relay.go/pkg/mailbox"
	"github.com/oysterpack/relay.go/pkg/messaging"
	"github.com/oysterpack/relay.go/pkg/messaging/nats"
	"github.com/oysterpack/relay.go/pkg/messaging/natstest"
	redisbus "github.com/oysterpack/relay.go/pkg/messaging/redis"
	"github.com/oysterpack/relay.go/pkg/metrics"
	"github.com/oysterpack/relay.go/pkg/relay"
	"github.com/oysterpack/relay.go/pkg/relay/relaytest"
)

const timeout = 5 * time.Second

var fastRetry = relay.RetryOptions{MaxRetries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}

func newBoltStore(t *testing.T) keyvalue.HashStore {
	t.Helper()
	db, err := keyvalue.CreateDatabase(filepath.Join(t.TempDir(), "relay.db"), "relay")
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func newNatsBus(t *testing.T) messaging.Bus {
	t.Helper()
	server := natstest.RunServer(t)
	bus, err := nats.Connect(server.ClientURL(), messaging.DefaultSubject)
	if err != nil {
		t.Fatal(err)
	}
	return bus
}

// newRelay creates a relay backed by an embedded bbolt store and NATS bus
func newRelay(t *testing.T, opts relay.Options) *relay.Relay {
	t.Helper()
	if opts.Store == nil {
		opts.Store = mailbox.NewStore(newBoltStore(t), "")
	}
	if opts.Bus == nil {
		opts.Bus = newNatsBus(t)
	}
	if opts.Retry == (relay.RetryOptions{}) {
		opts.Retry = fastRetry
	}
	r, err := relay.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Shutdown() })
	return r
}

// connect runs Accept in a goroutine and waits until the connection is registered.
// The Accept result is sent on the returned channel.
func connect(t *testing.T, r *relay.Relay, channel string, hooks ...relay.Hook) (*relaytest.Transport, <-chan error) {
	t.Helper()
	transport := relaytest.NewTransport()
	before := len(r.Registry().List(channel))
	result := make(chan error, 1)
	go func() {
		result <- r.Accept(context.Background(), channel, transport, hooks...)
	}()
	waitFor(t, func() bool { return len(r.Registry().List(channel)) > before })
	return transport, result
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func acceptResult(t *testing.T, result <-chan error) error {
	t.Helper()
	select {
	case err := <-result:
		return err
	case <-time.After(timeout):
		t.Fatal("Accept did not return")
		return nil
	}
}

func pendingIDs(t *testing.T, r *relay.Relay, channel string) []string {
	t.Helper()
	msgs, err := r.Pending(context.Background(), channel)
	if err != nil {
		t.Fatal(err)
	}
	ids := []string{}
	for _, msg := range msgs {
		ids = append(ids, msg.ID)
	}
	return ids
}

func TestRelay_AliceScenario(t *testing.T) {
	r := newRelay(t, relay.Options{})
	ctx := context.Background()

	// Given a message published to alice while alice has no connection
	err := r.Publish(ctx, "alice", &relay.Payload{ID: "m1", Payload: map[string]interface{}{"text": "hi"}})
	if err != nil {
		t.Fatal(err)
	}
	if ids := pendingIDs(t, r, "alice"); !reflect.DeepEqual(ids, []string{"m1"}) {
		t.Fatalf("mailbox should contain m1 : %v", ids)
	}

	// When alice connects
	transport, result := connect(t, r, "alice")

	// Then the backlog is replayed
	msgs := transport.NextMsgs(t, timeout)
	expected := []map[string]interface{}{{"id": "m1", "text": "hi"}}
	if !reflect.DeepEqual(msgs, expected) {
		t.Fatalf("%v != %v", msgs, expected)
	}

	// When alice acks the message, then the mailbox is empty
	transport.ClientAck("m1")
	waitFor(t, func() bool { return len(pendingIDs(t, r, "alice")) == 0 })

	// When alice reconnects, then nothing is replayed
	transport.Close()
	if err := acceptResult(t, result); err == nil {
		t.Error("a closed transport should be reported as a transport error")
	}
	transport, _ = connect(t, r, "alice")
	transport.ExpectNothing(t, 100*time.Millisecond)
}

func TestRelay_BobOverwriteScenario(t *testing.T) {
	r := newRelay(t, relay.Options{})
	ctx := context.Background()

	if err := r.Publish(ctx, "bob", &relay.Payload{ID: "x", Payload: map[string]interface{}{"v": "first"}}); err != nil {
		t.Fatal(err)
	}
	if err := r.Publish(ctx, "bob", &relay.Payload{ID: "x", Payload: map[string]interface{}{"v": "second"}}); err != nil {
		t.Fatal(err)
	}

	msgs, err := r.Pending(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].ID != "x" || msgs[0].Payload["v"] != "second" {
		t.Fatalf("mailbox should hold only the second payload : %v", msgs)
	}
}

func TestRelay_RoundTrip(t *testing.T) {
	r := newRelay(t, relay.Options{})
	transport, _ := connect(t, r, "carol")

	payload := map[string]interface{}{
		"text":   "hello",
		"n":      1.5,
		"flag":   true,
		"nested": map[string]interface{}{"a": []interface{}{"b", 2.0}},
	}
	if err := r.Publish(context.Background(), "carol", &relay.Payload{ID: "m1", Payload: payload, NeedsPush: 1}); err != nil {
		t.Fatal(err)
	}

	msgs := transport.NextMsgs(t, timeout)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message : %v", msgs)
	}
	if msgs[0]["id"] != "m1" {
		t.Errorf("id was not added : %v", msgs[0])
	}
	delete(msgs[0], "id")
	if !reflect.DeepEqual(msgs[0], payload) {
		t.Errorf("%v != %v", msgs[0], payload)
	}
}

func TestRelay_LargeNumericIDAck(t *testing.T) {
	r := newRelay(t, relay.Options{})
	transport, _ := connect(t, r, "dana")

	// Given a client that publishes a message with an id and value that do not fit in a float64
	transport.ClientSend(`{"to":"dana","payload":{"id":12345678901234567890,"n":9007199254740993}}`)

	// Then the message is delivered with its exact id and value
	frame := string(transport.Next(t, timeout))
	if frame != `{"msgs":[{"id":"12345678901234567890","n":9007199254740993}]}` {
		t.Errorf("unexpected frame : %s", frame)
	}

	// And acking the id removes it
	transport.ClientAck("12345678901234567890")
	waitFor(t, func() bool { return len(pendingIDs(t, r, "dana")) == 0 })
}

func TestRelay_PublishAssignsID(t *testing.T) {
	r := newRelay(t, relay.Options{})
	msg := &relay.Payload{Payload: map[string]interface{}{"text": "no id"}}
	if err := r.Publish(context.Background(), "dave", msg); err != nil {
		t.Fatal(err)
	}
	if msg.ID == "" || msg.Destination != "dave" {
		t.Fatalf("id and destination should have been assigned : %#v", msg)
	}
	if ids := pendingIDs(t, r, "dave"); len(ids) != 1 || ids[0] != msg.ID {
		t.Errorf("unexpected mailbox : %v", ids)
	}

	if err := r.Publish(context.Background(), " ", msg); err != relay.ErrChannelMustNotBeBlank {
		t.Errorf("expected ErrChannelMustNotBeBlank : %v", err)
	}
}

func TestRelay_Broadcast(t *testing.T) {
	r := newRelay(t, relay.Options{})
	t1, _ := connect(t, r, "room")
	t2, _ := connect(t, r, "room")
	other, _ := connect(t, r, "other")

	if err := r.Publish(context.Background(), "room", &relay.Payload{ID: "1", Payload: map[string]interface{}{"text": "all"}}); err != nil {
		t.Fatal(err)
	}

	for _, transport := range []*relaytest.Transport{t1, t2} {
		msgs := transport.NextMsgs(t, timeout)
		if len(msgs) != 1 || msgs[0]["text"] != "all" {
			t.Errorf("unexpected messages : %v", msgs)
		}
	}
	other.ExpectNothing(t, 100*time.Millisecond)
}

func TestRelay_FailureIsolation(t *testing.T) {
	r := newRelay(t, relay.Options{})
	a, resultA := connect(t, r, "room")
	b, _ := connect(t, r, "room")

	// Given connection A is broken
	a.FailSends()

	// When a message is published
	if err := r.Publish(context.Background(), "room", &relay.Payload{ID: "1"}); err != nil {
		t.Fatal(err)
	}

	// Then B still receives it
	if msgs := b.NextMsgs(t, timeout); len(msgs) != 1 || msgs[0]["id"] != "1" {
		t.Errorf("unexpected messages : %v", msgs)
	}

	// And A is dropped
	if err := acceptResult(t, resultA); !errors.Is(err, relay.ErrTransport) {
		t.Errorf("expected transport error : %v", err)
	}
	if !a.Closed() {
		t.Error("A should have been closed")
	}
	waitFor(t, func() bool { return len(r.Registry().List("room")) == 1 })

	// And the dispatch loop keeps going
	if err := r.Publish(context.Background(), "room", &relay.Payload{ID: "2"}); err != nil {
		t.Fatal(err)
	}
	if msgs := b.NextMsgs(t, timeout); len(msgs) != 1 || msgs[0]["id"] != "2" {
		t.Errorf("unexpected messages : %v", msgs)
	}
}

func TestRelay_ReplayFailureUnregisters(t *testing.T) {
	r := newRelay(t, relay.Options{})
	if err := r.Publish(context.Background(), "erin", &relay.Payload{ID: "1"}); err != nil {
		t.Fatal(err)
	}

	transport := relaytest.NewTransport()
	transport.FailSends()
	if err := r.Accept(context.Background(), "erin", transport); !errors.Is(err, relay.ErrTransport) {
		t.Errorf("expected transport error : %v", err)
	}
	if len(r.Registry().List("erin")) != 0 {
		t.Error("connection should have been unregistered")
	}
	if ids := pendingIDs(t, r, "erin"); len(ids) != 1 {
		t.Errorf("message should still be pending : %v", ids)
	}
}

func TestRelay_UnknownAckIsNoop(t *testing.T) {
	r := newRelay(t, relay.Options{})
	transport, result := connect(t, r, "frank")

	transport.ClientAck("never-published", "")
	transport.ClientSend(`{"tp":"reply","ids":""}`)

	if err := r.Publish(context.Background(), "frank", &relay.Payload{ID: "1"}); err != nil {
		t.Fatal(err)
	}
	if msgs := transport.NextMsgs(t, timeout); len(msgs) != 1 {
		t.Errorf("connection should still be streaming : %v", msgs)
	}
	select {
	case err := <-result:
		t.Fatalf("connection should not have been dropped : %v", err)
	default:
	}
}

func TestRelay_ClientPublish(t *testing.T) {
	r := newRelay(t, relay.Options{})

	var hookCalls int32
	var hookMutex sync.Mutex
	var hookChannel string
	hook := func(channel string, msg *relay.Payload) {
		hookMutex.Lock()
		defer hookMutex.Unlock()
		hookChannel = channel
		atomic.AddInt32(&hookCalls, 1)
	}

	alice, _ := connect(t, r, "alice", hook)
	bob, _ := connect(t, r, "bob")

	alice.ClientPublish(t, "bob", map[string]interface{}{"id": "b1", "text": "yo"})

	msgs := bob.NextMsgs(t, timeout)
	expected := []map[string]interface{}{{"id": "b1", "text": "yo"}}
	if !reflect.DeepEqual(msgs, expected) {
		t.Errorf("%v != %v", msgs, expected)
	}
	waitFor(t, func() bool { return atomic.LoadInt32(&hookCalls) == 1 })
	hookMutex.Lock()
	defer hookMutex.Unlock()
	if hookChannel != "alice" {
		t.Errorf("hook should be invoked with the connection channel : %q", hookChannel)
	}
}

func TestRelay_MalformedFrameDropsConnection(t *testing.T) {
	r := newRelay(t, relay.Options{})
	transport, result := connect(t, r, "gina")

	transport.ClientSend("not json")

	err := acceptResult(t, result)
	if !errors.Is(err, relay.ErrMalformedFrame) {
		t.Errorf("expected ErrMalformedFrame : %v", err)
	}
	if !transport.Closed() {
		t.Error("transport should have been closed")
	}
	if len(r.Registry().List("gina")) != 0 {
		t.Error("connection should have been unregistered")
	}
}

func TestRelay_BacklogFull(t *testing.T) {
	r := newRelay(t, relay.Options{MaxBacklog: 2})
	ctx := context.Background()

	for _, id := range []string{"1", "2"} {
		if err := r.Publish(ctx, "hank", &relay.Payload{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Publish(ctx, "hank", &relay.Payload{ID: "3"}); err != relay.ErrBacklogFull {
		t.Errorf("expected ErrBacklogFull : %v", err)
	}
	// overwriting a pending message is allowed
	if err := r.Publish(ctx, "hank", &relay.Payload{ID: "2", Payload: map[string]interface{}{"v": 2}}); err != nil {
		t.Errorf("overwrite should have been allowed : %v", err)
	}
	// other channels are not affected
	if err := r.Publish(ctx, "ian", &relay.Payload{ID: "3"}); err != nil {
		t.Fatal(err)
	}
}

// flakyStore fails writes and pings while failing is set
type flakyStore struct {
	keyvalue.HashStore
	failing atomic.Bool
}

var errStoreDown = errors.New("store is down")

func (a *flakyStore) HSet(ctx context.Context, key, field string, value []byte) error {
	if a.failing.Load() {
		return errStoreDown
	}
	return a.HashStore.HSet(ctx, key, field, value)
}

func (a *flakyStore) Ping(ctx context.Context) error {
	if a.failing.Load() {
		return errStoreDown
	}
	return a.HashStore.Ping(ctx)
}

func TestRelay_DegradedMode(t *testing.T) {
	store := &flakyStore{HashStore: newBoltStore(t)}
	r := newRelay(t, relay.Options{
		Store:        mailbox.NewStore(store, ""),
		PingInterval: 10 * time.Millisecond,
	})
	ctx := context.Background()

	if err := r.Publish(ctx, "jill", &relay.Payload{ID: "1"}); err != nil {
		t.Fatal(err)
	}

	// When the store fails and the retries are exhausted
	store.failing.Store(true)
	if err := r.Publish(ctx, "jill", &relay.Payload{ID: "2"}); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected the store error : %v", err)
	}

	// Then the relay is degraded, rejecting publishes
	if !r.Degraded() {
		t.Fatal("relay should be degraded")
	}
	if err := r.Publish(ctx, "jill", &relay.Payload{ID: "3"}); err != relay.ErrDegraded {
		t.Errorf("expected ErrDegraded : %v", err)
	}

	// But reads are still served
	transport, _ := connect(t, r, "jill")
	if msgs := transport.NextMsgs(t, timeout); len(msgs) != 1 || msgs[0]["id"] != "1" {
		t.Errorf("backlog should have been replayed : %v", msgs)
	}

	// When the store recovers, then the store ping clears degraded mode
	store.failing.Store(false)
	waitFor(t, func() bool { return !r.Degraded() })
	if err := r.Publish(ctx, "jill", &relay.Payload{ID: "4"}); err != nil {
		t.Fatal(err)
	}
}

func TestRelay_Shutdown(t *testing.T) {
	r := newRelay(t, relay.Options{})
	transport, result := connect(t, r, "kim")

	if err := r.Shutdown(); err != nil {
		t.Fatal(err)
	}

	// in flight connections are cancelled
	if err := acceptResult(t, result); err != nil {
		t.Errorf("a cancelled connection should return nil : %v", err)
	}
	if !transport.Closed() {
		t.Error("transport should have been closed")
	}
	if r.Registry().Count() != 0 {
		t.Errorf("registry should be empty : %d", r.Registry().Count())
	}

	if err := r.Publish(context.Background(), "kim", &relay.Payload{ID: "1"}); err != relay.ErrRelayNotAlive {
		t.Errorf("expected ErrRelayNotAlive : %v", err)
	}
	if err := r.Accept(context.Background(), "kim", relaytest.NewTransport()); err != relay.ErrRelayNotAlive {
		t.Errorf("expected ErrRelayNotAlive : %v", err)
	}
	if err := r.Shutdown(); err != relay.ErrRelayNotAlive {
		t.Errorf("second shutdown should fail : %v", err)
	}
}

// stuckTransport blocks every Send until it is closed, regardless of the context
type stuckTransport struct {
	sending   chan struct{}
	sendOnce  sync.Once
	closed    chan struct{}
	closeOnce sync.Once
}

func newStuckTransport() *stuckTransport {
	return &stuckTransport{sending: make(chan struct{}), closed: make(chan struct{})}
}

func (a *stuckTransport) Send(ctx context.Context, frame []byte) error {
	a.sendOnce.Do(func() { close(a.sending) })
	<-a.closed
	return io.ErrClosedPipe
}

func (a *stuckTransport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-a.closed:
		return nil, io.EOF
	}
}

func (a *stuckTransport) Close() error {
	a.closeOnce.Do(func() { close(a.closed) })
	return nil
}

func TestRelay_ShutdownUnblocksStuckPush(t *testing.T) {
	// Given a connection whose push is stuck, with a send timeout much longer than the test timeout
	r := newRelay(t, relay.Options{SendTimeout: time.Hour})
	transport := newStuckTransport()
	result := make(chan error, 1)
	go func() { result <- r.Accept(context.Background(), "lee", transport) }()
	waitFor(t, func() bool { return r.Registry().Count() == 1 })

	if err := r.Publish(context.Background(), "lee", &relay.Payload{ID: "1"}); err != nil {
		t.Fatal(err)
	}
	select {
	case <-transport.sending:
	case <-time.After(timeout):
		t.Fatal("the message was not pushed")
	}

	// When the relay is shutdown
	shutdown := make(chan error, 1)
	go func() { shutdown <- r.Shutdown() }()

	// Then the stuck push is unblocked and shutdown completes
	select {
	case err := <-shutdown:
		if err != nil {
			t.Errorf("shutdown failed : %v", err)
		}
	case <-time.After(timeout):
		t.Fatal("shutdown is blocked by the stuck push")
	}
	acceptResult(t, result)
}

func TestRelay_AcceptContextCancelled(t *testing.T) {
	r := newRelay(t, relay.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	transport := relaytest.NewTransport()
	result := make(chan error, 1)
	go func() {
		result <- r.Accept(ctx, "liam", transport)
	}()
	waitFor(t, func() bool { return len(r.Registry().List("liam")) == 1 })

	cancel()
	if err := acceptResult(t, result); err != nil {
		t.Errorf("a cancelled connection should return nil : %v", err)
	}
	if len(r.Registry().List("liam")) != 0 {
		t.Error("connection should have been unregistered")
	}
}

func TestRelay_Push(t *testing.T) {
	store := newBoltStore(t)
	r := newRelay(t, relay.Options{Store: mailbox.NewStore(store, "")})
	ctx := context.Background()

	if err := r.Push(ctx, "jobs", []byte("job-1")); err != nil {
		t.Fatal(err)
	}
	values, err := store.LRange(ctx, "jobs")
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 1 || string(values[0]) != "job-1" {
		t.Errorf("unexpected list : %q", values)
	}
}

// relays in different processes share the redis mailbox store and bus
func TestRelay_MultipleRelays(t *testing.T) {
	server := miniredis.RunT(t)
	ctx := context.Background()

	newRedisRelay := func() *relay.Relay {
		store, err := redis.NewStore(ctx, redis.Options{Addr: server.Addr()})
		if err != nil {
			t.Fatal(err)
		}
		bus, err := redisbus.Connect(ctx, server.Addr(), messaging.DefaultSubject)
		if err != nil {
			t.Fatal(err)
		}
		return newRelay(t, relay.Options{Store: mailbox.NewStore(store, ""), Bus: bus})
	}
	r1 := newRedisRelay()
	r2 := newRedisRelay()

	transport, _ := connect(t, r2, "mia")

	// When a message is published through relay 1
	if err := r1.Publish(ctx, "mia", &relay.Payload{ID: "1", Payload: map[string]interface{}{"text": "hey"}}); err != nil {
		t.Fatal(err)
	}

	// Then the connection attached to relay 2 receives it
	msgs := transport.NextMsgs(t, timeout)
	if len(msgs) != 1 || msgs[0]["text"] != "hey" {
		t.Fatalf("unexpected messages : %v", msgs)
	}

	// And the ack is visible to relay 1
	transport.ClientAck("1")
	waitFor(t, func() bool { return len(pendingIDs(t, r1, "mia")) == 0 })
	if server.Exists("p1:mia") {
		t.Error("mailbox key should have been removed from redis")
	}
}

func TestRelay_Metrics(t *testing.T) {
	r := newRelay(t, relay.Options{})
	transport, _ := connect(t, r, "nick")

	if err := r.Publish(context.Background(), "nick", &relay.Payload{ID: "1"}); err != nil {
		t.Fatal(err)
	}
	transport.NextMsgs(t, timeout)

	published := metrics.GetOrMustRegisterCounterVec(relay.PublishedCounterOpts).WithLabelValues(r.InstanceID())
	if value := metrics.CounterValue(published); value != 1 {
		t.Errorf("published count should be 1 : %v", value)
	}
	delivered := metrics.GetOrMustRegisterCounterVec(relay.DeliveredCounterOpts).WithLabelValues(r.InstanceID())
	waitFor(t, func() bool { return metrics.CounterValue(delivered) == 1 })

	families, err := metrics.Gather()
	if err != nil {
		t.Fatal(err)
	}
	family := metrics.FindMetricFamilyByName(families, "relay_connections")
	if family == nil {
		t.Fatal("connection gauge was not collected")
	}
	found := false
	for _, m := range family.GetMetric() {
		for _, label := range m.GetLabel() {
			if label.GetName() == relay.LABEL_RELAY && label.GetValue() == r.InstanceID() {
				found = true
				if m.GetGauge().GetValue() != 1 {
					t.Errorf("expected 1 connection : %v", m.GetGauge().GetValue())
				}
			}
		}
	}
	if !found {
		t.Error("relay connection gauge was not found")
	}

	// Then the push was timed
	family = metrics.FindMetricFamilyByName(families, metrics.HistogramFQName(relay.PushDurationHistogramOpts))
	if family == nil {
		t.Fatal("push duration histogram was not collected")
	}
	if count := family.GetMetric()[0].GetHistogram().GetSampleCount(); count == 0 {
		t.Error("push duration should have been observed")
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := relay.New(relay.Options{}); err == nil {
		t.Error("store and bus are required")
	}
	store := mailbox.NewStore(newBoltStore(t), "")
	if _, err := relay.New(relay.Options{Store: store}); err == nil {
		t.Error("bus is required")
	}
	if _, err := relay.New(relay.Options{Store: store, Bus: newNatsBus(t), MaxBacklog: -1}); err == nil {
		t.Error("negative max backlog should have failed")
	}
}
