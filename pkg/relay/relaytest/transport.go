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

// Package relaytest provides an in-memory relay.Transport for tests
package relaytest

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrSendFailed is returned by Send once FailSends is set
var ErrSendFailed = errors.New("send failed")

// Transport is an in-memory relay.Transport. The test acts as the client, i.e., it sends frames to the relay and
// reads the frames that the relay sent.
type Transport struct {
	inbound  chan []byte
	outbound chan []byte

	closeOnce sync.Once
	closed    chan struct{}

	failSends atomic.Bool
}

// NewTransport creates a new Transport
func NewTransport() *Transport {
	return &Transport{
		inbound:  make(chan []byte, 64),
		outbound: make(chan []byte, 64),
		closed:   make(chan struct{}),
	}
}

// Send implements relay.Transport
func (a *Transport) Send(ctx context.Context, frame []byte) error {
	if a.failSends.Load() {
		return ErrSendFailed
	}
	select {
	case <-a.closed:
		return io.ErrClosedPipe
	default:
	}
	select {
	case a.outbound <- frame:
		return nil
	case <-a.closed:
		return io.ErrClosedPipe
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive implements relay.Transport
func (a *Transport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-a.inbound:
		return frame, nil
	case <-a.closed:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close implements relay.Transport
func (a *Transport) Close() error {
	a.closeOnce.Do(func() { close(a.closed) })
	return nil
}

// Closed returns true if the transport was closed
func (a *Transport) Closed() bool {
	select {
	case <-a.closed:
		return true
	default:
		return false
	}
}

// FailSends makes every subsequent Send fail with ErrSendFailed
func (a *Transport) FailSends() {
	a.failSends.Store(true)
}

// ClientSend sends the frame to the relay
func (a *Transport) ClientSend(frame string) {
	a.inbound <- []byte(frame)
}

// ClientAck acknowledges the message ids
func (a *Transport) ClientAck(ids ...string) {
	a.ClientSend(`{"tp":"reply","ids":"` + strings.Join(ids, ",") + `"}`)
}

// ClientPublish publishes the payload to the channel
func (a *Transport) ClientPublish(t testing.TB, to string, payload map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(map[string]interface{}{"to": to, "payload": payload})
	if err != nil {
		t.Fatal(err)
	}
	a.inbound <- data
}

// Next returns the next frame that the relay sent. The test fails if no frame is received within the timeout.
func (a *Transport) Next(t testing.TB, timeout time.Duration) []byte {
	t.Helper()
	select {
	case frame := <-a.outbound:
		return frame
	case <-time.After(timeout):
		t.Fatal("timed out waiting for a frame")
		return nil
	}
}

// NextMsgs returns the messages contained in the next frame that the relay sent
func (a *Transport) NextMsgs(t testing.TB, timeout time.Duration) []map[string]interface{} {
	t.Helper()
	frame := a.Next(t, timeout)
	msgs := struct {
		Msgs []map[string]interface{} `json:"msgs"`
	}{}
	if err := json.Unmarshal(frame, &msgs); err != nil {
		t.Fatalf("invalid frame : %s : %v", frame, err)
	}
	return msgs.Msgs
}

// ExpectNothing fails the test if the relay sends a frame within the duration
func (a *Transport) ExpectNothing(t testing.TB, d time.Duration) {
	t.Helper()
	select {
	case frame := <-a.outbound:
		t.Fatalf("no frame was expected : %s", frame)
	case <-time.After(d):
	}
}
