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

package ws_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oysterpack/relay.go/pkg/relay/ws"
)

// newTransportPair returns the server side transport and the client side conn of a websocket connection
func newTransportPair(t *testing.T) (*ws.Transport, *websocket.Conn) {
	t.Helper()
	transports := make(chan *ws.Transport, 1)
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		transports <- ws.NewTransport(conn)
	}))
	t.Cleanup(server.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case transport := <-transports:
		t.Cleanup(func() { transport.Close() })
		return transport, client
	case <-time.After(timeout):
		t.Fatal("connection was not upgraded")
		return nil, nil
	}
}

func TestTransport_SendReceive(t *testing.T) {
	transport, client := newTransportPair(t)
	ctx := context.Background()

	if err := transport.Send(ctx, []byte(`{"msgs":[]}`)); err != nil {
		t.Fatal(err)
	}
	client.SetReadDeadline(time.Now().Add(timeout))
	if _, data, err := client.ReadMessage(); err != nil || string(data) != `{"msgs":[]}` {
		t.Errorf("unexpected frame : %s : %v", data, err)
	}

	if err := client.WriteMessage(websocket.TextMessage, []byte(`{"to":"a"}`)); err != nil {
		t.Fatal(err)
	}
	if data, err := transport.Receive(ctx); err != nil || string(data) != `{"to":"a"}` {
		t.Errorf("unexpected frame : %s : %v", data, err)
	}
}

func TestTransport_CancelBlockedSend(t *testing.T) {
	transport, _ := newTransportPair(t)

	// Given a client that never reads, Send eventually blocks once the socket buffers are full
	frame := make([]byte, 1<<20)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	result := make(chan error, 1)
	go func() {
		for {
			if err := transport.Send(ctx, frame); err != nil {
				result <- err
				return
			}
		}
	}()
	select {
	case err := <-result:
		t.Fatalf("Send failed before the context was cancelled : %v", err)
	case <-time.After(500 * time.Millisecond):
	}

	// When the context is cancelled
	cancel()

	// Then the blocked Send returns
	select {
	case err := <-result:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled : %v", err)
		}
	case <-time.After(timeout):
		t.Fatal("Send is still blocked after its context was cancelled")
	}
}

func TestTransport_CancelReceive(t *testing.T) {
	transport, _ := newTransportPair(t)
	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		_, err := transport.Receive(ctx)
		result <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-result:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled : %v", err)
		}
	case <-time.After(timeout):
		t.Fatal("Receive is still blocked after its context was cancelled")
	}
}
