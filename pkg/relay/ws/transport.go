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

package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// CloseGracePeriod is how long Close waits for the close control frame to be written
const CloseGracePeriod = time.Second

// Transport adapts a websocket connection to the relay.Transport interface.
// Writes are serialized. Only one goroutine may call Receive at a time.
type Transport struct {
	conn *websocket.Conn

	writeMutex sync.Mutex
	closeOnce  sync.Once
	closeErr   error
}

// NewTransport wraps the websocket connection
func NewTransport(conn *websocket.Conn) *Transport {
	return &Transport{conn: conn}
}

// Send writes the frame as a websocket text message.
// The context deadline is applied as the write deadline. Cancelling the context aborts a blocked write by closing
// the underlying network connection, after which the transport is no longer usable.
func (a *Transport) Send(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.writeMutex.Lock()
	defer a.writeMutex.Unlock()

	deadline, _ := ctx.Deadline()
	if err := a.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	// the websocket conn applies its write deadline to the network conn before each frame, which would override a
	// deadline set here from another goroutine
	stop := context.AfterFunc(ctx, func() {
		a.conn.NetConn().Close()
	})
	defer stop()

	if err := a.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Receive returns the next text or binary message read from the client.
// Cancelling the context aborts the read, after which the connection is no longer usable.
func (a *Transport) Receive(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		a.conn.NetConn().SetReadDeadline(time.Now())
	})
	defer stop()

	_, data, err := a.conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return data, nil
}

// Close sends a normal closure control frame and closes the underlying connection. It is safe to call Close
// more than once.
func (a *Transport) Close() error {
	a.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		a.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(CloseGracePeriod))
		a.closeErr = a.conn.Close()
	})
	return a.closeErr
}

// RemoteAddr returns the client address
func (a *Transport) RemoteAddr() string {
	return a.conn.RemoteAddr().String()
}
