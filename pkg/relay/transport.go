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

import "context"

// Transport is a duplex text channel to a connected client, e.g., a websocket
type Transport interface {
	// Send writes one frame to the client
	Send(ctx context.Context, frame []byte) error

	// Receive blocks until the next frame is read from the client
	Receive(ctx context.Context) ([]byte, error)

	// Close closes the connection. Any blocked Send or Receive calls are expected to return with an error.
	Close() error
}
