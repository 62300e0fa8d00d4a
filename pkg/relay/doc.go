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

// Package relay delivers persisted channel messages to client connections.
//
// Publishing a message persists it to the channel mailbox and then notifies every relay process via the bus.
// Each relay runs a dispatch loop that consumes the bus notifications, and for channels that have local connections,
// fetches the message from the mailbox and pushes it to each connection. When a connection is accepted, the
// channel's pending messages are replayed. Messages remain in the mailbox until the client acknowledges them, i.e.,
// delivery is at least once and clients are expected to de-duplicate by message id.
//
// Client frames are JSON objects :
//
//	{"to":"bob","payload":{"id":"m1","text":"hi"},"np":0}  publish a message to channel "bob"
//	{"tp":"reply","ids":"m1,m2"}                            acknowledge messages
//
// Messages are delivered to clients as :
//
//	{"msgs":[{"id":"m1","text":"hi"}]}
package relay
