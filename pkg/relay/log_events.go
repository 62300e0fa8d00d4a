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

import "github.com/oysterpack/relay.go/pkg/app"

type pkgobject struct{}

var logger = app.NewPackageLogger(pkgobject{})

// log events
const (
	MESSAGE_PUBLISHED     = app.LogEventID(0x91c5f7d03e8a2b46)
	MESSAGE_NOTIFY_FAILED = app.LogEventID(0xe2a09d4c7b51f863)
	MESSAGE_DISCARDED     = app.LogEventID(0xc8d31b6f05e9a247)
	MESSAGE_FETCH_FAILED  = app.LogEventID(0xb45f2e8a9c01d736)
	MESSAGE_DECODE_FAILED = app.LogEventID(0xf9e1c3d68a7b0524)
	MESSAGE_PUSH_FAILED   = app.LogEventID(0xd7260a5be91f3c48)
	MESSAGES_ACKED        = app.LogEventID(0xa3b8f4019d6c2e75)
	MESSAGES_ACK_FAILED   = app.LogEventID(0x8f07d5a2c3e64b19)
	PUBLISH_REJECTED      = app.LogEventID(0xe6c94b2d8f1a0375)
	STORE_RETRY           = app.LogEventID(0xc1a7e05f3b92d846)

	CONN_ACCEPTED      = app.LogEventID(0x9d4e2a7c6b03f158)
	CONN_REPLAYED      = app.LogEventID(0xb0f3c81e5a9d4627)
	CONN_CLOSED        = app.LogEventID(0xf4a6d2093ce7b851)
	CONN_PROTOCOL_ERR  = app.LogEventID(0xa8e51c4f7d2b3096)
	CONN_TRANSPORT_ERR = app.LogEventID(0xd35b7f90e1c6a824)

	DEGRADED  = app.LogEventID(0xe9c0a4b71f5d3268)
	RECOVERED = app.LogEventID(0x86f1d3e9a2c07b45)

	DISPATCH_STOPPED = app.LogEventID(0xcb52e8f4d1a96307)
)

// log event fields
const (
	CHANNEL  = "channel"
	CONN_ID  = "conn_id"
	MSG_ID   = "msg_id"
	MSG_IDS  = "msg_ids"
	COUNT    = "count"
	RELAY_ID = "relay"
)
