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

// Package nats provides a NATS backed messaging.Bus
package nats

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/oysterpack/relay.go/pkg/app"
)

// VENDOR is used to label bus metrics
const VENDOR = "nats"

// Connect Options
var (
	// DefaultConnectTimeout is the default timeout used when creating a new NATS connection
	DefaultConnectTimeout   = nats.Timeout(5 * time.Second)
	DefaultReConnectTimeout = nats.ReconnectWait(2 * time.Second)
	AlwaysReconnect         = nats.MaxReconnects(-1)
)

// DefaultChanBufSize is the subscription channel buffer size. NATS drops messages for slow consumers once it is full.
var DefaultChanBufSize = nats.DefaultMaxChanLen

type pkgobject struct{}

var logger = app.NewPackageLogger(pkgobject{})

// log events
const (
	CONN_CONNECTED  = app.LogEventID(0x9a3f6c0e21d7b854)
	CONN_DISCONNECT = app.LogEventID(0xc7b0e4d93a2f1865)
	CONN_RECONNECT  = app.LogEventID(0xd25e8a1fb47c0396)
	CONN_CLOSED     = app.LogEventID(0xa81c5f3e6d09b72e)
	CONN_ERR        = app.LogEventID(0xf4902db6c5e83a17)
)

// log event fields
const (
	CONN_ID    = "conn_id"
	SUBJECT    = "subject"
	RECONNECTS = "reconnects"
)
