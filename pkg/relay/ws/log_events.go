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

import "github.com/oysterpack/relay.go/pkg/app"

type pkgobject struct{}

var logger = app.NewPackageLogger(pkgobject{})

// log events
const (
	SERVER_ERROR        = app.LogEventID(0x8b3f06c9e2d1a574)
	CONN_UPGRADE_FAILED = app.LogEventID(0xf06b4d2a93c8e157)
	CONN_REJECTED       = app.LogEventID(0xa97c1e54d08b3f26)
	CONN_SESSION_ENDED  = app.LogEventID(0xc35e9a0b7f4d2816)
)

// log event fields
const (
	CHANNEL     = "channel"
	REMOTE_ADDR = "remote_addr"
)
