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

package main

import "github.com/oysterpack/relay.go/pkg/app"

type pkgobject struct{}

var logger = app.NewPackageLogger(pkgobject{})

// log events
const (
	RELAY_SIGNALLED   = app.LogEventID(0xe4f07a3c2d5b9816)
	RELAY_STOP_FAILED = app.LogEventID(0xc7e3b1a9504fd628)
	STORE_OPENED      = app.LogEventID(0x5d19f3a8c64e20b7)
)
