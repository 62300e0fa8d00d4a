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

package app

import (
	"time"

	"github.com/nats-io/nuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// app vars
var (
	appInstanceId = InstanceID(nuid.Next())
	createdOn     = time.Now()

	logger = log.Logger.With().Str("instance", string(appInstanceId)).Logger()
)

// InstanceId returns the id that was assigned to this process when it started
func InstanceId() InstanceID {
	return appInstanceId
}

// CreatedOn returns when the process was started
func CreatedOn() time.Time {
	return createdOn
}

// Logger returns the app logger
func Logger() zerolog.Logger {
	return logger
}
