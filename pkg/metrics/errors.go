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

package metrics

import (
	"errors"

	"github.com/oysterpack/relay.go/pkg/app"
)

var (
	// ErrMetricAlreadyRegisteredWithDifferentOpts indicates a metric opts collision
	ErrMetricAlreadyRegisteredWithDifferentOpts = &app.Err{ErrorID: app.ErrorID(0xb6a5e4b3d2c1f0a9), Err: errors.New("Metric already registered with different opts")}
	// ErrMetricNameUsedByDifferentMetricType indicates the metric name collision between different metric types
	ErrMetricNameUsedByDifferentMetricType = &app.Err{ErrorID: app.ErrorID(0xc4d1f8e3a7b2906e), Err: errors.New("Metric name used by different metric type")}
)
