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
	"github.com/oysterpack/relay.go/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics
var (
	ConnectionsGaugeOpts = &prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Subsystem: "ws",
		Name:      "connections",
		Help:      "The number of open websocket connections",
	}

	UpgradesCounterOpts = &prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "ws",
		Name:      "upgrades_total",
		Help:      "The number of websocket connections that were upgraded",
	}

	RejectedCounterOpts = &prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "ws",
		Name:      "rejected_total",
		Help:      "The number of websocket connections rejected because the max connection limit was reached",
	}
)
