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

package nats

import (
	"github.com/nats-io/nats.go"
	"github.com/oysterpack/relay.go/pkg/messaging"
	"github.com/oysterpack/relay.go/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubSystem is used as the metric subsystem for nats connection metrics
	MetricsSubSystem = "nats_conn"
	// LABEL_CONN_ID is the bus connection id const label
	LABEL_CONN_ID = "conn_id"
)

func newDesc(name, help, connID string) *prometheus.Desc {
	return prometheus.NewDesc(
		prometheus.BuildFQName(metrics.Namespace, MetricsSubSystem, name),
		help,
		nil,
		prometheus.Labels{LABEL_CONN_ID: connID, messaging.LABEL_VENDOR: VENDOR},
	)
}

// implements prometheus.Collector, i.e., it collects the NATS connection statistics
type connCollector struct {
	conn *nats.Conn

	connectedDesc  *prometheus.Desc
	reconnectsDesc *prometheus.Desc
	msgsInDesc     *prometheus.Desc
	msgsOutDesc    *prometheus.Desc
	bytesInDesc    *prometheus.Desc
	bytesOutDesc   *prometheus.Desc
}

func newConnCollector(connID string, conn *nats.Conn) *connCollector {
	return &connCollector{
		conn: conn,

		connectedDesc:  newDesc("connected", "1 if the connection is currently connected", connID),
		reconnectsDesc: newDesc("reconnects", "The number of times the connection has reconnected", connID),
		msgsInDesc:     newDesc("msgs_in", "The number of messages received on the connection", connID),
		msgsOutDesc:    newDesc("msgs_out", "The number of messages sent on the connection", connID),
		bytesInDesc:    newDesc("bytes_in", "The number of bytes received on the connection", connID),
		bytesOutDesc:   newDesc("bytes_out", "The number of bytes sent on the connection", connID),
	}
}

// Describe implements prometheus.Collector
func (a *connCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- a.connectedDesc
	ch <- a.reconnectsDesc
	ch <- a.msgsInDesc
	ch <- a.msgsOutDesc
	ch <- a.bytesInDesc
	ch <- a.bytesOutDesc
}

// Collect implements prometheus.Collector
func (a *connCollector) Collect(ch chan<- prometheus.Metric) {
	connected := 0.0
	if a.conn.IsConnected() {
		connected = 1
	}
	stats := a.conn.Stats()
	ch <- prometheus.MustNewConstMetric(a.connectedDesc, prometheus.GaugeValue, connected)
	ch <- prometheus.MustNewConstMetric(a.reconnectsDesc, prometheus.CounterValue, float64(stats.Reconnects))
	ch <- prometheus.MustNewConstMetric(a.msgsInDesc, prometheus.CounterValue, float64(stats.InMsgs))
	ch <- prometheus.MustNewConstMetric(a.msgsOutDesc, prometheus.CounterValue, float64(stats.OutMsgs))
	ch <- prometheus.MustNewConstMetric(a.bytesInDesc, prometheus.CounterValue, float64(stats.InBytes))
	ch <- prometheus.MustNewConstMetric(a.bytesOutDesc, prometheus.CounterValue, float64(stats.OutBytes))
}
