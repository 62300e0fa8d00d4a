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
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/oysterpack/relay.go/pkg/app"
	"github.com/oysterpack/relay.go/pkg/metrics"
	"github.com/oysterpack/relay.go/pkg/relay"
	"github.com/prometheus/client_golang/prometheus"
)

// handler defaults
const (
	DefaultPath      = "/ws"
	DefaultMaxConns  = 10000
	DefaultReadLimit = 64 * 1024
)

// HandlerOptions configures the websocket handler
type HandlerOptions struct {
	// Path is the URL path the handler is mounted on. The channel may be appended as a path suffix.
	Path string
	// MaxConns is the max number of concurrent connections. When reached, new connections are rejected with 503.
	MaxConns uint
	// ReadLimit is the max size in bytes of a frame read from a client
	ReadLimit int64
	// CheckOrigin is passed through to the websocket upgrader. If nil, all origins are accepted.
	CheckOrigin func(r *http.Request) bool
	// Hooks are run for each payload frame published by a client
	Hooks []relay.Hook
}

func (a *HandlerOptions) applyDefaults() {
	if a.Path == "" {
		a.Path = DefaultPath
	}
	if a.MaxConns == 0 {
		a.MaxConns = DefaultMaxConns
	}
	if a.ReadLimit <= 0 {
		a.ReadLimit = DefaultReadLimit
	}
	if a.CheckOrigin == nil {
		a.CheckOrigin = func(r *http.Request) bool { return true }
	}
}

// Handler upgrades HTTP requests to websocket connections and hands them to the relay
type Handler struct {
	relay     *relay.Relay
	opts      HandlerOptions
	upgrader  websocket.Upgrader
	semaphore app.CountingSemaphore

	connections prometheus.Gauge
	upgrades    prometheus.Counter
	rejected    prometheus.Counter
}

// NewHandler creates a new Handler for the relay
func NewHandler(r *relay.Relay, opts HandlerOptions) *Handler {
	opts.applyDefaults()
	return &Handler{
		relay: r,
		opts:  opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: opts.CheckOrigin,
		},
		semaphore:   app.NewCountingSemaphore(opts.MaxConns),
		connections: metrics.GetOrMustRegisterGauge(ConnectionsGaugeOpts),
		upgrades:    metrics.GetOrMustRegisterCounter(UpgradesCounterOpts),
		rejected:    metrics.GetOrMustRegisterCounter(RejectedCounterOpts),
	}
}

// Path returns the path that the handler should be mounted on
func (a *Handler) Path() string {
	return a.opts.Path
}

// Channel extracts the channel from the request: the channel query parameter takes precedence over the path suffix
func (a *Handler) Channel(r *http.Request) string {
	if channel := strings.TrimSpace(r.URL.Query().Get("channel")); channel != "" {
		return channel
	}
	suffix := strings.TrimPrefix(r.URL.Path, a.opts.Path)
	return strings.TrimSpace(strings.Trim(suffix, "/"))
}

// ServeHTTP upgrades the connection and blocks until the relay session ends
func (a *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	channel := a.Channel(r)
	if channel == "" {
		http.Error(w, relay.ErrChannelMustNotBeBlank.Error(), http.StatusBadRequest)
		return
	}
	if !a.semaphore.TryAcquire() {
		a.rejected.Inc()
		CONN_REJECTED.Log(logger.Warn()).Str(CHANNEL, channel).Str(REMOTE_ADDR, r.RemoteAddr).Msg("max connections reached")
		http.Error(w, "max connections reached", http.StatusServiceUnavailable)
		return
	}
	defer a.semaphore.ReturnToken()

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the error response
		CONN_UPGRADE_FAILED.Log(logger.Debug()).Err(err).Str(REMOTE_ADDR, r.RemoteAddr).Msg("")
		return
	}
	conn.SetReadLimit(a.opts.ReadLimit)
	a.upgrades.Inc()
	a.connections.Inc()
	defer a.connections.Dec()

	transport := NewTransport(conn)
	err = a.relay.Accept(r.Context(), channel, transport, a.opts.Hooks...)
	event := CONN_SESSION_ENDED.Log(logger.Debug()).Str(CHANNEL, channel).Str(REMOTE_ADDR, r.RemoteAddr)
	if err != nil {
		event.Err(err)
	}
	event.Msg("")
}
