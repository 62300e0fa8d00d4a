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

package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/oysterpack/relay.go/pkg/app"
	"github.com/oysterpack/relay.go/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReporterServiceID is the metrics http reporter service id
const ReporterServiceID = app.ServiceID(0xe3b1c6d0a8f5427b)

// DefaultPath is the http endpoint path that metrics are reported on
const DefaultPath = "/metrics"

// ShutdownTimeout is how long the reporter waits for in flight scrapes when stopping
const ShutdownTimeout = 30 * time.Second

// log events
const (
	METRICS_HTTP_SERVER_ERROR = app.LogEventID(0x9f0f4d2d15c1e6b8)
)

// Reporter reports prometheus metrics via HTTP
type Reporter struct {
	*app.Service

	addr       string
	listener   net.Listener
	httpServer *http.Server
}

// NewReporter creates a new Reporter that will listen on the specified address, e.g., ":9090".
// The reporter must be started via Start()
func NewReporter(addr string) *Reporter {
	return &Reporter{
		Service: app.NewService(ReporterServiceID, "metrics_http"),
		addr:    addr,
	}
}

// Handler returns the http handler for the global metrics registry
func (a *Reporter) Handler() http.Handler {
	return promhttp.HandlerFor(
		metrics.Registry,
		promhttp.HandlerOpts{
			ErrorLog:      a,
			ErrorHandling: promhttp.ContinueOnError,
		},
	)
}

// Start binds the listener and starts serving the metrics endpoint.
func (a *Reporter) Start() error {
	listener, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	a.listener = listener

	mux := http.NewServeMux()
	mux.Handle(DefaultPath, a.Handler())
	a.httpServer = &http.Server{Handler: mux}

	a.Go(func() error {
		if err := a.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			METRICS_HTTP_SERVER_ERROR.Log(a.Logger().Error()).Err(err).Msg("")
			return err
		}
		return nil
	})
	a.Go(func() error {
		<-a.Dying()
		shutdownContext, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := a.httpServer.Shutdown(shutdownContext); err != nil {
			a.Logger().Error().Err(err).Msg("")
		}
		return nil
	})

	app.SERVICE_STARTED.Log(a.Logger().Info()).Str("addr", listener.Addr().String()).Msg("started")
	return nil
}

// Addr returns the address the reporter is listening on. nil is returned if the reporter has not been started.
func (a *Reporter) Addr() net.Addr {
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Println implements promhttp.Logger interface.
// It is used to log any errors reported by the prometheus http handler
func (a *Reporter) Println(v ...interface{}) {
	a.Logger().Error().Msg(fmt.Sprint(v...))
}
