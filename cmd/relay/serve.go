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

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oysterpack/relay.go/pkg/app"
	metricshttp "github.com/oysterpack/relay.go/pkg/metrics/http"
	"github.com/oysterpack/relay.go/pkg/relay/ws"
	"github.com/spf13/cobra"
)

func (a *cli) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the websocket relay server",
		Long: `Run the websocket relay server.

Clients connect to ws://<server.addr><server.path>/<channel>. The server runs until it receives SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: a.serve,
	}
}

func (a *cli) serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := startRelay(ctx, a.cfg)
	if err != nil {
		return err
	}

	server := ws.NewServer(a.cfg.Server.Addr, ws.NewHandler(r, ws.HandlerOptions{
		Path:      a.cfg.Server.Path,
		MaxConns:  a.cfg.Server.MaxConns,
		ReadLimit: a.cfg.Server.ReadLimit,
	}))
	if err := server.Start(); err != nil {
		r.Shutdown()
		return err
	}

	var reporter *metricshttp.Reporter
	if a.cfg.Metrics.Addr != "" {
		reporter = metricshttp.NewReporter(a.cfg.Metrics.Addr)
		if err := reporter.Start(); err != nil {
			server.Stop()
			r.Shutdown()
			return err
		}
	}

	appLogger := app.Logger()
	app.APP_STARTED.Log(appLogger.Info()).
		Str("instance", string(app.InstanceId())).
		Str("relay", r.InstanceID()).
		Str("addr", server.Addr().String()).
		Str("store", a.cfg.Store.Driver).
		Str("bus", a.cfg.Bus.Driver).
		Msg("serving")

	select {
	case <-ctx.Done():
		RELAY_SIGNALLED.Log(logger.Info()).Msg("shutting down")
	case <-server.Dead():
	}

	app.APP_STOPPING.Log(appLogger.Info()).Msg("stopping")
	// stop accepting connections before the relay closes the open ones
	server.Stop()
	err = r.Shutdown()
	if err != nil {
		RELAY_STOP_FAILED.Log(logger.Error()).Err(err).Msg("")
	}
	if reporter != nil {
		reporter.Stop()
	}
	app.APP_STOPPED.Log(appLogger.Info()).Dur("uptime", time.Since(app.CreatedOn())).Msg("stopped")
	return err
}
