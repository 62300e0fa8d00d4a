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
	"context"
	"net"
	"net/http"
	"time"

	"github.com/oysterpack/relay.go/pkg/app"
)

// ServerServiceID is the websocket server service id
const ServerServiceID = app.ServiceID(0x97f2c4e0b5a1d863)

// ShutdownTimeout is how long the server waits for in flight HTTP requests when stopping.
// Upgraded connections are not tracked by the HTTP server. They are closed when the relay is shutdown.
const ShutdownTimeout = 10 * time.Second

// Server serves the websocket handler
type Server struct {
	*app.Service

	addr       string
	handler    *Handler
	listener   net.Listener
	httpServer *http.Server
}

// NewServer creates a new server that will listen on the specified address, e.g., ":8080".
// The server must be started via Start()
func NewServer(addr string, handler *Handler) *Server {
	return &Server{
		Service: app.NewService(ServerServiceID, "relay_ws"),
		addr:    addr,
		handler: handler,
	}
}

// Start binds the listener and starts serving
func (a *Server) Start() error {
	listener, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	a.listener = listener

	mux := http.NewServeMux()
	mux.Handle(a.handler.Path(), a.handler)
	mux.Handle(a.handler.Path()+"/", a.handler)
	mux.Handle(HealthPath, NewHealthHandler(a.handler.relay, 0))
	a.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.Go(func() error {
		if err := a.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			SERVER_ERROR.Log(a.Logger().Error()).Err(err).Msg("")
			return err
		}
		return nil
	})
	a.Go(func() error {
		<-a.Dying()
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := a.httpServer.Shutdown(ctx); err != nil {
			SERVER_ERROR.Log(a.Logger().Error()).Err(err).Msg("shutdown")
		}
		return nil
	})

	app.SERVICE_STARTED.Log(a.Logger().Info()).Str("addr", listener.Addr().String()).Str("path", a.handler.Path()).Msg("started")
	return nil
}

// Addr returns the address the server is listening on. nil is returned if the server has not been started.
func (a *Server) Addr() net.Addr {
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}
