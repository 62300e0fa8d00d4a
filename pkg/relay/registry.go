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

package relay

import (
	"sort"
	"sync"
	"time"
)

// Conn is a connection registered under a channel
type Conn struct {
	ID         string
	Channel    string
	Transport  Transport
	Registered time.Time
}

// Registry tracks the connections that are attached to this relay process, grouped by channel.
// A transport may be registered under at most one (channel, connection id) entry.
type Registry struct {
	mutex      sync.RWMutex
	channels   map[string]map[string]*Conn
	transports map[Transport]*Conn
}

// NewRegistry creates a new empty Registry
func NewRegistry() *Registry {
	return &Registry{
		channels:   map[string]map[string]*Conn{},
		transports: map[Transport]*Conn{},
	}
}

// Register adds the transport under (channel, connID).
// ErrTransportAlreadyRegistered is returned if the transport or the (channel, connID) pair is already registered.
func (a *Registry) Register(channel, connID string, transport Transport) (*Conn, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if _, exists := a.transports[transport]; exists {
		return nil, ErrTransportAlreadyRegistered
	}
	conns := a.channels[channel]
	if conns == nil {
		conns = map[string]*Conn{}
		a.channels[channel] = conns
	} else if _, exists := conns[connID]; exists {
		return nil, ErrTransportAlreadyRegistered
	}
	conn := &Conn{ID: connID, Channel: channel, Transport: transport, Registered: time.Now()}
	conns[connID] = conn
	a.transports[transport] = conn
	return conn, nil
}

// Unregister removes the (channel, connID) entry. It is a no-op if the entry does not exist.
func (a *Registry) Unregister(channel, connID string) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	conns := a.channels[channel]
	conn := conns[connID]
	if conn == nil {
		return
	}
	delete(conns, connID)
	delete(a.transports, conn.Transport)
	if len(conns) == 0 {
		delete(a.channels, channel)
	}
}

// List returns a snapshot of the connections registered under the channel
func (a *Registry) List(channel string) []*Conn {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	conns := a.channels[channel]
	if len(conns) == 0 {
		return nil
	}
	result := make([]*Conn, 0, len(conns))
	for _, conn := range conns {
		result = append(result, conn)
	}
	return result
}

// Channels returns the names of the channels that have at least 1 connection, sorted
func (a *Registry) Channels() []string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	channels := make([]string, 0, len(a.channels))
	for channel := range a.channels {
		channels = append(channels, channel)
	}
	sort.Strings(channels)
	return channels
}

// Count returns the number of registered connections
func (a *Registry) Count() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return len(a.transports)
}

// ChannelCount returns the number of channels that have at least 1 connection
func (a *Registry) ChannelCount() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return len(a.channels)
}

// CloseAll closes every registered transport. The entries are removed by their connection tasks as they return.
// The number of transports that were closed is returned.
func (a *Registry) CloseAll() int {
	a.mutex.RLock()
	transports := make([]Transport, 0, len(a.transports))
	for transport := range a.transports {
		transports = append(transports, transport)
	}
	a.mutex.RUnlock()

	for _, transport := range transports {
		transport.Close()
	}
	return len(transports)
}
