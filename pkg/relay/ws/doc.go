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

// Package ws serves relay connections over websockets.
//
// A client connects to the handler path with the channel either as a path suffix or as the channel query parameter,
// e.g., ws://host:8080/ws/alice or ws://host:8080/ws?channel=alice. Text frames read from the client are relay
// protocol frames. Message batches are written back as text frames.
package ws
