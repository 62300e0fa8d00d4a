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

// Package app provides the process level plumbing that the relay packages share.
//
// Design Principles
//  1. Concurrency safe. Always design the service to be safely used by concurrent goroutines.
//     - Prefer immutability
//     - Prefer channels
//     - use locks as a last resort
//  2. Every long running component is a Service, i.e., its goroutines are tracked by a tomb.
//     Killing the service stops all of its goroutines, and Stop() waits until they are dead.
//  3. All key components are assigned a unique numeric id (uint64) for tracking and traceability purposes.
//     - ServiceID
//     - ErrorID
//     - LogEventID
//
//     Ids are stable across renames, which keeps logs and alerts greppable after refactoring.
//  4. Each package owns a zerolog package logger. The global log level is applied once at startup via ConfigureLogging().
package app
