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

// Package messaging defines the notification bus that relay processes use to tell each other that a message was
// persisted to a channel mailbox.
//
// Notifications are published on a single subject that every relay subscribes to. Delivery is at most once, i.e.,
// the bus is used only as a wake up signal. The message itself is always fetched from the mailbox store.
package messaging
