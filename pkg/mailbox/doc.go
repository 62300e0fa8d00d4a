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

// Package mailbox persists the pending messages of each channel until they are acknowledged.
//
// A channel mailbox is a hash stored under the key {prefix}{channel}. The hash field is the message id and the value
// is the serialized message. A message id is unique within its channel's mailbox, i.e., re-using an id overwrites
// the pending message.
package mailbox
