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

// Package keyvalue defines the HashStore abstraction used to persist mailboxes, and provides an embedded bbolt
// implementation for single process deployments.
//
// A HashStore maps a key to a hash of field-value pairs, plus simple push-only lists. Within the bbolt database,
// the hashes and lists are stored as nested buckets under the database root bucket :
//
//	{dbName}
//	  created : binary encoded time.Time
//	  hashes
//	    {key} : {field} -> value
//	  lists
//	    {key} : {descending sequence} -> value
package keyvalue
