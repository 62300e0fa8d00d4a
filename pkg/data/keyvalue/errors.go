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

package keyvalue

import (
	"errors"
	"fmt"

	"github.com/oysterpack/relay.go/pkg/app"
)

var (
	ErrFilePathIsBlank            = &app.Err{ErrorID: app.ErrorID(0x8f4c3a0dbbe1e1a4), Err: errors.New("Path must not be blank")}
	ErrDatabaseNameMustNotBeBlank = &app.Err{ErrorID: app.ErrorID(0xd0d8c1a7f6b74a1e), Err: errors.New("Database name must not be blank")}
	ErrKeyMustNotBeBlank          = &app.Err{ErrorID: app.ErrorID(0xa3e9c2f08e5d6b71), Err: errors.New("Key must not be blank")}

	// ErrNotFound is returned when a hash field does not exist
	ErrNotFound = &app.Err{ErrorID: app.ErrorID(0xc81b4e7a2f9d3065), Err: errors.New("Not found")}
)

func errRootDatabaseBucketDoesNotExist(dbName string) error {
	return &app.Err{ErrorID: app.ErrorID(0xe6f20ab9d4c1873f), Err: fmt.Errorf("Root database bucket does not exist : %s", dbName)}
}

func errDatabaseFilePathIsDir(filePath string) error {
	return &app.Err{ErrorID: app.ErrorID(0x97b3d5e1c0a24f68), Err: fmt.Errorf("The database file path must point to a file, not a directory : %s", filePath)}
}
