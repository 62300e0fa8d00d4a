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

package app

import (
	"github.com/Masterminds/semver"
)

// Version is the relay release version. Release builds override it via :
//
//	-ldflags "-X github.com/oysterpack/relay.go/pkg/app.Version=1.2.3"
var Version = "0.1.0"

// ReleaseVersion parses Version.
//
// errors:
//	- ConfigError if Version is not a valid semantic version
func ReleaseVersion() (*semver.Version, error) {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return nil, NewConfigError(err)
	}
	return v, nil
}
