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
	stdlog "log"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewPackageLogger returns a new logger with pkg={pkg}
// where {pkg} is o's package path
// o must be for a named type because the package path can only be obtained for named types
func NewPackageLogger(o interface{}) zerolog.Logger {
	if ObjectPackage(o) == NoPackage {
		panic("only objects for named types are supported")
	}
	return log.With().
		Str("pkg", string(ObjectPackage(o))).
		Logger()
}

// Level is the logging level
type Level string

// log levels
const (
	DEBUG Level = "DEBUG"
	INFO  Level = "INFO"
	WARN  Level = "WARN"
	ERROR Level = "ERROR"
)

// ParseLogLevel maps [DEBUG,INFO,WARN,ERROR] (case insensitive) to the zerolog level.
// A blank level maps to WARN.
//
// errors:
//	- ErrUnknownLogLevel
func ParseLogLevel(level string) (zerolog.Level, error) {
	switch Level(strings.ToUpper(strings.TrimSpace(level))) {
	case DEBUG:
		return zerolog.DebugLevel, nil
	case INFO:
		return zerolog.InfoLevel, nil
	case WARN, "":
		return zerolog.WarnLevel, nil
	case ERROR:
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.WarnLevel, ErrUnknownLogLevel
	}
}

// ConfigureLogging applies the global log level to every package logger and redirects go's std log to zerolog.
// It is meant to be called once, right after the config has been loaded.
func ConfigureLogging(level zerolog.Level) {
	// log with nanosecond precision time
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(level)

	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
}
