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

package main

import (
	"github.com/oysterpack/relay.go/pkg/app"
	"github.com/oysterpack/relay.go/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli holds the state shared by the commands
type cli struct {
	v   *viper.Viper
	cfg *config.Config
}

// NewRootCommand creates the relay command tree
func NewRootCommand() *cobra.Command {
	c := &cli{v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:   "relay",
		Short: "Persisted mailbox relay",
		Long: `relay stores messages in per channel mailboxes and pushes them to connected clients.

Messages stay pending until the client acknowledges them. A client that connects receives its backlog
before any live messages.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.load,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "YAML config file")
	flags.String("log-level", "", "log level: DEBUG, INFO, WARN, ERROR")
	_ = c.v.BindPFlag("log.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(
		c.serveCommand(),
		c.publishCommand(),
		c.pushCommand(),
		c.configCommand(),
		versionCommand(),
	)
	return rootCmd
}

// load loads the config and configures logging before any command runs
func (a *cli) load(cmd *cobra.Command, args []string) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := config.ReadFile(a.v, path); err != nil {
			return err
		}
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	level, err := app.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	app.ConfigureLogging(level)
	a.cfg = cfg
	return nil
}
