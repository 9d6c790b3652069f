// Copyright © 2019 Annchain Authors <EMAIL ADDRESS>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/annchain/vrfdkg/common/utilfuncs"
	"github.com/annchain/vrfdkg/node"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a beacon node",
	Long:  `Start a beacon node serving the contract over http and websocket`,
	Run: func(cmd *cobra.Command, args []string) {
		// init logs and other facilities before the node starts
		ensureFolder()
		readConfig()
		initLogger()

		cfg, err := node.ConfigFromViper(viper.GetViper())
		utilfuncs.PanicIfError(err, "invalid config")

		logrus.WithField("pid", os.Getpid()).Info("Node Starting")
		n, err := node.NewNode(cfg)
		utilfuncs.PanicIfError(err, "init node")
		n.Start()

		// prevent sudden stop. Do your clean up here
		gracefulStop := make(chan os.Signal, 1)
		signal.Notify(gracefulStop, syscall.SIGTERM, syscall.SIGINT)

		sig := <-gracefulStop
		logrus.Warnf("caught sig: %+v", sig)
		logrus.Warn("Exiting... Please do no kill me")
		n.Stop()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("genesis", "g", "", "Genesis instantiate file (yaml or json), applied once")
	runCmd.Flags().String("owner", "", "Owner address used with --genesis")
	_ = viper.BindPFlag("genesis.file", runCmd.Flags().Lookup("genesis"))
	_ = viper.BindPFlag("genesis.owner", runCmd.Flags().Lookup("owner"))
}
