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

	"github.com/annchain/vrfdkg/common/goroutine"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vrfdkg",
	Short: "vrfdkg: threshold BLS randomness beacon",
	Long:  `vrfdkg runs a randomness beacon contract whose members share a key through a commit based DKG`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer goroutine.DumpStack(false)
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("Fatal error occurred. Program will exit")
		os.Exit(1)
	}
}

func init() {
	// folders
	rootCmd.PersistentFlags().StringP("rootdir", "r", "nodedata", "Folder for all data of one node")

	// log
	rootCmd.PersistentFlags().BoolP("log-stdout", "s", true, "Whether the log will be printed to stdout")
	rootCmd.PersistentFlags().BoolP("log-file", "f", false, "Whether the log will be printed to file")
	rootCmd.PersistentFlags().StringP("log-level", "v", "info", "Logging verbosity, possible values:[panic, fatal, error, warn, info, debug, trace]")
	rootCmd.PersistentFlags().BoolP("log-line-number", "n", false, "Whether the log will contain line number")
	rootCmd.PersistentFlags().BoolP("multifile_by_level", "m", false, "Split log files by level")

	_ = viper.BindPFlag("rootdir", rootCmd.PersistentFlags().Lookup("rootdir"))
	_ = viper.BindPFlag("log-stdout", rootCmd.PersistentFlags().Lookup("log-stdout"))
	_ = viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log-line-number", rootCmd.PersistentFlags().Lookup("log-line-number"))
	_ = viper.BindPFlag("multifile_by_level", rootCmd.PersistentFlags().Lookup("multifile_by_level"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("db.name", "leveldb")
	viper.SetDefault("db.path", DataDir+"/chain")
	viper.SetDefault("leveldb.cache", 16)
	viper.SetDefault("leveldb.handles", 16)
	viper.SetDefault("chain.contract", "vrfdkg")
	viper.SetDefault("chain.block_interval_ms", 1000)
	viper.SetDefault("rpc.enabled", true)
	viper.SetDefault("rpc.port", "8000")
	viper.SetDefault("websocket.enabled", true)
	viper.SetDefault("websocket.port", "8002")
	viper.SetDefault("cache.rounds", 256)
	viper.SetDefault("monitor.interval_s", 0)
}
