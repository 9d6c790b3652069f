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
	"github.com/annchain/vrfdkg/common/files"
	"github.com/annchain/vrfdkg/common/utilfuncs"
	"github.com/annchain/vrfdkg/mylog"
	"github.com/spf13/viper"
)

var (
	LogDir    = "log"
	DataDir   = "data"
	ConfigDir = "config"
)

// initLogger uses viper to get the log path and level. It should be called by all other commands
func initLogger() {
	mylog.Init(mylog.Options{
		Level:      viper.GetString("log-level"),
		Stdout:     viper.GetBool("log-stdout"),
		File:       viper.GetBool("log-file"),
		Dir:        files.FixPrefixPath(viper.GetString("rootdir"), LogDir),
		ByLevel:    viper.GetBool("multifile_by_level"),
		LineNumber: viper.GetBool("log-line-number"),
	})
}

func ensureFolder() {
	root := viper.GetString("rootdir")
	err := files.MkDirIfNotExists(root)
	utilfuncs.PanicIfError(err, "creating root folder")

	for _, folder := range []string{LogDir, DataDir, ConfigDir} {
		err = files.MkDirIfNotExists(files.FixPrefixPath(root, folder))
		utilfuncs.PanicIfError(err, "creating folder: "+folder)
	}
}
