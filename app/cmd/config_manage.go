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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/annchain/vrfdkg/common/files"
	"github.com/annchain/vrfdkg/common/utilfuncs"
	"github.com/spf13/viper"
)

func configPath(name string) string {
	return files.FixPrefixPath(viper.GetString("rootdir"), filepath.Join(ConfigDir, name))
}

// readConfig merges <rootdir>/config/config.toml, then injected.toml if
// present, then environment overrides.
func readConfig() {
	if p := configPath("config.toml"); files.FileExists(p) {
		mergeLocalConfig(p)
	} else {
		fmt.Println("config file not exist, using defaults:", p)
	}

	// load injected config from deployment tooling if any
	if p := configPath("injected.toml"); files.FileExists(p) {
		mergeLocalConfig(p)
	}

	mergeEnvConfig()
	// print running config in console.
	b, err := json.MarshalIndent(viper.AllSettings(), "", "    ")
	utilfuncs.PanicIfError(err, "dump json")
	fmt.Println(string(b))
}

func mergeEnvConfig() {
	// env override, e.g. VRFDKG_RPC_PORT
	viper.SetEnvPrefix("vrfdkg")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

func mergeLocalConfig(configPath string) {
	absPath, err := filepath.Abs(configPath)
	utilfuncs.PanicIfError(err, fmt.Sprintf("Error on parsing config file path: %s", absPath))

	file, err := os.Open(absPath)
	utilfuncs.PanicIfError(err, fmt.Sprintf("Error on opening config file: %s", absPath))
	defer file.Close()

	viper.SetConfigType("toml")
	err = viper.MergeConfig(file)
	utilfuncs.PanicIfError(err, fmt.Sprintf("Error on reading config file: %s", absPath))
}
