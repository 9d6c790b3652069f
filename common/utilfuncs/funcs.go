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
package utilfuncs

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// PanicIfError stops the process when a startup step fails.
func PanicIfError(err error, message string) {
	if err != nil {
		logrus.WithError(err).Error(message)
		fmt.Println("panic: " + message)
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func GetHostName() string {
	// Kubernetes first
	if v, ok := os.LookupEnv("HOSTNAME"); ok {
		return v
	}
	if v, err := os.Hostname(); err == nil {
		return v
	}
	return "NoName"
}
