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
package rpc

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

var requestId atomic.Uint32

func getRequestId() uint32 {
	return requestId.Inc()
}

// ginLogFormatter sends access logs to logrus at trace level instead of stdout.
var ginLogFormatter = func(param gin.LogFormatterParams) string {
	if logrus.GetLevel() < logrus.TraceLevel {
		return ""
	}
	if param.Latency > time.Minute {
		param.Latency = param.Latency - param.Latency%time.Second
	}
	logrus.WithFields(logrus.Fields{
		"status":  param.StatusCode,
		"latency": param.Latency,
		"client":  param.ClientIP,
		"method":  param.Method,
		"path":    param.Path,
		"id":      getRequestId(),
	}).Trace(fmt.Sprintf("gin %s", param.ErrorMessage))
	return ""
}
