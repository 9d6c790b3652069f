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
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (rpc *RpcController) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.LoggerWithFormatter(ginLogFormatter), gin.Recovery())
	router.GET("/", rpc.writeListOfEndpoints)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	router.GET("status", rpc.Status)

	// call API
	router.POST("instantiate", rpc.Instantiate)
	router.POST("execute", rpc.Execute)

	// query API
	router.GET("query", rpc.Query)
	router.POST("query", rpc.Query)
	router.GET("balance", rpc.QueryBalance)

	if rpc.Gatherer != nil {
		router.GET("metrics", gin.WrapH(promhttp.HandlerFor(rpc.Gatherer, promhttp.HandlerOpts{})))
	}
	return router
}

// writes a list of available rpc endpoints as an html page
func (rpc *RpcController) writeListOfEndpoints(c *gin.Context) {
	routerMap := map[string]string{
		"status":  "",
		"metrics": "",
		// query API
		"query":   "msg",
		"balance": "address, denom",
	}
	noArgNames := []string{}
	argNames := []string{}
	for name, args := range routerMap {
		if len(args) == 0 {
			noArgNames = append(noArgNames, name)
		} else {
			argNames = append(argNames, name)
		}
	}
	sort.Strings(noArgNames)
	sort.Strings(argNames)
	buf := new(bytes.Buffer)
	buf.WriteString("<html><body>")
	buf.WriteString("<br>Available endpoints:<br>")

	for _, name := range noArgNames {
		link := fmt.Sprintf("http://%s/%s", c.Request.Host, name)
		buf.WriteString(fmt.Sprintf("<a href=\"%s\">%s</a></br>", link, link))
	}

	buf.WriteString("<br>Endpoints that require arguments:<br>")
	for _, name := range argNames {
		link := fmt.Sprintf("http://%s/%s?", c.Request.Host, name)
		args := strings.Split(routerMap[name], ",")
		for i, arg := range args {
			arg = strings.TrimSpace(arg)
			link += arg + "=_"
			if i < len(args)-1 {
				link += "&"
			}
		}
		buf.WriteString(fmt.Sprintf("<a href=\"%s\">%s</a></br>", link, link))
	}
	buf.WriteString("<br>POST endpoints (json body {sender, funds, msg}):<br>instantiate</br>execute</br>")
	buf.WriteString("</body></html>")
	c.Data(http.StatusOK, "text/html", buf.Bytes())
}
