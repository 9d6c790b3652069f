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
package wserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/annchain/vrfdkg/eventbus"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type websocketHandler struct {
	// upgrader is used to upgrade request.
	upgrader *websocket.Upgrader

	event2Cons *event2Cons
}

// RegisterMessage subscribes a connection to one event, or to several.
type RegisterMessage struct {
	Event  string   `json:"event"`
	Events []string `json:"events"`
}

// RegisterReply acknowledges a RegisterMessage.
type RegisterReply struct {
	Subscribed []string `json:"subscribed,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func (rm *RegisterMessage) names() []string {
	names := rm.Events
	if rm.Event != "" {
		names = append([]string{rm.Event}, names...)
	}
	return names
}

func (wh *websocketHandler) Handle(ctx *gin.Context) {
	wh.ServeHTTP(ctx.Writer, ctx.Request)
}

func (wh *websocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := wh.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Debug("ws upgrade failed")
		return
	}

	conn := NewConn(wsConn)
	conn.AfterReadFunc = func(messageType int, r io.Reader) {
		var rm RegisterMessage
		var reply RegisterReply
		if err := json.NewDecoder(r).Decode(&rm); err != nil {
			logrus.WithError(err).Debug("Failed to serve request")
			reply.Error = ErrRequestIllegal.Error()
		} else {
			reply = wh.subscribe(conn, rm.names())
		}
		bs, _ := json.Marshal(reply)
		if _, err := conn.Write(bs); err != nil {
			logrus.WithError(err).Debug("failed to reply to ws subscription")
		}
	}
	conn.BeforeCloseFunc = func() {
		wh.event2Cons.RemoveAll(conn)
	}
	conn.Listen()
}

func (wh *websocketHandler) subscribe(conn *Conn, names []string) RegisterReply {
	var reply RegisterReply
	if len(names) == 0 {
		reply.Error = ErrRequestIllegal.Error()
		return reply
	}
	for _, name := range names {
		if eventbus.ParseEventType(name) == eventbus.EventUnknown {
			reply.Error = fmt.Sprintf("unknown event %q, expected one of %s",
				name, strings.Join(eventbus.EventTypeNames(), ", "))
			return reply
		}
	}
	for _, name := range names {
		if err := wh.event2Cons.Add(name, conn); err != nil {
			logrus.WithError(err).Trace("duplicate subscription")
		}
		reply.Subscribed = append(reply.Subscribed, name)
	}
	return reply
}

var ErrRequestIllegal = errors.New("request data illegal")

type pushHandler struct {
	// authFunc defines to authorize request. The request will proceed only
	// when it returns true.
	authFunc func(r *http.Request) bool

	event2Cons *event2Cons
}

func (s *pushHandler) Handle(ctx *gin.Context) {
	s.ServeHTTP(ctx.Writer, ctx.Request)
}

func (s *pushHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.authFunc == nil || !s.authFunc(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var pm PushMessage
	if err := json.NewDecoder(r.Body).Decode(&pm); err != nil || pm.Event == "" || pm.Message == "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(ErrRequestIllegal.Error()))
		return
	}

	cnt, err := s.push(pm.Event, pm.Message)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		return
	}
	fmt.Fprintf(w, "message sent to %d clients", cnt)
}

// push writes message to every subscriber of event and returns how many got it.
func (s *pushHandler) push(event, message string) (int, error) {
	if event == "" || message == "" {
		return 0, errors.New("parameters(event, message) can't be empty")
	}
	conns, err := s.event2Cons.Get(event)
	if err != nil {
		return 0, nil
	}
	cnt := 0
	for _, c := range conns {
		if _, err := c.Write([]byte(message)); err != nil {
			logrus.WithError(err).WithField("id", c.GetID()).Debug("dropping ws subscriber")
			s.event2Cons.Remove(event, c)
			continue
		}
		cnt++
	}
	return cnt, nil
}

type PushMessage struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}
