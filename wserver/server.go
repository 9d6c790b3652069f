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
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/annchain/vrfdkg/eventbus"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	serverDefaultWSPath   = "/ws"
	serverDefaultPushPath = "/push"

	defaultQueueSize = 1024
	writeTimeout     = 5 * time.Second
)

var defaultUpgrader = &websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

// Server pushes contract events to websocket subscribers.
type Server struct {
	// Address for server to listen on
	Addr string

	// Path for websocket request, default "/ws".
	WSPath string

	// Path for push message, default "/push".
	PushPath string

	// PushAuth authorizes manual push requests. Push is refused while nil.
	PushAuth func(r *http.Request) bool

	events chan *eventbus.ContractEvent
	wh     *websocketHandler
	ph     *pushHandler
	engine *gin.Engine
	server *http.Server
	quit   chan struct{}
	done   chan struct{}
}

// NewServer creates a new Server.
func NewServer(addr string) *Server {
	s := &Server{
		Addr:     addr,
		WSPath:   serverDefaultWSPath,
		PushPath: serverDefaultPushPath,
		events:   make(chan *eventbus.ContractEvent, defaultQueueSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	e2c := NewEvent2Cons()
	s.wh = &websocketHandler{
		upgrader:   defaultUpgrader,
		event2Cons: e2c,
	}
	s.ph = &pushHandler{
		event2Cons: e2c,
		authFunc: func(r *http.Request) bool {
			return s.PushAuth != nil && s.PushAuth(r)
		},
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET(s.WSPath, s.wh.Handle)
	engine.POST(s.PushPath, s.ph.Handle)
	s.engine = engine

	s.server = &http.Server{
		Addr:    s.Addr,
		Handler: engine,
	}
	return s
}

// Handler exposes the routes, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve listens on the TCP network address and handles websocket requests.
func (s *Server) Serve() {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Error("websocket server")
	}
}

// Push sends message to the subscribers of event.
func (s *Server) Push(event, message string) (int, error) {
	return s.ph.push(event, message)
}

func (s *Server) Start() {
	logrus.WithField("addr", s.Addr).Info("websocket server listening")
	go s.Serve()
	go s.WatchEvents()
}

func (s *Server) Stop() {
	close(s.quit)
	<-s.done
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Info("server Shutdown")
	}
	logrus.Info("websocket server stopped")
}

func (s *Server) Name() string {
	return fmt.Sprintf("websocket Server at %s", s.Addr)
}

func (s *Server) HandlerDescription(t eventbus.EventType) string {
	return fmt.Sprintf("push %s to websocket subscribers", t)
}

// HandleEvent queues the event for delivery. It never blocks the caller:
// when the queue is full the event is dropped.
func (s *Server) HandleEvent(ev eventbus.Event) {
	ce, ok := ev.(*eventbus.ContractEvent)
	if !ok {
		return
	}
	select {
	case s.events <- ce:
	default:
		logrus.WithField("type", ce.Name).Warn("websocket queue full, event dropped")
	}
}

// WatchEvents delivers queued events until Stop is called.
func (s *Server) WatchEvents() {
	defer close(s.done)
	for {
		select {
		case ev := <-s.events:
			s.publish(ev)
		case <-s.quit:
			return
		}
	}
}

func (s *Server) publish(ev *eventbus.ContractEvent) {
	msg, err := event2Message(ev)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal ws message")
		return
	}
	cnt, err := s.Push(ev.Name, msg)
	if err != nil {
		logrus.WithError(err).Warn("push to ws")
		return
	}
	logrus.WithFields(logrus.Fields{
		"type":    ev.Name,
		"clients": cnt,
	}).Trace("pushed to ws")
}
