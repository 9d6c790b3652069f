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
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var ErrConnClosed = errors.New("conn is closed")

// Conn wraps a websocket connection. Writes are serialized since gorilla
// allows one concurrent writer.
type Conn struct {
	Conn *websocket.Conn

	AfterReadFunc   func(messageType int, r io.Reader)
	BeforeCloseFunc func()

	once    sync.Once
	id      string
	writeMu sync.Mutex
	stopCh  chan struct{}
	closed  sync.Once
}

func (c *Conn) Write(p []byte) (n int, err error) {
	select {
	case <-c.stopCh:
		return 0, ErrConnClosed
	default:
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err = c.Conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *Conn) GetID() string {
	c.once.Do(func() {
		c.id = uuid.New().String()
	})
	return c.id
}

// Listen keeps reading from the connection until it fails or is closed.
func (c *Conn) Listen() {
	c.Conn.SetCloseHandler(func(code int, text string) error {
		message := websocket.FormatCloseMessage(code, "")
		c.writeMu.Lock()
		c.Conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))
		c.writeMu.Unlock()
		return nil
	})
	defer func() {
		if err := c.Close(); err != nil {
			logrus.WithError(err).Trace("close ws conn")
		}
	}()

	for {
		select {
		case <-c.stopCh:
			return
		default:
		}
		messageType, r, err := c.Conn.NextReader()
		if err != nil {
			logrus.WithError(err).WithField("id", c.GetID()).Debug("ws conn read ended")
			return
		}
		if c.AfterReadFunc != nil {
			c.AfterReadFunc(messageType, r)
		}
	}
}

func (c *Conn) Close() error {
	err := fmt.Errorf("conn %s already closed", c.GetID())
	c.closed.Do(func() {
		if c.BeforeCloseFunc != nil {
			c.BeforeCloseFunc()
		}
		close(c.stopCh)
		err = c.Conn.Close()
	})
	return err
}

func NewConn(conn *websocket.Conn) *Conn {
	return &Conn{
		Conn:   conn,
		stopCh: make(chan struct{}),
	}
}

// event2Cons tracks which connections subscribed to which event.
type event2Cons struct {
	conns map[string]map[string]*Conn
	mu    sync.RWMutex
}

func NewEvent2Cons() *event2Cons {
	return &event2Cons{
		conns: make(map[string]map[string]*Conn),
	}
}

func (e *event2Cons) Add(eventType string, conn *Conn) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	conns, ok := e.conns[eventType]
	if !ok {
		conns = make(map[string]*Conn)
		e.conns[eventType] = conns
	}
	id := conn.GetID()
	if _, ok := conns[id]; ok {
		return fmt.Errorf("conn %s already subscribed to %s", id, eventType)
	}
	conns[id] = conn
	return nil
}

func (e *event2Cons) Remove(eventType string, conn *Conn) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	conns, ok := e.conns[eventType]
	if !ok {
		return fmt.Errorf("no connection with event type %s", eventType)
	}
	id := conn.GetID()
	if _, ok := conns[id]; !ok {
		return fmt.Errorf("no connection with id %s", id)
	}
	delete(conns, id)
	if len(conns) == 0 {
		delete(e.conns, eventType)
	}
	return nil
}

// RemoveAll drops the connection from every event it subscribed to.
func (e *event2Cons) RemoveAll(conn *Conn) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := conn.GetID()
	for eventType, conns := range e.conns {
		delete(conns, id)
		if len(conns) == 0 {
			delete(e.conns, eventType)
		}
	}
}

func (e *event2Cons) Get(eventType string) ([]*Conn, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	conns, ok := e.conns[eventType]
	if !ok {
		return nil, fmt.Errorf("no connection with event type %s", eventType)
	}
	ret := make([]*Conn, 0, len(conns))
	for _, c := range conns {
		ret = append(ret, c)
	}
	return ret, nil
}

func (e *event2Cons) GetWithID(eventType string, id string) (*Conn, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if c, ok := e.conns[eventType][id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("no connection with event type %s id %s", eventType, id)
}
