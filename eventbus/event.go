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
package eventbus

import (
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

type EventType uint8

const (
	EventUnknown EventType = iota
	EventRoundRequested
	EventSignatureAccepted
	EventRoundFinalized
	EventPhaseChanged
	EventMembersUpdated
)

var eventTypeNames = map[EventType]string{
	EventRoundRequested:    "round_requested",
	EventSignatureAccepted: "signature_accepted",
	EventRoundFinalized:    "round_finalized",
	EventPhaseChanged:      "phase_changed",
	EventMembersUpdated:    "members_updated",
}

func (t EventType) String() string {
	if s, ok := eventTypeNames[t]; ok {
		return s
	}
	return strconv.Itoa(int(t))
}

// ParseEventType maps an event name emitted by the contract to its type.
func ParseEventType(name string) EventType {
	for t, n := range eventTypeNames {
		if n == name {
			return t
		}
	}
	return EventUnknown
}

func EventTypeNames() []string {
	names := make([]string, 0, len(eventTypeNames))
	for t := EventRoundRequested; t <= EventMembersUpdated; t++ {
		names = append(names, eventTypeNames[t])
	}
	return names
}

type Event interface {
	GetEventType() EventType
}

// ContractEvent is an event emitted by a committed contract call.
type ContractEvent struct {
	Type       EventType         `json:"-"`
	Name       string            `json:"type"`
	TxID       string            `json:"tx_id"`
	Height     uint64            `json:"height"`
	Attributes map[string]string `json:"attributes"`
}

func (e *ContractEvent) GetEventType() EventType {
	return e.Type
}

type EventHandler interface {
	HandlerDescription(EventType) string
	HandleEvent(Event)
	Name() string
}

type EventHandlerRegisterInfo struct {
	Type    EventType
	Name    string
	Handler EventHandler
}

type DefaultEventBus struct {
	ID         int
	knownNames map[EventType]string
	listeners  map[EventType][]EventHandler
	inited     bool       // listeners are read without locking once built
	mu         sync.Mutex // use only during initialization
}

func (e *DefaultEventBus) InitDefault() {
	e.listeners = make(map[EventType][]EventHandler)
	e.knownNames = make(map[EventType]string)
}

func (e *DefaultEventBus) ListenTo(regInfo EventHandlerRegisterInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inited {
		panic("bad code. register listeners before building the eventbus")
	}
	e.listeners[regInfo.Type] = append(e.listeners[regInfo.Type], regInfo.Handler)
	e.knownNames[regInfo.Type] = regInfo.Name
}

// ListenToAll registers the handler for every contract event type.
func (e *DefaultEventBus) ListenToAll(handler EventHandler) {
	for t := EventRoundRequested; t <= EventMembersUpdated; t++ {
		e.ListenTo(EventHandlerRegisterInfo{Type: t, Name: t.String(), Handler: handler})
	}
}

// Build marks the bus ready: all modules are registered and prepared to
// receive events.
func (e *DefaultEventBus) Build() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inited = true
}

func (e *DefaultEventBus) Route(ev Event) {
	if !e.inited {
		panic("bad code. build eventbus before routing")
	}
	name, ok := e.knownNames[ev.GetEventType()]
	if !ok {
		name = ev.GetEventType().String()
	}
	logrus.WithField("me", e.ID).WithField("type", name).WithField("v", ev).Trace("router received event")
	handlers, ok := e.listeners[ev.GetEventType()]
	if !ok {
		logrus.WithField("me", e.ID).WithField("type", name).Debug("no event handler to handle event type")
		return
	}
	for _, handler := range handlers {
		logrus.WithFields(logrus.Fields{
			"me":      e.ID,
			"handler": handler.Name(),
			"desc":    handler.HandlerDescription(ev.GetEventType()),
		}).Trace("handling")
		handler.HandleEvent(ev)
	}
}
