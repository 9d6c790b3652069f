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
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/annchain/vrfdkg/eventbus"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, url string) *websocket.Conn {
	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+serverDefaultWSPath, nil)
	require.NoError(t, err)
	return c
}

func subscribe(t *testing.T, c *websocket.Conn, msg RegisterMessage) RegisterReply {
	require.NoError(t, c.WriteJSON(msg))
	var reply RegisterReply
	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, c.ReadJSON(&reply))
	return reply
}

func TestEvent2Conns(t *testing.T) {
	e2c := NewEvent2Cons()
	var conns []*Conn
	for i := 0; i < 10; i++ {
		con := NewConn(&websocket.Conn{})
		conns = append(conns, con)
		require.NoError(t, e2c.Add("round_finalized", con))
	}
	require.Error(t, e2c.Add("round_finalized", conns[0]))
	require.NoError(t, e2c.Add("phase_changed", conns[0]))

	got, err := e2c.Get("round_finalized")
	require.NoError(t, err)
	require.Len(t, got, 10)

	require.NoError(t, e2c.Remove("round_finalized", conns[1]))
	require.Error(t, e2c.Remove("round_finalized", conns[1]))
	got, _ = e2c.Get("round_finalized")
	require.Len(t, got, 9)

	c, err := e2c.GetWithID("phase_changed", conns[0].GetID())
	require.NoError(t, err)
	require.Equal(t, conns[0], c)

	e2c.RemoveAll(conns[0])
	_, err = e2c.Get("phase_changed")
	require.Error(t, err)
	got, _ = e2c.Get("round_finalized")
	require.Len(t, got, 8)
}

func TestEvent2Message(t *testing.T) {
	msg, err := event2Message(&eventbus.ContractEvent{
		Type:       eventbus.EventRoundFinalized,
		Name:       "round_finalized",
		TxID:       "tx",
		Height:     9,
		Attributes: map[string]string{"round": "3", "randomness": "ab"},
	})
	require.NoError(t, err)
	var data PushData
	require.NoError(t, json.Unmarshal([]byte(msg), &data))
	require.Equal(t, "round_finalized", data.Type)
	require.NotNil(t, data.Round)
	require.Equal(t, uint64(3), *data.Round)
	require.Equal(t, "ab", data.Attributes["randomness"])

	msg, err = event2Message(&eventbus.ContractEvent{Name: "phase_changed"})
	require.NoError(t, err)
	require.Contains(t, msg, `"attributes":{}`)
	require.NotContains(t, msg, "round")
}

func TestSubscribeAndPush(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(":0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	go s.WatchEvents()
	defer s.Stop()

	bad := dial(t, ts.URL)
	defer bad.Close()
	reply := subscribe(t, bad, RegisterMessage{Event: "new_unit"})
	require.Contains(t, reply.Error, "unknown event")

	c := dial(t, ts.URL)
	defer c.Close()
	reply = subscribe(t, c, RegisterMessage{Events: []string{"round_finalized", "phase_changed"}})
	require.Empty(t, reply.Error)
	require.Equal(t, []string{"round_finalized", "phase_changed"}, reply.Subscribed)

	s.HandleEvent(&eventbus.ContractEvent{Type: eventbus.EventRoundRequested, Name: "round_requested"})
	s.HandleEvent(&eventbus.ContractEvent{
		Type:       eventbus.EventRoundFinalized,
		Name:       "round_finalized",
		Height:     4,
		Attributes: map[string]string{"round": "1"},
	})

	var data PushData
	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, c.ReadJSON(&data))
	require.Equal(t, "round_finalized", data.Type)
	require.Equal(t, uint64(4), data.Height)
}

func TestPushRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(":0")
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", serverDefaultPushPath, strings.NewReader(`{"event":"round_finalized","message":"x"}`))
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, 401, w.Code)
}
