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
	"strconv"

	"github.com/annchain/vrfdkg/eventbus"
)

// PushData is the frame sent to subscribers.
type PushData struct {
	Type       string            `json:"type"`
	TxID       string            `json:"tx_id"`
	Height     uint64            `json:"height"`
	Round      *uint64           `json:"round,omitempty"`
	Attributes map[string]string `json:"attributes"`
}

func event2PushData(ev *eventbus.ContractEvent) PushData {
	data := PushData{
		Type:       ev.Name,
		TxID:       ev.TxID,
		Height:     ev.Height,
		Attributes: ev.Attributes,
	}
	if v, ok := ev.Attributes["round"]; ok {
		if round, err := strconv.ParseUint(v, 10, 64); err == nil {
			data.Round = &round
		}
	}
	if data.Attributes == nil {
		data.Attributes = map[string]string{}
	}
	return data
}

func event2Message(ev *eventbus.ContractEvent) (string, error) {
	bs, err := json.Marshal(event2PushData(ev))
	if err != nil {
		return "", err
	}
	return string(bs), nil
}
