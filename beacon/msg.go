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
package beacon

import (
	"encoding/json"
	"fmt"

	"github.com/annchain/vrfdkg/types"
)

type InstantiateMsg struct {
	Members    []types.MemberMsg `json:"members" yaml:"members"`
	Threshold  uint16            `json:"threshold" yaml:"threshold"`
	Dealer     *uint16           `json:"dealer,omitempty" yaml:"dealer,omitempty"`
	Fee        *types.Coin       `json:"fee,omitempty" yaml:"fee,omitempty"`
	DkgTimeout uint64            `json:"dkg_timeout,omitempty" yaml:"dkg_timeout,omitempty"`
}

// ExecuteMsg is one of the execute variants below. On the wire it is an
// object with a single key naming the variant.
type ExecuteMsg interface {
	MsgName() string
	isExecute()
}

type ShareDealerMsg struct {
	Share types.DealerShare `json:"share"`
}

type ShareRowMsg struct {
	Share types.RowShare `json:"share"`
}

type UpdateShareSigMsg struct {
	Round uint64 `json:"round"`
	Sig   []byte `json:"sig"`
}

type RequestRandomMsg struct {
	Input []byte `json:"input"`
}

type UpdateThresholdMsg struct {
	Threshold uint16 `json:"threshold"`
}

type UpdateFeesMsg struct {
	Fee *types.Coin `json:"fee"`
}

type UpdateMembersMsg struct {
	Members []types.MemberMsg `json:"members"`
}

type RemoveMemberMsg struct {
	Address string `json:"address"`
}

type RestartDkgMsg struct{}

func (ShareDealerMsg) MsgName() string     { return "share_dealer" }
func (ShareRowMsg) MsgName() string        { return "share_row" }
func (UpdateShareSigMsg) MsgName() string  { return "update_share_sig" }
func (RequestRandomMsg) MsgName() string   { return "request_random" }
func (UpdateThresholdMsg) MsgName() string { return "update_threshold" }
func (UpdateFeesMsg) MsgName() string      { return "update_fees" }
func (UpdateMembersMsg) MsgName() string   { return "update_members" }
func (RemoveMemberMsg) MsgName() string    { return "remove_member" }
func (RestartDkgMsg) MsgName() string      { return "restart_dkg" }

func (ShareDealerMsg) isExecute()     {}
func (ShareRowMsg) isExecute()        {}
func (UpdateShareSigMsg) isExecute()  {}
func (RequestRandomMsg) isExecute()   {}
func (UpdateThresholdMsg) isExecute() {}
func (UpdateFeesMsg) isExecute()      {}
func (UpdateMembersMsg) isExecute()   {}
func (RemoveMemberMsg) isExecute()    {}
func (RestartDkgMsg) isExecute()      {}

var executeVariants = map[string]func() ExecuteMsg{
	"share_dealer":     func() ExecuteMsg { return &ShareDealerMsg{} },
	"share_row":        func() ExecuteMsg { return &ShareRowMsg{} },
	"update_share_sig": func() ExecuteMsg { return &UpdateShareSigMsg{} },
	"request_random":   func() ExecuteMsg { return &RequestRandomMsg{} },
	"update_threshold": func() ExecuteMsg { return &UpdateThresholdMsg{} },
	"update_fees":      func() ExecuteMsg { return &UpdateFeesMsg{} },
	"update_members":   func() ExecuteMsg { return &UpdateMembersMsg{} },
	"remove_member":    func() ExecuteMsg { return &RemoveMemberMsg{} },
	"restart_dkg":      func() ExecuteMsg { return &RestartDkgMsg{} },
}

// QueryMsg is one of the query variants below, tagged the same way as
// ExecuteMsg.
type QueryMsg interface {
	MsgName() string
	isQuery()
}

type ContractInfoQuery struct{}

type GetRoundQuery struct {
	Round uint64 `json:"round"`
}

type GetMemberQuery struct {
	Address string `json:"address"`
}

type GetMembersQuery struct {
	Limit  *uint8  `json:"limit,omitempty"`
	Offset *string `json:"offset,omitempty"`
	Order  *string `json:"order,omitempty"`
}

type GetDealersQuery struct{}

type LatestRoundQuery struct{}

type GetRoundsQuery struct {
	Limit  *uint8  `json:"limit,omitempty"`
	Offset *uint64 `json:"offset,omitempty"`
	Order  *string `json:"order,omitempty"`
}

type VerifyRoundQuery struct {
	Round uint64 `json:"round"`
}

func (ContractInfoQuery) MsgName() string { return "contract_info" }
func (GetRoundQuery) MsgName() string     { return "get_round" }
func (GetMemberQuery) MsgName() string    { return "get_member" }
func (GetMembersQuery) MsgName() string   { return "get_members" }
func (GetDealersQuery) MsgName() string   { return "get_dealers" }
func (LatestRoundQuery) MsgName() string  { return "latest_round" }
func (GetRoundsQuery) MsgName() string    { return "get_rounds" }
func (VerifyRoundQuery) MsgName() string  { return "verify_round" }

func (ContractInfoQuery) isQuery() {}
func (GetRoundQuery) isQuery()     {}
func (GetMemberQuery) isQuery()    {}
func (GetMembersQuery) isQuery()   {}
func (GetDealersQuery) isQuery()   {}
func (LatestRoundQuery) isQuery()  {}
func (GetRoundsQuery) isQuery()    {}
func (VerifyRoundQuery) isQuery()  {}

var queryVariants = map[string]func() QueryMsg{
	"contract_info": func() QueryMsg { return &ContractInfoQuery{} },
	"get_round":     func() QueryMsg { return &GetRoundQuery{} },
	"get_member":    func() QueryMsg { return &GetMemberQuery{} },
	"get_members":   func() QueryMsg { return &GetMembersQuery{} },
	"get_dealers":   func() QueryMsg { return &GetDealersQuery{} },
	"latest_round":  func() QueryMsg { return &LatestRoundQuery{} },
	"get_rounds":    func() QueryMsg { return &GetRoundsQuery{} },
	"verify_round":  func() QueryMsg { return &VerifyRoundQuery{} },
}

func decodeEnvelope(b []byte) (string, json.RawMessage, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(b, &env); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidMsg, err)
	}
	if len(env) != 1 {
		return "", nil, fmt.Errorf("%w: expected exactly one variant, got %d", ErrInvalidMsg, len(env))
	}
	for name, raw := range env {
		return name, raw, nil
	}
	return "", nil, nil
}

func ParseExecuteMsg(b []byte) (ExecuteMsg, error) {
	name, raw, err := decodeEnvelope(b)
	if err != nil {
		return nil, err
	}
	ctor, ok := executeVariants[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown execute variant %q", ErrInvalidMsg, name)
	}
	msg := ctor()
	if err := json.Unmarshal(raw, msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMsg, name, err)
	}
	return msg, nil
}

func ParseQueryMsg(b []byte) (QueryMsg, error) {
	name, raw, err := decodeEnvelope(b)
	if err != nil {
		return nil, err
	}
	ctor, ok := queryVariants[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown query variant %q", ErrInvalidMsg, name)
	}
	msg := ctor()
	if err := json.Unmarshal(raw, msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMsg, name, err)
	}
	return msg, nil
}

// EncodeMsg wraps an execute or query variant in its tagged envelope.
func EncodeMsg(msg interface{ MsgName() string }) ([]byte, error) {
	return json.Marshal(map[string]interface{}{msg.MsgName(): msg})
}

func MustEncodeMsg(msg interface{ MsgName() string }) []byte {
	b, err := EncodeMsg(msg)
	if err != nil {
		panic(err)
	}
	return b
}
