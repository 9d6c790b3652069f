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
	"errors"
	"fmt"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidDealer    = errors.New("invalid dealer")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrNoMember         = errors.New("no member")
	ErrNoBeacon         = errors.New("no beacon")
	ErrNoFundsSent      = errors.New("no funds sent")
	ErrLessFundsSent    = errors.New("less funds sent")
	ErrPendingRound     = errors.New("pending round")

	ErrMemberRemoved      = errors.New("member removed")
	ErrInvalidDealerShare = errors.New("invalid dealer share")
	ErrInvalidRowShare    = errors.New("invalid row share")
	ErrStaleRound         = errors.New("stale round")
	ErrRoundClosed        = errors.New("round closed")
	ErrInvalidMsg         = errors.New("invalid message")
)

type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized: %s", e.Reason)
}

func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

func unauthorized(format string, args ...interface{}) error {
	return &UnauthorizedError{Reason: fmt.Sprintf(format, args...)}
}

// MemberRemovedError rejects participation of a soft-deleted member.
type MemberRemovedError struct {
	Address string
}

func (e *MemberRemovedError) Error() string {
	return fmt.Sprintf("unauthorized: member %s removed", e.Address)
}

func (e *MemberRemovedError) Is(target error) bool {
	return target == ErrUnauthorized || target == ErrMemberRemoved
}

type NoMemberError struct {
	Address string
}

func (e *NoMemberError) Error() string {
	return fmt.Sprintf("no member %s", e.Address)
}

func (e *NoMemberError) Is(target error) bool {
	return target == ErrNoMember
}

type NoBeaconError struct {
	Round uint64
}

func (e *NoBeaconError) Error() string {
	return fmt.Sprintf("no beacon for round %d", e.Round)
}

func (e *NoBeaconError) Is(target error) bool {
	return target == ErrNoBeacon
}

type PendingRoundError struct {
	Round uint64
}

func (e *PendingRoundError) Error() string {
	return fmt.Sprintf("round %d is still pending", e.Round)
}

func (e *PendingRoundError) Is(target error) bool {
	return target == ErrPendingRound
}

type NoFundsSentError struct {
	Denom string
}

func (e *NoFundsSentError) Error() string {
	return fmt.Sprintf("no funds sent, expected %s", e.Denom)
}

func (e *NoFundsSentError) Is(target error) bool {
	return target == ErrNoFundsSent
}

type LessFundsSentError struct {
	Denom    string
	Expected uint64
	Got      uint64
}

func (e *LessFundsSentError) Error() string {
	return fmt.Sprintf("less funds sent: expected %d%s, got %d%s", e.Expected, e.Denom, e.Got, e.Denom)
}

func (e *LessFundsSentError) Is(target error) bool {
	return target == ErrLessFundsSent
}

type StaleRoundError struct {
	Round      uint64
	RoundEpoch uint64
	Epoch      uint64
}

func (e *StaleRoundError) Error() string {
	return fmt.Sprintf("round %d belongs to epoch %d, current epoch is %d", e.Round, e.RoundEpoch, e.Epoch)
}

func (e *StaleRoundError) Is(target error) bool {
	return target == ErrStaleRound
}

type RoundClosedError struct {
	Round uint64
}

func (e *RoundClosedError) Error() string {
	return fmt.Sprintf("round %d no longer accepts signatures", e.Round)
}

func (e *RoundClosedError) Is(target error) bool {
	return target == ErrRoundClosed
}

func invalidDealer(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidDealer, fmt.Sprintf(format, args...))
}
