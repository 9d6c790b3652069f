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
package node

import (
	"encoding/json"

	"github.com/annchain/vrfdkg/beacon"
	"github.com/annchain/vrfdkg/types"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

type querier interface {
	Query(msg []byte) ([]byte, error)
}

// RoundCache serves get_round queries for closed rounds from memory. A
// closed round never changes, so entries are never invalidated.
type RoundCache struct {
	next   querier
	cache  *lru.Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewRoundCache(next querier, size int) (*RoundCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &RoundCache{next: next, cache: c}, nil
}

func (r *RoundCache) Query(msg []byte) ([]byte, error) {
	parsed, err := beacon.ParseQueryMsg(msg)
	if err != nil {
		return r.next.Query(msg)
	}
	q, ok := parsed.(*beacon.GetRoundQuery)
	if !ok {
		return r.next.Query(msg)
	}
	if v, ok := r.cache.Get(q.Round); ok {
		r.hits.Inc()
		return v.([]byte), nil
	}
	r.misses.Inc()
	out, err := r.next.Query(msg)
	if err != nil {
		return nil, err
	}
	var round types.DistributedShareData
	if err := json.Unmarshal(out, &round); err != nil {
		logrus.WithError(err).Warn("failed to decode round for caching")
		return out, nil
	}
	if round.IsClosed() {
		r.cache.Add(q.Round, out)
	}
	return out, nil
}

func (r *RoundCache) Name() string {
	return "RoundCache"
}

func (r *RoundCache) GetBenchmarks() map[string]interface{} {
	return map[string]interface{}{
		"size":   r.cache.Len(),
		"hits":   r.hits.Load(),
		"misses": r.misses.Load(),
	}
}
