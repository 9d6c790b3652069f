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
	"fmt"
	"time"

	"github.com/annchain/vrfdkg/common/goroutine"
	"github.com/sirupsen/logrus"
)

type blockAdvancer interface {
	AdvanceBlocks(n uint64) uint64
}

// BlockTicker advances the block height on a fixed interval so height based
// deadlines move even when no calls arrive.
type BlockTicker struct {
	chain    blockAdvancer
	interval time.Duration
	quit     chan struct{}
	done     chan struct{}
}

func NewBlockTicker(chain blockAdvancer, interval time.Duration) *BlockTicker {
	return &BlockTicker{
		chain:    chain,
		interval: interval,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (b *BlockTicker) Start() {
	goroutine.New(func() {
		defer close(b.done)
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				h := b.chain.AdvanceBlocks(1)
				logrus.WithField("height", h).Trace("block advanced")
			case <-b.quit:
				return
			}
		}
	})
}

func (b *BlockTicker) Stop() {
	close(b.quit)
	<-b.done
}

func (b *BlockTicker) Name() string {
	return fmt.Sprintf("BlockTicker every %s", b.interval)
}
