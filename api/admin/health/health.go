// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"context"
	"sync"
	"time"

	"github.com/tangle-network/lst/runtime"
)

type BlockIngestion struct {
	Number    uint64     `json:"number"`
	Timestamp *time.Time `json:"timestamp"`
}

type Status struct {
	Healthy        bool            `json:"healthy"`
	BlockIngestion *BlockIngestion `json:"blockIngestion"`
}

// Health tracks the sealing of blocks.
type Health struct {
	lock         sync.RWMutex
	newBestBlock time.Time
	bestBlock    uint64
	// zero when blocks are sealed on demand
	sealInterval time.Duration
}

func New(sealInterval time.Duration) *Health {
	return &Health{sealInterval: sealInterval}
}

const delayBuffer = 5 * time.Second

// Run follows the blocks sealed by rt until ctx is done.
func (h *Health) Run(ctx context.Context, rt *runtime.Runtime) {
	ch := make(chan *runtime.Block, 1)
	sub := rt.SubscribeBlocks(ch)
	defer sub.Unsubscribe()

	h.NewBestBlock(rt.BestBlock().Number)
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Err():
			return
		case blk := <-ch:
			h.NewBestBlock(blk.Number)
		}
	}
}

// Status reports the node unhealthy when no block was sealed for longer
// than maxTimeBetweenBlocks, which defaults to the seal interval.
func (h *Health) Status(maxTimeBetweenBlocks time.Duration) *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	if maxTimeBetweenBlocks == 0 {
		maxTimeBetweenBlocks = h.sealInterval
	}
	healthy := !h.newBestBlock.IsZero()
	if healthy && maxTimeBetweenBlocks > 0 {
		healthy = time.Since(h.newBestBlock) <= maxTimeBetweenBlocks+delayBuffer
	}

	ingested := h.newBestBlock
	return &Status{
		Healthy: healthy,
		BlockIngestion: &BlockIngestion{
			Number:    h.bestBlock,
			Timestamp: &ingested,
		},
	}
}

func (h *Health) NewBestBlock(number uint64) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.newBestBlock = time.Now()
	h.bestBlock = number
}
