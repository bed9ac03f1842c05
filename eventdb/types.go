// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/tangle-network/lst/lst/events"
)

type RangeType string

const (
	Block RangeType = "block"
	Time  RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType `json:"unit"`
	From uint64    `json:"from"`
	To   uint64    `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter selects events. Empty PoolIDs or Names match everything.
type Filter struct {
	Range   *Range   `json:"range"`
	PoolIDs []uint32 `json:"poolIds"`
	Names   []string `json:"names"`
	Order   Order    `json:"order"` // default asc
	Options *Options `json:"options"`
}

// Event is an engine event as sealed in a block.
type Event struct {
	BlockNumber uint64          `json:"blockNumber"`
	BlockTime   uint64          `json:"blockTime"`
	Index       uint32          `json:"index"`
	PoolID      uint32          `json:"poolId"`
	Name        string          `json:"name"`
	Data        json.RawMessage `json:"data"`
}

// NewEvent records ev as the index-th event of the block.
func NewEvent(blockNumber, blockTime uint64, index uint32, ev events.Event) (*Event, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode %s event", ev.Name())
	}
	return &Event{
		BlockNumber: blockNumber,
		BlockTime:   blockTime,
		Index:       index,
		PoolID:      ev.Pool(),
		Name:        ev.Name(),
		Data:        data,
	}, nil
}
