// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"time"

	"github.com/tangle-network/lst/log"
	"github.com/tangle-network/lst/runtime"
)

var logger = log.WithContext("pkg", "lstd")

// sealer turns pending operations into blocks, either on a fixed interval
// or as soon as an operation is applied.
type sealer struct {
	rt       *runtime.Runtime
	interval time.Duration
	onDemand bool
	pending  chan struct{}
}

func newSealer(rt *runtime.Runtime, interval time.Duration, onDemand bool) *sealer {
	return &sealer{
		rt:       rt,
		interval: interval,
		onDemand: onDemand,
		pending:  make(chan struct{}, 1),
	}
}

// Notify signals an applied operation. It never blocks.
func (s *sealer) Notify() {
	select {
	case s.pending <- struct{}{}:
	default:
	}
}

// Run seals blocks until ctx is done. Only a failed seal is returned.
func (s *sealer) Run(ctx context.Context) error {
	if s.onDemand {
		logger.Info("prepared to seal blocks on demand")
	} else {
		logger.Info("prepared to seal blocks", "interval", s.interval)
	}

	var tick <-chan time.Time
	if !s.onDemand {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping sealing service......")
			return nil
		case <-s.pending:
			if !s.onDemand {
				continue
			}
		case <-tick:
		}
		if err := s.seal(ctx); err != nil {
			return err
		}
	}
}

func (s *sealer) seal(ctx context.Context) error {
	start := time.Now()
	blk, err := s.rt.Seal(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		logger.Error("failed to seal block", "err", err)
		return err
	}
	logger.Debug("sealed block", "number", blk.Number, "events", len(blk.Events), "elapsed", time.Since(start))
	return nil
}
