// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime applies engine operations atomically on top of the
// persistent state and seals them into blocks.
package runtime

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/assets"
	"github.com/tangle-network/lst/currency"
	"github.com/tangle-network/lst/eventdb"
	"github.com/tangle-network/lst/log"
	"github.com/tangle-network/lst/lst"
	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/lvldb"
	"github.com/tangle-network/lst/metrics"
	"github.com/tangle-network/lst/misbehavior"
	"github.com/tangle-network/lst/staking"
	"github.com/tangle-network/lst/state"
	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/tangle"
)

var (
	logger = log.WithContext("pkg", "runtime")

	metricOperations = metrics.LazyLoadCounterVec("runtime_operations_count", []string{"op", "result"})
	metricOpDuration = metrics.LazyLoadHistogramVec("runtime_operation_duration_ms", []string{"op"}, metrics.BucketOpsMs)
	metricBestBlock  = metrics.LazyLoadGauge("runtime_best_block")
	metricPools      = metrics.LazyLoadGauge("lst_pools_count")
	metricTVL        = metrics.LazyLoadGauge("lst_total_value_locked")
)

// storage addresses of the modules
var (
	addrRuntime  = tangle.BytesToAddress([]byte("runtime"))
	addrBalances = tangle.BytesToAddress([]byte("balances"))
	addrStaking  = tangle.BytesToAddress([]byte("staking"))
	addrAssets   = tangle.BytesToAddress([]byte("assets"))
	addrLST      = tangle.BytesToAddress([]byte("lst"))

	slotHead = tangle.BytesToBytes32([]byte("head"))
)

// Options configures the modules.
type Options struct {
	Engine             lst.Config
	Staking            staking.Config
	ExistentialDeposit *uint256.Int
	// CheckInvariants runs the engine state checks after every operation
	// and rejects the operation when they fail.
	CheckInvariants bool
	// Clock returns the unix time of a sealed block, time.Now by default.
	Clock func() uint64
}

// Head is the last sealed block.
type Head struct {
	Number uint64
	Time   uint64
}

// Block is published to subscribers once sealed.
type Block struct {
	Head
	Events []*eventdb.Event
}

// Env gives an operation access to the modules, on the pending state.
type Env struct {
	Pools    *lst.Pools
	Staking  *staking.Staking
	Currency *currency.Currency
	Assets   *assets.Assets
	// Revision changes whenever the state does.
	Revision uint64
}

type Runtime struct {
	mu       sync.Mutex
	opts     Options
	db       *lvldb.LevelDB
	eventDB  *eventdb.EventDB
	verifier *misbehavior.Verifier

	blockFeed event.Feed
	scope     event.SubscriptionScope

	// rebuilt on every seal
	state *state.State
	env   *Env
	head  *storage.Raw[*Head]
	best  *Head
}

// New opens the runtime over db. The genesis is applied when db is empty.
func New(db *lvldb.LevelDB, eventDB *eventdb.EventDB, opts Options, genesis *Genesis) (*Runtime, error) {
	if opts.Clock == nil {
		opts.Clock = func() uint64 { return uint64(time.Now().Unix()) }
	}
	rt := &Runtime{
		opts:     opts,
		db:       db,
		eventDB:  eventDB,
		verifier: misbehavior.New(),
	}
	if err := rt.reset(); err != nil {
		return nil, err
	}
	if rt.best != nil {
		logger.Info("runtime opened", "block", rt.best.Number)
		return rt, nil
	}

	if genesis != nil {
		if err := rt.Execute("genesis", func(env *Env) error {
			return genesis.apply(env)
		}); err != nil {
			return nil, errors.Wrap(err, "failed to apply genesis")
		}
	}
	if _, err := rt.Seal(context.Background()); err != nil {
		return nil, errors.Wrap(err, "failed to seal genesis")
	}
	return rt, nil
}

// reset drops pending changes and rebuilds the modules on the committed state.
func (rt *Runtime) reset() error {
	st := state.New(rt.db)
	ctx := func(addr tangle.Address) *storage.Context { return storage.NewContext(addr, st) }

	cur := currency.New(ctx(addrBalances), rt.opts.ExistentialDeposit)
	stk := staking.New(ctx(addrStaking), cur, rt.opts.Staking)
	ast := assets.New(ctx(addrAssets))
	pools := lst.New(addrLST, st, stk, cur, ast, rt.opts.Engine)
	stk.SetSlashListener(pools)

	head := storage.NewRaw[*Head](ctx(addrRuntime), slotHead)
	best, err := head.Get()
	if err != nil {
		return errors.Wrap(err, "failed to load head")
	}
	if best != nil {
		pools.SetBlockNumber(best.Number + 1)
	}

	var revision uint64
	if rt.env != nil {
		revision = rt.env.Revision + 1
	}
	rt.state = st
	rt.env = &Env{Pools: pools, Staking: stk, Currency: cur, Assets: ast, Revision: revision}
	rt.head = head
	rt.best = best
	return nil
}

// Execute runs fn as one operation. When fn fails, neither its state
// changes nor its events are kept.
func (rt *Runtime) Execute(op string, fn func(env *Env) error) (err error) {
	start := time.Now()
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rev := rt.state.NewCheckpoint()
	journal := rt.env.Pools.Journal()
	jrev := journal.Len()
	defer func() {
		result := "ok"
		if err != nil {
			rt.state.RevertTo(rev)
			journal.RevertTo(jrev)
			result = "error"
			if reverts.IsRevertErr(err) {
				result = "reverted"
			}
			logger.Debug("operation failed", "op", op, "err", err)
		}
		metricOperations().AddWithLabel(1, map[string]string{"op": op, "result": result})
		metricOpDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": op})
	}()

	if err := fn(rt.env); err != nil {
		return err
	}
	if rt.opts.CheckInvariants {
		if err := rt.env.Pools.TryState(); err != nil {
			return errors.Wrapf(err, "invariants broken by %s", op)
		}
	}
	rt.env.Revision++
	return nil
}

// View runs fn on the pending state. fn must not change it.
func (rt *Runtime) View(fn func(env *Env) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return fn(rt.env)
}

// Seal commits the pending state as the next block and indexes its events.
func (rt *Runtime) Seal(ctx context.Context) (*Block, error) {
	rt.mu.Lock()
	blk, err := rt.seal(ctx)
	rt.mu.Unlock()
	if err != nil {
		return nil, err
	}

	rt.blockFeed.Send(blk)
	return blk, nil
}

func (rt *Runtime) seal(ctx context.Context) (*Block, error) {
	head := &Head{Time: rt.opts.Clock()}
	if rt.best != nil {
		head.Number = rt.best.Number + 1
	}
	if err := rt.head.Upsert(head); err != nil {
		return nil, err
	}

	pending := rt.env.Pools.Journal().Drain()
	records := make([]*eventdb.Event, 0, len(pending))
	for i, ev := range pending {
		rec, err := eventdb.NewEvent(head.Number, head.Time, uint32(i), ev)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	stage := rt.state.Stage()
	if err := stage.Commit(rt.db.Bulk()); err != nil {
		return nil, errors.Wrap(err, "failed to commit state")
	}
	if rt.eventDB != nil {
		if err := rt.eventDB.Insert(ctx, records); err != nil {
			return nil, errors.Wrap(err, "failed to index events")
		}
	}
	if err := rt.reset(); err != nil {
		return nil, err
	}
	rt.updateMetrics()

	logger.Debug("block sealed", "number", head.Number, "changes", stage.Len(), "events", len(records))
	return &Block{Head: *head, Events: records}, nil
}

func (rt *Runtime) updateMetrics() {
	if metrics.NoOp() {
		return
	}
	metricBestBlock().Set(int64(rt.best.Number))
	if count, err := rt.env.Pools.PoolCount(); err == nil {
		metricPools().Set(int64(count))
	}
	if tvl, err := rt.env.Pools.TotalValueLocked(); err == nil {
		v, overflow := tvl.Uint64WithOverflow()
		if overflow || v > math.MaxInt64 {
			v = math.MaxInt64
		}
		metricTVL().Set(int64(v))
	}
}

// BestBlock returns the last sealed block.
func (rt *Runtime) BestBlock() Head {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return *rt.best
}

// SubscribeBlocks delivers every sealed block to ch.
func (rt *Runtime) SubscribeBlocks(ch chan *Block) event.Subscription {
	return rt.scope.Track(rt.blockFeed.Subscribe(ch))
}

func (rt *Runtime) Verifier() *misbehavior.Verifier {
	return rt.verifier
}

func (rt *Runtime) EventDB() *eventdb.EventDB {
	return rt.eventDB
}

// Close ends the subscriptions.
func (rt *Runtime) Close() {
	rt.scope.Close()
}
