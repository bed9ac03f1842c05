// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lvldb is the persistent kv.Store backing the engine state.
package lvldb

import (
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/qianbin/directcache"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/tangle-network/lst/cache"
	"github.com/tangle-network/lst/kv"
	"github.com/tangle-network/lst/log"
	"github.com/tangle-network/lst/metrics"
)

var (
	_ kv.Store = (*LevelDB)(nil)

	logger           = log.WithContext("pkg", "lvldb")
	metricCacheStats = metrics.LazyLoadGaugeVec("lvldb_cache_hit_miss", []string{"event"})

	writeOpt = opt.WriteOptions{}
	readOpt  = opt.ReadOptions{}
)

// Options options for creating level db instance.
type Options struct {
	CacheSize              int // MiB, split between leveldb block cache and write buffer
	OpenFilesCacheCapacity int
	ValueCacheSize         int // MiB of decoded values kept in memory
}

// LevelDB wraps level db impls.
type LevelDB struct {
	db         *leveldb.DB
	values     *directcache.Cache
	stats      cache.Stats
	lastLogged time.Time
}

// New create a persistent level db instance.
// Create an empty one if not exists, or open if already there.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "open leveldb storage")
	}
	return open(stg, opts)
}

// NewMem create a level db in memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	if opts.CacheSize < 16 {
		opts.CacheSize = 16
	}
	if opts.OpenFilesCacheCapacity < 16 {
		opts.OpenFilesCacheCapacity = 16
	}
	if opts.ValueCacheSize < 1 {
		opts.ValueCacheSize = 1
	}

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: opts.OpenFilesCacheCapacity,
		BlockCacheCapacity:     opts.CacheSize / 2 * opt.MiB,
		WriteBuffer:            opts.CacheSize / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open leveldb")
	}
	return &LevelDB{
		db:     db,
		values: directcache.New(opts.ValueCacheSize * 1024 * 1024),
	}, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

// Get retrieve value for given key.
// It returns an error if key not found. The error can be checked via IsNotFound.
func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	var val []byte
	if ldb.values.AdvGet(key, func(v []byte) {
		val = slices.Clone(v)
	}, false) {
		ldb.stats.Hit()
		return val, nil
	}
	ldb.stats.Miss()
	ldb.logStats()

	val, err := ldb.db.Get(key, &readOpt)
	if err != nil {
		return nil, err
	}
	ldb.values.Set(key, val)
	return val, nil
}

// Has returns whether a key exists.
func (ldb *LevelDB) Has(key []byte) (bool, error) {
	if ldb.values.AdvGet(key, func([]byte) {}, true) {
		return true, nil
	}
	return ldb.db.Has(key, &readOpt)
}

// Put save value fo give key.
func (ldb *LevelDB) Put(key, val []byte) error {
	if err := ldb.db.Put(key, val, &writeOpt); err != nil {
		return err
	}
	ldb.values.Set(key, val)
	return nil
}

// Delete deletes the give key and its value.
func (ldb *LevelDB) Delete(key []byte) error {
	ldb.values.Del(key)
	return ldb.db.Delete(key, &writeOpt)
}

// Bulk creates an atomic batch writer.
func (ldb *LevelDB) Bulk() kv.Bulk {
	return &bulk{ldb: ldb, batch: &leveldb.Batch{}}
}

// Iterate iterates the committed keys within the range.
func (ldb *LevelDB) Iterate(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, &readOpt)
}

// Close close the level db.
// Later operations will all fail.
func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

func (ldb *LevelDB) logStats() {
	if time.Since(ldb.lastLogged) < 20*time.Second {
		return
	}
	ldb.lastLogged = time.Now()
	changed, hit, miss := ldb.stats.Stats()
	metricCacheStats().SetWithLabel(hit, map[string]string{"event": "hit"})
	metricCacheStats().SetWithLabel(miss, map[string]string{"event": "miss"})
	if changed {
		logger.Debug("value cache stats", "hit", hit, "miss", miss)
	}
}

type op struct {
	key, val []byte
	del      bool
}

// bulk wraps batch operations and replays them into the value cache once written.
type bulk struct {
	ldb   *LevelDB
	batch *leveldb.Batch
	ops   []op
}

func (b *bulk) Put(key, val []byte) error {
	b.batch.Put(key, val)
	b.ops = append(b.ops, op{key: slices.Clone(key), val: slices.Clone(val)})
	return nil
}

func (b *bulk) Delete(key []byte) error {
	b.batch.Delete(key)
	b.ops = append(b.ops, op{key: slices.Clone(key), del: true})
	return nil
}

func (b *bulk) Len() int {
	return b.batch.Len()
}

func (b *bulk) Write() error {
	// drop cached values first so a failed write can't leave stale entries behind
	for _, o := range b.ops {
		b.ldb.values.Del(o.key)
	}
	if err := b.ldb.db.Write(b.batch, &writeOpt); err != nil {
		return err
	}
	for _, o := range b.ops {
		if !o.del {
			b.ldb.values.Set(o.key, o.val)
		}
	}
	b.batch.Reset()
	b.ops = b.ops[:0]
	return nil
}
