// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/tangle-network/lst/eventdb"
	"github.com/tangle-network/lst/log"
	"github.com/tangle-network/lst/lvldb"
	"github.com/tangle-network/lst/runtime"
)

// initLogger installs the default handler. The returned level var is shared
// with the admin server so verbosity can change at run time.
func initLogger(ctx *cli.Context) (*slog.LevelVar, func(), error) {
	lvl := ctx.Uint64(verbosityFlag.Name)
	if lvl > 5 {
		return nil, nil, fmt.Errorf("invalid verbosity %d, must be 0-5", lvl)
	}
	format := log.FormatTerminal
	if ctx.Bool(jsonLogsFlag.Name) {
		format = log.FormatJSON
	}

	level := new(slog.LevelVar)
	level.Set(log.LevelFromVerbosity(int(lvl)))

	var (
		handler slog.Handler
		closer  = func() {}
		err     error
	)
	if path := ctx.String(logFileFlag.Name); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, errors.Wrap(err, "create log dir")
		}
		rotated := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    100, // MiB
			MaxBackups: 10,
			MaxAge:     30, // days
			Compress:   true,
		}
		handler, err = log.NewHandler(rotated, format, level, false)
		closer = func() { rotated.Close() }
	} else {
		handler, err = log.NewStdoutHandler(format, level)
	}
	if err != nil {
		return nil, nil, err
	}
	log.SetDefault(handler)
	return level, closer, nil
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func openMainDB(ctx *cli.Context, dataDir string) (*lvldb.LevelDB, error) {
	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	log.Debug("cache size(MB)", "size", cacheMB)

	fdCache := suggestFDCache()
	log.Debug("fd cache", "n", fdCache)

	// the leveldb block cache sits outside the go heap, leave headroom
	debug.SetGCPercent(int(max(25, 100-int64(cacheMB)/64)))

	dir := filepath.Join(dataDir, "state.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB * 3 / 4,
		OpenFilesCacheCapacity: fdCache,
		ValueCacheSize:         cacheMB / 4,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open state database [%v]", dir)
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Warn("failed to get total mem:", "err", err)
	} else {
		total := int(mem.Total / 1024 / 1024)
		half := total / 2

		// limit to not less than total/2 and up to total-2GB
		limitMB := max(total-2048, half)

		if sizeMB > limitMB {
			sizeMB = limitMB
			log.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		log.Warn("unable to get fdlimit", "error", err)
		return 500
	}
	if limit <= 1024 {
		log.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

func openEventDB(dataDir string) (*eventdb.EventDB, error) {
	path := filepath.Join(dataDir, "events.db")
	db, err := eventdb.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open event database [%v]", path)
	}
	return db, nil
}

func openMemMainDB() (*lvldb.LevelDB, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, errors.Wrap(err, "open state database in memory")
	}
	return db, nil
}

func openMemEventDB() (*eventdb.EventDB, error) {
	db, err := eventdb.NewMem()
	if err != nil {
		return nil, errors.Wrap(err, "open event database in memory")
	}
	return db, nil
}

func printStartupMessage(rt *runtime.Runtime, dataDir, apiURL, metricsURL, adminURL string) {
	best := rt.BestBlock()
	fmt.Printf(`Starting %v
    Best block  [ #%v @ %v ]
    Data dir    [ %v ]
    API portal  [ %v ]
    Metrics     [ %v ]
    Admin       [ %v ]
`,
		fullVersion(),
		best.Number, best.Time,
		dataDir,
		apiURL,
		orDisabled(metricsURL),
		orDisabled(adminURL),
	)
}

func printSoloStartupMessage(rt *runtime.Runtime, dataDir, apiURL string, sealing string, accounts []string) {
	best := rt.BestBlock()
	fmt.Printf(`Starting %v
    Best block  [ #%v @ %v ]
    Data dir    [ %v ]
    API portal  [ %v ]
    Sealing     [ %v ]
`,
		fullVersion(),
		best.Number, best.Time,
		dataDir,
		apiURL,
		sealing,
	)
	fmt.Println("    Funded accounts")
	for i, a := range accounts {
		fmt.Printf("      %d  %v\n", i, a)
	}
}

func orDisabled(url string) string {
	if url == "" {
		return "Disabled"
	}
	return url
}
