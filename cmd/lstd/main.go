// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/tangle-network/lst/api"
	"github.com/tangle-network/lst/api/admin/health"
	"github.com/tangle-network/lst/cmd/lstd/httpserver"
	"github.com/tangle-network/lst/eventdb"
	"github.com/tangle-network/lst/log"
	"github.com/tangle-network/lst/lvldb"
	"github.com/tangle-network/lst/metrics"
	"github.com/tangle-network/lst/runtime"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "lstd",
		Usage:     "Node of the Tangle liquid staking pools",
		Copyright: "2025 Tangle Network <https://tangle.tools/>",
		Flags: []cli.Flag{
			dataDirFlag,
			configFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiBacktraceLimitFlag,
			apiEventsLimitFlag,
			apiCacheSizeFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			enableTxFlag,
			blockIntervalFlag,
			verbosityFlag,
			jsonLogsFlag,
			logFileFlag,
			debugAssertionsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			pprofFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "client for test & dev, with funded dev accounts",
				Flags: []cli.Flag{
					dataDirFlag,
					configFlag,
					cacheFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiTimeoutFlag,
					apiBacktraceLimitFlag,
					apiEventsLimitFlag,
					apiCacheSizeFlag,
					enableAPILogsFlag,
					apiSlowQueriesThresholdFlag,
					apiLog5xxErrorsFlag,
					onDemandFlag,
					blockIntervalFlag,
					persistFlag,
					verbosityFlag,
					jsonLogsFlag,
					logFileFlag,
					debugAssertionsFlag,
					enableMetricsFlag,
					metricsAddrFlag,
					enableAdminFlag,
					adminAddrFlag,
					pprofFlag,
				},
				Action: soloAction,
			},
			{
				Name:  "config",
				Usage: "print the effective configuration",
				Flags: []cli.Flag{
					configFlag,
				},
				Action: configAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	logLevel, closeLog, err := initLogger(ctx)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}

	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}
	mainDB, err := openMainDB(ctx, dataDir)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing state database..."); mainDB.Close() }()

	eventDB, err := openEventDB(dataDir)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing event database..."); eventDB.Close() }()

	return serve(exitSignal, ctx, &node{
		cfg:      cfg,
		mainDB:   mainDB,
		eventDB:  eventDB,
		dataDir:  dataDir,
		logLevel: logLevel,
		enableTx: ctx.Bool(enableTxFlag.Name),
	})
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	logLevel, closeLog, err := initLogger(ctx)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}
	withDevGenesis(cfg)

	var (
		mainDB  *lvldb.LevelDB
		eventDB *eventdb.EventDB
		dataDir string
	)
	if ctx.Bool(persistFlag.Name) {
		if dataDir, err = makeDataDir(ctx); err != nil {
			return err
		}
		if mainDB, err = openMainDB(ctx, dataDir); err != nil {
			return err
		}
		if eventDB, err = openEventDB(dataDir); err != nil {
			mainDB.Close()
			return err
		}
	} else {
		dataDir = "Memory"
		if mainDB, err = openMemMainDB(); err != nil {
			return err
		}
		if eventDB, err = openMemEventDB(); err != nil {
			mainDB.Close()
			return err
		}
	}
	defer func() { log.Info("closing state database..."); mainDB.Close() }()
	defer func() { log.Info("closing event database..."); eventDB.Close() }()

	return serve(exitSignal, ctx, &node{
		cfg:      cfg,
		mainDB:   mainDB,
		eventDB:  eventDB,
		dataDir:  dataDir,
		logLevel: logLevel,
		enableTx: true,
		solo:     true,
		onDemand: ctx.Bool(onDemandFlag.Name),
	})
}

func configAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}
	// fail on values the node would reject
	if _, err := cfg.options(); err != nil {
		return err
	}
	if _, err := cfg.genesis(); err != nil {
		return err
	}
	return cfg.print(os.Stdout)
}

type node struct {
	cfg      *Config
	mainDB   *lvldb.LevelDB
	eventDB  *eventdb.EventDB
	dataDir  string
	logLevel *slog.LevelVar
	enableTx bool
	solo     bool
	onDemand bool
}

func serve(exitSignal context.Context, ctx *cli.Context, n *node) error {
	opts, err := n.cfg.options()
	if err != nil {
		return errors.WithMessage(err, "config")
	}
	gene, err := n.cfg.genesis()
	if err != nil {
		return errors.WithMessage(err, "config")
	}
	opts.CheckInvariants = ctx.Bool(debugAssertionsFlag.Name)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	rt, err := runtime.New(n.mainDB, n.eventDB, opts, gene)
	if err != nil {
		return err
	}
	defer rt.Close()

	interval := time.Duration(ctx.Uint64(blockIntervalFlag.Name)) * time.Second
	if interval == 0 && !n.onDemand {
		return errors.Errorf("-%s must be positive", blockIntervalFlag.Name)
	}
	sealer := newSealer(rt, interval, n.onDemand)
	if n.onDemand {
		interval = 0
	}
	healthStatus := health.New(interval)

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	handler, closeAPI := api.New(rt, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		BacktraceLimit:       ctx.Uint64(apiBacktraceLimitFlag.Name),
		EventsLimit:          ctx.Uint64(apiEventsLimitFlag.Name),
		CacheSize:            ctx.Int(apiCacheSizeFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		EnableTx:             n.enableTx,
		OnExecuted:           sealer.Notify,
	})
	defer func() { log.Info("closing API subscriptions..."); closeAPI() }()

	apiURL, stopAPI, err := httpserver.StartAPIServer(
		ctx.String(apiAddrFlag.Name),
		handler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); stopAPI() }()

	var metricsURL string
	if ctx.Bool(enableMetricsFlag.Name) {
		url, stop, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping metrics server..."); stop() }()
		metricsURL = url
	}

	var adminURL string
	if ctx.Bool(enableAdminFlag.Name) {
		url, stop, err := httpserver.StartAdminServer(ctx.String(adminAddrFlag.Name), n.logLevel, apiLogs, healthStatus)
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping admin server..."); stop() }()
		adminURL = url
	}

	if n.solo {
		sealing := fmt.Sprintf("every %v", interval)
		if n.onDemand {
			sealing = "on demand"
		}
		accounts := make([]string, 0, len(n.cfg.Genesis.Allocations))
		for _, a := range n.cfg.Genesis.Allocations {
			accounts = append(accounts, a.Address)
		}
		printSoloStartupMessage(rt, n.dataDir, apiURL, sealing, accounts)
	} else {
		printStartupMessage(rt, n.dataDir, apiURL, metricsURL, adminURL)
	}

	g, runCtx := errgroup.WithContext(exitSignal)
	g.Go(func() error {
		healthStatus.Run(runCtx, rt)
		return nil
	})
	g.Go(func() error {
		return sealer.Run(runCtx)
	})
	return g.Wait()
}
