// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/govstake/govstake/api"
	"github.com/govstake/govstake/api/admin"
	"github.com/govstake/govstake/api/admin/health"
	"github.com/govstake/govstake/kv"
	"github.com/govstake/govstake/log"
	"github.com/govstake/govstake/metrics"
	"github.com/govstake/govstake/solo"
	"github.com/govstake/govstake/thor"
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
		Version: fullVersion(),
		Name:    "Govstake",
		Usage:   "Standalone node running governance and staking contracts",
		Flags: []cli.Flag{
			dataDirFlag,
			persistFlag,
			cacheFlag,
			genesisFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			adminAddrFlag,
			enableAdminFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			verbosityFlag,
			skipLogsFlag,
			verifyLogsFlag,
			ntpFlag,
			onDemandFlag,
			blockIntervalFlag,
			callPoolLimitFlag,
		},
		Action: soloAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func soloAction(ctx *cli.Context) error {
	logLevel := initLogger(os.Stdout, ctx.Int(verbosityFlag.Name))
	defer func() { log.Info("exited") }()

	blockInterval := ctx.Uint64(blockIntervalFlag.Name)
	if blockInterval == 0 {
		return fmt.Errorf("block-interval cannot be zero")
	}
	onDemand := ctx.Bool(onDemandFlag.Name)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	var instanceDir string
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx.String(dataDirFlag.Name), gene); err != nil {
			return err
		}
	}
	n, err := openNode(gene, instanceDir, kv.Options{
		CacheSize:              normalizeCacheSize(ctx.Int(cacheFlag.Name)),
		OpenFilesCacheCapacity: suggestFDCache(),
	})
	if err != nil {
		return err
	}
	defer n.Close()

	exitCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	skipLogs := ctx.Bool(skipLogsFlag.Name)
	if !skipLogs && instanceDir != "" {
		if err := syncLogDB(exitCtx, n.repo, n.logDB, ctx.Bool(verifyLogsFlag.Name), os.Stdout); err != nil {
			return err
		}
	}

	pool := solo.NewCallPool(ctx.Int(callPoolLimitFlag.Name), func(id thor.Bytes32) bool {
		_, err := n.repo.GetCallMeta(id)
		return err == nil
	})
	defer func() { log.Info("closing call pool..."); pool.Close() }()

	options := solo.Options{
		SkipLogs:      skipLogs,
		OnDemand:      onDemand,
		BlockInterval: blockInterval,
	}
	engine := solo.NewEngine(n.repo, n.stater, n.logDB, options)

	var apiLogs atomic.Bool
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	apiSrv, err := newHTTPServer("API portal", ctx.String(apiAddrFlag.Name), "/", api.New(
		n.repo,
		n.stater,
		pool,
		engine,
		n.logDB,
		api.Options{
			AllowedOrigins:  ctx.String(apiCorsFlag.Name),
			EnableReqLogger: &apiLogs,
			SlowQueries:     time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
			Log5xxErrors:    ctx.Bool(apiLog5xxErrorsFlag.Name),
			EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
			LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
			SkipLogs:        skipLogs,
		},
	))
	if err != nil {
		return err
	}
	servers := []*httpServer{apiSrv}

	if ctx.Bool(enableAdminFlag.Name) {
		// on demand blocks only arrive with calls, so staleness means nothing
		var maxDelay time.Duration
		if !onDemand {
			maxDelay = 3 * time.Duration(blockInterval) * time.Second
		}
		adminSrv, err := newHTTPServer("Admin", ctx.String(adminAddrFlag.Name), "/admin",
			admin.New(logLevel, &apiLogs, health.New(n.repo, maxDelay)))
		if err != nil {
			return err
		}
		servers = append(servers, adminSrv)
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metricsSrv, err := newMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		servers = append(servers, metricsSrv)
	}

	printStartupMessage(os.Stdout, gene, n, servers, ctx.String(genesisFlag.Name) == "")

	group, groupCtx := errgroup.WithContext(exitCtx)
	for _, s := range servers {
		group.Go(func() error { return s.serve(groupCtx) })
	}
	if ctx.Bool(ntpFlag.Name) {
		group.Go(func() error { return checkClock(groupCtx, blockInterval) })
	}
	group.Go(func() error {
		return solo.New(pool, engine, options).Run(groupCtx)
	})
	return group.Wait()
}
