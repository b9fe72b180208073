// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/govstake/govstake/genesis"
	"github.com/govstake/govstake/kv"
	"github.com/govstake/govstake/log"
	"github.com/govstake/govstake/solo"
	"github.com/govstake/govstake/thor"
)

const testGenesisYAML = `
launchTime: 1700000000
chainId: 9
accounts:
  - address: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
    balance: "1000"
votes:
  name: Test Votes
  symbol: TV
  allocations:
    - account: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
      amount: "1000"
      selfDelegate: true
timelock:
  delay: 172800
governor:
  name: Test Governor
  guardian: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
  quorumVotes: "400"
  proposalThreshold: "100"
  votingDelay: 1
  votingPeriod: 5760
staking:
  owner: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
  rewardsDuration: 604800
  rateNum: 1
  rateDen: 1
`

func newCliContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	genesisFlag.Apply(set)
	dataDirFlag.Apply(set)
	require.NoError(t, set.Parse(args))
	return cli.NewContext(nil, set, nil)
}

func TestSelectGenesis(t *testing.T) {
	gene, err := selectGenesis(newCliContext(t))
	require.NoError(t, err)
	assert.Equal(t, genesis.NewDevnet().ID(), gene.ID())

	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testGenesisYAML), 0o600))
	gene, err = selectGenesis(newCliContext(t, "-genesis", path))
	require.NoError(t, err)
	assert.Equal(t, "customnet", gene.Name())

	_, err = selectGenesis(newCliContext(t, "-genesis", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestOpenNode(t *testing.T) {
	gene := genesis.NewDevnet()

	t.Run("memory", func(t *testing.T) {
		n, err := openNode(gene, "", kv.Options{})
		require.NoError(t, err)
		defer n.Close()
		assert.Equal(t, gene.ID(), n.repo.BestBlock().ID())
	})

	t.Run("persistent", func(t *testing.T) {
		dir, err := makeInstanceDir(t.TempDir(), gene)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(filepath.Base(dir), "instance-"))

		n, err := openNode(gene, dir, kv.Options{})
		require.NoError(t, err)
		engine := solo.NewEngine(n.repo, n.stater, n.logDB, solo.Options{BlockInterval: thor.DefaultBlockInterval})
		blk, _, err := engine.Pack(nil, false)
		require.NoError(t, err)
		n.Close()

		n, err = openNode(gene, dir, kv.Options{})
		require.NoError(t, err)
		defer n.Close()
		assert.Equal(t, blk.Header().ID(), n.repo.BestBlock().ID())
	})

	_, err := makeInstanceDir("", gene)
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	var buf bytes.Buffer
	level := initLogger(&buf, 2)
	assert.Equal(t, log.LevelWarn, level.Level())

	log.Info("hidden")
	log.Warn("shown", "key", "value")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "key=value")

	level.Set(log.LevelInfo)
	log.Info("now shown")
	assert.Contains(t, buf.String(), "now shown")
}

func TestPrintStartupMessage(t *testing.T) {
	gene := genesis.NewDevnet()
	n, err := openNode(gene, "", kv.Options{})
	require.NoError(t, err)
	defer n.Close()

	srv, err := newHTTPServer("API portal", "localhost:0", "/", nil)
	require.NoError(t, err)
	defer srv.listener.Close()

	var buf bytes.Buffer
	printStartupMessage(&buf, gene, n, []*httpServer{srv}, true)
	out := buf.String()
	assert.Contains(t, out, gene.ID().String())
	assert.Contains(t, out, "Memory")
	assert.Contains(t, out, srv.url)
	assert.Contains(t, out, genesis.DevAccounts()[0].Address.String())
}

func TestCacheSizing(t *testing.T) {
	assert.Equal(t, 128, normalizeCacheSize(0))
	assert.GreaterOrEqual(t, normalizeCacheSize(1<<30), 128)
	assert.LessOrEqual(t, suggestFDCache(), 5120)
}
