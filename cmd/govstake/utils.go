// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/beevik/ntp"
	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/govstake/govstake/chain"
	"github.com/govstake/govstake/genesis"
	"github.com/govstake/govstake/kv"
	"github.com/govstake/govstake/log"
	"github.com/govstake/govstake/logdb"
	"github.com/govstake/govstake/metrics"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
)

// clockCheckInterval is how often the local clock is compared to ntp.
const clockCheckInterval = 10 * time.Minute

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".govstake")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func initLogger(w io.Writer, verbosity int) *slog.LevelVar {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(verbosity))

	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(w, &level, useColor)))
	return &level
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	cfg, err := genesis.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return genesis.NewCustomNet(cfg)
}

func makeInstanceDir(dataDir string, gene *genesis.Genesis) (string, error) {
	if dataDir == "" {
		return "", errors.New("unable to infer default data dir, use -data-dir to specify")
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

// node bundles the databases and the chain opened at startup.
type node struct {
	instanceDir string
	mainDB      kv.StoreCloser
	logDB       *logdb.LogDB
	stater      *state.Stater
	repo        *chain.Repository
}

// openNode opens the databases, in memory when instanceDir is empty, and
// initializes the chain with gene.
// openNode opens the databases under instanceDir, or in memory when it is empty.
func openNode(gene *genesis.Genesis, instanceDir string, opts kv.Options) (*node, error) {
	n := &node{instanceDir: instanceDir}

	var err error
	if instanceDir == "" {
		n.mainDB = kv.NewMem()
		n.logDB, err = logdb.NewMem()
	} else {
		if n.mainDB, err = kv.NewPersistent(filepath.Join(instanceDir, "main.db"), opts); err != nil {
			return nil, errors.Wrap(err, "open main database")
		}
		n.logDB, err = logdb.New(filepath.Join(instanceDir, "logs.db"))
	}
	if err != nil {
		n.mainDB.Close()
		return nil, errors.Wrap(err, "open log database")
	}

	n.stater = state.NewStater(n.mainDB)
	geneBlk, err := gene.Init(n.stater)
	if err != nil {
		n.Close()
		return nil, errors.Wrap(err, "initialize genesis")
	}
	if n.repo, err = chain.NewRepository(n.mainDB, geneBlk); err != nil {
		n.Close()
		return nil, errors.Wrap(err, "initialize chain")
	}
	return n, nil
}

func (n *node) Close() {
	log.Info("closing log database...")
	if err := n.logDB.Close(); err != nil {
		log.Warn("failed to close log database", "err", err)
	}
	log.Info("closing main database...")
	if err := n.mainDB.Close(); err != nil {
		log.Warn("failed to close main database", "err", err)
	}
}

// normalizeCacheSize clamps the main db cache to [128MB, max(total-2GB, total/2)].
func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Warn("failed to get total mem", "err", err)
		return sizeMB
	}
	total := int(mem.Total / 1024 / 1024)
	limitMB := max(total-2048, total/2)
	if sizeMB > limitMB {
		sizeMB = limitMB
		log.Warn("cache size(MB) limited", "limit", limitMB)
	}
	return sizeMB
}

// suggestFDCache returns how many open files the main db may keep, half the process limit.
func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		log.Warn("unable to get fdlimit", "err", err)
		return 500
	}
	if limit <= 1024 {
		log.Warn("low fd limit, increase it if possible", "limit", limit)
	}
	return min(limit/2, 5120)
}

// httpServer is a listening server, served by a goroutine of the caller's choice.
type httpServer struct {
	name     string
	url      string
	listener net.Listener
	srv      *http.Server
}

func newHTTPServer(name, addr, path string, handler http.Handler) (*httpServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %v addr [%v]", name, addr)
	}
	return &httpServer{
		name:     name,
		url:      "http://" + listener.Addr().String() + path,
		listener: listener,
		srv:      &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second},
	}, nil
}

// serve serves until ctx is done, then shuts the server down.
func (s *httpServer) serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(s.listener) }()

	select {
	case err := <-errCh:
		return errors.Wrapf(err, "%v server", s.name)
	case <-ctx.Done():
		log.Info("stopping server...", "name", s.name)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutdownCtx)
		<-errCh
		return nil
	}
}

func newMetricsServer(addr string) (*httpServer, error) {
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	return newHTTPServer("metrics", addr, "/metrics", handlers.CompressHandler(router))
}

// checkClock warns each clockCheckInterval when the local clock is off by more than half a block.
func checkClock(ctx context.Context, blockInterval uint64) error {
	ticker := time.NewTicker(clockCheckInterval)
	defer ticker.Stop()
	for {
		resp, err := ntp.Query("pool.ntp.org")
		if err != nil {
			log.Debug("failed to access NTP", "err", err)
		} else if offset := resp.ClockOffset.Abs(); offset > time.Duration(blockInterval)*time.Second/2 {
			log.Warn("clock offset detected", "offset", common.PrettyDuration(offset))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func printStartupMessage(w io.Writer, gene *genesis.Genesis, n *node, servers []*httpServer, showAccounts bool) {
	best := n.repo.BestBlock()
	dataDir := n.instanceDir
	if dataDir == "" {
		dataDir = "Memory"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Starting %v
    Network     [ %v %v ]
    Best block  [ %v #%v @%v ]
    Data dir    [ %v ]
`,
		common.MakeName("Govstake solo", fullVersion()),
		gene.ID(), gene.Name(),
		best.ID(), best.Number(), time.Unix(int64(best.Timestamp()), 0),
		dataDir)
	for _, s := range servers {
		fmt.Fprintf(&b, "    %-11s [ %v ]\n", s.name, s.url)
	}

	if showAccounts {
		b.WriteString("    Dev accounts\n")
		for _, a := range genesis.DevAccounts() {
			fmt.Fprintf(&b, "      %v %v\n", a.Address, thor.BytesToBytes32(crypto.FromECDSA(a.PrivateKey)))
		}
	}
	fmt.Fprint(w, b.String())
}
