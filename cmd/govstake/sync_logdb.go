// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/govstake/govstake/block"
	"github.com/govstake/govstake/chain"
	"github.com/govstake/govstake/co"
	"github.com/govstake/govstake/logdb"
	"github.com/govstake/govstake/tx"
)

// syncLogDB brings the log db up to the best block of repo, rebuilding it when
// its newest block is not on the chain.
func syncLogDB(ctx context.Context, repo *chain.Repository, logDB *logdb.LogDB, verify bool, out io.Writer) error {
	startPos, err := seekLogDBSyncPosition(repo, logDB)
	if err != nil {
		return errors.Wrap(err, "seek log db sync position")
	}
	if verify && startPos > 1 {
		if err := verifyLogDB(ctx, startPos-1, repo, logDB, out); err != nil {
			return errors.Wrap(err, "verify log db")
		}
	}

	bestNum := repo.BestBlock().Number()
	if startPos > bestNum {
		return nil
	}

	if startPos == 1 {
		fmt.Fprintln(out, ">> Rebuilding log db <<")
	} else {
		fmt.Fprintln(out, ">> Syncing log db <<")
	}

	if err := logDB.Truncate(startPos); err != nil {
		return err
	}

	bar := newProgressBar(out, bestNum, startPos-1)
	defer func() { bar.NotPrint = true }()

	ch := make(chan *block.Block, 256)
	pumpErr, wait := pumpBlocks(ctx, repo, startPos, bestNum, ch)
	defer wait()

	for b := range ch {
		receipts, err := repo.GetBlockReceipts(b.Header().ID())
		if err != nil {
			return err
		}
		if err := logDB.Write(b, receipts); err != nil {
			return err
		}
		bar.Add64(1)
	}
	wait()
	if *pumpErr != nil {
		return *pumpErr
	}
	bar.Finish()
	return nil
}

// seekLogDBSyncPosition returns the first block number the log db lacks.
func seekLogDBSyncPosition(repo *chain.Repository, logDB *logdb.LogDB) (uint32, error) {
	newestID, err := logDB.NewestBlockID()
	if err != nil {
		return 0, err
	}
	num := block.Number(newestID)
	if newestID.IsZero() || num == 0 || num > repo.BestBlock().Number() {
		return 1, nil
	}

	id, err := repo.GetBlockID(num)
	if err != nil {
		return 0, err
	}
	if id != newestID {
		return 1, nil
	}
	return num + 1, nil
}

func verifyLogDB(ctx context.Context, endBlockNum uint32, repo *chain.Repository, logDB *logdb.LogDB, out io.Writer) error {
	fmt.Fprintln(out, ">> Verifying log db <<")

	bar := newProgressBar(out, endBlockNum, 0)
	defer func() { bar.NotPrint = true }()

	ch := make(chan *block.Block, 256)
	pumpErr, wait := pumpBlocks(ctx, repo, 1, endBlockNum, ch)
	defer wait()

	for b := range ch {
		num := b.Header().Number()
		events, err := logDB.FilterEvents(ctx, &logdb.EventFilter{
			Range: &logdb.Range{From: num, To: num},
		})
		if err != nil {
			return err
		}
		receipts, err := repo.GetBlockReceipts(b.Header().ID())
		if err != nil {
			return err
		}
		if err := verifyLogDBPerBlock(out, b, receipts, events); err != nil {
			return err
		}
		bar.Add64(1)
	}
	wait()
	if *pumpErr != nil {
		return *pumpErr
	}
	bar.Finish()
	return nil
}

func verifyLogDBPerBlock(out io.Writer, b *block.Block, receipts tx.Receipts, events []*logdb.Event) error {
	expected := logdb.BlockEvents(b, receipts)
	for _, ev := range append(expected, events...) {
		if len(ev.Data) == 0 {
			ev.Data = nil
		}
	}
	if len(expected) == 0 && len(events) == 0 {
		return nil
	}
	if !reflect.DeepEqual(events, expected) {
		fmt.Fprintf(out, "\nDiff event logs of block %v\n", b.Header().Number())
		fmt.Fprintln(out, jsonDiff(expected, events))
		return errors.New("incorrect logs")
	}
	return nil
}

func jsonDiff(expected, actual any) string {
	e, _ := json.MarshalIndent(expected, "", "  ")
	a, _ := json.MarshalIndent(actual, "", "  ")
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(e)),
		B:        difflib.SplitLines(string(a)),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  1,
	})
	return diff
}

// pumpBlocks sends blocks from..to of the canonical chain into ch and closes it.
// The returned wait func must be called before reading the error.
func pumpBlocks(ctx context.Context, repo *chain.Repository, from, to uint32, ch chan<- *block.Block) (*error, func()) {
	var (
		goes co.Goes
		err  error
	)
	ctx, cancel := context.WithCancel(ctx)
	goes.Go(func() {
		defer close(ch)
		err = func() error {
			for i := from; i <= to; i++ {
				id, err := repo.GetBlockID(i)
				if err != nil {
					return err
				}
				b, err := repo.GetBlock(id)
				if err != nil {
					return err
				}
				select {
				case ch <- b:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		}()
	})
	return &err, func() {
		cancel()
		goes.Wait()
	}
}

func newProgressBar(out io.Writer, total, start uint32) *pb.ProgressBar {
	bar := pb.New64(int64(total)).Set64(int64(start)).SetMaxWidth(90)
	bar.Output = out
	return bar.Start()
}
