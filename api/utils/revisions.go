// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"math"
	"strconv"

	"github.com/pkg/errors"

	"github.com/govstake/govstake/block"
	"github.com/govstake/govstake/chain"
	"github.com/govstake/govstake/thor"
)

// Revision is a block reference, either the best block, a number or an id.
type Revision struct {
	val any
}

var revBest = &Revision{}

// IsBest reports whether rev refers to the best block.
func (rev *Revision) IsBest() bool {
	return rev.val == nil
}

// ParseRevision parses a query parameter into a block number or block ID.
func ParseRevision(revision string) (*Revision, error) {
	if revision == "" || revision == "best" {
		return revBest, nil
	}
	if len(revision) == 66 || len(revision) == 64 {
		blockID, err := thor.ParseBytes32(revision)
		if err != nil {
			return nil, err
		}
		return &Revision{blockID}, nil
	}
	n, err := strconv.ParseUint(revision, 0, 0)
	if err != nil {
		return nil, err
	}
	if n > math.MaxUint32 {
		return nil, errors.New("block number out of max uint32")
	}
	return &Revision{uint32(n)}, nil
}

// GetHeader returns the header the revision refers to.
func GetHeader(rev *Revision, repo *chain.Repository) (*block.Header, error) {
	switch val := rev.val.(type) {
	case thor.Bytes32:
		return repo.GetBlockHeader(val)
	case uint32:
		id, err := repo.GetBlockID(val)
		if err != nil {
			return nil, err
		}
		return repo.GetBlockHeader(id)
	default:
		return repo.BestBlock(), nil
	}
}
