// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/govstake/govstake/tx"
)

// Block is an immutable block, a header and the calls it packs.
type Block struct {
	header *Header
	calls  tx.Calls
}

func New(header *Header, calls tx.Calls) *Block {
	return &Block{
		header,
		append(tx.Calls(nil), calls...),
	}
}

func (b *Block) Header() *Header {
	return b.header
}

func (b *Block) Calls() tx.Calls {
	return append(tx.Calls(nil), b.calls...)
}

func (b *Block) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []any{
		b.header,
		b.calls,
	})
}

func (b *Block) DecodeRLP(s *rlp.Stream) error {
	payload := struct {
		Header Header
		Calls  tx.Calls
	}{}

	if err := s.Decode(&payload); err != nil {
		return err
	}
	*b = Block{
		header: &payload.Header,
		calls:  payload.Calls,
	}
	return nil
}
