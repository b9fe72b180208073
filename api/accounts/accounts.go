// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/govstake/govstake/api/utils"
	"github.com/govstake/govstake/builtin"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
)

type Accounts struct {
	stater *state.Stater
}

func New(stater *state.Stater) *Accounts {
	return &Accounts{
		stater,
	}
}

func (a *Accounts) getAccount(addr thor.Address) (*Account, error) {
	st := a.stater.NewState()
	balance, err := st.GetBalance(addr)
	if err != nil {
		return nil, err
	}
	ledger := builtin.Votes.WithState(st)
	tokenBalance, err := ledger.BalanceOf(addr)
	if err != nil {
		return nil, err
	}
	delegate, err := ledger.Delegates(addr)
	if err != nil {
		return nil, err
	}
	return &Account{
		Balance:      (*math.HexOrDecimal256)(balance),
		TokenBalance: (*math.HexOrDecimal256)(tokenBalance),
		Delegate:     delegate,
		IsBuiltin:    builtin.IsBuiltin(addr),
	}, nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	acc, err := a.getAccount(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}
