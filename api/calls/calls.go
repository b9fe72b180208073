// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/govstake/govstake/api/utils"
	"github.com/govstake/govstake/chain"
	"github.com/govstake/govstake/solo"
	"github.com/govstake/govstake/thor"
)

type Calls struct {
	repo   *chain.Repository
	pool   *solo.CallPool
	engine *solo.Engine
}

func New(repo *chain.Repository, pool *solo.CallPool, engine *solo.Engine) *Calls {
	return &Calls{
		repo,
		pool,
		engine,
	}
}

func (c *Calls) handleSendCall(w http.ResponseWriter, req *http.Request) error {
	var body CallRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	call, err := body.decode()
	if err != nil {
		return utils.BadRequest(err)
	}
	if err := c.pool.Add(call); err != nil {
		if errors.Is(err, solo.ErrKnownCall) || errors.Is(err, solo.ErrPoolFull) {
			return utils.Forbidden(errors.WithMessage(err, "rejected call"))
		}
		return utils.BadRequest(errors.WithMessage(err, "bad call"))
	}
	return utils.WriteJSON(w, map[string]string{
		"id": call.ID().String(),
	})
}

func (c *Calls) handleInspectCall(w http.ResponseWriter, req *http.Request) error {
	var body CallRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	call, err := body.decode()
	if err != nil {
		return utils.BadRequest(err)
	}
	receipt, err := c.engine.Inspect(call)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertReceipt(receipt, nil))
}

func (c *Calls) meta(callID thor.Bytes32) (*Meta, error) {
	cm, err := c.repo.GetCallMeta(callID)
	if err != nil {
		return nil, err
	}
	header, err := c.repo.GetBlockHeader(cm.BlockID)
	if err != nil {
		return nil, err
	}
	return newMeta(header, cm.Index), nil
}

func (c *Calls) handleGetCallByID(w http.ResponseWriter, req *http.Request) error {
	callID, err := thor.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	pending := req.URL.Query().Get("pending")
	if pending != "" && pending != "false" && pending != "true" {
		return utils.BadRequest(errors.WithMessage(errors.New("should be boolean"), "pending"))
	}

	call, _, _, err := c.repo.GetCall(callID)
	if err != nil {
		if !c.repo.IsNotFound(err) {
			return err
		}
		if pending == "true" {
			if p := c.pool.Get(callID); p != nil {
				return utils.WriteJSON(w, convertCall(p, nil))
			}
		}
		return utils.WriteJSON(w, nil)
	}
	meta, err := c.meta(callID)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertCall(call, meta))
}

func (c *Calls) handleGetReceiptByID(w http.ResponseWriter, req *http.Request) error {
	callID, err := thor.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	_, receipt, _, err := c.repo.GetCall(callID)
	if err != nil {
		if c.repo.IsNotFound(err) {
			return utils.WriteJSON(w, nil)
		}
		return err
	}
	meta, err := c.meta(callID)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertReceipt(receipt, meta))
}

func (c *Calls) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /calls").
		HandlerFunc(utils.WrapHandlerFunc(c.handleSendCall))
	sub.Path("/inspect").
		Methods(http.MethodPost).
		Name("POST /calls/inspect").
		HandlerFunc(utils.WrapHandlerFunc(c.handleInspectCall))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /calls/{id}").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetCallByID))
	sub.Path("/{id}/receipt").
		Methods(http.MethodGet).
		Name("GET /calls/{id}/receipt").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetReceiptByID))
}
