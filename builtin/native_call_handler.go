// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"strconv"

	"github.com/govstake/govstake/abi"
	"github.com/govstake/govstake/builtin/reverts"
	"github.com/govstake/govstake/builtin/signed"
	"github.com/govstake/govstake/cry"
	"github.com/govstake/govstake/log"
	"github.com/govstake/govstake/metrics"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/xenv"
)

var (
	logger = log.WithContext("pkg", "builtin")

	metricNativeCalls = metrics.LazyLoadCounterVec("native_calls_count", []string{"contract", "method", "reverted"})
)

type methodKey struct {
	thor.Address
	abi.MethodID
}

var methodMap = make(map[methodKey]*nativeMethod)

// Handler is the entry of native method implementations.
type Handler struct {
	recoverer signed.Recoverer
}

// NewHandler creates a handler recovering signers of signed messages with recoverer.
// A nil recoverer defaults to secp256k1 recovery.
func NewHandler(recoverer signed.Recoverer) *Handler {
	if recoverer == nil {
		recoverer = cry.RecoverSigner
	}
	return &Handler{recoverer}
}

// Handle runs input on the builtin contract at env.To().
// handled is false when env.To() is not a builtin contract.
// Empty input is a plain coin transfer and always succeeds.
func (h *Handler) Handle(env *xenv.Environment, input []byte) (output []byte, handled bool, err error) {
	c, ok := contracts[env.To()]
	if !ok {
		return nil, false, nil
	}
	if len(input) == 0 {
		return nil, true, nil
	}
	methodID, err := abi.ExtractMethodID(input)
	if err != nil {
		return nil, true, reverts.New(reverts.Validation, c.name+"::fallback", "malformed input")
	}
	method := methodMap[methodKey{c.Address, methodID}]
	if method == nil {
		return nil, true, reverts.New(reverts.Validation, c.name+"::fallback", "unknown method")
	}

	output, err = method.Call(env, h.recoverer, input)
	metricNativeCalls().AddWithLabel(1, map[string]string{
		"contract": c.name,
		"method":   method.method.Name(),
		"reverted": strconv.FormatBool(err != nil),
	})
	if err != nil {
		logger.Trace("native call failed", "method", method.scope(), "caller", env.Caller(), "err", err)
	}
	return output, true, err
}
