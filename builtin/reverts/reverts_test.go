// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var errTest = New(StateConflict, "Timelock::executeTransaction", "Transaction hasn't been queued.")

func TestError(t *testing.T) {
	assert.Equal(t, "Timelock::executeTransaction: Transaction hasn't been queued.", errTest.Error())

	wrapped := errors.WithMessage(errTest, "clause 0")
	assert.True(t, IsRevertErr(wrapped))
	assert.True(t, errors.Is(wrapped, errTest))
	assert.True(t, errors.Is(New(StateConflict, errTest.Scope, errTest.Reason), errTest))
	assert.False(t, errors.Is(New(StateConflict, errTest.Scope, "other"), errTest))

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, StateConflict, kind)
	assert.Equal(t, "state-conflict", kind.String())

	assert.False(t, IsRevertErr(errors.New("plain")))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr("string"))
}

func TestBytes(t *testing.T) {
	e := New(Validation, "Governor::propose", "must provide actions")
	data := e.Bytes()
	assert.Equal(t, "08c379a0", hex.EncodeToString(data[:4]))
	assert.Equal(t, 0, (len(data)-4)%32)

	msg, ok := Decode(data)
	assert.True(t, ok)
	assert.Equal(t, e.Error(), msg)

	_, ok = Decode([]byte{1, 2, 3})
	assert.False(t, ok)

	var nilErr *Error
	assert.Nil(t, nilErr.Bytes())
}
