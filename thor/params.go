// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/big"
	"time"
)

// Timelock bounds, in seconds.
const (
	GracePeriod  uint64 = 14 * 24 * 3600
	MinimumDelay uint64 = 2 * 24 * 3600
	MaximumDelay uint64 = 30 * 24 * 3600
)

// Governor constants.
const (
	// MaxOperations is the maximum number of actions a proposal can carry.
	MaxOperations = 10

	DefaultVotingDelay  uint32 = 1
	DefaultVotingPeriod uint32 = 17280 // ~3 days in 15s blocks

	MinVotingDelay  uint32 = 1
	MaxVotingDelay  uint32 = 40320 // ~1 week
	MinVotingPeriod uint32 = 5760  // ~1 day
	MaxVotingPeriod uint32 = 80640 // ~2 weeks
)

// LockDuration is how long an annually locked stake stays locked, in seconds.
const LockDuration uint64 = 365 * 24 * 3600

// DefaultBlockInterval is the solo block interval in seconds.
const DefaultBlockInterval uint64 = 10

// DefaultRewardsDuration is the staking reward period, in seconds.
const DefaultRewardsDuration uint64 = 7 * 24 * 3600

var (
	// Ether is 1e18, the precision of token amounts and of the reward accumulator.
	Ether = big.NewInt(1e18)

	// Builtin contract addresses.
	TimelockAddress = BytesToAddress([]byte("Timelock"))
	GovernorAddress = BytesToAddress([]byte("Governor"))
	VotesAddress    = BytesToAddress([]byte("Votes"))
	StakingAddress  = BytesToAddress([]byte("Staking"))
)

// BlockInterval returns the default block interval as a duration.
func BlockInterval() time.Duration {
	return time.Duration(DefaultBlockInterval) * time.Second
}
