// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/govstake/govstake/builtin/staking"
	"github.com/govstake/govstake/builtin/votes"
	"github.com/govstake/govstake/thor"
)

// Amount is an integer written in decimal or 0x prefixed hex.
type Amount struct {
	*big.Int
}

// NewAmount wraps v.
func NewAmount(v *big.Int) *Amount {
	return &Amount{v}
}

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return errors.Errorf("line %d: invalid amount %q", node.Line, s)
	}
	a.Int = v
	return nil
}

func (a Amount) MarshalYAML() (any, error) {
	if a.Int == nil {
		return "0", nil
	}
	return a.String(), nil
}

func (a *Amount) big() *big.Int {
	if a == nil || a.Int == nil {
		return nil
	}
	return new(big.Int).Set(a.Int)
}

// Config is a user customized genesis.
type Config struct {
	LaunchTime uint64         `yaml:"launchTime"`
	ChainID    uint64         `yaml:"chainId"`
	Accounts   []Account      `yaml:"accounts"`
	Votes      VotesConfig    `yaml:"votes"`
	Timelock   TimelockConfig `yaml:"timelock"`
	Governor   GovernorConfig `yaml:"governor"`
	Staking    StakingConfig  `yaml:"staking"`
}

// Account is a native balance set in the genesis state.
type Account struct {
	Address thor.Address `yaml:"address"`
	Balance *Amount      `yaml:"balance"`
}

// Allocation is a governance token balance minted in genesis.
type Allocation struct {
	Account      thor.Address `yaml:"account"`
	Amount       *Amount      `yaml:"amount"`
	SelfDelegate bool         `yaml:"selfDelegate"`
}

type VotesConfig struct {
	Name         string       `yaml:"name"`
	Symbol       string       `yaml:"symbol"`
	Capabilities []string     `yaml:"capabilities"` // any of mint, burn, transfer; all when empty
	Allocations  []Allocation `yaml:"allocations"`
}

type TimelockConfig struct {
	Delay uint64 `yaml:"delay"` // seconds
}

type GovernorConfig struct {
	Name                 string       `yaml:"name"`
	Guardian             thor.Address `yaml:"guardian"`
	QuorumVotes          *Amount      `yaml:"quorumVotes"`
	ProposalThreshold    *Amount      `yaml:"proposalThreshold"`
	VotingDelay          uint32       `yaml:"votingDelay"`  // blocks
	VotingPeriod         uint32       `yaml:"votingPeriod"` // blocks
	MinProposalThreshold *Amount      `yaml:"minProposalThreshold,omitempty"`
	MaxProposalThreshold *Amount      `yaml:"maxProposalThreshold,omitempty"`
	MinQuorumVotes       *Amount      `yaml:"minQuorumVotes,omitempty"`
	MaxQuorumVotes       *Amount      `yaml:"maxQuorumVotes,omitempty"`
}

type StakingConfig struct {
	Owner           thor.Address `yaml:"owner"`
	RewardsDuration uint64       `yaml:"rewardsDuration"` // seconds
	RateNum         uint64       `yaml:"rateNum"`
	RateDen         uint64       `yaml:"rateDen"`
	// InitialReward is credited to the staking contract and notified by the owner.
	InitialReward *Amount `yaml:"initialReward,omitempty"`
}

// LoadConfig reads a yaml genesis file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	return ParseConfig(data)
}

// ParseConfig decodes a yaml genesis.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &cfg, nil
}

func (c *VotesConfig) capabilities() (votes.Capabilities, error) {
	if len(c.Capabilities) == 0 {
		return votes.AllCapabilities, nil
	}
	var caps votes.Capabilities
	for _, name := range c.Capabilities {
		switch strings.ToLower(name) {
		case "mint":
			caps |= votes.Mint
		case "burn":
			caps |= votes.Burn
		case "transfer":
			caps |= votes.Transfer
		default:
			return 0, errors.Errorf("unknown capability %q", name)
		}
	}
	return caps, nil
}

func (c *StakingConfig) exchangeRate() staking.ExchangeRate {
	num, den := c.RateNum, c.RateDen
	if num == 0 && den == 0 {
		num, den = 1, 10
	}
	return staking.ExchangeRate{Num: new(big.Int).SetUint64(num), Den: new(big.Int).SetUint64(den)}
}

// Validate checks the fields not covered by the contracts' own initialization.
func (c *Config) Validate() error {
	for _, a := range c.Accounts {
		if a.Balance == nil || a.Balance.Sign() < 1 {
			return errors.Errorf("%v: balance must be a positive integer", a.Address)
		}
	}
	for _, a := range c.Votes.Allocations {
		if a.Amount == nil || a.Amount.Sign() < 1 {
			return errors.Errorf("%v: allocation must be a positive integer", a.Account)
		}
	}
	if _, err := c.Votes.capabilities(); err != nil {
		return err
	}
	if c.Governor.QuorumVotes == nil || c.Governor.ProposalThreshold == nil {
		return errors.New("governor quorumVotes and proposalThreshold must be set")
	}
	if c.Staking.InitialReward != nil && c.Staking.InitialReward.Sign() < 0 {
		return errors.New("staking initialReward must not be negative")
	}
	return nil
}
