package model

// DeploymentRequest is the raw, user-authored description of a token and
// its economic policy. It is consumed once by the compiler and never
// mutated after validation.
type DeploymentRequest struct {
	ChainID    uint64 `json:"chainId"`
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`
	Image      string `json:"image,omitempty"`
	Metadata   string `json:"metadata,omitempty"`
	Context    string `json:"context,omitempty"`
	TokenAdmin string `json:"tokenAdmin"`
	Vanity     bool   `json:"vanity,omitempty"`

	Pool     *PoolSpec     `json:"pool,omitempty"`
	PoolInit *PoolInitSpec `json:"poolInit,omitempty"`
	Fees     *FeeSpec      `json:"fees,omitempty"`
	Sniper   *SniperSpec   `json:"sniper,omitempty"`
	Vault    *VaultSpec    `json:"vault,omitempty"`
	Airdrop  *AirdropSpec  `json:"airdrop,omitempty"`
	DevBuy   *DevBuySpec   `json:"devBuy,omitempty"`

	RewardRecipients []RewardRecipientSpec `json:"rewardRecipients,omitempty"`
}

// PoolSpec describes the shape of the initial liquidity pool.
type PoolSpec struct {
	PairedToken  string         `json:"pairedToken,omitempty"`
	StartingTick *int32         `json:"startingTick,omitempty"`
	TickSpacing  int32          `json:"tickSpacing,omitempty"`
	Positions    []PositionSpec `json:"positions,omitempty"`
}

// PositionSpec is one liquidity position with its basis-point share.
type PositionSpec struct {
	TickLower int32  `json:"tickLower"`
	TickUpper int32  `json:"tickUpper"`
	Bps       uint16 `json:"bps"`
}

// PoolInitSpec is an optional custom pool-initialization extension.
type PoolInitSpec struct {
	Extension string `json:"extension"`
	Data      string `json:"data,omitempty"`
}

// FeeSpec selects the fee-policy variant. Type is "static" or "dynamic";
// only the fields of the selected variant are read.
type FeeSpec struct {
	Type string `json:"type"`

	// Static variant.
	TokenFeeBps  uint32 `json:"tokenFeeBps,omitempty"`
	PairedFeeBps uint32 `json:"pairedFeeBps,omitempty"`

	// Dynamic variant.
	BaseFeeBps          uint32 `json:"baseFeeBps,omitempty"`
	MaxFeeBps           uint32 `json:"maxFeeBps,omitempty"`
	DecayWindow         uint64 `json:"decayWindow,omitempty"`
	ResetWindow         uint64 `json:"resetWindow,omitempty"`
	ResetTickFilter     uint32 `json:"resetTickFilter,omitempty"`
	FeeControlNumerator string `json:"feeControlNumerator,omitempty"`
	DecayFilterBps      uint32 `json:"decayFilterBps,omitempty"`
}

// SniperSpec configures the anti-MEV fee decay applied right after launch.
type SniperSpec struct {
	StartingFeeBps uint32 `json:"startingFeeBps"`
	EndingFeeBps   uint32 `json:"endingFeeBps"`
	SecondsToDecay uint64 `json:"secondsToDecay"`
}

// VaultSpec locks a percentage of supply with optional vesting.
// Percentage is whole percent, not basis points.
type VaultSpec struct {
	Percentage      uint16 `json:"percentage"`
	LockupDuration  uint64 `json:"lockupDuration"`
	VestingDuration uint64 `json:"vestingDuration,omitempty"`
	Recipient       string `json:"recipient,omitempty"`
}

// AirdropSpec locks an absolute token amount behind a merkle claim tree.
// Amount is a decimal string in whole tokens.
type AirdropSpec struct {
	MerkleRoot      string `json:"merkleRoot"`
	Amount          string `json:"amount"`
	LockupDuration  uint64 `json:"lockupDuration"`
	VestingDuration uint64 `json:"vestingDuration,omitempty"`
	Admin           string `json:"admin,omitempty"`
}

// DevBuySpec requests an initial purchase funded with native currency.
// Value and AmountOutMin are decimal strings (ETH and whole tokens).
// A nonzero LegacyFeeTier selects the legacy single-fee-tier route; the
// pool fields describe the paired-token pool for the pooled route when the
// paired asset is not WETH.
type DevBuySpec struct {
	Value           string `json:"value"`
	AmountOutMin    string `json:"amountOutMin,omitempty"`
	Recipient       string `json:"recipient,omitempty"`
	LegacyFeeTier   uint32 `json:"legacyFeeTier,omitempty"`
	PoolFee         uint32 `json:"poolFee,omitempty"`
	PoolTickSpacing int32  `json:"poolTickSpacing,omitempty"`
	PoolHook        string `json:"poolHook,omitempty"`
}

// RewardRecipientSpec routes a basis-point share of pool rewards.
type RewardRecipientSpec struct {
	Recipient string `json:"recipient"`
	Admin     string `json:"admin,omitempty"`
	Bps       uint16 `json:"bps"`
}
