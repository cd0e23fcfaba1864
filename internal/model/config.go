package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizedConfig is a DeploymentRequest after schema validation and
// default application. All optional fields are resolved to concrete values
// or explicit absence.
type NormalizedConfig struct {
	ChainID    uint64
	Name       string
	Symbol     string
	Image      string
	Metadata   string
	Context    string
	TokenAdmin common.Address
	Vanity     bool

	PairedToken  common.Address
	StartingTick int32
	TickSpacing  int32
	Positions    []Position
	PoolInit     *PoolInit

	Fees    FeeVariant
	Sniper  *SniperParams
	Vault   *VaultParams
	Airdrop *AirdropParams
	DevBuy  *DevBuyParams

	Rewards []Reward
}

// Position is a validated liquidity position.
type Position struct {
	TickLower int32
	TickUpper int32
	Bps       uint16
}

// PoolInit is a resolved custom pool-initialization extension.
type PoolInit struct {
	Extension common.Address
	Data      []byte
}

// FeeVariant is a closed union of fee policies. Exactly one variant is
// active per deployment; the variant selects both the parameter encoding
// and the on-chain fee module.
type FeeVariant interface {
	isFeeVariant()
}

// StaticFee is a flat fee on each side of the pool, in basis points.
type StaticFee struct {
	TokenFeeBps  uint32
	PairedFeeBps uint32
}

func (StaticFee) isFeeVariant() {}

// DynamicFee is a volatility-responsive fee policy, in basis points.
type DynamicFee struct {
	BaseFeeBps          uint32
	MaxFeeBps           uint32
	DecayWindow         uint64
	ResetWindow         uint64
	ResetTickFilter     uint32
	FeeControlNumerator *big.Int
	DecayFilterBps      uint32
}

func (DynamicFee) isFeeVariant() {}

// SniperParams configures the launch fee decay enforced by the MEV module.
type SniperParams struct {
	StartingFeeBps uint32
	EndingFeeBps   uint32
	SecondsToDecay uint64
}

// VaultParams is a resolved supply-vault allocation.
type VaultParams struct {
	Recipient       common.Address
	LockupDuration  uint64
	VestingDuration uint64
	Bps             uint16
}

// AirdropParams is a resolved airdrop allocation. Amount is in base token
// units; the basis-point share is derived by the allocator.
type AirdropParams struct {
	Admin           common.Address
	MerkleRoot      common.Hash
	LockupDuration  uint64
	VestingDuration uint64
	Amount          *big.Int
}

// DevBuyParams is a resolved initial-purchase instruction. Value is wei.
// LegacyFeeTier selects the legacy route when nonzero; the pool fields
// describe the WETH-to-paired swap pool for the pooled route.
type DevBuyParams struct {
	Recipient       common.Address
	Value           *big.Int
	AmountOutMin    *big.Int
	LegacyFeeTier   uint32
	PoolFee         uint32
	PoolTickSpacing int32
	PoolHook        common.Address
}

// Reward is a validated reward recipient.
type Reward struct {
	Recipient common.Address
	Admin     common.Address
	Bps       uint16
}

// ExtensionKind identifies an extension slot. Activation order is fixed:
// vault, then airdrop, then dev buy.
type ExtensionKind uint8

const (
	ExtensionVault ExtensionKind = iota
	ExtensionAirdrop
	ExtensionDevBuy
)

func (k ExtensionKind) String() string {
	switch k {
	case ExtensionVault:
		return "vault"
	case ExtensionAirdrop:
		return "airdrop"
	case ExtensionDevBuy:
		return "devbuy"
	default:
		return "unknown"
	}
}

// Extension is a composed extension ready for encoding: the target
// contract, the native value to forward, the basis-point share of supply
// it consumes, and its opaque parameter block.
type Extension struct {
	Kind          ExtensionKind
	Target        common.Address
	MsgValue      *big.Int
	AllocationBps uint16
	Data          []byte
}
