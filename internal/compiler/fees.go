package compiler

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"tokenfoundry/internal/model"
	"tokenfoundry/internal/registry"
)

// feeUnitScale rescales basis points into the fee modules' unit of
// 1/10000 of a percent (100 bps = 1% = 10000 module units).
const feeUnitScale = 100

var staticFeeArgs = abi.Arguments{
	{Name: "tokenFee", Type: uint24T},
	{Name: "pairedFee", Type: uint24T},
}

var dynamicFeeArgs = abi.Arguments{
	{Name: "baseFee", Type: uint24T},
	{Name: "maxFee", Type: uint24T},
	{Name: "decayWindow", Type: uint256T},
	{Name: "resetWindow", Type: uint256T},
	{Name: "resetTickFilter", Type: int24T},
	{Name: "feeControlNumerator", Type: uint256T},
	{Name: "decayFilterBps", Type: uint24T},
}

var wrappedPoolDataArgs = abi.Arguments{
	{Name: "feeData", Type: bytesT},
	{Name: "extension", Type: addressT},
	{Name: "extensionData", Type: bytesT},
}

// HookSelection pairs the resolved fee module address with its encoded
// parameter block.
type HookSelection struct {
	Hook     common.Address
	PoolData []byte
}

// EncodeFees selects the fee module for the active variant and encodes its
// parameter block. On second-generation targets the fee block is wrapped
// together with the optional custom pool-initialization extension.
func EncodeFees(cfg *model.NormalizedConfig, target registry.Target) (HookSelection, error) {
	var (
		hook    common.Address
		feeData []byte
		err     error
	)

	switch fees := cfg.Fees.(type) {
	case model.StaticFee:
		hook = target.StaticFeeHook
		feeData, err = staticFeeArgs.Pack(
			new(big.Int).SetUint64(uint64(fees.TokenFeeBps)*feeUnitScale),
			new(big.Int).SetUint64(uint64(fees.PairedFeeBps)*feeUnitScale),
		)
	case model.DynamicFee:
		hook = target.DynamicFeeHook
		numerator := fees.FeeControlNumerator
		if numerator == nil {
			numerator = big.NewInt(0)
		}
		feeData, err = dynamicFeeArgs.Pack(
			new(big.Int).SetUint64(uint64(fees.BaseFeeBps)*feeUnitScale),
			new(big.Int).SetUint64(uint64(fees.MaxFeeBps)*feeUnitScale),
			new(big.Int).SetUint64(fees.DecayWindow),
			new(big.Int).SetUint64(fees.ResetWindow),
			new(big.Int).SetUint64(uint64(fees.ResetTickFilter)),
			numerator,
			new(big.Int).SetUint64(uint64(fees.DecayFilterBps)),
		)
	default:
		// The union is closed; reaching this is a compiler bug upstream.
		return HookSelection{}, &model.ConfigurationError{
			Reason: fmt.Sprintf("unsupported fee variant %T", cfg.Fees),
		}
	}
	if err != nil {
		return HookSelection{}, fmt.Errorf("encode fee parameters: %w", err)
	}

	if !target.SupportsWrappedPoolData() {
		if cfg.PoolInit != nil {
			return HookSelection{}, &model.ConfigurationError{
				Reason: "custom pool initialization is not supported on this deployment target",
			}
		}
		return HookSelection{Hook: hook, PoolData: feeData}, nil
	}

	extension := common.Address{}
	extensionData := []byte{}
	if cfg.PoolInit != nil {
		extension = cfg.PoolInit.Extension
		extensionData = cfg.PoolInit.Data
	}
	wrapped, err := wrappedPoolDataArgs.Pack(feeData, extension, extensionData)
	if err != nil {
		return HookSelection{}, fmt.Errorf("wrap pool data: %w", err)
	}
	return HookSelection{Hook: hook, PoolData: wrapped}, nil
}

var sniperArgs = abi.Arguments{
	{Name: "startingFee", Type: uint24T},
	{Name: "endingFee", Type: uint24T},
	{Name: "secondsToDecay", Type: uint256T},
}

// EncodeMevModule encodes the anti-snipe module configuration. Without
// sniper parameters the module runs with its defaults and takes no data.
func EncodeMevModule(cfg *model.NormalizedConfig, target registry.Target) (MevModuleConfig, error) {
	module := MevModuleConfig{MevModule: target.MevModule, MevModuleData: []byte{}}
	if cfg.Sniper == nil {
		return module, nil
	}
	data, err := sniperArgs.Pack(
		new(big.Int).SetUint64(uint64(cfg.Sniper.StartingFeeBps)*feeUnitScale),
		new(big.Int).SetUint64(uint64(cfg.Sniper.EndingFeeBps)*feeUnitScale),
		new(big.Int).SetUint64(cfg.Sniper.SecondsToDecay),
	)
	if err != nil {
		return MevModuleConfig{}, fmt.Errorf("encode sniper parameters: %w", err)
	}
	module.MevModuleData = data
	return module, nil
}
