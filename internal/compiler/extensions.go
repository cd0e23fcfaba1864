package compiler

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"tokenfoundry/internal/model"
	"tokenfoundry/internal/registry"
)

var vaultDataArgs = abi.Arguments{
	{Name: "recipient", Type: addressT},
	{Name: "lockupDuration", Type: uint256T},
	{Name: "vestingDuration", Type: uint256T},
}

var airdropDataArgs = abi.Arguments{
	{Name: "admin", Type: addressT},
	{Name: "merkleRoot", Type: bytes32T},
	{Name: "lockupDuration", Type: uint256T},
	{Name: "vestingDuration", Type: uint256T},
}

var devBuyPooledArgs = abi.Arguments{
	{Name: "poolKey", Type: poolKeyT},
	{Name: "amountOutMin", Type: uint256T},
	{Name: "recipient", Type: addressT},
}

var devBuyLegacyArgs = abi.Arguments{
	{Name: "feeTier", Type: uint24T},
	{Name: "amountOutMin", Type: uint256T},
	{Name: "recipient", Type: addressT},
}

// ComposeExtensions assembles the ordered extension list for a validated
// config. The order is fixed: vault, then airdrop, then dev buy; omitted
// extensions are simply absent. The total supply share consumed by
// extensions is capped.
func ComposeExtensions(cfg *model.NormalizedConfig, target registry.Target) ([]model.Extension, error) {
	extensions := make([]model.Extension, 0, 3)
	var totalBps uint32

	if cfg.Vault != nil {
		data, err := vaultDataArgs.Pack(
			cfg.Vault.Recipient,
			new(big.Int).SetUint64(cfg.Vault.LockupDuration),
			new(big.Int).SetUint64(cfg.Vault.VestingDuration),
		)
		if err != nil {
			return nil, fmt.Errorf("encode vault extension: %w", err)
		}
		totalBps += uint32(cfg.Vault.Bps)
		extensions = append(extensions, model.Extension{
			Kind:          model.ExtensionVault,
			Target:        target.Vault,
			MsgValue:      big.NewInt(0),
			AllocationBps: cfg.Vault.Bps,
			Data:          data,
		})
	}

	if cfg.Airdrop != nil {
		allocation, err := Allocate(cfg.Airdrop.Amount, target.TotalSupply)
		if err != nil {
			return nil, err
		}
		data, err := airdropDataArgs.Pack(
			cfg.Airdrop.Admin,
			[32]byte(cfg.Airdrop.MerkleRoot),
			new(big.Int).SetUint64(cfg.Airdrop.LockupDuration),
			new(big.Int).SetUint64(cfg.Airdrop.VestingDuration),
		)
		if err != nil {
			return nil, fmt.Errorf("encode airdrop extension: %w", err)
		}
		totalBps += uint32(allocation.Bps)
		extensions = append(extensions, model.Extension{
			Kind:          model.ExtensionAirdrop,
			Target:        target.Airdrop,
			MsgValue:      big.NewInt(0),
			AllocationBps: allocation.Bps,
			Data:          data,
		})
	}

	if cfg.DevBuy != nil {
		extension, err := composeDevBuy(cfg, target)
		if err != nil {
			return nil, err
		}
		extensions = append(extensions, extension)
	}

	if totalBps > registry.MaxExtensionBps {
		return nil, &model.ValidationError{
			Field:  "extensions",
			Reason: fmt.Sprintf("extensions consume %d bps of supply, cap is %d", totalBps, registry.MaxExtensionBps),
		}
	}

	return extensions, nil
}

// composeDevBuy selects the swap routing sub-variant. A dev buy consumes
// native value, not token supply, so its allocation share is zero.
func composeDevBuy(cfg *model.NormalizedConfig, target registry.Target) (model.Extension, error) {
	devBuy := cfg.DevBuy

	if devBuy.LegacyFeeTier != 0 {
		if !target.SupportsLegacyDevBuy() {
			return model.Extension{}, &model.ConfigurationError{
				Reason: "legacy swap routing is not available on this deployment target",
			}
		}
		data, err := devBuyLegacyArgs.Pack(
			new(big.Int).SetUint64(uint64(devBuy.LegacyFeeTier)),
			devBuy.AmountOutMin,
			devBuy.Recipient,
		)
		if err != nil {
			return model.Extension{}, fmt.Errorf("encode legacy dev buy: %w", err)
		}
		return model.Extension{
			Kind:     model.ExtensionDevBuy,
			Target:   target.DevBuyLegacy,
			MsgValue: devBuy.Value,
			Data:     data,
		}, nil
	}

	// Pooled route. When the paired asset is WETH no pre-swap is needed and
	// the pool key stays zero; otherwise it describes the WETH-to-paired pool.
	key := PoolKey{Fee: big.NewInt(0), TickSpacing: big.NewInt(0)}
	if cfg.PairedToken != target.Weth {
		currency0, currency1 := sortCurrencies(target.Weth, cfg.PairedToken)
		key = PoolKey{
			Currency0:   currency0,
			Currency1:   currency1,
			Fee:         new(big.Int).SetUint64(uint64(devBuy.PoolFee)),
			TickSpacing: big.NewInt(int64(devBuy.PoolTickSpacing)),
			Hooks:       devBuy.PoolHook,
		}
	}
	data, err := devBuyPooledArgs.Pack(key, devBuy.AmountOutMin, devBuy.Recipient)
	if err != nil {
		return model.Extension{}, fmt.Errorf("encode pooled dev buy: %w", err)
	}
	return model.Extension{
		Kind:     model.ExtensionDevBuy,
		Target:   target.DevBuyPooled,
		MsgValue: devBuy.Value,
		Data:     data,
	}, nil
}

func sortCurrencies(a, b common.Address) (common.Address, common.Address) {
	if a.Cmp(b) < 0 {
		return a, b
	}
	return b, a
}
