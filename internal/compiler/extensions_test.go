package compiler

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"tokenfoundry/internal/model"
	"tokenfoundry/internal/registry"
)

func extensionTarget() registry.Target {
	target := flatTarget()
	target.Vault = common.HexToAddress("0x4444444444444444444444444444444444444444")
	target.Airdrop = common.HexToAddress("0x5555555555555555555555555555555555555555")
	target.DevBuyPooled = common.HexToAddress("0x6666666666666666666666666666666666666666")
	target.DevBuyLegacy = common.HexToAddress("0x7777777777777777777777777777777777777777")
	target.Weth = common.HexToAddress("0x4200000000000000000000000000000000000006")
	return target
}

func fullConfig() *model.NormalizedConfig {
	admin := common.HexToAddress(testAdmin)
	return &model.NormalizedConfig{
		TokenAdmin:  admin,
		PairedToken: common.HexToAddress("0x4200000000000000000000000000000000000006"),
		Vault: &model.VaultParams{
			Recipient:      admin,
			LockupDuration: 604_800,
			Bps:            2_000,
		},
		Airdrop: &model.AirdropParams{
			Admin:          admin,
			MerkleRoot:     common.HexToHash("0x4a35a6f1e0b5a1ed135dd1ed2cba323f0e30d53a5b2c4b7a8e94c2e26b9b3c44"),
			LockupDuration: 86_400,
			Amount:         new(big.Int).Mul(big.NewInt(1_000_000_000), big.NewInt(1e18)),
		},
		DevBuy: &model.DevBuyParams{
			Recipient:    admin,
			Value:        big.NewInt(5e17),
			AmountOutMin: big.NewInt(0),
		},
	}
}

func kinds(extensions []model.Extension) []model.ExtensionKind {
	out := make([]model.ExtensionKind, 0, len(extensions))
	for _, ext := range extensions {
		out = append(out, ext.Kind)
	}
	return out
}

func TestComposeExtensionsFixedOrder(t *testing.T) {
	target := extensionTarget()

	cases := []struct {
		name   string
		mutate func(*model.NormalizedConfig)
		want   []model.ExtensionKind
	}{
		{"all", func(*model.NormalizedConfig) {}, []model.ExtensionKind{model.ExtensionVault, model.ExtensionAirdrop, model.ExtensionDevBuy}},
		{"vault only", func(c *model.NormalizedConfig) { c.Airdrop = nil; c.DevBuy = nil }, []model.ExtensionKind{model.ExtensionVault}},
		{"airdrop and devbuy", func(c *model.NormalizedConfig) { c.Vault = nil }, []model.ExtensionKind{model.ExtensionAirdrop, model.ExtensionDevBuy}},
		{"devbuy only", func(c *model.NormalizedConfig) { c.Vault = nil; c.Airdrop = nil }, []model.ExtensionKind{model.ExtensionDevBuy}},
		{"none", func(c *model.NormalizedConfig) { c.Vault = nil; c.Airdrop = nil; c.DevBuy = nil }, []model.ExtensionKind{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := fullConfig()
			tc.mutate(cfg)
			got, err := ComposeExtensions(cfg, target)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			gotKinds := kinds(got)
			if len(gotKinds) != len(tc.want) {
				t.Fatalf("extension count mismatch: got %v, want %v", gotKinds, tc.want)
			}
			for i := range tc.want {
				if gotKinds[i] != tc.want[i] {
					t.Fatalf("order mismatch at %d: got %v, want %v", i, gotKinds, tc.want)
				}
			}
		})
	}
}

func TestComposeExtensionsAllocations(t *testing.T) {
	cfg := fullConfig()
	got, err := ComposeExtensions(cfg, extensionTarget())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got[0].AllocationBps != 2_000 {
		t.Fatalf("vault bps mismatch: got %d", got[0].AllocationBps)
	}
	// 1B of 100B supply is exactly 100 bps.
	if got[1].AllocationBps != 100 {
		t.Fatalf("airdrop bps mismatch: got %d", got[1].AllocationBps)
	}
	if got[2].AllocationBps != 0 {
		t.Fatalf("dev buy must not consume supply, got %d bps", got[2].AllocationBps)
	}
	if got[2].MsgValue.Cmp(big.NewInt(5e17)) != 0 {
		t.Fatalf("dev buy value mismatch: got %s", got[2].MsgValue)
	}
	if got[0].MsgValue.Sign() != 0 || got[1].MsgValue.Sign() != 0 {
		t.Fatalf("vault and airdrop must not carry native value")
	}
}

func TestComposeExtensionsSupplyCap(t *testing.T) {
	cfg := fullConfig()
	cfg.Vault.Bps = 9_000
	cfg.Airdrop.Amount = new(big.Int).Mul(big.NewInt(10_000_000_000), big.NewInt(1e18))

	_, err := ComposeExtensions(cfg, extensionTarget())
	var validation *model.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestComposeDevBuyLegacyRoute(t *testing.T) {
	cfg := fullConfig()
	cfg.Vault = nil
	cfg.Airdrop = nil
	cfg.DevBuy.LegacyFeeTier = 10_000

	target := extensionTarget()
	got, err := ComposeExtensions(cfg, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Target != target.DevBuyLegacy {
		t.Fatalf("legacy route should target the legacy module, got %s", got[0].Target.Hex())
	}

	target.DevBuyLegacy = common.Address{}
	_, err = ComposeExtensions(cfg, target)
	var configuration *model.ConfigurationError
	if !errors.As(err, &configuration) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestComposeDevBuyPooledKey(t *testing.T) {
	cfg := fullConfig()
	cfg.Vault = nil
	cfg.Airdrop = nil
	cfg.PairedToken = common.HexToAddress("0x8888888888888888888888888888888888888888")
	cfg.DevBuy.PoolFee = 3_000
	cfg.DevBuy.PoolTickSpacing = 60

	got, err := ComposeExtensions(cfg, extensionTarget())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	values, err := devBuyPooledArgs.Unpack(got[0].Data)
	if err != nil {
		t.Fatalf("unpack pooled dev buy: %v", err)
	}
	key := values[0].(struct {
		Currency0   common.Address `json:"currency0"`
		Currency1   common.Address `json:"currency1"`
		Fee         *big.Int       `json:"fee"`
		TickSpacing *big.Int       `json:"tickSpacing"`
		Hooks       common.Address `json:"hooks"`
	})
	if key.Currency0.Cmp(key.Currency1) >= 0 {
		t.Fatalf("pool key currencies must be sorted: %s, %s", key.Currency0.Hex(), key.Currency1.Hex())
	}
	if key.Fee.Uint64() != 3_000 {
		t.Fatalf("pool fee mismatch: got %s", key.Fee)
	}
}
