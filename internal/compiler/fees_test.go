package compiler

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"tokenfoundry/internal/model"
	"tokenfoundry/internal/registry"
)

func flatTarget() registry.Target {
	return registry.Target{
		ChainID:        8453,
		StaticFeeHook:  common.HexToAddress("0x00000000000000000000000000000000000008cc"),
		DynamicFeeHook: common.HexToAddress("0x0000000000000000000000000000000000000acc"),
		MevModule:      common.HexToAddress("0x0000000000000000000000000000000000000e11"),
		TotalSupply:    registry.DefaultTotalSupply(),
		MaxFeeBps:      3_000,
	}
}

func TestEncodeStaticFeesRescales(t *testing.T) {
	cfg := &model.NormalizedConfig{Fees: model.StaticFee{TokenFeeBps: 100, PairedFeeBps: 200}}
	target := flatTarget()

	got, err := EncodeFees(cfg, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hook != target.StaticFeeHook {
		t.Fatalf("hook mismatch: got %s", got.Hook.Hex())
	}

	values, err := staticFeeArgs.Unpack(got.PoolData)
	if err != nil {
		t.Fatalf("unpack fee data: %v", err)
	}
	tokenFee := values[0].(*big.Int)
	pairedFee := values[1].(*big.Int)
	if tokenFee.Uint64() != 10_000 {
		t.Fatalf("token fee mismatch: got %s, want 10000", tokenFee)
	}
	if pairedFee.Uint64() != 20_000 {
		t.Fatalf("paired fee mismatch: got %s, want 20000", pairedFee)
	}
}

func TestEncodeDynamicFeesSelectsHook(t *testing.T) {
	cfg := &model.NormalizedConfig{Fees: model.DynamicFee{
		BaseFeeBps:          50,
		MaxFeeBps:           500,
		DecayWindow:         120,
		ResetWindow:         3_600,
		ResetTickFilter:     200,
		FeeControlNumerator: big.NewInt(500_000_000),
		DecayFilterBps:      9_500,
	}}
	target := flatTarget()

	got, err := EncodeFees(cfg, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hook != target.DynamicFeeHook {
		t.Fatalf("hook mismatch: got %s", got.Hook.Hex())
	}

	values, err := dynamicFeeArgs.Unpack(got.PoolData)
	if err != nil {
		t.Fatalf("unpack fee data: %v", err)
	}
	if base := values[0].(*big.Int); base.Uint64() != 5_000 {
		t.Fatalf("base fee mismatch: got %s, want 5000", base)
	}
	if max := values[1].(*big.Int); max.Uint64() != 50_000 {
		t.Fatalf("max fee mismatch: got %s, want 50000", max)
	}
	// The decay weight is already a plain share, not a fee; no rescale.
	if decay := values[6].(*big.Int); decay.Uint64() != 9_500 {
		t.Fatalf("decay filter mismatch: got %s, want 9500", decay)
	}
}

func TestEncodeFeesWrapsOnSecondGenTargets(t *testing.T) {
	target := flatTarget()
	target.PoolInitWrapper = common.HexToAddress("0x0000000000000000000000000000000000000f0f")

	extension := common.HexToAddress("0x3333333333333333333333333333333333333333")
	cfg := &model.NormalizedConfig{
		Fees:     model.StaticFee{TokenFeeBps: 100, PairedFeeBps: 100},
		PoolInit: &model.PoolInit{Extension: extension, Data: []byte{0x01, 0x02}},
	}

	got, err := EncodeFees(cfg, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	values, err := wrappedPoolDataArgs.Unpack(got.PoolData)
	if err != nil {
		t.Fatalf("unpack wrapped pool data: %v", err)
	}
	feeData := values[0].([]byte)
	if _, err := staticFeeArgs.Unpack(feeData); err != nil {
		t.Fatalf("inner fee data should stay decodable: %v", err)
	}
	if addr := values[1].(common.Address); addr != extension {
		t.Fatalf("extension mismatch: got %s", addr.Hex())
	}
}

func TestEncodeFeesRejectsPoolInitOnFlatTargets(t *testing.T) {
	cfg := &model.NormalizedConfig{
		Fees:     model.StaticFee{TokenFeeBps: 100, PairedFeeBps: 100},
		PoolInit: &model.PoolInit{Extension: common.HexToAddress("0x3333333333333333333333333333333333333333")},
	}

	_, err := EncodeFees(cfg, flatTarget())
	var configuration *model.ConfigurationError
	if !errors.As(err, &configuration) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestEncodeMevModuleSniperData(t *testing.T) {
	target := flatTarget()

	module, err := EncodeMevModule(&model.NormalizedConfig{}, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if module.MevModule != target.MevModule || len(module.MevModuleData) != 0 {
		t.Fatalf("default module config mismatch: %+v", module)
	}

	module, err = EncodeMevModule(&model.NormalizedConfig{
		Sniper: &model.SniperParams{StartingFeeBps: 500, EndingFeeBps: 100, SecondsToDecay: 90},
	}, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values, err := sniperArgs.Unpack(module.MevModuleData)
	if err != nil {
		t.Fatalf("unpack sniper data: %v", err)
	}
	if starting := values[0].(*big.Int); starting.Uint64() != 50_000 {
		t.Fatalf("starting fee mismatch: got %s, want 50000", starting)
	}
	if ending := values[1].(*big.Int); ending.Uint64() != 10_000 {
		t.Fatalf("ending fee mismatch: got %s, want 10000", ending)
	}
}
