package registry

import (
	"math/big"
	"testing"
)

func TestDefaultTargets(t *testing.T) {
	r := Default()

	base, ok := r.Target(8453)
	if !ok {
		t.Fatalf("base mainnet missing")
	}
	if !base.SupportsWrappedPoolData() {
		t.Fatalf("base mainnet should use wrapped pool data")
	}
	if !base.SupportsLegacyDevBuy() {
		t.Fatalf("base mainnet should carry the legacy dev-buy route")
	}
	if base.VanitySuffix != "4b07" {
		t.Fatalf("vanity suffix mismatch: %q", base.VanitySuffix)
	}
	if len(base.TokenCreationCode) == 0 {
		t.Fatalf("token creation code missing")
	}

	sepolia, ok := r.Target(84532)
	if !ok {
		t.Fatalf("base sepolia missing")
	}
	if sepolia.SupportsLegacyDevBuy() {
		t.Fatalf("legacy dev-buy route is not deployed on sepolia")
	}

	if _, ok := r.Target(1); ok {
		t.Fatalf("mainnet must not be a deployment target")
	}
}

func TestDefaultTotalSupply(t *testing.T) {
	want, _ := new(big.Int).SetString("100000000000000000000000000000", 10)
	if got := DefaultTotalSupply(); got.Cmp(want) != 0 {
		t.Fatalf("supply mismatch: got %s, want %s", got, want)
	}
}

func TestRegisterReplaces(t *testing.T) {
	r := New()
	r.Register(Target{ChainID: 10, MaxFeeBps: 100})
	r.Register(Target{ChainID: 10, MaxFeeBps: 200})

	target, ok := r.Target(10)
	if !ok || target.MaxFeeBps != 200 {
		t.Fatalf("later registration should win, got %+v", target)
	}
}
