package compiler

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"tokenfoundry/internal/miner"
	"tokenfoundry/internal/model"
	"tokenfoundry/internal/registry"
)

type stubResolver struct {
	result miner.Result
	err    error

	calls  int
	admin  common.Address
	suffix string
}

func (s *stubResolver) Resolve(_ context.Context, admin, _ common.Address, _ common.Hash, suffix string) (miner.Result, error) {
	s.calls++
	s.admin = admin
	s.suffix = suffix
	if s.err != nil {
		return miner.Result{}, s.err
	}
	return s.result, nil
}

func TestCompileRejectsUnknownChain(t *testing.T) {
	c := New(registry.Default(), nil, nil)
	req := baseRequest()
	req.ChainID = 1

	_, err := c.Compile(context.Background(), req)
	var configuration *model.ConfigurationError
	if !errors.As(err, &configuration) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestCompilePayloadShape(t *testing.T) {
	c := New(registry.Default(), nil, nil)

	payload, err := c.Compile(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	target, _ := registry.Default().Target(8453)
	if payload.ChainID != 8453 || payload.To != target.Factory {
		t.Fatalf("destination mismatch: chain %d to %s", payload.ChainID, payload.To.Hex())
	}

	factory, err := FactoryABI()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	wantSelector := factory.Methods["deployToken"].ID
	if !bytes.Equal(payload.Selector[:], wantSelector) {
		t.Fatalf("selector mismatch: got %x, want %x", payload.Selector, wantSelector)
	}
	if !bytes.Equal(payload.Data[:4], wantSelector) {
		t.Fatalf("calldata must start with the selector, got %x", payload.Data[:4])
	}

	if payload.Value.Sign() != 0 {
		t.Fatalf("value should be zero without a dev buy, got %s", payload.Value)
	}
	if payload.Salt != ([32]byte{}) {
		t.Fatalf("salt should stay zero without vanity mining")
	}
	if payload.ExpectedAddress != nil {
		t.Fatalf("no address is expected without vanity mining")
	}
}

func TestCompileSumsNativeValue(t *testing.T) {
	c := New(registry.Default(), nil, nil)
	req := baseRequest()
	req.DevBuy = &model.DevBuySpec{Value: "0.5"}

	payload, err := c.Compile(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Value.Cmp(big.NewInt(5e17)) != 0 {
		t.Fatalf("value mismatch: got %s, want 5e17", payload.Value)
	}
}

func TestCompileVanityThreading(t *testing.T) {
	mined := common.HexToAddress("0x9999999999999999999999999999999999994b07")
	resolver := &stubResolver{result: miner.Result{Address: mined}}
	resolver.result.Salt[31] = 0x2a

	c := New(registry.Default(), resolver, nil)
	req := baseRequest()
	req.Vanity = true

	payload, err := c.Compile(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolver.calls != 1 {
		t.Fatalf("resolver calls: got %d, want 1", resolver.calls)
	}
	if resolver.admin != common.HexToAddress(testAdmin) {
		t.Fatalf("resolver admin mismatch: got %s", resolver.admin.Hex())
	}
	if resolver.suffix != "4b07" {
		t.Fatalf("resolver suffix mismatch: got %q", resolver.suffix)
	}
	if payload.Salt[31] != 0x2a {
		t.Fatalf("mined salt not threaded into the payload")
	}
	if payload.ExpectedAddress == nil || *payload.ExpectedAddress != mined {
		t.Fatalf("expected address not threaded: %v", payload.ExpectedAddress)
	}
}

func TestCompileVanityWithoutResolver(t *testing.T) {
	c := New(registry.Default(), nil, nil)
	req := baseRequest()
	req.Vanity = true

	if _, err := c.Compile(context.Background(), req); err == nil {
		t.Fatalf("expected error when vanity is requested with no resolver")
	}
}

func TestCompileResolverFailureAborts(t *testing.T) {
	resolver := &stubResolver{err: errors.New("oracle offline")}
	c := New(registry.Default(), resolver, nil)
	req := baseRequest()
	req.Vanity = true

	_, err := c.Compile(context.Background(), req)
	if err == nil || !strings.Contains(err.Error(), "oracle offline") {
		t.Fatalf("resolver failure should surface, got %v", err)
	}
}
