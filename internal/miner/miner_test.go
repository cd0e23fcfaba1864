package miner

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestInitCodeHash(t *testing.T) {
	creationCode := []byte{0x60, 0x80, 0x60, 0x40}
	ctorArgs, err := EncodeConstructorArgs(
		"Test Token", "TEST",
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		"", "", "", big.NewInt(8453),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := crypto.Keccak256Hash(append(append([]byte{}, creationCode...), ctorArgs...))
	if got := InitCodeHash(creationCode, ctorArgs); got != want {
		t.Fatalf("hash mismatch: got %s, want %s", got.Hex(), want.Hex())
	}
}

func TestEncodeConstructorArgsDeterministic(t *testing.T) {
	admin := common.HexToAddress("0x1111111111111111111111111111111111111111")
	a, err := EncodeConstructorArgs("A", "A", admin, "", "", "", big.NewInt(8453))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := EncodeConstructorArgs("A", "A", admin, "", "", "", big.NewInt(8453))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("encoding must be deterministic")
	}
}

func TestHTTPResolverQuery(t *testing.T) {
	admin := common.HexToAddress("0x1111111111111111111111111111111111111111")
	deployer := common.HexToAddress("0xE85A59c628F7d27878ACeB4bf3b35733630083a9")
	initCodeHash := common.HexToHash("0x4a35a6f1e0b5a1ed135dd1ed2cba323f0e30d53a5b2c4b7a8e94c2e26b9b3c44")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("admin") != admin.Hex() {
			t.Errorf("admin mismatch: %q", q.Get("admin"))
		}
		if q.Get("deployer") != deployer.Hex() {
			t.Errorf("deployer mismatch: %q", q.Get("deployer"))
		}
		if q.Get("init_code_hash") != initCodeHash.Hex() {
			t.Errorf("init code hash mismatch: %q", q.Get("init_code_hash"))
		}
		if q.Get("suffix") != "4b07" {
			t.Errorf("suffix mismatch: %q", q.Get("suffix"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"address": "0x9999999999999999999999999999999999994b07",
			"salt": "0x000000000000000000000000000000000000000000000000000000000000002a"
		}`))
	}))
	defer server.Close()

	resolver := NewHTTPResolver(server.URL, time.Second)
	got, err := resolver.Resolve(context.Background(), admin, deployer, initCodeHash, "4b07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Address != common.HexToAddress("0x9999999999999999999999999999999999994b07") {
		t.Fatalf("address mismatch: %s", got.Address.Hex())
	}
	if got.Salt[31] != 0x2a {
		t.Fatalf("salt mismatch: %x", got.Salt)
	}
}

func TestHTTPResolverRejectsBadSalt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"address": "0x9999999999999999999999999999999999994b07", "salt": "0x2a"}`))
	}))
	defer server.Close()

	resolver := NewHTTPResolver(server.URL, time.Second)
	_, err := resolver.Resolve(context.Background(), common.Address{}, common.Address{}, common.Hash{}, "4b07")
	if err == nil {
		t.Fatalf("expected error for short salt")
	}
}

func TestHTTPResolverSurfacesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no salt found within budget", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	resolver := NewHTTPResolver(server.URL, time.Second)
	_, err := resolver.Resolve(context.Background(), common.Address{}, common.Address{}, common.Hash{}, "4b07")
	if err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}
