package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"tokenfoundry/internal/compiler"
	"tokenfoundry/internal/model"
)

// rpcError mimics the JSON-RPC error shape that carries revert data.
type rpcError struct {
	msg  string
	data interface{}
}

func (e *rpcError) Error() string          { return e.msg }
func (e *rpcError) ErrorData() interface{} { return e.data }

func revertErr(t *testing.T, selector []byte) error {
	t.Helper()
	return &rpcError{msg: "execution reverted", data: hexutil.Encode(selector)}
}

func factoryErrorID(t *testing.T, name string) []byte {
	t.Helper()
	factory, err := compiler.FactoryABI()
	if err != nil {
		t.Fatalf("parse factory abi: %v", err)
	}
	abiErr, ok := factory.Errors[name]
	if !ok {
		t.Fatalf("error %s missing from factory abi", name)
	}
	return abiErr.ID.Bytes()[:4]
}

func TestClassifyDecodedName(t *testing.T) {
	err := revertErr(t, factoryErrorID(t, "NoFeesToClaim"))

	got := Classify(err)
	if got.Kind != model.ErrKindState {
		t.Fatalf("kind mismatch: got %s, want state", got.Kind)
	}
	if got.Label != "No fees to claim" {
		t.Fatalf("label mismatch: got %q", got.Label)
	}
	if got.Raw != "NoFeesToClaim" {
		t.Fatalf("raw should carry the decoded name, got %q", got.Raw)
	}
	if got.Cause != err {
		t.Fatalf("cause should be the original error")
	}
}

func TestClassifyCallerKind(t *testing.T) {
	got := Classify(revertErr(t, factoryErrorID(t, "InvalidRewardBps")))
	if got.Kind != model.ErrKindCaller {
		t.Fatalf("kind mismatch: got %s, want caller", got.Kind)
	}
}

func TestClassifySelectorTier(t *testing.T) {
	// Hook gate revert lives outside the factory interface; only its
	// selector is known.
	selector := hexutil.MustDecode("0x7e5ba1ad")

	got := Classify(revertErr(t, selector))
	if got.Kind != model.ErrKindState {
		t.Fatalf("kind mismatch: got %s, want state", got.Kind)
	}
	if got.Label != "Hook not enabled." {
		t.Fatalf("label mismatch: got %q", got.Label)
	}
	if got.Raw != "0x7e5ba1ad" {
		t.Fatalf("raw should carry the selector, got %q", got.Raw)
	}
}

func TestClassifyUnknownSelectorPreservesRaw(t *testing.T) {
	got := Classify(revertErr(t, hexutil.MustDecode("0xdeadbeef")))
	if got.Kind != model.ErrKindUnknown {
		t.Fatalf("kind mismatch: got %s, want unknown", got.Kind)
	}
	if got.Raw != "0xdeadbeef" {
		t.Fatalf("raw selector must survive classification, got %q", got.Raw)
	}
}

func TestClassifyWrappedRevert(t *testing.T) {
	inner := revertErr(t, factoryErrorID(t, "Unauthorized"))
	wrapped := fmt.Errorf("estimate gas: %w", inner)

	got := Classify(wrapped)
	if got.Kind != model.ErrKindCaller || got.Raw != "Unauthorized" {
		t.Fatalf("wrapped revert not classified: %+v", got)
	}
}

func TestClassifyInsufficientFunds(t *testing.T) {
	got := Classify(errors.New("insufficient funds for gas * price + value"))
	if got.Kind != model.ErrKindCaller {
		t.Fatalf("kind mismatch: got %s, want caller", got.Kind)
	}
	if got.Label != "Insufficient funds" {
		t.Fatalf("label mismatch: got %q", got.Label)
	}
}

func TestClassifyPlainError(t *testing.T) {
	err := errors.New("connection refused")
	got := Classify(err)
	if got.Kind != model.ErrKindUnknown {
		t.Fatalf("kind mismatch: got %s, want unknown", got.Kind)
	}
	if got.Raw != "connection refused" {
		t.Fatalf("raw should carry the message, got %q", got.Raw)
	}
}

func TestClassifyNil(t *testing.T) {
	if got := Classify(nil); got != nil {
		t.Fatalf("nil error must classify to nil, got %+v", got)
	}
}
