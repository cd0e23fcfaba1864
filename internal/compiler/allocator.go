package compiler

import (
	"fmt"
	"math/big"

	"tokenfoundry/internal/model"
	"tokenfoundry/internal/registry"
)

// Allocation is a basis-point share of total supply together with the
// quantity it actually reserves once re-expanded on-chain.
type Allocation struct {
	Bps      uint16
	Verified *big.Int
}

var bpsDenominator = big.NewInt(registry.BpsDenominator)

// Allocate converts an absolute token quantity into a basis-point share of
// total supply. The share is rounded up so the reserved quantity never
// falls below the request, and the rounding excess is bounded to one basis
// point. The over-allocation bound uses truncating division on purpose; it
// must match the on-chain expansion bit for bit.
func Allocate(amount, totalSupply *big.Int) (Allocation, error) {
	if totalSupply == nil || totalSupply.Sign() <= 0 {
		return Allocation{}, fmt.Errorf("total supply must be positive")
	}
	if amount == nil || amount.Sign() <= 0 {
		return Allocation{}, fmt.Errorf("amount must be positive")
	}

	num := new(big.Int).Mul(amount, bpsDenominator)
	share, rem := new(big.Int).QuoRem(num, totalSupply, new(big.Int))
	if rem.Sign() != 0 {
		share.Add(share, big.NewInt(1))
	}
	if !share.IsUint64() || share.Uint64() > registry.BpsDenominator {
		return Allocation{}, &model.PrecisionError{
			Reason: fmt.Sprintf("amount requires %s bps of supply", share),
		}
	}

	verified := new(big.Int).Mul(share, totalSupply)
	verified.Quo(verified, bpsDenominator)

	if err := verifyAllocation(amount, verified, totalSupply); err != nil {
		return Allocation{}, err
	}

	return Allocation{Bps: uint16(share.Uint64()), Verified: verified}, nil
}

// verifyAllocation enforces the two rounding invariants: the reserved
// quantity never falls below the request, and the truncated excess stays
// within one basis point of supply.
func verifyAllocation(amount, verified, totalSupply *big.Int) error {
	// Structurally impossible given the ceiling; kept as a guard.
	if verified.Cmp(amount) < 0 {
		return &model.PrecisionError{
			Reason: fmt.Sprintf("allocation %s under requested amount %s", verified, amount),
		}
	}

	excess := new(big.Int).Sub(verified, amount)
	excessBps := new(big.Int).Mul(excess, bpsDenominator)
	excessBps.Quo(excessBps, totalSupply)
	if excessBps.Cmp(big.NewInt(1)) > 0 {
		return &model.PrecisionError{
			Reason: fmt.Sprintf("rounding excess of %s base units exceeds one basis point", excess),
		}
	}
	return nil
}
