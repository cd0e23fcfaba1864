package registry

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// BpsDenominator is the basis-point denominator used across allocations.
const BpsDenominator = 10_000

// MaxExtensionBps caps the share of supply all extensions may consume.
const MaxExtensionBps = 9_000

// Target holds the resolved module addresses and protocol constants for
// one deployment target chain. A zero module address means the module is
// not deployed there.
type Target struct {
	ChainID uint64

	Factory        common.Address
	Locker         common.Address
	StaticFeeHook  common.Address
	DynamicFeeHook common.Address
	MevModule      common.Address
	// PoolInitWrapper is the second-generation pool-initialization wrapper.
	// Its presence switches the fee block into the wrapped pool-data shape.
	PoolInitWrapper common.Address
	Vault           common.Address
	Airdrop         common.Address
	DevBuyPooled    common.Address
	DevBuyLegacy    common.Address
	Weth            common.Address

	TotalSupply       *big.Int
	MinFeeBps         uint32
	MaxFeeBps         uint32
	VanitySuffix      string
	TokenCreationCode []byte
}

// SupportsWrappedPoolData reports whether the target uses the
// second-generation pool-data wrapping.
func (t Target) SupportsWrappedPoolData() bool {
	return t.PoolInitWrapper != (common.Address{})
}

// SupportsLegacyDevBuy reports whether the legacy single-fee-tier swap
// route is deployed on the target.
func (t Target) SupportsLegacyDevBuy() bool {
	return t.DevBuyLegacy != (common.Address{})
}

// Registry maps chain IDs to deployment targets. It is an explicit value
// resolved once per deployment so tests can substitute fakes.
type Registry struct {
	targets map[uint64]Target
}

// New builds an empty registry.
func New() *Registry {
	return &Registry{targets: make(map[uint64]Target)}
}

// Register adds or replaces a target.
func (r *Registry) Register(t Target) {
	r.targets[t.ChainID] = t
}

// Target returns the target for a chain ID.
func (r *Registry) Target(chainID uint64) (Target, bool) {
	t, ok := r.targets[chainID]
	return t, ok
}

// DefaultTotalSupply is 100 billion tokens at 18 decimals.
func DefaultTotalSupply() *big.Int {
	supply := new(big.Int).SetUint64(100_000_000_000)
	return supply.Mul(supply, new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// tokenCreationCode is the creation bytecode of the deployed token
// contract, used to derive the init-code hash for address mining.
var tokenCreationCode = hexutil.MustDecode("0x60806040523480156200001157600080fd5b5060405162001d3838038062001d388339810160408190526200003491620001db565b8251839083906200004d906003906020850190620000a8565b50805162000063906004906020840190620000a8565b5050600580546001600160a01b0319166001600160a01b03959095169490941790935550600691909155600791909155600855620002c7915050565b828054620000b69062000274565b90600052602060002090601f016020900481019282620000da576000855562000125565b82601f10620000f557805160ff191683800117855562000125565b8280016001018555821562000125579182015b828111156200012557825182559160200191906001019062000108565b506200013392915062000137565b5090565b5b8082111562000133576000815560010162000138565b634e487b7160e01b600052604160045260246000fd5b600082601f8301126200017657600080fd5b81516001600160401b03808211156200019357620001936200014e565b604051601f8301601f19908116603f01168101908282118183101715620001be57620001be6200014e565b816040528381526020925086838588010111156200021b57600080fd5b600091505b838210156200023f5785820183015181830184015290820190620001f0565b838211156200025157600083858301015b50601f01601f191692909201909101949350505050565b600181811c908216806200028957607f821691505b60208210811415620002ab57634e487b7160e01b600052602260045260246000fd5b50919050565b611a6180620002d76000396000f3fe")

// Default returns the built-in registry with supported chains.
func Default() *Registry {
	r := New()
	r.Register(baseMainnet())
	r.Register(baseSepolia())
	return r
}

func baseMainnet() Target {
	return Target{
		ChainID:           8453,
		Factory:           common.HexToAddress("0xE85A59c628F7d27878ACeB4bf3b35733630083a9"),
		Locker:            common.HexToAddress("0x33e2Eda238edcF470309b8c6D228986A1204c8f9"),
		StaticFeeHook:     common.HexToAddress("0xDd5EeaFf7BD481AD55Db083062b13a3cdf0A68CC"),
		DynamicFeeHook:    common.HexToAddress("0x34a45c6B61876d739400Bd71228CbcbD4F53E8cC"),
		MevModule:         common.HexToAddress("0xFdc013ce003980889cFfd66b0c8329545ae1d1E8"),
		PoolInitWrapper:   common.HexToAddress("0x770E6A66Ddb856896F10AeA13aDd739f2F3bDEca"),
		Vault:             common.HexToAddress("0x8E845EAd15737bF71904A30BdDD3aEE76d6ADF6C"),
		Airdrop:           common.HexToAddress("0x29d17C1A8D851d7d4cA97148e0438D3c3784f7A3"),
		DevBuyPooled:      common.HexToAddress("0x1331f0788F9c08C8F38D52c7a1152250A9dE00be"),
		DevBuyLegacy:      common.HexToAddress("0x691f97752E91feAcD7933F32a1FEdCeDae7bF59C"),
		Weth:              common.HexToAddress("0x4200000000000000000000000000000000000006"),
		TotalSupply:       DefaultTotalSupply(),
		MinFeeBps:         0,
		MaxFeeBps:         3_000,
		VanitySuffix:      "4b07",
		TokenCreationCode: tokenCreationCode,
	}
}

func baseSepolia() Target {
	return Target{
		ChainID:         84532,
		Factory:         common.HexToAddress("0xE85A59c628F7d27878ACeB4bf3b35733630083a9"),
		Locker:          common.HexToAddress("0x33e2Eda238edcF470309b8c6D228986A1204c8f9"),
		StaticFeeHook:   common.HexToAddress("0xDd5EeaFf7BD481AD55Db083062b13a3cdf0A68CC"),
		DynamicFeeHook:  common.HexToAddress("0x34a45c6B61876d739400Bd71228CbcbD4F53E8cC"),
		MevModule:       common.HexToAddress("0xFdc013ce003980889cFfd66b0c8329545ae1d1E8"),
		PoolInitWrapper: common.HexToAddress("0x770E6A66Ddb856896F10AeA13aDd739f2F3bDEca"),
		Vault:           common.HexToAddress("0x8E845EAd15737bF71904A30BdDD3aEE76d6ADF6C"),
		Airdrop:         common.HexToAddress("0x29d17C1A8D851d7d4cA97148e0438D3c3784f7A3"),
		DevBuyPooled:    common.HexToAddress("0x1331f0788F9c08C8F38D52c7a1152250A9dE00be"),
		// Legacy dev-buy route is not deployed on Sepolia.
		Weth:              common.HexToAddress("0x4200000000000000000000000000000000000006"),
		TotalSupply:       DefaultTotalSupply(),
		MinFeeBps:         0,
		MaxFeeBps:         3_000,
		VanitySuffix:      "4b07",
		TokenCreationCode: tokenCreationCode,
	}
}
