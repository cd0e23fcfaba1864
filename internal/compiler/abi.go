package compiler

import (
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const factoryABIJSON = `[
  {
    "inputs": [
      {
        "components": [
          {
            "components": [
              {"internalType": "address", "name": "tokenAdmin", "type": "address"},
              {"internalType": "string", "name": "name", "type": "string"},
              {"internalType": "string", "name": "symbol", "type": "string"},
              {"internalType": "bytes32", "name": "salt", "type": "bytes32"},
              {"internalType": "string", "name": "image", "type": "string"},
              {"internalType": "string", "name": "metadata", "type": "string"},
              {"internalType": "string", "name": "context", "type": "string"},
              {"internalType": "uint256", "name": "originatingChainId", "type": "uint256"}
            ],
            "internalType": "struct ITokenFactory.TokenConfig",
            "name": "tokenConfig",
            "type": "tuple"
          },
          {
            "components": [
              {"internalType": "address", "name": "locker", "type": "address"},
              {"internalType": "address[]", "name": "rewardAdmins", "type": "address[]"},
              {"internalType": "address[]", "name": "rewardRecipients", "type": "address[]"},
              {"internalType": "uint16[]", "name": "rewardBps", "type": "uint16[]"},
              {"internalType": "int24[]", "name": "tickLower", "type": "int24[]"},
              {"internalType": "int24[]", "name": "tickUpper", "type": "int24[]"},
              {"internalType": "uint16[]", "name": "positionBps", "type": "uint16[]"},
              {"internalType": "bytes", "name": "lockerData", "type": "bytes"}
            ],
            "internalType": "struct ITokenFactory.LockerConfig",
            "name": "lockerConfig",
            "type": "tuple"
          },
          {
            "components": [
              {"internalType": "address", "name": "hook", "type": "address"},
              {"internalType": "address", "name": "pairedToken", "type": "address"},
              {"internalType": "int24", "name": "tickIfToken0IsNewToken", "type": "int24"},
              {"internalType": "int24", "name": "tickSpacing", "type": "int24"},
              {"internalType": "bytes", "name": "poolData", "type": "bytes"}
            ],
            "internalType": "struct ITokenFactory.PoolConfig",
            "name": "poolConfig",
            "type": "tuple"
          },
          {
            "components": [
              {"internalType": "address", "name": "mevModule", "type": "address"},
              {"internalType": "bytes", "name": "mevModuleData", "type": "bytes"}
            ],
            "internalType": "struct ITokenFactory.MevModuleConfig",
            "name": "mevModuleConfig",
            "type": "tuple"
          },
          {
            "components": [
              {"internalType": "address", "name": "extension", "type": "address"},
              {"internalType": "uint256", "name": "msgValue", "type": "uint256"},
              {"internalType": "uint16", "name": "extensionBps", "type": "uint16"},
              {"internalType": "bytes", "name": "extensionData", "type": "bytes"}
            ],
            "internalType": "struct ITokenFactory.ExtensionConfig[]",
            "name": "extensionConfigs",
            "type": "tuple[]"
          }
        ],
        "internalType": "struct ITokenFactory.DeploymentConfig",
        "name": "deploymentConfig",
        "type": "tuple"
      }
    ],
    "name": "deployToken",
    "outputs": [{"internalType": "address", "name": "tokenAddress", "type": "address"}],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "token", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "tokenAdmin", "type": "address"},
      {"indexed": false, "internalType": "string", "name": "name", "type": "string"},
      {"indexed": false, "internalType": "string", "name": "symbol", "type": "string"},
      {"indexed": false, "internalType": "address", "name": "pairedToken", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "hook", "type": "address"},
      {"indexed": false, "internalType": "bytes32", "name": "salt", "type": "bytes32"}
    ],
    "name": "TokenCreated",
    "type": "event"
  },
  {"inputs": [], "name": "Deprecated", "type": "error"},
  {"inputs": [], "name": "NoFeesToClaim", "type": "error"},
  {"inputs": [], "name": "NothingToClaim", "type": "error"},
  {"inputs": [], "name": "Unauthorized", "type": "error"},
  {"inputs": [], "name": "InvalidTickRange", "type": "error"},
  {"inputs": [], "name": "InvalidTickSpacing", "type": "error"},
  {"inputs": [], "name": "MaxExtensionsExceeded", "type": "error"},
  {"inputs": [], "name": "ExtensionSupplyExceeded", "type": "error"},
  {"inputs": [], "name": "ExtensionNotEnabled", "type": "error"},
  {"inputs": [], "name": "LockerNotEnabled", "type": "error"},
  {"inputs": [], "name": "MevModuleNotEnabled", "type": "error"},
  {"inputs": [], "name": "InvalidRewardBps", "type": "error"},
  {"inputs": [], "name": "ZeroAddressNotAllowed", "type": "error"},
  {"inputs": [], "name": "ClaimNotUnlocked", "type": "error"},
  {"inputs": [], "name": "InvalidSalt", "type": "error"}
]`

var (
	factoryABI     abi.ABI
	factoryABIOnce sync.Once
	factoryABIErr  error
)

// FactoryABI returns the parsed factory ABI.
func FactoryABI() (abi.ABI, error) {
	factoryABIOnce.Do(func() {
		factoryABI, factoryABIErr = abi.JSON(strings.NewReader(factoryABIJSON))
	})
	return factoryABI, factoryABIErr
}

// TokenConfig mirrors the factory's token config tuple field-for-field.
type TokenConfig struct {
	TokenAdmin         common.Address
	Name               string
	Symbol             string
	Salt               [32]byte
	Image              string
	Metadata           string
	Context            string
	OriginatingChainId *big.Int
}

// LockerConfig mirrors the factory's locker config tuple.
type LockerConfig struct {
	Locker           common.Address
	RewardAdmins     []common.Address
	RewardRecipients []common.Address
	RewardBps        []uint16
	TickLower        []*big.Int
	TickUpper        []*big.Int
	PositionBps      []uint16
	LockerData       []byte
}

// PoolConfig mirrors the factory's pool config tuple.
type PoolConfig struct {
	Hook                   common.Address
	PairedToken            common.Address
	TickIfToken0IsNewToken *big.Int
	TickSpacing            *big.Int
	PoolData               []byte
}

// MevModuleConfig mirrors the factory's MEV module config tuple.
type MevModuleConfig struct {
	MevModule     common.Address
	MevModuleData []byte
}

// ExtensionConfig mirrors the factory's extension config tuple.
type ExtensionConfig struct {
	Extension     common.Address
	MsgValue      *big.Int
	ExtensionBps  uint16
	ExtensionData []byte
}

// DeploymentConfig is the full deployToken argument tuple.
type DeploymentConfig struct {
	TokenConfig      TokenConfig
	LockerConfig     LockerConfig
	PoolConfig       PoolConfig
	MevModuleConfig  MevModuleConfig
	ExtensionConfigs []ExtensionConfig
}

func mustType(t string, components []abi.ArgumentMarshaling) abi.Type {
	typ, err := abi.NewType(t, "", components)
	if err != nil {
		panic(err)
	}
	return typ
}

var (
	addressT = mustType("address", nil)
	uint24T  = mustType("uint24", nil)
	uint256T = mustType("uint256", nil)
	int24T   = mustType("int24", nil)
	bytesT   = mustType("bytes", nil)
	bytes32T = mustType("bytes32", nil)

	poolKeyT = mustType("tuple", []abi.ArgumentMarshaling{
		{Name: "currency0", Type: "address"},
		{Name: "currency1", Type: "address"},
		{Name: "fee", Type: "uint24"},
		{Name: "tickSpacing", Type: "int24"},
		{Name: "hooks", Type: "address"},
	})
)

// PoolKey mirrors the v4 pool key tuple used by the pooled dev-buy route.
type PoolKey struct {
	Currency0   common.Address
	Currency1   common.Address
	Fee         *big.Int
	TickSpacing *big.Int
	Hooks       common.Address
}
